package webhookreg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vousmeveyoz/discord-jixabot/types"
)

func TestRegisterSuccess(t *testing.T) {
	var gotMasterKey, gotPath string
	var gotBody registerRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMasterKey = r.Header.Get("X-Master-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(types.WebhookCredentials{
			UserKey:    "uk_abc",
			APIKey:     "ak_def",
			WebhookURL: "https://hooks.example.com/uk_abc",
		})
	}))
	defer srv.Close()

	reg := &Registrar{
		BaseURL:   srv.URL,
		MasterKey: "supersecret",
		Client:    &http.Client{Timeout: 5 * time.Second},
		Logger:    zap.NewNop(),
	}

	creds, err := reg.Register(context.Background(), "12345", "999", "buyer#0")

	require.NoError(t, err)
	assert.Equal(t, "/admin/users/register", gotPath)
	assert.Equal(t, "supersecret", gotMasterKey)
	assert.Equal(t, registerRequest{RobloxID: "12345", DiscordID: "999", DiscordUsername: "buyer#0"}, gotBody)
	assert.Equal(t, "uk_abc", creds.UserKey)
	assert.Equal(t, "ak_def", creds.APIKey)
	assert.Equal(t, "https://hooks.example.com/uk_abc", creds.WebhookURL)
}

func TestRegisterNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	reg := &Registrar{BaseURL: srv.URL, Client: srv.Client(), Logger: zap.NewNop()}

	creds, err := reg.Register(context.Background(), "1", "2", "x")

	require.Error(t, err)
	assert.Nil(t, creds)
}

func TestRegisterIncompleteCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"apiKey":"only"}`))
	}))
	defer srv.Close()

	reg := &Registrar{BaseURL: srv.URL, Client: srv.Client(), Logger: zap.NewNop()}

	_, err := reg.Register(context.Background(), "1", "2", "x")

	require.Error(t, err)
}
