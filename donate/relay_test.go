package donate

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

func testRelayer(base string) *Relayer {
	return &Relayer{
		BaseURL:  base,
		Platform: "bagibagi",
		Client:   &http.Client{Timeout: 5 * time.Second},
		Logger:   zap.NewNop(),
	}
}

func TestRelayMultipliesKoinRate(t *testing.T) {
	var got RelayPayload
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	customer := &types.Customer{UserKey: "uk_1", Name: "Alpha", ChannelID: "chan-1", KoinRate: 100}
	donation := &Donation{Koin: 1500, TransactionID: "TRX-1", Message: "halo"}

	ok := testRelayer(srv.URL).Relay(context.Background(), customer, donation)

	require.True(t, ok)
	assert.Equal(t, "/donation/uk_1/webhook", gotPath)
	assert.Equal(t, RelayPayload{
		Platform:      "bagibagi",
		DonorName:     "Alpha",
		Amount:        150000,
		Koin:          1500,
		Message:       "halo",
		TransactionID: "TRX-1",
	}, got)
}

func TestRelayFalseOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	customer := &types.Customer{UserKey: "uk_1", Name: "Alpha", KoinRate: 100}

	ok := testRelayer(srv.URL).Relay(context.Background(), customer, &Donation{Koin: 10, TransactionID: "unknown"})

	assert.False(t, ok)
}

func TestRelayFalseOnNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	customer := &types.Customer{UserKey: "uk_1", Name: "Alpha", KoinRate: 100}

	ok := testRelayer(srv.URL).Relay(context.Background(), customer, &Donation{Koin: 10, TransactionID: "unknown"})

	assert.False(t, ok)
}
