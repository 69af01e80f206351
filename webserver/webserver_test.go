package webserver

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vousmeveyoz/discord-jixabot/state"
	"github.com/Vousmeveyoz/discord-jixabot/webserver/constants"
)

var (
	routerOnce sync.Once
	router     *chi.Mux
)

func testRouter() *chi.Mux {
	routerOnce.Do(func() {
		state.Logger = zap.NewNop()
		router = CreateWebserver()
	})

	return router
}

func TestUnknownPathReturnsEndpointNotFound(t *testing.T) {
	rec := httptest.NewRecorder()

	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, constants.EndpointNotFound, rec.Body.String())
}

func TestWrongMethodReturnsEndpointNotFound(t *testing.T) {
	rec := httptest.NewRecorder()

	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/validate", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, constants.EndpointNotFound, rec.Body.String())
}
