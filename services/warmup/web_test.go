package warmup

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	router := mux.NewRouter()
	require.NoError(t, NewService().RegisterEndpoints(t.Context(), router))

	t.Run("Health check", func(t *testing.T) {
		request, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, http.StatusOK, response.Code)
		assert.JSONEq(t, `{"status":"ok"}`, response.Body.String())
	})

	t.Run("Warmup", func(t *testing.T) {
		request, _ := http.NewRequest(http.MethodGet, "/_ah/warmup", nil)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, http.StatusOK, response.Code)
		assert.JSONEq(t, `{"success":true,"message":"Successfully processed warmup request"}`, response.Body.String())
	})
}
