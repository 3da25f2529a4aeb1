package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueryHygiene(t *testing.T) {
	t.Parallel()

	handlerCalled := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})
	handler := QueryHygiene(inner)

	t.Run("rejects duplicate keys before the handler", func(t *testing.T) {
		handlerCalled = false
		req := httptest.NewRequest(http.MethodGet, "/api/v1/todos?id=1&id=2", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.False(t, handlerCalled)
	})

	t.Run("allows distinct keys", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/todos?page=1&limit=10", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("allows empty query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/todos", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects duplicates on state-changing verbs too", func(t *testing.T) {
		handlerCalled = false
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/todos/1?force=true&force=false", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.False(t, handlerCalled)
	})
}
