package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	handler := SecurityHeaders(okHandler())

	t.Run("attaches the fixed header set", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/todos", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		require.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
		require.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
		require.Contains(t, rec.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
		require.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	})

	t.Run("attaches headers on error short-circuits", func(t *testing.T) {
		failing := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeGateError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/todos", nil)
		rec := httptest.NewRecorder()

		failing.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	})

	t.Run("adds HSTS over TLS", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "https://example.com/api/v1/todos", nil)
		req.TLS = &tls.ConnectionState{}
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=")
	})
}
