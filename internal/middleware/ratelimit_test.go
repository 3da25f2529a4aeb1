package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware_GeneralBudget(t *testing.T) {
	// generalRPM 0 falls back to the default of 100; authRPM 1 is strict.
	mw := NewRateLimitMiddleware(0, 1)
	handler := mw.Handler(okHandler())

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/todos", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("request %d failed with status %d", i, rec.Code)
		}
	}
}

func TestRateLimitMiddleware_StrictAuthBudget(t *testing.T) {
	mw := NewRateLimitMiddleware(0, 1)
	handler := mw.Handler(okHandler())

	req1 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)
	assert.Equal(t, http.StatusOK, rec1.Code)

	// rate.NewLimiter(Every(1m), 1) has burst 1, so the second
	// immediate request must be rejected.
	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
	assert.NotEmpty(t, rec2.Header().Get("Retry-After"))
}

func TestRateLimitMiddleware_PerClientIsolation(t *testing.T) {
	mw := NewRateLimitMiddleware(0, 1)
	handler := mw.Handler(okHandler())

	req1 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req1.Header.Set("X-Forwarded-For", "10.0.0.1")
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)
	assert.Equal(t, http.StatusOK, rec1.Code)

	// A different client keeps its own budget.
	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req2.Header.Set("X-Forwarded-For", "10.0.0.2")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusOK, rec2.Code)
}
