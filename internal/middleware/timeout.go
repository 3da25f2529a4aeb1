package middleware

import (
	"net/http"
	"time"
)

const timeoutBody = `{"success":false,"error":{"code":"REQUEST_TIMEOUT","message":"request exceeded the time limit"}}`

// Timeout cuts off handlers that outlive the configured request
// budget. The 503 body matches the gate error envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
