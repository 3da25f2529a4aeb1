package middleware

import (
	"net/http"
	"net/url"
)

// QueryHygiene rejects requests where any query parameter key appears
// more than once, before routing. Duplicate keys make downstream
// parameter handling ambiguous (parameter pollution), so the request
// never reaches a handler.
func QueryHygiene(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		values, err := url.ParseQuery(r.URL.RawQuery)
		if err != nil {
			writeGateError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed query string")
			return
		}

		for _, vals := range values {
			if len(vals) > 1 {
				writeGateError(w, http.StatusBadRequest, "BAD_REQUEST", "duplicate query parameter")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
