package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-todo-api/internal/model"
	"go-todo-api/internal/token"
)

type tokenValidator interface {
	Validate(tokenString string) (*token.Claims, error)
}

// Authenticator abstracts how credential material travels on the wire
// so bearer-token and cookie-session transports are interchangeable
// behind the same gate logic.
type Authenticator interface {
	Extract(r *http.Request) (material string, ok bool)
	Validate(material string) (*token.Claims, error)
}

// BearerAuthenticator reads the token from the Authorization header.
type BearerAuthenticator struct {
	validator tokenValidator
}

func NewBearerAuthenticator(validator tokenValidator) *BearerAuthenticator {
	return &BearerAuthenticator{validator: validator}
}

func (a *BearerAuthenticator) Extract(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", false
	}
	return strings.TrimSpace(header[7:]), true
}

func (a *BearerAuthenticator) Validate(material string) (*token.Claims, error) {
	return a.validator.Validate(material)
}

// SessionCookieName carries the token in the cookie-based variant.
const SessionCookieName = "todo_session"

// CookieAuthenticator reads the same signed token from a session
// cookie instead of the Authorization header.
type CookieAuthenticator struct {
	validator tokenValidator
}

func NewCookieAuthenticator(validator tokenValidator) *CookieAuthenticator {
	return &CookieAuthenticator{validator: validator}
}

func (a *CookieAuthenticator) Extract(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return "", false
	}
	return strings.TrimSpace(cookie.Value), true
}

func (a *CookieAuthenticator) Validate(material string) (*token.Claims, error) {
	return a.validator.Validate(material)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

type AuthMiddleware struct {
	authenticator Authenticator
}

func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// RequireAuth rejects the request unless the authenticator produces
// valid claims. The distinct validation failure kinds all collapse to
// the same 401 on the wire.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		material, ok := m.authenticator.Extract(r)
		if !ok {
			writeGateError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}

		claims, err := m.authenticator.Validate(material)
		if err != nil {
			writeGateError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := map[string]struct{}{}
	for _, role := range allowedRoles {
		roleSet[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeGateError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			principal := claims.Principal()
			allowed := false
			for role := range roleSet {
				if principal.HasRole(role) {
					allowed = true
					break
				}
			}

			if !allowed {
				writeGateError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*token.Claims)
	return claims, ok
}

// PrincipalFromContext returns the validated principal, if any.
func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return model.Principal{}, false
	}
	return claims.Principal(), true
}
