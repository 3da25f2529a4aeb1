//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-todo-api/internal/config"
	"go-todo-api/internal/handler"
	"go-todo-api/internal/middleware"
	"go-todo-api/internal/model"
	"go-todo-api/internal/repository"
	"go-todo-api/internal/router"
	"go-todo-api/internal/service"
	"go-todo-api/internal/token"
)

const (
	testSecret   = "integration-test-secret-32-bytes!!"
	testPassword = "Pa$$w0rd"
)

func testConfig(authRPM int) *config.Config {
	return &config.Config{
		ServerPort:              "8080",
		ServerReadHeaderTimeout: 15 * time.Second,
		ServerWriteTimeout:      30 * time.Second,
		ServerIdleTimeout:       120 * time.Second,
		RequestTimeout:          30 * time.Second,
		JWTSecret:               testSecret,
		JWTIssuer:               "todo-api",
		JWTAudience:             "todo-api-clients",
		JWTTTL:                  time.Hour,
		JWTAlgorithm:            "HS256",
		MaxFailedLogins:         5,
		LockoutDuration:         15 * time.Minute,
		CORSOrigins:             []string{"*"},
		RateLimitRPM:            1000,
		AuthRateLimitRPM:        authRPM,
	}
}

func seedUsers(t *testing.T, store *repository.MemoryUserStore) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	users := []struct {
		email string
		name  string
		role  string
	}{
		{"michael@gmail.com", "Michael Gustavsson", "admin"},
		{"eva@gmail.com", "Eva Eriksson", "user"},
		{"lotta@gmail.com", "Charlotte Magnusson", "user"},
	}

	now := time.Now().UTC()
	for _, u := range users {
		err := store.Create(context.Background(), model.User{
			ID:           uuid.NewString(),
			Email:        u.email,
			DisplayName:  u.name,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		}, []string{u.role})
		require.NoError(t, err)
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	userStore := repository.NewMemoryUserStore()
	todoStore := repository.NewMemoryTodoStore()
	seedUsers(t, userStore)

	tokenOpts := token.Options{
		Secret:    []byte(cfg.JWTSecret),
		Issuer:    cfg.JWTIssuer,
		Audience:  cfg.JWTAudience,
		TTL:       cfg.JWTTTL,
		ClockSkew: cfg.JWTClockSkew,
		Algorithm: cfg.JWTAlgorithm,
	}
	issuer, err := token.NewIssuer(tokenOpts)
	require.NoError(t, err)
	validator, err := token.NewValidator(tokenOpts)
	require.NoError(t, err)

	authService := service.NewAuthService(userStore, issuer, cfg.MaxFailedLogins, cfg.LockoutDuration, 5*time.Second)
	todoService := service.NewTodoService(todoStore, 5*time.Second)

	authMiddleware := middleware.NewAuthMiddleware(middleware.NewBearerAuthenticator(validator))
	handlers := router.Handlers{
		Auth: handler.NewAuthHandler(authService),
		Todo: handler.NewTodoHandler(todoService),
	}

	server := httptest.NewServer(router.New(cfg, authMiddleware, handlers, nil))
	t.Cleanup(server.Close)
	return server
}

func newAuthedServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServer(t, testConfig(1000))
}

type loginData struct {
	Token     string          `json:"token"`
	TokenType string          `json:"token_type"`
	ExpiresIn int64           `json:"expires_in"`
	User      model.Principal `json:"user"`
}

func login(t *testing.T, server *httptest.Server, email string, password string) (string, string) {
	t.Helper()

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Data loginData `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.NotEmpty(t, parsed.Data.Token)

	return parsed.Data.Token, csrfFromToken(t, parsed.Data.Token)
}

// csrfFromToken reads the csrf claim out of the token payload the same
// way a browser client would: the payload is readable, only tamper is
// prevented.
func csrfFromToken(t *testing.T, tokenString string) string {
	t.Helper()

	parts := bytes.Split([]byte(tokenString), []byte("."))
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(string(parts[1]))
	require.NoError(t, err)

	var claims struct {
		CSRF string `json:"csrf"`
	}
	require.NoError(t, json.Unmarshal(payload, &claims))
	require.NotEmpty(t, claims.CSRF)
	return claims.CSRF
}

func doJSON(t *testing.T, method string, url string, accessToken string, csrf string, payload any) *http.Response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if csrf != "" {
		req.Header.Set(middleware.CSRFHeader, csrf)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeData(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	var parsed struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.True(t, parsed.Success)
	require.NoError(t, json.Unmarshal(parsed.Data, out))
}
