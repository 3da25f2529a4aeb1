package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-todo-api/internal/model"
	"go-todo-api/internal/repository"
	"go-todo-api/internal/token"
)

func testIssuer(t *testing.T) (*token.Issuer, *token.Validator) {
	t.Helper()

	opts := token.Options{
		Secret:    []byte("0123456789abcdef0123456789abcdef"),
		Issuer:    "todo-api",
		Audience:  "todo-api-clients",
		TTL:       time.Hour,
		Algorithm: "HS256",
	}
	issuer, err := token.NewIssuer(opts)
	require.NoError(t, err)
	validator, err := token.NewValidator(opts)
	require.NoError(t, err)

	return issuer, validator
}

func seedUser(t *testing.T, store *repository.MemoryUserStore, email string, password string, roles ...string) model.User {
	t.Helper()

	// MinCost keeps the embedded cost low so comparisons stay fast in tests.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  "Test User",
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, store.Create(context.Background(), user, roles))
	return user
}

func newAuthService(t *testing.T) (*AuthService, *repository.MemoryUserStore, *token.Validator) {
	t.Helper()

	store := repository.NewMemoryUserStore()
	issuer, validator := testIssuer(t)
	svc := NewAuthService(store, issuer, 5, 15*time.Minute, 5*time.Second)
	return svc, store, validator
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	svc, store, validator := newAuthService(t)
	seedUser(t, store, "eva@gmail.com", "Pa$$w0rd", "user")

	result, err := svc.Login(context.Background(), "eva@gmail.com", "Pa$$w0rd")
	require.NoError(t, err)
	require.Equal(t, "Bearer", result.TokenType)
	require.Equal(t, int64(3600), result.ExpiresIn)
	require.Equal(t, []string{"user"}, result.User.Roles)

	claims, err := validator.Validate(result.Token)
	require.NoError(t, err)
	require.Equal(t, result.User.SubjectID, claims.Subject)
	require.NotEmpty(t, claims.CSRF)
}

func TestLoginIsCaseInsensitiveOnEmail(t *testing.T) {
	t.Parallel()

	svc, store, _ := newAuthService(t)
	seedUser(t, store, "Eva@Gmail.com", "Pa$$w0rd", "user")

	_, err := svc.Login(context.Background(), "eva@gmail.com", "Pa$$w0rd")
	require.NoError(t, err)
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()

	svc, store, _ := newAuthService(t)
	seedUser(t, store, "eva@gmail.com", "Pa$$w0rd", "user")

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "eva@gmail.com", "wrong")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody@gmail.com", "Pa$$w0rd")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("empty inputs", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "", "")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})
}

func TestLoginLockout(t *testing.T) {
	t.Parallel()

	svc, store, _ := newAuthService(t)
	user := seedUser(t, store, "lotta@gmail.com", "Pa$$w0rd", "user")

	for i := 0; i < 5; i++ {
		_, err := svc.Login(context.Background(), "lotta@gmail.com", "wrong")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	}

	stored, err := store.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LockedUntil)

	// Correct credentials on a locked account are still rejected. The
	// distinct kind exists for logs only; the handler collapses it to
	// the same 401 as a wrong password.
	_, err = svc.Login(context.Background(), "lotta@gmail.com", "Pa$$w0rd")
	require.ErrorIs(t, err, model.ErrAccountLocked)
}

func TestLoginLockExpires(t *testing.T) {
	t.Parallel()

	svc, store, _ := newAuthService(t)
	seedUser(t, store, "lotta@gmail.com", "Pa$$w0rd", "user")

	for i := 0; i < 5; i++ {
		_, _ = svc.Login(context.Background(), "lotta@gmail.com", "wrong")
	}

	_, err := svc.Login(context.Background(), "lotta@gmail.com", "Pa$$w0rd")
	require.ErrorIs(t, err, model.ErrAccountLocked)

	svc.now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	result, err := svc.Login(context.Background(), "lotta@gmail.com", "Pa$$w0rd")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
}

func TestLoginResetsFailureCountOnSuccess(t *testing.T) {
	t.Parallel()

	svc, store, _ := newAuthService(t)
	user := seedUser(t, store, "eva@gmail.com", "Pa$$w0rd", "user")

	for i := 0; i < 3; i++ {
		_, _ = svc.Login(context.Background(), "eva@gmail.com", "wrong")
	}

	_, err := svc.Login(context.Background(), "eva@gmail.com", "Pa$$w0rd")
	require.NoError(t, err)

	stored, err := store.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Zero(t, stored.FailedLoginAttempts)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)

	t.Run("creates a user with the default role", func(t *testing.T) {
		principal, err := svc.Register(context.Background(), model.RegisterRequest{
			Email:       "michael@gmail.com",
			DisplayName: "Michael Gustavsson",
			Password:    "Str0ng!Pass",
		})
		require.NoError(t, err)
		require.Equal(t, []string{"user"}, principal.Roles)
		require.NotEmpty(t, principal.SubjectID)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := svc.Register(context.Background(), model.RegisterRequest{
			Email:    "michael@gmail.com",
			Password: "Str0ng!Pass",
		})
		require.ErrorIs(t, err, model.ErrUserAlreadyExists)
	})

	t.Run("rejects weak passwords", func(t *testing.T) {
		for _, password := range []string{"short1!", "alllowercase1!", "ALLUPPERCASE1!", "NoDigits!", "NoSymbols1"} {
			_, err := svc.Register(context.Background(), model.RegisterRequest{
				Email:    "new@gmail.com",
				Password: password,
			})
			require.ErrorIs(t, err, model.ErrWeakPassword, "password %q", password)
		}
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		_, err := svc.Register(context.Background(), model.RegisterRequest{
			Email:    "new@gmail.com",
			Password: "Str0ng!Pass",
			Role:     "superadmin",
		})
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := svc.Register(context.Background(), model.RegisterRequest{
			Email:    "not-an-email",
			Password: "Str0ng!Pass",
		})
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("sanitizes display name", func(t *testing.T) {
		principal, err := svc.Register(context.Background(), model.RegisterRequest{
			Email:       "anna@gmail.com",
			DisplayName: `Anna <script>alert(1)</script>Andersson`,
			Password:    "Str0ng!Pass",
		})
		require.NoError(t, err)
		require.Equal(t, "Anna Andersson", principal.DisplayName)
	})
}

func TestProfile(t *testing.T) {
	t.Parallel()

	svc, store, _ := newAuthService(t)
	user := seedUser(t, store, "eva@gmail.com", "Pa$$w0rd", "admin", "user")

	principal, err := svc.Profile(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, principal.Email)
	require.ElementsMatch(t, []string{"admin", "user"}, principal.Roles)

	_, err = svc.Profile(context.Background(), "missing-id")
	require.ErrorIs(t, err, model.ErrUserNotFound)
}
