package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-todo-api/internal/model"
	"go-todo-api/internal/token"
	"go-todo-api/internal/util"
)

// dummyPasswordHash is compared against when the email is unknown so
// that missing and existing accounts take the same bcrypt code path.
const dummyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

const bcryptCost = 12

type userStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	GetRoles(ctx context.Context, userID string) ([]string, error)
	Create(ctx context.Context, u model.User, roles []string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	IncrementFailedAttempts(ctx context.Context, userID string) (int, error)
	LockAccount(ctx context.Context, userID string, until time.Time) error
	ResetFailedAttempts(ctx context.Context, userID string) error
}

type AuthService struct {
	store           userStore
	issuer          *token.Issuer
	maxFailedLogins int
	lockoutDuration time.Duration
	queryTimeout    time.Duration
	now             func() time.Time
}

func NewAuthService(store userStore, issuer *token.Issuer, maxFailedLogins int, lockoutDuration time.Duration, queryTimeout time.Duration) *AuthService {
	if maxFailedLogins <= 0 {
		maxFailedLogins = 5
	}
	if lockoutDuration <= 0 {
		lockoutDuration = 15 * time.Minute
	}
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}

	return &AuthService{
		store:           store,
		issuer:          issuer,
		maxFailedLogins: maxFailedLogins,
		lockoutDuration: lockoutDuration,
		queryTimeout:    queryTimeout,
		now:             time.Now,
	}
}

// Login verifies the submitted credentials and mints an access token.
// Every failure path runs a bcrypt comparison and every store error
// denies access, so the response gives no signal about which check
// failed or whether the account exists.
func (s *AuthService) Login(ctx context.Context, email string, password string) (model.LoginResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
		return model.LoginResponse{}, model.ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			slog.Warn("credential lookup failed", "error", err)
		}
		_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
		return model.LoginResponse{}, model.ErrInvalidCredentials
	}

	now := s.now().UTC()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		_ = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
		return model.LoginResponse{}, model.ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordFailedAttempt(ctx, user.ID)
		return model.LoginResponse{}, model.ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		if err := s.store.ResetFailedAttempts(ctx, user.ID); err != nil {
			slog.Warn("reset failed attempts", "error", err)
		}
	}

	roles, err := s.store.GetRoles(ctx, user.ID)
	if err != nil {
		slog.Warn("role lookup failed", "error", err)
		return model.LoginResponse{}, model.ErrInvalidCredentials
	}

	principal := model.Principal{
		SubjectID:   user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Roles:       roles,
	}

	signed, err := s.issuer.Issue(principal)
	if err != nil {
		return model.LoginResponse{}, err
	}

	return model.LoginResponse{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresIn: int64(s.issuer.TTL().Seconds()),
		User:      principal,
	}, nil
}

func (s *AuthService) recordFailedAttempt(ctx context.Context, userID string) {
	attempts, err := s.store.IncrementFailedAttempts(ctx, userID)
	if err != nil {
		slog.Warn("record failed login", "error", err)
		return
	}

	if attempts >= s.maxFailedLogins {
		until := s.now().UTC().Add(s.lockoutDuration)
		if err := s.store.LockAccount(ctx, userID, until); err != nil {
			slog.Warn("lock account", "error", err)
			return
		}
		slog.Info("account locked after repeated failures", "user_id", userID, "until", until)
	}
}

// Register creates a new account. Free-text fields are sanitized
// before validation so stored values never carry markup.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.Principal, error) {
	email := util.SanitizeText(req.Email)
	displayName := util.SanitizeText(req.DisplayName)
	role := strings.ToLower(strings.TrimSpace(req.Role))

	if email == "" || req.Password == "" {
		return model.Principal{}, model.ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.Principal{}, model.ErrInvalidInput
	}
	if role == "" {
		role = "user"
	}
	if role != "admin" && role != "user" {
		return model.Principal{}, model.ErrInvalidInput
	}
	if !passwordMeetsPolicy(req.Password) {
		return model.Principal{}, model.ErrWeakPassword
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	exists, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return model.Principal{}, err
	}
	if exists {
		return model.Principal{}, model.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return model.Principal{}, err
	}

	now := s.now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, user, []string{role}); err != nil {
		return model.Principal{}, err
	}

	return model.Principal{
		SubjectID:   user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Roles:       []string{role},
	}, nil
}

// Profile returns the stored identity for a validated subject id.
func (s *AuthService) Profile(ctx context.Context, subjectID string) (model.Principal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	user, err := s.store.FindByID(ctx, subjectID)
	if err != nil {
		return model.Principal{}, err
	}

	roles, err := s.store.GetRoles(ctx, user.ID)
	if err != nil {
		return model.Principal{}, err
	}

	return model.Principal{
		SubjectID:   user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Roles:       roles,
	}, nil
}

// passwordMeetsPolicy requires at least 8 characters with an upper
// case letter, a lower case letter, a digit, and a symbol.
func passwordMeetsPolicy(password string) bool {
	if len(password) < 8 {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			upper = true
		case unicode.IsLower(char):
			lower = true
		case unicode.IsDigit(char):
			digit = true
		default:
			symbol = true
		}
	}

	return upper && lower && digit && symbol
}
