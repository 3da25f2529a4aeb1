package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-todo-api/internal/model"
)

const csrfSecretBytes = 32

// Options configures both the Issuer and the Validator. The secret is
// process-wide and read-only after startup; both sides hold the same
// reference rather than reading global state.
type Options struct {
	Secret    []byte
	Issuer    string
	Audience  string
	TTL       time.Duration
	ClockSkew time.Duration
	Algorithm string
}

func (o Options) signingMethod() (jwt.SigningMethod, error) {
	switch o.Algorithm {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", o.Algorithm)
	}
}

// Issuer mints signed, time-bounded access tokens. Issuance is
// stateless: nothing is persisted server-side.
type Issuer struct {
	opts   Options
	method jwt.SigningMethod
	now    func() time.Time
}

func NewIssuer(opts Options) (*Issuer, error) {
	if len(opts.Secret) < 32 {
		return nil, fmt.Errorf("signing secret must be at least 32 bytes")
	}
	if opts.TTL <= 0 {
		opts.TTL = 60 * time.Minute
	}

	method, err := opts.signingMethod()
	if err != nil {
		return nil, err
	}

	return &Issuer{opts: opts, method: method, now: time.Now}, nil
}

// Issue builds and signs a token for the given principal. Each call
// embeds a fresh CSRF secret and token id, so two issuances for the
// same principal never produce identical tokens.
func (i *Issuer) Issue(principal model.Principal) (string, error) {
	csrf, err := newCSRFSecret()
	if err != nil {
		return "", fmt.Errorf("generate csrf secret: %w", err)
	}

	now := i.now().UTC()
	claims := &Claims{
		Email:       principal.Email,
		DisplayName: principal.DisplayName,
		Roles:       principal.Roles,
		CSRF:        csrf,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.SubjectID,
			Issuer:    i.opts.Issuer,
			Audience:  jwt.ClaimStrings{i.opts.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.opts.TTL)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.opts.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// TTL reports the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.opts.TTL
}

func newCSRFSecret() (string, error) {
	buf := make([]byte, csrfSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
