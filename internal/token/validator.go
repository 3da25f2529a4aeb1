package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-todo-api/internal/model"
)

// Validator verifies inbound token strings: signature first, then
// issuer/audience, then the time claims. The accepted algorithm is
// pinned to the configured one, so "none" and any other algorithm are
// rejected before signature verification.
type Validator struct {
	opts   Options
	method jwt.SigningMethod
	parser *jwt.Parser
	now    func() time.Time
}

func NewValidator(opts Options) (*Validator, error) {
	if len(opts.Secret) < 32 {
		return nil, fmt.Errorf("signing secret must be at least 32 bytes")
	}

	method, err := opts.signingMethod()
	if err != nil {
		return nil, err
	}

	v := &Validator{opts: opts, method: method, now: time.Now}
	v.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithIssuer(opts.Issuer),
		jwt.WithAudience(opts.Audience),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(opts.ClockSkew),
		jwt.WithTimeFunc(func() time.Time { return v.now() }),
	)

	return v, nil
}

// Validate parses and verifies tokenString and returns its claims,
// including the embedded CSRF secret. Failures map onto the sentinel
// errors in internal/model; callers must collapse them into a generic
// 401 on the wire.
func (v *Validator) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := v.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrBadSignature
		}
		return v.opts.Secret, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !parsed.Valid {
		return nil, model.ErrMalformedToken
	}

	if claims.Subject == "" {
		return nil, model.ErrMalformedToken
	}

	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, model.ErrBadSignature):
		return model.ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return model.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience):
		return model.ErrWrongAudience
	default:
		return model.ErrMalformedToken
	}
}
