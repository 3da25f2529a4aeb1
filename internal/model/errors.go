package model

import "errors"

var (
	// Credential verification errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrWeakPassword       = errors.New("password does not meet policy")

	// Token errors
	ErrBadSignature   = errors.New("token signature invalid")
	ErrWrongAudience  = errors.New("token issuer or audience mismatch")
	ErrTokenExpired   = errors.New("token expired")
	ErrMalformedToken = errors.New("token malformed")

	// Permission/Access errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Todo errors
	ErrTodoNotFound = errors.New("todo not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
