package token

import (
	"github.com/golang-jwt/jwt/v5"

	"go-todo-api/internal/model"
)

// Claims is the payload carried by every access token. The csrf claim
// is a per-token random secret; state-changing requests must echo it in
// the X-CSRF-Token header, which binds CSRF protection to possession of
// this exact token instead of a server-side session.
type Claims struct {
	Email       string   `json:"email"`
	DisplayName string   `json:"name"`
	Roles       []string `json:"roles"`
	CSRF        string   `json:"csrf"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() model.Principal {
	return model.Principal{
		SubjectID:   c.Subject,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		Roles:       c.Roles,
	}
}
