package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	email       string
	displayName string
	role        string
}

var seedUsers = []seedUser{
	{email: "michael@gmail.com", displayName: "Michael Gustavsson", role: "admin"},
	{email: "eva@gmail.com", displayName: "Eva Eriksson", role: "user"},
	{email: "lotta@gmail.com", displayName: "Charlotte Magnusson", role: "user"},
}

const seedPassword = "Pa$$w0rd"

// Seed creates the demo accounts when the users table is empty.
// Safe to run on every startup.
func (db *DB) Seed(ctx context.Context) error {
	var count int
	if err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}

	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), 12)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	now := time.Now().UTC()
	for _, su := range seedUsers {
		id := uuid.NewString()
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO users (id, email, display_name, password_hash, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $5)`,
			id, su.email, su.displayName, string(hash), now)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.email, err)
		}

		_, err = db.Pool.Exec(ctx,
			`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`,
			id, su.role)
		if err != nil {
			return fmt.Errorf("seed role for %s: %w", su.email, err)
		}

		slog.Info("seeded user", "email", su.email, "role", su.role)
	}

	return nil
}
