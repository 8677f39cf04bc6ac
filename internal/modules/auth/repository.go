// Package auth registers users, issues bearer tokens and resolves them back to users.
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/portfolio/internal/database"
	"github.com/aristath/portfolio/internal/domain"
	"github.com/rs/zerolog"
)

// storedUser is a user row including the password hash
type storedUser struct {
	domain.User
	PasswordHash string
}

// Repository handles user persistence in portfolio.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new user repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "user").Logger(),
	}
}

// Create stores a new user. Usernames are unique.
func (r *Repository) Create(ctx context.Context, user domain.User, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, is_admin, password_hash, created_at) VALUES (?, ?, ?, ?)",
		user.Username, user.IsAdmin, passwordHash, time.Now().Unix(),
	)
	if database.IsUniqueViolation(err) {
		return domain.Validationf("User with username %s already exists.", user.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user %s: %w", user.Username, err)
	}
	return nil
}

// Get returns the user with the given username
func (r *Repository) Get(ctx context.Context, username string) (*storedUser, error) {
	var u storedUser
	err := r.db.QueryRowContext(ctx,
		"SELECT username, is_admin, password_hash FROM users WHERE username = ?", username,
	).Scan(&u.Username, &u.IsAdmin, &u.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, domain.NotFoundf("User %s does not exist.", username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}
	return &u, nil
}
