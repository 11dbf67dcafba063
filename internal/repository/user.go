package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/casefile/casefile/internal/model"
)

// CreateUser inserts a new user and returns it with its assigned id.
func (r *Repository) CreateUser(ctx context.Context, name, passwordHash string) (*model.User, error) {
	query := `
		INSERT INTO users (name, password_hash, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	user := &model.User{
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	err := r.pool.QueryRow(ctx, query, user.Name, user.PasswordHash, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByName retrieves a user by their unique name. Used at login time to
// resolve credentials; authorization afterwards relies on the token alone.
func (r *Repository) GetUserByName(ctx context.Context, name string) (*model.User, error) {
	query := `
		SELECT id, name, password_hash, created_at
		FROM users
		WHERE name = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&user.ID,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by name: %w", err)
	}

	return &user, nil
}
