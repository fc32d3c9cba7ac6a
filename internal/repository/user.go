package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/linkpage/linkpage/internal/model"
)

// ErrUserNotFound is returned when no user matches.
var ErrUserNotFound = errors.New("user not found")

// GetUserByExternalID retrieves a user by the auth provider's subject.
func (r *Repository) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	query := `
		SELECT id, external_id, email, created_at
		FROM users
		WHERE external_id = $1
	`

	var (
		user  model.User
		email *string
	)
	err := r.pool.QueryRow(ctx, query, externalID).Scan(
		&user.ID,
		&user.ExternalID,
		&email,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by external ID: %w", err)
	}
	user.Email = stringValue(email)

	return &user, nil
}

// GetOrCreateUser returns the user for externalID, creating it on first
// sight. A concurrent insert of the same subject resolves to the winner's row.
func (r *Repository) GetOrCreateUser(ctx context.Context, externalID, email string) (*model.User, error) {
	query := `
		INSERT INTO users (external_id, email)
		VALUES ($1, $2)
		ON CONFLICT (external_id) DO UPDATE
		SET email = COALESCE(EXCLUDED.email, users.email)
		RETURNING id, external_id, email, created_at
	`

	var (
		user   model.User
		stored *string
	)
	err := r.pool.QueryRow(ctx, query, externalID, nullableString(email)).Scan(
		&user.ID,
		&user.ExternalID,
		&stored,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}
	user.Email = stringValue(stored)

	return &user, nil
}
