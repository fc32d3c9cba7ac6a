package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/linkpage/linkpage/internal/model"
)

// Common errors for profile repository operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("user already has a profile")
	ErrUsernameTaken   = errors.New("username already taken")
)

const profileColumns = `
	id, user_id, username, display_name, bio, profile_picture, company_logo,
	theme_color, text_color, background_color, background_settings,
	is_active, view_count, created_at, updated_at`

// CreateProfile inserts a new profile. ID and timestamps are filled in.
func (r *Repository) CreateProfile(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (
			user_id, username, display_name, bio, profile_picture, company_logo,
			theme_color, text_color, background_color, background_settings, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, view_count, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.UserID,
		p.Username,
		p.DisplayName,
		p.Bio,
		p.ProfilePicture,
		p.CompanyLogo,
		p.ThemeColor,
		p.TextColor,
		p.BackgroundColor,
		p.BackgroundSettings,
		p.IsActive,
	).Scan(&p.ID, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return profileWriteError("create profile", err)
	}

	return nil
}

// GetActiveProfileByUsername returns the active profile for a normalized
// username. Inactive profiles are reported as not found.
func (r *Repository) GetActiveProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE username = $1 AND is_active = TRUE`
	return r.getProfile(ctx, query, username)
}

// GetProfileByID returns a profile regardless of its active flag.
func (r *Repository) GetProfileByID(ctx context.Context, id int64) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.getProfile(ctx, query, id)
}

// GetProfileByUserID returns the profile owned by a user.
func (r *Repository) GetProfileByUserID(ctx context.Context, userID int64) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	return r.getProfile(ctx, query, userID)
}

// UpdateProfile applies a partial update and returns the stored row.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, u model.ProfileUpdate) (*model.Profile, error) {
	query := `
		UPDATE profiles SET
			username         = COALESCE($2, username),
			display_name     = COALESCE($3, display_name),
			bio              = COALESCE($4, bio),
			profile_picture  = COALESCE($5, profile_picture),
			company_logo     = COALESCE($6, company_logo),
			theme_color      = COALESCE($7, theme_color),
			text_color       = COALESCE($8, text_color),
			background_color = COALESCE($9, background_color),
			is_active        = COALESCE($10, is_active),
			updated_at       = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	p, err := scanProfile(r.pool.QueryRow(ctx, query,
		id,
		u.Username,
		u.DisplayName,
		u.Bio,
		u.ProfilePicture,
		u.CompanyLogo,
		u.ThemeColor,
		u.TextColor,
		u.BackgroundColor,
		u.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, profileWriteError("update profile", err)
	}

	return p, nil
}

// UpdateBackground replaces the serialized background settings and the
// legacy background color.
func (r *Repository) UpdateBackground(ctx context.Context, id int64, settings, color string) (*model.Profile, error) {
	query := `
		UPDATE profiles
		SET background_settings = $2, background_color = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	p, err := scanProfile(r.pool.QueryRow(ctx, query, id, settings, color))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update background: %w", err)
	}

	return p, nil
}

// UsernameExists checks if a normalized username is already claimed,
// whether or not the owning profile is active.
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE username = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// IncrementProfileViews adds one to a profile's view counter.
func (r *Repository) IncrementProfileViews(ctx context.Context, profileID int64) error {
	result, err := r.pool.Exec(ctx, `UPDATE profiles SET view_count = view_count + 1 WHERE id = $1`, profileID)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *Repository) getProfile(ctx context.Context, query string, arg any) (*model.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Username,
		&p.DisplayName,
		&p.Bio,
		&p.ProfilePicture,
		&p.CompanyLogo,
		&p.ThemeColor,
		&p.TextColor,
		&p.BackgroundColor,
		&p.BackgroundSettings,
		&p.IsActive,
		&p.ViewCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return &p, err
}

// profileWriteError maps unique violations on profiles to sentinel errors.
func profileWriteError(op string, err error) error {
	switch uniqueViolation(err) {
	case "":
		return fmt.Errorf("failed to %s: %w", op, err)
	case "profiles_user_id_key":
		return ErrProfileExists
	default:
		return ErrUsernameTaken
	}
}
