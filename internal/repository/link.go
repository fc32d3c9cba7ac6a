package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/linkpage/linkpage/internal/model"
)

// Common errors for link repository operations.
var (
	ErrLinkNotFound = errors.New("link not found")
	ErrLinkNotOwned = errors.New("link does not belong to profile")
)

const linkColumns = `
	id, profile_id, platform, title, url, icon, display_order,
	is_active, click_count, created_at, updated_at`

// CreateLink inserts a new link. ID and timestamps are filled in.
func (r *Repository) CreateLink(ctx context.Context, link *model.Link) error {
	query := `
		INSERT INTO links (profile_id, platform, title, url, icon, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, click_count, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		link.ProfileID,
		link.Platform,
		link.Title,
		link.URL,
		link.Icon,
		link.DisplayOrder,
		link.IsActive,
	).Scan(&link.ID, &link.ClickCount, &link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// GetLinkByID retrieves a link by its ID.
func (r *Repository) GetLinkByID(ctx context.Context, id int64) (*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`

	link, err := scanLink(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

// GetPublicLink retrieves an active link whose profile is also active.
func (r *Repository) GetPublicLink(ctx context.Context, id int64) (*model.Link, error) {
	query := `
		SELECT l.id, l.profile_id, l.platform, l.title, l.url, l.icon, l.display_order,
		       l.is_active, l.click_count, l.created_at, l.updated_at
		FROM links l
		JOIN profiles p ON p.id = l.profile_id
		WHERE l.id = $1 AND l.is_active = TRUE AND p.is_active = TRUE
	`

	link, err := scanLink(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get public link: %w", err)
	}

	return link, nil
}

// ListActiveLinks returns a profile's active links in render order.
func (r *Repository) ListActiveLinks(ctx context.Context, profileID int64) ([]model.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE profile_id = $1 AND is_active = TRUE
		ORDER BY display_order ASC, id ASC
	`
	return r.listLinks(ctx, query, profileID)
}

// ListLinks returns all of a profile's links, active or not, in render order.
func (r *Repository) ListLinks(ctx context.Context, profileID int64) ([]model.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE profile_id = $1
		ORDER BY display_order ASC, id ASC
	`
	return r.listLinks(ctx, query, profileID)
}

// UpdateLink applies a partial update and returns the stored row.
func (r *Repository) UpdateLink(ctx context.Context, id int64, u model.LinkUpdate) (*model.Link, error) {
	query := `
		UPDATE links SET
			platform      = COALESCE($2, platform),
			title         = COALESCE($3, title),
			url           = COALESCE($4, url),
			icon          = COALESCE($5, icon),
			display_order = COALESCE($6, display_order),
			is_active     = COALESCE($7, is_active),
			updated_at    = NOW()
		WHERE id = $1
		RETURNING ` + linkColumns

	link, err := scanLink(r.pool.QueryRow(ctx, query,
		id,
		u.Platform,
		u.Title,
		u.URL,
		u.Icon,
		u.DisplayOrder,
		u.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to update link: %w", err)
	}

	return link, nil
}

// DeleteLink permanently removes a link.
func (r *Repository) DeleteLink(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// ReorderLinks sets display_order of each id to its index in ids. Every id
// must belong to profileID, otherwise nothing is written and ErrLinkNotOwned
// is returned. The per-id updates are sent as one batch but are not
// transactional.
func (r *Repository) ReorderLinks(ctx context.Context, profileID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	distinct := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		distinct[id] = struct{}{}
	}

	var owned int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM links WHERE profile_id = $1 AND id = ANY($2)`,
		profileID, pq.Array(ids),
	).Scan(&owned)
	if err != nil {
		return fmt.Errorf("failed to check link ownership: %w", err)
	}
	if owned != len(distinct) {
		return ErrLinkNotOwned
	}

	batch := &pgx.Batch{}
	for i, id := range ids {
		batch.Queue(
			`UPDATE links SET display_order = $2, updated_at = NOW() WHERE id = $1 AND profile_id = $3`,
			id, i, profileID,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range ids {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("reorder link %d: %w", ids[i], err)
		}
	}

	return nil
}

// IncrementLinkClicks adds one to a link's click counter and returns the id
// of the owning profile.
func (r *Repository) IncrementLinkClicks(ctx context.Context, linkID int64) (int64, error) {
	var profileID int64
	err := r.pool.QueryRow(ctx,
		`UPDATE links SET click_count = click_count + 1 WHERE id = $1 RETURNING profile_id`,
		linkID,
	).Scan(&profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrLinkNotFound
		}
		return 0, fmt.Errorf("failed to increment click count: %w", err)
	}
	return profileID, nil
}

// LinkProfileID returns the id of the profile owning a link.
func (r *Repository) LinkProfileID(ctx context.Context, linkID int64) (int64, error) {
	var profileID int64
	err := r.pool.QueryRow(ctx, `SELECT profile_id FROM links WHERE id = $1`, linkID).Scan(&profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrLinkNotFound
		}
		return 0, fmt.Errorf("failed to get link profile: %w", err)
	}
	return profileID, nil
}

func (r *Repository) listLinks(ctx context.Context, query string, profileID int64) ([]model.Link, error) {
	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	links := []model.Link{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, *link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

func scanLink(row pgx.Row) (*model.Link, error) {
	var link model.Link
	err := row.Scan(
		&link.ID,
		&link.ProfileID,
		&link.Platform,
		&link.Title,
		&link.URL,
		&link.Icon,
		&link.DisplayOrder,
		&link.IsActive,
		&link.ClickCount,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	return &link, err
}
