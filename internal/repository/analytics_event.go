package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/linkpage/linkpage/internal/model"
)

const insertEventQuery = `
	INSERT INTO analytics_events (
		id, profile_id, link_id, event_type, ip_address, user_agent, referrer, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO NOTHING
`

// AppendEvent stores a single analytics event. Re-appending an event with
// the same id is a no-op.
func (r *Repository) AppendEvent(ctx context.Context, event *model.AnalyticsEvent) error {
	_, err := r.pool.Exec(ctx, insertEventQuery, eventArgs(event)...)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// BulkInsertEvents inserts events with idempotency via ON CONFLICT DO NOTHING.
func (r *Repository) BulkInsertEvents(ctx context.Context, events []*model.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(insertEventQuery, eventArgs(event)...)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(events); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert event %d: %w", i, err)
		}
	}

	return nil
}

// ListEventsSince returns a profile's events created at or after since,
// oldest first.
func (r *Repository) ListEventsSince(ctx context.Context, profileID int64, since time.Time) ([]model.AnalyticsEvent, error) {
	query := `
		SELECT id, profile_id, link_id, event_type, ip_address, user_agent, referrer, created_at
		FROM analytics_events
		WHERE profile_id = $1 AND created_at >= $2
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, profileID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []model.AnalyticsEvent{}
	for rows.Next() {
		var (
			e         model.AnalyticsEvent
			eventType string
			userAgent *string
			referrer  *string
		)
		if err := rows.Scan(
			&e.ID,
			&e.ProfileID,
			&e.LinkID,
			&eventType,
			&e.IPAddress,
			&userAgent,
			&referrer,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.EventType = model.EventType(eventType)
		e.UserAgent = stringValue(userAgent)
		e.Referrer = stringValue(referrer)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

func eventArgs(e *model.AnalyticsEvent) []any {
	ip := e.IPAddress
	if ip == "" {
		ip = model.UnknownIP
	}
	return []any{
		e.ID,
		e.ProfileID,
		e.LinkID,
		string(e.EventType),
		ip,
		nullableString(e.UserAgent),
		nullableString(e.Referrer),
		e.CreatedAt,
	}
}
