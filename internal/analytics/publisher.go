package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/linkpage/linkpage/internal/metrics"
	"github.com/linkpage/linkpage/internal/model"
)

const (
	// StreamKey is the Redis stream for analytics events.
	StreamKey = "stream:analytics_events"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:analytics_events:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000
)

// EventPayload is the compact stream encoding of an AnalyticsEvent.
type EventPayload struct {
	ID        string `json:"id"`            // ULID, idempotency key
	ProfileID int64  `json:"pid"`           // profile_id
	LinkID    *int64 `json:"lid,omitempty"` // link_id, clicks only
	EventType string `json:"et"`            // event_type
	IPAddress string `json:"ip"`            // ip_address
	UserAgent string `json:"ua,omitempty"`  // user_agent (truncated)
	Referrer  string `json:"r,omitempty"`   // referrer (sanitized)
	CreatedAt int64  `json:"t"`             // Unix milliseconds
}

// NewEventPayload encodes event for the stream.
func NewEventPayload(event *model.AnalyticsEvent) EventPayload {
	return EventPayload{
		ID:        event.ID,
		ProfileID: event.ProfileID,
		LinkID:    event.LinkID,
		EventType: string(event.EventType),
		IPAddress: event.IPAddress,
		UserAgent: event.UserAgent,
		Referrer:  event.Referrer,
		CreatedAt: event.CreatedAt.UnixMilli(),
	}
}

// Event decodes the payload.
func (p EventPayload) Event() *model.AnalyticsEvent {
	return &model.AnalyticsEvent{
		ID:        p.ID,
		ProfileID: p.ProfileID,
		LinkID:    p.LinkID,
		EventType: model.EventType(p.EventType),
		IPAddress: p.IPAddress,
		UserAgent: p.UserAgent,
		Referrer:  p.Referrer,
		CreatedAt: time.UnixMilli(p.CreatedAt).UTC(),
	}
}

// Publisher is an EventSink that enqueues events on a Redis stream for the
// Worker to persist.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new analytics event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "analytics.publisher"),
		metrics: recorder,
	}
}

// Publish adds an event to the stream and returns its stream id.
func (p *Publisher) Publish(ctx context.Context, payload EventPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	id, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return id, nil
}

// AppendEvent implements EventSink.
func (p *Publisher) AppendEvent(ctx context.Context, event *model.AnalyticsEvent) error {
	streamID, err := p.Publish(ctx, NewEventPayload(event))
	if err != nil {
		p.metrics.IncAnalyticsEventPublished(metrics.StatusDropped)
		return err
	}

	p.logger.Debug("analytics event published",
		"event_id", event.ID,
		"event_type", event.EventType,
		"stream_id", streamID,
	)
	p.metrics.IncAnalyticsEventPublished(metrics.StatusSuccess)
	return nil
}
