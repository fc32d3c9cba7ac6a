package model

import "time"

// EventType distinguishes analytics facts.
type EventType string

const (
	EventProfileView EventType = "profile_view"
	EventLinkClick   EventType = "link_click"
)

// IsValid reports whether t is a known event type.
func (t EventType) IsValid() bool {
	return t == EventProfileView || t == EventLinkClick
}

// UnknownIP is stored when the client address cannot be determined.
const UnknownIP = "unknown"

// AnalyticsEvent is an append-only view or click fact.
type AnalyticsEvent struct {
	ID        string    `json:"id"` // ULID (time-sortable)
	ProfileID int64     `json:"profile_id"`
	LinkID    *int64    `json:"link_id,omitempty"` // set for link_click only
	EventType EventType `json:"event_type"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent,omitempty"` // truncated 500 chars
	Referrer  string    `json:"referrer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
