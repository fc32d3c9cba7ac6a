package analytics

import (
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/linkpage/linkpage/internal/model"
)

// ValidateEventPayload checks a payload read back from the stream.
func ValidateEventPayload(p EventPayload) error {
	if _, err := ulid.ParseStrict(p.ID); err != nil {
		return fmt.Errorf("id must be a ULID: %w", err)
	}
	if p.ProfileID <= 0 {
		return fmt.Errorf("profile_id is required")
	}

	switch model.EventType(p.EventType) {
	case model.EventProfileView:
		if p.LinkID != nil {
			return fmt.Errorf("link_id must be empty for profile_view")
		}
	case model.EventLinkClick:
		if p.LinkID == nil || *p.LinkID <= 0 {
			return fmt.Errorf("link_id is required for link_click")
		}
	default:
		return fmt.Errorf("unknown event_type %q", p.EventType)
	}

	if p.IPAddress == "" {
		return fmt.Errorf("ip_address is required")
	}
	if p.CreatedAt <= 0 {
		return fmt.Errorf("created_at must be set")
	}
	if len(p.Referrer) > maxMetaLength {
		return fmt.Errorf("referrer too long")
	}
	if len(p.UserAgent) > maxMetaLength {
		return fmt.Errorf("user_agent too long")
	}
	return nil
}
