package model

import (
	"sort"
	"time"
)

// Link is one call-to-action button on a profile.
type Link struct {
	ID           int64     `json:"id"`
	ProfileID    int64     `json:"profile_id"`
	Platform     string    `json:"platform"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Icon         string    `json:"icon"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	ClickCount   int64     `json:"click_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LinkUpdate carries a partial link update. Nil fields are left as-is.
type LinkUpdate struct {
	Platform     *string
	Title        *string
	URL          *string
	Icon         *string
	DisplayOrder *int
	IsActive     *bool
}

// SortLinks orders links by display order, then by id. Duplicated
// display orders are tolerated.
func SortLinks(links []Link) {
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].DisplayOrder != links[j].DisplayOrder {
			return links[i].DisplayOrder < links[j].DisplayOrder
		}
		return links[i].ID < links[j].ID
	})
}

// ActiveLinks returns the active subset of links, preserving order.
func ActiveLinks(links []Link) []Link {
	out := make([]Link, 0, len(links))
	for _, l := range links {
		if l.IsActive {
			out = append(out, l)
		}
	}
	return out
}

// NextDisplayOrder returns the display order for a link appended after links.
func NextDisplayOrder(links []Link) int {
	if len(links) == 0 {
		return 0
	}
	next := links[0].DisplayOrder
	for _, l := range links[1:] {
		if l.DisplayOrder > next {
			next = l.DisplayOrder
		}
	}
	return next + 1
}
