package service

import (
	"context"
	"time"

	"github.com/linkpage/linkpage/internal/analytics"
	"github.com/linkpage/linkpage/internal/apperror"
)

// Dashboard window bounds, in days.
const (
	DefaultDashboardDays = 7
	MaxDashboardDays     = 365
)

// LinkStats is a link's lifetime performance.
type LinkStats struct {
	LinkID           int64   `json:"link_id"`
	Title            string  `json:"title"`
	Platform         string  `json:"platform"`
	IsActive         bool    `json:"is_active"`
	Clicks           int64   `json:"clicks"`
	ClickThroughRate float64 `json:"click_through_rate"`
}

// Dashboard is the owner's analytics view.
type Dashboard struct {
	Days             int               `json:"days"`
	Summary          analytics.Summary `json:"summary"`
	ClickThroughRate float64           `json:"click_through_rate"`
	LifetimeViews    int64             `json:"lifetime_views"`
	LifetimeClicks   int64             `json:"lifetime_clicks"`
	Links            []LinkStats       `json:"links"`
}

// AnalyticsService builds owner dashboards from counters and the event log.
type AnalyticsService struct {
	profiles ProfileStore
	links    LinkStore
	events   EventStore
	now      func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(profiles ProfileStore, links LinkStore, events EventStore) *AnalyticsService {
	return &AnalyticsService{
		profiles: profiles,
		links:    links,
		events:   events,
		now:      time.Now,
	}
}

// Dashboard summarizes the caller's last days of activity. Zero days means
// the default window.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID int64, days int) (*Dashboard, error) {
	if days == 0 {
		days = DefaultDashboardDays
	}
	if days < 1 || days > MaxDashboardDays {
		return nil, apperror.Validation("days", "Days must be between 1 and 365")
	}

	p, err := ownerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}

	links, err := s.links.ListLinks(ctx, p.ID)
	if err != nil {
		return nil, apperror.Store(err)
	}

	now := s.now()
	events, err := s.events.ListEventsSince(ctx, p.ID, now.Add(-time.Duration(days)*24*time.Hour))
	if err != nil {
		return nil, apperror.Store(err)
	}

	summary := analytics.Aggregate(events, links, days, now)

	d := &Dashboard{
		Days:             days,
		Summary:          summary,
		ClickThroughRate: analytics.ClickThroughRate(summary.TotalClicks, summary.TotalViews),
		LifetimeViews:    p.ViewCount,
		Links:            make([]LinkStats, 0, len(links)),
	}
	for _, l := range links {
		d.LifetimeClicks += l.ClickCount
		d.Links = append(d.Links, LinkStats{
			LinkID:           l.ID,
			Title:            l.Title,
			Platform:         l.Platform,
			IsActive:         l.IsActive,
			Clicks:           l.ClickCount,
			ClickThroughRate: analytics.ClickThroughRate(l.ClickCount, p.ViewCount),
		})
	}

	return d, nil
}
