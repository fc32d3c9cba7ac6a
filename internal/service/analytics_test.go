package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkpage/linkpage/internal/apperror"
	"github.com/linkpage/linkpage/internal/model"
)

func TestDashboard_DaysBounds(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addProfile(1, "stats", true)
	svc := NewAnalyticsService(store, store, store)

	tests := []struct {
		days    int
		want    int
		wantErr bool
	}{
		{0, DefaultDashboardDays, false},
		{1, 1, false},
		{365, 365, false},
		{-1, 0, true},
		{366, 0, true},
	}

	for _, tt := range tests {
		d, err := svc.Dashboard(context.Background(), 1, tt.days)
		if tt.wantErr {
			assert.ErrorIs(t, err, apperror.ErrValidation, "days=%d", tt.days)
			continue
		}
		require.NoError(t, err, "days=%d", tt.days)
		assert.Equal(t, tt.want, d.Days)
	}
}

func TestDashboard_NoProfile(t *testing.T) {
	t.Parallel()

	svc := NewAnalyticsService(newFakeStore(), newFakeStore(), newFakeStore())
	_, err := svc.Dashboard(context.Background(), 42, 7)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDashboard_Summary(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	p := store.addProfile(1, "busy", true)
	a := store.addLink(p.ID, 0, true)
	b := store.addLink(p.ID, 1, false)

	store.profiles[p.ID].ViewCount = 40
	store.links[a.ID].ClickCount = 10
	store.links[b.ID].ClickCount = 2

	event := func(typ model.EventType, link *int64, ip string, ago time.Duration) model.AnalyticsEvent {
		return model.AnalyticsEvent{ProfileID: p.ID, LinkID: link, EventType: typ, IPAddress: ip, CreatedAt: now.Add(-ago)}
	}
	store.events = []model.AnalyticsEvent{
		event(model.EventProfileView, nil, "1.1.1.1", time.Hour),
		event(model.EventProfileView, nil, "2.2.2.2", 2*time.Hour),
		event(model.EventProfileView, nil, "1.1.1.1", 26*time.Hour),
		event(model.EventProfileView, nil, "1.1.1.1", 26*time.Hour),
		event(model.EventLinkClick, &a.ID, "1.1.1.1", time.Hour),
		event(model.EventProfileView, nil, "9.9.9.9", 10*24*time.Hour),
		{ProfileID: 999, EventType: model.EventProfileView, IPAddress: "3.3.3.3", CreatedAt: now},
	}

	svc := NewAnalyticsService(store, store, store)
	svc.now = func() time.Time { return now }

	d, err := svc.Dashboard(context.Background(), 1, 7)
	require.NoError(t, err)

	assert.Equal(t, int64(4), d.Summary.TotalViews)
	assert.Equal(t, int64(1), d.Summary.TotalClicks)
	assert.Equal(t, int64(2), d.Summary.UniqueVisitors)
	assert.InDelta(t, 25.0, d.ClickThroughRate, 0.001)
	require.Len(t, d.Summary.DailyStats, 2)
	assert.Equal(t, "2024-05-09", d.Summary.DailyStats[0].Date)
	assert.Equal(t, int64(2), d.Summary.DailyStats[0].Views)
	require.Len(t, d.Summary.TopLinks, 1)
	assert.Equal(t, a.ID, d.Summary.TopLinks[0].LinkID)

	assert.Equal(t, int64(40), d.LifetimeViews)
	assert.Equal(t, int64(12), d.LifetimeClicks)
	require.Len(t, d.Links, 2)
	byID := map[int64]LinkStats{}
	for _, l := range d.Links {
		byID[l.LinkID] = l
	}
	assert.InDelta(t, 25.0, byID[a.ID].ClickThroughRate, 0.001)
	assert.InDelta(t, 5.0, byID[b.ID].ClickThroughRate, 0.001)
	assert.False(t, byID[b.ID].IsActive)
}

func TestDashboard_NoViews(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	p := store.addProfile(1, "quiet", true)
	store.addLink(p.ID, 0, true)
	svc := NewAnalyticsService(store, store, store)

	d, err := svc.Dashboard(context.Background(), 1, 30)
	require.NoError(t, err)
	assert.Zero(t, d.ClickThroughRate)
	assert.Empty(t, d.Summary.TopLinks)
	assert.Empty(t, d.Summary.DailyStats)
	require.Len(t, d.Links, 1)
	assert.Zero(t, d.Links[0].ClickThroughRate)
}
