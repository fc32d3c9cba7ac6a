package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkpage/linkpage/internal/model"
)

func idp(id int64) *int64 { return &id }

func view(at time.Time, ip string) model.AnalyticsEvent {
	return model.AnalyticsEvent{ProfileID: 1, EventType: model.EventProfileView, IPAddress: ip, CreatedAt: at}
}

func click(linkID int64, at time.Time, ip string) model.AnalyticsEvent {
	return model.AnalyticsEvent{ProfileID: 1, LinkID: idp(linkID), EventType: model.EventLinkClick, IPAddress: ip, CreatedAt: at}
}

func TestAggregate_Example(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	day1 := now.Add(-48 * time.Hour)
	day2 := now.Add(-24 * time.Hour)

	events := []model.AnalyticsEvent{
		view(day1, "10.0.0.1"),
		view(day1, "10.0.0.2"),
		click(1, day1, "10.0.0.1"),
		click(1, day2, "10.0.0.1"),
		click(2, day2, "10.0.0.2"),
	}
	links := []model.Link{
		{ID: 1, Title: "A", Platform: "instagram"},
		{ID: 2, Title: "B", Platform: "github"},
	}

	got := Aggregate(events, links, 7, now)

	assert.Equal(t, int64(2), got.TotalViews)
	assert.Equal(t, int64(3), got.TotalClicks)
	assert.Equal(t, int64(2), got.UniqueVisitors)
	assert.Equal(t, []TopLink{
		{LinkID: 1, Title: "A", Platform: "instagram", Clicks: 2},
		{LinkID: 2, Title: "B", Platform: "github", Clicks: 1},
	}, got.TopLinks)
	assert.Equal(t, []DailyStat{
		{Date: "2026-03-08", Views: 2, Clicks: 1},
		{Date: "2026-03-09", Views: 0, Clicks: 2},
	}, got.DailyStats)
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	got := Aggregate(nil, nil, 7, time.Now())
	assert.Zero(t, got.TotalViews)
	assert.Zero(t, got.TotalClicks)
	assert.Zero(t, got.UniqueVisitors)
	assert.NotNil(t, got.TopLinks)
	assert.Empty(t, got.TopLinks)
	assert.NotNil(t, got.DailyStats)
	assert.Empty(t, got.DailyStats)
}

func TestAggregate_WindowFilter(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	events := []model.AnalyticsEvent{
		view(now.Add(-8*24*time.Hour), "old"),
		view(now.Add(-7*24*time.Hour), "edge"),
		view(now.Add(-time.Hour), "new"),
	}

	got := Aggregate(events, nil, 7, now)
	assert.Equal(t, int64(2), got.TotalViews)
	assert.Equal(t, int64(2), got.UniqueVisitors)
}

func TestAggregate_DeletedLinkDroppedFromRanking(t *testing.T) {
	t.Parallel()

	now := time.Now()
	events := []model.AnalyticsEvent{
		click(9, now, "a"),
		click(9, now, "a"),
		click(1, now, "b"),
	}
	links := []model.Link{{ID: 1, Title: "kept"}}

	got := Aggregate(events, links, 1, now)
	assert.Equal(t, int64(3), got.TotalClicks)
	require.Len(t, got.TopLinks, 1)
	assert.Equal(t, "kept", got.TopLinks[0].Title)
}

func TestAggregate_TopLinksTruncatedAndStable(t *testing.T) {
	t.Parallel()

	now := time.Now()
	var events []model.AnalyticsEvent
	var links []model.Link
	// Links 1..7, link 4 gets three clicks, the rest one each.
	for id := int64(1); id <= 7; id++ {
		links = append(links, model.Link{ID: id, Title: fmt.Sprintf("L%d", id)})
		events = append(events, click(id, now, "ip"))
	}
	events = append(events, click(4, now, "ip"), click(4, now, "ip"))

	got := Aggregate(events, links, 1, now)
	require.Len(t, got.TopLinks, MaxTopLinks)

	titles := make([]string, 0, len(got.TopLinks))
	for _, tl := range got.TopLinks {
		titles = append(titles, tl.Title)
	}
	assert.Equal(t, []string{"L4", "L1", "L2", "L3", "L5"}, titles)
}

func TestAggregate_DailyStatsKeepsRecent30(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	var events []model.AnalyticsEvent
	for d := 0; d < 40; d++ {
		events = append(events, view(now.Add(-time.Duration(d)*24*time.Hour), "ip"))
	}

	got := Aggregate(events, nil, 60, now)
	require.Len(t, got.DailyStats, MaxDailyStats)
	assert.Equal(t, "2026-05-03", got.DailyStats[0].Date)
	assert.Equal(t, "2026-06-01", got.DailyStats[MaxDailyStats-1].Date)
	assert.Equal(t, int64(40), got.TotalViews)
}

func TestAggregate_LocalDateOfEvent(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	at := time.Date(2026, 3, 10, 1, 0, 0, 0, tokyo) // 2026-03-09 16:00 UTC

	got := Aggregate([]model.AnalyticsEvent{view(at, "ip")}, nil, 7, at.Add(time.Hour))
	require.Len(t, got.DailyStats, 1)
	assert.Equal(t, "2026-03-10", got.DailyStats[0].Date)
}

func TestAggregate_PlaceholderIPCountsOnce(t *testing.T) {
	t.Parallel()

	now := time.Now()
	events := []model.AnalyticsEvent{
		view(now, model.UnknownIP),
		view(now, model.UnknownIP),
		view(now, "1.1.1.1"),
	}

	got := Aggregate(events, nil, 1, now)
	assert.Equal(t, int64(2), got.UniqueVisitors)
}

func TestAggregate_IgnoresUnknownEventTypes(t *testing.T) {
	t.Parallel()

	now := time.Now()
	events := []model.AnalyticsEvent{
		{EventType: "share", IPAddress: "x", CreatedAt: now},
		view(now, "y"),
	}

	got := Aggregate(events, nil, 1, now)
	assert.Equal(t, int64(1), got.TotalViews)
	assert.Equal(t, int64(1), got.UniqueVisitors)
}

func TestClickThroughRate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, ClickThroughRate(5, 0))
	assert.Equal(t, 0.0, ClickThroughRate(0, 10))
	assert.InDelta(t, 25.0, ClickThroughRate(1, 4), 1e-9)
	assert.InDelta(t, 150.0, ClickThroughRate(3, 2), 1e-9)
}
