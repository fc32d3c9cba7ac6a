package analytics

import (
	"sort"
	"time"

	"github.com/linkpage/linkpage/internal/model"
)

// Limits applied to aggregated series.
const (
	MaxTopLinks   = 5
	MaxDailyStats = 30
)

// dateLayout formats the calendar date of an event in its own location.
const dateLayout = "2006-01-02"

// TopLink is one entry of the click ranking.
type TopLink struct {
	LinkID   int64  `json:"link_id"`
	Title    string `json:"title"`
	Platform string `json:"platform"`
	Clicks   int64  `json:"clicks"`
}

// DailyStat counts events for one calendar date.
type DailyStat struct {
	Date   string `json:"date"`
	Views  int64  `json:"views"`
	Clicks int64  `json:"clicks"`
}

// Summary is the derived view of an event log over a time window.
//
// UniqueVisitors counts distinct IP addresses across views and clicks. It is
// a coarse approximation: NAT, proxies and dynamic addresses all skew it, and
// events without an address share the placeholder value.
type Summary struct {
	TotalViews     int64       `json:"total_views"`
	TotalClicks    int64       `json:"total_clicks"`
	UniqueVisitors int64       `json:"unique_visitors"`
	TopLinks       []TopLink   `json:"top_links"`
	DailyStats     []DailyStat `json:"daily_stats"`
}

// Aggregate computes a Summary over events created within days before now.
// Clicks on links missing from links are counted in the totals but left out
// of TopLinks.
func Aggregate(events []model.AnalyticsEvent, links []model.Link, days int, now time.Time) Summary {
	since := now.Add(-time.Duration(days) * 24 * time.Hour)

	s := Summary{
		TopLinks:   []TopLink{},
		DailyStats: []DailyStat{},
	}
	visitors := make(map[string]struct{})
	clicks := make(map[int64]int64)
	var clickOrder []int64
	daily := make(map[string]*DailyStat)

	for i := range events {
		e := &events[i]
		if e.CreatedAt.Before(since) || !e.EventType.IsValid() {
			continue
		}

		visitors[e.IPAddress] = struct{}{}

		date := e.CreatedAt.Format(dateLayout)
		day, ok := daily[date]
		if !ok {
			day = &DailyStat{Date: date}
			daily[date] = day
		}

		switch e.EventType {
		case model.EventProfileView:
			s.TotalViews++
			day.Views++
		case model.EventLinkClick:
			s.TotalClicks++
			day.Clicks++
			if e.LinkID != nil {
				if _, seen := clicks[*e.LinkID]; !seen {
					clickOrder = append(clickOrder, *e.LinkID)
				}
				clicks[*e.LinkID]++
			}
		}
	}

	s.UniqueVisitors = int64(len(visitors))
	s.TopLinks = topLinks(clicks, clickOrder, links)
	s.DailyStats = dailyStats(daily)

	return s
}

func topLinks(clicks map[int64]int64, order []int64, links []model.Link) []TopLink {
	byID := make(map[int64]model.Link, len(links))
	for _, l := range links {
		byID[l.ID] = l
	}

	out := make([]TopLink, 0, len(order))
	for _, id := range order {
		l, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, TopLink{
			LinkID:   id,
			Title:    l.Title,
			Platform: l.Platform,
			Clicks:   clicks[id],
		})
	}

	// Ties keep first-click order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Clicks > out[j].Clicks
	})

	if len(out) > MaxTopLinks {
		out = out[:MaxTopLinks]
	}
	return out
}

func dailyStats(daily map[string]*DailyStat) []DailyStat {
	out := make([]DailyStat, 0, len(daily))
	for _, d := range daily {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})

	if len(out) > MaxDailyStats {
		out = out[len(out)-MaxDailyStats:]
	}
	return out
}

// ClickThroughRate returns clicks as a percentage of views, or 0 when there
// are no views.
func ClickThroughRate(clicks, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return float64(clicks) / float64(views) * 100
}
