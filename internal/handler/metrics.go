package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/linkpage/linkpage/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	s := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	counter(w, "linkpage_profile_cache_total{result=\"hit\"}", s.ProfileCacheHits)
	counter(w, "linkpage_profile_cache_total{result=\"miss\"}", s.ProfileCacheMisses)
	seconds(w, "linkpage_profile_resolve_duration_seconds", s.ResolveDurationCount, s.ResolveDurationTotalNs)

	counter(w, "linkpage_profiles_created_total", s.ProfilesCreated)
	counter(w, "linkpage_profiles_updated_total", s.ProfilesUpdated)
	counter(w, "linkpage_links_created_total", s.LinksCreated)
	counter(w, "linkpage_links_updated_total", s.LinksUpdated)
	counter(w, "linkpage_links_deleted_total", s.LinksDeleted)
	counter(w, "linkpage_links_reordered_total", s.LinksReordered)
	counter(w, "linkpage_uploads_total{status=\"success\"}", s.UploadsSuccess)
	counter(w, "linkpage_uploads_total{status=\"failed\"}", s.UploadsFailed)

	counter(w, "linkpage_counter_updates_total{status=\"success\"}", s.CounterUpdates)
	counter(w, "linkpage_counter_updates_total{status=\"failed\"}", s.CounterUpdatesFailed)
	counter(w, "linkpage_event_appends_total{status=\"success\"}", s.EventAppends)
	counter(w, "linkpage_event_appends_total{status=\"failed\"}", s.EventAppendsFailed)

	counter(w, "linkpage_analytics_events_published_total{status=\"success\"}", s.AnalyticsEventsPublished)
	counter(w, "linkpage_analytics_events_published_total{status=\"dropped\"}", s.AnalyticsEventsDropped)
	counter(w, "linkpage_analytics_events_processed_total{status=\"success\"}", s.AnalyticsEventsProcessed)
	counter(w, "linkpage_analytics_events_processed_total{status=\"failed\"}", s.AnalyticsEventsProcessedFailed)
	counter(w, "linkpage_analytics_events_dead_lettered_total", s.AnalyticsEventsDeadLettered)

	counter(w, "linkpage_analytics_batches_total", s.AnalyticsBatchCount)
	counter(w, "linkpage_analytics_batch_events_total", s.AnalyticsBatchEvents)
	seconds(w, "linkpage_analytics_batch_duration_seconds", s.AnalyticsBatchDurationCount, s.AnalyticsBatchDurationTotalNs)
	_, _ = fmt.Fprintf(w, "linkpage_analytics_queue_depth %d\n", s.AnalyticsQueueDepth)
	seconds(w, "linkpage_analytics_ingest_lag_seconds", s.AnalyticsIngestLagCount, s.AnalyticsIngestLagTotalNs)
}

func counter(w io.Writer, name string, v uint64) {
	_, _ = fmt.Fprintf(w, "%s %d\n", name, v)
}

// seconds writes a count/sum pair from a nanosecond total.
func seconds(w io.Writer, name string, count uint64, totalNs int64) {
	_, _ = fmt.Fprintf(w, "%s_count %d\n", name, count)
	_, _ = fmt.Fprintf(w, "%s_sum %.6f\n", name, float64(totalNs)/1e9)
}
