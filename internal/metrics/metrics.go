// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Status labels.
const (
	StatusSuccess      = "success"
	StatusFailed       = "failed"
	StatusDropped      = "dropped"
	StatusDeadLettered = "dead_lettered"
)

// Recorder captures metric events for the application.
type Recorder interface {
	// Public profile resolution
	IncProfileCacheHit()
	IncProfileCacheMiss()
	ObserveResolveDuration(duration time.Duration)

	// Owner mutations
	IncProfileCreated()
	IncProfileUpdated()
	IncLinkCreated()
	IncLinkUpdated()
	IncLinkDeleted()
	IncLinksReordered()
	IncUpload(status string)

	// View and click recording; status is "success" or "failed"
	IncCounterUpdate(status string)
	IncEventAppend(status string)

	// Analytics stream pipeline
	IncAnalyticsEventPublished(status string) // "success" or "dropped"
	IncAnalyticsEventProcessed(status string) // "success", "failed", "dead_lettered"
	ObserveAnalyticsBatchSize(size int)
	ObserveAnalyticsBatchDuration(duration time.Duration)
	SetAnalyticsQueueDepth(depth int64)
	ObserveAnalyticsIngestLag(lag time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
