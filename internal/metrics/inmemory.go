package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ProfileCacheHits       uint64
	ProfileCacheMisses     uint64
	ResolveDurationCount   uint64
	ResolveDurationTotalNs int64

	ProfilesCreated uint64
	ProfilesUpdated uint64
	LinksCreated    uint64
	LinksUpdated    uint64
	LinksDeleted    uint64
	LinksReordered  uint64
	UploadsSuccess  uint64
	UploadsFailed   uint64

	CounterUpdates       uint64
	CounterUpdatesFailed uint64
	EventAppends         uint64
	EventAppendsFailed   uint64

	AnalyticsEventsPublished       uint64
	AnalyticsEventsDropped         uint64
	AnalyticsEventsProcessed       uint64
	AnalyticsEventsProcessedFailed uint64
	AnalyticsEventsDeadLettered    uint64
	AnalyticsBatchCount            uint64
	AnalyticsBatchEvents           uint64
	AnalyticsBatchDurationCount    uint64
	AnalyticsBatchDurationTotalNs  int64
	AnalyticsQueueDepth            int64
	AnalyticsIngestLagCount        uint64
	AnalyticsIngestLagTotalNs      int64
}

// InMemoryRecorder keeps counters in memory. It backs /metrics and tests.
type InMemoryRecorder struct {
	s Snapshot
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	s := &m.s
	return Snapshot{
		ProfileCacheHits:       atomic.LoadUint64(&s.ProfileCacheHits),
		ProfileCacheMisses:     atomic.LoadUint64(&s.ProfileCacheMisses),
		ResolveDurationCount:   atomic.LoadUint64(&s.ResolveDurationCount),
		ResolveDurationTotalNs: atomic.LoadInt64(&s.ResolveDurationTotalNs),

		ProfilesCreated: atomic.LoadUint64(&s.ProfilesCreated),
		ProfilesUpdated: atomic.LoadUint64(&s.ProfilesUpdated),
		LinksCreated:    atomic.LoadUint64(&s.LinksCreated),
		LinksUpdated:    atomic.LoadUint64(&s.LinksUpdated),
		LinksDeleted:    atomic.LoadUint64(&s.LinksDeleted),
		LinksReordered:  atomic.LoadUint64(&s.LinksReordered),
		UploadsSuccess:  atomic.LoadUint64(&s.UploadsSuccess),
		UploadsFailed:   atomic.LoadUint64(&s.UploadsFailed),

		CounterUpdates:       atomic.LoadUint64(&s.CounterUpdates),
		CounterUpdatesFailed: atomic.LoadUint64(&s.CounterUpdatesFailed),
		EventAppends:         atomic.LoadUint64(&s.EventAppends),
		EventAppendsFailed:   atomic.LoadUint64(&s.EventAppendsFailed),

		AnalyticsEventsPublished:       atomic.LoadUint64(&s.AnalyticsEventsPublished),
		AnalyticsEventsDropped:         atomic.LoadUint64(&s.AnalyticsEventsDropped),
		AnalyticsEventsProcessed:       atomic.LoadUint64(&s.AnalyticsEventsProcessed),
		AnalyticsEventsProcessedFailed: atomic.LoadUint64(&s.AnalyticsEventsProcessedFailed),
		AnalyticsEventsDeadLettered:    atomic.LoadUint64(&s.AnalyticsEventsDeadLettered),
		AnalyticsBatchCount:            atomic.LoadUint64(&s.AnalyticsBatchCount),
		AnalyticsBatchEvents:           atomic.LoadUint64(&s.AnalyticsBatchEvents),
		AnalyticsBatchDurationCount:    atomic.LoadUint64(&s.AnalyticsBatchDurationCount),
		AnalyticsBatchDurationTotalNs:  atomic.LoadInt64(&s.AnalyticsBatchDurationTotalNs),
		AnalyticsQueueDepth:            atomic.LoadInt64(&s.AnalyticsQueueDepth),
		AnalyticsIngestLagCount:        atomic.LoadUint64(&s.AnalyticsIngestLagCount),
		AnalyticsIngestLagTotalNs:      atomic.LoadInt64(&s.AnalyticsIngestLagTotalNs),
	}
}

func (m *InMemoryRecorder) IncProfileCacheHit()  { atomic.AddUint64(&m.s.ProfileCacheHits, 1) }
func (m *InMemoryRecorder) IncProfileCacheMiss() { atomic.AddUint64(&m.s.ProfileCacheMisses, 1) }

func (m *InMemoryRecorder) ObserveResolveDuration(duration time.Duration) {
	atomic.AddUint64(&m.s.ResolveDurationCount, 1)
	atomic.AddInt64(&m.s.ResolveDurationTotalNs, duration.Nanoseconds())
}

func (m *InMemoryRecorder) IncProfileCreated() { atomic.AddUint64(&m.s.ProfilesCreated, 1) }
func (m *InMemoryRecorder) IncProfileUpdated() { atomic.AddUint64(&m.s.ProfilesUpdated, 1) }
func (m *InMemoryRecorder) IncLinkCreated()    { atomic.AddUint64(&m.s.LinksCreated, 1) }
func (m *InMemoryRecorder) IncLinkUpdated()    { atomic.AddUint64(&m.s.LinksUpdated, 1) }
func (m *InMemoryRecorder) IncLinkDeleted()    { atomic.AddUint64(&m.s.LinksDeleted, 1) }
func (m *InMemoryRecorder) IncLinksReordered() { atomic.AddUint64(&m.s.LinksReordered, 1) }

func (m *InMemoryRecorder) IncUpload(status string) {
	m.byStatus(status, &m.s.UploadsSuccess, &m.s.UploadsFailed)
}

func (m *InMemoryRecorder) IncCounterUpdate(status string) {
	m.byStatus(status, &m.s.CounterUpdates, &m.s.CounterUpdatesFailed)
}

func (m *InMemoryRecorder) IncEventAppend(status string) {
	m.byStatus(status, &m.s.EventAppends, &m.s.EventAppendsFailed)
}

func (m *InMemoryRecorder) IncAnalyticsEventPublished(status string) {
	m.byStatus(status, &m.s.AnalyticsEventsPublished, &m.s.AnalyticsEventsDropped)
}

func (m *InMemoryRecorder) IncAnalyticsEventProcessed(status string) {
	switch status {
	case StatusSuccess:
		atomic.AddUint64(&m.s.AnalyticsEventsProcessed, 1)
	case StatusDeadLettered:
		atomic.AddUint64(&m.s.AnalyticsEventsDeadLettered, 1)
	default:
		atomic.AddUint64(&m.s.AnalyticsEventsProcessedFailed, 1)
	}
}

func (m *InMemoryRecorder) ObserveAnalyticsBatchSize(size int) {
	atomic.AddUint64(&m.s.AnalyticsBatchCount, 1)
	atomic.AddUint64(&m.s.AnalyticsBatchEvents, uint64(size))
}

func (m *InMemoryRecorder) ObserveAnalyticsBatchDuration(duration time.Duration) {
	atomic.AddUint64(&m.s.AnalyticsBatchDurationCount, 1)
	atomic.AddInt64(&m.s.AnalyticsBatchDurationTotalNs, duration.Nanoseconds())
}

func (m *InMemoryRecorder) SetAnalyticsQueueDepth(depth int64) {
	atomic.StoreInt64(&m.s.AnalyticsQueueDepth, depth)
}

func (m *InMemoryRecorder) ObserveAnalyticsIngestLag(lag time.Duration) {
	atomic.AddUint64(&m.s.AnalyticsIngestLagCount, 1)
	atomic.AddInt64(&m.s.AnalyticsIngestLagTotalNs, lag.Nanoseconds())
}

// byStatus bumps ok for "success" and failed for anything else.
func (m *InMemoryRecorder) byStatus(status string, ok, failed *uint64) {
	if status == StatusSuccess {
		atomic.AddUint64(ok, 1)
		return
	}
	atomic.AddUint64(failed, 1)
}

var (
	_ Recorder    = (*InMemoryRecorder)(nil)
	_ Snapshotter = (*InMemoryRecorder)(nil)
	_ Recorder    = (*NoopRecorder)(nil)
)
