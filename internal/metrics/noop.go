package metrics

import "time"

// NoopRecorder discards everything.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncProfileCacheHit() {}
func (n *NoopRecorder) IncProfileCacheMiss() {}
func (n *NoopRecorder) ObserveResolveDuration(time.Duration) {}
func (n *NoopRecorder) IncProfileCreated() {}
func (n *NoopRecorder) IncProfileUpdated() {}
func (n *NoopRecorder) IncLinkCreated() {}
func (n *NoopRecorder) IncLinkUpdated() {}
func (n *NoopRecorder) IncLinkDeleted() {}
func (n *NoopRecorder) IncLinksReordered() {}
func (n *NoopRecorder) IncUpload(string) {}
func (n *NoopRecorder) IncCounterUpdate(string) {}
func (n *NoopRecorder) IncEventAppend(string) {}
func (n *NoopRecorder) IncAnalyticsEventPublished(string) {}
func (n *NoopRecorder) IncAnalyticsEventProcessed(string) {}
func (n *NoopRecorder) ObserveAnalyticsBatchSize(int) {}
func (n *NoopRecorder) ObserveAnalyticsBatchDuration(time.Duration) {}
func (n *NoopRecorder) SetAnalyticsQueueDepth(int64) {}
func (n *NoopRecorder) ObserveAnalyticsIngestLag(time.Duration) {}
