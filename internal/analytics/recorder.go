package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linkpage/linkpage/internal/metrics"
	"github.com/linkpage/linkpage/internal/model"
)

// DefaultRecordTimeout bounds one asynchronous recording.
const DefaultRecordTimeout = 2 * time.Second

// CounterStore holds the authoritative view and click counters.
type CounterStore interface {
	IncrementProfileViews(ctx context.Context, profileID int64) error
	// IncrementLinkClicks returns the id of the profile owning the link.
	IncrementLinkClicks(ctx context.Context, linkID int64) (int64, error)
	LinkProfileID(ctx context.Context, linkID int64) (int64, error)
}

// EventSink appends analytics events.
type EventSink interface {
	AppendEvent(ctx context.Context, event *model.AnalyticsEvent) error
}

// Recorder increments view and click counters and appends the matching
// analytics event. The two writes are independent: either may fail without
// undoing the other. Counters are authoritative; the event log is best-effort.
type Recorder struct {
	counters CounterStore
	sink     EventSink
	logger   *slog.Logger
	metrics  metrics.Recorder
	timeout  time.Duration
	now      func() time.Time

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewRecorder creates a Recorder. A zero timeout uses DefaultRecordTimeout.
func NewRecorder(counters CounterStore, sink EventSink, logger *slog.Logger, recorder metrics.Recorder, timeout time.Duration) *Recorder {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if timeout <= 0 {
		timeout = DefaultRecordTimeout
	}
	return &Recorder{
		counters: counters,
		sink:     sink,
		logger:   logger.With("component", "analytics.recorder"),
		metrics:  recorder,
		timeout:  timeout,
		now:      time.Now,
	}
}

// RecordView counts one view of a profile. Repeat views are not
// de-duplicated.
func (r *Recorder) RecordView(ctx context.Context, profileID int64, v Visitor) error {
	var errs []error

	if err := r.counters.IncrementProfileViews(ctx, profileID); err != nil {
		r.metrics.IncCounterUpdate(metrics.StatusFailed)
		errs = append(errs, fmt.Errorf("increment view count: %w", err))
	} else {
		r.metrics.IncCounterUpdate(metrics.StatusSuccess)
	}

	if err := r.append(ctx, r.newEvent(model.EventProfileView, profileID, nil, v)); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// RecordClick counts one click on a link and logs it against the link's
// profile.
func (r *Recorder) RecordClick(ctx context.Context, linkID int64, v Visitor) error {
	var errs []error

	profileID, err := r.counters.IncrementLinkClicks(ctx, linkID)
	if err != nil {
		r.metrics.IncCounterUpdate(metrics.StatusFailed)
		errs = append(errs, fmt.Errorf("increment click count: %w", err))

		profileID, err = r.counters.LinkProfileID(ctx, linkID)
		if err != nil {
			r.metrics.IncEventAppend(metrics.StatusFailed)
			errs = append(errs, fmt.Errorf("resolve link profile: %w", err))
			return errors.Join(errs...)
		}
	} else {
		r.metrics.IncCounterUpdate(metrics.StatusSuccess)
	}

	if err := r.append(ctx, r.newEvent(model.EventLinkClick, profileID, &linkID, v)); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// RecordViewAsync records a view without blocking the caller. Failures are
// logged and counted, never returned.
func (r *Recorder) RecordViewAsync(profileID int64, v Visitor) {
	r.dispatch(model.EventProfileView, slog.Int64("profile_id", profileID), func(ctx context.Context) error {
		return r.RecordView(ctx, profileID, v)
	})
}

// RecordClickAsync records a click without blocking the caller. Failures are
// logged and counted, never returned.
func (r *Recorder) RecordClickAsync(linkID int64, v Visitor) {
	r.dispatch(model.EventLinkClick, slog.Int64("link_id", linkID), func(ctx context.Context) error {
		return r.RecordClick(ctx, linkID, v)
	})
}

// Shutdown stops accepting new recordings and waits for in-flight ones.
func (r *Recorder) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		r.logger.Warn("recorder shutdown timed out")
		return ctx.Err()
	}
}

func (r *Recorder) dispatch(kind model.EventType, attr slog.Attr, fn func(context.Context) error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Debug("recorder closed, dropping event", slog.String("event_type", string(kind)), attr)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			r.logger.Warn("failed to record event",
				slog.String("event_type", string(kind)),
				attr,
				slog.String("error", err.Error()),
			)
		}
	}()
}

func (r *Recorder) append(ctx context.Context, event *model.AnalyticsEvent) error {
	if err := r.sink.AppendEvent(ctx, event); err != nil {
		r.metrics.IncEventAppend(metrics.StatusFailed)
		return fmt.Errorf("append %s event: %w", event.EventType, err)
	}
	r.metrics.IncEventAppend(metrics.StatusSuccess)
	return nil
}

func (r *Recorder) newEvent(t model.EventType, profileID int64, linkID *int64, v Visitor) *model.AnalyticsEvent {
	ip := v.IPAddress
	if ip == "" {
		ip = model.UnknownIP
	}
	return &model.AnalyticsEvent{
		ID:        ulid.Make().String(),
		ProfileID: profileID,
		LinkID:    linkID,
		EventType: t,
		IPAddress: ip,
		UserAgent: v.UserAgent,
		Referrer:  v.Referrer,
		CreatedAt: r.now().UTC(),
	}
}
