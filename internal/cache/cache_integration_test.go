//go:build integration

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/linkpage/linkpage/internal/model"
	"github.com/linkpage/linkpage/internal/testutil"
)

func newTestCache(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	return ctx, c
}

func TestIntegrationProfileCache_Lifecycle(t *testing.T) {
	ctx, c := newTestCache(t)

	if _, err := c.GetPublicProfile(ctx, "alice"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := c.SetNegativeCache(ctx, "alice", 0); err != nil {
		t.Fatalf("SetNegativeCache: %v", err)
	}
	neg, err := c.IsNegativelyCached(ctx, "alice")
	if err != nil || !neg {
		t.Fatalf("IsNegativelyCached = %v, %v; want true", neg, err)
	}

	p := &model.PublicProfile{
		Profile: model.Profile{ID: 1, UserID: 2, Username: "alice", IsActive: true},
		Links:   []model.Link{{ID: 10, ProfileID: 1}},
	}
	if err := c.SetPublicProfile(ctx, p, 0); err != nil {
		t.Fatalf("SetPublicProfile: %v", err)
	}

	neg, _ = c.IsNegativelyCached(ctx, "alice")
	if neg {
		t.Error("positive entry should clear the negative entry")
	}

	got, err := c.GetPublicProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("GetPublicProfile: %v", err)
	}
	if got.Profile.UserID != 2 || len(got.Links) != 1 {
		t.Errorf("unexpected cached profile: %+v", got)
	}

	if err := c.InvalidateProfile(ctx, "alice", "renamed"); err != nil {
		t.Fatalf("InvalidateProfile: %v", err)
	}
	if _, err := c.GetPublicProfile(ctx, "alice"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected miss after invalidation, got %v", err)
	}
}

func TestIntegrationProfileCache_StaleGeneration(t *testing.T) {
	ctx, c := newTestCache(t)

	gen, err := c.ProfileGeneration(ctx, "alice")
	if err != nil {
		t.Fatalf("ProfileGeneration: %v", err)
	}
	if err := c.InvalidateProfile(ctx, "alice"); err != nil {
		t.Fatalf("InvalidateProfile: %v", err)
	}

	p := &model.PublicProfile{Profile: model.Profile{ID: 1, Username: "alice", IsActive: true}}
	if err := c.SetPublicProfile(ctx, p, gen); !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("SetPublicProfile with old generation = %v, want ErrStaleGeneration", err)
	}
	if _, err := c.GetPublicProfile(ctx, "alice"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("stale write reached the cache: %v", err)
	}
	if err := c.SetNegativeCache(ctx, "alice", gen); !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("SetNegativeCache with old generation = %v, want ErrStaleGeneration", err)
	}
	if neg, _ := c.IsNegativelyCached(ctx, "alice"); neg {
		t.Error("stale negative write reached the cache")
	}

	current, err := c.ProfileGeneration(ctx, "alice")
	if err != nil || current != gen+1 {
		t.Fatalf("ProfileGeneration after invalidation = %d, %v; want %d", current, err, gen+1)
	}
	if err := c.SetPublicProfile(ctx, p, current); err != nil {
		t.Fatalf("SetPublicProfile with current generation: %v", err)
	}
	if _, err := c.GetPublicProfile(ctx, "alice"); err != nil {
		t.Errorf("expected hit after fresh write, got %v", err)
	}
}

func TestIntegrationIdentityCache(t *testing.T) {
	ctx, c := newTestCache(t)

	if _, err := c.GetUserID(ctx, "sub-1"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
	if err := c.SetUserID(ctx, "sub-1", 42); err != nil {
		t.Fatalf("SetUserID: %v", err)
	}
	id, err := c.GetUserID(ctx, "sub-1")
	if err != nil || id != 42 {
		t.Errorf("GetUserID = %d, %v; want 42", id, err)
	}
}

// TestIntegrationRateLimitConcurrency verifies the token bucket under
// concurrent load.
func TestIntegrationRateLimitConcurrency(t *testing.T) {
	ctx, c := newTestCache(t)

	const (
		rps   = 1
		burst = 5
	)

	var allowed, rejected int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 3; j++ {
				result, err := c.CheckIPRateLimit(ctx, "203.0.113.9", rps, burst)
				if err != nil {
					t.Errorf("CheckIPRateLimit error: %v", err)
					return
				}
				if result.Allowed {
					atomic.AddInt64(&allowed, 1)
				} else {
					atomic.AddInt64(&rejected, 1)
				}
			}
		}()
	}
	wg.Wait()

	if allowed > burst+rps {
		t.Errorf("too many requests allowed: %d (expected <= %d)", allowed, burst+rps)
	}
	if rejected == 0 {
		t.Error("expected some requests to be rejected")
	}

	unlimited, err := c.CheckUserRateLimit(ctx, 1, 0, 10)
	if err != nil || !unlimited.Allowed {
		t.Errorf("zero rate should not limit: %+v, %v", unlimited, err)
	}
}
