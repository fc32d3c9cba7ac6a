package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkpage/linkpage/internal/auth"
	"github.com/linkpage/linkpage/internal/cache"
)

type fakeLimiter struct {
	allow   bool
	err     error
	lastIP  string
	lastUID int64
}

func (l *fakeLimiter) result() (*cache.RateLimitResult, error) {
	if l.err != nil {
		return nil, l.err
	}
	res := &cache.RateLimitResult{Allowed: l.allow, Remaining: 3, ResetAt: time.Unix(1700000000, 0)}
	if !l.allow {
		res.Remaining = 0
		res.RetryAfter = 1500 * time.Millisecond
	}
	return res, nil
}

func (l *fakeLimiter) CheckIPRateLimit(_ context.Context, ip string, _, _ int) (*cache.RateLimitResult, error) {
	l.lastIP = ip
	return l.result()
}

func (l *fakeLimiter) CheckUserRateLimit(_ context.Context, userID int64, _, _ int) (*cache.RateLimitResult, error) {
	l.lastUID = userID
	return l.result()
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		enabled    bool
		limiter    *fakeLimiter
		wantStatus int
	}{
		{"disabled", false, &fakeLimiter{}, http.StatusOK},
		{"allowed", true, &fakeLimiter{allow: true}, http.StatusOK},
		{"limited", true, &fakeLimiter{}, http.StatusTooManyRequests},
		{"fails open", true, &fakeLimiter{err: errors.New("redis down")}, http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mw := RateLimitIP(RateLimitConfig{
				Logger:        discardLogger(),
				Limiter:       tt.limiter,
				PublicEnabled: tt.enabled,
				PublicRPS:     10,
				PublicBurst:   5,
			})

			req := httptest.NewRequest(http.MethodGet, "/ada", nil)
			req.RemoteAddr = "198.51.100.7:5555"
			rec := httptest.NewRecorder()
			mw(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.enabled {
				assert.Equal(t, "198.51.100.7", tt.limiter.lastIP)
			}
			if tt.wantStatus == http.StatusTooManyRequests {
				assert.Equal(t, "2", rec.Header().Get("Retry-After"))
				assert.JSONEq(t, `{"success":false,"message":"Too many requests. Try again in 2 seconds."}`, rec.Body.String())
			}
		})
	}
}

func TestRateLimitOwner(t *testing.T) {
	t.Parallel()

	withUser := func(req *http.Request, id int64) *http.Request {
		return req.WithContext(auth.ContextWithIdentity(req.Context(), &auth.Identity{UserID: id}))
	}
	cfg := func(l *fakeLimiter) RateLimitConfig {
		return RateLimitConfig{Logger: discardLogger(), Limiter: l, OwnerEnabled: true, OwnerPerMinute: 120, OwnerBurst: 20}
	}

	t.Run("allowed sets headers", func(t *testing.T) {
		t.Parallel()
		l := &fakeLimiter{allow: true}
		rec := httptest.NewRecorder()
		RateLimitOwner(cfg(l))(okHandler()).ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/links", nil), 42))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(42), l.lastUID)
		assert.Equal(t, "120", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "1700000000", rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("limited", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		RateLimitOwner(cfg(&fakeLimiter{}))(okHandler()).ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/v1/links", nil), 42))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("anonymous passes through", func(t *testing.T) {
		t.Parallel()
		l := &fakeLimiter{}
		rec := httptest.NewRecorder()
		RateLimitOwner(cfg(l))(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/links", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, l.lastUID)
	})
}

func TestRetrySeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want int64
	}{
		{0, 1},
		{200 * time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{10 * time.Second, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, retrySeconds(tt.in), tt.in.String())
	}
}
