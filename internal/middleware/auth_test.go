package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkpage/linkpage/internal/auth"
	"github.com/linkpage/linkpage/internal/cache"
	"github.com/linkpage/linkpage/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeIdentityCache struct {
	mu  sync.Mutex
	ids map[string]int64
	err error
}

func (c *fakeIdentityCache) GetUserID(_ context.Context, externalID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	id, ok := c.ids[externalID]
	if !ok {
		return 0, cache.ErrCacheMiss
	}
	return id, nil
}

func (c *fakeIdentityCache) SetUserID(_ context.Context, externalID string, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[externalID] = userID
	return nil
}

type fakeUsers struct {
	mu    sync.Mutex
	byExt map[string]*model.User
	calls int
	err   error
}

func (u *fakeUsers) GetOrCreateUser(_ context.Context, externalID, email string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	if u.err != nil {
		return nil, u.err
	}
	if user, ok := u.byExt[externalID]; ok {
		return user, nil
	}
	user := &model.User{ID: int64(len(u.byExt) + 100), ExternalID: externalID, Email: email}
	u.byExt[externalID] = user
	return user, nil
}

type authFixture struct {
	verifier *auth.Verifier
	cache    *fakeIdentityCache
	users    *fakeUsers
	handler  http.Handler
	seen     *auth.Identity
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	v, err := auth.NewVerifier("test-secret-0123456789", "linkpage-test", "")
	require.NoError(t, err)

	f := &authFixture{
		verifier: v,
		cache:    &fakeIdentityCache{ids: map[string]int64{}},
		users:    &fakeUsers{byExt: map[string]*model.User{}},
	}
	f.handler = Auth(AuthConfig{
		Logger:   discardLogger(),
		Verifier: v,
		Cache:    f.cache,
		Users:    f.users,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.seen = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	return f
}

func (f *authFixture) do(authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestAuth_ProvisionsAndCachesUser(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	token, err := f.verifier.Sign("user_2abc", "ada@example.com", time.Hour)
	require.NoError(t, err)

	rec := f.do("Bearer " + token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, f.seen)
	assert.Equal(t, int64(100), f.seen.UserID)
	assert.Equal(t, "user_2abc", f.seen.ExternalID)
	assert.Equal(t, "ada@example.com", f.seen.Email)

	rec = f.do("bearer " + token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(100), f.seen.UserID)
	assert.Equal(t, 1, f.users.calls, "second request is served from the identity cache")
}

func TestAuth_Rejections(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	expired, err := f.verifier.Sign("user_1", "", -time.Hour)
	require.NoError(t, err)

	other, err := auth.NewVerifier("another-secret-0123456789", "linkpage-test", "")
	require.NoError(t, err)
	forged, err := other.Sign("user_1", "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
		{"garbage", "Bearer not.a.jwt"},
		{"expired", "Bearer " + expired},
		{"wrong key", "Bearer " + forged},
	}

	for _, tt := range tests {
		rec := f.do(tt.header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tt.name)
		assert.JSONEq(t, `{"success":false,"message":"Sign in to continue"}`, rec.Body.String(), tt.name)
	}
	assert.Zero(t, f.users.calls)
}

func TestAuth_UserStoreFailure(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.users.err = errors.New("connection refused")
	token, err := f.verifier.Sign("user_9", "", time.Hour)
	require.NoError(t, err)

	rec := f.do("Bearer " + token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestAuth_CacheFailureFallsBackToStore(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.cache.err = errors.New("redis down")
	token, err := f.verifier.Sign("user_7", "", time.Hour)
	require.NoError(t, err)

	rec := f.do("Bearer " + token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, f.users.calls)
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"BEARER  abc ", "abc"},
		{"Token abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", tt.header)
		assert.Equal(t, tt.want, bearerToken(req), tt.header)
	}
}
