package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/linkpage/linkpage/internal/cache"
	"github.com/linkpage/linkpage/internal/model"
	"github.com/linkpage/linkpage/internal/repository"
	"github.com/linkpage/linkpage/internal/storage"
)

// fakeStore is an in-memory ProfileStore, LinkStore and EventStore.
type fakeStore struct {
	mu       sync.Mutex
	profiles map[int64]*model.Profile
	links    map[int64]*model.Link
	events   []model.AnalyticsEvent
	nextID   int64

	resolveCalls atomic.Int64
	failWith     error
	// afterResolve, when set, runs after a username lookup and before it
	// returns, without the store lock held.
	afterResolve func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: make(map[int64]*model.Profile),
		links:    make(map[int64]*model.Link),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

// addProfile seeds a profile directly.
func (f *fakeStore) addProfile(userID int64, name string, active bool) *model.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &model.Profile{
		ID:          f.id(),
		UserID:      userID,
		Username:    name,
		DisplayName: name,
		TextColor:   model.DefaultTextColor,
		IsActive:    active,
	}
	f.profiles[p.ID] = p
	cp := *p
	return &cp
}

// addLink seeds a link directly.
func (f *fakeStore) addLink(profileID int64, order int, active bool) *model.Link {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := &model.Link{
		ID:           f.id(),
		ProfileID:    profileID,
		Platform:     "custom",
		Title:        "Link",
		URL:          "https://example.com",
		DisplayOrder: order,
		IsActive:     active,
	}
	f.links[l.ID] = l
	cp := *l
	return &cp
}

func (f *fakeStore) GetActiveProfileByUsername(_ context.Context, username string) (*model.Profile, error) {
	f.resolveCalls.Add(1)
	p, err := f.lookupActive(username)
	if f.afterResolve != nil {
		f.afterResolve()
	}
	return p, err
}

func (f *fakeStore) lookupActive(username string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, p := range f.profiles {
		if p.Username == username && p.IsActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (f *fakeStore) GetProfileByUserID(_ context.Context, userID int64) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (f *fakeStore) CreateProfile(_ context.Context, p *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.profiles {
		if existing.UserID == p.UserID {
			return repository.ErrProfileExists
		}
		if existing.Username == p.Username {
			return repository.ErrUsernameTaken
		}
	}
	p.ID = f.id()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.profiles[p.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, id int64, u model.ProfileUpdate) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Username, u.Username)
	set(&p.DisplayName, u.DisplayName)
	set(&p.Bio, u.Bio)
	set(&p.ProfilePicture, u.ProfilePicture)
	set(&p.CompanyLogo, u.CompanyLogo)
	set(&p.ThemeColor, u.ThemeColor)
	set(&p.TextColor, u.TextColor)
	set(&p.BackgroundColor, u.BackgroundColor)
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) UpdateBackground(_ context.Context, id int64, settings, color string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	p.BackgroundSettings = settings
	p.BackgroundColor = color
	cp := *p
	return &cp, nil
}

func (f *fakeStore) UsernameExists(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) GetLinkByID(_ context.Context, id int64) (*model.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeStore) GetPublicLink(_ context.Context, id int64) (*model.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[id]
	if !ok || !l.IsActive {
		return nil, repository.ErrLinkNotFound
	}
	if p, ok := f.profiles[l.ProfileID]; !ok || !p.IsActive {
		return nil, repository.ErrLinkNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeStore) list(profileID int64, activeOnly bool) []model.Link {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Link{}
	for _, l := range f.links {
		if l.ProfileID == profileID && (!activeOnly || l.IsActive) {
			out = append(out, *l)
		}
	}
	// Map iteration order is random; callers must sort.
	return out
}

func (f *fakeStore) ListActiveLinks(_ context.Context, profileID int64) ([]model.Link, error) {
	return f.list(profileID, true), nil
}

func (f *fakeStore) ListLinks(_ context.Context, profileID int64) ([]model.Link, error) {
	return f.list(profileID, false), nil
}

func (f *fakeStore) CreateLink(_ context.Context, link *model.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	link.ID = f.id()
	cp := *link
	f.links[link.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateLink(_ context.Context, id int64, u model.LinkUpdate) (*model.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	for dst, src := range map[*string]*string{&l.Platform: u.Platform, &l.Title: u.Title, &l.URL: u.URL, &l.Icon: u.Icon} {
		if src != nil {
			*dst = *src
		}
	}
	if u.DisplayOrder != nil {
		l.DisplayOrder = *u.DisplayOrder
	}
	if u.IsActive != nil {
		l.IsActive = *u.IsActive
	}
	cp := *l
	return &cp, nil
}

func (f *fakeStore) DeleteLink(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.links[id]; !ok {
		return repository.ErrLinkNotFound
	}
	delete(f.links, id)
	return nil
}

func (f *fakeStore) ReorderLinks(_ context.Context, profileID int64, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		l, ok := f.links[id]
		if !ok || l.ProfileID != profileID {
			return repository.ErrLinkNotOwned
		}
	}
	for i, id := range ids {
		f.links[id].DisplayOrder = i
	}
	return nil
}

func (f *fakeStore) ListEventsSince(_ context.Context, profileID int64, since time.Time) ([]model.AnalyticsEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.AnalyticsEvent{}
	for _, e := range f.events {
		if e.ProfileID == profileID && !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeCache is an in-memory ProfileCache.
type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]*model.PublicProfile
	negative    map[string]bool
	generation  map[string]int64
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries:  make(map[string]*model.PublicProfile),
		negative:   make(map[string]bool),
		generation: make(map[string]int64),
	}
}

func (c *fakeCache) GetPublicProfile(_ context.Context, username string) (*model.PublicProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[username]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return clonePublic(p), nil
}

func (c *fakeCache) ProfileGeneration(_ context.Context, username string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation[username], nil
}

func (c *fakeCache) SetPublicProfile(_ context.Context, p *model.PublicProfile, gen int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation[p.Profile.Username] != gen {
		return cache.ErrStaleGeneration
	}
	c.entries[p.Profile.Username] = clonePublic(p)
	delete(c.negative, p.Profile.Username)
	return nil
}

func (c *fakeCache) IsNegativelyCached(_ context.Context, username string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.negative[username], nil
}

func (c *fakeCache) SetNegativeCache(_ context.Context, username string, gen int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation[username] != gen {
		return cache.ErrStaleGeneration
	}
	c.negative[username] = true
	return nil
}

func (c *fakeCache) InvalidateProfile(_ context.Context, usernames ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range usernames {
		delete(c.entries, u)
		delete(c.negative, u)
		c.generation[u]++
		c.invalidated = append(c.invalidated, u)
	}
	return nil
}

// fakeUploader is an in-memory storage.Uploader.
type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failPut bool
}

var _ storage.Uploader = (*fakeUploader)(nil)

const fakeBaseURL = "https://cdn.test/"

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string][]byte)}
}

func (u *fakeUploader) Put(_ context.Context, key string, data []byte, contentType string) (*storage.Object, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failPut {
		return nil, errors.New("disk full")
	}
	u.objects[key] = data
	return &storage.Object{Key: key, URL: fakeBaseURL + key, ContentType: contentType, Size: int64(len(data))}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, fakeBaseURL) {
		return "", false
	}
	return strings.TrimPrefix(url, fakeBaseURL), true
}
