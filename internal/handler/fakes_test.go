package handler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/linkpage/linkpage/internal/analytics"
	"github.com/linkpage/linkpage/internal/auth"
	"github.com/linkpage/linkpage/internal/model"
	"github.com/linkpage/linkpage/internal/repository"
)

// memStore is a minimal in-memory backing store for the services.
type memStore struct {
	mu       sync.Mutex
	profiles []*model.Profile
	links    []*model.Link
	nextID   int64
	broken   bool
}

var errBroken = errors.New("connection reset by peer")

func (m *memStore) seedProfile(userID int64, name string) *model.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p := &model.Profile{
		ID: m.nextID, UserID: userID, Username: name, DisplayName: name,
		ThemeColor: model.DefaultThemeColor, TextColor: model.DefaultTextColor,
		BackgroundColor: model.DefaultBackgroundColor, IsActive: true,
	}
	m.profiles = append(m.profiles, p)
	cp := *p
	return &cp
}

func (m *memStore) seedLink(profileID int64, url string, active bool) *model.Link {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	l := &model.Link{ID: m.nextID, ProfileID: profileID, Platform: "custom", Title: "Site", URL: url, IsActive: active, DisplayOrder: len(m.links)}
	m.links = append(m.links, l)
	cp := *l
	return &cp
}

func (m *memStore) profileWhere(match func(*model.Profile) bool) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return nil, errBroken
	}
	for _, p := range m.profiles {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (m *memStore) GetActiveProfileByUsername(_ context.Context, name string) (*model.Profile, error) {
	return m.profileWhere(func(p *model.Profile) bool { return p.Username == name && p.IsActive })
}

func (m *memStore) GetProfileByUserID(_ context.Context, userID int64) (*model.Profile, error) {
	return m.profileWhere(func(p *model.Profile) bool { return p.UserID == userID })
}

func (m *memStore) CreateProfile(_ context.Context, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.profiles = append(m.profiles, &cp)
	return nil
}

func (m *memStore) UpdateProfile(_ context.Context, id int64, u model.ProfileUpdate) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.ID != id {
			continue
		}
		if u.DisplayName != nil {
			p.DisplayName = *u.DisplayName
		}
		if u.Bio != nil {
			p.Bio = *u.Bio
		}
		if u.ThemeColor != nil {
			p.ThemeColor = *u.ThemeColor
		}
		if u.ProfilePicture != nil {
			p.ProfilePicture = *u.ProfilePicture
		}
		if u.CompanyLogo != nil {
			p.CompanyLogo = *u.CompanyLogo
		}
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrProfileNotFound
}

func (m *memStore) UpdateBackground(_ context.Context, id int64, settings, color string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.ID == id {
			p.BackgroundSettings = settings
			p.BackgroundColor = color
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (m *memStore) UsernameExists(_ context.Context, name string) (bool, error) {
	_, err := m.profileWhere(func(p *model.Profile) bool { return p.Username == name })
	if errors.Is(err, repository.ErrProfileNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *memStore) linkWhere(match func(*model.Link) bool) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return nil, errBroken
	}
	for _, l := range m.links {
		if match(l) {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repository.ErrLinkNotFound
}

func (m *memStore) GetLinkByID(_ context.Context, id int64) (*model.Link, error) {
	return m.linkWhere(func(l *model.Link) bool { return l.ID == id })
}

func (m *memStore) GetPublicLink(_ context.Context, id int64) (*model.Link, error) {
	return m.linkWhere(func(l *model.Link) bool { return l.ID == id && l.IsActive })
}

func (m *memStore) list(profileID int64, activeOnly bool) []model.Link {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Link{}
	for _, l := range m.links {
		if l.ProfileID == profileID && (!activeOnly || l.IsActive) {
			out = append(out, *l)
		}
	}
	return out
}

func (m *memStore) ListActiveLinks(_ context.Context, profileID int64) ([]model.Link, error) {
	return m.list(profileID, true), nil
}

func (m *memStore) ListLinks(_ context.Context, profileID int64) ([]model.Link, error) {
	return m.list(profileID, false), nil
}

func (m *memStore) CreateLink(_ context.Context, l *model.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	l.ID = m.nextID
	cp := *l
	m.links = append(m.links, &cp)
	return nil
}

func (m *memStore) UpdateLink(_ context.Context, id int64, u model.LinkUpdate) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.links {
		if l.ID != id {
			continue
		}
		if u.Title != nil {
			l.Title = *u.Title
		}
		if u.URL != nil {
			l.URL = *u.URL
		}
		if u.Icon != nil {
			l.Icon = *u.Icon
		}
		if u.IsActive != nil {
			l.IsActive = *u.IsActive
		}
		cp := *l
		return &cp, nil
	}
	return nil, repository.ErrLinkNotFound
}

func (m *memStore) DeleteLink(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range m.links {
		if l.ID == id {
			m.links = append(m.links[:i], m.links[i+1:]...)
			return nil
		}
	}
	return repository.ErrLinkNotFound
}

func (m *memStore) ReorderLinks(_ context.Context, profileID int64, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for pos, id := range ids {
		found := false
		for _, l := range m.links {
			if l.ID == id && l.ProfileID == profileID {
				l.DisplayOrder = pos
				found = true
			}
		}
		if !found {
			return repository.ErrLinkNotOwned
		}
	}
	return nil
}

func (m *memStore) ListEventsSince(context.Context, int64, time.Time) ([]model.AnalyticsEvent, error) {
	return nil, nil
}

// spyRecorder captures recordings synchronously.
type spyRecorder struct {
	mu     sync.Mutex
	views  []int64
	clicks []int64
	last   analytics.Visitor
}

func (s *spyRecorder) RecordViewAsync(profileID int64, v analytics.Visitor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = append(s.views, profileID)
	s.last = v
}

func (s *spyRecorder) RecordClickAsync(linkID int64, v analytics.Visitor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicks = append(s.clicks, linkID)
	s.last = v
}

// asUser attaches an authenticated identity the way the auth middleware does.
func asUser(ctx context.Context, userID int64) context.Context {
	return auth.ContextWithIdentity(ctx, &auth.Identity{UserID: userID, ExternalID: "user_test"})
}
