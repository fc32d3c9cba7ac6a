package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/linkpage/linkpage/internal/apperror"
	"github.com/linkpage/linkpage/internal/background"
	"github.com/linkpage/linkpage/internal/cache"
	"github.com/linkpage/linkpage/internal/metrics"
	"github.com/linkpage/linkpage/internal/model"
	"github.com/linkpage/linkpage/internal/repository"
	"github.com/linkpage/linkpage/internal/username"
)

// Conflict messages for profile creation and renames.
const (
	MsgProfileExists = "You already have a profile"
	MsgUsernameTaken = "Username is already taken"
)

// Presentation limits, in characters.
const (
	MaxDisplayNameLength = 100
	MaxBioLength         = 500
)

// ProfileService handles profile business logic.
type ProfileService struct {
	profiles ProfileStore
	links    LinkStore
	cache    ProfileCache
	group    singleflight.Group
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewProfileService creates a new ProfileService. A nil cache disables
// resolution caching.
func NewProfileService(profiles ProfileStore, links LinkStore, c ProfileCache, logger *slog.Logger, recorder metrics.Recorder) *ProfileService {
	if c == nil {
		c = noopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProfileService{
		profiles: profiles,
		links:    links,
		cache:    c,
		logger:   logger.With("component", "profile_service"),
		metrics:  recorder,
	}
}

// ResolvePublic returns the active profile for username with its active
// links in render order. Missing and inactive profiles are indistinguishable.
// Resolution never records a view; the caller does that after success.
func (s *ProfileService) ResolvePublic(ctx context.Context, raw string) (*model.PublicProfile, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveResolveDuration(time.Since(start))
	}()

	name := username.Normalize(strings.TrimSpace(raw))
	if !username.Validate(name).Valid {
		return nil, apperror.NotFound(msgProfileNotFound)
	}

	cached, err := s.cache.GetPublicProfile(ctx, name)
	if err == nil {
		s.metrics.IncProfileCacheHit()
		return clonePublic(cached), nil
	}
	s.metrics.IncProfileCacheMiss()

	if errors.Is(err, cache.ErrCacheMiss) {
		if neg, _ := s.cache.IsNegativelyCached(ctx, name); neg {
			return nil, apperror.NotFound(msgProfileNotFound)
		}
	} else if !errors.Is(err, errCacheDisabled) {
		s.logger.Warn("profile cache read failed", "username", name, "error", err)
	}

	v, err, _ := s.group.Do(name, func() (any, error) {
		return s.load(context.WithoutCancel(ctx), name)
	})
	if err != nil {
		return nil, err
	}

	return clonePublic(v.(*model.PublicProfile)), nil
}

func (s *ProfileService) load(ctx context.Context, name string) (*model.PublicProfile, error) {
	gen, genErr := s.cache.ProfileGeneration(ctx, name)
	if genErr != nil {
		s.logger.Warn("profile cache generation read failed", "username", name, "error", genErr)
	}

	p, err := s.profiles.GetActiveProfileByUsername(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			if genErr == nil {
				s.cacheWrite(name, "negative", s.cache.SetNegativeCache(ctx, name, gen))
			}
			return nil, apperror.NotFound(msgProfileNotFound)
		}
		return nil, apperror.Store(err)
	}

	links, err := s.links.ListActiveLinks(ctx, p.ID)
	if err != nil {
		return nil, apperror.Store(err)
	}
	model.SortLinks(links)

	out := &model.PublicProfile{Profile: *p, Links: links}
	if genErr == nil {
		s.cacheWrite(name, "profile", s.cache.SetPublicProfile(ctx, out, gen))
	}

	return out, nil
}

// cacheWrite logs a failed cache write. Writes skipped for a stale
// generation are expected under concurrent edits.
func (s *ProfileService) cacheWrite(name, kind string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, cache.ErrStaleGeneration):
		s.logger.Debug("skipped stale cache write", "username", name, "kind", kind)
	default:
		s.logger.Warn("profile cache write failed", "username", name, "kind", kind, "error", err)
	}
}

// CreateProfileInput defines input for creating a profile.
type CreateProfileInput struct {
	Username    string
	DisplayName string
	Bio         string
}

// CreateProfile creates the caller's profile. Each user has at most one.
func (s *ProfileService) CreateProfile(ctx context.Context, userID int64, in CreateProfileInput) (*model.Profile, error) {
	name := strings.TrimSpace(in.Username)
	if res := username.Validate(name); !res.Valid {
		return nil, apperror.Validation("username", res.Error)
	}
	name = username.Normalize(name)

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = name
	}
	if err := checkPresentation(&displayName, &in.Bio); err != nil {
		return nil, err
	}

	if _, err := s.profiles.GetProfileByUserID(ctx, userID); err == nil {
		return nil, apperror.Conflict(MsgProfileExists)
	} else if !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, apperror.Store(err)
	}

	exists, err := s.profiles.UsernameExists(ctx, name)
	if err != nil {
		return nil, apperror.Store(err)
	}
	if exists {
		return nil, apperror.Conflict(MsgUsernameTaken)
	}

	p := &model.Profile{
		UserID:             userID,
		Username:           name,
		DisplayName:        displayName,
		Bio:                strings.TrimSpace(in.Bio),
		ThemeColor:         model.DefaultThemeColor,
		TextColor:          model.DefaultTextColor,
		BackgroundColor:    model.DefaultBackgroundColor,
		BackgroundSettings: background.Serialize(background.Default()),
		IsActive:           true,
	}

	if err := s.profiles.CreateProfile(ctx, p); err != nil {
		return nil, profileStoreError(err)
	}

	s.metrics.IncProfileCreated()
	s.invalidate(ctx, name)

	return p, nil
}

// GetMyProfile returns the caller's profile, active or not.
func (s *ProfileService) GetMyProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	p, err := s.profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.NotFound(msgProfileNotFound)
		}
		return nil, apperror.Store(err)
	}
	return p, nil
}

// UpdateProfile applies a partial update to the caller's profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, u model.ProfileUpdate) (*model.Profile, error) {
	current, err := ownerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	if u.IsEmpty() {
		return current, nil
	}

	if u.Username != nil {
		name := strings.TrimSpace(*u.Username)
		if res := username.Validate(name); !res.Valid {
			return nil, apperror.Validation("username", res.Error)
		}
		name = username.Normalize(name)
		if name == current.Username {
			u.Username = nil
		} else {
			exists, err := s.profiles.UsernameExists(ctx, name)
			if err != nil {
				return nil, apperror.Store(err)
			}
			if exists {
				return nil, apperror.Conflict(MsgUsernameTaken)
			}
			u.Username = &name
		}
	}

	if u.DisplayName != nil {
		trimmed := strings.TrimSpace(*u.DisplayName)
		if trimmed == "" {
			return nil, apperror.Validation("display_name", "Display name is required")
		}
		u.DisplayName = &trimmed
	}
	if err := checkPresentation(u.DisplayName, u.Bio); err != nil {
		return nil, err
	}
	colors := []struct {
		field string
		value *string
	}{
		{"theme_color", u.ThemeColor},
		{"text_color", u.TextColor},
		{"background_color", u.BackgroundColor},
	}
	for _, c := range colors {
		if c.value != nil && !background.IsHex(*c.value) {
			return nil, apperror.Validation(c.field, "Colors must be hex values like #1a2b3c")
		}
	}

	updated, err := s.profiles.UpdateProfile(ctx, current.ID, u)
	if err != nil {
		return nil, profileStoreError(err)
	}

	s.metrics.IncProfileUpdated()
	s.invalidate(ctx, current.Username, updated.Username)

	return updated, nil
}

// UpdateBackground replaces the caller's background with a raw, strictly
// validated configuration.
func (s *ProfileService) UpdateBackground(ctx context.Context, userID int64, raw string) (*model.Profile, error) {
	cfg, err := background.ParseStrict(raw)
	if err != nil {
		return nil, backgroundError(err)
	}
	return s.saveBackground(ctx, userID, cfg)
}

// ChangeBackgroundType switches the caller's background to the full defaults
// of type t.
func (s *ProfileService) ChangeBackgroundType(ctx context.Context, userID int64, t background.Type) (*model.Profile, error) {
	if !t.IsValid() {
		return nil, apperror.Validation("type", "Unknown background type")
	}
	return s.saveBackground(ctx, userID, background.ApplyTypeDefaults(t))
}

func (s *ProfileService) saveBackground(ctx context.Context, userID int64, cfg background.Config) (*model.Profile, error) {
	current, err := ownerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}

	updated, err := s.profiles.UpdateBackground(ctx, current.ID,
		background.Serialize(cfg), background.PrimaryColor(cfg.Base().Color))
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.NotFound(msgProfileNotFound)
		}
		return nil, apperror.Store(err)
	}

	s.metrics.IncProfileUpdated()
	s.invalidate(ctx, updated.Username)

	return updated, nil
}

// UsernameAvailability is the result of CheckUsername.
type UsernameAvailability struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

// CheckUsername reports whether raw could be claimed right now. Invalid
// names are reported as unavailable with the validation message.
func (s *ProfileService) CheckUsername(ctx context.Context, raw string) (*UsernameAvailability, error) {
	raw = strings.TrimSpace(raw)
	if res := username.Validate(raw); !res.Valid {
		return &UsernameAvailability{Username: raw, Message: res.Error}, nil
	}

	name := username.Normalize(raw)
	exists, err := s.profiles.UsernameExists(ctx, name)
	if err != nil {
		return nil, apperror.Store(err)
	}
	if exists {
		return &UsernameAvailability{Username: name, Message: MsgUsernameTaken}, nil
	}

	return &UsernameAvailability{Username: name, Available: true}, nil
}

// Background returns the parsed background of p and the text color that
// stays readable on it.
func Background(p *model.Profile) (background.Config, string) {
	cfg := background.Parse(p.BackgroundSettings)
	return cfg, background.ContrastTextColor(cfg, p.TextColor)
}

func (s *ProfileService) invalidate(ctx context.Context, usernames ...string) {
	if err := s.cache.InvalidateProfile(ctx, usernames...); err != nil {
		s.logger.Warn("profile cache invalidation failed", "usernames", usernames, "error", err)
	}
}

func checkPresentation(displayName, bio *string) error {
	if displayName != nil && len([]rune(*displayName)) > MaxDisplayNameLength {
		return apperror.Validation("display_name", "Display name must be at most 100 characters")
	}
	if bio != nil && len([]rune(*bio)) > MaxBioLength {
		return apperror.Validation("bio", "Bio must be at most 500 characters")
	}
	return nil
}

func profileStoreError(err error) error {
	switch {
	case errors.Is(err, repository.ErrProfileExists):
		return apperror.Conflict(MsgProfileExists)
	case errors.Is(err, repository.ErrUsernameTaken):
		return apperror.Conflict(MsgUsernameTaken)
	case errors.Is(err, repository.ErrProfileNotFound):
		return apperror.NotFound(msgProfileNotFound)
	default:
		return apperror.Store(err)
	}
}

func backgroundError(err error) error {
	var ve *background.ValidationError
	if errors.As(err, &ve) {
		return apperror.Validation("background."+ve.Field, "Background "+ve.Field+" "+ve.Message)
	}
	if errors.Is(err, background.ErrUnknownType) {
		return apperror.Validation("background.type", "Unknown background type")
	}
	return apperror.Validation("background", "Background settings must be a JSON object")
}

func clonePublic(p *model.PublicProfile) *model.PublicProfile {
	out := *p
	out.Links = append([]model.Link{}, p.Links...)
	return &out
}
