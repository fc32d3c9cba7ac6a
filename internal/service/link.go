package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linkpage/linkpage/internal/apperror"
	"github.com/linkpage/linkpage/internal/metrics"
	"github.com/linkpage/linkpage/internal/model"
	"github.com/linkpage/linkpage/internal/platform"
	"github.com/linkpage/linkpage/internal/repository"
)

// MaxTitleLength bounds link titles, in characters.
const MaxTitleLength = 100

// LinkService handles link business logic.
type LinkService struct {
	profiles ProfileStore
	links    LinkStore
	cache    ProfileCache
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewLinkService creates a new LinkService. The cache is only used for
// invalidation and may be nil.
func NewLinkService(profiles ProfileStore, links LinkStore, c ProfileCache, logger *slog.Logger, recorder metrics.Recorder) *LinkService {
	if c == nil {
		c = noopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &LinkService{
		profiles: profiles,
		links:    links,
		cache:    c,
		logger:   logger.With("component", "link_service"),
		metrics:  recorder,
	}
}

// AddLinkInput defines input for adding a link.
type AddLinkInput struct {
	Platform     string
	Input        string // handle, phone, email or URL depending on the platform
	Title        string // defaults to the platform name
	Icon         string // defaults to the platform icon
	DisplayOrder *int   // defaults to after the last link
	IsActive     *bool  // defaults to true
}

// AddLink appends a link to the caller's profile.
func (s *LinkService) AddLink(ctx context.Context, userID int64, in AddLinkInput) (*model.Link, error) {
	p, err := ownerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}

	plat, ok := platform.Lookup(in.Platform)
	if !ok {
		return nil, apperror.Validation("platform", "Unknown platform")
	}
	url, err := buildURL(plat, in.Input)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = plat.Name
	}
	if len([]rune(title)) > MaxTitleLength {
		return nil, apperror.Validation("title", "Title must be at most 100 characters")
	}
	icon := strings.TrimSpace(in.Icon)
	if icon == "" {
		icon = plat.Icon
	}

	order := 0
	if in.DisplayOrder != nil {
		order = *in.DisplayOrder
	} else {
		existing, err := s.links.ListLinks(ctx, p.ID)
		if err != nil {
			return nil, apperror.Store(err)
		}
		order = model.NextDisplayOrder(existing)
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	link := &model.Link{
		ProfileID:    p.ID,
		Platform:     plat.Key,
		Title:        title,
		URL:          url,
		Icon:         icon,
		DisplayOrder: order,
		IsActive:     active,
	}
	if err := s.links.CreateLink(ctx, link); err != nil {
		return nil, apperror.Store(err)
	}

	s.metrics.IncLinkCreated()
	s.invalidate(ctx, p.Username)

	return link, nil
}

// UpdateLinkInput defines a partial link update. A new Input or Platform
// rebuilds the URL; changing the platform requires a new Input.
type UpdateLinkInput struct {
	Platform     *string
	Input        *string
	Title        *string
	Icon         *string
	DisplayOrder *int
	IsActive     *bool
}

// UpdateLink applies a partial update to one of the caller's links.
func (s *LinkService) UpdateLink(ctx context.Context, userID, linkID int64, in UpdateLinkInput) (*model.Link, error) {
	p, link, err := ownedLink(ctx, s.profiles, s.links, userID, linkID)
	if err != nil {
		return nil, err
	}

	u := model.LinkUpdate{
		Icon:         in.Icon,
		DisplayOrder: in.DisplayOrder,
		IsActive:     in.IsActive,
	}

	if in.Platform != nil || in.Input != nil {
		key := link.Platform
		if in.Platform != nil {
			key = *in.Platform
		}
		plat, ok := platform.Lookup(key)
		if !ok {
			return nil, apperror.Validation("platform", "Unknown platform")
		}
		if in.Input == nil {
			if plat.Key != link.Platform {
				return nil, apperror.Validation("input", "Enter a value for the new platform")
			}
		} else {
			url, err := buildURL(plat, *in.Input)
			if err != nil {
				return nil, err
			}
			u.URL = &url
		}
		u.Platform = &plat.Key
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			plat, _ := platform.Lookup(link.Platform)
			if u.Platform != nil {
				plat, _ = platform.Lookup(*u.Platform)
			}
			title = plat.Name
		}
		if len([]rune(title)) > MaxTitleLength {
			return nil, apperror.Validation("title", "Title must be at most 100 characters")
		}
		u.Title = &title
	}

	updated, err := s.links.UpdateLink(ctx, link.ID, u)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, apperror.NotFound(msgLinkNotFound)
		}
		return nil, apperror.Store(err)
	}

	s.metrics.IncLinkUpdated()
	s.invalidate(ctx, p.Username)

	return updated, nil
}

// ReorderLinks sets the display order of the caller's links to their
// position in ids.
func (s *LinkService) ReorderLinks(ctx context.Context, userID int64, ids []int64) error {
	p, err := ownerProfile(ctx, s.profiles, userID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return apperror.Validation("ids", "Each link may appear only once")
		}
		seen[id] = struct{}{}
	}

	if err := s.links.ReorderLinks(ctx, p.ID, ids); err != nil {
		if errors.Is(err, repository.ErrLinkNotOwned) {
			return apperror.Unauthorized("You can only reorder your own links")
		}
		return apperror.Store(err)
	}

	s.metrics.IncLinksReordered()
	s.invalidate(ctx, p.Username)

	return nil
}

// DeleteLink permanently removes one of the caller's links.
func (s *LinkService) DeleteLink(ctx context.Context, userID, linkID int64) error {
	p, link, err := ownedLink(ctx, s.profiles, s.links, userID, linkID)
	if err != nil {
		return err
	}

	if err := s.links.DeleteLink(ctx, link.ID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return apperror.NotFound(msgLinkNotFound)
		}
		return apperror.Store(err)
	}

	s.metrics.IncLinkDeleted()
	s.invalidate(ctx, p.Username)

	return nil
}

// ListLinks returns all of the caller's links, active or not, in render order.
func (s *LinkService) ListLinks(ctx context.Context, userID int64) ([]model.Link, error) {
	p, err := ownerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}

	links, err := s.links.ListLinks(ctx, p.ID)
	if err != nil {
		return nil, apperror.Store(err)
	}
	model.SortLinks(links)

	return links, nil
}

// PublicLink returns an active link on an active profile, for redirects.
func (s *LinkService) PublicLink(ctx context.Context, linkID int64) (*model.Link, error) {
	link, err := s.links.GetPublicLink(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, apperror.NotFound(msgLinkNotFound)
		}
		return nil, apperror.Store(err)
	}
	return link, nil
}

func (s *LinkService) invalidate(ctx context.Context, name string) {
	if err := s.cache.InvalidateProfile(ctx, name); err != nil {
		s.logger.Warn("profile cache invalidation failed", "username", name, "error", err)
	}
}

// buildURL turns platform input into a destination URL or a field error.
func buildURL(p platform.Platform, input string) (string, error) {
	url, err := p.BuildURL(input)
	switch {
	case err == nil:
		return url, nil
	case errors.Is(err, platform.ErrEmptyInput):
		return "", apperror.Validation("input", fmt.Sprintf("Enter your %s %s", p.Name, inputNoun(p.InputType)))
	case errors.Is(err, platform.ErrInvalidInput):
		return "", apperror.Validation("input", fmt.Sprintf("That is not a valid %s for %s", inputNoun(p.InputType), p.Name))
	default:
		return "", apperror.Store(err)
	}
}

func inputNoun(t platform.InputType) string {
	switch t {
	case platform.InputPhone:
		return "phone number"
	case platform.InputEmail:
		return "email address"
	case platform.InputURL:
		return "URL"
	default:
		return "username"
	}
}
