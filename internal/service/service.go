// Package service provides business logic for the application.
//
// Services take the caller's internal user id from the auth layer and return
// *apperror.Error values whose messages are safe to show to end users.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/linkpage/linkpage/internal/apperror"
	"github.com/linkpage/linkpage/internal/model"
	"github.com/linkpage/linkpage/internal/repository"
)

// ProfileStore persists profiles.
type ProfileStore interface {
	GetActiveProfileByUsername(ctx context.Context, username string) (*model.Profile, error)
	GetProfileByUserID(ctx context.Context, userID int64) (*model.Profile, error)
	CreateProfile(ctx context.Context, p *model.Profile) error
	UpdateProfile(ctx context.Context, id int64, u model.ProfileUpdate) (*model.Profile, error)
	UpdateBackground(ctx context.Context, id int64, settings, color string) (*model.Profile, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// LinkStore persists links.
type LinkStore interface {
	GetLinkByID(ctx context.Context, id int64) (*model.Link, error)
	GetPublicLink(ctx context.Context, id int64) (*model.Link, error)
	ListActiveLinks(ctx context.Context, profileID int64) ([]model.Link, error)
	ListLinks(ctx context.Context, profileID int64) ([]model.Link, error)
	CreateLink(ctx context.Context, link *model.Link) error
	UpdateLink(ctx context.Context, id int64, u model.LinkUpdate) (*model.Link, error)
	DeleteLink(ctx context.Context, id int64) error
	ReorderLinks(ctx context.Context, profileID int64, ids []int64) error
}

// EventStore reads the analytics event log.
type EventStore interface {
	ListEventsSince(ctx context.Context, profileID int64, since time.Time) ([]model.AnalyticsEvent, error)
}

// ProfileCache caches public profile resolutions. Writes carry the
// generation read before the database load and are dropped if
// InvalidateProfile ran in between.
type ProfileCache interface {
	GetPublicProfile(ctx context.Context, username string) (*model.PublicProfile, error)
	ProfileGeneration(ctx context.Context, username string) (int64, error)
	SetPublicProfile(ctx context.Context, p *model.PublicProfile, gen int64) error
	IsNegativelyCached(ctx context.Context, username string) (bool, error)
	SetNegativeCache(ctx context.Context, username string, gen int64) error
	InvalidateProfile(ctx context.Context, usernames ...string) error
}

// User-facing messages shared across services.
const (
	msgProfileNotFound = "Profile not found"
	msgLinkNotFound    = "Link not found"
	msgNoProfile       = "Create your profile first"
	msgNotYourLink     = "You do not have permission to modify this link"
)

// ownerProfile loads the caller's profile.
func ownerProfile(ctx context.Context, profiles ProfileStore, userID int64) (*model.Profile, error) {
	p, err := profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.NotFound(msgNoProfile)
		}
		return nil, apperror.Store(err)
	}
	return p, nil
}

// ownedLink loads a link and the caller's profile, failing with Unauthorized
// when the link belongs to someone else.
func ownedLink(ctx context.Context, profiles ProfileStore, links LinkStore, userID, linkID int64) (*model.Profile, *model.Link, error) {
	link, err := links.GetLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, nil, apperror.NotFound(msgLinkNotFound)
		}
		return nil, nil, apperror.Store(err)
	}

	p, err := profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, nil, apperror.Unauthorized(msgNotYourLink)
		}
		return nil, nil, apperror.Store(err)
	}

	if link.ProfileID != p.ID {
		return nil, nil, apperror.Unauthorized(msgNotYourLink)
	}

	return p, link, nil
}

// noopCache is used when no cache is configured.
type noopCache struct{}

func (noopCache) GetPublicProfile(context.Context, string) (*model.PublicProfile, error) {
	return nil, errCacheDisabled
}
func (noopCache) ProfileGeneration(context.Context, string) (int64, error)            { return 0, nil }
func (noopCache) SetPublicProfile(context.Context, *model.PublicProfile, int64) error { return nil }
func (noopCache) IsNegativelyCached(context.Context, string) (bool, error)            { return false, nil }
func (noopCache) SetNegativeCache(context.Context, string, int64) error               { return nil }
func (noopCache) InvalidateProfile(context.Context, ...string) error                  { return nil }

var errCacheDisabled = errors.New("cache disabled")
