package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/linkpage/linkpage/internal/apperror"
	"github.com/linkpage/linkpage/internal/metrics"
	"github.com/linkpage/linkpage/internal/model"
	"github.com/linkpage/linkpage/internal/repository"
	"github.com/linkpage/linkpage/internal/storage"
)

// ImageKind names an uploadable image slot.
type ImageKind string

const (
	ImageProfilePicture ImageKind = "profile_picture"
	ImageCompanyLogo    ImageKind = "company_logo"
	ImageLinkIcon       ImageKind = "link_icon"
)

// DefaultMaxImageSize caps uploads when no limit is configured.
const DefaultMaxImageSize = 5 << 20

// ImageService stores uploaded images and points profiles and links at them.
type ImageService struct {
	profiles ProfileStore
	links    LinkStore
	uploader storage.Uploader
	cache    ProfileCache
	maxSize  int64
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewImageService creates a new ImageService.
func NewImageService(profiles ProfileStore, links LinkStore, uploader storage.Uploader, c ProfileCache, maxSize int64, logger *slog.Logger, recorder metrics.Recorder) *ImageService {
	if c == nil {
		c = noopCache{}
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ImageService{
		profiles: profiles,
		links:    links,
		uploader: uploader,
		cache:    c,
		maxSize:  maxSize,
		logger:   logger.With("component", "image_service"),
		metrics:  recorder,
	}
}

// UploadProfileImage replaces the caller's profile picture or company logo.
func (s *ImageService) UploadProfileImage(ctx context.Context, userID int64, kind ImageKind, r io.Reader) (*model.Profile, error) {
	if kind != ImageProfilePicture && kind != ImageCompanyLogo {
		return nil, apperror.Validation("kind", "Unknown image kind")
	}

	p, err := ownerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}

	obj, err := s.store(ctx, userID, kind, r)
	if err != nil {
		return nil, err
	}

	u := model.ProfileUpdate{}
	previous := p.ProfilePicture
	if kind == ImageProfilePicture {
		u.ProfilePicture = &obj.URL
	} else {
		previous = p.CompanyLogo
		u.CompanyLogo = &obj.URL
	}

	updated, err := s.profiles.UpdateProfile(ctx, p.ID, u)
	if err != nil {
		s.discard(ctx, obj.Key)
		s.metrics.IncUpload(metrics.StatusFailed)
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.NotFound(msgProfileNotFound)
		}
		return nil, apperror.Store(err)
	}

	s.metrics.IncUpload(metrics.StatusSuccess)
	s.replaced(ctx, previous)
	if err := s.cache.InvalidateProfile(ctx, updated.Username); err != nil {
		s.logger.Warn("profile cache invalidation failed", "username", updated.Username, "error", err)
	}

	return updated, nil
}

// UploadLinkIcon replaces the icon of one of the caller's links.
func (s *ImageService) UploadLinkIcon(ctx context.Context, userID, linkID int64, r io.Reader) (*model.Link, error) {
	p, link, err := ownedLink(ctx, s.profiles, s.links, userID, linkID)
	if err != nil {
		return nil, err
	}

	obj, err := s.store(ctx, userID, ImageLinkIcon, r)
	if err != nil {
		return nil, err
	}

	updated, err := s.links.UpdateLink(ctx, link.ID, model.LinkUpdate{Icon: &obj.URL})
	if err != nil {
		s.discard(ctx, obj.Key)
		s.metrics.IncUpload(metrics.StatusFailed)
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, apperror.NotFound(msgLinkNotFound)
		}
		return nil, apperror.Store(err)
	}

	s.metrics.IncUpload(metrics.StatusSuccess)
	s.replaced(ctx, link.Icon)
	if err := s.cache.InvalidateProfile(ctx, p.Username); err != nil {
		s.logger.Warn("profile cache invalidation failed", "username", p.Username, "error", err)
	}

	return updated, nil
}

func (s *ImageService) store(ctx context.Context, userID int64, kind ImageKind, r io.Reader) (*storage.Object, error) {
	img, err := storage.ReadImage(r, s.maxSize)
	if err != nil {
		s.metrics.IncUpload(metrics.StatusFailed)
		switch {
		case errors.Is(err, storage.ErrEmptyFile):
			return nil, apperror.Validation("file", "Choose an image to upload")
		case errors.Is(err, storage.ErrTooLarge):
			return nil, apperror.Validation("file", "Images must be at most "+sizeLabel(s.maxSize))
		case errors.Is(err, storage.ErrUnsupportedType):
			return nil, apperror.Validation("file", "Only PNG, JPEG, GIF and WebP images are supported")
		default:
			return nil, apperror.Store(err)
		}
	}

	key := fmt.Sprintf("%d/%s-%s%s", userID, kind, ulid.Make().String(), img.Ext)
	obj, err := s.uploader.Put(ctx, key, img.Data, img.ContentType)
	if err != nil {
		s.metrics.IncUpload(metrics.StatusFailed)
		return nil, apperror.Store(err)
	}

	return obj, nil
}

// replaced deletes a superseded asset if this uploader owns it.
func (s *ImageService) replaced(ctx context.Context, oldURL string) {
	if oldURL == "" {
		return
	}
	if key, ok := s.uploader.KeyFromURL(oldURL); ok {
		s.discard(ctx, key)
	}
}

func (s *ImageService) discard(ctx context.Context, key string) {
	if err := s.uploader.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete image", "key", key, "error", err)
	}
}

func sizeLabel(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d KB", (n+1023)>>10)
}
