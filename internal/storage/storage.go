// Package storage stores uploaded images and hands back their public URLs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Upload errors.
var (
	ErrTooLarge        = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrEmptyFile       = errors.New("file is empty")
	ErrInvalidKey      = errors.New("invalid object key")
)

// allowedTypes maps accepted image MIME types to stored file extensions.
var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Object describes a stored file.
type Object struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// Uploader persists objects under a key and resolves them back by URL.
type Uploader interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (*Object, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL returns the key of an object this uploader produced, or
	// false for foreign URLs.
	KeyFromURL(url string) (string, bool)
}

// Image is a sniffed, size-checked upload ready to store.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// ReadImage reads at most maxSize bytes from r and checks that the content
// is an accepted image type. The declared content type is ignored.
func ReadImage(r io.Reader, maxSize int64) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > maxSize {
		return nil, ErrTooLarge
	}

	mt, err := mimetype.DetectReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("detect content type: %w", err)
	}
	ct := strings.SplitN(mt.String(), ";", 2)[0]
	ext, ok := allowedTypes[ct]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}

	return &Image{Data: data, ContentType: ct, Ext: ext}, nil
}
