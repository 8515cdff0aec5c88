// Package storage keeps uploaded goal images and returns the URL clients use
// to display them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ariebrainware/aba-tracker/config"
	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

// ErrUnsupportedType is returned for content that is not an accepted image type.
var ErrUnsupportedType = errors.New("unsupported image type")

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageStore persists an image and returns its public URL.
type ImageStore interface {
	Save(ctx context.Context, contentType string, body io.Reader, size int64) (string, error)
}

// ExtensionFor returns the file extension for an accepted image content type.
func ExtensionFor(contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := extensions[ct]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	return ext, nil
}

// newObjectName returns a random object name with the extension for contentType.
func newObjectName(contentType string) (string, error) {
	ext, err := ExtensionFor(contentType)
	if err != nil {
		return "", err
	}
	return uuid.NewString() + ext, nil
}

func joinURL(base, name string) string {
	if base == "" {
		return "/" + name
	}
	return strings.TrimRight(base, "/") + "/" + path.Clean(name)
}

// New builds the image store selected by UPLOAD_DRIVER.
func New(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.UploadDriver {
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			Prefix:    cfg.S3Prefix,
			PublicURL: cfg.S3PublicURL,
		})
	case "", "local":
		return NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL)
	}
	return nil, fmt.Errorf("unsupported upload driver %q", cfg.UploadDriver)
}
