package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore writes images below a directory that the HTTP server exposes at BaseURL.
type LocalStore struct {
	Dir     string
	BaseURL string
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir, BaseURL: baseURL}, nil
}

// Save writes body to a new uniquely named file.
func (s *LocalStore) Save(_ context.Context, contentType string, body io.Reader, _ int64) (string, error) {
	name, err := newObjectName(contentType)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, io.LimitReader(body, MaxImageSize+1)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return joinURL(s.BaseURL, name), nil
}
