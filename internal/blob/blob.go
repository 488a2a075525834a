// Package blob stores binary objects such as profile pictures.
package blob

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("blob not found")
	ErrTooLarge = errors.New("blob exceeds size limit")
)

// Store uploads and downloads objects addressed by slash-separated paths.
type Store interface {
	// Upload stores data at path and returns a URL for it.
	Upload(ctx context.Context, path string, data []byte) (string, error)
	// Download reads the object at path. It fails with ErrTooLarge when the
	// object is bigger than maxBytes and stops early when ctx is cancelled.
	Download(ctx context.Context, path string, maxBytes int64) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// cleanPath rejects empty paths and paths escaping the store root.
func cleanPath(p string) (string, error) {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "", errors.New("blob path is required")
	}
	for _, part := range strings.Split(p, "/") {
		if part == "" || part == "." || part == ".." {
			return "", errors.New("invalid blob path")
		}
	}
	return p, nil
}
