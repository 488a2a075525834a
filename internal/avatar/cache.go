// Package avatar fetches, caches and renders profile pictures.
package avatar

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/danhigham/telegrame/internal/blob"
)

const (
	// MaxBytes is the largest profile image that will be downloaded.
	MaxBytes = 10 << 20
	// DefaultCacheSize is the number of images kept in memory.
	DefaultCacheSize = 128
)

// Path returns the storage path of a user's profile image.
func Path(userID string) string {
	return "profileImage/" + userID + ".png"
}

// Cache fetches profile images from a blob store and keeps recently used
// ones in memory.
//
// Every caller fetches with its own context. A fetch that fails or whose
// context is cancelled leaves the cache untouched.
type Cache struct {
	store  blob.Store
	images *lru.Cache[string, []byte]
	logger *zap.Logger
}

// NewCache returns a cache holding up to size images.
func NewCache(store blob.Store, size int, logger *zap.Logger) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	images, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create avatar cache: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: store, images: images, logger: logger.Named("avatar")}, nil
}

// Get returns the profile image for userID.
func (c *Cache) Get(ctx context.Context, userID string) ([]byte, error) {
	if img, ok := c.images.Get(userID); ok {
		return img, nil
	}

	img, err := c.store.Download(ctx, Path(userID), MaxBytes)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.images.Add(userID, img)
	return img, nil
}

// Put uploads img as userID's profile image and returns its URL.
func (c *Cache) Put(ctx context.Context, userID string, img []byte) (string, error) {
	url, err := c.store.Upload(ctx, Path(userID), img)
	if err != nil {
		return "", err
	}
	c.images.Add(userID, img)
	c.logger.Debug("uploaded profile image", zap.String("user", userID), zap.Int("bytes", len(img)))
	return url, nil
}

// Cached reports whether userID's image is in memory.
func (c *Cache) Cached(userID string) bool {
	return c.images.Contains(userID)
}

// Forget drops userID's image from memory and storage.
func (c *Cache) Forget(ctx context.Context, userID string) error {
	c.images.Remove(userID)
	return c.store.Delete(ctx, Path(userID))
}
