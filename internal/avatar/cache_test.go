package avatar_test

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danhigham/telegrame/internal/avatar"
	"github.com/danhigham/telegrame/internal/blob"
)

// gatedStore blocks downloads until release is closed.
type gatedStore struct {
	blob.Store
	mu        sync.Mutex
	downloads int
	entered   chan string
	release   chan struct{}
}

func (s *gatedStore) Download(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
	s.mu.Lock()
	s.downloads++
	s.mu.Unlock()
	if s.entered != nil {
		s.entered <- path
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.Store.Download(ctx, path, maxBytes)
}

func (s *gatedStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downloads
}

func newStore(t *testing.T) *gatedStore {
	t.Helper()
	fs, err := blob.NewFS(t.TempDir())
	require.NoError(t, err)
	return &gatedStore{Store: fs}
}

func TestCachePutGet(t *testing.T) {
	store := newStore(t)
	cache, err := avatar.NewCache(store, 4, nil)
	require.NoError(t, err)
	ctx := context.Background()

	img, err := avatar.Render("A")
	require.NoError(t, err)
	url, err := cache.Put(ctx, "u1", img)
	require.NoError(t, err)
	require.Contains(t, url, "profileImage/u1.png")

	got, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, img, got)
	require.Zero(t, store.count(), "cached image should not be downloaded")
}

func TestCacheFetchesOnce(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	_, err := store.Upload(ctx, avatar.Path("u2"), []byte("img"))
	require.NoError(t, err)

	cache, err := avatar.NewCache(store, 4, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := cache.Get(ctx, "u2")
		require.NoError(t, err)
		require.Equal(t, []byte("img"), got)
	}
	require.Equal(t, 1, store.count())
	require.True(t, cache.Cached("u2"))
}

func TestCancelledFetchIsNotCached(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	_, err := store.Upload(ctx, avatar.Path("u3"), []byte("img3"))
	require.NoError(t, err)
	_, err = store.Upload(ctx, avatar.Path("u4"), []byte("img4"))
	require.NoError(t, err)

	store.entered = make(chan string, 2)
	store.release = make(chan struct{})
	cache, err := avatar.NewCache(store, 4, nil)
	require.NoError(t, err)

	cancelCtx, cancel := context.WithCancel(ctx)
	errc := make(chan error, 1)
	go func() {
		_, err := cache.Get(cancelCtx, "u3")
		errc <- err
	}()
	<-store.entered
	cancel()
	require.True(t, errors.Is(<-errc, context.Canceled))
	require.False(t, cache.Cached("u3"))

	close(store.release)
	got, err := cache.Get(ctx, "u4")
	require.NoError(t, err)
	require.Equal(t, []byte("img4"), got)

	got, err = cache.Get(ctx, "u3")
	require.NoError(t, err)
	require.Equal(t, []byte("img3"), got)
}

func TestGetMissing(t *testing.T) {
	cache, err := avatar.NewCache(newStore(t), 4, nil)
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), "nobody")
	require.ErrorIs(t, err, blob.ErrNotFound)
	require.False(t, cache.Cached("nobody"))
}

func TestRender(t *testing.T) {
	data, err := avatar.Render("B")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, avatar.Size, img.Bounds().Dx())
	require.Equal(t, avatar.Size, img.Bounds().Dy())

	_, _, _, a := img.At(0, 0).RGBA()
	require.Zero(t, a, "corner should be transparent")
	r, g, b, _ := img.At(avatar.Size/2, avatar.Size/2).RGBA()
	want := avatar.ColorFor("B")
	require.Equal(t, uint32(want.R)<<8|uint32(want.R), r)
	require.Equal(t, uint32(want.G)<<8|uint32(want.G), g)
	require.Equal(t, uint32(want.B)<<8|uint32(want.B), b)
}
