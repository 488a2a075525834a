package blob_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/danhigham/telegrame/internal/blob"
)

func newTestRedis(t *testing.T, prefix string) (*blob.Redis, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	store, err := blob.NewRedis(context.Background(), blob.RedisConfig{Addr: srv.Addr(), KeyPrefix: prefix}, nil)
	if err != nil {
		t.Fatalf("NewRedis() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, srv
}

func TestRedisRoundTrip(t *testing.T) {
	store, srv := newTestRedis(t, "")
	ctx := context.Background()

	url, err := store.Upload(ctx, "profileImage/u1.png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if !strings.HasPrefix(url, "redis://") || !strings.HasSuffix(url, "/blob:profileImage/u1.png") {
		t.Errorf("url = %q", url)
	}
	if got, err := srv.Get("blob:profileImage/u1.png"); err != nil || got != "png-bytes" {
		t.Errorf("stored value = %q, %v", got, err)
	}

	data, err := store.Download(ctx, "profileImage/u1.png", 1024)
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestRedisKeyPrefix(t *testing.T) {
	store, srv := newTestRedis(t, "avatars:")

	if _, err := store.Upload(context.Background(), "/u1.png/", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if !srv.Exists("avatars:u1.png") {
		t.Errorf("keys = %v, want [avatars:u1.png]", srv.Keys())
	}
}

func TestRedisDownloadErrors(t *testing.T) {
	store, _ := newTestRedis(t, "")
	ctx := context.Background()

	if _, err := store.Download(ctx, "missing.png", 10); !errors.Is(err, blob.ErrNotFound) {
		t.Errorf("missing blob error = %v, want ErrNotFound", err)
	}

	if _, err := store.Upload(ctx, "big.bin", make([]byte, 64)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Download(ctx, "big.bin", 10); !errors.Is(err, blob.ErrTooLarge) {
		t.Errorf("oversized blob error = %v, want ErrTooLarge", err)
	}
	if data, err := store.Download(ctx, "big.bin", 0); err != nil || len(data) != 64 {
		t.Errorf("unlimited download = %d bytes, %v", len(data), err)
	}
}

func TestRedisEmptyObject(t *testing.T) {
	store, _ := newTestRedis(t, "")
	ctx := context.Background()

	if _, err := store.Upload(ctx, "empty.bin", nil); err != nil {
		t.Fatal(err)
	}
	data, err := store.Download(ctx, "empty.bin", 10)
	if err != nil {
		t.Fatalf("Download() of empty object: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("data = %q, want empty", data)
	}
}

func TestRedisDelete(t *testing.T) {
	store, srv := newTestRedis(t, "")
	ctx := context.Background()

	if _, err := store.Upload(ctx, "u1.png", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "u1.png"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if srv.Exists("blob:u1.png") {
		t.Error("key still present after Delete")
	}
	if _, err := store.Download(ctx, "u1.png", 0); !errors.Is(err, blob.ErrNotFound) {
		t.Errorf("download after delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "u1.png"); !errors.Is(err, blob.ErrNotFound) {
		t.Errorf("second Delete() = %v, want ErrNotFound", err)
	}
}
