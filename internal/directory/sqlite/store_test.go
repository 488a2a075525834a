package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/danhigham/telegrame/internal/directory"
	"github.com/danhigham/telegrame/internal/directory/directorytest"
	"github.com/danhigham/telegrame/internal/directory/sqlite"
)

func TestStore(t *testing.T) {
	directorytest.Run(t, func(t *testing.T) directory.Directory {
		store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "directory.db"), nil)
		if err != nil {
			t.Fatalf("Open() error: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := sqlite.Open(context.Background(), "  ", nil); err == nil {
		t.Error("expected error for empty path")
	}
}
