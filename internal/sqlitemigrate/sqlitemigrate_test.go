package sqlitemigrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func TestExtractUp(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;\n"
	got := ExtractUp(content)
	if got != "\nCREATE TABLE a (id INTEGER);\n" {
		t.Errorf("ExtractUp = %q", got)
	}
	if got := ExtractUp("SELECT 1;"); got != "SELECT 1;" {
		t.Errorf("ExtractUp without markers = %q", got)
	}
}

func TestApplyRunsOnce(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	fsys := fstest.MapFS{
		"001_a.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE a (id INTEGER);\nINSERT INTO a VALUES (1);\n")},
		"README.md": {Data: []byte("ignored")},
	}
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := Apply(ctx, db, fsys, "."); err != nil {
			t.Fatalf("Apply #%d: %v", i, err)
		}
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM a`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("rows = %d, want 1 (migration applied twice?)", n)
	}
}
