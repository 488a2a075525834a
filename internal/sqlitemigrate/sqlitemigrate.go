// Package sqlitemigrate applies embedded SQL migrations to a SQLite database.
package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

const migrationTable = "schema_migrations"

// Apply executes every *.sql file under root in lexical order, at most once
// per file. Only the "-- +migrate Up" section of a file is run.
func Apply(ctx context.Context, db *sql.DB, fsys fs.FS, root string) error {
	if db == nil {
		return errors.New("sql db is required")
	}
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}

	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+migrationTable+` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, name := range files {
		applied, err := isApplied(ctx, db, name)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied {
			continue
		}

		content, err := fs.ReadFile(fsys, path.Join(root, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		up := ExtractUp(string(content))
		if strings.TrimSpace(up) == "" {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, up); err != nil && !IsAlreadyExists(err) {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`,
			name, time.Now().UTC().UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

// ExtractUp returns the SQL between "-- +migrate Up" and "-- +migrate Down".
// Content without markers is returned unchanged.
func ExtractUp(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"
	i := strings.Index(content, up)
	if i == -1 {
		return content
	}
	rest := content[i+len(up):]
	if j := strings.Index(rest, down); j != -1 {
		return rest[:j]
	}
	return rest
}

// IsAlreadyExists reports whether err is an idempotent DDL failure.
func IsAlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate column name")
}

func isApplied(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var found int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM `+migrationTable+` WHERE name = ?`, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
