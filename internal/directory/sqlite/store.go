// Package sqlite stores the user directory in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/danhigham/telegrame/internal/directory"
	"github.com/danhigham/telegrame/internal/directory/sqlite/migrations"
	"github.com/danhigham/telegrame/internal/domain"
	"github.com/danhigham/telegrame/internal/sqlitemigrate"
)

const findQuery = `
SELECT u.user_id, u.photo_url, u.display_name, u.username, u.email, u.created_at
FROM users u
JOIN user_keywords k ON k.user_id = u.user_id
WHERE k.keyword = ?1
  AND u.user_id <> ?2
  AND (?3 IS NULL OR u.display_name > ?3 OR (u.display_name = ?3 AND u.user_id > ?4))
ORDER BY u.display_name, u.user_id
LIMIT ?5`

// Store implements directory.Directory over SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ directory.Directory = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the
// bundled migrations.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, db, migrations.FS, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, logger: logger.Named("directory")}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Find(ctx context.Context, q directory.Query) ([]domain.User, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var afterName, afterID any
	if q.After != nil {
		afterName, afterID = q.After.DisplayName, q.After.UserID
	}

	rows, err := s.db.QueryContext(ctx, findQuery, q.Keyword, q.ExcludeUserID, afterName, afterID, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	for i := range users {
		kw, err := s.keywords(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}
		users[i].Keywords = kw
	}

	s.logger.Debug("find", zap.String("keyword", q.Keyword), zap.Int("results", len(users)))
	return users, nil
}

func (s *Store) Exists(ctx context.Context, field directory.Field, value string) (bool, error) {
	var column string
	switch field {
	case directory.FieldUserID:
		column = "user_id"
	case directory.FieldUsername:
		column = "username"
	case directory.FieldEmail:
		column = "email"
	default:
		return false, fmt.Errorf("unknown field %q", field)
	}

	var found int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE `+column+` = ? LIMIT 1`, value).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check %s: %w", field, err)
	}
	return true, nil
}

func (s *Store) Create(ctx context.Context, u domain.User) error {
	if len(u.Keywords) == 0 {
		u.Keywords = directory.Keywords(u.DisplayName, u.Username)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create user: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM users WHERE username = ?`, u.Username).Scan(&owner)
	switch {
	case err == nil && owner != u.ID:
		return directory.ErrUsernameTaken
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check username: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO users (user_id, photo_url, display_name, username, email, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET
    photo_url = excluded.photo_url,
    display_name = excluded.display_name,
    username = excluded.username,
    email = excluded.email`,
		u.ID, u.PhotoURL, u.DisplayName, u.Username, u.Email, u.CreatedAt.UTC().UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
			return directory.ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_keywords WHERE user_id = ?`, u.ID); err != nil {
		return fmt.Errorf("clear keywords: %w", err)
	}
	for i, kw := range u.Keywords {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO user_keywords (keyword, user_id, position) VALUES (?, ?, ?)`,
			kw, u.ID, i,
		); err != nil {
			return fmt.Errorf("insert keyword: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create user: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, userID string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT user_id, photo_url, display_name, username, email, created_at
FROM users WHERE user_id = ?`, userID)
	u, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, directory.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	u.Keywords, err = s.keywords(ctx, u.ID)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *Store) Delete(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_keywords WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete keywords: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return directory.ErrNotFound
	}
	return tx.Commit()
}

func (s *Store) keywords(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT keyword FROM user_keywords WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		out = append(out, kw)
	}
	return out, rows.Err()
}

func scanUser(scan func(dest ...any) error) (domain.User, error) {
	var (
		u         domain.User
		createdAt int64
	)
	if err := scan(&u.ID, &u.PhotoURL, &u.DisplayName, &u.Username, &u.Email, &createdAt); err != nil {
		return domain.User{}, err
	}
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return u, nil
}
