// Package directory defines the user directory the client searches and
// writes profiles to, plus an in-memory implementation.
package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"

	"github.com/danhigham/telegrame/internal/domain"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("this username is already taken")
	ErrInvalidQuery  = errors.New("directory: invalid query")
)

// Field names a record attribute that can be checked for existence.
type Field string

const (
	FieldUserID   Field = "user_id"
	FieldUsername Field = "username"
	FieldEmail    Field = "email"
)

// Cursor marks the last record of a page. Records are ordered by display
// name and then user id, so a cursor identifies a unique position.
type Cursor struct {
	DisplayName string
	UserID      string
}

// CursorOf returns the cursor positioned at u.
func CursorOf(u domain.User) Cursor {
	return Cursor{DisplayName: u.DisplayName, UserID: u.ID}
}

// Before reports whether u sorts at or before the cursor position.
func (c Cursor) Before(u domain.User) bool {
	if u.DisplayName != c.DisplayName {
		return u.DisplayName < c.DisplayName
	}
	return u.ID <= c.UserID
}

// Query selects one page of records whose keyword list contains Keyword.
type Query struct {
	Keyword       string
	ExcludeUserID string
	Limit         int
	After         *Cursor
}

// Validate reports whether q can be sent to a backend.
func (q Query) Validate() error {
	if q.Keyword == "" {
		return errors.Join(ErrInvalidQuery, errors.New("keyword is required"))
	}
	if q.Limit <= 0 {
		return errors.Join(ErrInvalidQuery, errors.New("limit must be positive"))
	}
	return nil
}

// Directory is the remote user directory.
type Directory interface {
	// Find returns up to q.Limit records ordered by display name ascending.
	Find(ctx context.Context, q Query) ([]domain.User, error)
	Exists(ctx context.Context, field Field, value string) (bool, error)
	// Create stores a new record. It fails with ErrUsernameTaken when the
	// username already belongs to another record.
	Create(ctx context.Context, u domain.User) error
	Get(ctx context.Context, userID string) (domain.User, error)
	Delete(ctx context.Context, userID string) error
}

// Keywords returns every prefix of the display name and username, used
// for prefix search without a full-text engine. "Mark" yields
// ["M", "Ma", "Mar", "Mark"]. Matching stays case-sensitive.
func Keywords(displayName, username string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range []string{displayName, username} {
		for _, p := range prefixes(norm.NFC.String(strings.TrimSpace(s))) {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

func prefixes(s string) []string {
	var (
		out []string
		b   strings.Builder
	)
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		b.WriteString(g.Str())
		out = append(out, b.String())
	}
	return out
}
