// Package directorytest holds a behavioural suite every directory backend
// must pass.
package directorytest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danhigham/telegrame/internal/directory"
	"github.com/danhigham/telegrame/internal/domain"
)

// NewUser builds a record with keywords filled in.
func NewUser(id, displayName, username string) domain.User {
	return domain.User{
		ID:          id,
		DisplayName: displayName,
		Username:    username,
		Email:       username + "@example.com",
		Keywords:    directory.Keywords(displayName, username),
		CreatedAt:   time.Date(2024, 7, 29, 0, 0, 0, 0, time.UTC),
	}
}

// Run exercises dir, which must start empty.
func Run(t *testing.T, newDir func(t *testing.T) directory.Directory) {
	t.Run("FindOrdersAndExcludes", func(t *testing.T) {
		ctx := context.Background()
		dir := newDir(t)
		require.NoError(t, dir.Create(ctx, NewUser("u3", "Mark", "mark_twain")))
		require.NoError(t, dir.Create(ctx, NewUser("u1", "Maria", "maria_99")))
		require.NoError(t, dir.Create(ctx, NewUser("u2", "Max", "maxpower")))
		require.NoError(t, dir.Create(ctx, NewUser("u4", "Bob", "bobby_b")))

		got, err := dir.Find(ctx, directory.Query{Keyword: "Ma", ExcludeUserID: "u2", Limit: 15})
		require.NoError(t, err)
		require.Equal(t, []string{"Maria", "Mark"}, displayNames(got))
	})

	t.Run("FindIsCaseSensitive", func(t *testing.T) {
		ctx := context.Background()
		dir := newDir(t)
		require.NoError(t, dir.Create(ctx, NewUser("u1", "Mark", "mark_twain")))

		got, err := dir.Find(ctx, directory.Query{Keyword: "MA", Limit: 15})
		require.NoError(t, err)
		require.Empty(t, got)

		got, err = dir.Find(ctx, directory.Query{Keyword: "mark_", Limit: 15})
		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("FindPagesWithCursor", func(t *testing.T) {
		ctx := context.Background()
		dir := newDir(t)
		for i := 0; i < 7; i++ {
			// Two records share each display name to exercise the id tie-break.
			name := fmt.Sprintf("Sam %d", i/2)
			require.NoError(t, dir.Create(ctx, NewUser(fmt.Sprintf("id-%02d", i), name, fmt.Sprintf("sam_user_%02d", i))))
		}

		var (
			all   []domain.User
			after *directory.Cursor
		)
		for {
			page, err := dir.Find(ctx, directory.Query{Keyword: "Sam", Limit: 3, After: after})
			require.NoError(t, err)
			all = append(all, page...)
			if len(page) < 3 {
				break
			}
			c := directory.CursorOf(page[len(page)-1])
			after = &c
		}

		require.Len(t, all, 7)
		seen := make(map[string]bool)
		for i, u := range all {
			require.False(t, seen[u.ID], "duplicate %s", u.ID)
			seen[u.ID] = true
			if i > 0 {
				require.LessOrEqual(t, all[i-1].DisplayName, u.DisplayName)
			}
		}
	})

	t.Run("CreateRejectsTakenUsername", func(t *testing.T) {
		ctx := context.Background()
		dir := newDir(t)
		require.NoError(t, dir.Create(ctx, NewUser("u1", "Alice", "alice_99")))
		err := dir.Create(ctx, NewUser("u2", "Alice B", "alice_99"))
		require.ErrorIs(t, err, directory.ErrUsernameTaken)
	})

	t.Run("ExistsGetDelete", func(t *testing.T) {
		ctx := context.Background()
		dir := newDir(t)
		require.NoError(t, dir.Create(ctx, NewUser("u1", "Alice", "alice_99")))

		ok, err := dir.Exists(ctx, directory.FieldUsername, "alice_99")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = dir.Exists(ctx, directory.FieldUserID, "nobody")
		require.NoError(t, err)
		require.False(t, ok)

		u, err := dir.Get(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, "Alice", u.DisplayName)
		require.Equal(t, "alice_99@example.com", u.Email)
		require.Contains(t, u.Keywords, "ali")

		require.NoError(t, dir.Delete(ctx, "u1"))
		_, err = dir.Get(ctx, "u1")
		require.ErrorIs(t, err, directory.ErrNotFound)
	})

	t.Run("FindRejectsEmptyKeyword", func(t *testing.T) {
		dir := newDir(t)
		_, err := dir.Find(context.Background(), directory.Query{Limit: 15})
		require.ErrorIs(t, err, directory.ErrInvalidQuery)
	})
}

func displayNames(users []domain.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.DisplayName
	}
	return out
}
