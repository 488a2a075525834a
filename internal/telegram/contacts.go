package telegram

import (
	"fmt"
	"sort"

	"github.com/gotd/td/tg"

	"github.com/danhigham/telegrame/internal/directory"
	"github.com/danhigham/telegrame/internal/domain"
	"github.com/danhigham/telegrame/internal/forms"
)

// UserID returns the directory id of a Telegram user.
func UserID(tgID int64) string {
	return fmt.Sprintf("tg-%d", tgID)
}

// ContactsToUsers converts Telegram users into directory records, skipping
// bots, deleted accounts and the signed-in user. Output is sorted by id.
func ContactsToUsers(users []tg.UserClass) []domain.User {
	byID := usersToMap(users)
	ids := make([]int64, 0, len(byID))
	for id, u := range byID {
		if u.Bot || u.Deleted || u.Self {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, contactToUser(byID[id]))
	}
	return out
}

func contactToUser(u *tg.User) domain.User {
	name := formatUserName(u)
	username := contactUsername(u)
	return domain.User{
		ID:          UserID(u.ID),
		DisplayName: name,
		Username:    username,
		Keywords:    directory.Keywords(name, username),
	}
}

// contactUsername keeps the Telegram username when it is valid here and
// falls back to one derived from the id.
func contactUsername(u *tg.User) string {
	if u.Username != "" && forms.ValidateUsername(u.Username) == "" {
		return u.Username
	}
	return fmt.Sprintf("tg_%06d", u.ID)
}

// formatUserName returns a display name for a user.
func formatUserName(u *tg.User) string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "Unknown"
}

// usersToMap converts a UserClass slice to a map of User by ID.
func usersToMap(users []tg.UserClass) map[int64]*tg.User {
	m := make(map[int64]*tg.User, len(users))
	for _, u := range users {
		user, ok := u.(*tg.User)
		if !ok {
			continue
		}
		m[user.ID] = user
	}
	return m
}
