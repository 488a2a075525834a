package directory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/danhigham/telegrame/internal/domain"
)

// Memory is a Directory held in process memory.
type Memory struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemory() *Memory {
	return &Memory{users: make(map[string]domain.User)}
}

func (m *Memory) Find(ctx context.Context, q Query) ([]domain.User, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	var matched []domain.User
	for _, u := range m.users {
		if u.ID == q.ExcludeUserID {
			continue
		}
		if !slices.Contains(u.Keywords, q.Keyword) {
			continue
		}
		if q.After != nil && q.After.Before(u) {
			continue
		}
		matched = append(matched, u)
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].DisplayName != matched[j].DisplayName {
			return matched[i].DisplayName < matched[j].DisplayName
		}
		return matched[i].ID < matched[j].ID
	})
	if len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (m *Memory) Exists(ctx context.Context, field Field, value string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		switch field {
		case FieldUserID:
			if u.ID == value {
				return true, nil
			}
		case FieldUsername:
			if u.Username == value {
				return true, nil
			}
		case FieldEmail:
			if u.Email == value {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *Memory) Create(ctx context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.users {
		if existing.Username == u.Username && id != u.ID {
			return ErrUsernameTaken
		}
	}
	if len(u.Keywords) == 0 {
		u.Keywords = Keywords(u.DisplayName, u.Username)
	}
	m.users[u.ID] = u
	return nil
}

func (m *Memory) Get(ctx context.Context, userID string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return ErrNotFound
	}
	delete(m.users, userID)
	return nil
}
