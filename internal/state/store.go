package state

import (
	"sync"

	"github.com/danhigham/telegrame/internal/domain"
)

// Store holds the session state shared between the UI and background work.
type Store struct {
	mu        sync.RWMutex
	term      string
	results   []domain.User
	noResults bool
	account   *domain.Account
	drawFunc  func()
}

func New(drawFunc func()) *Store {
	return &Store{drawFunc: drawFunc}
}

func (s *Store) SetDrawFunc(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawFunc = f
}

func (s *Store) draw() {
	if s.drawFunc != nil {
		s.drawFunc()
	}
}

// Commit makes term the active search term. Results already shown stay
// until the first page for term arrives.
func (s *Store) Commit(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.term = term
	s.noResults = false
	s.draw()
}

// SetResults replaces the search results with the first page for term.
// A page for any term other than the committed one is ignored.
func (s *Store) SetResults(term string, users []domain.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if term != s.term {
		return false
	}
	s.results = dedupe(nil, users)
	s.noResults = term != "" && len(s.results) == 0
	s.draw()
	return true
}

// AppendResults adds a further page for term. Pages for any other term are
// ignored, as are users already listed.
func (s *Store) AppendResults(term string, users []domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if term != s.term {
		return
	}
	s.results = dedupe(s.results, users)
	s.draw()
}

// ClearResults empties the result list without showing the empty indicator.
func (s *Store) ClearResults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.term = ""
	s.results = nil
	s.noResults = false
	s.draw()
}

func (s *Store) Results() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, len(s.results))
	copy(out, s.results)
	return out
}

// NoResults reports whether the last search found nobody.
func (s *Store) NoResults() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.noResults
}

func (s *Store) Term() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.term
}

func (s *Store) SetAccount(acct *domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct != nil {
		copied := *acct
		acct = &copied
	}
	s.account = acct
	s.draw()
}

func (s *Store) Account() (domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return domain.Account{}, false
	}
	return *s.account, true
}

func dedupe(dst, users []domain.User) []domain.User {
	seen := make(map[string]struct{}, len(dst)+len(users))
	for _, u := range dst {
		seen[u.ID] = struct{}{}
	}
	for _, u := range users {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		dst = append(dst, u)
	}
	return dst
}
