package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/danhigham/telegrame/internal/directory"
	"github.com/danhigham/telegrame/internal/directory/directorytest"
	"github.com/danhigham/telegrame/internal/search"
	"github.com/danhigham/telegrame/internal/state"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func newTestChats(t *testing.T, pageSize int) (ChatsModel, *search.Debouncer, *state.Store, *testClock) {
	t.Helper()
	dir := directory.NewMemory()
	ctx := context.Background()
	for _, u := range []struct{ id, name, username string }{
		{"1", "Mark Twain", "mark_twain"},
		{"2", "Mary Shelley", "mary_shelley"},
		{"3", "Matt Smith", "matt_smith"},
		{"me", "Max Planck", "max_planck"},
	} {
		if err := dir.Create(ctx, directorytest.NewUser(u.id, u.name, u.username)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	clock := &testClock{t: time.Date(2024, 7, 29, 12, 0, 0, 0, time.UTC)}
	deb := search.NewDebouncer(search.DefaultDebounce, clock.now)
	store := state.New(nil)
	m := NewChatsModel(ctx, deb, search.NewPaginator(dir, pageSize, nil), store).SetExcluding("me")
	m = m.SetSize(80, 30)
	m, _ = m.Focus()
	return m, deb, store, clock
}

func (m ChatsModel) feed(t *testing.T, msg any) ChatsModel {
	t.Helper()
	next, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatalf("%T produced no command", msg)
	}
	next, _ = next.Update(cmd())
	return next
}

func TestChats_DebouncedSearch(t *testing.T) {
	m, deb, store, clock := newTestChats(t, 0)

	stale := deb.Input("M")
	tok := deb.Input("Ma")
	if _, cmd := m.Update(searchTickMsg{token: stale}); cmd != nil {
		t.Error("stale token started a fetch")
	}

	clock.t = tok.Deadline
	m = m.feed(t, searchTickMsg{token: tok})

	got := store.Results()
	if len(got) != 3 {
		t.Fatalf("results = %d, want 3", len(got))
	}
	for _, u := range got {
		if u.ID == "me" {
			t.Error("signed-in user listed in results")
		}
	}
	if len(m.list.Items()) != 3 {
		t.Errorf("list items = %d, want 3", len(m.list.Items()))
	}
}

func TestChats_EarlyTickReschedules(t *testing.T) {
	m, deb, store, _ := newTestChats(t, 0)

	tok := deb.Input("Mar")
	_, cmd := m.Update(searchTickMsg{token: tok})
	if cmd == nil {
		t.Fatal("early tick was dropped")
	}
	// The fake clock is in the past, so the rescheduled tick fires at once.
	msg, ok := cmd().(searchTickMsg)
	if !ok || msg.token != tok {
		t.Fatalf("rescheduled msg = %#v", msg)
	}
	if store.Term() != "" {
		t.Error("early tick committed the term")
	}
}

func TestChats_LoadsNextPageOnLastRow(t *testing.T) {
	m, deb, store, clock := newTestChats(t, 2)

	tok := deb.Input("Ma")
	clock.t = tok.Deadline
	m = m.feed(t, searchTickMsg{token: tok})
	if n := len(store.Results()); n != 2 {
		t.Fatalf("first page = %d, want 2", n)
	}

	// Moving into the list puts the cursor on the last loaded row.
	m.list.Select(1)
	m = m.feed(t, key("tab"))
	got := store.Results()
	if len(got) != 3 {
		t.Fatalf("results after next page = %d, want 3", len(got))
	}
	if got[2].DisplayName != "Matt Smith" {
		t.Errorf("last result = %q", got[2].DisplayName)
	}
}

func TestChats_NoResults(t *testing.T) {
	m, deb, store, clock := newTestChats(t, 0)

	tok := deb.Input("Zed")
	clock.t = tok.Deadline
	m = m.feed(t, searchTickMsg{token: tok})
	if !store.NoResults() {
		t.Fatal("empty result not flagged")
	}
	if !strings.Contains(m.View(), "No results") {
		t.Error("view does not say there are no results")
	}
}

func TestChats_ClearingFieldClearsResults(t *testing.T) {
	m, deb, store, clock := newTestChats(t, 0)

	next, _ := m.Update(key("M"))
	m = next
	next, _ = m.Update(key("a"))
	m = next

	tok := deb.Input("Ma")
	clock.t = tok.Deadline
	m = m.feed(t, searchTickMsg{token: tok})
	if len(store.Results()) == 0 {
		t.Fatal("no results to clear")
	}

	next, _ = m.Update(key("backspace"))
	m = next
	next, _ = m.Update(key("backspace"))
	m = next
	if len(store.Results()) != 0 || store.Term() != "" {
		t.Errorf("results = %d term = %q after clearing the field", len(store.Results()), store.Term())
	}
	if len(m.list.Items()) != 0 {
		t.Error("list not cleared")
	}
}

func TestChats_DropsPageOfReplacedTerm(t *testing.T) {
	m, deb, store, clock := newTestChats(t, 0)

	// The fetch for "Mar" completes but its message is held back.
	tokA := deb.Input("Mar")
	clock.t = tokA.Deadline
	m, cmd := m.Update(searchTickMsg{token: tokA})
	if cmd == nil {
		t.Fatal("no fetch for Mar")
	}
	late := cmd()

	tokB := deb.Input("Mat")
	clock.t = tokB.Deadline
	m = m.feed(t, searchTickMsg{token: tokB})
	if got := store.Results(); len(got) != 1 || got[0].DisplayName != "Matt Smith" {
		t.Fatalf("results for Mat = %v", got)
	}

	m, cmd = m.Update(late)
	if cmd != nil {
		t.Error("late page produced a command")
	}
	if store.Term() != "Mat" {
		t.Errorf("store term = %q, want Mat", store.Term())
	}
	got := store.Results()
	if len(got) != 1 || got[0].DisplayName != "Matt Smith" {
		t.Errorf("results after late page = %v, want [Matt Smith]", got)
	}
	if len(m.list.Items()) != 1 {
		t.Errorf("list items = %d, want 1", len(m.list.Items()))
	}
}
