package state_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danhigham/telegrame/internal/domain"
	"github.com/danhigham/telegrame/internal/state"
)

func users(ids ...string) []domain.User {
	out := make([]domain.User, len(ids))
	for i, id := range ids {
		out[i] = domain.User{ID: id, DisplayName: "User " + id}
	}
	return out
}

func ids(us []domain.User) []string {
	out := make([]string, len(us))
	for i, u := range us {
		out[i] = u.ID
	}
	return out
}

func TestStore_SetResults(t *testing.T) {
	draws := 0
	s := state.New(func() { draws++ })

	s.Commit("al")
	draws = 0
	s.SetResults("al", users("1", "2", "2"))
	got := s.Results()
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if s.NoResults() {
		t.Error("NoResults() = true with results present")
	}
	if draws != 1 {
		t.Errorf("draws = %d, want 1", draws)
	}

	s.Commit("zz")
	s.SetResults("zz", nil)
	if !s.NoResults() {
		t.Error("NoResults() = false for an empty page")
	}
	if len(s.Results()) != 0 {
		t.Error("results not replaced")
	}
}

func TestStore_SetResultsIgnoresOtherTerms(t *testing.T) {
	s := state.New(nil)

	s.Commit("mar")
	s.Commit("mat")
	if !s.SetResults("mat", users("3")) {
		t.Fatal("page for the committed term was refused")
	}
	if s.SetResults("mar", users("1", "2")) {
		t.Error("page for an older term was accepted")
	}
	if got := ids(s.Results()); len(got) != 1 || got[0] != "3" {
		t.Errorf("results = %v, want [3]", got)
	}
	if s.Term() != "mat" {
		t.Errorf("Term() = %q, want mat", s.Term())
	}
}

func TestStore_AppendResults(t *testing.T) {
	s := state.New(nil)

	s.Commit("al")
	s.SetResults("al", users("1", "2"))
	s.AppendResults("al", users("2", "3"))
	s.AppendResults("bo", users("9"))

	got := ids(s.Results())
	want := []string{"1", "2", "3"}
	if len(got) != len(want) {
		t.Fatalf("results = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("results[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestStore_ClearResults(t *testing.T) {
	s := state.New(nil)
	s.Commit("zz")
	s.SetResults("zz", nil)
	s.ClearResults()
	if s.NoResults() {
		t.Error("cleared search should not show the empty indicator")
	}
	if s.Term() != "" {
		t.Errorf("Term() = %q, want empty", s.Term())
	}
}

func TestStore_Account(t *testing.T) {
	s := state.New(nil)
	if _, ok := s.Account(); ok {
		t.Fatal("new store has an account")
	}

	acct := &domain.Account{ID: "a1", Email: "a@b.co"}
	s.SetAccount(acct)
	acct.Email = "changed@b.co"

	got, ok := s.Account()
	if !ok || got.Email != "a@b.co" {
		t.Errorf("Account() = %+v, %v", got, ok)
	}

	s.SetAccount(nil)
	if _, ok := s.Account(); ok {
		t.Error("account not cleared")
	}
}

func TestPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")

	p, err := state.LoadPrefs(path)
	if err != nil {
		t.Fatalf("LoadPrefs() on missing file: %v", err)
	}
	if p.PassedOnboarding {
		t.Error("missing prefs should not pass onboarding")
	}

	if err := state.SavePrefs(path, state.Prefs{PassedOnboarding: true}); err != nil {
		t.Fatal(err)
	}
	p, err = state.LoadPrefs(path)
	if err != nil {
		t.Fatal(err)
	}
	if !p.PassedOnboarding {
		t.Error("PassedOnboarding not persisted")
	}

	if err := os.WriteFile(path, []byte("passed_onboarding: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := state.LoadPrefs(path); err == nil {
		t.Error("expected parse error")
	}
}
