package directory

import (
	"reflect"
	"testing"

	"github.com/danhigham/telegrame/internal/domain"
)

func TestKeywords(t *testing.T) {
	got := Keywords("Mark", "mark_t")
	want := []string{"M", "Ma", "Mar", "Mark", "m", "ma", "mar", "mark", "mark_", "mark_t"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords = %v, want %v", got, want)
	}
}

func TestKeywordsDeduplicates(t *testing.T) {
	got := Keywords("anna", "anna_b")
	want := []string{"a", "an", "ann", "anna", "anna_", "anna_b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords = %v, want %v", got, want)
	}
}

func TestKeywordsGraphemes(t *testing.T) {
	// "e" + combining acute normalises to a single "é".
	got := Keywords("Re\u0301my", "")
	want := []string{"R", "R\u00e9", "R\u00e9m", "R\u00e9my"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords = %q, want %q", got, want)
	}
}

func TestCursorBefore(t *testing.T) {
	c := Cursor{DisplayName: "Mark", UserID: "u2"}
	tests := []struct {
		u    domain.User
		want bool
	}{
		{domain.User{DisplayName: "Maria", ID: "u9"}, true},
		{domain.User{DisplayName: "Mark", ID: "u1"}, true},
		{domain.User{DisplayName: "Mark", ID: "u2"}, true},
		{domain.User{DisplayName: "Mark", ID: "u3"}, false},
		{domain.User{DisplayName: "Max", ID: "u0"}, false},
	}
	for _, tt := range tests {
		if got := c.Before(tt.u); got != tt.want {
			t.Errorf("Before(%s/%s) = %v, want %v", tt.u.DisplayName, tt.u.ID, got, tt.want)
		}
	}
}
