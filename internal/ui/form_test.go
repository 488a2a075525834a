package ui

import (
	"strings"
	"testing"

	"github.com/danhigham/telegrame/internal/forms"
)

func TestFormModel_ReadyOnlyWhenAllFieldsValid(t *testing.T) {
	m := NewFormModel(forms.SignUp, "Create account", "Sign Up", "")
	m, _ = m.Reset()
	if m.Ready() {
		t.Fatal("empty form is ready")
	}

	m = m.Set(forms.DisplayName, "Mark")
	m = m.Set(forms.Username, "mark")
	m = m.Set(forms.Email, "mark@example.com")
	m = m.Set(forms.Password, "secret1")
	if m.Ready() {
		t.Fatal("ready with a short username")
	}
	if got := m.Hint(forms.Username); got != forms.HintUsernameLength {
		t.Errorf("username hint = %q", got)
	}

	m = m.Set(forms.Username, "mark_twain")
	if !m.Ready() {
		t.Fatal("not ready with valid input")
	}
	if m.SetLoading(true).Ready() {
		t.Error("ready while loading")
	}
}

func TestFormModel_EnterAdvancesThenSubmits(t *testing.T) {
	m := NewFormModel(forms.SignIn, "Sign in", "Sign In", "")
	m, _ = m.Reset()

	m, _, submitted := m.Update(key("enter"))
	if submitted || m.focus != 1 {
		t.Fatalf("enter on the first field: submitted=%v focus=%d", submitted, m.focus)
	}
	if _, _, submitted = m.Update(key("enter")); submitted {
		t.Fatal("submitted an invalid form")
	}

	m = m.Set(forms.Email, "mark@example.com").Set(forms.Password, "secret1")
	if _, _, submitted = m.Update(key("enter")); !submitted {
		t.Error("ready form not submitted")
	}
}

func TestFormModel_TypingUpdatesHints(t *testing.T) {
	m := NewFormModel(forms.ForgotPassword, "Forgot password", "Send", "")
	m, _ = m.Reset()
	for _, r := range "mark@" {
		m, _, _ = m.Update(key(string(r)))
	}
	if got := m.Hint(forms.Email); got != forms.HintEmail {
		t.Errorf("hint = %q, want %q", got, forms.HintEmail)
	}
	if !strings.Contains(m.View(), forms.HintEmail) {
		t.Error("hint not rendered")
	}
}
