package forms_test

import (
	"testing"

	"github.com/danhigham/telegrame/internal/forms"
)

func TestSignUpGating(t *testing.T) {
	s := forms.New(forms.SignUp)
	if s.Ready() {
		t.Fatal("empty sign-up form should not be ready")
	}

	hint := s.Set(forms.DisplayName, "Al")
	if s.Valid().Has(forms.DisplayName) {
		t.Error("display name flag set for a 2 character name")
	}
	if hint != forms.HintDisplayName {
		t.Errorf("hint = %q, want %q", hint, forms.HintDisplayName)
	}

	s.Set(forms.DisplayName, "Alice")
	s.Set(forms.Username, "alice_99")
	s.Set(forms.Email, "alice@example.com")
	s.Set(forms.Password, "secret1")
	if !s.Ready() {
		t.Fatalf("form not ready, valid = %s", s.Valid())
	}

	s.Set(forms.Username, "alice!")
	if s.Valid().Has(forms.Username) {
		t.Error("username flag kept after disallowed character")
	}
	if s.Ready() {
		t.Error("form ready with invalid username")
	}
	if got := s.Hint(forms.Username); got != forms.HintUsernameCharset {
		t.Errorf("username hint = %q", got)
	}
}

func TestRequiredSets(t *testing.T) {
	tests := []struct {
		kind forms.Kind
		want forms.Flags
	}{
		{forms.SignIn, forms.FlagsOf(forms.Email, forms.Password)},
		{forms.SignUp, forms.FlagsOf(forms.DisplayName, forms.Username, forms.Email, forms.Password)},
		{forms.ProfileSetup, forms.FlagsOf(forms.DisplayName, forms.Username)},
		{forms.ForgotPassword, forms.FlagsOf(forms.Email)},
	}
	for _, tt := range tests {
		if got := tt.kind.Required(); got != tt.want {
			t.Errorf("%s required = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestSignInIgnoresOtherFields(t *testing.T) {
	s := forms.New(forms.SignIn)
	s.Set(forms.DisplayName, "Alice")
	s.Set(forms.Email, "alice@example.com")
	s.Set(forms.Password, "secret1")

	if s.Valid().Has(forms.DisplayName) {
		t.Error("sign-in form tracked a display name")
	}
	if !s.Ready() {
		t.Error("sign-in form with valid email and password should be ready")
	}
}

func TestFlagsString(t *testing.T) {
	if got := forms.None.String(); got != "{}" {
		t.Errorf("None = %q", got)
	}
	got := forms.FlagsOf(forms.Email, forms.DisplayName).String()
	if got != "{display name, email}" {
		t.Errorf("String() = %q", got)
	}
}
