package forms

// Kind identifies a form and therefore its required field set.
type Kind int

const (
	SignIn Kind = iota + 1
	SignUp
	ProfileSetup
	ForgotPassword
)

// Required returns the fields that must all be valid before the form can
// be submitted.
func (k Kind) Required() Flags {
	switch k {
	case SignIn:
		return FlagsOf(Email, Password)
	case SignUp:
		return FlagsOf(DisplayName, Username, Email, Password)
	case ProfileSetup:
		return FlagsOf(DisplayName, Username)
	case ForgotPassword:
		return FlagsOf(Email)
	default:
		return None
	}
}

func (k Kind) String() string {
	switch k {
	case SignIn:
		return "sign-in"
	case SignUp:
		return "sign-up"
	case ProfileSetup:
		return "profile-setup"
	case ForgotPassword:
		return "forgot-password"
	default:
		return "unknown"
	}
}

// State is the validation state of one form instance. A new State starts
// with no valid fields and no hints. It never blocks and has no remote
// dependencies; drive it from the event loop that owns the form.
type State struct {
	kind   Kind
	valid  Flags
	values map[Field]string
	hints  map[Field]string
}

// New returns an empty state for a form of the given kind.
func New(kind Kind) *State {
	return &State{
		kind:   kind,
		values: make(map[Field]string),
		hints:  make(map[Field]string),
	}
}

// Set records the current text of field f, re-validates it and returns the
// hint to display ("" when valid). Fields outside the form are ignored.
func (s *State) Set(f Field, text string) string {
	if !s.kind.Required().Has(f) {
		return ""
	}
	s.values[f] = text
	hint := Validate(f, text)
	s.hints[f] = hint
	if hint == "" {
		s.valid = s.valid.With(f)
	} else {
		s.valid = s.valid.Without(f)
	}
	return hint
}

func (s *State) Kind() Kind { return s.kind }

func (s *State) Value(f Field) string { return s.values[f] }

func (s *State) Hint(f Field) string { return s.hints[f] }

// Valid returns the set of fields whose current content passes validation.
func (s *State) Valid() Flags { return s.valid }

// Ready reports whether every required field is valid.
func (s *State) Ready() bool {
	return s.valid == s.kind.Required()
}
