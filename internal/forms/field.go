// Package forms tracks which fields of an input form currently hold valid
// content and whether the form may be submitted.
package forms

import "strings"

// Field is a single validated form field. Fields are bit flags so a set of
// them fits in a Flags value.
type Field uint8

const (
	DisplayName Field = 1 << iota
	Username
	Email
	Password
)

var allFields = []Field{DisplayName, Username, Email, Password}

func (f Field) String() string {
	switch f {
	case DisplayName:
		return "display name"
	case Username:
		return "username"
	case Email:
		return "email"
	case Password:
		return "password"
	default:
		return "unknown"
	}
}

// Flags is a set of fields.
type Flags uint8

// None is the empty set.
const None Flags = 0

// FlagsOf builds a set from the given fields.
func FlagsOf(fields ...Field) Flags {
	var s Flags
	for _, f := range fields {
		s |= Flags(f)
	}
	return s
}

func (s Flags) Has(f Field) bool { return s&Flags(f) != 0 }

func (s Flags) With(f Field) Flags { return s | Flags(f) }

func (s Flags) Without(f Field) Flags { return s &^ Flags(f) }

// Fields lists the members of s in display order.
func (s Flags) Fields() []Field {
	var out []Field
	for _, f := range allFields {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s Flags) String() string {
	fields := s.Fields()
	if len(fields) == 0 {
		return "{}"
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	return "{" + strings.Join(names, ", ") + "}"
}
