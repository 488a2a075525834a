package forms

import (
	"regexp"

	"github.com/rivo/uniseg"
)

// Hints shown next to a field whose content is invalid.
const (
	HintRequired        = "Fill out this field"
	HintDisplayName     = "Display name should be between 3 and 20 characters long"
	HintUsernameLength  = "Username should be between 6 and 20 characters long"
	HintUsernameCharset = "Username can only contain a-z, 0-9 and underscores"
	HintEmail           = "This is not a valid email"
	HintPassword        = "Password should be between 6 and 20 characters long"
)

const (
	emailLocal  = `[A-Z0-9a-z]([A-Z0-9a-z._%+-]{0,30}[A-Z0-9a-z])?`
	emailServer = `([A-Z0-9a-z]([A-Z0-9a-z-]{0,30}[A-Z0-9a-z])?\.){1,5}`
	emailTLD    = `[A-Za-z]{2,8}`
)

var (
	emailRegex      = regexp.MustCompile(`^` + emailLocal + `@` + emailServer + emailTLD + `$`)
	usernameBadChar = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// Validate checks text against the rules for field f. It returns "" when
// the text is valid and a human-readable hint otherwise.
func Validate(f Field, text string) string {
	switch f {
	case DisplayName:
		return ValidateDisplayName(text)
	case Username:
		return ValidateUsername(text)
	case Email:
		return ValidateEmail(text)
	case Password:
		return ValidatePassword(text)
	default:
		return ""
	}
}

func ValidateDisplayName(s string) string {
	return checkLength(s, 3, 20, HintDisplayName)
}

func ValidateUsername(s string) string {
	if hint := checkLength(s, 6, 20, HintUsernameLength); hint != "" {
		return hint
	}
	if usernameBadChar.MatchString(s) {
		return HintUsernameCharset
	}
	return ""
}

func ValidateEmail(s string) string {
	if s == "" {
		return HintRequired
	}
	if !emailRegex.MatchString(s) {
		return HintEmail
	}
	return ""
}

func ValidatePassword(s string) string {
	return checkLength(s, 6, 20, HintPassword)
}

// IsEmail reports whether s is a syntactically valid e-mail address.
func IsEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// checkLength counts user-perceived characters, not bytes or runes.
func checkLength(s string, min, max int, hint string) string {
	if s == "" {
		return HintRequired
	}
	n := uniseg.GraphemeClusterCount(s)
	if n < min || n > max {
		return hint
	}
	return ""
}
