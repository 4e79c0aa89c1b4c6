// Package validation holds the form validators shared by the HTTP handlers and the login page.
// Every function here is pure and synchronous.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinSignInPasswordLength = 6
	MinSignUpPasswordLength = 8
	MinNameLength           = 2
)

// emailChar excludes the whitespace of browser regular expressions: ASCII blanks, the Unicode
// separators and the byte order mark.
const emailChar = `[^\s\v\p{Z}\x{FEFF}@]`

var (
	emailPattern     = regexp.MustCompile(`^` + emailChar + `+@` + emailChar + `+\.` + emailChar + `+$`)
	upperPattern     = regexp.MustCompile(`[A-Z]`)
	lowerPattern     = regexp.MustCompile(`[a-z]`)
	digitOrSymbolPat = regexp.MustCompile(`[\d\W]`)
)

// ValidateEmail reports whether s has the shape local@domain.tld without whitespace.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func ValidateSignInPassword(p string) bool {
	return utf8.RuneCountInString(p) >= MinSignInPasswordLength
}

func ValidateSignUpPassword(p string) bool {
	return utf8.RuneCountInString(p) >= MinSignUpPasswordLength
}

// ValidateName accepts names of at least two characters once surrounding whitespace is removed.
func ValidateName(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= MinNameLength
}

// ConfirmMatch is exact string equality.
func ConfirmMatch(password, confirmation string) bool {
	return password == confirmation
}

// Strength is the result of scoring a sign-up password.
type Strength struct {
	Score   int      `json:"score"`
	Label   string   `json:"label"`
	Color   string   `json:"color"`
	Missing []string `json:"missing"`
}

// PasswordStrength scores p in 25 point steps: length of at least 8, an uppercase letter,
// a lowercase letter, and a digit or symbol.
func PasswordStrength(p string) Strength {
	score := 0
	missing := []string{}

	if utf8.RuneCountInString(p) >= MinSignUpPasswordLength {
		score += 25
	} else {
		missing = append(missing, "At least 8 characters")
	}
	if upperPattern.MatchString(p) {
		score += 25
	} else {
		missing = append(missing, "One uppercase letter")
	}
	if lowerPattern.MatchString(p) {
		score += 25
	} else {
		missing = append(missing, "One lowercase letter")
	}
	if digitOrSymbolPat.MatchString(p) {
		score += 25
	} else {
		missing = append(missing, "One number or special character")
	}

	s := Strength{Score: score, Missing: missing}
	switch {
	case score < 50:
		s.Label, s.Color = "Weak password", "#dc3545"
	case score < 75:
		s.Label, s.Color = "Medium strength", "#ffc107"
	case score < 100:
		s.Label, s.Color = "Good password", "#fd7e14"
	default:
		s.Label, s.Color = "Strong password", "#28a745"
	}
	return s
}
