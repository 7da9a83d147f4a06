// Package lang defines the two languages Vaani understands.
package lang

import "strings"

// Language is a two-letter language tag.
type Language string

const (
	// English is the default language (verb-initial word order).
	English Language = "en"
	// Hindi covers both Devanagari and romanised input (verb-final word order).
	Hindi Language = "hi"
)

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return l == English || l == Hindi
}

// String implements fmt.Stringer.
func (l Language) String() string { return string(l) }

// Parse converts a user supplied tag ("en", "HI", "hindi") into a Language.
// The boolean is false when the tag is not recognised.
func Parse(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "eng", "english":
		return English, true
	case "hi", "hin", "hindi":
		return Hindi, true
	}
	return "", false
}

// Or returns l when it is valid and fallback otherwise.
func (l Language) Or(fallback Language) Language {
	if l.Valid() {
		return l
	}
	return fallback
}
