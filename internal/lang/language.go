// Package lang validates the optional spoken-language hint passed to the
// transcription backends.
package lang

import (
	"fmt"
	"slices"
	"strings"
)

// supported lists ISO 639-1 codes understood by both the local whisper CLI
// and the OpenAI transcription API.
var supported = []string{
	"af", "ar", "bg", "bn", "ca", "cs", "da", "de", "el", "en", "es", "et",
	"fa", "fi", "fr", "gu", "he", "hi", "hr", "hu", "id", "it", "ja", "kn",
	"ko", "lt", "lv", "mk", "ml", "mr", "ms", "nl", "no", "pa", "pl", "pt",
	"ro", "ru", "sk", "sl", "sr", "sv", "sw", "ta", "te", "th", "tl", "tr",
	"uk", "ur", "vi", "zh",
}

// Language is a normalized language tag such as "en" or "pt-br".
// The zero value means auto-detect.
type Language struct {
	tag string
}

// Parse normalizes s ("pt_BR" -> "pt-br") and checks its base code.
// An empty or blank s yields the zero Language.
func Parse(s string) (Language, error) {
	tag := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
	if tag == "" {
		return Language{}, nil
	}
	base, _, _ := strings.Cut(tag, "-")
	if _, found := slices.BinarySearch(supported, base); !found {
		return Language{}, fmt.Errorf("%w: %q (use ISO 639-1 codes like 'en', 'fr', 'pt-BR')", ErrInvalid, s)
	}
	return Language{tag: tag}, nil
}

// MustParse is like Parse but panics on error. For tests and constants.
func MustParse(s string) Language {
	l, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return l
}

// IsZero reports whether no language was given.
func (l Language) IsZero() bool { return l.tag == "" }

// String returns the normalized tag, or "" for auto-detect.
func (l Language) String() string { return l.tag }

// BaseCode returns the ISO 639-1 part of the tag ("pt-br" -> "pt"). Both
// backends reject regional variants.
func (l Language) BaseCode() string {
	base, _, _ := strings.Cut(l.tag, "-")
	return base
}

// Supported returns a copy of the accepted base codes, sorted.
func Supported() []string {
	return slices.Clone(supported)
}
