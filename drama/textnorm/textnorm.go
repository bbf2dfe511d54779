// Package textnorm canonicalizes free text before it is used as a search filter
// or stored as a search key.
package textnorm

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ErrEmpty is returned when nothing is left after normalization.
var ErrEmpty = errors.New("textnorm: empty input")

// articles are skipped when deriving the browse letter of an English title.
var articles = []string{"The ", "A "}

// Normalize applies NFKC, collapses whitespace runs to one space and lower-cases.
func Normalize(input string) (string, error) {
	key := Key(input)
	if key == "" {
		return "", ErrEmpty
	}
	return key, nil
}

// Key is Normalize without the emptiness check. Stored search keys use it.
func Key(input string) string {
	s := norm.NFKC.String(input)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	// Casers keep state and must not be shared between goroutines.
	return cases.Lower(language.Und).String(s)
}

// Letter returns the upper-cased first character of title after a leading
// English article, or "" for a blank title.
func Letter(title string) string {
	s := strings.TrimSpace(norm.NFKC.String(title))
	for _, a := range articles {
		if rest, ok := strings.CutPrefix(s, a); ok && strings.TrimSpace(rest) != "" {
			s = strings.TrimSpace(rest)
			break
		}
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return cases.Upper(language.Und).String(string(r))
}
