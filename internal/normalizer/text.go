package normalizer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
)

var reSpaces = regexp.MustCompile(`\s+`)

// Normalize folds text for comparison: no diacritics, ascii, lowercase,
// punctuation replaced by spaces, whitespace collapsed.
func Normalize(raw string) string {
	// bỏ dấu trước, unidecode sau để không sinh ký tự thừa từ combining marks
	s := strings.ToLower(unidecode.Unidecode(StripDiacritics(raw)))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return CollapseSpaces(s)
}

// CollapseSpaces trims and squeezes whitespace runs to a single space.
func CollapseSpaces(s string) string {
	return reSpaces.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Tokenize splits on whitespace.
func Tokenize(s string) []string {
	return strings.Fields(s)
}

// AlnumWords lowercases s and keeps only the alphanumeric characters of each
// whitespace separated word; empty words are dropped.
func AlnumWords(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, f)
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// CleanLine expands vulgar fractions and collapses whitespace.
func CleanLine(raw string) string {
	return CollapseSpaces(DefaultRules().ExpandFractions(raw))
}
