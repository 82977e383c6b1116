package queryfilter

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenClause tokenKind = iota
	tokenLParen
	tokenRParen
	tokenAnd
	tokenOr
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) describe() string {
	switch t.kind {
	case tokenLParen:
		return "("
	case tokenRParen:
		return ")"
	case tokenAnd:
		return "AND"
	case tokenOr:
		return "OR"
	}
	return t.text
}

// tokenize splits an expression into clauses, parentheses and AND/OR.
// Quoted strings and [...] lists are opaque.
func tokenize(expr string) ([]token, error) {
	var (
		tokens   []token
		start    = 0
		quote    byte
		brackets int
	)

	flush := func(end int) {
		if text := strings.TrimSpace(expr[start:end]); text != "" {
			tokens = append(tokens, token{kind: tokenClause, text: text, pos: start})
		}
	}

	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
			continue
		case '[':
			brackets++
			continue
		case ']':
			if brackets > 0 {
				brackets--
			}
			continue
		}
		if brackets > 0 {
			continue
		}

		switch {
		case c == '(' || c == ')':
			flush(i)
			kind := tokenLParen
			if c == ')' {
				kind = tokenRParen
			}
			tokens = append(tokens, token{kind: kind, pos: i})
			start = i + 1
		case isLogicalAt(expr, i, "AND"):
			flush(i)
			tokens = append(tokens, token{kind: tokenAnd, pos: i})
			i += 2
			start = i + 1
		case isLogicalAt(expr, i, "OR"):
			flush(i)
			tokens = append(tokens, token{kind: tokenOr, pos: i})
			i++
			start = i + 1
		}
	}

	if quote != 0 {
		return nil, clauseError("unterminated quote", strings.TrimSpace(expr[start:]))
	}
	if brackets > 0 {
		return nil, clauseError("unterminated list", strings.TrimSpace(expr[start:]))
	}
	flush(len(expr))
	return tokens, nil
}

// isLogicalAt reports whether word sits at i as a standalone word.
func isLogicalAt(expr string, i int, word string) bool {
	end := i + len(word)
	if end > len(expr) || !strings.EqualFold(expr[i:end], word) {
		return false
	}
	if i > 0 && !isBoundary(expr[i-1]) {
		return false
	}
	return end == len(expr) || isBoundary(expr[end])
}

func isBoundary(c byte) bool {
	return c == '(' || c == ')' || unicode.IsSpace(rune(c))
}

// indexOutside first index of sub outside quotes and brackets, -1 if none.
func indexOutside(s, sub string) int {
	var (
		quote    byte
		brackets int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
			continue
		case '[':
			brackets++
			continue
		case ']':
			if brackets > 0 {
				brackets--
			}
			continue
		}
		if brackets == 0 && strings.HasPrefix(s[i:], sub) {
			return i
		}
	}
	return -1
}

// splitOutside splits on sep outside quotes.
func splitOutside(s string, sep byte) ([]string, error) {
	var (
		parts []string
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, clauseError("unterminated quote", s)
	}
	return append(parts, s[start:]), nil
}

// fieldsOutside splits on whitespace outside quotes and brackets.
func fieldsOutside(s string) []string {
	var (
		fields   []string
		quote    byte
		brackets int
		start    = -1
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote == 0 && brackets == 0 && unicode.IsSpace(rune(c)) {
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '[':
			brackets++
		case ']':
			if brackets > 0 {
				brackets--
			}
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}
	return fields
}
