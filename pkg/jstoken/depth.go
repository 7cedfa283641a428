package jstoken

import (
	"strings"
)

// MaxParamSpan bounds how far BalancedParens looks for a matching close.
// An unbalanced '(' near the top of a large bundle would otherwise make
// every candidate lex to the end of the file.
const MaxParamSpan = 8192

// BalancedParens returns the text between src[open] (which must be '(')
// and its matching ')'. end is the index just past the closing paren.
// Brackets inside strings and comments are ignored. ok is false when
// src[open] is not '(' or no matching close exists within MaxParamSpan.
func BalancedParens(src string, open int) (inner string, end int, ok bool) {
	if open < 0 || open >= len(src) || src[open] != '(' {
		return "", 0, false
	}

	rest := src[open:]
	depth := 0
	Scan(rest, func(t Token) bool {
		if t.Offset > MaxParamSpan {
			return false
		}
		switch t.Kind {
		case KindOpen:
			depth++
		case KindClose:
			depth--
			if depth == 0 {
				if t.Text == ")" {
					inner = rest[1:t.Offset]
					end = open + t.Offset + 1
					ok = true
				}
				return false
			}
			if depth < 0 {
				return false
			}
		}
		return true
	})
	return inner, end, ok
}

// SplitTopLevel splits raw on commas that are not nested inside any
// bracket, string or comment. Parts are trimmed; empty parts are kept so
// callers can decide how to treat trailing commas.
func SplitTopLevel(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var parts []string
	depth := 0
	start := 0
	Scan(raw, func(t Token) bool {
		switch t.Kind {
		case KindOpen:
			depth++
		case KindClose:
			if depth > 0 {
				depth--
			}
		case KindComma:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(raw[start:t.Offset]))
				start = t.Offset + 1
			}
		}
		return true
	})
	parts = append(parts, strings.TrimSpace(raw[start:]))
	return parts
}

// TopLevelAssign reports whether param carries a default value, i.e. has an
// `=` at depth 0 that is not part of `==`, `===`, `!=`, `<=`, `>=` or `=>`.
// name is the text before that `=` (or the whole param) with whitespace
// collapsed.
func TopLevelAssign(param string) (name string, hasDefault bool) {
	depth := 0
	cut := -1
	Scan(param, func(t Token) bool {
		switch t.Kind {
		case KindOpen:
			depth++
		case KindClose:
			if depth > 0 {
				depth--
			}
		case KindAssign:
			if depth == 0 {
				cut = t.Offset
				return false
			}
		}
		return true
	})

	if cut < 0 {
		return CollapseSpace(param), false
	}
	return CollapseSpace(param[:cut]), true
}

// StripNested returns line with everything inside brackets removed, string
// literals emptied and comments dropped. Only the bracket characters of the
// outermost level survive, so `foo(a = 1) { x: y }` becomes `foo() {}`.
func StripNested(line string) string {
	var b strings.Builder
	depth := 0
	Scan(line, func(t Token) bool {
		switch t.Kind {
		case KindComment:
			return true
		case KindOpen:
			if depth == 0 {
				b.WriteString(t.Text)
			}
			depth++
			return true
		case KindClose:
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				b.WriteString(t.Text)
			}
			return true
		}
		if depth > 0 {
			return true
		}
		if t.Kind == KindString {
			b.WriteString(`""`)
			return true
		}
		b.WriteString(t.Text)
		return true
	})
	return b.String()
}

// CollapseSpace trims s and replaces every run of whitespace with a single
// space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// EscapeSingleQuoted makes s safe to embed in a single-quoted JavaScript or
// TypeScript string literal. Line breaks become spaces.
func EscapeSingleQuoted(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n', '\r', '\t', '\u2028', '\u2029':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
