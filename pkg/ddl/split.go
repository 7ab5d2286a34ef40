package ddl

import "strings"

// splitStatements splits SQL text into statements on semicolons that are
// outside string literals and line comments. Quote state tracks single-
// and double-quoted strings (a quote preceded by a backslash does not
// toggle state); a -- line comment runs to end of line regardless of
// what started before it on the line. Semicolons embedded in literals
// or comments therefore never split a statement early.
func splitStatements(input string) []string {
	var stmts []string
	var inSingle, inDouble, inComment bool
	start := 0

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if inComment {
			if ch == '\n' {
				inComment = false
			}
			continue
		}
		if inSingle {
			if ch == '\'' && !escaped(input, i) {
				inSingle = false
			}
			continue
		}
		if inDouble {
			if ch == '"' && !escaped(input, i) {
				inDouble = false
			}
			continue
		}

		switch ch {
		case '\'':
			inSingle = true
		case '"':
			inDouble = true
		case '-':
			if i+1 < len(input) && input[i+1] == '-' {
				inComment = true
			}
		case ';':
			if stmt := strings.TrimSpace(input[start:i]); stmt != "" {
				stmts = append(stmts, stmt)
			}
			start = i + 1
		}
	}

	if stmt := strings.TrimSpace(input[start:]); stmt != "" {
		stmts = append(stmts, stmt)
	}
	return stmts
}

// escaped reports whether the character at position i is preceded by a
// backslash.
func escaped(s string, i int) bool {
	return i > 0 && s[i-1] == '\\'
}

// matchParen returns the index of the closing parenthesis matching the
// opening one at open, tracking nesting depth and quote state. Returns -1
// if unbalanced.
func matchParen(s string, open int) int {
	depth := 0
	var inSingle, inDouble bool
	for i := open; i < len(s); i++ {
		ch := s[i]
		if inSingle {
			if ch == '\'' && !escaped(s, i) {
				inSingle = false
			}
			continue
		}
		if inDouble {
			if ch == '"' && !escaped(s, i) {
				inDouble = false
			}
			continue
		}
		switch ch {
		case '\'':
			inSingle = true
		case '"':
			inDouble = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on commas at parenthesis depth zero, respecting
// quote state, so a type parameter list like NUMBER(10,2) never splits a
// column definition in half.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	var inSingle, inDouble bool
	start := 0

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inSingle {
			if ch == '\'' && !escaped(s, i) {
				inSingle = false
			}
			continue
		}
		if inDouble {
			if ch == '"' && !escaped(s, i) {
				inDouble = false
			}
			continue
		}
		switch ch {
		case '\'':
			inSingle = true
		case '"':
			inDouble = true
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
