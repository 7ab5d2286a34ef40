// Package ddl converts the schema graph to SQL DDL text and back.
// Generation is pure and total; parsing is best-effort and never fails on
// malformed input, it extracts what it can and records diagnostics for
// the rest.
package ddl

import (
	"strings"

	"github.com/leapstack-labs/schemaflow/pkg/graph"
)

// reservedWords are keywords that force quoting when used as identifiers.
// Includes the object-kind keywords themselves.
var reservedWords = map[string]bool{
	"ALL": true, "ALTER": true, "AND": true, "AS": true, "BETWEEN": true,
	"BY": true, "CASE": true, "COLUMN": true, "COMMENT": true,
	"CONSTRAINT": true, "CREATE": true, "CROSS": true, "CURRENT": true,
	"DATABASE": true, "DEFAULT": true, "DELETE": true, "DISTINCT": true,
	"DROP": true, "DYNAMIC": true, "ELSE": true, "END": true, "EXISTS": true,
	"FALSE": true, "FOREIGN": true, "FROM": true, "FULL": true, "GRANT": true,
	"GROUP": true, "HAVING": true, "ICEBERG": true, "IN": true, "INNER": true,
	"INSERT": true, "INTO": true, "IS": true, "JOIN": true, "KEY": true,
	"LEFT": true, "LIKE": true, "LIMIT": true, "MATERIALIZED": true,
	"NATURAL": true, "NOT": true, "NULL": true, "ON": true, "OR": true,
	"ORDER": true, "OUTER": true, "PRIMARY": true, "REFERENCES": true,
	"REPLACE": true, "RIGHT": true, "SCHEMA": true, "SELECT": true,
	"SET": true, "TABLE": true, "TAG": true, "THEN": true, "TRUE": true,
	"UNION": true, "UNIQUE": true, "UPDATE": true, "USING": true,
	"VALUES": true, "VIEW": true, "WHEN": true, "WHERE": true, "WITH": true,
}

// FormatIdent renders a name as a SQL identifier. Names that contain
// characters outside [A-Za-z0-9_] or that collide with a reserved word
// are double-quoted with case preserved; everything else is upper-cased,
// matching the dialect's default case folding. Applied consistently, a
// generated identifier re-parses to the original name.
func FormatIdent(name string) string {
	if needsQuoting(name) {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return strings.ToUpper(name)
}

// FormatQualified renders each part of a qualified name independently.
func FormatQualified(name graph.QualifiedName) string {
	parts := make([]string, len(name))
	for i, part := range name {
		parts[i] = FormatIdent(part)
	}
	return strings.Join(parts, ".")
}

func needsQuoting(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
		case ch == '_':
		default:
			return true
		}
	}
	return reservedWords[strings.ToUpper(name)]
}

// EscapeString escapes a value for use inside a single-quoted SQL literal.
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// unescapeString reverses EscapeString.
func unescapeString(s string) string {
	return strings.ReplaceAll(s, "''", "'")
}

// unquoteIdent strips surrounding double quotes from an identifier,
// undoing quote doubling. Bare identifiers are returned trimmed but
// otherwise untouched.
func unquoteIdent(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}
