package ddl

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/leapstack-labs/schemaflow/pkg/graph"
)

// Identifier patterns: a part is either double-quoted (with "" doubling)
// or bare; a qualified name is 1-3 dotted parts, each independently
// quoted or bare.
const (
	identPat = `(?:"(?:[^"]|"")*"|[A-Za-z0-9_$]+)`
	qualPat  = identPat + `(?:\s*\.\s*` + identPat + `){0,2}`
)

var (
	createRe = regexp.MustCompile(`(?is)^\s*CREATE\s+(?:OR\s+REPLACE\s+)?` +
		`(MATERIALIZED\s+VIEW|DYNAMIC\s+TABLE|ICEBERG\s+TABLE|TABLE|VIEW)\s+(` + qualPat + `)`)
	foreignKeyRe = regexp.MustCompile(`(?is)^\s*ALTER\s+TABLE\s+(` + qualPat + `)\s+ADD\s+` +
		`(?:CONSTRAINT\s+` + identPat + `\s+)?FOREIGN\s+KEY\s*\(([^)]+)\)\s*` +
		`REFERENCES\s+(` + qualPat + `)\s*\(([^)]+)\)`)
	setTagRe = regexp.MustCompile(`(?is)^\s*ALTER\s+TABLE\s+(` + qualPat + `)\s+` +
		`MODIFY\s+COLUMN\s+(` + identPat + `)\s+SET\s+TAG\s+(.+)$`)

	constraintRe    = regexp.MustCompile(`(?i)^\s*(?:CONSTRAINT\b|PRIMARY\s+KEY|FOREIGN\s+KEY|UNIQUE\s+KEY|UNIQUE\b)`)
	primaryKeyRe    = regexp.MustCompile(`(?is)PRIMARY\s+KEY\s*\(([^)]*)\)`)
	notNullRe       = regexp.MustCompile(`(?i)\bNOT\s+NULL\b`)
	columnCommentRe = regexp.MustCompile(`(?is)\bCOMMENT\s+'((?:[^']|'')*)'`)
	tableCommentRe  = regexp.MustCompile(`(?is)\bCOMMENT\s*=\s*'((?:[^']|'')*)'`)
	withTagRe       = regexp.MustCompile(`(?is)\bWITH\s+TAG\s*\(([^)]*)\)`)
	tagPairRe       = regexp.MustCompile(`('[^']*'|"(?:[^"]|"")*"|[A-Za-z0-9_$]+)\s*=\s*'true'`)
)

// Parser reconstructs a schema graph from DDL text. The parser itself is
// stateless; all scratch state lives in a per-call accumulator, so one
// Parser may be shared across goroutines.
type Parser struct {
	logger *slog.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLogger sets the logger used for diagnostic output.
func WithLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) { p.logger = logger }
}

// NewParser creates a Parser.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Parse is a convenience wrapper around NewParser().Parse.
func Parse(input string) *graph.Result {
	return NewParser().Parse(input)
}

// Parse converts DDL text to a schema graph. Statements are processed in
// order: unrecognized statements are skipped with a diagnostic, and
// foreign-key constraints that reference unknown tables are dropped with
// a diagnostic. Parse never fails on malformed input.
func (p *Parser) Parse(input string) *graph.Result {
	st := &parseState{
		result:  &graph.Result{Objects: []*graph.SchemaObject{}, Relationships: []*graph.Relationship{}},
		byShort: make(map[string]*graph.SchemaObject),
		logger:  p.logger,
	}

	for _, stmt := range splitStatements(input) {
		switch {
		case createRe.MatchString(stmt):
			st.parseCreate(stmt)
		case foreignKeyRe.MatchString(stmt):
			st.parseForeignKey(stmt)
		case setTagRe.MatchString(stmt):
			st.parseColumnTag(stmt)
		default:
			st.diag(graph.DiagStatementIgnored, summarize(stmt), "statement matched no recognized pattern")
		}
	}
	return st.result
}

// parseState is the per-call accumulator: extracted objects plus the
// short-name lookup map used for reference resolution.
type parseState struct {
	result  *graph.Result
	byShort map[string]*graph.SchemaObject
	logger  *slog.Logger
}

func (st *parseState) diag(kind graph.DiagnosticKind, subject, detail string) {
	st.result.Diagnostics = append(st.result.Diagnostics, graph.Diagnostic{
		Kind:    kind,
		Subject: subject,
		Detail:  detail,
	})
	st.logger.Debug("ddl parse diagnostic", "kind", string(kind), "subject", subject, "detail", detail)
}

func (st *parseState) parseCreate(stmt string) {
	loc := createRe.FindStringSubmatchIndex(stmt)
	kindText := stmt[loc[2]:loc[3]]
	nameText := stmt[loc[4]:loc[5]]

	kind, ok := graph.KindFromKeyword(kindText)
	if !ok {
		// unreachable given the pattern, but keep the parse non-fatal
		st.diag(graph.DiagStatementIgnored, summarize(stmt), "unrecognized object kind "+kindText)
		return
	}

	obj := &graph.SchemaObject{
		ID:   graph.NewID(),
		Name: parseQualifiedName(nameText),
		Kind: kind,
	}

	tail := stmt[loc[5]:]
	if open := strings.IndexByte(tail, '('); open >= 0 {
		closeIdx := matchParen(tail, open)
		var block string
		if closeIdx >= 0 {
			block = tail[open+1 : closeIdx]
			tail = tail[closeIdx+1:]
		} else {
			// unbalanced parens: take everything and keep going
			block = tail[open+1:]
			tail = ""
		}
		st.parseColumnBlock(obj, block)
	}

	if m := tableCommentRe.FindStringSubmatch(tail); m != nil {
		obj.Comment = unescapeString(m[1])
	}
	if m := withTagRe.FindStringSubmatch(tail); m != nil {
		obj.Tags = parseTagPairs(m[1])
	}

	st.byShort[strings.ToLower(obj.Name.ShortName())] = obj
	st.result.Objects = append(st.result.Objects, obj)
}

// parseColumnBlock splits the parenthesized definition block into
// top-level comma-separated entries. Entries starting with a constraint
// keyword are table-level constraints; a PRIMARY KEY list sets the flag
// on matching columns, everything else is a column definition.
func (st *parseState) parseColumnBlock(obj *graph.SchemaObject, block string) {
	pkNames := make(map[string]bool)

	for _, entry := range splitTopLevel(block) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if constraintRe.MatchString(entry) {
			if m := primaryKeyRe.FindStringSubmatch(entry); m != nil {
				for _, name := range splitTopLevel(m[1]) {
					pkNames[strings.ToLower(unquoteIdent(name))] = true
				}
			}
			continue
		}
		if col := parseColumnDef(entry); col != nil {
			obj.Columns = append(obj.Columns, col)
		}
	}

	for _, col := range obj.Columns {
		if pkNames[strings.ToLower(col.Name)] {
			col.PrimaryKey = true
		}
	}
}

// parseColumnDef parses one column definition line: name, data type
// (keyword plus optional parenthesized parameter list, kept verbatim),
// nullability, and an optional COMMENT literal. The comment is stripped
// before the NOT NULL check so literal text never toggles nullability.
func parseColumnDef(entry string) *graph.Column {
	name, rest := readIdent(entry)
	if name == "" {
		return nil
	}
	dataType, rest := readType(rest)

	comment := ""
	if m := columnCommentRe.FindStringSubmatch(rest); m != nil {
		comment = unescapeString(m[1])
		rest = columnCommentRe.ReplaceAllString(rest, "")
	}

	return &graph.Column{
		ID:       graph.NewID(),
		Name:     name,
		DataType: dataType,
		Nullable: !notNullRe.MatchString(rest),
		Comment:  comment,
	}
}

// readIdent consumes a leading quoted or bare identifier and returns it
// with the remainder of the input.
func readIdent(s string) (string, string) {
	s = strings.TrimLeft(s, " \t\r\n")
	if s == "" {
		return "", ""
	}
	if s[0] == '"' {
		for i := 1; i < len(s); i++ {
			if s[i] != '"' {
				continue
			}
			if i+1 < len(s) && s[i+1] == '"' {
				i++ // doubled quote, part of the name
				continue
			}
			return unquoteIdent(s[:i+1]), s[i+1:]
		}
		return unquoteIdent(s), ""
	}
	i := 0
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// readType consumes a type keyword plus an optional parenthesized
// parameter list, returned verbatim.
func readType(s string) (string, string) {
	trimmed := strings.TrimLeft(s, " \t\r\n")
	if trimmed == "" {
		return "", ""
	}
	i := 0
	for i < len(trimmed) && isIdentChar(trimmed[i]) {
		i++
	}
	if i == 0 {
		return "", trimmed
	}
	rest := trimmed[i:]
	afterSpaces := strings.TrimLeft(rest, " \t")
	if strings.HasPrefix(afterSpaces, "(") {
		open := len(trimmed) - len(afterSpaces)
		if closeIdx := matchParen(trimmed, open); closeIdx >= 0 {
			return trimmed[:closeIdx+1], trimmed[closeIdx+1:]
		}
	}
	return trimmed[:i], rest
}

func isIdentChar(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' ||
		ch >= '0' && ch <= '9' || ch == '_' || ch == '$'
}

// parseQualifiedName splits a dotted name into its parts, respecting
// double-quoted parts that may themselves contain dots.
func parseQualifiedName(text string) graph.QualifiedName {
	var parts []string
	var cur strings.Builder
	inQuote := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '"':
			inQuote = !inQuote
			cur.WriteByte(ch)
		case ch == '.' && !inQuote:
			parts = append(parts, unquoteIdent(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	parts = append(parts, unquoteIdent(cur.String()))
	return parts
}

// parseTagPairs extracts tag names from `name = 'true'` pairs.
func parseTagPairs(expr string) []string {
	var tags []string
	for _, m := range tagPairRe.FindAllStringSubmatch(expr, -1) {
		tags = append(tags, unquoteTag(m[1]))
	}
	return tags
}

func unquoteTag(token string) string {
	if len(token) >= 2 && token[0] == '\'' && token[len(token)-1] == '\'' {
		return token[1 : len(token)-1]
	}
	return unquoteIdent(token)
}

// summarize shortens a statement for diagnostics.
func summarize(stmt string) string {
	stmt = strings.Join(strings.Fields(stmt), " ")
	if len(stmt) > 80 {
		return stmt[:77] + "..."
	}
	return stmt
}
