// Package manifest parses multi-document YAML schema manifests in the
// analytics-engineering model/source style into the schema graph. Unlike
// the DDL parser, a document-level syntax error is fatal: a malformed
// manifest usually means the wrong file was pasted entirely.
package manifest

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/schemaflow/pkg/graph"
	"gopkg.in/yaml.v3"
)

// Parser reconstructs a schema graph from manifest text. Stateless;
// scratch state is local to each Parse call.
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
func Parse(input string) (*graph.Result, error) {
	return NewParser().Parse(input)
}

// Parse converts manifest text to a schema graph. Each document may
// declare models and/or sources; all documents are merged into one
// graph. Unresolved references degrade to diagnostics, but YAML that
// cannot be decoded at all aborts the whole parse.
func (p *Parser) Parse(input string) (*graph.Result, error) {
	docs, err := decodeDocuments(input)
	if err != nil {
		return nil, err
	}

	b := &builder{
		result: &graph.Result{Objects: []*graph.SchemaObject{}, Relationships: []*graph.Relationship{}},
		byName: make(map[string]*graph.SchemaObject),
		logger: p.logger,
	}

	// First pass: create every object so references can point forward.
	for _, doc := range docs {
		for _, model := range doc.Models {
			b.addModel(model)
		}
		for _, src := range doc.Sources {
			b.addSource(src)
		}
	}

	// Second pass: resolve column tests and raw-SQL references.
	for _, doc := range docs {
		for _, model := range doc.Models {
			b.resolveModel(model)
		}
	}

	return b.result, nil
}

// decodeDocuments decodes one or more YAML documents. When the
// multi-document decoder fails, a single-document load is attempted once
// before the error is surfaced as fatal.
func decodeDocuments(input string) ([]documentYAML, error) {
	var docs []documentYAML
	dec := yaml.NewDecoder(strings.NewReader(input))
	for {
		var doc documentYAML
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var single documentYAML
			if uerr := yaml.Unmarshal([]byte(input), &single); uerr == nil {
				return []documentYAML{single}, nil
			}
			return nil, &SyntaxError{Message: err.Error()}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// documentYAML is one manifest document.
type documentYAML struct {
	Models  []modelYAML  `yaml:"models"`
	Sources []sourceYAML `yaml:"sources"`
}

type modelYAML struct {
	Name         string          `yaml:"name"`
	Description  string          `yaml:"description"`
	Materialized string          `yaml:"materialized"`
	Config       modelConfigYAML `yaml:"config"`
	Tags         []string        `yaml:"tags"`
	Columns      []columnYAML    `yaml:"columns"`
	SQL          string          `yaml:"sql"`
	RawSQL       string          `yaml:"raw_sql"`
}

type modelConfigYAML struct {
	Materialized string   `yaml:"materialized"`
	Tags         []string `yaml:"tags"`
}

type columnYAML struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	DataType    string      `yaml:"data_type"`
	Tags        []string    `yaml:"tags"`
	Tests       []yaml.Node `yaml:"tests"`
}

type sourceYAML struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Tables      []sourceTableYAML `yaml:"tables"`
}

type sourceTableYAML struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Columns     []columnYAML `yaml:"columns"`
}

// materialization returns the entry-level setting, falling back to the
// config block.
func (m modelYAML) materialization() string {
	if m.Materialized != "" {
		return m.Materialized
	}
	return m.Config.Materialized
}

// body returns the raw SQL body scanned for ref()/source() calls.
func (m modelYAML) body() string {
	if m.SQL != "" {
		return m.SQL
	}
	return m.RawSQL
}

// SyntaxError is the fatal error returned when manifest text cannot be
// decoded as YAML even after the single-document fallback.
type SyntaxError struct {
	Message string
}

func (e *SyntaxError) Error() string {
	return "manifest syntax error: " + e.Message
}
