package manifest

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/leapstack-labs/schemaflow/pkg/graph"
	"gopkg.in/yaml.v3"
)

// Reference call expressions: ref('model') and source('src', 'table').
var (
	refRe    = regexp.MustCompile(`ref\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	sourceRe = regexp.MustCompile(`source\s*\(\s*['"]([^'"]+)['"]\s*,\s*['"]([^'"]+)['"]\s*\)`)
)

// builder is the per-call accumulator for one Parse invocation.
type builder struct {
	result *graph.Result
	// byName maps lower-cased full and short names to objects.
	byName map[string]*graph.SchemaObject
	logger *slog.Logger
}

func (b *builder) diag(kind graph.DiagnosticKind, subject, detail string) {
	b.result.Diagnostics = append(b.result.Diagnostics, graph.Diagnostic{
		Kind:    kind,
		Subject: subject,
		Detail:  detail,
	})
	b.logger.Debug("manifest parse diagnostic", "kind", string(kind), "subject", subject, "detail", detail)
}

func (b *builder) register(obj *graph.SchemaObject) {
	b.result.Objects = append(b.result.Objects, obj)
	b.byName[strings.ToLower(obj.Name.String())] = obj
	short := strings.ToLower(obj.Name.ShortName())
	if _, taken := b.byName[short]; !taken {
		b.byName[short] = obj
	}
}

// addModel creates one object per model entry. Kind follows the
// materialization setting; columns derive their flags from the attached
// tests.
func (b *builder) addModel(model modelYAML) {
	if model.Name == "" {
		return
	}
	obj := &graph.SchemaObject{
		ID:      graph.NewID(),
		Name:    graph.QualifiedName(strings.Split(model.Name, ".")),
		Kind:    graph.KindFromMaterialization(model.materialization()),
		Comment: model.Description,
		Tags:    mergeTags(model.Tags, model.Config.Tags),
	}
	for _, col := range model.Columns {
		obj.Columns = append(obj.Columns, buildColumn(col))
	}
	b.register(obj)
}

// addSource creates one TABLE object per declared table, named
// <source>.<table>.
func (b *builder) addSource(src sourceYAML) {
	for _, table := range src.Tables {
		if table.Name == "" {
			continue
		}
		obj := &graph.SchemaObject{
			ID:      graph.NewID(),
			Name:    graph.QualifiedName{src.Name, table.Name},
			Kind:    graph.KindTable,
			Comment: table.Description,
		}
		for _, col := range table.Columns {
			obj.Columns = append(obj.Columns, buildColumn(col))
		}
		b.register(obj)
	}
}

// buildColumn derives column flags from the tests list: unique or
// primary_key imply a primary key, relationships or foreign_key imply a
// foreign key, and not_null clears nullability.
func buildColumn(col columnYAML) *graph.Column {
	flags := deriveTestFlags(col.Tests)
	return &graph.Column{
		ID:         graph.NewID(),
		Name:       col.Name,
		DataType:   col.DataType,
		PrimaryKey: flags.primaryKey,
		ForeignKey: flags.foreignKey,
		Nullable:   !flags.notNull,
		Comment:    col.Description,
		Tags:       col.Tags,
	}
}

// testFlags is what the tests list contributes to a column.
type testFlags struct {
	primaryKey bool
	foreignKey bool
	notNull    bool
	// relTo/relField carry the target of an explicit relationships or
	// foreign_key test, still in ref()/source() expression form.
	relTo    string
	relField string
}

// deriveTestFlags walks the tests list; each entry is either a bare
// string or a single-key mapping whose key is the test name.
func deriveTestFlags(tests []yaml.Node) testFlags {
	var flags testFlags
	for i := range tests {
		name, body := testEntry(&tests[i])
		switch name {
		case "unique", "primary_key":
			flags.primaryKey = true
		case "not_null":
			flags.notNull = true
		case "relationships", "foreign_key":
			flags.foreignKey = true
			if body != nil {
				var rel struct {
					To    string `yaml:"to"`
					Field string `yaml:"field"`
				}
				if err := body.Decode(&rel); err == nil {
					flags.relTo = rel.To
					flags.relField = rel.Field
				}
			}
		}
	}
	return flags
}

// testEntry returns the test name and, for mapping entries, the body
// node holding the test's arguments.
func testEntry(node *yaml.Node) (string, *yaml.Node) {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Value, nil
	case yaml.MappingNode:
		if len(node.Content) >= 2 {
			return node.Content[0].Value, node.Content[1]
		}
	}
	return "", nil
}

// resolveModel wires a model's references: explicit relationship tests
// carry column-level detail, and a best-effort scan of the raw SQL body
// links every distinct referenced object. The scan cannot attach
// column-level foreign-key detail; that is a known precision limitation
// of the format, not something to correct here.
func (b *builder) resolveModel(model modelYAML) {
	obj := b.lookup(model.Name)
	if obj == nil {
		return
	}
	linked := make(map[string]bool)

	for i, col := range model.Columns {
		flags := deriveTestFlags(col.Tests)
		if flags.relTo == "" || i >= len(obj.Columns) {
			continue
		}
		target := b.resolveRef(flags.relTo)
		if target == nil {
			b.diag(graph.DiagReferenceUnresolved, model.Name+"."+col.Name, "unknown reference "+flags.relTo)
			continue
		}
		column := obj.Columns[i]
		column.ReferencedTable = target.Name.ShortName()
		column.ReferencedColumn = flags.relField
		b.link(obj, target, linked)
	}

	for _, expr := range scanReferences(model.body()) {
		target := b.resolveRef(expr)
		if target == nil {
			b.diag(graph.DiagReferenceUnresolved, model.Name, "unknown reference "+expr)
			continue
		}
		if target == obj {
			continue
		}
		b.link(obj, target, linked)
	}
}

// link appends one relationship per distinct target of a model.
func (b *builder) link(src, dst *graph.SchemaObject, linked map[string]bool) {
	if linked[dst.ID] {
		return
	}
	linked[dst.ID] = true
	b.result.Relationships = append(b.result.Relationships, &graph.Relationship{
		ID:          graph.NewID(),
		SourceID:    src.ID,
		TargetID:    dst.ID,
		Cardinality: graph.OneToMany,
	})
}

// resolveRef decodes a ref('model') or source('src','table') expression
// and resolves it against the name maps. Bare names are looked up
// directly so `to: orders` also works.
func (b *builder) resolveRef(expr string) *graph.SchemaObject {
	if m := refRe.FindStringSubmatch(expr); m != nil {
		return b.lookup(m[1])
	}
	if m := sourceRe.FindStringSubmatch(expr); m != nil {
		return b.lookup(m[1] + "." + m[2])
	}
	return b.lookup(strings.TrimSpace(expr))
}

// scanReferences returns every distinct ref()/source() expression in a
// raw SQL body, in order of first appearance.
func scanReferences(sql string) []string {
	if sql == "" {
		return nil
	}
	var refs []string
	seen := make(map[string]bool)
	for _, m := range refRe.FindAllString(sql, -1) {
		if !seen[m] {
			refs = append(refs, m)
			seen[m] = true
		}
	}
	for _, m := range sourceRe.FindAllString(sql, -1) {
		if !seen[m] {
			refs = append(refs, m)
			seen[m] = true
		}
	}
	return refs
}

func (b *builder) lookup(name string) *graph.SchemaObject {
	key := strings.ToLower(strings.TrimSpace(name))
	if obj, ok := b.byName[key]; ok {
		return obj
	}
	if i := strings.LastIndex(key, "."); i >= 0 {
		if obj, ok := b.byName[key[i+1:]]; ok {
			return obj
		}
	}
	return nil
}

func mergeTags(a, b []string) []string {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]bool, len(a))
	merged := make([]string, 0, len(a)+len(b))
	for _, tag := range a {
		if !seen[tag] {
			merged = append(merged, tag)
			seen[tag] = true
		}
	}
	for _, tag := range b {
		if !seen[tag] {
			merged = append(merged, tag)
			seen[tag] = true
		}
	}
	return merged
}
