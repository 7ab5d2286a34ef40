package ddl

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/schemaflow/pkg/graph"
)

// Default values for kind-specific trailing clauses.
const (
	DefaultTargetLag      = "1 minute"
	DefaultIcebergCatalog = "SNOWFLAKE"
	DefaultExternalVolume = "iceberg_external_volume"
)

// Options configure the kind-specific clauses the generator emits.
// The zero value uses the defaults above.
type Options struct {
	// TargetLag is the TARGET_LAG value for dynamic tables.
	TargetLag string
	// IcebergCatalog is the CATALOG value for Iceberg tables.
	IcebergCatalog string
	// ExternalVolume is the EXTERNAL_VOLUME value for Iceberg tables.
	ExternalVolume string
}

func (o Options) withDefaults() Options {
	if o.TargetLag == "" {
		o.TargetLag = DefaultTargetLag
	}
	if o.IcebergCatalog == "" {
		o.IcebergCatalog = DefaultIcebergCatalog
	}
	if o.ExternalVolume == "" {
		o.ExternalVolume = DefaultExternalVolume
	}
	return o
}

// Generator serializes a schema graph to DDL text. It is stateless and
// safe for concurrent use.
type Generator struct {
	opts Options
}

// NewGenerator creates a Generator with the given options.
func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts.withDefaults()}
}

// Generate serializes the graph with default options.
func Generate(objects []*graph.SchemaObject, relationships []*graph.Relationship) string {
	return NewGenerator(Options{}).Generate(objects, relationships)
}

// Generate emits one CREATE statement per object in input order, column
// tag statements alongside each object, and all foreign-key statements
// last so forward references between objects never break execution
// order. It is total: a malformed graph produces malformed-looking but
// non-crashing text.
func (g *Generator) Generate(objects []*graph.SchemaObject, relationships []*graph.Relationship) string {
	_ = relationships // column-level reference fields drive FK emission

	var b strings.Builder
	for _, obj := range objects {
		g.writeCreate(&b, obj)
		g.writeColumnTags(&b, obj)
	}
	for _, obj := range objects {
		for _, col := range obj.Columns {
			if col.ForeignKey && col.ReferencedTable != "" && col.ReferencedColumn != "" {
				fmt.Fprintf(&b, "ALTER TABLE %s ADD FOREIGN KEY (%s) REFERENCES %s(%s);\n\n",
					FormatQualified(obj.Name),
					FormatIdent(col.Name),
					FormatIdent(col.ReferencedTable),
					FormatIdent(col.ReferencedColumn))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func (g *Generator) writeCreate(b *strings.Builder, obj *graph.SchemaObject) {
	fmt.Fprintf(b, "CREATE OR REPLACE %s %s (\n", obj.Kind.Keyword(), FormatQualified(obj.Name))

	lines := make([]string, 0, len(obj.Columns)+1)
	for _, col := range obj.Columns {
		lines = append(lines, columnLine(col))
	}
	if pk := primaryKeyColumns(obj); len(pk) > 0 {
		lines = append(lines, "  PRIMARY KEY ("+strings.Join(pk, ", ")+")")
	}
	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n)")

	if obj.Comment != "" {
		fmt.Fprintf(b, " COMMENT = '%s'", EscapeString(obj.Comment))
	}

	switch obj.Kind {
	case graph.KindDynamicTable:
		fmt.Fprintf(b, " TARGET_LAG = '%s'", g.opts.TargetLag)
	case graph.KindIcebergTable:
		fmt.Fprintf(b, " EXTERNAL_VOLUME = '%s' CATALOG = '%s'", g.opts.ExternalVolume, g.opts.IcebergCatalog)
	case graph.KindTable, graph.KindView, graph.KindMaterializedView:
		// no trailing clause
	}

	if len(obj.Tags) > 0 {
		pairs := make([]string, len(obj.Tags))
		for i, tag := range obj.Tags {
			pairs[i] = tag + " = 'true'"
		}
		fmt.Fprintf(b, " WITH TAG (%s)", strings.Join(pairs, ", "))
	}

	b.WriteString(";\n\n")
}

// writeColumnTags emits one ALTER ... SET TAG statement per tagged column.
func (g *Generator) writeColumnTags(b *strings.Builder, obj *graph.SchemaObject) {
	for _, col := range obj.Columns {
		if len(col.Tags) == 0 {
			continue
		}
		pairs := make([]string, len(col.Tags))
		for i, tag := range col.Tags {
			pairs[i] = tag + " = 'true'"
		}
		fmt.Fprintf(b, "ALTER TABLE %s MODIFY COLUMN %s SET TAG %s;\n\n",
			FormatQualified(obj.Name), FormatIdent(col.Name), strings.Join(pairs, ", "))
	}
}

func columnLine(col *graph.Column) string {
	var sb strings.Builder
	sb.WriteString("  ")
	sb.WriteString(FormatIdent(col.Name))
	if col.DataType != "" {
		sb.WriteString(" ")
		sb.WriteString(col.DataType)
	}
	if !col.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if col.Comment != "" {
		sb.WriteString(" COMMENT '")
		sb.WriteString(EscapeString(col.Comment))
		sb.WriteString("'")
	}
	return sb.String()
}

func primaryKeyColumns(obj *graph.SchemaObject) []string {
	var pk []string
	for _, col := range obj.Columns {
		if col.PrimaryKey {
			pk = append(pk, FormatIdent(col.Name))
		}
	}
	return pk
}
