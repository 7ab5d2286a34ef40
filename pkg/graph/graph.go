// Package graph defines the in-memory schema graph exchanged between the
// diagram editor and the interchange engine: schema objects, their columns,
// and the relationships between them. The package is pure data; the DDL and
// manifest packages produce and consume it.
package graph

import (
	"strings"

	"github.com/google/uuid"
)

// ObjectKind classifies a schema object.
type ObjectKind string

// Object kind constants.
const (
	KindTable            ObjectKind = "table"
	KindView             ObjectKind = "view"
	KindMaterializedView ObjectKind = "materialized_view"
	KindDynamicTable     ObjectKind = "dynamic_table"
	KindIcebergTable     ObjectKind = "iceberg_table"
)

// Keyword returns the SQL keyword phrase for the kind.
// Unknown kinds fall back to TABLE so a malformed graph still
// produces executable-looking text.
func (k ObjectKind) Keyword() string {
	switch k {
	case KindView:
		return "VIEW"
	case KindMaterializedView:
		return "MATERIALIZED VIEW"
	case KindDynamicTable:
		return "DYNAMIC TABLE"
	case KindIcebergTable:
		return "ICEBERG TABLE"
	case KindTable:
		return "TABLE"
	default:
		return "TABLE"
	}
}

// KindFromKeyword maps a SQL object keyword phrase (e.g. "DYNAMIC TABLE")
// to its kind. Interior whitespace and case are normalized.
func KindFromKeyword(keyword string) (ObjectKind, bool) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(keyword), " "))
	switch normalized {
	case "TABLE":
		return KindTable, true
	case "VIEW":
		return KindView, true
	case "MATERIALIZED VIEW":
		return KindMaterializedView, true
	case "DYNAMIC TABLE":
		return KindDynamicTable, true
	case "ICEBERG TABLE":
		return KindIcebergTable, true
	}
	return "", false
}

// KindFromMaterialization maps a manifest materialization setting to a kind.
// Anything unrecognized (including "incremental") materializes as a table.
func KindFromMaterialization(materialized string) ObjectKind {
	switch strings.ToLower(materialized) {
	case "view":
		return KindView
	case "materialized_view":
		return KindMaterializedView
	default:
		return KindTable
	}
}

// Cardinality describes relationship multiplicity.
type Cardinality string

// Cardinality constants.
const (
	OneToOne   Cardinality = "one-to-one"
	OneToMany  Cardinality = "one-to-many"
	ManyToMany Cardinality = "many-to-many"
)

// QualifiedName is a dotted object name of 1-3 parts
// (database, schema, object), most significant first.
type QualifiedName []string

// ShortName returns the last part of the name. The short name is the
// join key for cross-reference resolution and must be unique
// (case-insensitively) among the objects of one conversion.
func (q QualifiedName) ShortName() string {
	if len(q) == 0 {
		return ""
	}
	return q[len(q)-1]
}

// String returns the dotted form of the name.
func (q QualifiedName) String() string {
	return strings.Join(q, ".")
}

// SchemaObject is a table-like entity in the schema graph.
type SchemaObject struct {
	ID      string        `json:"id"`
	Name    QualifiedName `json:"name"`
	Kind    ObjectKind    `json:"kind"`
	Columns []*Column     `json:"columns"`
	Comment string        `json:"comment,omitempty"`
	Tags    []string      `json:"tags,omitempty"`
}

// Column belongs to exactly one SchemaObject and is never shared.
// DataType is stored verbatim (keyword plus optional parameter list,
// e.g. NUMBER(10,2)) rather than decomposed.
type Column struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	DataType         string   `json:"dataType"`
	PrimaryKey       bool     `json:"isPrimaryKey"`
	ForeignKey       bool     `json:"isForeignKey"`
	Nullable         bool     `json:"isNullable"`
	ReferencedTable  string   `json:"referencedTable,omitempty"`
	ReferencedColumn string   `json:"referencedColumn,omitempty"`
	Comment          string   `json:"comment,omitempty"`
	Tags             []string `json:"tags,omitempty"`
}

// Relationship is a graph edge between two schema objects. Column-level
// linkage lives on Column via ReferencedTable/ReferencedColumn; the
// edge itself only carries cardinality.
type Relationship struct {
	ID          string      `json:"id"`
	SourceID    string      `json:"sourceId"`
	TargetID    string      `json:"targetId"`
	Cardinality Cardinality `json:"cardinality"`
}

// NewID mints a fresh opaque identity. Parsers mint new ids for
// everything they reconstruct; callers needing identity continuity
// must reconcile by qualified name, not by id.
func NewID() string {
	return uuid.NewString()
}
