package ddl

import (
	"strings"

	"github.com/leapstack-labs/schemaflow/pkg/graph"
)

// resolutionTier records how a table reference was matched. The fuzzy
// tier is a heuristic, not a guarantee: it can be ambiguous when two
// schemas contain same-named tables, so fuzzy matches are surfaced as
// diagnostics rather than hidden.
type resolutionTier int

const (
	tierNone resolutionTier = iota
	tierExact
	tierFuzzy
)

// resolve matches a referenced table name against the extracted objects:
// first by exact short-name match, then by full qualified-name equality
// or qualified-name suffix match against the short name.
func (st *parseState) resolve(nameText string) (*graph.SchemaObject, resolutionTier) {
	name := parseQualifiedName(nameText)
	short := strings.ToLower(name.ShortName())

	if obj, ok := st.byShort[short]; ok {
		return obj, tierExact
	}

	full := strings.ToLower(name.String())
	for _, obj := range st.result.Objects {
		objFull := strings.ToLower(obj.Name.String())
		if objFull == full || strings.HasSuffix(objFull, "."+short) {
			return obj, tierFuzzy
		}
	}
	return nil, tierNone
}

// parseForeignKey handles ALTER TABLE ... ADD [CONSTRAINT ...] FOREIGN KEY.
// On successful resolution of both sides, the source columns are flagged
// and paired positionally with the target columns, and exactly one
// relationship is appended. On failure the constraint is dropped with a
// diagnostic; no partial object is created.
func (st *parseState) parseForeignKey(stmt string) {
	m := foreignKeyRe.FindStringSubmatch(stmt)
	srcText, srcColText, tgtText, tgtColText := m[1], m[2], m[3], m[4]

	srcObj, srcTier := st.resolve(srcText)
	tgtObj, tgtTier := st.resolve(tgtText)
	if srcObj == nil || tgtObj == nil {
		missing := srcText
		if srcObj != nil {
			missing = tgtText
		}
		st.diag(graph.DiagReferenceUnresolved, summarize(stmt), "unknown table "+strings.TrimSpace(missing))
		return
	}
	if srcTier == tierFuzzy {
		st.diag(graph.DiagFuzzyReference, summarize(stmt), "source table matched by qualified-name fallback: "+strings.TrimSpace(srcText))
	}
	if tgtTier == tierFuzzy {
		st.diag(graph.DiagFuzzyReference, summarize(stmt), "target table matched by qualified-name fallback: "+strings.TrimSpace(tgtText))
	}

	srcCols := splitIdentList(srcColText)
	tgtCols := splitIdentList(tgtColText)

	for i, colName := range srcCols {
		col := findColumn(srcObj, colName)
		if col == nil {
			continue
		}
		col.ForeignKey = true
		col.ReferencedTable = tgtObj.Name.ShortName()
		if i < len(tgtCols) {
			col.ReferencedColumn = tgtCols[i]
		}
	}

	st.result.Relationships = append(st.result.Relationships, &graph.Relationship{
		ID:          graph.NewID(),
		SourceID:    srcObj.ID,
		TargetID:    tgtObj.ID,
		Cardinality: graph.OneToMany,
	})
}

// parseColumnTag handles ALTER TABLE ... MODIFY COLUMN ... SET TAG,
// attaching tag names to the matching column.
func (st *parseState) parseColumnTag(stmt string) {
	m := setTagRe.FindStringSubmatch(stmt)
	tableText, colText, tagExpr := m[1], m[2], m[3]

	obj, tier := st.resolve(tableText)
	if obj == nil {
		st.diag(graph.DiagReferenceUnresolved, summarize(stmt), "unknown table "+strings.TrimSpace(tableText))
		return
	}
	if tier == tierFuzzy {
		st.diag(graph.DiagFuzzyReference, summarize(stmt), "table matched by qualified-name fallback: "+strings.TrimSpace(tableText))
	}

	col := findColumn(obj, unquoteIdent(colText))
	if col == nil {
		st.diag(graph.DiagReferenceUnresolved, summarize(stmt), "unknown column "+unquoteIdent(colText))
		return
	}
	col.Tags = append(col.Tags, parseTagPairs(tagExpr)...)
}

func findColumn(obj *graph.SchemaObject, name string) *graph.Column {
	for _, col := range obj.Columns {
		if strings.EqualFold(col.Name, name) {
			return col
		}
	}
	return nil
}

func splitIdentList(text string) []string {
	var names []string
	for _, part := range strings.Split(text, ",") {
		if name := unquoteIdent(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
