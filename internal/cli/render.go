package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/schemaflow/pkg/graph"
)

// renderResult writes a conversion result in the requested format.
func renderResult(w io.Writer, res *graph.Result, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	renderObjects(w, res)
	renderRelationships(w, res)
	renderDiagnostics(w, res)
	return nil
}

func renderObjects(w io.Writer, res *graph.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Kind", "Columns", "Comment", "Tags"})
	for _, obj := range res.Objects {
		t.AppendRow(table.Row{
			obj.Name.String(),
			string(obj.Kind),
			len(obj.Columns),
			obj.Comment,
			strings.Join(obj.Tags, ", "),
		})
	}
	t.Render()
	fmt.Fprintf(w, "(%d objects)\n", len(res.Objects))
}

func renderRelationships(w io.Writer, res *graph.Result) {
	if len(res.Relationships) == 0 {
		return
	}
	names := make(map[string]string, len(res.Objects))
	for _, obj := range res.Objects {
		names[obj.ID] = obj.Name.ShortName()
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Source", "Target", "Cardinality"})
	for _, rel := range res.Relationships {
		t.AppendRow(table.Row{names[rel.SourceID], names[rel.TargetID], string(rel.Cardinality)})
	}
	t.Render()
	fmt.Fprintf(w, "(%d relationships)\n", len(res.Relationships))
}

func renderDiagnostics(w io.Writer, res *graph.Result) {
	if len(res.Diagnostics) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d diagnostics:\n", len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		if d.Subject != "" {
			fmt.Fprintf(w, "  [%s] %s: %s\n", d.Kind, d.Subject, d.Detail)
		} else {
			fmt.Fprintf(w, "  [%s] %s\n", d.Kind, d.Detail)
		}
	}
}
