package graph

import "strings"

// DiagnosticKind classifies a non-fatal conversion diagnostic.
type DiagnosticKind string

const (
	// DiagStatementIgnored means a statement matched no recognized pattern
	// and was skipped.
	DiagStatementIgnored DiagnosticKind = "statement_ignored"
	// DiagReferenceUnresolved means a foreign-key or model/source reference
	// could not be matched to a known object and was dropped.
	DiagReferenceUnresolved DiagnosticKind = "reference_unresolved"
	// DiagFuzzyReference means a reference resolved only through the
	// qualified-name fallback tier, which is heuristic and may be ambiguous
	// when different schemas contain same-named tables.
	DiagFuzzyReference DiagnosticKind = "fuzzy_reference"
)

// Diagnostic records a non-fatal issue observed during conversion.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Subject string         `json:"subject,omitempty"`
	Detail  string         `json:"detail"`
}

// Result is the outcome of one conversion: the reconstructed graph plus
// any diagnostics. Objects appear in extraction order.
type Result struct {
	Objects       []*SchemaObject `json:"objects"`
	Relationships []*Relationship `json:"relationships"`
	Diagnostics   []Diagnostic    `json:"diagnostics,omitempty"`
}

// FindObject returns the object whose short name matches
// (case-insensitively), or nil.
func (r *Result) FindObject(shortName string) *SchemaObject {
	for _, obj := range r.Objects {
		if strings.EqualFold(obj.Name.ShortName(), shortName) {
			return obj
		}
	}
	return nil
}
