package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/schemaflow/pkg/graph"
)

func TestFormatIdent(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"customers", "CUSTOMERS"},
		{"ORDER_ID", "ORDER_ID"},
		{"col1", "COL1"},
		{"Order Items", `"Order Items"`},
		{"weird-name", `"weird-name"`},
		{"table", `"table"`},
		{"Select", `"Select"`},
		{`has"quote`, `"has""quote"`},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatIdent(tt.name), "input %q", tt.name)
	}
}

func TestFormatQualified(t *testing.T) {
	name := graph.QualifiedName{"analytics", "Order Items"}
	assert.Equal(t, `ANALYTICS."Order Items"`, FormatQualified(name))
}

func TestEscapeString(t *testing.T) {
	assert.Equal(t, "it''s", EscapeString("it's"))
	assert.Equal(t, "plain", EscapeString("plain"))
	assert.Equal(t, "it's", unescapeString("it''s"))
}

func TestUnquoteIdent(t *testing.T) {
	assert.Equal(t, "Order Items", unquoteIdent(`  "Order Items" `))
	assert.Equal(t, `has"quote`, unquoteIdent(`"has""quote"`))
	assert.Equal(t, "BARE", unquoteIdent(" BARE"))
}
