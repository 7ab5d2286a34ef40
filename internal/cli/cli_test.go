package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/schemaflow/pkg/graph"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleDDL = `
CREATE TABLE customers (id INT NOT NULL, PRIMARY KEY (id));
CREATE TABLE orders (id INT NOT NULL, customer_id INT, PRIMARY KEY (id));
ALTER TABLE orders ADD FOREIGN KEY (customer_id) REFERENCES customers(id);
`

func TestParseCommandJSON(t *testing.T) {
	path := writeFile(t, "schema.sql", sampleDDL)

	out, err := runCommand(t, "parse", path, "-o", "json")
	require.NoError(t, err)

	var res graph.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Len(t, res.Objects, 2)
	assert.Len(t, res.Relationships, 1)
}

func TestParseCommandTable(t *testing.T) {
	path := writeFile(t, "schema.sql", sampleDDL)

	out, err := runCommand(t, "parse", path)
	require.NoError(t, err)
	assert.Contains(t, out, "customers")
	assert.Contains(t, out, "(2 objects)")
	assert.Contains(t, out, "(1 relationships)")
}

func TestParseCommandMissingFile(t *testing.T) {
	_, err := runCommand(t, "parse", filepath.Join(t.TempDir(), "nope.sql"))
	assert.Error(t, err)
}

func TestManifestCommand(t *testing.T) {
	path := writeFile(t, "schema.yml", `
models:
  - name: customers
    columns:
      - name: id
        tests: [unique, not_null]
`)

	out, err := runCommand(t, "manifest", path, "-o", "json")
	require.NoError(t, err)

	var res graph.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Objects, 1)
	assert.True(t, res.Objects[0].Columns[0].PrimaryKey)
}

func TestManifestCommandSyntaxError(t *testing.T) {
	path := writeFile(t, "schema.yml", "models:\n  - name: [broken\n")

	_, err := runCommand(t, "manifest", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest syntax error")
}

func TestGenCommandRoundTrip(t *testing.T) {
	sqlPath := writeFile(t, "schema.sql", sampleDDL)
	out, err := runCommand(t, "parse", sqlPath, "-o", "json")
	require.NoError(t, err)

	jsonPath := writeFile(t, "graph.json", out)
	ddlOut, err := runCommand(t, "gen", jsonPath)
	require.NoError(t, err)

	assert.Contains(t, ddlOut, "CREATE OR REPLACE TABLE CUSTOMERS (")
	assert.Contains(t, ddlOut, "ALTER TABLE ORDERS ADD FOREIGN KEY (CUSTOMER_ID) REFERENCES CUSTOMERS(ID);")
}

func TestConvertCommand(t *testing.T) {
	path := writeFile(t, "schema.yml", `
models:
  - name: daily_summary
    materialized: view
`)

	out, err := runCommand(t, "convert", path)
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE OR REPLACE VIEW DAILY_SUMMARY (")
}

func TestGenCommandTargetLagFlag(t *testing.T) {
	res := graph.Result{Objects: []*graph.SchemaObject{
		{ID: graph.NewID(), Name: graph.QualifiedName{"feed"}, Kind: graph.KindDynamicTable},
	}}
	data, err := json.Marshal(res)
	require.NoError(t, err)
	path := writeFile(t, "graph.json", string(data))

	out, err := runCommand(t, "gen", path, "--target-lag", "2 hours")
	require.NoError(t, err)
	assert.Contains(t, out, "TARGET_LAG = '2 hours'")
}

func TestDagCommand(t *testing.T) {
	path := writeFile(t, "schema.sql", sampleDDL)

	out, err := runCommand(t, "dag", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Level 0:")
	assert.Contains(t, out, "Level 1:")
	assert.Contains(t, out, "Total: 2 objects, 1 dependencies")
}
