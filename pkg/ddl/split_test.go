package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("CREATE TABLE a (id INT); CREATE TABLE b (id INT);")
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (id INT)", stmts[0])
	assert.Equal(t, "CREATE TABLE b (id INT)", stmts[1])
}

func TestSplitStatementsSemicolonInLiteral(t *testing.T) {
	stmts := splitStatements("CREATE TABLE a (id INT COMMENT 'one; two'); SELECT 1;")
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "'one; two'")
}

func TestSplitStatementsSemicolonInComment(t *testing.T) {
	input := "CREATE TABLE a ( -- trailing note; with semicolon\n  id INT\n);"
	stmts := splitStatements(input)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0], "id INT")
}

func TestSplitStatementsEscapedQuote(t *testing.T) {
	stmts := splitStatements(`CREATE TABLE a (v VARCHAR COMMENT 'don\'t; split'); SELECT 1;`)
	require.Len(t, stmts, 2)
}

func TestSplitStatementsNoTrailingSemicolon(t *testing.T) {
	stmts := splitStatements("CREATE TABLE a (id INT)")
	require.Len(t, stmts, 1)
}

func TestSplitStatementsEmptyInput(t *testing.T) {
	assert.Empty(t, splitStatements("  \n ; ; \n"))
}

func TestMatchParen(t *testing.T) {
	s := "(a (b) 'c)' d)"
	assert.Equal(t, len(s)-1, matchParen(s, 0))

	assert.Equal(t, -1, matchParen("(never closed", 0))
}

func TestSplitTopLevel(t *testing.T) {
	parts := splitTopLevel("price NUMBER(10,2), note VARCHAR COMMENT 'a, b', qty INT")
	require.Len(t, parts, 3)
	assert.Equal(t, "price NUMBER(10,2)", parts[0])
	assert.Equal(t, " note VARCHAR COMMENT 'a, b'", parts[1])
	assert.Equal(t, " qty INT", parts[2])
}

func TestSplitTopLevelNestedConstraint(t *testing.T) {
	parts := splitTopLevel("a INT, PRIMARY KEY (a, b), b INT")
	require.Len(t, parts, 3)
	assert.Equal(t, " PRIMARY KEY (a, b)", parts[1])
}
