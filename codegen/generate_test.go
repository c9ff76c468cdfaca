package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yandroskaos/languages/ebnf"
)

func TestGenerateProducesCompilableShapedSource(t *testing.T) {
	src := `
GRAMMAR Mini
SETS
	Digit = ['0'..'9'];
SCANNER
	Num = Digit+;
PARSER
	Expr = Num ('+' Num)*;
`
	res, tree := ebnf.Parse([]byte(src))
	require.True(t, res.Matched)

	out, err := Generate(tree, "mini")
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "// Code generated by languagesc"))
	assert.Contains(t, text, "package mini")
	assert.Contains(t, text, `import "github.com/yandroskaos/languages/core"`)
	assert.Contains(t, text, "ruleExpr")
	assert.Contains(t, text, "func Parse(src []byte)")
}

func TestDumpTreeIncludesPositionWhenRequested(t *testing.T) {
	src := `
GRAMMAR Mini
PARSER
	Expr = "x";
`
	res, tree := ebnf.Parse([]byte(src))
	require.True(t, res.Matched)

	plain := DumpTree(tree, false)
	withPos := DumpTree(tree, true)
	assert.NotContains(t, plain, "(1,")
	assert.Contains(t, withPos, "(")
}
