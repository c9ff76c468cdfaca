package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yandroskaos/languages/ebnf"
)

func TestCheckCleanGrammar(t *testing.T) {
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
	errs := Check(tree)
	assert.Empty(t, errs)
}

func TestCheckUndefinedReference(t *testing.T) {
	src := `
GRAMMAR Mini
PARSER
	Expr = Missing '+' Missing;
`
	res, tree := ebnf.Parse([]byte(src))
	require.True(t, res.Matched)
	errs := Check(tree)
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if ce, ok := e.(*CheckError); ok && ce.Msg == `undefined reference: "Missing"` {
			found = true
		}
	}
	assert.True(t, found, "expected an undefined-reference diagnostic, got: %v", errs)
}

func TestCheckDuplicateRuleName(t *testing.T) {
	src := `
GRAMMAR Mini
SETS
	Digit = ['0'..'9'];
SCANNER
	Num = Digit+;
	Num = Digit+;
PARSER
	Expr = Num;
`
	res, tree := ebnf.Parse([]byte(src))
	require.True(t, res.Matched)
	errs := Check(tree)
	require.NotEmpty(t, errs)
}
