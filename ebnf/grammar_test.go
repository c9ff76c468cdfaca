package ebnf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const miniGrammar = `
GRAMMAR Mini
SETS
	Digit = ['0'..'9'];
SCANNER
	Num = Digit+;
PARSER
	Expr = Num ('+' Num)*;
`

func TestParseMinimalGrammar(t *testing.T) {
	res, tree := Parse([]byte(miniGrammar))
	require.True(t, res.Matched, "expected grammar source to parse, got: %v", res.Fail)
	require.NotNil(t, tree)
	require.Equal(t, "Mini", tree.Data)
}

func TestParseRejectsMissingParserSection(t *testing.T) {
	res, _ := Parse([]byte("GRAMMAR Broken\nSETS\n\tDigit = ['0'..'9'];\n"))
	require.False(t, res.Matched)
}
