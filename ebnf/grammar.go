// Package ebnf implements the EBNF dialect grammar consumed by this
// compiler-compiler: a PEG description of character sets, lexical rules,
// and syntax ("yacc") rules, built entirely out of core combinators. It is
// a client of core — an external collaborator riding on the core's
// Parser/Stream/STN/Error contract, not part of the core itself.
package ebnf

import "github.com/yandroskaos/languages/core"

// Grammar holds every named sub-parser of the EBNF dialect, mirroring
// EBNFParser's field layout in the original implementation: lexical
// helpers, the Sets/Lex/Yacc sub-grammars, and the top-level Grammar rule.
type Grammar struct {
	separator core.Parser
	comment   core.Parser
	toIgnore  core.Parser

	cteString  core.Parser
	cteChar    core.Parser
	cteNatural core.Parser
	cteInt     core.Parser
	identifier core.Parser

	setEnumeration core.Parser
	setRange       core.Parser
	setValue       core.Parser
	setExpression  core.Parser
	setRule        core.Parser

	lexParser     core.Parser
	lexCombinator core.Parser
	lexSequence   core.Parser
	lexChoice     core.Parser
	lexProduction core.Parser
	lexRule       core.Parser

	yaccParser     core.Parser
	yaccCombinator core.Parser
	yaccAction     core.Parser
	yaccSequence   core.Parser
	yaccChoice     core.Parser
	yaccProduction core.Parser
	yaccRule       core.Parser

	grammar core.Parser
}

// New builds the EBNF dialect grammar.
func New() *Grammar {
	g := &Grammar{}

	alpha := core.Range('a', 'z').Union(core.Range('A', 'Z'))
	decimalDigit := core.Range('0', '9')
	alphaDigit := alpha.Union(decimalDigit).Union(core.SingleChar('_'))
	whitespace := core.Enumeration(' ', '\t', '\r', '\n')

	g.separator = core.Char(whitespace)
	g.comment = core.Sequence(
		core.Char(core.SingleChar('#')),
		core.Star(core.Sequence(core.NotAt(core.Char(core.SingleChar('\n'))), core.Any())),
		core.Char(core.SingleChar('\n')),
	)
	g.toIgnore = core.Star(core.Choice(g.separator, g.comment))

	// T/I mirror EBNFParser's private T()/I() helpers: strip leading
	// ignorable whitespace/comments, then Token or Ignore the argument.
	T := func(p core.Parser) core.Parser {
		return core.Sequence(core.Clear(core.Ignore(g.toIgnore)), core.Token(p))
	}
	Tw := func(w string) core.Parser {
		return core.Sequence(core.Clear(core.Ignore(g.toIgnore)), core.Token(core.Word(w)))
	}
	I := func(p core.Parser) core.Parser {
		return core.Sequence(core.Clear(core.Ignore(g.toIgnore)), core.Ignore(p))
	}
	Iw := func(w string) core.Parser {
		return I(core.Word(w))
	}

	g.cteString = core.Sequence(
		core.Char(core.SingleChar('"')),
		core.Star(core.Sequence(core.NotAt(core.Char(core.SingleChar('"'))), core.Any())),
		core.Char(core.SingleChar('"')),
	)
	g.cteChar = core.Sequence(core.Char(core.SingleChar('\'')), core.Any(), core.Char(core.SingleChar('\'')))
	g.cteNatural = core.Plus(core.Char(decimalDigit))
	g.cteInt = core.Sequence(core.Optional(core.Char(core.SingleChar('-'))), core.Plus(core.Char(decimalDigit)))
	g.identifier = core.Sequence(core.Char(alpha), core.Star(core.Char(alphaDigit)))

	// --- Sets section: SetValue <-> SetExpression are mutually recursive.
	var setValue, setExpression core.Parser

	g.setEnumeration = core.Name("<EN>", true, core.Flat(2, core.Sequence(
		Iw("["),
		core.Choice(T(g.cteChar), T(g.identifier)),
		core.Star(core.Sequence(Iw(","), core.Choice(T(g.cteChar), T(g.identifier)))),
		Iw("]"),
	)))
	g.setRange = core.Name("<RG>", false, core.Sequence(
		Iw("["), T(g.cteChar), Iw(".."), T(g.cteChar), Iw("]"),
	))

	setValue = core.Choice(
		T(g.identifier),
		g.setEnumeration,
		g.setRange,
		core.Root(1, core.Sequence(Tw("!"), core.Reference(&setValue))),
		core.Sequence(Iw("("), core.Reference(&setExpression), Iw(")")),
	)
	setExpression = core.Root(2, core.Flat(2, core.Sequence(
		core.Reference(&setValue),
		core.Optional(core.Sequence(
			core.Choice(Tw("*"), Tw("+"), Tw("-")),
			core.Reference(&setExpression),
		)),
	)))
	g.setValue = setValue
	g.setExpression = setExpression
	g.setRule = core.Root(1, core.Sequence(T(g.identifier), Iw("="), core.Reference(&setExpression), Iw(";")))

	// --- Lexical section: LexParser <-> LexProduction are mutually recursive.
	var lexParser, lexProduction core.Parser
	repeatBound := func() core.Parser {
		return T(core.Sequence(
			Tw("{"), T(g.cteNatural),
			core.Optional(core.Sequence(Tw(","), core.Choice(Tw("N"), T(g.cteNatural)))),
			Tw("}"),
		))
	}

	lexParser = core.Choice(
		T(g.cteString),
		T(g.cteChar),
		T(g.identifier),
		core.Root(1, core.Sequence(core.Choice(Tw("^"), Tw("!")), core.Reference(&lexParser))),
		core.Sequence(Iw("("), core.Reference(&lexProduction), Iw(")")),
	)
	g.lexCombinator = core.Root(-1, core.Sequence(
		core.Reference(&lexParser),
		core.Optional(core.Choice(Tw("*"), Tw("+"), Tw("?"), repeatBound())),
	))
	g.lexSequence = core.Name("&", false, core.Plus(core.Reference(&g.lexCombinator)))
	g.lexChoice = core.Name("|", false, core.Flat(2, core.Sequence(
		core.Reference(&g.lexSequence),
		core.Star(core.Sequence(Iw("|"), core.Reference(&g.lexSequence))),
	)))
	lexProduction = g.lexChoice
	g.lexParser = lexParser
	g.lexProduction = lexProduction
	g.lexRule = core.Root(1, core.Sequence(T(g.identifier), Iw("="), core.Reference(&lexProduction), Iw(";")))

	// --- Yacc/syntax section: YaccParser <-> YaccProduction are mutually recursive.
	var yaccParser, yaccProduction core.Parser

	yaccParser = core.Choice(
		T(g.cteString),
		T(g.cteChar),
		T(g.identifier),
		core.Root(1, core.Sequence(core.Choice(Tw("^"), Tw("!")), core.Reference(&yaccParser))),
		core.Name("[]", true, core.Sequence(Iw("["), core.Reference(&yaccProduction), Iw("]"))),
		core.Name("<>", true, core.Sequence(Iw("<"), core.Reference(&yaccProduction), Iw(">"))),
		core.Sequence(Iw("("), core.Reference(&yaccProduction), Iw(")")),
	)
	g.yaccCombinator = core.Root(-1, core.Sequence(
		core.Reference(&yaccParser),
		core.Optional(core.Choice(Tw("*"), Tw("+"), Tw("?"), repeatBound())),
	))
	g.yaccAction = core.Root(-1, core.Sequence(
		core.Reference(&g.yaccCombinator),
		core.Optional(core.Sequence(Iw("->"), core.Choice(
			T(core.Sequence(Tw("&"), T(g.cteString))),
			T(core.Sequence(Tw("?"), T(g.cteString))),
			T(core.Sequence(Tw("_"), T(g.cteInt))),
			T(core.Sequence(Tw("^"), T(g.cteInt))),
			Tw("<<"),
			Tw(">>"),
		))),
	))
	g.yaccSequence = core.Name("&", false, core.Plus(core.Reference(&g.yaccAction)))
	g.yaccChoice = core.Name("|", false, core.Flat(2, core.Sequence(
		core.Reference(&g.yaccSequence),
		core.Star(core.Sequence(Iw("|"), core.Reference(&g.yaccSequence))),
	)))
	yaccProduction = g.yaccChoice
	g.yaccParser = yaccParser
	g.yaccProduction = yaccProduction
	g.yaccRule = core.Root(1, core.Sequence(T(g.identifier), Iw("="), core.Reference(&yaccProduction), Iw(";")))

	g.grammar = core.Root(1, core.Sequence(
		Iw("GRAMMAR"),
		T(g.identifier),
		core.Optional(core.Root(1, core.Flat(2, core.Sequence(Tw("SETS"), core.Plus(g.setRule))))),
		core.Optional(core.Root(1, core.Flat(2, core.Sequence(Tw("COMMENTS"), core.Plus(g.lexRule))))),
		core.Optional(core.Root(1, core.Flat(2, core.Sequence(Tw("SCANNER"), core.Plus(g.lexRule))))),
		core.Root(1, core.Flat(2, core.Sequence(Tw("PARSER"), core.Plus(g.yaccRule)))),
		T(core.EndOfInput()),
	))

	return g
}

// Reset clears every memo table in the grammar. Each named sub-parser is
// reset individually, matching EBNFParser::Reset in the original: a
// Reference edge does not own its target (core.Reference.Reset is a
// no-op), so reaching only g.grammar would leave every mutually-recursive
// sub-parser's memo table stale. Call this before reusing a Grammar to
// parse a different source.
func (g *Grammar) Reset() {
	g.separator.Reset()
	g.comment.Reset()
	g.toIgnore.Reset()

	g.cteString.Reset()
	g.cteChar.Reset()
	g.cteNatural.Reset()
	g.cteInt.Reset()
	g.identifier.Reset()

	g.setEnumeration.Reset()
	g.setRange.Reset()
	g.setValue.Reset()
	g.setExpression.Reset()
	g.setRule.Reset()

	g.lexParser.Reset()
	g.lexCombinator.Reset()
	g.lexSequence.Reset()
	g.lexChoice.Reset()
	g.lexProduction.Reset()
	g.lexRule.Reset()

	g.yaccParser.Reset()
	g.yaccCombinator.Reset()
	g.yaccAction.Reset()
	g.yaccSequence.Reset()
	g.yaccChoice.Reset()
	g.yaccProduction.Reset()
	g.yaccRule.Reset()

	g.grammar.Reset()
}

// Parse runs the grammar against src and returns the resulting syntax
// tree. On success, any speculative failure accumulated while exploring
// Optional/Star branches is cleared, matching EBNFParser::Parse in the
// original implementation.
func (g *Grammar) Parse(src []byte) (core.Result, *core.STN) {
	s := core.NewMemoryStream(src)
	res, tree := g.grammar.Parse(s)
	if res.Matched {
		res.Fail = core.Error{}
	}
	return res, tree
}

// Parse is the package-level convenience entry point: build a fresh
// Grammar and parse src with it.
func Parse(src []byte) (core.Result, *core.STN) {
	return New().Parse(src)
}
