// Package codegen renders a checked EBNF parse tree into a Go source file
// that, compiled against core, instantiates the described grammar using
// core's factory surface by name. The TemplateData-plus-text/template
// split follows opal-lang/opal's pkgs/generator/go_template.go; the
// node-kind dispatch mirrors original_source's EBNF.cpp GenerateRuleParser
// and GenerateSetExpression.
package codegen

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/yandroskaos/languages/core"
)

// TemplateData is the preprocessed, template-ready view of a grammar.
type TemplateData struct {
	PackageName string
	GrammarName string

	SetNames []string // declaration order (dependency-sorted), set var names
	SetRules []RuleData

	RuleNames []string // declaration order, for the forward-declared var block
	Rules     []RuleData

	ToIgnoreExpr string
	StartRule    string
}

// RuleData is one rule's generated Go expression, already rendered to a
// string by exprFromSTN/setExprFromSTN.
type RuleData struct {
	Name string
	Expr string
}

var fileTemplate = template.Must(template.New("grammar").Parse(`// Code generated by languagesc from the "{{.GrammarName}}" grammar. DO NOT EDIT.

package {{.PackageName}}

import "github.com/yandroskaos/languages/core"

var (
{{- range .SetNames}}
	{{.}} core.CharSet
{{- end}}
)

var (
	toIgnore core.Parser
{{- range .RuleNames}}
	{{.}} core.Parser
{{- end}}
)

// skip consumes any leading ignorable input (whitespace, comments) before
// running p: the generated equivalent of the grammar's own T()/S() helper.
func skip(p core.Parser) core.Parser {
	return core.Sequence(core.Clear(core.Ignore(toIgnore)), p)
}

func init() {
{{- range .SetRules}}
	{{.Name}} = {{.Expr}}
{{- end}}
	toIgnore = {{.ToIgnoreExpr}}
{{- range .Rules}}
	{{.Name}} = {{.Expr}}
{{- end}}
}

// Parse runs the "{{.GrammarName}}" grammar's start rule against src.
func Parse(src []byte) (core.Result, *core.STN) {
	s := core.NewMemoryStream(src)
	res, tree := {{.StartRule}}.Parse(s)
	if res.Matched {
		res.Fail = core.Error{}
	}
	return res, tree
}

// Reset clears every rule's memo table. Call before reparsing a different
// source.
func Reset() {
	toIgnore.Reset()
{{- range .RuleNames}}
	{{.}}.Reset()
{{- end}}
}
`))

// ruleRef is one named rule: its body is the syntax-tree child found at
// Son(0) of the Rule node (after ebnf.New's Root(1) promotes the rule's
// identifier into the node's own Data).
type ruleRef struct {
	name string
	body *core.STN
}

// collectBlocks partitions tree's top-level SETS/COMMENTS/SCANNER/PARSER
// blocks into their rule lists. Per ebnf.New's Grammar rule, each present
// block is tagged with its section keyword as Data and holds its Rule
// nodes as direct children.
func collectBlocks(tree *core.STN) (sets, comments, scanners, parsers []ruleRef) {
	for _, block := range tree.Children {
		if block == nil {
			continue
		}
		var bucket *[]ruleRef
		switch block.Data {
		case "SETS":
			bucket = &sets
		case "COMMENTS":
			bucket = &comments
		case "SCANNER":
			bucket = &scanners
		case "PARSER":
			bucket = &parsers
		default:
			continue
		}
		for _, rule := range block.Children {
			if rule != nil && rule.HasData() && rule.Sons() >= 1 {
				*bucket = append(*bucket, ruleRef{name: rule.Data, body: rule.Son(0)})
			}
		}
	}
	return
}

// renderCtx carries the classification a leaf identifier needs to resolve
// correctly: which names are character sets, which are scanner rules, and
// whether we're currently rendering a PARSER-section rule — literal
// terminals and scanner-rule references skip leading ignorable input only
// in that context, matching EBNF.cpp's S() wrapping, gated on its
// _scanner lookup-table argument being non-null.
type renderCtx struct {
	sets     map[string]bool
	scanners map[string]bool
	inParser bool
}

// Generate renders the Go source for tree's grammar into pkgName. tree
// must already have passed semantics.Check.
func Generate(tree *core.STN, pkgName string) ([]byte, error) {
	if tree == nil {
		return nil, fmt.Errorf("codegen: nil syntax tree")
	}

	sets, comments, scanners, parsers := collectBlocks(tree)

	setBodies := make(map[string]*core.STN, len(sets))
	setNameList := make([]string, 0, len(sets))
	for _, r := range sets {
		setBodies[r.name] = r.body
		setNameList = append(setNameList, r.name)
	}
	setNameList = topoSortSetNames(setNameList, setBodies)

	setIsKnown := make(map[string]bool, len(setNameList))
	for _, n := range setNameList {
		setIsKnown[n] = true
	}
	scannerIsKnown := make(map[string]bool, len(scanners))
	for _, r := range scanners {
		scannerIsKnown[r.name] = true
	}

	data := TemplateData{
		PackageName: pkgName,
		GrammarName: tree.Data,
	}

	for _, name := range setNameList {
		data.SetNames = append(data.SetNames, setVarName(name))
		data.SetRules = append(data.SetRules, RuleData{
			Name: setVarName(name),
			Expr: setExprFromSTN(setBodies[name], setVarName),
		})
	}

	lexicalCtx := renderCtx{sets: setIsKnown, scanners: scannerIsKnown, inParser: false}
	parserCtx := renderCtx{sets: setIsKnown, scanners: scannerIsKnown, inParser: true}

	bodyByName := make(map[string]*core.STN, len(comments)+len(scanners)+len(parsers))

	lexicalNames := make([]string, 0, len(comments)+len(scanners))
	for _, r := range comments {
		lexicalNames = append(lexicalNames, r.name)
		bodyByName[r.name] = r.body
	}
	for _, r := range scanners {
		lexicalNames = append(lexicalNames, r.name)
		bodyByName[r.name] = r.body
	}
	sort.Strings(lexicalNames)
	for _, name := range lexicalNames {
		data.RuleNames = append(data.RuleNames, varName(name))
		data.Rules = append(data.Rules, RuleData{Name: varName(name), Expr: exprFromSTN(bodyByName[name], lexicalCtx)})
	}

	parserNames := make([]string, 0, len(parsers))
	for _, r := range parsers {
		parserNames = append(parserNames, r.name)
		bodyByName[r.name] = r.body
	}
	sort.Strings(parserNames)
	// The parser entry point is conventionally the first syntax rule
	// declared; main.cpp's PARSER section lists it first, so it is kept
	// first while the rest sort for a stable diff.
	startName := firstYaccRuleName(tree)
	orderedParser := make([]string, 0, len(parserNames))
	if startName != "" {
		orderedParser = append(orderedParser, startName)
	}
	for _, n := range parserNames {
		if n != startName {
			orderedParser = append(orderedParser, n)
		}
	}
	for _, name := range orderedParser {
		data.RuleNames = append(data.RuleNames, varName(name))
		data.Rules = append(data.Rules, RuleData{Name: varName(name), Expr: exprFromSTN(bodyByName[name], parserCtx)})
	}

	data.StartRule = varName(startName)

	switch len(comments) {
	case 0:
		data.ToIgnoreExpr = "core.Empty()"
	case 1:
		data.ToIgnoreExpr = fmt.Sprintf("core.Star(core.Reference(&%s))", varName(comments[0].name))
	default:
		parts := make([]string, len(comments))
		for i, r := range comments {
			parts[i] = fmt.Sprintf("core.Reference(&%s)", varName(r.name))
		}
		data.ToIgnoreExpr = fmt.Sprintf("core.Star(core.Choice(\n\t\t%s,\n\t))", strings.Join(parts, ",\n\t\t"))
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("codegen: %w", err)
	}
	return buf.Bytes(), nil
}

func varName(ruleName string) string    { return "rule" + ruleName }
func setVarName(ruleName string) string { return "set" + ruleName }

// firstYaccRuleName returns the name of the first rule under the
// mandatory PARSER block, which ebnf.New always emits last among the
// grammar's top-level children.
func firstYaccRuleName(tree *core.STN) string {
	if tree.Sons() == 0 {
		return ""
	}
	last := tree.Son(tree.Sons() - 1)
	if last == nil || last.Sons() == 0 {
		return ""
	}
	first := last.Son(0)
	if first == nil {
		return ""
	}
	return first.Data
}

// topoSortSetNames orders names so that every set appears after every
// other set it references by identifier, so the generated init() can
// assign CharSet vars with plain value expressions: CharSet has no
// pointer-indirected reference the way core.Parser does, so a forward
// reference has to be resolved by ordering instead. A cycle (which a
// semantically valid grammar should never produce, since semantics.Check
// only checks rule left-recursion, not Set cycles) is broken silently by
// the visiting guard, the same defensive idiom semantics.findLeftRecursion
// uses.
func topoSortSetNames(names []string, bodies map[string]*core.STN) []string {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	deps := make(map[string][]string, len(names))
	for _, n := range names {
		var refs []string
		core.PreWalk(bodies[n], func(node *core.STN, level int) bool {
			if node.IsLeaf() && known[node.Data] {
				refs = append(refs, node.Data)
			}
			return true
		})
		deps[n] = refs
	}

	var order []string
	visited := make(map[string]bool, len(names))
	visiting := make(map[string]bool, len(names))
	var visit func(string)
	visit = func(n string) {
		if visited[n] || visiting[n] {
			return
		}
		visiting[n] = true
		for _, d := range deps[n] {
			visit(d)
		}
		visiting[n] = false
		visited[n] = true
		order = append(order, n)
	}
	for _, n := range names {
		visit(n)
	}
	return order
}

// exprFromSTN recursively renders body as a core.* constructor expression,
// following EBNF.cpp's GenerateRuleParser dispatch exactly, including its
// ordering: every exact-match operator tag ("^" lookahead, "!", "<<",
// ">>", ...) is checked before the corresponding prefixed semantic-action
// form ("^3" Root-by-index, "&\"name\"" Name, ...), since a prefix check
// alone would also match the bare tag.
//
// Every cross-rule reference goes through core.Reference(&ruleVar) rather
// than a bare var read: ruleVar's own init() assignment may run after this
// expression is constructed (forward or mutual reference), and a bare
// read would capture that var's zero value permanently — exactly the
// hazard core.Reference exists to avoid, and the same pattern
// ebnf/grammar.go itself relies on for its own mutually-recursive
// sub-grammars.
func exprFromSTN(body *core.STN, ctx renderCtx) string {
	if body == nil {
		return "core.Empty()"
	}
	if body.IsLeaf() {
		return leafExpr(body.Data, ctx)
	}

	switch {
	case body.Data == "&":
		return wrapVariadic("core.Sequence", body.Children, ctx)
	case body.Data == "|":
		return wrapVariadic("core.Choice", body.Children, ctx)
	case body.Data == "?":
		return fmt.Sprintf("core.Optional(%s)", exprFromSTN(body.Son(0), ctx))
	case body.Data == "+":
		return fmt.Sprintf("core.Plus(%s)", exprFromSTN(body.Son(0), ctx))
	case body.Data == "*":
		return fmt.Sprintf("core.Star(%s)", exprFromSTN(body.Son(0), ctx))
	case strings.HasPrefix(body.Data, "{") && strings.HasSuffix(body.Data, "}"):
		min, max := parseRepeatBound(body.Data)
		return fmt.Sprintf("core.Repeat(%d, %d, %s)", min, max, exprFromSTN(body.Son(0), ctx))
	case body.Data == "!":
		return fmt.Sprintf("core.NotAt(%s)", exprFromSTN(body.Son(0), ctx))
	case body.Data == "^":
		return fmt.Sprintf("core.At(%s)", exprFromSTN(body.Son(0), ctx))
	case body.Data == "<>": // "<...>" grouping
		return fmt.Sprintf("core.Ignore(%s)", exprFromSTN(body.Son(0), ctx))
	case body.Data == "[]": // "[...]" grouping
		return fmt.Sprintf("core.Token(%s)", exprFromSTN(body.Son(0), ctx))
	case strings.HasPrefix(body.Data, "^") && len(body.Data) > 1: // "-> ^N"
		n, _ := strconv.Atoi(body.Data[1:])
		return fmt.Sprintf("core.Root(%d, %s)", n, exprFromSTN(body.Son(0), ctx))
	case strings.HasPrefix(body.Data, "_"): // "-> _N"
		n, _ := strconv.Atoi(body.Data[1:])
		return fmt.Sprintf("core.Flat(%d, %s)", n, exprFromSTN(body.Son(0), ctx))
	case strings.HasPrefix(body.Data, "&") && len(body.Data) > 1: // "-> &\"name\""
		return fmt.Sprintf("core.Name(%s, true, %s)", body.Data[1:], exprFromSTN(body.Son(0), ctx))
	case strings.HasPrefix(body.Data, "?") && len(body.Data) > 1: // "-> ?\"name\""
		return fmt.Sprintf("core.Name(%s, false, %s)", body.Data[1:], exprFromSTN(body.Son(0), ctx))
	case body.Data == "<<":
		return fmt.Sprintf("core.Left(%s)", exprFromSTN(body.Son(0), ctx))
	case body.Data == ">>":
		return fmt.Sprintf("core.Right(%s)", exprFromSTN(body.Son(0), ctx))
	default:
		// An aggregation node without a recognized operator label: treat
		// as an implicit sequence of its children.
		return wrapVariadic("core.Sequence", body.Children, ctx)
	}
}

func wrapVariadic(factory string, children []*core.STN, ctx renderCtx) string {
	if len(children) == 1 {
		return exprFromSTN(children[0], ctx)
	}
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = exprFromSTN(c, ctx)
	}
	return fmt.Sprintf("%s(\n\t\t%s,\n\t)", factory, strings.Join(parts, ",\n\t\t"))
}

// parseRepeatBound parses a "{min,max}" or "{min}" bound, where max may be
// the literal "N" sentinel for unbounded, into core.Repeat's (min, max)
// arguments (max = -1 for unbounded).
func parseRepeatBound(data string) (min, max int) {
	inner := strings.TrimSuffix(strings.TrimPrefix(data, "{"), "}")
	parts := strings.SplitN(inner, ",", 2)
	min, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	max = min
	if len(parts) == 2 {
		upper := strings.TrimSpace(parts[1])
		if upper == "N" {
			max = -1
		} else {
			max, _ = strconv.Atoi(upper)
		}
	}
	return min, max
}

// leafExpr renders a single terminal: a literal string/char, one of the
// ANY/EMPTY/EOI/NL/CR/TB keyword leaves, or an identifier — resolved
// against ctx as a set reference, a scanner-rule reference, or a plain
// rule reference, in that order, matching EBNF.cpp's
// Contains(_sets, ...)/Contains(_scanner, ...)/fallback-Reference
// dispatch. NL/CR/TB and literal terminals are skip-wrapped only when
// ctx.inParser, mirroring the original's S(...) wrapping, which is gated
// on its _scanner argument being non-null only while generating
// PARSER-section rules.
func leafExpr(data string, ctx renderCtx) string {
	switch {
	case strings.HasPrefix(data, `"`) && strings.HasSuffix(data, `"`) && len(data) >= 2:
		inner := data[1 : len(data)-1]
		return wrapSkip(fmt.Sprintf("core.Word(%q)", inner), ctx)
	case strings.HasPrefix(data, "'") && strings.HasSuffix(data, "'") && len(data) >= 2:
		return wrapSkip(fmt.Sprintf("core.Char(core.SingleChar(%s))", charLiteral(data)), ctx)
	case data == "NL" || data == "CR" || data == "TB":
		return wrapSkip(fmt.Sprintf("core.Char(core.SingleChar(%s))", charLiteral(data)), ctx)
	case data == "ANY":
		return wrapSkip("core.Any()", ctx)
	case data == "EMPTY":
		return wrapSkip("core.Empty()", ctx)
	case data == "EOI":
		return wrapSkip("core.EndOfInput()", ctx)
	case isIdentifierLike(data):
		if ctx.sets[data] {
			return fmt.Sprintf("core.Char(%s)", setVarName(data))
		}
		if ctx.inParser && ctx.scanners[data] {
			return fmt.Sprintf("skip(core.Token(core.Reference(&%s)))", varName(data))
		}
		return fmt.Sprintf("core.Reference(&%s)", varName(data))
	default:
		return wrapSkip(fmt.Sprintf("core.Word(%q)", data), ctx)
	}
}

func wrapSkip(expr string, ctx renderCtx) string {
	if ctx.inParser {
		return fmt.Sprintf("skip(%s)", expr)
	}
	return expr
}

func isIdentifierLike(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

// setExprFromSTN recursively renders a Sets-section rule body as a
// core.CharSet-valued Go expression: union/intersection/difference
// operators, enumeration/range literals, full-range complement for "!",
// or a reference to another named set. Mirrors EBNF.cpp's
// GenerateSetExpression, except for "!": the original's GenerateSetExpression
// has no case for it at all (a Set complement parses via setValue's
// Root(1, Sequence(Tw("!"), ...)) but is never handled on the generator
// side, so the original silently mis-renders it as a bare identifier).
// Implemented here properly as range-complement rather than carried
// forward as a known-broken construct.
func setExprFromSTN(body *core.STN, setVar func(string) string) string {
	if body == nil {
		return "core.NewCharSet()"
	}
	if body.IsLeaf() {
		return setVar(body.Data)
	}
	switch body.Data {
	case "+":
		return fmt.Sprintf("(%s).Union(%s)", setExprFromSTN(body.Son(0), setVar), setExprFromSTN(body.Son(1), setVar))
	case "*":
		return fmt.Sprintf("(%s).Intersection(%s)", setExprFromSTN(body.Son(0), setVar), setExprFromSTN(body.Son(1), setVar))
	case "-":
		return fmt.Sprintf("(%s).Difference(%s)", setExprFromSTN(body.Son(0), setVar), setExprFromSTN(body.Son(1), setVar))
	case "!":
		return fmt.Sprintf("core.Range(0, 255).Difference(%s)", setExprFromSTN(body.Son(0), setVar))
	case "<EN>":
		parts := make([]string, len(body.Children))
		for i, c := range body.Children {
			parts[i] = charLiteral(c.Data)
		}
		return fmt.Sprintf("core.Enumeration(%s)", strings.Join(parts, ", "))
	case "<RG>":
		return fmt.Sprintf("core.Range(%s, %s)", charLiteral(body.Son(0).Data), charLiteral(body.Son(1).Data))
	default:
		return setVar(body.Data)
	}
}

// charLiteral renders a cteChar leaf (e.g. "'a'") or an NL/CR/TB keyword
// leaf as a Go rune-literal byte expression, mirroring EBNF.cpp's
// TranslateChar (which also special-cases "CR", even though its one call
// site in GenerateRuleParser's char-literal branch omits it from the
// triggering condition — included here since the byte-escaping itself is
// always intended, matching setEnumeration/setRange's own identifier
// alternative which accepts all three names equally).
func charLiteral(data string) string {
	switch data {
	case "NL":
		return `'\n'`
	case "CR":
		return `'\r'`
	case "TB":
		return `'\t'`
	default:
		return data
	}
}

// DumpTree renders tree as an indented preorder listing, one node per
// line, matching main.cpp's PrintVisitor. When showPosition is set, each
// line is annotated with the node's (row, col).
func DumpTree(tree *core.STN, showPosition bool) string {
	var sb strings.Builder
	core.PreWalk(tree, func(n *core.STN, level int) bool {
		sb.WriteString(strings.Repeat("\t", level))
		sb.WriteString(n.Data)
		if showPosition {
			fmt.Fprintf(&sb, "%s", n.Where)
		}
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}
