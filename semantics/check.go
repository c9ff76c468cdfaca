// Package semantics implements the static checks run over an EBNF parse
// tree before code generation: reserved-word, duplicate-name,
// undefined-reference, and left-recursion checks. Like ebnf and codegen,
// it is an external collaborator that observes the syntax tree only
// through the core.STN contract.
package semantics

import (
	"fmt"
	"sort"

	"github.com/yandroskaos/languages/core"
)

// reserved names a rule may not use: codegen renders ANY and EOI as the
// runtime's own primitives rather than as rule references, and the rest are
// the dialect's section keywords.
var reserved = map[string]bool{
	"ANY": true, "EOI": true, "GRAMMAR": true, "SETS": true,
	"COMMENTS": true, "SCANNER": true, "PARSER": true,
}

type rule struct {
	name  string
	where core.Position
	body  *core.STN
}

// CheckError is a diagnostic produced by Check; it carries the same
// Position/expected-style shape as core.Error, restated as a Go error.
type CheckError struct {
	Where core.Position
	Msg   string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("at %s: %s", e.Where, e.Msg)
}

// Check walks a grammar's parse tree (as produced by ebnf.Parse) and
// returns every semantic diagnostic found: reserved words, duplicate rule
// names, undefined references, and left recursion. A nil slice means the
// grammar is semantically clean.
func Check(tree *core.STN) []error {
	if tree == nil {
		return nil
	}

	var rules []rule
	// Children layout per ebnf.New's Grammar rule, after Root(1) promotes
	// the grammar name: [setsBlock?, commentsBlock?, scannerBlock?,
	// parserBlock]. Each block (when present) is labeled with its section
	// keyword and holds a flat list of Rule nodes; SetRule/LexRule/YaccRule's
	// Root(1) has moved each rule's Identifier into the node's own data,
	// leaving the rule body as its only child.
	for _, child := range tree.Children {
		collectRules(child, &rules)
	}

	var errs []error
	seen := make(map[string]rule)
	refs := make(map[string]bool)

	for _, r := range rules {
		if reserved[r.name] {
			errs = append(errs, &CheckError{Where: r.where, Msg: fmt.Sprintf("rule %q shadows a reserved word", r.name)})
		}
		if prev, ok := seen[r.name]; ok {
			errs = append(errs, &CheckError{Where: r.where, Msg: fmt.Sprintf("rule %q duplicates the one declared at %s", r.name, prev.where)})
			continue
		}
		seen[r.name] = r
	}

	for _, r := range rules {
		collectIdentifierRefs(r.body, refs)
	}
	undefined := make([]string, 0)
	for name := range refs {
		if _, ok := seen[name]; !ok && !reserved[name] {
			undefined = append(undefined, name)
		}
	}
	sort.Strings(undefined)
	for _, name := range undefined {
		errs = append(errs, &CheckError{Msg: fmt.Sprintf("undefined reference: %q", name)})
	}

	graph := make(map[string][]string, len(seen))
	for name, r := range seen {
		graph[name] = leftmostRefs(r.body)
	}
	for name, r := range seen {
		if cycle := findLeftRecursion(name, graph); cycle != "" {
			errs = append(errs, &CheckError{Where: r.where, Msg: fmt.Sprintf("left recursion: %s", cycle)})
		}
	}

	return errs
}

// collectRules gathers the Rule nodes held directly by one section block:
// a child is treated as a rule if it has data (the rule's name) and at
// least one child (its body, at Son(0)), matching SetRule/LexRule/YaccRule's
// Root(1, Sequence(Identifier, "=", Production, ";")) shape once Root(1)
// has promoted the identifier to the node's own data.
func collectRules(block *core.STN, out *[]rule) {
	if block == nil {
		return
	}
	for _, n := range block.Children {
		if n != nil && n.HasData() && n.Sons() >= 1 {
			*out = append(*out, rule{name: n.Data, where: n.Where, body: n.Son(0)})
		}
	}
}

// collectIdentifierRefs walks body and records every leaf that looks like
// a bare rule-name reference: a leaf whose data is a plain identifier
// (starts with a letter), as opposed to a literal or operator token.
func collectIdentifierRefs(body *core.STN, out map[string]bool) {
	if body == nil {
		return
	}
	core.PreWalk(body, func(n *core.STN, level int) bool {
		if n.IsLeaf() && isIdentifierLike(n.Data) {
			out[n.Data] = true
		}
		return true
	})
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

// leftmostRefs returns the identifier(s) reachable as the leftmost symbol
// of body, following Sequence/Choice structure conservatively: the first
// operand of each branch of a Choice ("|" node), and the first operand of
// any other node. Since ebnf's tree has already been shaped by
// Root/Flat/Name, we approximate "leftmost" as the first leaf encountered
// along the first child at each level.
func leftmostRefs(body *core.STN) []string {
	var out []string
	n := body
	for n != nil {
		if n.IsLeaf() {
			if isIdentifierLike(n.Data) {
				out = append(out, n.Data)
			}
			return out
		}
		if n.Data == "|" {
			for _, c := range n.Children {
				out = append(out, leftmostRefs(c)...)
			}
			return out
		}
		if len(n.Children) == 0 {
			return out
		}
		n = n.Children[0]
	}
	return out
}

// findLeftRecursion does a depth-first search over the rule-reference
// graph starting at start, returning a human-readable cycle description
// if start is reachable from itself, or "" if not.
func findLeftRecursion(start string, graph map[string][]string) string {
	visiting := map[string]bool{}
	var path []string

	var visit func(name string) bool
	visit = func(name string) bool {
		if name == start && len(path) > 0 {
			return true
		}
		if visiting[name] {
			return false
		}
		visiting[name] = true
		path = append(path, name)
		for _, next := range graph[name] {
			if next == start {
				return true
			}
			if visit(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		visiting[name] = false
		return false
	}

	for _, next := range graph[start] {
		if visit(next) {
			path = append([]string{start}, path...)
			return joinArrow(path)
		}
	}
	return ""
}

func joinArrow(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += " -> "
		}
		out += p
	}
	return out
}
