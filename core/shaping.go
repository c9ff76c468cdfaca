package core

import "strings"

// All tree-shaping wrappers are no-ops when their precondition is not met:
// they never fail, only pass the tree through unshaped.

type pToken struct {
	inner Parser
}

// Token runs p; on success with a non-null tree, it flattens every leaf's
// data (collected in pre-order) into a single new leaf at the original
// start position, destroying the original subtree. Used to flatten
// lexical productions.
func Token(p Parser) Parser {
	return &pToken{inner: p}
}

func (p *pToken) Parse(s Stream) (Result, *STN) {
	start := s.Where()
	res, tree := p.inner.Parse(s)
	if !res.Matched || tree == nil {
		return res, tree
	}
	var sb strings.Builder
	collectLeafData(tree, &sb)
	return res, NewSTN(start, sb.String())
}

func collectLeafData(n *STN, sb *strings.Builder) {
	if n.IsLeaf() {
		sb.WriteString(n.Data)
		return
	}
	for _, c := range n.Children {
		collectLeafData(c, sb)
	}
}

func (p *pToken) Reset() { p.inner.Reset() }

type pIgnore struct {
	inner Parser
}

// Ignore runs p, destroys its tree, and returns the result with no tree.
func Ignore(p Parser) Parser {
	return &pIgnore{inner: p}
}

func (p *pIgnore) Parse(s Stream) (Result, *STN) {
	res, _ := p.inner.Parse(s)
	return res, nil
}

func (p *pIgnore) Reset() { p.inner.Reset() }

type pClear struct {
	inner Parser
}

// Clear runs p and clears any accumulated error in the result, leaving the
// match/tree unchanged.
func Clear(p Parser) Parser {
	return &pClear{inner: p}
}

func (p *pClear) Parse(s Stream) (Result, *STN) {
	res, tree := p.inner.Parse(s)
	return res.Clear(), tree
}

func (p *pClear) Reset() { p.inner.Reset() }

type pName struct {
	name   string
	insert bool
	inner  Parser
}

// Name runs p and labels the result with name: a null tree becomes a fresh
// named leaf when insert is set (or stays null otherwise); a tree that
// already has data either gets wrapped under a new named node (insert) or
// is left unchanged; a dataless tree simply gets its data set to name.
func Name(name string, insert bool, p Parser) Parser {
	return &pName{name: name, insert: insert, inner: p}
}

func (p *pName) Parse(s Stream) (Result, *STN) {
	start := s.Where()
	res, tree := p.inner.Parse(s)
	if !res.Matched {
		return res, tree
	}
	if tree == nil {
		if p.insert {
			return res, NewSTN(start, p.name)
		}
		return res, nil
	}
	if tree.HasData() {
		if p.insert {
			wrapper := NewSTN(tree.Where, p.name)
			wrapper.AddSon(tree)
			return res, wrapper
		}
		return res, tree
	}
	tree.Data = p.name
	return res, tree
}

func (p *pName) Reset() { p.inner.Reset() }

type pRoot struct {
	idx   int
	inner Parser
}

// Root promotes the child at the 1-based index idx (negative counts from
// the end) to be the new root of p's result: its data and position replace
// the parent's, and its own children are spliced back in at the promoted
// position. It is a no-op if the tree already has data, if idx is 0, or if
// |idx| exceeds the child count.
func Root(idx int, p Parser) Parser {
	return &pRoot{idx: idx, inner: p}
}

func (p *pRoot) Parse(s Stream) (Result, *STN) {
	res, tree := p.inner.Parse(s)
	if !res.Matched || tree == nil || p.idx == 0 || tree.HasData() {
		return res, tree
	}
	n := len(tree.Children)
	i := resolveIndex(p.idx, n)
	if i < 0 || i >= n {
		return res, tree
	}
	promoted := tree.Children[i]
	merged := make([]*STN, 0, n-1+len(promoted.Children))
	merged = append(merged, tree.Children[:i]...)
	merged = append(merged, promoted.Children...)
	merged = append(merged, tree.Children[i+1:]...)
	tree.Children = merged
	tree.Data = promoted.Data
	tree.Where = promoted.Where
	return res, tree
}

func (p *pRoot) Reset() { p.inner.Reset() }

type pFlat struct {
	idx   int
	inner Parser
}

// Flat selects the child at the 1-based index idx (negative counts from
// the end); if that child has no data, it replaces it in place with the
// pre-order list of every node in its subtree that does have data,
// discarding the dataless skeleton nodes. No-op if idx is 0, out of range,
// or the selected child itself has data.
func Flat(idx int, p Parser) Parser {
	return &pFlat{idx: idx, inner: p}
}

func (p *pFlat) Parse(s Stream) (Result, *STN) {
	res, tree := p.inner.Parse(s)
	if !res.Matched || tree == nil || p.idx == 0 {
		return res, tree
	}
	n := len(tree.Children)
	i := resolveIndex(p.idx, n)
	if i < 0 || i >= n {
		return res, tree
	}
	selected := tree.Children[i]
	if selected.HasData() {
		return res, tree
	}
	var flat []*STN
	collectDataNodes(selected, &flat)
	merged := make([]*STN, 0, n-1+len(flat))
	merged = append(merged, tree.Children[:i]...)
	merged = append(merged, flat...)
	merged = append(merged, tree.Children[i+1:]...)
	tree.Children = merged
	return res, tree
}

func collectDataNodes(n *STN, out *[]*STN) {
	if n.HasData() {
		*out = append(*out, n)
		return
	}
	for _, c := range n.Children {
		collectDataNodes(c, out)
	}
}

func (p *pFlat) Reset() { p.inner.Reset() }

// leftRightPrecondition reports whether tree's children form the
// "[a, op1, b, op2, c, ...]" shape both Left and Right require: odd
// length, and every 0-based odd-indexed child (the operators) is a leaf.
func leftRightPrecondition(tree *STN) bool {
	n := len(tree.Children)
	if n < 3 || n%2 == 0 {
		return false
	}
	for i := 1; i < n; i += 2 {
		if !tree.Children[i].IsLeaf() {
			return false
		}
	}
	return true
}

type pLeft struct {
	inner Parser
}

// Left rotates a "[a, op1, b, op2, c, ...]" child list into a
// left-associative binary tree: ((a op1 b) op2 c) ... . No-op if the
// precondition is not met.
func Left(p Parser) Parser {
	return &pLeft{inner: p}
}

func (p *pLeft) Parse(s Stream) (Result, *STN) {
	res, tree := p.inner.Parse(s)
	if !res.Matched || tree == nil || !leftRightPrecondition(tree) {
		return res, tree
	}
	n := len(tree.Children)
	acc := tree.Children[0]
	for i := 1; i+1 < n; i += 2 {
		op := tree.Children[i]
		rhs := tree.Children[i+1]
		node := NewSTN(acc.Where, op.Data)
		node.AddSon(acc)
		node.AddSon(rhs)
		acc = node
	}
	return res, acc
}

func (p *pLeft) Reset() { p.inner.Reset() }

type pRight struct {
	inner Parser
}

// Right rotates a "[a, op1, b, op2, c, ...]" child list into a
// right-associative binary tree: a op1 (b op2 (c ...)). No-op if the
// precondition is not met.
func Right(p Parser) Parser {
	return &pRight{inner: p}
}

func (p *pRight) Parse(s Stream) (Result, *STN) {
	res, tree := p.inner.Parse(s)
	if !res.Matched || tree == nil || !leftRightPrecondition(tree) {
		return res, tree
	}
	n := len(tree.Children)
	acc := tree.Children[n-1]
	for i := n - 2; i >= 1; i -= 2 {
		op := tree.Children[i]
		lhs := tree.Children[i-1]
		node := NewSTN(lhs.Where, op.Data)
		node.AddSon(lhs)
		node.AddSon(acc)
		acc = node
	}
	return res, acc
}

func (p *pRight) Reset() { p.inner.Reset() }
