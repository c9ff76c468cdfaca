// Package core implements the parser-combinator runtime: the shared
// Stream/Error/Result/Syntax-Tree data model, the primitive and
// compositional parsers built on it, packrat memoization for backtracking
// performance, and the tree-shaping operators that let a grammar author
// reshape a raw parse tree into a clean abstract syntax tree.
package core

// Parser is the common interface implemented by every primitive,
// combinator, and shaping wrapper in this package.
type Parser interface {
	// Parse consumes from s and returns a Result plus, on success, a tree
	// owned by the caller. It never leaves a partial tree reachable on
	// failure, and on failure it always rewinds s to the position it was
	// invoked at.
	Parse(s Stream) (Result, *STN)

	// Reset clears any memoized state recursively through owned
	// sub-parsers. A parser must be reset between two top-level Parse
	// calls against different streams.
	Reset()
}
