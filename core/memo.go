package core

// memoEntry is a cached packrat replay point: the Result produced at a
// given start position, the position the stream ended up at, and an owned
// deep copy of the tree produced (nil on failure or on a treeless success).
type memoEntry struct {
	result Result
	end    Position
	tree   *STN
}

// memoParser is interposed over every combinator produced by the public
// factories, caching (Result, end-position, tree-copy) per start position
// so that unbounded backtracking over a PEG fragment stays linear-time.
type memoParser struct {
	inner Parser
	table map[Position]memoEntry
}

// Memo wraps p with a packrat memoization table keyed by start position.
func Memo(inner Parser) Parser {
	return &memoParser{inner: inner, table: make(map[Position]memoEntry)}
}

func (m *memoParser) Parse(s Stream) (Result, *STN) {
	start := s.Where()
	if entry, ok := m.table[start]; ok {
		s.Goto(entry.end)
		return entry.result, deepCopySTN(entry.tree)
	}

	result, tree := m.inner.Parse(s)
	end := s.Where()
	m.table[start] = memoEntry{result: result, end: end, tree: deepCopySTN(tree)}
	return result, deepCopySTN(tree)
}

// Reset drops every cached tree and clears the table, then recursively
// resets the inner parser. A parser must be reset between top-level
// parses of different streams, or the memo table will reference foreign
// positions. Calling Reset while a Parse on this parser is still running is
// a precondition violation; it is not detected at runtime.
func (m *memoParser) Reset() {
	for k := range m.table {
		delete(m.table, k)
	}
	m.inner.Reset()
}
