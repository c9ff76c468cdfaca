package core

// All primitive parsers are stateless: Reset is a no-op for each of them.

type pChar struct {
	set CharSet
}

// Char recognizes any single byte in set, emitting a leaf labeled with the
// consumed character.
func Char(set CharSet) Parser {
	return &pChar{set: set}
}

func (p *pChar) Parse(s Stream) (Result, *STN) {
	where := s.Where()
	c, atEnd := s.Peek()
	if atEnd || !p.set.Contains(c) {
		return Failure(NewError(where, p.set.Name())), nil
	}
	s.Advance()
	return Success(Error{}), NewSTN(where, string(c))
}

func (p *pChar) Reset() {}

type pEmpty struct{}

// Empty always succeeds, consuming no input and producing no tree.
func Empty() Parser {
	return &pEmpty{}
}

func (p *pEmpty) Parse(s Stream) (Result, *STN) {
	return Success(Error{}), nil
}

func (p *pEmpty) Reset() {}

type pAny struct{}

// Any recognizes any single byte, failing only at end of input.
func Any() Parser {
	return &pAny{}
}

func (p *pAny) Parse(s Stream) (Result, *STN) {
	where := s.Where()
	c, atEnd := s.Peek()
	if atEnd {
		return Failure(NewError(where, "ANY")), nil
	}
	s.Advance()
	return Success(Error{}), NewSTN(where, string(c))
}

func (p *pAny) Reset() {}

type pEndOfInput struct{}

// EndOfInput succeeds iff the stream has no more bytes to read.
func EndOfInput() Parser {
	return &pEndOfInput{}
}

func (p *pEndOfInput) Parse(s Stream) (Result, *STN) {
	where := s.Where()
	if s.AtEnd() {
		return Success(Error{}), nil
	}
	return Failure(NewError(where, "EOI")), nil
}

func (p *pEndOfInput) Reset() {}

// pWord is the unmemoized core of Word; the public Word factory wraps it
// in Memo, per the core's memoization contract.
type pWord struct {
	word string
}

func (p *pWord) Parse(s Stream) (Result, *STN) {
	start := s.Where()
	for i := 0; i < len(p.word); i++ {
		if s.AtEnd() {
			failAt := s.Where()
			s.Goto(start)
			return Failure(NewError(failAt, p.word)), nil
		}
		c, _ := s.Peek()
		if c != p.word[i] {
			failAt := s.Where()
			s.Goto(start)
			return Failure(NewError(failAt, p.word)), nil
		}
		s.Advance()
	}
	return Success(Error{}), NewSTN(start, p.word)
}

func (p *pWord) Reset() {}
