package core

// Word recognizes the literal string str exactly, emitting a leaf labeled
// with it, or rewinds and fails at the offset of the first mismatching
// byte. Memoized per the public-factory memoization contract.
func Word(str string) Parser {
	return Memo(&pWord{word: str})
}

type pAt struct {
	inner Parser
}

// At runs p, discards its tree, always rewinds, and returns p's result
// unchanged.
func At(p Parser) Parser {
	return Memo(&pAt{inner: p})
}

func (p *pAt) Parse(s Stream) (Result, *STN) {
	start := s.Where()
	res, _ := p.inner.Parse(s)
	s.Goto(start)
	return res, nil
}

func (p *pAt) Reset() { p.inner.Reset() }

type pNotAt struct {
	inner Parser
}

// NotAt runs p, discards its tree, always rewinds, and negates the match
// bit while keeping the error as-is.
func NotAt(p Parser) Parser {
	return Memo(&pNotAt{inner: p})
}

func (p *pNotAt) Parse(s Stream) (Result, *STN) {
	start := s.Where()
	res, _ := p.inner.Parse(s)
	s.Goto(start)
	res.Matched = !res.Matched
	return res, nil
}

func (p *pNotAt) Reset() { p.inner.Reset() }

type pRepeat struct {
	min, max int
	inner    Parser
}

// Repeat succeeds if p succeeds between min and max times (inclusive); use
// max = -1 for unbounded. It greedily consumes up to max; when a failed
// match attempt stops it, that attempt's error is preserved in a successful
// Result's Fail field (once max is reached, no further attempt is made).
// On success with 2+ child trees the aggregation node is kept; with 0 or 1
// it is collapsed per the aggregation-node collapse rule.
func Repeat(min, max int, p Parser) Parser {
	return Memo(&pRepeat{min: min, max: max, inner: p})
}

// Optional succeeds always, consuming p once if it matches.
func Optional(p Parser) Parser {
	return Repeat(0, 1, p)
}

// Star succeeds while p succeeds, zero or more times.
func Star(p Parser) Parser {
	return Repeat(0, -1, p)
}

// Plus succeeds only if p succeeds at least once, then behaves as Star.
func Plus(p Parser) Parser {
	return Repeat(1, -1, p)
}

func (p *pRepeat) Parse(s Stream) (Result, *STN) {
	start := s.Where()
	agg := NewSTN(start, "")
	count := 0
	var fail Error

	for {
		if p.max >= 0 && count >= p.max {
			break
		}
		before := s.Where()
		res, tree := p.inner.Parse(s)
		fail.Merge(res.Fail)
		if !res.Matched {
			s.Goto(before)
			if count < p.min {
				s.Goto(start)
				return Failure(fail), nil
			}
			break
		}
		count++
		agg.AddSon(tree)
	}

	if count < p.min {
		s.Goto(start)
		return Failure(fail), nil
	}
	return Success(fail), collapseAggregation(agg)
}

func (p *pRepeat) Reset() { p.inner.Reset() }

type pSeq struct {
	parsers []Parser
}

// Sequence requires every parser to succeed in order, aggregating their
// trees and errors; any failure rewinds to the start and fails. On full
// success the aggregation node is collapsed.
func Sequence(parsers ...Parser) Parser {
	return Memo(&pSeq{parsers: parsers})
}

func (p *pSeq) Parse(s Stream) (Result, *STN) {
	start := s.Where()
	agg := NewSTN(start, "")
	var fail Error
	for _, inner := range p.parsers {
		res, tree := inner.Parse(s)
		fail.Merge(res.Fail)
		if !res.Matched {
			s.Goto(start)
			return Failure(fail), nil
		}
		agg.AddSon(tree)
	}
	return Success(fail), collapseAggregation(agg)
}

func (p *pSeq) Reset() {
	for _, inner := range p.parsers {
		inner.Reset()
	}
}

type pAlt struct {
	parsers []Parser
}

// Choice tries each parser in turn; the first success wins and its tree is
// returned. No rewinding is needed between alternatives, since each
// sub-parser already rewinds on its own failure. All errors are
// accumulated via furthest-reach.
func Choice(parsers ...Parser) Parser {
	return Memo(&pAlt{parsers: parsers})
}

func (p *pAlt) Parse(s Stream) (Result, *STN) {
	var fail Error
	for _, inner := range p.parsers {
		res, tree := inner.Parse(s)
		fail.Merge(res.Fail)
		if res.Matched {
			return Success(fail), tree
		}
	}
	return Failure(fail), nil
}

func (p *pAlt) Reset() {
	for _, inner := range p.parsers {
		inner.Reset()
	}
}

type pReference struct {
	target *Parser
}

// Reference forwards Parse to *target, enabling mutually recursive
// grammars without ownership cycles: Reference does not own its target,
// and its Reset is a no-op (the referent is reset through its owner).
func Reference(target *Parser) Parser {
	return &pReference{target: target}
}

func (p *pReference) Parse(s Stream) (Result, *STN) {
	return (*p.target).Parse(s)
}

func (p *pReference) Reset() {}
