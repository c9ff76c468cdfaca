package core

import "strings"

// Error is a furthest-reach parse failure: a position and a deduplicated,
// insertion-ordered set of human-readable "expected" descriptions.
type Error struct {
	Where    Position
	Expected []string
}

// NewError builds an Error with a single expected description.
func NewError(where Position, expected string) Error {
	return Error{Where: where, Expected: []string{expected}}
}

// Truthy reports whether this Error actually carries information: either a
// non-default position, or a non-empty expected set.
func (e Error) Truthy() bool {
	return e.Where != (Position{}) || len(e.Expected) > 0
}

// Merge implements the furthest-reach monoid: if other reaches strictly
// further, it replaces e; if they tie, their expected sets are unioned
// (deduplicated, insertion order preserved); if other is shallower, it is
// discarded.
func (e *Error) Merge(other Error) {
	if !other.Truthy() {
		return
	}
	if !e.Truthy() {
		*e = other
		return
	}
	if other.Where.Greater(e.Where) {
		*e = other
		return
	}
	if other.Where == e.Where {
		e.Expected = unionStrings(e.Expected, other.Expected)
	}
	// other.Where is shallower than e.Where: discard.
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// String renders the error as a single-line diagnostic, e.g.
// "at (1, 3): expected one of: abc, abd".
func (e Error) String() string {
	if !e.Truthy() {
		return "no error"
	}
	switch len(e.Expected) {
	case 0:
		return "at " + e.Where.String() + ": parse failure"
	case 1:
		return "at " + e.Where.String() + ": expected " + e.Expected[0]
	default:
		return "at " + e.Where.String() + ": expected one of: " + strings.Join(e.Expected, ", ")
	}
}
