package value

import "github.com/tokahuke/ryan/internal/syntax"

// Alternative is one (pattern, body, captures) clause of a pattern-match
// value. Captures are a snapshot of the free variables the body needs,
// taken once at definition time (spec.md §4.4): this is why a closure
// here never retains its whole defining scope, and so can never form a
// reference cycle.
type Alternative struct {
	Pattern  syntax.Pattern
	Body     *syntax.BlockExpr
	Captures map[string]Value
}

// PatternMatches is a named, ordered list of match alternatives — the
// runtime representation of every `let name pattern = ...` binding.
// Redefining the same name appends a new alternative after the existing
// ones (old-alternatives-first dispatch order); WithAppended returns
// a value sharing no backing array with either input, so earlier
// PatternMatches values observed by other closures are unaffected.
type PatternMatches struct {
	Name         string
	Alternatives []*Alternative
}

// WithAppended returns a new PatternMatches with alt appended after the
// existing alternatives.
func (pm *PatternMatches) WithAppended(alt *Alternative) *PatternMatches {
	next := make([]*Alternative, len(pm.Alternatives)+1)
	copy(next, pm.Alternatives)
	next[len(pm.Alternatives)] = alt
	return &PatternMatches{Name: pm.Name, Alternatives: next}
}

// NativePatternMatch is a pattern match rule whose body is a Go
// function instead of a ryan block — how native.Registry built-ins are
// represented as ordinary callable Values.
type NativePatternMatch struct {
	Identifier string
	Pattern    syntax.Pattern
	Func       func(Value) (Value, error)
}
