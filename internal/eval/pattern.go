package eval

import (
	"fmt"

	"github.com/tokahuke/ryan/internal/syntax"
	"github.com/tokahuke/ryan/internal/value"
)

// BindErrorKind tags why a pattern failed to bind against a value. This
// taxonomy deliberately does NOT go through the fatal-error channel:
// comprehensions and pattern-match dispatch both need a bind failure as
// an ordinary recoverable result so they can try the next alternative
// (or silently skip, for a comprehension clause) instead of aborting
// the whole program.
type BindErrorKind int

const (
	WrongType BindErrorKind = iota
	WrongListLength
	TooFewValuesInList
	MissingKey
	MatchIsNonStrict
	NoMatch
)

// BindError is the recoverable outcome of a failed pattern bind.
type BindError struct {
	Kind    BindErrorKind
	Message string
}

func (e *BindError) Error() string { return e.Message }

func bindErr(kind BindErrorKind, format string, args ...any) *BindError {
	return &BindError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Bind attempts to match v against pattern, writing any introduced
// bindings into out. Returns nil on success.
func (e *Evaluator) Bind(scope *Scope, pattern syntax.Pattern, v value.Value, out map[string]value.Value) *BindError {
	switch pat := pattern.(type) {
	case syntax.PatWildcard:
		return nil

	case syntax.PatIdentifier:
		if pat.TypeGuard != nil {
			guardType, err := e.evalTypeExpr(scope, pat.TypeGuard)
			if err != nil {
				return bindErr(WrongType, "%s", err.Error())
			}
			if !guardType.Matches(v) {
				return bindErr(WrongType, "value `%s` does not match type %s", v.String(), guardType.String())
			}
		}
		out[pat.Name] = v
		return nil

	case syntax.PatLiteral:
		if !literalMatches(pat.Lit, v) {
			return bindErr(NoMatch, "value `%s` does not match literal %s", v.String(), pat.Lit.Text)
		}
		return nil

	case syntax.PatList:
		list, ok := v.AsList()
		if !ok {
			return bindErr(WrongType, "expected a list, got `%s`", v.String())
		}
		if len(list) != len(pat.Elems) {
			return bindErr(WrongListLength, "expected a list of length %d but got length %d", len(pat.Elems), len(list))
		}
		for i, sub := range pat.Elems {
			if err := e.Bind(scope, sub, list[i], out); err != nil {
				return err
			}
		}
		return nil

	case syntax.PatHead:
		list, ok := v.AsList()
		if !ok {
			return bindErr(WrongType, "expected a list, got `%s`", v.String())
		}
		if len(list) < len(pat.Elems) {
			return bindErr(TooFewValuesInList, "expected at least %d values but got %d", len(pat.Elems), len(list))
		}
		for i, sub := range pat.Elems {
			if err := e.Bind(scope, sub, list[i], out); err != nil {
				return err
			}
		}
		rest := append([]value.Value{}, list[len(pat.Elems):]...)
		return e.Bind(scope, pat.Rest, value.List(rest), out)

	case syntax.PatTail:
		list, ok := v.AsList()
		if !ok {
			return bindErr(WrongType, "expected a list, got `%s`", v.String())
		}
		if len(list) < len(pat.Elems) {
			return bindErr(TooFewValuesInList, "expected at least %d values but got %d", len(pat.Elems), len(list))
		}
		// pairwise from the right: the last pattern element binds the
		// last list value, and so on, matching the original's
		// `.rev().zip(...rev())`.
		n := len(pat.Elems)
		headLen := len(list) - n
		for i := 0; i < n; i++ {
			if err := e.Bind(scope, pat.Elems[i], list[headLen+i], out); err != nil {
				return err
			}
		}
		rest := append([]value.Value{}, list[:headLen]...)
		return e.Bind(scope, pat.Rest, value.List(rest), out)

	case syntax.PatDict:
		m, ok := v.AsMap()
		if !ok {
			return bindErr(WrongType, "expected a map, got `%s`", v.String())
		}
		for _, item := range pat.Items {
			val, present := m.Get(item.Key)
			if !present {
				return bindErr(MissingKey, "missing key %q", item.Key)
			}
			if err := e.Bind(scope, item.Pattern, val, out); err != nil {
				return err
			}
		}
		return nil

	case syntax.PatDictStrict:
		m, ok := v.AsMap()
		if !ok {
			return bindErr(WrongType, "expected a map, got `%s`", v.String())
		}
		if m.Len() != len(pat.Items) {
			return bindErr(MatchIsNonStrict, "expected exactly %d keys but map has %d", len(pat.Items), m.Len())
		}
		for _, item := range pat.Items {
			val, present := m.Get(item.Key)
			if !present {
				return bindErr(MissingKey, "missing key %q", item.Key)
			}
			if err := e.Bind(scope, item.Pattern, val, out); err != nil {
				return err
			}
		}
		return nil
	}

	return bindErr(NoMatch, "unsupported pattern")
}

func literalMatches(lit *syntax.Literal, v value.Value) bool {
	switch lit.Kind {
	case syntax.LitInteger:
		i, ok := v.AsInteger()
		return ok && i == lit.Int
	case syntax.LitFloat:
		f, ok := v.AsFloat()
		return ok && f == lit.Flt
	case syntax.LitBool:
		b, ok := v.AsBool()
		return ok && b == lit.Bool
	case syntax.LitText:
		s, ok := v.AsText()
		return ok && s == lit.Text
	case syntax.LitNull:
		return v.Kind() == value.KindNull
	}
	return false
}
