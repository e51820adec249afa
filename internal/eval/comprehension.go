package eval

import (
	"github.com/tokahuke/ryan/internal/syntax"
	"github.com/tokahuke/ryan/internal/value"
)

// evalListComprehension evaluates a `[elem for p in src ... if guard]`
// expression.
func (e *Evaluator) evalListComprehension(scope *Scope, lc *syntax.ListComprehension) (value.Value, error) {
	var out []value.Value
	err := e.iterateClauses(scope, lc.Clauses, lc.Guard, func(inner *Scope) error {
		v, err := e.EvalExpr(inner, lc.Element)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return value.Null(), err
	}
	return value.List(out), nil
}

// evalDictComprehension evaluates a `{key: val for p in src ... if
// guard}` expression.
func (e *Evaluator) evalDictComprehension(scope *Scope, dc *syntax.DictComprehension) (value.Value, error) {
	b := value.NewBuilder()
	err := e.iterateClauses(scope, dc.Clauses, dc.Guard, func(inner *Scope) error {
		kv, err := e.EvalExpr(inner, dc.Key)
		if err != nil {
			return err
		}
		key, ok := kv.AsText()
		if !ok {
			return e.fatalf("comprehension dict keys must evaluate to text, got `%s`", kv.String())
		}
		vv, err := e.EvalExpr(inner, dc.Value)
		if err != nil {
			return err
		}
		b.Set(key, vv)
		return nil
	})
	if err != nil {
		return value.Null(), err
	}
	return value.FromMap(b.Freeze()), nil
}

// iterateClauses walks `for` clauses outer-to-inner, binding each
// source element's pattern in turn. A pattern that fails to bind
// against a particular element is SILENTLY SKIPPED (per spec.md §9's
// standardized answer, overriding the inconsistent fatal-propagating
// behavior shown in original_source/ryan/src/comprehension.rs) rather
// than aborting the whole comprehension. Once every clause has bound,
// the optional trailing guard is checked and then body runs.
func (e *Evaluator) iterateClauses(scope *Scope, clauses []syntax.ForClause, guard syntax.Expr, body func(*Scope) error) error {
	if len(clauses) == 0 {
		if guard != nil {
			g, err := e.EvalExpr(scope, guard)
			if err != nil {
				return err
			}
			truth, terr := g.IsTrue()
			if terr != nil {
				return e.fatal(terr)
			}
			if !truth {
				return nil
			}
		}
		return body(scope)
	}

	clause := clauses[0]
	rest := clauses[1:]

	srcVal, err := e.EvalExpr(scope, clause.Source)
	if err != nil {
		return err
	}
	items, err := e.iterableItems(srcVal)
	if err != nil {
		return err
	}

	for _, item := range items {
		bound := make(map[string]value.Value)
		if bindErr := e.Bind(scope, clause.Pattern, item, bound); bindErr != nil {
			continue
		}
		childScope := scope.ChildWith(bound)
		if err := e.iterateClauses(childScope, rest, guard, body); err != nil {
			return err
		}
	}
	return nil
}

// iterableItems turns a List value into its elements directly, and a
// Map value into a list of [key, value] pairs so a `for [k, v] in
// someDict` pattern can destructure both at once.
func (e *Evaluator) iterableItems(v value.Value) ([]value.Value, error) {
	switch v.Kind() {
	case value.KindList:
		list, _ := v.AsList()
		return list, nil
	case value.KindMap:
		m, _ := v.AsMap()
		out := make([]value.Value, 0, m.Len())
		for _, k := range m.Keys() {
			val, _ := m.Get(k)
			out = append(out, value.List([]value.Value{value.Text(k), val}))
		}
		return out, nil
	}
	return nil, e.fatalf("cannot iterate over `%s`", v.String())
}
