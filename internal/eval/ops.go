package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/tokahuke/ryan/internal/rerr"
	"github.com/tokahuke/ryan/internal/syntax"
	"github.com/tokahuke/ryan/internal/value"
)

// evalBinaryOp dispatches every named binary operator plus the
// juxtaposition ("apply") node the parser builds for function
// application, grounded on original_source/ryan/src/operation.rs and
// the calling convention confirmed in parser/value.rs.
func (e *Evaluator) evalBinaryOp(scope *Scope, ex *syntax.BinaryOp) (value.Value, error) {
	switch ex.Op {
	case "and":
		left, err := e.EvalExpr(scope, ex.Left)
		if err != nil {
			return value.Null(), err
		}
		lt, terr := left.IsTrue()
		if terr != nil {
			return value.Null(), e.fatal(terr)
		}
		if !lt {
			return value.Bool(false), nil
		}
		right, err := e.EvalExpr(scope, ex.Right)
		if err != nil {
			return value.Null(), err
		}
		rt, terr := right.IsTrue()
		if terr != nil {
			return value.Null(), e.fatal(terr)
		}
		return value.Bool(rt), nil

	case "or":
		left, err := e.EvalExpr(scope, ex.Left)
		if err != nil {
			return value.Null(), err
		}
		lt, terr := left.IsTrue()
		if terr != nil {
			return value.Null(), e.fatal(terr)
		}
		if lt {
			return value.Bool(true), nil
		}
		right, err := e.EvalExpr(scope, ex.Right)
		if err != nil {
			return value.Null(), err
		}
		rt, terr := right.IsTrue()
		if terr != nil {
			return value.Null(), e.fatal(terr)
		}
		return value.Bool(rt), nil

	case "?":
		left, err := e.EvalExpr(scope, ex.Left)
		if err != nil {
			return value.Null(), err
		}
		if left.Kind() != value.KindNull {
			return left, nil
		}
		return e.EvalExpr(scope, ex.Right)

	case "apply":
		left, err := e.EvalExpr(scope, ex.Left)
		if err != nil {
			return value.Null(), err
		}
		right, err := e.EvalExpr(scope, ex.Right)
		if err != nil {
			return value.Null(), err
		}
		return e.apply(left, right)
	}

	left, err := e.EvalExpr(scope, ex.Left)
	if err != nil {
		return value.Null(), err
	}
	right, err := e.EvalExpr(scope, ex.Right)
	if err != nil {
		return value.Null(), err
	}

	switch ex.Op {
	case "==":
		return value.Bool(value.Equal(left, right)), nil
	case "!=":
		return value.Bool(!value.Equal(left, right)), nil
	case ">", ">=", "<", "<=":
		cmp, ok := value.Compare(left, right)
		if !ok {
			return value.Null(), e.fatalf("cannot compare `%s` and `%s`", left.String(), right.String())
		}
		switch ex.Op {
		case ">":
			return value.Bool(cmp > 0), nil
		case ">=":
			return value.Bool(cmp >= 0), nil
		case "<":
			return value.Bool(cmp < 0), nil
		default:
			return value.Bool(cmp <= 0), nil
		}
	case ":":
		typ, ok := right.AsType()
		if !ok {
			return value.Null(), e.fatalf("right-hand side of `:` must be a type, got `%s`", right.String())
		}
		return value.Bool(typ.Matches(left)), nil
	case "in":
		return e.evalIn(left, right)
	case "+":
		return e.evalAdd(left, right)
	case "-":
		return e.evalArithmetic(left, right, '-')
	case "*":
		return e.evalArithmetic(left, right, '*')
	case "/":
		return e.evalArithmetic(left, right, '/')
	case "%":
		return e.evalArithmetic(left, right, '%')
	}

	return value.Null(), e.fatalf("unsupported binary operator %q", ex.Op)
}

func (e *Evaluator) evalIn(left, right value.Value) (value.Value, error) {
	switch right.Kind() {
	case value.KindList:
		list, _ := right.AsList()
		for _, item := range list {
			if value.Equal(left, item) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case value.KindMap:
		m, _ := right.AsMap()
		key, ok := left.AsText()
		if !ok {
			return value.Bool(false), nil
		}
		_, has := m.Get(key)
		return value.Bool(has), nil
	case value.KindText:
		hay, _ := right.AsText()
		needle, ok := left.AsText()
		if !ok {
			return value.Null(), e.fatalf("`in` over text requires a text needle, got `%s`", left.String())
		}
		return value.Bool(strings.Contains(hay, needle)), nil
	}
	return value.Null(), e.fatalf("`in` is not supported over `%s`", right.String())
}

func (e *Evaluator) evalAdd(left, right value.Value) (value.Value, error) {
	if left.Kind() == value.KindText && right.Kind() == value.KindText {
		a, _ := left.AsText()
		b, _ := right.AsText()
		return value.Text(a + b), nil
	}
	if left.Kind() == value.KindList && right.Kind() == value.KindList {
		a, _ := left.AsList()
		b, _ := right.AsList()
		out := make([]value.Value, 0, len(a)+len(b))
		out = append(out, a...)
		out = append(out, b...)
		return value.List(out), nil
	}
	if left.Kind() == value.KindMap && right.Kind() == value.KindMap {
		a, _ := left.AsMap()
		b, _ := right.AsMap()
		return value.FromMap(value.Merge(a, b)), nil
	}
	return e.evalArithmetic(left, right, '+')
}

// evalArithmetic implements +,-,*,/,% over Integer/Float, promoting to
// Float on any mixing. Integer divide/remainder by zero yields NaN
// rather than a fatal error, per spec.md §9's standardized answer to
// that open question.
func (e *Evaluator) evalArithmetic(left, right value.Value, op byte) (value.Value, error) {
	li, liOK := left.AsInteger()
	ri, riOK := right.AsInteger()
	if liOK && riOK {
		switch op {
		case '+':
			return value.Integer(li + ri), nil
		case '-':
			return value.Integer(li - ri), nil
		case '*':
			return value.Integer(li * ri), nil
		case '/':
			if ri == 0 {
				return value.Float(math.NaN()), nil
			}
			return value.Integer(li / ri), nil
		case '%':
			if ri == 0 {
				return value.Float(math.NaN()), nil
			}
			return value.Integer(li % ri), nil
		}
	}

	lf, lfOK := asFloatOperand(left)
	rf, rfOK := asFloatOperand(right)
	if lfOK && rfOK {
		switch op {
		case '+':
			return value.Float(lf + rf), nil
		case '-':
			return value.Float(lf - rf), nil
		case '*':
			return value.Float(lf * rf), nil
		case '/':
			return value.Float(lf / rf), nil
		case '%':
			return value.Float(math.Mod(lf, rf)), nil
		}
	}

	return value.Null(), e.fatalf("cannot apply `%c` to `%s` and `%s`", op, left.String(), right.String())
}

func asFloatOperand(v value.Value) (float64, bool) {
	if f, ok := v.AsFloat(); ok {
		return f, true
	}
	if i, ok := v.AsInteger(); ok {
		return float64(i), true
	}
	return 0, false
}

// apply implements juxtaposition: calling a PatternMatches tries each
// alternative in definition order via Bind, falling through to the
// next on a recoverable BindError; calling a NativePatternMatch just
// invokes its Func; applying a List/Map to a List treats the List as
// a path and delegates to ExtractPath (so `container[a, b]`-shaped
// juxtaposition reads the same as the `[...]` postfix form).
func (e *Evaluator) apply(left, right value.Value) (value.Value, error) {
	if pm, ok := left.AsPatternMatches(); ok {
		for _, alt := range pm.Alternatives {
			captureScope := NewRootScope()
			for k, v := range alt.Captures {
				captureScope.Set(k, v)
			}
			bound := make(map[string]value.Value)
			if bindErr := e.Bind(captureScope, alt.Pattern, right, bound); bindErr != nil {
				continue
			}
			altScope := captureScope.ChildWith(bound)
			e.pushFrame(rerr.Frame(fmt.Sprintf("Substituting pattern %s", displayName(pm.Name))))
			result, err := e.EvalBlock(altScope, alt.Body)
			e.popFrame()
			return result, err
		}
		return value.Null(), e.fatalf("no alternative of %s matched `%s`", displayName(pm.Name), right.String())
	}

	if npm, ok := left.AsNativePatternMatch(); ok {
		e.pushFrame(rerr.Frame(fmt.Sprintf("Calling %s", npm.Identifier)))
		defer e.popFrame()
		out, err := npm.Func(right)
		if err != nil {
			return value.Null(), e.fatal(err)
		}
		return out, nil
	}

	if (left.Kind() == value.KindList || left.Kind() == value.KindMap) && right.Kind() == value.KindList {
		path, _ := right.AsList()
		out, err := left.ExtractPath(path)
		if err != nil {
			return value.Null(), e.fatal(err)
		}
		return out, nil
	}

	return value.Null(), e.fatalf("cannot apply `%s` to `%s`", left.String(), right.String())
}

func displayName(name string) string {
	if name == "" {
		return "match"
	}
	return name
}
