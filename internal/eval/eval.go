// Package eval implements the ryan tree-walking evaluator: scopes,
// block/binding evaluation, pattern-match dispatch with captures,
// operators, comprehensions, and type-expression evaluation. Grounded
// on the teacher's matcher.Bindings (a map[string]any copied at branch
// points, the direct model for Scope) and its crossJoin cartesian-merge
// shape (the model for comprehension nested-for scope merging), plus
// original_source/ryan/src/parser/{pattern,block,binding,operation,
// comprehension}.rs for exact binding/operator/comprehension semantics.
package eval

import (
	"fmt"

	"github.com/tokahuke/ryan/internal/imports"
	"github.com/tokahuke/ryan/internal/native"
	"github.com/tokahuke/ryan/internal/rerr"
	"github.com/tokahuke/ryan/internal/syntax"
	"github.com/tokahuke/ryan/internal/value"
)

// Evaluator is one evaluation session: the native-function registry, the
// shared import state, the current file (for relative import
// resolution), and the live context-stack of Frames describing what's
// currently executing (spec.md §7's "Running file" / "Evaluating
// binding X" / "Loading import …" frames), used to tag any fatal error
// raised mid-evaluation.
type Evaluator struct {
	Registry    *native.Registry
	Imports     *imports.State
	CurrentFile string

	frames      []rerr.Frame
	importCache map[string]value.Value
}

// New builds an Evaluator. registry may be native.Default(); importState
// may be nil for a hermetic evaluator (imports.NewState(imports.NoImport{})).
func New(registry *native.Registry, importState *imports.State, currentFile string) *Evaluator {
	if registry == nil {
		registry = native.Default()
	}
	if importState == nil {
		importState = imports.NewState(imports.NoImport{})
	}
	return &Evaluator{
		Registry:    registry,
		Imports:     importState,
		CurrentFile: currentFile,
		importCache: make(map[string]value.Value),
	}
}

// RootScope returns a fresh top-level scope seeded with every
// registered built-in.
func (e *Evaluator) RootScope() *Scope {
	scope := NewRootScope()
	for _, name := range e.Registry.Names() {
		v, _ := e.Registry.Lookup(name)
		scope.Set(name, v)
	}
	return scope
}

// --- context stack ---

func (e *Evaluator) pushFrame(f rerr.Frame) {
	e.frames = append(e.frames, f)
}

func (e *Evaluator) popFrame() {
	e.frames = e.frames[:len(e.frames)-1]
}

func (e *Evaluator) frameSnapshot() []rerr.Frame {
	out := make([]rerr.Frame, len(e.frames))
	copy(out, e.frames)
	return out
}

func (e *Evaluator) fatalf(format string, args ...any) error {
	return rerr.Newf(rerr.CodeEval, e.frameSnapshot(), format, args...)
}

func (e *Evaluator) fatal(cause error) error {
	return rerr.New(rerr.CodeEval, cause, e.frameSnapshot())
}

// --- top-level entry points ---

// Run parses and evaluates a whole program's source text.
func Run(e *Evaluator, source string) (value.Value, error) {
	block, err := syntax.Parse(e.CurrentFile, source)
	if err != nil {
		return value.Null(), err
	}
	e.pushFrame(rerr.Frame(fmt.Sprintf("Running file %q", e.CurrentFile)))
	defer e.popFrame()
	return e.EvalBlock(e.RootScope(), block)
}

// EvalBlock evaluates a block's bindings in order, in a fresh child
// scope, and returns its final expression's value (or null if absent).
func (e *Evaluator) EvalBlock(scope *Scope, block *syntax.BlockExpr) (value.Value, error) {
	local := scope.Child()

	for _, binding := range block.Bindings {
		if err := e.evalBinding(local, binding); err != nil {
			return value.Null(), err
		}
	}

	if block.Result == nil {
		return value.Null(), nil
	}
	return e.EvalExpr(local, block.Result)
}

func (e *Evaluator) evalBinding(scope *Scope, binding syntax.Binding) error {
	switch b := binding.(type) {
	case *syntax.PatternMatchDef:
		e.pushFrame(rerr.Frame(fmt.Sprintf("Evaluating binding %s", b.Identifier)))
		defer e.popFrame()

		captures := captureSnapshot(scope, b.Pattern, b.Body)
		alt := &value.Alternative{Pattern: b.Pattern, Body: b.Body, Captures: captures}

		if existing, ok := scope.Remove(b.Identifier); ok {
			if pm, isPM := existing.AsPatternMatches(); isPM {
				scope.Set(b.Identifier, value.FromPatternMatches(pm.WithAppended(alt)))
				return nil
			}
		}
		pm := &value.PatternMatches{Name: b.Identifier, Alternatives: []*value.Alternative{alt}}
		scope.Set(b.Identifier, value.FromPatternMatches(pm))
		return nil

	case *syntax.Destructuring:
		result, err := e.EvalBlock(scope, b.Body)
		if err != nil {
			return err
		}
		bound := make(map[string]value.Value)
		if bindErr := e.Bind(scope, b.Pattern, result, bound); bindErr != nil {
			return e.fatalf("destructuring failed: %s", bindErr.Error())
		}
		for k, v := range bound {
			scope.Set(k, v)
		}
		return nil

	case *syntax.TypeDef:
		t, err := e.evalTypeExpr(scope, b.Type)
		if err != nil {
			return e.fatal(err)
		}
		scope.Set(b.Identifier, value.FromType(t))
		return nil
	}

	return e.fatalf("unsupported binding form")
}

// EvalExpr evaluates a single expression node against scope.
func (e *Evaluator) EvalExpr(scope *Scope, expr syntax.Expr) (value.Value, error) {
	switch ex := expr.(type) {
	case *syntax.Literal:
		return e.evalLiteral(scope, ex)

	case *syntax.TemplateString:
		return e.evalTemplateString(scope, ex)

	case *syntax.ListLit:
		return e.evalListLit(scope, ex)

	case *syntax.DictLit:
		return e.evalDictLit(scope, ex)

	case *syntax.Conditional:
		cond, err := e.EvalExpr(scope, ex.Cond)
		if err != nil {
			return value.Null(), err
		}
		truth, terr := cond.IsTrue()
		if terr != nil {
			return value.Null(), e.fatal(terr)
		}
		if truth {
			return e.EvalExpr(scope, ex.Then)
		}
		return e.EvalExpr(scope, ex.Else)

	case *syntax.BinaryOp:
		return e.evalBinaryOp(scope, ex)

	case *syntax.PrefixOp:
		return e.evalPrefixOp(scope, ex)

	case *syntax.PostfixOp:
		return e.evalPostfixOp(scope, ex)

	case *syntax.Import:
		return e.evalImport(scope, ex)

	case *syntax.ListComprehension:
		return e.evalListComprehension(scope, ex)

	case *syntax.DictComprehension:
		return e.evalDictComprehension(scope, ex)

	case *syntax.BlockExpr:
		return e.EvalBlock(scope, ex)
	}

	return value.Null(), e.fatalf("unsupported expression node")
}

func (e *Evaluator) evalLiteral(scope *Scope, lit *syntax.Literal) (value.Value, error) {
	switch lit.Kind {
	case syntax.LitNull:
		return value.Null(), nil
	case syntax.LitBool:
		return value.Bool(lit.Bool), nil
	case syntax.LitInteger:
		return value.Integer(lit.Int), nil
	case syntax.LitFloat:
		return value.Float(lit.Flt), nil
	case syntax.LitText:
		return value.Text(lit.Text), nil
	case syntax.LitIdent:
		v, ok := scope.Lookup(lit.Ident)
		if !ok {
			return value.Null(), e.fatalf("%q is not defined", lit.Ident)
		}
		return v, nil
	}
	return value.Null(), e.fatalf("unsupported literal")
}

func (e *Evaluator) evalTemplateString(scope *Scope, ts *syntax.TemplateString) (value.Value, error) {
	var b []byte
	for _, chunk := range ts.Chunks {
		if chunk.Expr == nil {
			b = append(b, chunk.Text...)
			continue
		}
		v, err := e.EvalExpr(scope, chunk.Expr)
		if err != nil {
			return value.Null(), err
		}
		b = append(b, v.DebugString()...)
	}
	return value.Text(string(b)), nil
}

func (e *Evaluator) evalListLit(scope *Scope, lit *syntax.ListLit) (value.Value, error) {
	var out []value.Value
	for _, item := range lit.Items {
		v, err := e.EvalExpr(scope, item.Expr)
		if err != nil {
			return value.Null(), err
		}
		if item.Spread {
			list, ok := v.AsList()
			if !ok {
				return value.Null(), e.fatalf("cannot spread non-list value `%s` into a list", v.String())
			}
			out = append(out, list...)
			continue
		}
		out = append(out, v)
	}
	return value.List(out), nil
}

func (e *Evaluator) evalDictLit(scope *Scope, lit *syntax.DictLit) (value.Value, error) {
	b := value.NewBuilder()
	for _, entry := range lit.Entries {
		if entry.Spread != nil {
			v, err := e.EvalExpr(scope, entry.Spread)
			if err != nil {
				return value.Null(), err
			}
			m, ok := v.AsMap()
			if !ok {
				return value.Null(), e.fatalf("cannot spread non-map value `%s` into a map", v.String())
			}
			for _, k := range m.Keys() {
				val, _ := m.Get(k)
				b.Set(k, val)
			}
			continue
		}

		if entry.Guard != nil {
			g, err := e.EvalExpr(scope, entry.Guard)
			if err != nil {
				return value.Null(), err
			}
			truth, terr := g.IsTrue()
			if terr != nil {
				return value.Null(), e.fatal(terr)
			}
			if !truth {
				continue
			}
		}

		var keyV value.Value
		var err error
		if keyLit, isLit := entry.Key.(*syntax.Literal); isLit && keyLit.Kind == syntax.LitIdent {
			// an unquoted identifier key, as in `{ a: 1 }`, names itself
			keyV = value.Text(keyLit.Ident)
		} else if keyV, err = e.EvalExpr(scope, entry.Key); err != nil {
			return value.Null(), err
		}
		key, ok := keyV.AsText()
		if !ok {
			return value.Null(), e.fatalf("dict keys must evaluate to text, got `%s`", keyV.String())
		}
		val, err := e.EvalExpr(scope, entry.Value)
		if err != nil {
			return value.Null(), err
		}
		b.Set(key, val)
	}
	return value.FromMap(b.Freeze()), nil
}

func (e *Evaluator) evalPrefixOp(scope *Scope, ex *syntax.PrefixOp) (value.Value, error) {
	v, err := e.EvalExpr(scope, ex.Operand)
	if err != nil {
		return value.Null(), err
	}
	switch ex.Op {
	case "not":
		truth, terr := v.IsTrue()
		if terr != nil {
			return value.Null(), e.fatal(terr)
		}
		return value.Bool(!truth), nil
	case "neg":
		if i, ok := v.AsInteger(); ok {
			return value.Integer(-i), nil
		}
		if f, ok := v.AsFloat(); ok {
			return value.Float(-f), nil
		}
		return value.Null(), e.fatalf("cannot negate `%s`", v.String())
	}
	return value.Null(), e.fatalf("unsupported prefix operator %q", ex.Op)
}

func (e *Evaluator) evalPostfixOp(scope *Scope, ex *syntax.PostfixOp) (value.Value, error) {
	v, err := e.EvalExpr(scope, ex.Operand)
	if err != nil {
		return value.Null(), err
	}
	switch ex.Op {
	case "access":
		out, err := v.ExtractItem(value.Text(ex.Field))
		if err != nil {
			return value.Null(), e.fatal(err)
		}
		return out, nil
	case "path":
		pathV, err := e.EvalExpr(scope, ex.Path)
		if err != nil {
			return value.Null(), err
		}
		path, ok := pathV.AsList()
		if !ok {
			return value.Null(), e.fatalf("index path must be a list, got `%s`", pathV.String())
		}
		out, err := v.ExtractPath(path)
		if err != nil {
			return value.Null(), e.fatal(err)
		}
		return out, nil
	case "cast":
		return e.evalCast(scope, v, ex.CastTo)
	}
	return value.Null(), e.fatalf("unsupported postfix operator %q", ex.Op)
}

// evalImport loads the module at imp.Path, falling back to evaluating
// imp.Default (if present) on any load/parse/eval error. Text-format
// imports return the raw loaded text verbatim; ryan-format imports are
// parsed and evaluated once per resolved path, with the evaluated
// Value memoized in e.importCache — the eval-level memoization layer
// internal/imports deliberately leaves out, since only this package
// knows how to parse and evaluate ryan source.
func (e *Evaluator) evalImport(scope *Scope, imp *syntax.Import) (value.Value, error) {
	text, resolved, err := e.Imports.Load(e.CurrentFile, imp.Path)
	if err != nil {
		if imp.Default != nil {
			return e.EvalExpr(scope, imp.Default)
		}
		return value.Null(), e.fatal(err)
	}
	// Load leaves resolved pushed on the import stack so a
	// self-referential import nested inside the parse+eval below is
	// still caught; release it once this import is fully handled one
	// way or another, not merely once its text has been read.
	defer e.Imports.Release(resolved)

	if imp.Format == syntax.ImportText {
		return value.Text(text), nil
	}

	if cached, ok := e.importCache[resolved]; ok {
		return cached, nil
	}

	e.pushFrame(rerr.Frame(fmt.Sprintf("Loading import %q", resolved)))
	defer e.popFrame()

	block, perr := syntax.Parse(resolved, text)
	if perr != nil {
		if imp.Default != nil {
			return e.EvalExpr(scope, imp.Default)
		}
		return value.Null(), perr
	}

	prevFile := e.CurrentFile
	e.CurrentFile = resolved
	result, everr := e.EvalBlock(e.RootScope(), block)
	e.CurrentFile = prevFile

	if everr != nil {
		if imp.Default != nil {
			return e.EvalExpr(scope, imp.Default)
		}
		return value.Null(), everr
	}

	e.importCache[resolved] = result
	return result, nil
}

func (e *Evaluator) evalCast(scope *Scope, v value.Value, target syntax.TypeExpr) (value.Value, error) {
	name, ok := target.(syntax.TypeName)
	if !ok {
		return value.Null(), e.fatalf("cast target must be a builtin scalar type")
	}
	switch name.Name {
	case "Integer":
		switch v.Kind() {
		case value.KindInteger:
			return v, nil
		case value.KindFloat:
			f, _ := v.AsFloat()
			return value.Integer(int64(f)), nil
		case value.KindBool:
			b, _ := v.AsBool()
			if b {
				return value.Integer(1), nil
			}
			return value.Integer(0), nil
		}
	case "Float":
		switch v.Kind() {
		case value.KindFloat:
			return v, nil
		case value.KindInteger:
			i, _ := v.AsInteger()
			return value.Float(float64(i)), nil
		case value.KindBool:
			b, _ := v.AsBool()
			if b {
				return value.Float(1), nil
			}
			return value.Float(0), nil
		}
	case "Text":
		return value.Text(v.DebugString()), nil
	}
	return value.Null(), e.fatalf("cannot cast `%s` as %s", v.String(), name.Name)
}
