package eval

import (
	"github.com/tokahuke/ryan/internal/syntax"
	"github.com/tokahuke/ryan/internal/value"
)

// providedNames returns every identifier a pattern introduces,
// recursing into list/dict sub-patterns. Mirrors Pattern::provided in
// the original source's pattern.rs.
func providedNames(p syntax.Pattern) []string {
	switch pat := p.(type) {
	case syntax.PatWildcard:
		return nil
	case syntax.PatIdentifier:
		return []string{pat.Name}
	case syntax.PatLiteral:
		return nil
	case syntax.PatList:
		var out []string
		for _, e := range pat.Elems {
			out = append(out, providedNames(e)...)
		}
		return out
	case syntax.PatHead:
		var out []string
		for _, e := range pat.Elems {
			out = append(out, providedNames(e)...)
		}
		out = append(out, providedNames(pat.Rest)...)
		return out
	case syntax.PatTail:
		var out []string
		out = append(out, providedNames(pat.Rest)...)
		for _, e := range pat.Elems {
			out = append(out, providedNames(e)...)
		}
		return out
	case syntax.PatDict:
		var out []string
		for _, item := range pat.Items {
			out = append(out, providedNames(item.Pattern)...)
		}
		return out
	case syntax.PatDictStrict:
		var out []string
		for _, item := range pat.Items {
			out = append(out, providedNames(item.Pattern)...)
		}
		return out
	}
	return nil
}

// boundSet is a simple set of identifiers considered locally bound
// within the lexical context currently being walked.
type boundSet map[string]bool

func newBoundSet(names ...string) boundSet {
	s := make(boundSet, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

func (s boundSet) with(names ...string) boundSet {
	next := make(boundSet, len(s)+len(names))
	for k := range s {
		next[k] = true
	}
	for _, n := range names {
		next[n] = true
	}
	return next
}

// blockOwnNames collects the names a block's own bindings introduce
// (its `let`/`type` statements), for extending a bound set before
// walking the block's body.
func blockOwnNames(b *syntax.BlockExpr) []string {
	var out []string
	for _, binding := range b.Bindings {
		switch bd := binding.(type) {
		case *syntax.PatternMatchDef:
			out = append(out, bd.Identifier)
		case *syntax.Destructuring:
			out = append(out, providedNames(bd.Pattern)...)
		case *syntax.TypeDef:
			out = append(out, bd.Identifier)
		}
	}
	return out
}

// freeIdentifiers walks expr, collecting every bare-identifier
// reference not in bound, into out.
func freeIdentifiers(expr syntax.Expr, bound boundSet, out map[string]bool) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *syntax.Literal:
		if e.Kind == syntax.LitIdent && !bound[e.Ident] {
			out[e.Ident] = true
		}
	case *syntax.TemplateString:
		for _, c := range e.Chunks {
			if c.Expr != nil {
				freeIdentifiers(c.Expr, bound, out)
			}
		}
	case *syntax.ListLit:
		for _, item := range e.Items {
			freeIdentifiers(item.Expr, bound, out)
		}
	case *syntax.DictLit:
		for _, entry := range e.Entries {
			if entry.Spread != nil {
				freeIdentifiers(entry.Spread, bound, out)
				continue
			}
			freeIdentifiers(entry.Key, bound, out)
			freeIdentifiers(entry.Value, bound, out)
			freeIdentifiers(entry.Guard, bound, out)
		}
	case *syntax.Conditional:
		freeIdentifiers(e.Cond, bound, out)
		freeIdentifiers(e.Then, bound, out)
		freeIdentifiers(e.Else, bound, out)
	case *syntax.BinaryOp:
		freeIdentifiers(e.Left, bound, out)
		freeIdentifiers(e.Right, bound, out)
	case *syntax.PrefixOp:
		freeIdentifiers(e.Operand, bound, out)
	case *syntax.PostfixOp:
		freeIdentifiers(e.Operand, bound, out)
		freeIdentifiers(e.Path, bound, out)
	case *syntax.Import:
		freeIdentifiers(e.Default, bound, out)
	case *syntax.ListComprehension:
		b2 := bound
		for _, c := range e.Clauses {
			freeIdentifiers(c.Source, b2, out)
			b2 = b2.with(providedNames(c.Pattern)...)
		}
		freeIdentifiers(e.Guard, b2, out)
		freeIdentifiers(e.Element, b2, out)
	case *syntax.DictComprehension:
		b2 := bound
		for _, c := range e.Clauses {
			freeIdentifiers(c.Source, b2, out)
			b2 = b2.with(providedNames(c.Pattern)...)
		}
		freeIdentifiers(e.Guard, b2, out)
		freeIdentifiers(e.Key, b2, out)
		freeIdentifiers(e.Value, b2, out)
	case *syntax.BlockExpr:
		freeIdentifiersBlock(e, bound, out)
	}
}

func freeIdentifiersBlock(b *syntax.BlockExpr, bound boundSet, out map[string]bool) {
	b2 := bound.with(blockOwnNames(b)...)
	for _, binding := range b.Bindings {
		switch bd := binding.(type) {
		case *syntax.PatternMatchDef:
			inner := b2.with(providedNames(bd.Pattern)...)
			freeIdentifiersBlock(bd.Body, inner, out)
		case *syntax.Destructuring:
			freeIdentifiersBlock(bd.Body, b2, out)
		case *syntax.TypeDef:
			freeIdentifiersTypeExpr(bd.Type, b2, out)
		}
	}
	freeIdentifiers(b.Result, b2, out)
}

// freeIdentifiersPattern walks the type-guard expressions embedded in a
// pattern, collecting every free type-variable reference (a `type X =
// ...` alias named by a guard) not already in bound. Recurses into
// every sub-pattern position (MatchList/MatchHead/MatchTail/MatchDict/
// MatchDictStrict elements), since a guard can appear on any nested
// identifier, not just the pattern's own top level.
func freeIdentifiersPattern(p syntax.Pattern, bound boundSet, out map[string]bool) {
	switch pat := p.(type) {
	case syntax.PatIdentifier:
		freeIdentifiersTypeExpr(pat.TypeGuard, bound, out)
	case syntax.PatList:
		for _, e := range pat.Elems {
			freeIdentifiersPattern(e, bound, out)
		}
	case syntax.PatHead:
		for _, e := range pat.Elems {
			freeIdentifiersPattern(e, bound, out)
		}
		freeIdentifiersPattern(pat.Rest, bound, out)
	case syntax.PatTail:
		freeIdentifiersPattern(pat.Rest, bound, out)
		for _, e := range pat.Elems {
			freeIdentifiersPattern(e, bound, out)
		}
	case syntax.PatDict:
		for _, item := range pat.Items {
			freeIdentifiersPattern(item.Pattern, bound, out)
		}
	case syntax.PatDictStrict:
		for _, item := range pat.Items {
			freeIdentifiersPattern(item.Pattern, bound, out)
		}
	}
}

// freeIdentifiersTypeExpr walks a type expression, collecting every
// TypeVariable name (a reference to a user-defined `type X = ...`
// alias) not already in bound. Builtin TypeName literals (Integer,
// Text, ...) aren't references to anything and are skipped.
func freeIdentifiersTypeExpr(t syntax.TypeExpr, bound boundSet, out map[string]bool) {
	switch texpr := t.(type) {
	case nil:
		return
	case syntax.TypeVariable:
		if !bound[texpr.Name] {
			out[texpr.Name] = true
		}
	case syntax.TypeList:
		freeIdentifiersTypeExpr(texpr.Elem, bound, out)
	case syntax.TypeDict:
		freeIdentifiersTypeExpr(texpr.Elem, bound, out)
	case syntax.TypeTuple:
		for _, sub := range texpr.Elems {
			freeIdentifiersTypeExpr(sub, bound, out)
		}
	case syntax.TypeRecord:
		for _, f := range texpr.Fields {
			freeIdentifiersTypeExpr(f.Type, bound, out)
		}
	case syntax.TypeOr:
		for _, sub := range texpr.Alts {
			freeIdentifiersTypeExpr(sub, bound, out)
		}
	}
}

// captureSnapshot computes the free-variable set of (pattern, body) —
// including the pattern's own type-guard expressions, per spec.md §4.4
// ("a snapshot ... of all free variables of its block and pattern
// type-guards") — and snapshots each one found in scope, producing the
// Captures map stored on a value.Alternative. This is computed once at
// pattern-match definition time, so later mutation of the enclosing
// scope (a later shadowing `let` of the same name) never perturbs an
// already-built closure.
func captureSnapshot(scope *Scope, pattern syntax.Pattern, body *syntax.BlockExpr) map[string]value.Value {
	bound := newBoundSet(providedNames(pattern)...)
	free := make(map[string]bool)
	freeIdentifiersPattern(pattern, bound, free)
	freeIdentifiersBlock(body, bound, free)

	captures := make(map[string]value.Value)
	for name := range free {
		if v, ok := scope.Lookup(name); ok {
			captures[name] = v
		}
	}
	return captures
}
