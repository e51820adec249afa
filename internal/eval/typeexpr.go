package eval

import (
	"fmt"

	"github.com/tokahuke/ryan/internal/syntax"
	"github.com/tokahuke/ryan/internal/value"
)

// evalTypeExpr resolves a type-expression AST node into a value.Type,
// looking up TypeVariable names (introduced by `type X = ...`) in scope.
func (e *Evaluator) evalTypeExpr(scope *Scope, t syntax.TypeExpr) (value.Type, error) {
	switch texpr := t.(type) {
	case syntax.TypeName:
		switch texpr.Name {
		case "Any":
			return value.TAny{}, nil
		case "Null":
			return value.TNull{}, nil
		case "Bool":
			return value.TBool{}, nil
		case "Integer":
			return value.TInteger{}, nil
		case "Float":
			return value.TFloat{}, nil
		case "Text":
			return value.TText{}, nil
		case "Opaque":
			return value.TOpaque{}, nil
		}
		return nil, fmt.Errorf("unknown builtin type %q", texpr.Name)

	case syntax.TypeVariable:
		v, ok := scope.Lookup(texpr.Name)
		if !ok {
			return nil, fmt.Errorf("%q is not defined", texpr.Name)
		}
		t, ok := v.AsType()
		if !ok {
			return nil, fmt.Errorf("%q is not a type", texpr.Name)
		}
		return t, nil

	case syntax.TypeList:
		elem, err := e.evalTypeExpr(scope, texpr.Elem)
		if err != nil {
			return nil, err
		}
		return value.TList{Elem: elem}, nil

	case syntax.TypeDict:
		elem, err := e.evalTypeExpr(scope, texpr.Elem)
		if err != nil {
			return nil, err
		}
		return value.TDict{Elem: elem}, nil

	case syntax.TypeTuple:
		elems := make([]value.Type, len(texpr.Elems))
		for i, sub := range texpr.Elems {
			t, err := e.evalTypeExpr(scope, sub)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return value.TTuple{Elems: elems}, nil

	case syntax.TypeRecord:
		fields := make(map[string]value.Type, len(texpr.Fields))
		for _, f := range texpr.Fields {
			ft, err := e.evalTypeExpr(scope, f.Type)
			if err != nil {
				return nil, err
			}
			if f.Optional {
				ft = value.TOr{Alts: []value.Type{value.TNull{}, ft}}
			}
			fields[f.Key] = ft
		}
		return value.TRecord{Fields: fields, Strict: texpr.Strict}, nil

	case syntax.TypeOr:
		alts := make([]value.Type, len(texpr.Alts))
		for i, sub := range texpr.Alts {
			t, err := e.evalTypeExpr(scope, sub)
			if err != nil {
				return nil, err
			}
			alts[i] = t
		}
		return value.TOr{Alts: alts}, nil
	}

	return nil, fmt.Errorf("unsupported type expression")
}
