package value

import (
	"fmt"
	"strings"
)

// Type is ryan's structural type system, used both as pattern-guard
// targets and as the right-hand operand of the `:` type-match operator.
type Type interface {
	fmt.Stringer
	typeNode()
	// Matches reports whether v is a member of this type.
	Matches(v Value) bool
}

type TAny struct{}

func (TAny) typeNode()            {}
func (TAny) String() string       { return "Any" }
func (TAny) Matches(Value) bool   { return true }

type TNull struct{}

func (TNull) typeNode()      {}
func (TNull) String() string { return "Null" }
func (TNull) Matches(v Value) bool { return v.Kind() == KindNull }

type TBool struct{}

func (TBool) typeNode()      {}
func (TBool) String() string { return "Bool" }
func (TBool) Matches(v Value) bool { return v.Kind() == KindBool }

type TInteger struct{}

func (TInteger) typeNode()      {}
func (TInteger) String() string { return "Integer" }
func (TInteger) Matches(v Value) bool { return v.Kind() == KindInteger }

type TFloat struct{}

func (TFloat) typeNode()      {}
func (TFloat) String() string { return "Float" }
func (TFloat) Matches(v Value) bool { return v.Kind() == KindFloat }

type TText struct{}

func (TText) typeNode()      {}
func (TText) String() string { return "Text" }
func (TText) Matches(v Value) bool { return v.Kind() == KindText }

// TType is the type of Value(s) that are themselves types (so that type
// expressions are first-class values bindable to a name via `type X =
// ...`).
type TType struct{}

func (TType) typeNode()      {}
func (TType) String() string { return "Type" }
func (TType) Matches(v Value) bool { return v.Kind() == KindType }

// TOpaque matches pattern-match/native-pattern-match values: things with
// no JSON counterpart but that are still first-class ryan values.
type TOpaque struct{}

func (TOpaque) typeNode() {}
func (TOpaque) String() string { return "Opaque" }
func (TOpaque) Matches(v Value) bool {
	return v.Kind() == KindPatternMatches || v.Kind() == KindNativePatternMatch
}

type TList struct{ Elem Type }

func (TList) typeNode() {}
func (t TList) String() string { return fmt.Sprintf("List(%s)", t.Elem.String()) }
func (t TList) Matches(v Value) bool {
	list, ok := v.AsList()
	if !ok {
		return false
	}
	for _, item := range list {
		if !t.Elem.Matches(item) {
			return false
		}
	}
	return true
}

type TDict struct{ Elem Type }

func (TDict) typeNode() {}
func (t TDict) String() string { return fmt.Sprintf("Dictionary(%s)", t.Elem.String()) }
func (t TDict) Matches(v Value) bool {
	m, ok := v.AsMap()
	if !ok {
		return false
	}
	for _, k := range m.Keys() {
		val, _ := m.Get(k)
		if !t.Elem.Matches(val) {
			return false
		}
	}
	return true
}

// TTuple matches a List of exactly len(Elems), each element matching
// the type at its position.
type TTuple struct{ Elems []Type }

func (TTuple) typeNode() {}
func (t TTuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return fmt.Sprintf("Tuple(%s)", strings.Join(parts, ", "))
}
func (t TTuple) Matches(v Value) bool {
	list, ok := v.AsList()
	if !ok || len(list) != len(t.Elems) {
		return false
	}
	for i, e := range t.Elems {
		if !e.Matches(list[i]) {
			return false
		}
	}
	return true
}

// TRecord matches a Map that contains at least the declared fields, each
// satisfying its declared type (Strict=false), or exactly the declared
// field set and no more (Strict=true). This is the one place the
// original Rust source's shown Type::matches() conflates Record and
// StrictRecord (neither checks for absence of extra keys); spec.md's
// invariant that "strict forbids extras" is implemented here with an
// explicit key-count check for the Strict case.
type TRecord struct {
	Fields map[string]Type
	Strict bool
}

func (TRecord) typeNode() {}
func (t TRecord) String() string {
	keys := sortedKeys(t.Fields)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, t.Fields[k].String())
	}
	prefix := "Record"
	if t.Strict {
		prefix = "StrictRecord"
	}
	return fmt.Sprintf("%s{%s}", prefix, strings.Join(parts, ", "))
}
func (t TRecord) Matches(v Value) bool {
	m, ok := v.AsMap()
	if !ok {
		return false
	}
	if t.Strict && m.Len() != len(t.Fields) {
		return false
	}
	for key, fieldType := range t.Fields {
		val, present := m.Get(key)
		if !present {
			return false
		}
		if !fieldType.Matches(val) {
			return false
		}
	}
	return true
}

// TOr matches if any alternative matches.
type TOr struct{ Alts []Type }

func (TOr) typeNode() {}
func (t TOr) String() string {
	parts := make([]string, len(t.Alts))
	for i, a := range t.Alts {
		parts[i] = a.String()
	}
	return strings.Join(parts, " | ")
}
func (t TOr) Matches(v Value) bool {
	for _, a := range t.Alts {
		if a.Matches(v) {
			return true
		}
	}
	return false
}

// TypesEqual is structural equality between two type expressions (used
// by Value equality when comparing two Value(Type(...)) values).
func TypesEqual(a, b Type) bool {
	return a.String() == b.String()
}
