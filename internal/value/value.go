// Package value implements the ryan runtime value model: the tagged
// union of values a ryan program can produce, plus structural types,
// equality, ordering, path extraction, and the two Display forms
// (plain and "templated"/debug).
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind tags a Value's variant.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindText
	KindList
	KindMap
	KindPatternMatches
	KindNativePatternMatch
	KindType
)

// Value is a single immutable ryan runtime value. Every Value is
// immutable after construction; Go's GC already gives shared immutable
// references for free, so (unlike the Rust original's Rc<...>) there is
// no manual reference counting here.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	list  []Value
	m     *Map
	pm    *PatternMatches
	npm   *NativePatternMatch
	typ   Type
}

func Null() Value                { return Value{kind: KindNull} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Integer(i int64) Value      { return Value{kind: KindInteger, i: i} }
func Float(f float64) Value      { return Value{kind: KindFloat, f: f} }
func Text(s string) Value        { return Value{kind: KindText, s: s} }
func List(items []Value) Value   { return Value{kind: KindList, list: items} }
func FromMap(m *Map) Value       { return Value{kind: KindMap, m: m} }
func FromType(t Type) Value      { return Value{kind: KindType, typ: t} }

func FromPatternMatches(pm *PatternMatches) Value {
	return Value{kind: KindPatternMatches, pm: pm}
}

func FromNativePatternMatch(npm *NativePatternMatch) Value {
	return Value{kind: KindNativePatternMatch, npm: npm}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsBool() (bool, bool)          { return v.b, v.kind == KindBool }
func (v Value) AsInteger() (int64, bool)      { return v.i, v.kind == KindInteger }
func (v Value) AsFloat() (float64, bool)      { return v.f, v.kind == KindFloat }
func (v Value) AsText() (string, bool)        { return v.s, v.kind == KindText }
func (v Value) AsList() ([]Value, bool)       { return v.list, v.kind == KindList }
func (v Value) AsMap() (*Map, bool)           { return v.m, v.kind == KindMap }
func (v Value) AsType() (Type, bool)          { return v.typ, v.kind == KindType }
func (v Value) AsPatternMatches() (*PatternMatches, bool) {
	return v.pm, v.kind == KindPatternMatches
}
func (v Value) AsNativePatternMatch() (*NativePatternMatch, bool) {
	return v.npm, v.kind == KindNativePatternMatch
}

// IsTrue tests truthiness: only a bool value has a truth value; anything
// else is a type error.
func (v Value) IsTrue() (bool, error) {
	if v.kind != KindBool {
		return false, fmt.Errorf("value `%s` is not a boolean", v.String())
	}
	return v.b, nil
}

// Equal implements ryan's structural value equality.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		// an Integer and a Float of the same numeric value are NOT
		// equal: ryan distinguishes the two canonical types.
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInteger:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindText:
		return a.s == b.s
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return mapsEqual(a.m, b.m)
	case KindType:
		return TypesEqual(a.typ, b.typ)
	case KindPatternMatches:
		// pattern-match values and native pattern matches are not
		// meaningfully comparable beyond identity.
		return a.pm == b.pm
	case KindNativePatternMatch:
		return a.npm == b.npm
	default:
		return false
	}
}

// Compare implements the partial order ryan uses for `<`/`<=`/`>`/`>=`:
// only numbers (possibly mixed Integer/Float) and Text are ordered. ok
// is false for any other pairing, including NaN on either side.
func Compare(a, b Value) (cmp int, ok bool) {
	af, aIsNum := numeric(a)
	bf, bIsNum := numeric(b)
	if aIsNum && bIsNum {
		if math.IsNaN(af) || math.IsNaN(bf) {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if a.kind == KindText && b.kind == KindText {
		return strings.Compare(a.s, b.s), true
	}
	return 0, false
}

func numeric(v Value) (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// ExtractItem indexes a List by Integer or a Map by Text.
func (v Value) ExtractItem(item Value) (Value, error) {
	switch {
	case v.kind == KindMap && item.kind == KindText:
		if found, ok := v.m.Get(item.s); ok {
			return found, nil
		}
		return Null(), fmt.Errorf("key %q missing in map", item.s)
	case v.kind == KindList && item.kind == KindInteger:
		idx := int(item.i)
		if idx < 0 || idx >= len(v.list) {
			return Null(), fmt.Errorf("tried to access index %d of list of length %d", idx, len(v.list))
		}
		return v.list[idx], nil
	default:
		return Null(), fmt.Errorf("cannot index %s by %s", v.String(), item.String())
	}
}

// ExtractPath walks a sequence of index/key values, as produced by the
// `container[k1, k2, ...]` postfix operator or by juxtaposing a
// container with a list (`container [k1, k2]`).
func (v Value) ExtractPath(path []Value) (Value, error) {
	cur := v
	for _, item := range path {
		next, err := cur.ExtractItem(item)
		if err != nil {
			return Null(), err
		}
		cur = next
	}
	return cur, nil
}

// CanonicalType computes the narrowest Type this value is a member of:
// a List whose elements all share one canonical type is a List of that
// type; a List whose elements don't is a Tuple of each element's type.
func (v Value) CanonicalType() Type {
	switch v.kind {
	case KindNull:
		return TNull{}
	case KindBool:
		return TBool{}
	case KindInteger:
		return TInteger{}
	case KindFloat:
		return TFloat{}
	case KindText:
		return TText{}
	case KindList:
		if len(v.list) == 0 {
			return TList{Elem: TAny{}}
		}
		elems := make([]Type, len(v.list))
		uniform := true
		for i, item := range v.list {
			elems[i] = item.CanonicalType()
			if !TypesEqual(elems[i], elems[0]) {
				uniform = false
			}
		}
		if uniform {
			return TList{Elem: elems[0]}
		}
		return TTuple{Elems: elems}
	case KindMap:
		fields := make(map[string]Type)
		for _, k := range v.m.Keys() {
			val, _ := v.m.Get(k)
			fields[k] = val.CanonicalType()
		}
		return TRecord{Fields: fields, Strict: true}
	case KindType:
		return TType{}
	default:
		return TOpaque{}
	}
}

// String renders the plain Display form (used by `fmt`, JSON-ish
// debugging, and error messages): text is quoted.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindText:
		return strconv.Quote(v.s)
	case KindList:
		var b strings.Builder
		b.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(item.String())
		}
		b.WriteByte(']')
		return b.String()
	case KindMap:
		var b strings.Builder
		b.WriteByte('{')
		keys := v.m.Keys()
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			val, _ := v.m.Get(k)
			fmt.Fprintf(&b, "%s: %s", strconv.Quote(k), val.String())
		}
		b.WriteByte('}')
		return b.String()
	case KindPatternMatches:
		n := len(v.pm.Alternatives)
		plural := "s"
		if n == 1 {
			plural = ""
		}
		return fmt.Sprintf("![match %s with %d alternative%s]", v.pm.Name, n, plural)
	case KindNativePatternMatch:
		return fmt.Sprintf("![native %s]", v.npm.Identifier)
	case KindType:
		return v.typ.String()
	}
	return "<?>"
}

// DebugString renders the "templated print" form used for `${...}`
// interpolation inside template strings: unlike String, Text values are
// emitted verbatim (not quoted), matching how a human would expect a
// variable's value to show up in an interpolated message.
func (v Value) DebugString() string {
	if v.kind == KindText {
		return v.s
	}
	return v.String()
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// JSON encodes a Value as a JSON-compatible tree of any (map[string]any,
// []any, string, float64/int64, bool, nil), returning an error for
// values with no JSON counterpart (PatternMatches, NativePatternMatch,
// Type).
func (v Value) JSON() (any, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return v.b, nil
	case KindInteger:
		return v.i, nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("the following value is not JSON-serializable: %s", v.String())
		}
		return v.f, nil
	case KindText:
		return v.s, nil
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			j, err := item.JSON()
			if err != nil {
				return nil, err
			}
			out[i] = j
		}
		return out, nil
	case KindMap:
		out := make(map[string]any, v.m.Len())
		for _, k := range v.m.Keys() {
			val, _ := v.m.Get(k)
			j, err := val.JSON()
			if err != nil {
				return nil, err
			}
			out[k] = j
		}
		return out, nil
	default:
		return nil, fmt.Errorf("the following value is not JSON-serializable: %s", v.String())
	}
}

func sortedKeys(m map[string]Type) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
