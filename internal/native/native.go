// Package native implements the ryan built-in function registry
// (spec.md §4.6), grounded on
// original_source/ryan/src/environment/native.rs. Every built-in is an
// ordinary value.NativePatternMatch: juxtaposition dispatch calls its
// Func directly with the argument value (the original's own shown
// NativePatternMatch::match never consults its Pattern field either —
// it's metadata, not a dispatch gate), so built-ins validate their own
// argument shape and return a *BuiltinError on mismatch. Multi-
// argument built-ins are called with a single List argument (`range
// [start, end]`), not comma-call syntax, per native.rs's own `range`.
// Curried built-ins (join/split/starts_with/ends_with/replace) return a
// fresh NativePatternMatch from their first application.
package native

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tokahuke/ryan/internal/syntax"
	"github.com/tokahuke/ryan/internal/value"
)

// BuiltinError wraps a built-in's own validation failures; it is a
// plain Go error, not part of the fatal rerr taxonomy, since it
// surfaces through the ordinary juxtaposition-application error path.
type BuiltinError struct{ Message string }

func (e *BuiltinError) Error() string { return e.Message }

func errf(format string, args ...any) error {
	return &BuiltinError{Message: fmt.Sprintf(format, args...)}
}

// Registry is a name -> callable-value table. Environment-scoped
// registries are supported per spec.md §4.6; Default returns the
// process-wide set mirroring the original's thread_local! BUILTINS.
type Registry struct {
	entries map[string]value.Value
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]value.Value)}
}

func (r *Registry) add(name string, f func(value.Value) (value.Value, error)) {
	r.entries[name] = value.FromNativePatternMatch(&value.NativePatternMatch{
		Identifier: name,
		Pattern:    syntax.PatWildcard{},
		Func:       f,
	})
}

// Lookup returns a built-in's callable Value by name.
func (r *Registry) Lookup(name string) (value.Value, bool) {
	v, ok := r.entries[name]
	return v, ok
}

// Names lists every registered built-in, for seeding a root scope.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	return names
}

var defaultRegistry *Registry

// Default lazily builds and returns the process-wide built-in registry.
func Default() *Registry {
	if defaultRegistry == nil {
		defaultRegistry = build()
	}
	return defaultRegistry
}

func curried(name string, f func(first value.Value) func(value.Value) (value.Value, error)) func(value.Value) (value.Value, error) {
	return func(first value.Value) (value.Value, error) {
		inner := f(first)
		return value.FromNativePatternMatch(&value.NativePatternMatch{
			Identifier: name,
			Pattern:    syntax.PatWildcard{},
			Func:       inner,
		}), nil
	}
}

func build() *Registry {
	r := NewRegistry()

	r.add("fmt", func(v value.Value) (value.Value, error) {
		return value.Text(v.String()), nil
	})

	r.add("len", func(v value.Value) (value.Value, error) {
		switch v.Kind() {
		case value.KindList:
			list, _ := v.AsList()
			return value.Integer(int64(len(list))), nil
		case value.KindMap:
			m, _ := v.AsMap()
			return value.Integer(int64(m.Len())), nil
		case value.KindText:
			s, _ := v.AsText()
			return value.Integer(int64(len([]rune(s)))), nil
		}
		return value.Null(), errf("len: expected a list, map, or text, got `%s`", v.String())
	})

	r.add("range", func(v value.Value) (value.Value, error) {
		list, ok := v.AsList()
		if !ok || len(list) != 2 {
			return value.Null(), errf("range: expected [start, end], got `%s`", v.String())
		}
		start, ok1 := list[0].AsInteger()
		end, ok2 := list[1].AsInteger()
		if !ok1 || !ok2 {
			return value.Null(), errf("range: start and end must be integers")
		}
		out := make([]value.Value, 0, maxInt(0, int(end-start)))
		for i := start; i < end; i++ {
			out = append(out, value.Integer(i))
		}
		return value.List(out), nil
	})

	r.add("zip", func(v value.Value) (value.Value, error) {
		list, ok := v.AsList()
		if !ok || len(list) != 2 {
			return value.Null(), errf("zip: expected [list, list], got `%s`", v.String())
		}
		a, ok1 := list[0].AsList()
		b, ok2 := list[1].AsList()
		if !ok1 || !ok2 {
			return value.Null(), errf("zip: both arguments must be lists")
		}
		n := len(a)
		if len(b) < n {
			n = len(b)
		}
		out := make([]value.Value, n)
		for i := 0; i < n; i++ {
			out[i] = value.List([]value.Value{a[i], b[i]})
		}
		return value.List(out), nil
	})

	r.add("enumerate", func(v value.Value) (value.Value, error) {
		list, ok := v.AsList()
		if !ok {
			return value.Null(), errf("enumerate: expected a list, got `%s`", v.String())
		}
		out := make([]value.Value, len(list))
		for i, item := range list {
			out[i] = value.List([]value.Value{value.Integer(int64(i)), item})
		}
		return value.List(out), nil
	})

	r.add("sum", func(v value.Value) (value.Value, error) {
		list, ok := v.AsList()
		if !ok {
			return value.Null(), errf("sum: expected a list, got `%s`", v.String())
		}
		var isFloat bool
		var fsum float64
		var isum int64
		for _, item := range list {
			if i, ok := item.AsInteger(); ok {
				isum += i
				fsum += float64(i)
				continue
			}
			if f, ok := item.AsFloat(); ok {
				isFloat = true
				fsum += f
				continue
			}
			return value.Null(), errf("sum: list must contain only numbers, found `%s`", item.String())
		}
		if isFloat {
			return value.Float(fsum), nil
		}
		return value.Integer(isum), nil
	})

	r.add("max", reduceCompare(1))
	r.add("min", reduceCompare(-1))

	r.add("all", func(v value.Value) (value.Value, error) {
		list, ok := v.AsList()
		if !ok {
			return value.Null(), errf("all: expected a list, got `%s`", v.String())
		}
		for _, item := range list {
			b, ok := item.AsBool()
			if !ok {
				return value.Null(), errf("all: list must contain only booleans, found `%s`", item.String())
			}
			if !b {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	})

	r.add("any", func(v value.Value) (value.Value, error) {
		list, ok := v.AsList()
		if !ok {
			return value.Null(), errf("any: expected a list, got `%s`", v.String())
		}
		for _, item := range list {
			b, ok := item.AsBool()
			if !ok {
				return value.Null(), errf("any: list must contain only booleans, found `%s`", item.String())
			}
			if b {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	})

	r.add("sort", func(v value.Value) (value.Value, error) {
		list, ok := v.AsList()
		if !ok {
			return value.Null(), errf("sort: expected a list, got `%s`", v.String())
		}
		out := append([]value.Value{}, list...)
		var sortErr error
		sort.SliceStable(out, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			cmp, ok := value.Compare(out[i], out[j])
			if !ok {
				sortErr = errf("sort: cannot compare `%s` and `%s` (incomparable or NaN)", out[i].String(), out[j].String())
				return false
			}
			return cmp < 0
		})
		// sort fails loudly (not silently) on an incomparable or NaN
		// element, per spec.md §9's standardized answer.
		if sortErr != nil {
			return value.Null(), sortErr
		}
		return value.List(out), nil
	})

	r.add("keys", func(v value.Value) (value.Value, error) {
		m, ok := v.AsMap()
		if !ok {
			return value.Null(), errf("keys: expected a map, got `%s`", v.String())
		}
		out := make([]value.Value, 0, m.Len())
		for _, k := range m.Keys() {
			out = append(out, value.Text(k))
		}
		return value.List(out), nil
	})

	r.add("values", func(v value.Value) (value.Value, error) {
		m, ok := v.AsMap()
		if !ok {
			return value.Null(), errf("values: expected a map, got `%s`", v.String())
		}
		out := make([]value.Value, 0, m.Len())
		for _, k := range m.Keys() {
			val, _ := m.Get(k)
			out = append(out, val)
		}
		return value.List(out), nil
	})

	r.add("lowercase", textUnary("lowercase", strings.ToLower))
	r.add("uppercase", textUnary("uppercase", strings.ToUpper))
	r.add("trim", textUnary("trim", strings.TrimSpace))
	r.add("trim_start", textUnary("trim_start", func(s string) string { return strings.TrimLeft(s, " \t\r\n") }))
	r.add("trim_end", textUnary("trim_end", func(s string) string { return strings.TrimRight(s, " \t\r\n") }))

	r.add("join", curried("join", func(sep value.Value) func(value.Value) (value.Value, error) {
		return func(list value.Value) (value.Value, error) {
			sepText, ok := sep.AsText()
			if !ok {
				return value.Null(), errf("join: separator must be text")
			}
			items, ok := list.AsList()
			if !ok {
				return value.Null(), errf("join: expected a list, got `%s`", list.String())
			}
			parts := make([]string, len(items))
			for i, item := range items {
				s, ok := item.AsText()
				if !ok {
					return value.Null(), errf("join: list must contain only text, found `%s`", item.String())
				}
				parts[i] = s
			}
			return value.Text(strings.Join(parts, sepText)), nil
		}
	}))

	r.add("split", curried("split", func(sep value.Value) func(value.Value) (value.Value, error) {
		return func(text value.Value) (value.Value, error) {
			sepText, ok := sep.AsText()
			if !ok {
				return value.Null(), errf("split: separator must be text")
			}
			s, ok := text.AsText()
			if !ok {
				return value.Null(), errf("split: expected text, got `%s`", text.String())
			}
			parts := strings.Split(s, sepText)
			out := make([]value.Value, len(parts))
			for i, p := range parts {
				out[i] = value.Text(p)
			}
			return value.List(out), nil
		}
	}))

	r.add("starts_with", curried("starts_with", func(prefix value.Value) func(value.Value) (value.Value, error) {
		return func(text value.Value) (value.Value, error) {
			p, ok1 := prefix.AsText()
			s, ok2 := text.AsText()
			if !ok1 || !ok2 {
				return value.Null(), errf("starts_with: expected text arguments")
			}
			return value.Bool(strings.HasPrefix(s, p)), nil
		}
	}))

	r.add("ends_with", curried("ends_with", func(suffix value.Value) func(value.Value) (value.Value, error) {
		return func(text value.Value) (value.Value, error) {
			suf, ok1 := suffix.AsText()
			s, ok2 := text.AsText()
			if !ok1 || !ok2 {
				return value.Null(), errf("ends_with: expected text arguments")
			}
			return value.Bool(strings.HasSuffix(s, suf)), nil
		}
	}))

	r.add("replace", curried("replace", func(argsV value.Value) func(value.Value) (value.Value, error) {
		return func(text value.Value) (value.Value, error) {
			args, ok := argsV.AsList()
			if !ok || len(args) != 2 {
				return value.Null(), errf("replace: expected [from, to] then text")
			}
			from, ok1 := args[0].AsText()
			to, ok2 := args[1].AsText()
			s, ok3 := text.AsText()
			if !ok1 || !ok2 || !ok3 {
				return value.Null(), errf("replace: expected text arguments")
			}
			return value.Text(strings.ReplaceAll(s, from, to)), nil
		}
	}))

	return r
}

func textUnary(name string, f func(string) string) func(value.Value) (value.Value, error) {
	return func(v value.Value) (value.Value, error) {
		s, ok := v.AsText()
		if !ok {
			return value.Null(), errf("%s: expected text, got `%s`", name, v.String())
		}
		return value.Text(f(s)), nil
	}
}

// reduceCompare builds max (sign=1) / min (sign=-1) over a non-empty
// list of mutually ordered values.
func reduceCompare(sign int) func(value.Value) (value.Value, error) {
	return func(v value.Value) (value.Value, error) {
		list, ok := v.AsList()
		if !ok || len(list) == 0 {
			return value.Null(), errf("expected a non-empty list, got `%s`", v.String())
		}
		best := list[0]
		for _, item := range list[1:] {
			cmp, ok := value.Compare(item, best)
			if !ok {
				return value.Null(), errf("cannot compare `%s` and `%s`", item.String(), best.String())
			}
			if cmp*sign > 0 {
				best = item
			}
		}
		return best, nil
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
