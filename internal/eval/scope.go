package eval

import "github.com/tokahuke/ryan/internal/value"

// Scope is a single link in the lexical-scope chain: a map of bindings
// plus a pointer to the enclosing scope. There's no third-party
// "environment"/DI-container abstraction in the retrieval pack that
// fits lexical scoping with free-variable capture (the closest
// candidates, holomush's DI container and aretext's config resolver,
// solve a different problem), so this is a hand-rolled linked list of
// maps in the teacher's own plain-struct style.
type Scope struct {
	parent *Scope
	vars   map[string]value.Value
}

// NewRootScope creates a scope with no parent.
func NewRootScope() *Scope {
	return &Scope{vars: make(map[string]value.Value)}
}

// Child creates a new scope nested inside s.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s, vars: make(map[string]value.Value)}
}

// ChildWith creates a new scope nested inside s, pre-populated with
// extra (used to seed a pattern-match alternative's captures + freshly
// bound parameters).
func (s *Scope) ChildWith(extra map[string]value.Value) *Scope {
	child := s.Child()
	for k, v := range extra {
		child.vars[k] = v
	}
	return child
}

// Lookup walks the scope chain outward, returning the nearest binding.
func (s *Scope) Lookup(name string) (value.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return value.Value{}, false
}

// Set installs name in this scope (not a parent), shadowing any outer
// binding of the same name for lookups from this scope onward.
func (s *Scope) Set(name string, v value.Value) {
	s.vars[name] = v
}

// Remove deletes name from this scope only, returning its prior value if
// any. Used by PatternMatchDef redefinition, which needs to pull out an
// existing PatternMatches value to append a new alternative to it.
func (s *Scope) Remove(name string) (value.Value, bool) {
	v, ok := s.vars[name]
	if ok {
		delete(s.vars, name)
	}
	return v, ok
}
