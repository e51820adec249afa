package imports

import (
	"io"
	"strings"
)

// Override substitutes a fixed set of (path -> content) overrides ahead
// of the wrapped loader; a path not in the override table falls through
// to the wrapped loader's own Resolve/Load. This fixes what reads as a
// self-recursive bug in the retrieved original source (its shown
// `Override::load`'s fallback arm calls `self.load(path)`, which would
// recurse into itself forever instead of delegating to the wrapped
// loader) — Go's Override here delegates to Inner explicitly.
type Override struct {
	Inner     Loader
	Overrides map[string]string
}

func (o *Override) Resolve(currentPath, path string) (string, error) {
	if _, ok := o.Overrides[path]; ok {
		return path, nil
	}
	return o.Inner.Resolve(currentPath, path)
}

func (o *Override) Load(resolvedPath string) (io.ReadCloser, error) {
	if content, ok := o.Overrides[resolvedPath]; ok {
		return io.NopCloser(strings.NewReader(content)), nil
	}
	return o.Inner.Load(resolvedPath)
}

// OverrideMany is sugar for Override with a ready-made map.
func OverrideMany(inner Loader, overrides map[string]string) *Override {
	return &Override{Inner: inner, Overrides: overrides}
}

// OverrideOne overrides a single path.
func OverrideOne(inner Loader, path, content string) *Override {
	return OverrideMany(inner, map[string]string{path: content})
}

// Block refuses a fixed set of paths with ImportPathIsOverriddenError,
// falling through to Inner for everything else.
type Block struct {
	Inner   Loader
	Blocked map[string]bool
}

func NewBlock(inner Loader, paths ...string) *Block {
	blocked := make(map[string]bool, len(paths))
	for _, p := range paths {
		blocked[p] = true
	}
	return &Block{Inner: inner, Blocked: blocked}
}

func (b *Block) Resolve(currentPath, path string) (string, error) {
	if b.Blocked[path] {
		return "", &ImportPathIsOverriddenError{Path: path}
	}
	return b.Inner.Resolve(currentPath, path)
}

func (b *Block) Load(resolvedPath string) (io.ReadCloser, error) {
	if b.Blocked[resolvedPath] {
		return nil, &ImportPathIsOverriddenError{Path: resolvedPath}
	}
	return b.Inner.Load(resolvedPath)
}

// Filter refuses any path for which Predicate returns false, delegating
// to Inner (not recursing into itself) for paths the predicate allows —
// same delegate-don't-recurse fix as Override.
type Filter struct {
	Inner     Loader
	Predicate func(path string) bool
}

func NewFilter(inner Loader, predicate func(string) bool) *Filter {
	return &Filter{Inner: inner, Predicate: predicate}
}

func (f *Filter) Resolve(currentPath, path string) (string, error) {
	if !f.Predicate(path) {
		return "", &ImportPathIsOverriddenError{Path: path}
	}
	return f.Inner.Resolve(currentPath, path)
}

func (f *Filter) Load(resolvedPath string) (io.ReadCloser, error) {
	if !f.Predicate(resolvedPath) {
		return nil, &ImportPathIsOverriddenError{Path: resolvedPath}
	}
	return f.Inner.Load(resolvedPath)
}

// WithResolver substitutes a custom Resolve function while Load still
// delegates to Inner.
type WithResolver struct {
	Inner       Loader
	ResolveFunc func(currentPath, path string) (string, error)
}

func (w *WithResolver) Resolve(currentPath, path string) (string, error) {
	return w.ResolveFunc(currentPath, path)
}

func (w *WithResolver) Load(resolvedPath string) (io.ReadCloser, error) {
	return w.Inner.Load(resolvedPath)
}

// WithLoader substitutes a custom Load function while Resolve still
// delegates to Inner.
type WithLoader struct {
	Inner    Loader
	LoadFunc func(resolvedPath string) (io.ReadCloser, error)
}

func (w *WithLoader) Resolve(currentPath, path string) (string, error) {
	return w.Inner.Resolve(currentPath, path)
}

func (w *WithLoader) Load(resolvedPath string) (io.ReadCloser, error) {
	return w.LoadFunc(resolvedPath)
}
