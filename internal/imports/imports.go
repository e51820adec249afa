// Package imports implements ryan's module import subsystem: the
// resolver/loader split, the `env:` pseudo-filesystem, the override/
// block/filter combinators, and cycle-safe, memoized loading behind a
// mutex (spec.md §4.5, grounded on
// original_source/ryan/src/environment/loader.rs). This package only
// deals in paths and raw text; internal/eval is the layer that decides
// whether loaded text gets parsed and evaluated as ryan or kept
// verbatim, and memoizes the *evaluated* result — keeping this package
// free of a dependency on internal/value or internal/syntax.
package imports

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Loader resolves a (possibly relative) import path against the module
// currently doing the importing, and loads the resolved path's content.
type Loader interface {
	// Resolve turns `path`, referenced from `currentPath`, into a
	// canonical path suitable as a cache/cycle-detection key.
	Resolve(currentPath, path string) (string, error)
	// Load reads the content at a path already produced by Resolve.
	Load(resolvedPath string) (io.ReadCloser, error)
}

// NoImportError is raised by NoImport for every path, and by
// DefaultImporter when the current module is an `env:` module asking
// for a filesystem path.
type NoImportError struct {
	Path   string
	Reason string
}

func (e *NoImportError) Error() string {
	return fmt.Sprintf("cannot import %q: %s", e.Path, e.Reason)
}

// NoImport is a Loader that refuses every import; used by `--hermetic`.
type NoImport struct{}

func (NoImport) Resolve(_, path string) (string, error) {
	return "", &NoImportError{Path: path, Reason: "imports are disabled"}
}

func (NoImport) Load(path string) (io.ReadCloser, error) {
	return nil, &NoImportError{Path: path, Reason: "imports are disabled"}
}

// EnvPrefix marks a module path as sourced from an environment
// variable rather than the filesystem.
const EnvPrefix = "env:"

// EnvLookup abstracts os.LookupEnv so the CLI's `--env KEY=VALUE` flag
// can seed an override table without mutating the real process
// environment (SPEC_FULL.md §6).
type EnvLookup func(key string) (string, bool)

// DefaultImporter resolves filesystem paths relative to the importing
// file's directory, and `env:NAME` paths through EnvLookup.
type DefaultImporter struct {
	Lookup EnvLookup
}

func NewDefaultImporter(lookup EnvLookup) *DefaultImporter {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &DefaultImporter{Lookup: lookup}
}

func (d *DefaultImporter) Resolve(currentPath, path string) (string, error) {
	if strings.HasPrefix(path, EnvPrefix) {
		return path, nil
	}
	if strings.HasPrefix(currentPath, EnvPrefix) {
		return "", &CannotAccessFileSystemFromEnvError{Path: path}
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	dir := filepath.Dir(currentPath)
	return filepath.Clean(filepath.Join(dir, path)), nil
}

func (d *DefaultImporter) Load(resolvedPath string) (io.ReadCloser, error) {
	if strings.HasPrefix(resolvedPath, EnvPrefix) {
		name := strings.TrimPrefix(resolvedPath, EnvPrefix)
		val, ok := d.Lookup(name)
		if !ok {
			return nil, errors.Errorf("environment variable %q is not set", name)
		}
		return io.NopCloser(strings.NewReader(val)), nil
	}
	f, err := os.Open(resolvedPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %q", resolvedPath)
	}
	return f, nil
}

// CannotAccessFileSystemFromEnvError is raised when the module doing
// the importing was itself sourced from `env:` and it asks for a
// filesystem path: env-sourced content cannot escape to the real
// filesystem.
type CannotAccessFileSystemFromEnvError struct {
	Path string
}

func (e *CannotAccessFileSystemFromEnvError) Error() string {
	return fmt.Sprintf("cannot access the filesystem for %q from within an env: module", e.Path)
}

// CircularImportError is raised when the import stack already contains
// the path being resolved.
type CircularImportError struct {
	Path string
}

func (e *CircularImportError) Error() string {
	return fmt.Sprintf("circular import detected: %q", e.Path)
}

// ImportPathIsOverriddenError is raised by Block for any matching path.
type ImportPathIsOverriddenError struct {
	Path string
}

func (e *ImportPathIsOverriddenError) Error() string {
	return fmt.Sprintf("import path %q is overridden to fail", e.Path)
}

// State wraps a Loader with the shared, mutex-guarded cache and import
// stack cycle detection spec.md §9's re-architecture hint calls for:
// a host that shares one environment across goroutines gets safe (if
// serialized) imports for free.
type State struct {
	mu         sync.Mutex
	loader     Loader
	textCache  map[string]string
	importStack []string
}

func NewState(loader Loader) *State {
	return &State{loader: loader, textCache: make(map[string]string)}
}

// Load resolves path relative to currentPath, detects import cycles,
// and returns the resolved path's raw text, memoized by resolved path.
//
// On success the resolved path is left pushed on the import stack: the
// caller (internal/eval) is still in the middle of the import — for a
// ryan-format import that means parsing and evaluating the returned
// text, during which a self-referential import must still be caught —
// so the caller must call Release(resolvedPath) once it has finished
// with the import, however that turns out (value, error, or fallback).
// A failed resolve never reaches the stack push, and a failed load or
// read pops the path again before returning; Release on a path that
// was never pushed (e.g. a cache hit) is a harmless no-op.
func (s *State) Load(currentPath, path string) (text string, resolvedPath string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolvedPath, err = s.loader.Resolve(currentPath, path)
	if err != nil {
		return "", "", err
	}

	for _, onStack := range s.importStack {
		if onStack == resolvedPath {
			return "", resolvedPath, &CircularImportError{Path: resolvedPath}
		}
	}

	if cached, ok := s.textCache[resolvedPath]; ok {
		return cached, resolvedPath, nil
	}

	s.importStack = append(s.importStack, resolvedPath)

	reader, err := s.loader.Load(resolvedPath)
	if err != nil {
		s.popStackLocked(resolvedPath)
		return "", resolvedPath, err
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		s.popStackLocked(resolvedPath)
		return "", resolvedPath, errors.Wrapf(err, "failed to read %q", resolvedPath)
	}

	text = string(raw)
	s.textCache[resolvedPath] = text
	return text, resolvedPath, nil
}

// Release pops resolvedPath off the import stack, signalling that the
// caller has finished doing whatever it was doing with that import
// (evaluating it, or giving up on it). Safe to call even when
// resolvedPath was never pushed — a cache hit never pushes, and
// Release on it is then a no-op — so callers can defer it
// unconditionally right after a successful Load.
func (s *State) Release(resolvedPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popStackLocked(resolvedPath)
}

// popStackLocked removes the nearest (innermost) occurrence of
// resolvedPath from the import stack. Must be called with s.mu held.
func (s *State) popStackLocked(resolvedPath string) {
	for i := len(s.importStack) - 1; i >= 0; i-- {
		if s.importStack[i] == resolvedPath {
			s.importStack = append(s.importStack[:i], s.importStack[i+1:]...)
			return
		}
	}
}
