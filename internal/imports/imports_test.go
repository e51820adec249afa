package imports_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokahuke/ryan/internal/imports"
)

func TestNoImportRefusesEverything(t *testing.T) {
	state := imports.NewState(imports.NoImport{})
	_, _, err := state.Load("main.ryan", "other.ryan")
	require.Error(t, err)
	var nie *imports.NoImportError
	require.ErrorAs(t, err, &nie)
}

func TestOverrideServesFixedContent(t *testing.T) {
	inner := imports.NewDefaultImporter(func(string) (string, bool) { return "", false })
	loader := imports.OverrideOne(inner, "virtual.ryan", "42")

	state := imports.NewState(loader)
	text, resolved, err := state.Load("main.ryan", "virtual.ryan")
	require.NoError(t, err)
	require.Equal(t, "42", text)
	require.Equal(t, "virtual.ryan", resolved)
}

func TestBlockRefusesListedPath(t *testing.T) {
	inner := imports.NewDefaultImporter(nil)
	loader := imports.NewBlock(inner, "secret.ryan")

	state := imports.NewState(loader)
	_, _, err := state.Load("main.ryan", "secret.ryan")
	require.Error(t, err)
	var overridden *imports.ImportPathIsOverriddenError
	require.ErrorAs(t, err, &overridden)
}

func TestEnvLookupServesValue(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == "GREETING" {
			return "hello", true
		}
		return "", false
	}
	loader := imports.NewDefaultImporter(lookup)
	state := imports.NewState(loader)

	text, _, err := state.Load("main.ryan", "env:GREETING")
	require.NoError(t, err)
	require.Equal(t, "hello", text)
}

func TestCannotAccessFileSystemFromEnv(t *testing.T) {
	loader := imports.NewDefaultImporter(nil)
	state := imports.NewState(loader)

	_, _, err := state.Load("env:SOMETHING", "other.ryan")
	require.Error(t, err)
	var cannotAccess *imports.CannotAccessFileSystemFromEnvError
	require.ErrorAs(t, err, &cannotAccess)
}

func TestFilterRejectsDisallowedPaths(t *testing.T) {
	inner := imports.NewDefaultImporter(nil)
	loader := imports.NewFilter(inner, func(path string) bool {
		return path == "env:ALLOWED"
	})

	state := imports.NewState(loader)
	_, _, err := state.Load("main.ryan", "env:BLOCKED")
	require.Error(t, err)
	var overridden *imports.ImportPathIsOverriddenError
	require.ErrorAs(t, err, &overridden)
}

func TestFilterAllowsMatchingPaths(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == "ALLOWED" {
			return "yes", true
		}
		return "", false
	}
	inner := imports.NewDefaultImporter(lookup)
	loader := imports.NewFilter(inner, func(path string) bool {
		return path == "env:ALLOWED"
	})

	state := imports.NewState(loader)
	text, _, err := state.Load("main.ryan", "env:ALLOWED")
	require.NoError(t, err)
	require.Equal(t, "yes", text)
}

func TestWithResolverSubstitutesResolution(t *testing.T) {
	inner := imports.OverrideOne(imports.NewDefaultImporter(nil), "resolved-target", "content")
	loader := &imports.WithResolver{
		Inner: inner,
		ResolveFunc: func(currentPath, path string) (string, error) {
			return "resolved-target", nil
		},
	}

	state := imports.NewState(loader)
	text, resolved, err := state.Load("main.ryan", "whatever-the-user-typed")
	require.NoError(t, err)
	require.Equal(t, "resolved-target", resolved)
	require.Equal(t, "content", text)
}

func TestWithLoaderSubstitutesLoading(t *testing.T) {
	inner := imports.NewDefaultImporter(nil)
	loader := &imports.WithLoader{
		Inner: inner,
		LoadFunc: func(resolvedPath string) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("substituted")), nil
		},
	}

	state := imports.NewState(loader)
	text, _, err := state.Load("main.ryan", "env:ANYTHING")
	require.NoError(t, err)
	require.Equal(t, "substituted", text)
}
