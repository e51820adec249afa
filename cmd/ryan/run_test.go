package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEnvFlag(t *testing.T) {
	out := parseEnvFlag([]string{"GREETING=hello", "malformed", "PORT=8080"})
	require.Equal(t, "hello", out["GREETING"])
	require.Equal(t, "8080", out["PORT"])
	require.NotContains(t, out, "malformed")
}

func TestBuildEvaluatorHermetic(t *testing.T) {
	flagHermetic = true
	defer func() { flagHermetic = false }()

	e := buildEvaluator("<test>")
	require.NotNil(t, e)
}

func TestRunSourceParseError(t *testing.T) {
	err := runSource("<test>", "let x = ")
	require.Error(t, err)
	ee, ok := err.(*exitError)
	require.True(t, ok)
	require.Equal(t, exitParseError, ee.code)
}

func TestRunSourceSuccess(t *testing.T) {
	err := runSource("<test>", `{"a": 1, "b": [1, 2, 3]}`)
	require.NoError(t, err)
}

func TestRunSourceFromFixtureFile(t *testing.T) {
	source, filename, err := readSource("../../testdata/service.ryan")
	require.NoError(t, err)
	require.NoError(t, runSource(filename, source))
}
