package eval_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokahuke/ryan/internal/eval"
	"github.com/tokahuke/ryan/internal/imports"
	"github.com/tokahuke/ryan/internal/native"
	"github.com/tokahuke/ryan/internal/syntax"
)

func newEvaluator(t *testing.T) *eval.Evaluator {
	t.Helper()
	return eval.New(native.Default(), imports.NewState(imports.NoImport{}), "<test>")
}

func evalSource(t *testing.T, source string) (string, error) {
	t.Helper()
	e := newEvaluator(t)
	block, err := syntax.Parse("<test>", source)
	require.NoError(t, err)
	v, err := e.EvalBlock(e.RootScope(), block)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func TestEvalJSONSuperset(t *testing.T) {
	out, err := evalSource(t, `{"a": 1, "b": [1, 2, 3]}`)
	require.NoError(t, err)
	require.Contains(t, out, `"a"`)
}

func TestEvalPatternMatchDispatchTriesAlternativesInOrder(t *testing.T) {
	out, err := evalSource(t, `
		let describe 0 = "zero";
		let describe n: int = "nonzero";
		[describe 0, describe 5]
	`)
	require.NoError(t, err)
	require.Equal(t, `["zero", "nonzero"]`, out)
}

func TestEvalPatternMatchFallsThroughOnNoMatch(t *testing.T) {
	_, err := evalSource(t, `
		let only_zero 0 = "zero";
		only_zero 1
	`)
	require.Error(t, err)
}

func TestEvalCaptureSnapshotIsNotPerturbedByLaterShadowing(t *testing.T) {
	out, err := evalSource(t, `
		let x = 1;
		let makeGetter _ = x;
		let x = 2;
		makeGetter null
	`)
	require.NoError(t, err)
	require.Equal(t, "1", out)
}

func TestEvalComprehensionSkipsNonMatchingElements(t *testing.T) {
	out, err := evalSource(t, `[x for [x] in [[1], 2, [3], "nope"]]`)
	require.NoError(t, err)
	require.Equal(t, "[1, 3]", out)
}

func TestEvalDictComprehension(t *testing.T) {
	out, err := evalSource(t, `{k: v * 2 for [k, v] in {"a": 1, "b": 2}}`)
	require.NoError(t, err)
	require.Contains(t, out, `"a": 2`)
	require.Contains(t, out, `"b": 4`)
}

func TestEvalIntegerDivideByZeroYieldsNaN(t *testing.T) {
	out, err := evalSource(t, `1 / 0`)
	require.NoError(t, err)
	require.Equal(t, "NaN", out)
}

func TestEvalIntegerRemainderByZeroYieldsNaN(t *testing.T) {
	out, err := evalSource(t, `1 % 0`)
	require.NoError(t, err)
	require.Equal(t, "NaN", out)
}

func TestEvalFloatDivideIsOrdinary(t *testing.T) {
	out, err := evalSource(t, `1.0 / 2`)
	require.NoError(t, err)
	require.Equal(t, "0.5", out)
}

func TestEvalPlusOverloadsOnKind(t *testing.T) {
	out, err := evalSource(t, `"a" + "b"`)
	require.NoError(t, err)
	require.Equal(t, `"ab"`, out)

	out, err = evalSource(t, `[1, 2] + [3]`)
	require.NoError(t, err)
	require.Equal(t, "[1, 2, 3]", out)
}

func TestEvalMapPlusMergeRightWins(t *testing.T) {
	out, err := evalSource(t, `{"a": 1} + {"a": 2, "b": 3}`)
	require.NoError(t, err)
	require.Contains(t, out, `"a": 2`)
	require.Contains(t, out, `"b": 3`)
}

func TestEvalNullCoalesce(t *testing.T) {
	out, err := evalSource(t, `null ? 5`)
	require.NoError(t, err)
	require.Equal(t, "5", out)

	out, err = evalSource(t, `3 ? 5`)
	require.NoError(t, err)
	require.Equal(t, "3", out)
}

func TestEvalAndOrShortCircuit(t *testing.T) {
	out, err := evalSource(t, `false and (1 / 0 > 0)`)
	require.NoError(t, err)
	require.Equal(t, "false", out)

	out, err = evalSource(t, `true or (1 / 0 > 0)`)
	require.NoError(t, err)
	require.Equal(t, "true", out)
}

func TestEvalTypeMatchOperator(t *testing.T) {
	out, err := evalSource(t, `1 : int`)
	require.NoError(t, err)
	require.Equal(t, "true", out)

	out, err = evalSource(t, `"x" : int`)
	require.NoError(t, err)
	require.Equal(t, "false", out)
}

func TestEvalTypeMatchCompositeForms(t *testing.T) {
	out, err := evalSource(t, `[1, 2] : [int]`)
	require.NoError(t, err)
	require.Equal(t, "true", out)

	out, err = evalSource(t, `{"a": 1} : {int}`)
	require.NoError(t, err)
	require.Equal(t, "true", out)

	out, err = evalSource(t, `[1, "a"] : (int, text)`)
	require.NoError(t, err)
	require.Equal(t, "true", out)

	out, err = evalSource(t, `{"k": 1} : {k: int, ..}`)
	require.NoError(t, err)
	require.Equal(t, "true", out)

	out, err = evalSource(t, `{"k": 1} : {k: int}`)
	require.NoError(t, err)
	require.Equal(t, "true", out)

	out, err = evalSource(t, `"x" : int | text`)
	require.NoError(t, err)
	require.Equal(t, "true", out)

	out, err = evalSource(t, `null : int?`)
	require.NoError(t, err)
	require.Equal(t, "true", out)
}

func TestEvalInOperator(t *testing.T) {
	out, err := evalSource(t, `2 in [1, 2, 3]`)
	require.NoError(t, err)
	require.Equal(t, "true", out)

	out, err = evalSource(t, `"a" in {"a": 1}`)
	require.NoError(t, err)
	require.Equal(t, "true", out)

	out, err = evalSource(t, `"cd" in "abcdef"`)
	require.NoError(t, err)
	require.Equal(t, "true", out)
}

func TestEvalJuxtapositionOverListIsPathExtraction(t *testing.T) {
	out, err := evalSource(t, `[10, 20, 30] [1]`)
	require.NoError(t, err)
	require.Equal(t, "20", out)
}

func TestEvalConditional(t *testing.T) {
	out, err := evalSource(t, `if 1 > 0 then "yes" else "no"`)
	require.NoError(t, err)
	require.Equal(t, `"yes"`, out)
}

func TestEvalCastBuiltinScalars(t *testing.T) {
	out, err := evalSource(t, `1 as float`)
	require.NoError(t, err)
	require.Equal(t, "1.0", out)

	out, err = evalSource(t, `1 as text`)
	require.NoError(t, err)
	require.Equal(t, `"1"`, out)
}

func TestEvalTemplateStringInterpolation(t *testing.T) {
	out, err := evalSource(t, "let name = \"world\"; `hello ${name}`")
	require.NoError(t, err)
	require.Equal(t, `"hello world"`, out)
}

func TestEvalDestructuring(t *testing.T) {
	out, err := evalSource(t, `let [a, b] = [1, 2]; a + b`)
	require.NoError(t, err)
	require.Equal(t, "3", out)
}

func TestEvalDestructuringOpenDictRestMarker(t *testing.T) {
	out, err := evalSource(t, `
		let { legends: { tanagra, temba, shaka }, .. } = { participants: ["a","b"], legends: { tanagra: "t", temba: "his arms wide", shaka: "fell" } };
		"Temba, " + temba
	`)
	require.NoError(t, err)
	require.Equal(t, `"Temba, his arms wide"`, out)
}

func TestEvalListPatternRestMarker(t *testing.T) {
	out, err := evalSource(t, `let [first, ..] = [1, 2, 3]; first`)
	require.NoError(t, err)
	require.Equal(t, "1", out)

	out, err = evalSource(t, `let [.., last] = [1, 2, 3]; last`)
	require.NoError(t, err)
	require.Equal(t, "3", out)
}

func TestEvalTypeDefAndGuardedPattern(t *testing.T) {
	out, err := evalSource(t, `
		type Positive = int;
		let describe n: Positive = "a positive-typed integer";
		describe 5
	`)
	require.NoError(t, err)
	require.Equal(t, `"a positive-typed integer"`, out)
}

func TestEvalUndefinedIdentifierIsFatal(t *testing.T) {
	_, err := evalSource(t, `undefined_name`)
	require.Error(t, err)
}

func TestEvalImportHermeticFallsBackToDefault(t *testing.T) {
	out, err := evalSource(t, `import "./nope.ryan" or "fallback"`)
	require.NoError(t, err)
	require.Equal(t, `"fallback"`, out)
}

func TestEvalImportDetectsCircularImport(t *testing.T) {
	loader := imports.OverrideOne(imports.NoImport{}, "self.ryan", `import "self.ryan"`)
	e := eval.New(native.Default(), imports.NewState(loader), "self.ryan")

	block, err := syntax.Parse("self.ryan", `import "self.ryan"`)
	require.NoError(t, err)
	_, err = e.EvalBlock(e.RootScope(), block)
	require.Error(t, err)
}

func TestEvalImportMemoizesEvaluatedValue(t *testing.T) {
	loader := imports.OverrideOne(imports.NoImport{}, "shared.ryan", `let r = range [0, 1]; r`)
	e := eval.New(native.Default(), imports.NewState(loader), "main.ryan")

	out, err := evalSource2(t, e, `[import "shared.ryan", import "shared.ryan"]`)
	require.NoError(t, err)
	require.Equal(t, `[[0], [0]]`, out)
}

func evalSource2(t *testing.T, e *eval.Evaluator, source string) (string, error) {
	t.Helper()
	block, err := syntax.Parse(e.CurrentFile, source)
	require.NoError(t, err)
	v, err := e.EvalBlock(e.RootScope(), block)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}
