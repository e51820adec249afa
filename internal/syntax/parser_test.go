package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokahuke/ryan/internal/rerr"
	"github.com/tokahuke/ryan/internal/syntax"
)

func TestParseJSONSuperset(t *testing.T) {
	block, err := syntax.Parse("<test>", `{"a": 1, "b": [1, 2.5, "x", null, true]}`)
	require.NoError(t, err)
	require.Empty(t, block.Bindings)
	dict, ok := block.Result.(*syntax.DictLit)
	require.True(t, ok)
	require.Len(t, dict.Entries, 2)
}

func TestParseZeroArgBindingAndResult(t *testing.T) {
	block, err := syntax.Parse("<test>", `let x = 1; x + 1`)
	require.NoError(t, err)
	require.Len(t, block.Bindings, 1)
	def, ok := block.Bindings[0].(*syntax.Destructuring)
	require.True(t, ok)
	ident, isIdent := def.Pattern.(syntax.PatIdentifier)
	require.Equal(t, "x", ident.Name)
	require.True(t, isIdent)
}

func TestParseListDestructuring(t *testing.T) {
	block, err := syntax.Parse("<test>", `let [a, b] = [1, 2] a + b`)
	require.NoError(t, err)
	require.Len(t, block.Bindings, 1)
	_, ok := block.Bindings[0].(*syntax.Destructuring)
	require.True(t, ok)
}

func TestParsePatternMatchDefWithArgument(t *testing.T) {
	block, err := syntax.Parse("<test>", `let f x = { x + 1 } f 41`)
	require.NoError(t, err)
	require.Len(t, block.Bindings, 1)
	def, ok := block.Bindings[0].(*syntax.PatternMatchDef)
	require.True(t, ok)
	require.Equal(t, "f", def.Identifier)
}

func TestParseDictKeyDoesNotSwallowColon(t *testing.T) {
	block, err := syntax.Parse("<test>", `{"a": 1}`)
	require.NoError(t, err)
	dict, ok := block.Result.(*syntax.DictLit)
	require.True(t, ok)
	require.Len(t, dict.Entries, 1)
}

func TestParseTemplateStringInterpolation(t *testing.T) {
	block, err := syntax.Parse("<test>", "let name = \"world\"; `hello ${name}`")
	require.NoError(t, err)
	ts, ok := block.Result.(*syntax.TemplateString)
	require.True(t, ok)
	require.Len(t, ts.Chunks, 2)
}

func TestParseConditional(t *testing.T) {
	block, err := syntax.Parse("<test>", `if true then 1 else 2`)
	require.NoError(t, err)
	_, ok := block.Result.(*syntax.Conditional)
	require.True(t, ok)
}

func TestParseListComprehension(t *testing.T) {
	block, err := syntax.Parse("<test>", `[x for x in [1, 2, 3] if x > 1]`)
	require.NoError(t, err)
	lc, ok := block.Result.(*syntax.ListComprehension)
	require.True(t, ok)
	require.Len(t, lc.Clauses, 1)
	require.NotNil(t, lc.Guard)
}

func TestParseTypeGuardedPattern(t *testing.T) {
	block, err := syntax.Parse("<test>", `let f x: int = { x } f 1`)
	require.NoError(t, err)
	def, ok := block.Bindings[0].(*syntax.PatternMatchDef)
	require.True(t, ok)
	ident, ok := def.Pattern.(syntax.PatIdentifier)
	require.True(t, ok)
	require.NotNil(t, ident.TypeGuard)
	require.Equal(t, syntax.TypeName{Name: "Integer"}, ident.TypeGuard)
}

// TestParseTypeSyntaxForms exercises every surface form spec.md's
// "Syntax highlights" line names: list, dict-of, tuple, open record,
// strict record, union, and postfix-nullable.
func TestParseTypeSyntaxForms(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want syntax.TypeExpr
	}{
		{"list", "let f x: [int] = { x }", syntax.TypeList{Elem: syntax.TypeName{Name: "Integer"}}},
		{"dict-of", "let f x: {text} = { x }", syntax.TypeDict{Elem: syntax.TypeName{Name: "Text"}}},
		{"tuple", "let f x: (int, text) = { x }", syntax.TypeTuple{Elems: []syntax.TypeExpr{
			syntax.TypeName{Name: "Integer"}, syntax.TypeName{Name: "Text"},
		}}},
		{"open record", "let f x: { k: int, .. } = { x }", syntax.TypeRecord{
			Fields: []syntax.TypeRecordField{{Key: "k", Type: syntax.TypeName{Name: "Integer"}}},
			Strict: false,
		}},
		{"strict record", "let f x: {k: int} = { x }", syntax.TypeRecord{
			Fields: []syntax.TypeRecordField{{Key: "k", Type: syntax.TypeName{Name: "Integer"}}},
			Strict: true,
		}},
		{"union", "let f x: int | text = { x }", syntax.TypeOr{Alts: []syntax.TypeExpr{
			syntax.TypeName{Name: "Integer"}, syntax.TypeName{Name: "Text"},
		}}},
		{"nullable", "let f x: int? = { x }", syntax.TypeOr{Alts: []syntax.TypeExpr{
			syntax.TypeName{Name: "Integer"}, syntax.TypeName{Name: "Null"},
		}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			block, err := syntax.Parse("<test>", tc.src)
			require.NoError(t, err)
			def, ok := block.Bindings[0].(*syntax.PatternMatchDef)
			require.True(t, ok)
			ident, ok := def.Pattern.(syntax.PatIdentifier)
			require.True(t, ok)
			require.Equal(t, tc.want, ident.TypeGuard)
		})
	}
}

func TestParseAccumulatesMultipleErrors(t *testing.T) {
	_, err := syntax.Parse("<test>", `let = + )`)
	require.Error(t, err)
	var pes rerr.ParseErrors
	require.ErrorAs(t, err, &pes)
	require.Greater(t, len(pes), 1)
}
