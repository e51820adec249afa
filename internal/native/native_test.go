package native_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokahuke/ryan/internal/native"
	"github.com/tokahuke/ryan/internal/value"
)

func call(t *testing.T, name string, arg value.Value) value.Value {
	t.Helper()
	v, ok := native.Default().Lookup(name)
	require.True(t, ok, "builtin %q must be registered", name)
	npm, ok := v.AsNativePatternMatch()
	require.True(t, ok)
	out, err := npm.Func(arg)
	require.NoError(t, err)
	return out
}

func callErr(t *testing.T, name string, arg value.Value) error {
	t.Helper()
	v, ok := native.Default().Lookup(name)
	require.True(t, ok)
	npm, ok := v.AsNativePatternMatch()
	require.True(t, ok)
	_, err := npm.Func(arg)
	return err
}

func TestFmtStringifiesAnyValue(t *testing.T) {
	out := call(t, "fmt", value.Integer(42))
	s, ok := out.AsText()
	require.True(t, ok)
	require.Equal(t, "42", s)
}

func TestLenOverListMapText(t *testing.T) {
	out := call(t, "len", value.List([]value.Value{value.Integer(1), value.Integer(2)}))
	n, _ := out.AsInteger()
	require.Equal(t, int64(2), n)

	out = call(t, "len", value.Text("hello"))
	n, _ = out.AsInteger()
	require.Equal(t, int64(5), n)

	require.Error(t, callErr(t, "len", value.Integer(1)))
}

func TestRangeBuildsHalfOpenInterval(t *testing.T) {
	out := call(t, "range", value.List([]value.Value{value.Integer(0), value.Integer(3)}))
	list, _ := out.AsList()
	require.Len(t, list, 3)
	first, _ := list[0].AsInteger()
	last, _ := list[2].AsInteger()
	require.Equal(t, int64(0), first)
	require.Equal(t, int64(2), last)
}

func TestZipStopsAtShorterList(t *testing.T) {
	out := call(t, "zip", value.List([]value.Value{
		value.List([]value.Value{value.Integer(1), value.Integer(2), value.Integer(3)}),
		value.List([]value.Value{value.Text("a"), value.Text("b")}),
	}))
	list, _ := out.AsList()
	require.Len(t, list, 2)
}

func TestEnumerateProducesIndexValuePairs(t *testing.T) {
	out := call(t, "enumerate", value.List([]value.Value{value.Text("a"), value.Text("b")}))
	list, _ := out.AsList()
	require.Len(t, list, 2)
	pair, _ := list[1].AsList()
	idx, _ := pair[0].AsInteger()
	require.Equal(t, int64(1), idx)
}

func TestSumPromotesToFloatOnAnyFloatMember(t *testing.T) {
	out := call(t, "sum", value.List([]value.Value{value.Integer(1), value.Integer(2)}))
	i, ok := out.AsInteger()
	require.True(t, ok)
	require.Equal(t, int64(3), i)

	out = call(t, "sum", value.List([]value.Value{value.Integer(1), value.Float(2.5)}))
	f, ok := out.AsFloat()
	require.True(t, ok)
	require.Equal(t, 3.5, f)

	require.Error(t, callErr(t, "sum", value.List([]value.Value{value.Text("x")})))
}

func TestMaxAndMin(t *testing.T) {
	nums := value.List([]value.Value{value.Integer(3), value.Integer(1), value.Integer(2)})
	out := call(t, "max", nums)
	i, _ := out.AsInteger()
	require.Equal(t, int64(3), i)

	out = call(t, "min", nums)
	i, _ = out.AsInteger()
	require.Equal(t, int64(1), i)

	require.Error(t, callErr(t, "max", value.List(nil)))
}

func TestAllAndAny(t *testing.T) {
	allTrue := value.List([]value.Value{value.Bool(true), value.Bool(true)})
	mixed := value.List([]value.Value{value.Bool(true), value.Bool(false)})

	out := call(t, "all", allTrue)
	b, _ := out.AsBool()
	require.True(t, b)

	out = call(t, "all", mixed)
	b, _ = out.AsBool()
	require.False(t, b)

	out = call(t, "any", mixed)
	b, _ = out.AsBool()
	require.True(t, b)
}

func TestSortOrdersAscending(t *testing.T) {
	out := call(t, "sort", value.List([]value.Value{value.Integer(3), value.Integer(1), value.Integer(2)}))
	list, _ := out.AsList()
	a, _ := list[0].AsInteger()
	b, _ := list[1].AsInteger()
	c, _ := list[2].AsInteger()
	require.Equal(t, []int64{1, 2, 3}, []int64{a, b, c})
}

func TestSortFailsLoudlyOnIncomparableElements(t *testing.T) {
	err := callErr(t, "sort", value.List([]value.Value{value.Integer(1), value.Text("x")}))
	require.Error(t, err)
}

func TestKeysAndValuesPreserveInsertionOrder(t *testing.T) {
	b := value.NewBuilder()
	b.Set("z", value.Integer(1))
	b.Set("a", value.Integer(2))
	m := value.FromMap(b.Freeze())

	out := call(t, "keys", m)
	list, _ := out.AsList()
	k0, _ := list[0].AsText()
	k1, _ := list[1].AsText()
	require.Equal(t, []string{"z", "a"}, []string{k0, k1})

	out = call(t, "values", m)
	list, _ = out.AsList()
	v0, _ := list[0].AsInteger()
	v1, _ := list[1].AsInteger()
	require.Equal(t, []int64{1, 2}, []int64{v0, v1})
}

func TestTextCaseAndTrimBuiltins(t *testing.T) {
	out := call(t, "uppercase", value.Text("Hi"))
	s, _ := out.AsText()
	require.Equal(t, "HI", s)

	out = call(t, "lowercase", value.Text("Hi"))
	s, _ = out.AsText()
	require.Equal(t, "hi", s)

	out = call(t, "trim", value.Text("  hi  "))
	s, _ = out.AsText()
	require.Equal(t, "hi", s)
}

func callCurried(t *testing.T, name string, first, second value.Value) value.Value {
	t.Helper()
	v, ok := native.Default().Lookup(name)
	require.True(t, ok)
	npm, ok := v.AsNativePatternMatch()
	require.True(t, ok)
	mid, err := npm.Func(first)
	require.NoError(t, err)
	midNpm, ok := mid.AsNativePatternMatch()
	require.True(t, ok)
	out, err := midNpm.Func(second)
	require.NoError(t, err)
	return out
}

func TestJoinCurried(t *testing.T) {
	out := callCurried(t, "join", value.Text(", "),
		value.List([]value.Value{value.Text("a"), value.Text("b")}))
	s, _ := out.AsText()
	require.Equal(t, "a, b", s)
}

func TestSplitCurried(t *testing.T) {
	out := callCurried(t, "split", value.Text(","), value.Text("a,b,c"))
	list, _ := out.AsList()
	require.Len(t, list, 3)
}

func TestStartsWithAndEndsWithCurried(t *testing.T) {
	out := callCurried(t, "starts_with", value.Text("foo"), value.Text("foobar"))
	b, _ := out.AsBool()
	require.True(t, b)

	out = callCurried(t, "ends_with", value.Text("bar"), value.Text("foobar"))
	b, _ = out.AsBool()
	require.True(t, b)
}

func TestReplaceCurried(t *testing.T) {
	out := callCurried(t, "replace",
		value.List([]value.Value{value.Text("a"), value.Text("x")}),
		value.Text("banana"))
	s, _ := out.AsText()
	require.Equal(t, "bxnxnx", s)
}
