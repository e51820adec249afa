package value_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokahuke/ryan/internal/value"
)

func TestEqualDistinguishesIntegerFromFloat(t *testing.T) {
	assert.False(t, value.Equal(value.Integer(1), value.Float(1.0)))
	assert.True(t, value.Equal(value.Integer(1), value.Integer(1)))
	assert.True(t, value.Equal(value.Float(1.5), value.Float(1.5)))
}

func TestCompareRejectsNaN(t *testing.T) {
	nan := value.Float(math.NaN())
	_, ok := value.Compare(nan, value.Integer(1))
	require.False(t, ok)

	_, ok = value.Compare(value.Text("a"), value.Integer(1))
	require.False(t, ok)
}

func TestMapMergeRightWins(t *testing.T) {
	lb := value.NewBuilder()
	lb.Set("a", value.Integer(1))
	lb.Set("b", value.Integer(2))
	left := lb.Freeze()

	rb := value.NewBuilder()
	rb.Set("b", value.Integer(20))
	rb.Set("c", value.Integer(3))
	right := rb.Freeze()

	merged := value.Merge(left, right)
	require.Equal(t, 3, merged.Len())

	b, _ := merged.Get("b")
	require.True(t, value.Equal(b, value.Integer(20)))

	require.Equal(t, []string{"a", "b", "c"}, merged.Keys())
}

func TestExtractPath(t *testing.T) {
	b := value.NewBuilder()
	b.Set("items", value.List([]value.Value{value.Integer(10), value.Integer(20)}))
	m := value.FromMap(b.Freeze())

	got, err := m.ExtractPath([]value.Value{value.Text("items"), value.Integer(1)})
	require.NoError(t, err)
	require.True(t, value.Equal(got, value.Integer(20)))
}

func TestCanonicalTypeWidensMixedList(t *testing.T) {
	list := value.List([]value.Value{value.Integer(1), value.Text("a")})
	typ := list.CanonicalType()
	require.Contains(t, typ.String(), "Integer")
	require.Contains(t, typ.String(), "Text")
}

func TestStrictRecordRejectsExtraKeys(t *testing.T) {
	b := value.NewBuilder()
	b.Set("a", value.Integer(1))
	b.Set("b", value.Integer(2))
	m := value.FromMap(b.Freeze())

	strict := value.TRecord{Fields: map[string]value.Type{"a": value.TInteger{}}, Strict: true}
	require.False(t, strict.Matches(m))

	lax := value.TRecord{Fields: map[string]value.Type{"a": value.TInteger{}}, Strict: false}
	require.True(t, lax.Matches(m))
}

func TestDebugStringUnquotesText(t *testing.T) {
	require.Equal(t, "hello", value.Text("hello").DebugString())
	require.Equal(t, `"hello"`, value.Text("hello").String())
}
