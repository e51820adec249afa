package decode_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokahuke/ryan/internal/decode"
	"github.com/tokahuke/ryan/internal/value"
)

func TestDecodeStructWithOmitempty(t *testing.T) {
	type Config struct {
		Name string `ryan:"name"`
		Port int    `ryan:"port,omitempty"`
	}

	b := value.NewBuilder()
	b.Set("name", value.Text("svc"))
	m := value.FromMap(b.Freeze())

	var cfg Config
	require.NoError(t, decode.Into(m, &cfg))
	require.Equal(t, "svc", cfg.Name)
	require.Equal(t, 0, cfg.Port)
}

func TestDecodeMissingRequiredField(t *testing.T) {
	type Config struct {
		Name string `ryan:"name"`
	}
	m := value.FromMap(value.EmptyMap())

	var cfg Config
	require.Error(t, decode.Into(m, &cfg))
}

func TestDecodeIntegerRangeError(t *testing.T) {
	var out int8
	require.Error(t, decode.Into(value.Integer(200), &out))

	var ok int8
	require.NoError(t, decode.Into(value.Integer(100), &ok))
	require.Equal(t, int8(100), ok)
}

func TestDecodeSliceAndMap(t *testing.T) {
	list := value.List([]value.Value{value.Integer(1), value.Integer(2), value.Integer(3)})
	var ints []int
	require.NoError(t, decode.Into(list, &ints))
	require.Equal(t, []int{1, 2, 3}, ints)

	b := value.NewBuilder()
	b.Set("a", value.Integer(1))
	b.Set("b", value.Integer(2))
	m := value.FromMap(b.Freeze())

	var out map[string]int
	require.NoError(t, decode.Into(m, &out))
	require.Equal(t, map[string]int{"a": 1, "b": 2}, out)
}

func TestDecodeTupleLengthMismatch(t *testing.T) {
	list := value.List([]value.Value{value.Integer(1), value.Integer(2)})
	var pair [3]int
	require.Error(t, decode.Into(list, &pair))
}

func TestDecodeAnyInterface(t *testing.T) {
	b := value.NewBuilder()
	b.Set("count", value.Integer(3))
	m := value.FromMap(b.Freeze())

	var out any
	require.NoError(t, decode.Into(m, &out))
	asMap, ok := out.(map[string]any)
	require.True(t, ok)
	require.Equal(t, int64(3), asMap["count"])
}

type shape struct {
	Kind   string
	Radius float64
	Side   float64
}

func (s *shape) DecodeVariant(tag string, payload value.Value) error {
	s.Kind = tag
	switch tag {
	case "circle":
		m, _ := payload.AsMap()
		r, _ := m.Get("radius")
		s.Radius, _ = r.AsFloat()
	case "square":
		m, _ := payload.AsMap()
		side, _ := m.Get("side")
		s.Side, _ = side.AsFloat()
	case "point":
		// unit variant, no payload
	}
	return nil
}

func TestDecodeVariantWithPayload(t *testing.T) {
	payload := value.NewBuilder()
	payload.Set("radius", value.Float(2.5))
	b := value.NewBuilder()
	b.Set("circle", value.FromMap(payload.Freeze()))

	var s shape
	require.NoError(t, decode.Into(value.FromMap(b.Freeze()), &s))
	require.Equal(t, "circle", s.Kind)
	require.Equal(t, 2.5, s.Radius)
}

func TestDecodeVariantUnit(t *testing.T) {
	var s shape
	require.NoError(t, decode.Into(value.Text("point"), &s))
	require.Equal(t, "point", s.Kind)
}

func TestDecodeVariantRejectsMultiKeyMap(t *testing.T) {
	b := value.NewBuilder()
	b.Set("circle", value.Integer(1))
	b.Set("square", value.Integer(2))

	var s shape
	require.Error(t, decode.Into(value.FromMap(b.Freeze()), &s))
}

func TestDecodePointerOptional(t *testing.T) {
	type Config struct {
		Label *string `ryan:"label"`
	}
	b := value.NewBuilder()
	b.Set("label", value.Null())
	m := value.FromMap(b.Freeze())

	var cfg Config
	require.NoError(t, decode.Into(m, &cfg))
	require.Nil(t, cfg.Label)
}
