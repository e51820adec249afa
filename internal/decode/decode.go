// Package decode maps a final ryan value.Value onto host Go data via
// reflection — the analogue of serde's Deserializer that
// original_source/ryan/src/de.rs implements for Rust, reworked into
// Go's encoding/json-style "Unmarshal into a pointer" shape instead of
// a visitor trait (Go has no serde; reflect.Value walking is how the
// pack's own config loaders, e.g. aretext's, turn dynamic data into
// typed structs). Struct fields are addressed by a `ryan:"name"` tag,
// falling back to the lowercased Go field name; `ryan:"name,omitempty"`
// marks a field as allowed to be missing from the source map.
package decode

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/tokahuke/ryan/internal/rerr"
	"github.com/tokahuke/ryan/internal/value"
)

// MaterializedType names a decode target shape for error messages,
// mirroring de.rs's MaterializedType display enum.
type MaterializedType int

const (
	MTBool MaterializedType = iota
	MTI8
	MTI16
	MTI32
	MTI64
	MTU8
	MTU16
	MTU32
	MTU64
	MTF32
	MTF64
	MTString
	MTBytes
	MTUnit
	MTList
	MTMap
	MTEnum
	MTAny
)

func (m MaterializedType) String() string {
	switch m {
	case MTBool:
		return "a boolean"
	case MTI8:
		return "an 8-bit integer"
	case MTI16:
		return "a 16-bit integer"
	case MTI32:
		return "a 32-bit integer"
	case MTI64:
		return "a 64-bit integer"
	case MTU8:
		return "an 8-bit unsigned integer"
	case MTU16:
		return "a 16-bit unsigned integer"
	case MTU32:
		return "a 32-bit unsigned integer"
	case MTU64:
		return "a 64-bit unsigned integer"
	case MTF32:
		return "a 32-bit float"
	case MTF64:
		return "a 64-bit float"
	case MTString:
		return "text"
	case MTBytes:
		return "a byte list"
	case MTUnit:
		return "null"
	case MTList:
		return "a list"
	case MTMap:
		return "a map"
	case MTEnum:
		return "an enum (text or single-key map)"
	default:
		return "any value"
	}
}

func typeError(expected MaterializedType, got value.Value) error {
	return rerr.Newf(rerr.CodeDecode, nil, "expected %s, got `%s` (a %s)", expected, got.String(), got.CanonicalType().String())
}

func rangeError(expected MaterializedType, got int64) error {
	return rerr.Newf(rerr.CodeDecode, nil, "integer %d does not fit in %s", got, expected)
}

func lengthMismatch(expected, got int) error {
	return rerr.Newf(rerr.CodeDecode, nil, "expected a list of length %d, got length %d", expected, got)
}

// Into decodes v into *target, which must be a non-nil pointer.
func Into(v value.Value, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}
	return decodeInto(v, rv.Elem())
}

// Variant is implemented by a decode target representing a tagged enum
// (spec.md §4.7: "Enums are encoded either as a Text (unit variant) or
// as a single-entry map { variant: payload }"). DecodeVariant receives
// the matched tag and its payload — value.Null() for a unit variant —
// and is responsible for populating the receiver from it.
type Variant interface {
	DecodeVariant(tag string, payload value.Value) error
}

var variantType = reflect.TypeOf((*Variant)(nil)).Elem()

func decodeInto(v value.Value, rv reflect.Value) error {
	if rv.CanAddr() && rv.Addr().Type().Implements(variantType) {
		return decodeVariant(v, rv.Addr().Interface().(Variant))
	}

	// Anything addressing the empty interface gets the generic,
	// JSON-shaped decode regardless of the source Value's kind.
	if rv.Kind() == reflect.Interface && rv.NumMethod() == 0 {
		out, err := decodeAny(v)
		if err != nil {
			return err
		}
		if out == nil {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		rv.Set(reflect.ValueOf(out))
		return nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		b, ok := v.AsBool()
		if !ok {
			return typeError(MTBool, v)
		}
		rv.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := v.AsInteger()
		if !ok {
			return typeError(intMaterialized(rv.Kind()), v)
		}
		if rv.OverflowInt(i) || !roundTripsInt(i, rv.Type().Bits()) {
			return rangeError(intMaterialized(rv.Kind()), i)
		}
		rv.SetInt(i)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, ok := v.AsInteger()
		if !ok {
			return typeError(uintMaterialized(rv.Kind()), v)
		}
		if i < 0 || rv.OverflowUint(uint64(i)) || !roundTripsUint(i, rv.Type().Bits()) {
			return rangeError(uintMaterialized(rv.Kind()), i)
		}
		rv.SetUint(uint64(i))
		return nil

	case reflect.Float32, reflect.Float64:
		if i, ok := v.AsInteger(); ok {
			rv.SetFloat(float64(i))
			return nil
		}
		f, ok := v.AsFloat()
		if !ok {
			return typeError(floatMaterialized(rv.Kind()), v)
		}
		rv.SetFloat(f)
		return nil

	case reflect.String:
		s, ok := v.AsText()
		if !ok {
			return typeError(MTString, v)
		}
		rv.SetString(s)
		return nil

	case reflect.Ptr:
		if v.Kind() == value.KindNull {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		elem := reflect.New(rv.Type().Elem())
		if err := decodeInto(v, elem.Elem()); err != nil {
			return err
		}
		rv.Set(elem)
		return nil

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return decodeBytes(v, rv)
		}
		return decodeSeq(v, rv, -1)

	case reflect.Array:
		return decodeSeq(v, rv, rv.Len())

	case reflect.Map:
		return decodeMap(v, rv)

	case reflect.Struct:
		return decodeStruct(v, rv)
	}

	return fmt.Errorf("decode: unsupported target kind %s", rv.Kind())
}

func intMaterialized(k reflect.Kind) MaterializedType {
	switch k {
	case reflect.Int8:
		return MTI8
	case reflect.Int16:
		return MTI16
	case reflect.Int32:
		return MTI32
	default:
		return MTI64
	}
}

func uintMaterialized(k reflect.Kind) MaterializedType {
	switch k {
	case reflect.Uint8:
		return MTU8
	case reflect.Uint16:
		return MTU16
	case reflect.Uint32:
		return MTU32
	default:
		return MTU64
	}
}

func floatMaterialized(k reflect.Kind) MaterializedType {
	if k == reflect.Float32 {
		return MTF32
	}
	return MTF64
}

// roundTripsInt mirrors de.rs's `int as iN as i64 == int` exact-range
// check: narrowing then widening back must reproduce the same value.
func roundTripsInt(i int64, bits int) bool {
	if bits >= 64 {
		return true
	}
	shift := uint(64 - bits)
	return (i << shift) >> shift == i
}

func roundTripsUint(i int64, bits int) bool {
	if i < 0 {
		return false
	}
	if bits >= 64 {
		return true
	}
	return uint64(i) < (uint64(1) << uint(bits))
}

// decodeVariant implements the enum shape of spec.md §4.7: a bare Text
// value is a unit variant (payload null); a single-entry map is a
// variant carrying a payload. Any other shape, or a map with more or
// fewer than one key, is a decode error.
func decodeVariant(v value.Value, variant Variant) error {
	switch v.Kind() {
	case value.KindText:
		tag, _ := v.AsText()
		return variant.DecodeVariant(tag, value.Null())
	case value.KindMap:
		m, _ := v.AsMap()
		if m.Len() != 1 {
			return rerr.Newf(rerr.CodeDecode, nil, "expected a single-entry map naming an enum variant, got %d keys", m.Len())
		}
		tag := m.Keys()[0]
		payload, _ := m.Get(tag)
		return variant.DecodeVariant(tag, payload)
	default:
		return typeError(MTEnum, v)
	}
}

func decodeBytes(v value.Value, rv reflect.Value) error {
	list, ok := v.AsList()
	if !ok {
		return typeError(MTBytes, v)
	}
	out := make([]byte, len(list))
	for i, item := range list {
		n, ok := item.AsInteger()
		if !ok {
			return typeError(MTU8, item)
		}
		if n < 0 || n > 255 {
			return rangeError(MTU8, n)
		}
		out[i] = byte(n)
	}
	rv.SetBytes(out)
	return nil
}

func decodeSeq(v value.Value, rv reflect.Value, fixedLen int) error {
	list, ok := v.AsList()
	if !ok {
		return typeError(MTList, v)
	}
	if fixedLen >= 0 && len(list) != fixedLen {
		return lengthMismatch(fixedLen, len(list))
	}
	if rv.Kind() == reflect.Slice {
		rv.Set(reflect.MakeSlice(rv.Type(), len(list), len(list)))
	}
	for i, item := range list {
		if err := decodeInto(item, rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func decodeMap(v value.Value, rv reflect.Value) error {
	m, ok := v.AsMap()
	if !ok {
		return typeError(MTMap, v)
	}
	if rv.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("decode: map target must have a string key type, got %s", rv.Type().Key())
	}
	rv.Set(reflect.MakeMapWithSize(rv.Type(), m.Len()))
	for _, k := range m.Keys() {
		val, _ := m.Get(k)
		elem := reflect.New(rv.Type().Elem()).Elem()
		if err := decodeInto(val, elem); err != nil {
			return err
		}
		rv.SetMapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()), elem)
	}
	return nil
}

type structField struct {
	index     int
	name      string
	omitempty bool
}

func structFields(t reflect.Type) []structField {
	out := make([]structField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		name := strings.ToLower(f.Name)
		omitempty := false
		if tag, ok := f.Tag.Lookup("ryan"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					omitempty = true
				}
			}
		}
		out = append(out, structField{index: i, name: name, omitempty: omitempty})
	}
	return out
}

func decodeStruct(v value.Value, rv reflect.Value) error {
	m, ok := v.AsMap()
	if !ok {
		return typeError(MTMap, v)
	}
	for _, f := range structFields(rv.Type()) {
		val, present := m.Get(f.name)
		if !present {
			if f.omitempty || rv.Field(f.index).Kind() == reflect.Ptr {
				continue
			}
			return rerr.Newf(rerr.CodeDecode, nil, "missing required field %q", f.name)
		}
		if err := decodeInto(val, rv.Field(f.index)); err != nil {
			return fmt.Errorf("field %q: %w", f.name, err)
		}
	}
	return nil
}

// decodeAny decodes v into the untyped, JSON-shaped Go representation
// (map[string]any, []any, string, int64, float64, bool, nil) — the
// `interface{}` target case, equivalent to de.rs's deserialize_any.
func decodeAny(v value.Value) (any, error) {
	switch v.Kind() {
	case value.KindNull:
		return nil, nil
	case value.KindBool:
		b, _ := v.AsBool()
		return b, nil
	case value.KindInteger:
		i, _ := v.AsInteger()
		return i, nil
	case value.KindFloat:
		f, _ := v.AsFloat()
		return f, nil
	case value.KindText:
		s, _ := v.AsText()
		return s, nil
	case value.KindList:
		list, _ := v.AsList()
		out := make([]any, len(list))
		for i, item := range list {
			j, err := decodeAny(item)
			if err != nil {
				return nil, err
			}
			out[i] = j
		}
		return out, nil
	case value.KindMap:
		m, _ := v.AsMap()
		out := make(map[string]any, m.Len())
		for _, k := range m.Keys() {
			val, _ := m.Get(k)
			j, err := decodeAny(val)
			if err != nil {
				return nil, err
			}
			out[k] = j
		}
		return out, nil
	default:
		return nil, typeError(MTAny, v)
	}
}
