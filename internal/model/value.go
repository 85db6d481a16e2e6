package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind identifies the dynamic type held by a Value.
type Kind int

const (
	// KindNull is the zero Kind; a null or unset value.
	KindNull Kind = iota

	// KindString is a text value.
	KindString

	// KindNumber is a numeric value, stored as float64 like JSON numbers.
	KindNumber

	// KindBool is a boolean value.
	KindBool

	// KindObject is a nested key-value mapping.
	KindObject

	// KindArray is an ordered sequence of values.
	KindArray
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a dynamically typed record field. Ingested data has no fixed
// schema, so fields carry one of a small set of shapes: string, number,
// bool, nested object, array, or null.
//
// Design decision: We use a tagged union rather than interface{} because:
//  1. The set of shapes is closed (JSON value types), so a tag is exact
//  2. Accessors return (value, ok) pairs instead of requiring type switches
//     at every call site
//  3. Marshal/Unmarshal round-trip without reflection surprises
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	obj  map[string]Value
	arr  []Value
}

// Null returns the null Value.
func Null() Value {
	return Value{kind: KindNull}
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Object returns a nested-mapping Value.
func Object(m map[string]Value) Value {
	return Value{kind: KindObject, obj: m}
}

// Array returns a sequence Value.
func Array(items ...Value) Value {
	return Value{kind: KindArray, arr: items}
}

// Kind returns the dynamic type of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsString returns the string content and whether the value is a string.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsNumber returns the numeric content and whether the value is a number.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsBool returns the boolean content and whether the value is a bool.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsObject returns the nested mapping and whether the value is an object.
func (v Value) AsObject() (map[string]Value, bool) {
	return v.obj, v.kind == KindObject
}

// AsArray returns the sequence and whether the value is an array.
func (v Value) AsArray() ([]Value, bool) {
	return v.arr, v.kind == KindArray
}

// Text returns a display string for the value. Strings are returned as-is,
// numbers and bools are formatted, and composite values render as compact
// JSON. Null renders as the empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindObject, KindArray:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

// MarshalJSON encodes the value as its underlying JSON shape.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindObject:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.obj)
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes any JSON value into the matching Value shape.
// The shape is chosen by the first non-space byte, then delegated to
// encoding/json for the actual parse.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		*v = Null()
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case '{':
		var m map[string]Value
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*v = Object(m)
	case '[':
		var a []Value
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		*v = Value{kind: KindArray, arr: a}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case 'n':
		var null any
		if err := json.Unmarshal(data, &null); err != nil {
			return err
		}
		*v = Null()
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*v = Number(f)
	}

	return nil
}
