// Package wire defines the JSON envelope shapes and generic value type
// shared by every layer of the protocol client.
package wire

import (
	"encoding/json"

	"github.com/ysmood/gson"
)

// Value is a generic, dynamically-typed JSON document. Initializers,
// request params, and RPC results all arrive as arbitrary JSON shaped
// by the engine's protocol version, so callers that don't need a
// static Go struct can walk the document directly instead of
// round-tripping through one.
type Value struct {
	j gson.JSON
}

// Nil is the zero Value, equivalent to a JSON null.
var Nil = Value{}

// NewValue wraps an arbitrary Go value (map, slice, primitive) as a Value.
func NewValue(v interface{}) Value {
	return Value{j: gson.New(v)}
}

// ParseValue decodes raw JSON bytes into a Value. Empty input decodes to Nil.
func ParseValue(raw []byte) (Value, error) {
	if len(raw) == 0 {
		return Nil, nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return Value{}, err
	}
	return Value{j: gson.New(v)}, nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.j.Val() == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v.j.Val())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Nil reports whether the value is JSON null or was never set.
func (v Value) Nil() bool {
	return v.j.Val() == nil
}

// Get walks a dotted/indexed path ("foo.bar.0.baz") the way gson does.
func (v Value) Get(path string) Value {
	return Value{j: v.j.Get(path)}
}

// Str returns the value as a string (empty string if absent or not a string).
func (v Value) Str() string { return v.j.Str() }

// Int returns the value as an int (0 if absent or not numeric).
func (v Value) Int() int { return v.j.Int() }

// Bool returns the value as a bool (false if absent or not boolean).
func (v Value) Bool() bool { return v.j.Bool() }

// Arr returns the value's array elements, empty if the value isn't an array.
func (v Value) Arr() []Value {
	raw := v.j.Arr()
	out := make([]Value, len(raw))
	for i, item := range raw {
		out[i] = Value{j: item}
	}
	return out
}

// Map returns the value's object fields, empty if the value isn't an object.
func (v Value) Map() map[string]Value {
	raw, ok := v.j.Val().(map[string]interface{})
	out := make(map[string]Value, len(raw))
	if !ok {
		return out
	}
	for k, item := range raw {
		out[k] = Value{j: gson.New(item)}
	}
	return out
}

// Decode unmarshals the value into a static Go type.
func (v Value) Decode(dst interface{}) error {
	raw, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// Raw returns the underlying value as a plain interface{} (map, slice, or primitive).
func (v Value) Raw() interface{} {
	return v.j.Val()
}
