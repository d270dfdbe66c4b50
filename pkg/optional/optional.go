// Package optional provides a tri-state value for partial updates: a field can be
// absent, explicitly null, or carry a value.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value holds an optional T. The zero Value is absent.
type Value[T any] struct {
	value T
	set   bool
	null  bool
}

// Some returns a present Value holding v.
func Some[T any](v T) Value[T] {
	return Value[T]{value: v, set: true}
}

// Null returns a present Value that was explicitly cleared.
func Null[T any]() Value[T] {
	return Value[T]{set: true, null: true}
}

// IsSet reports whether the field was supplied at all, null included.
func (v Value[T]) IsSet() bool { return v.set }

// IsNull reports whether the field was supplied as an explicit null.
func (v Value[T]) IsNull() bool { return v.set && v.null }

// Get returns the held value and true when the field was supplied with a non-null value.
func (v Value[T]) Get() (T, bool) {
	if !v.set || v.null {
		var zero T
		return zero, false
	}
	return v.value, true
}

// Ptr returns a pointer to the held value, or nil when absent or null.
func (v Value[T]) Ptr() *T {
	val, ok := v.Get()
	if !ok {
		return nil
	}
	return &val
}

// UnmarshalJSON implements [json.Unmarshaler]. It is only invoked for keys present in
// the document, so an absent key leaves the Value unset.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Null[T]()
		return nil
	}

	var val T
	if err := json.Unmarshal(data, &val); err != nil {
		return err
	}
	*v = Some(val)
	return nil
}

// MarshalJSON implements [json.Marshaler]. Absent and null values both encode as null.
func (v Value[T]) MarshalJSON() ([]byte, error) {
	val, ok := v.Get()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(val)
}
