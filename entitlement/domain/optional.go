package domain

import (
	"bytes"
	"encoding/json"
)

// Optional is a three-state JSON field: absent, explicitly null, or a value.
// Field presence is semantically meaningful throughout the patch model, so a
// nullable-equals-absent convention is not good enough here.
type Optional[T any] struct {
	Present bool
	Null    bool
	Value   T
}

// IsSet reports whether the field carried a concrete (non-null) value.
func (o Optional[T]) IsSet() bool {
	return o.Present && !o.Null
}

// IsNull reports whether the field was an explicit JSON null.
func (o Optional[T]) IsNull() bool {
	return o.Present && o.Null
}

// Get returns the value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.IsSet()
}

// UnmarshalJSON is only invoked for keys present in the payload, which is
// what makes the Present flag trustworthy.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Present = true

	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		return nil
	}

	return json.Unmarshal(b, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Null {
		return []byte("null"), nil
	}

	return json.Marshal(o.Value)
}
