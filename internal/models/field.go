package models

import (
	"bytes"
	"encoding/json"
)

// Field is one optional member of a patch. Set reports whether the key was
// present at all, so an explicit null or zero is not confused with "absent".
type Field[T any] struct {
	Set   bool
	Value T
}

// Some returns a Field that is set to v.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Apply writes the value into dst when the field is set.
func (f Field[T]) Apply(dst *T) {
	if f.Set {
		*dst = f.Value
	}
}
