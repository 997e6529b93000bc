// Package optional distingue, en un PATCH, "campo no enviado" de "campo enviado en null".
package optional

import (
	"bytes"
	"encoding/json"
)

// Field es un campo de PATCH con presencia explícita:
//   - Set == false          => no vino en el body (no tocar)
//   - Set && Null           => vino como null (limpiar)
//   - Set && !Null          => vino con Value
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Of construye un Field presente con valor.
func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null construye un Field presente en null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// Get devuelve el valor y si hay un valor usable (presente y no null).
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Set && !f.Null
}

// UnmarshalJSON solo se invoca cuando la key existe en el objeto, así que marca Set.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(b, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
