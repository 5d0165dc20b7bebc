package models

import (
	"encoding/json"

	"github.com/pixelready/express-jobly/query"
)

// Patch is one field of a partial update. It tells three states apart:
// not supplied, supplied as null, and supplied with a value. Decoding a JSON
// object marks the field supplied whenever its key is present.
type Patch[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Set returns a Patch that assigns v.
func Set[T any](v T) Patch[T] { return Patch[T]{Value: v, Set: true} }

// Null returns a Patch that assigns NULL.
func Null[T any]() Patch[T] { return Patch[T]{Set: true, Null: true} }

func (p *Patch[T]) UnmarshalJSON(b []byte) error {
	p.Set = true
	if string(b) == "null" {
		p.Null = true
		var zero T
		p.Value = zero
		return nil
	}
	p.Null = false
	return json.Unmarshal(b, &p.Value)
}

func (p Patch[T]) MarshalJSON() ([]byte, error) {
	if !p.Set || p.Null {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// appendTo adds the patch to as under field when it was supplied.
func (p Patch[T]) appendTo(as []query.Assignment, field string) []query.Assignment {
	if !p.Set {
		return as
	}
	if p.Null {
		return append(as, query.Assignment{Field: field, Value: nil})
	}
	return append(as, query.Assignment{Field: field, Value: p.Value})
}
