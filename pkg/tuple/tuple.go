package tuple

import (
	"fmt"
	"heapstore/pkg/types"
	"io"
	"strings"
)

// Tuple represents one row of data: a schema-conformant set of field values
// plus the location it is stored at (nil until first persisted).
type Tuple struct {
	TupleDesc *TupleDescription
	fields    []types.Field
	RecordID  *RecordID
}

// NewTuple creates an empty tuple with the given schema.
func NewTuple(td *TupleDescription) *Tuple {
	return &Tuple{
		TupleDesc: td,
		fields:    make([]types.Field, td.NumFields()),
	}
}

// SetField assigns the ith field. The field's type must match the schema.
func (t *Tuple) SetField(i int, field types.Field) error {
	if i < 0 || i >= len(t.fields) {
		return fmt.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}

	expectedType, _ := t.TupleDesc.TypeAtIndex(i)
	if field.Type() != expectedType {
		return fmt.Errorf("field type mismatch: expected %v, got %v", expectedType, field.Type())
	}

	t.fields[i] = field
	return nil
}

// GetField returns the value of the ith field.
func (t *Tuple) GetField(i int) (types.Field, error) {
	if i < 0 || i >= len(t.fields) {
		return nil, fmt.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}
	return t.fields[i], nil
}

// IsComplete reports whether every field of the tuple has been set.
func (t *Tuple) IsComplete() bool {
	for _, field := range t.fields {
		if field == nil {
			return false
		}
	}
	return true
}

// Serialize writes every field of the tuple to w in schema order. All fields
// must be set.
func (t *Tuple) Serialize(w io.Writer) error {
	for i, field := range t.fields {
		if field == nil {
			return fmt.Errorf("field %d is not set", i)
		}
		if err := field.Serialize(w); err != nil {
			return fmt.Errorf("failed to serialize field %d: %w", i, err)
		}
	}
	return nil
}

// Parse reads one tuple of the given schema from r. The tuple's RecordID is
// left nil; the page codec fills it in.
func Parse(r io.Reader, td *TupleDescription) (*Tuple, error) {
	t := NewTuple(td)
	for i := 0; i < td.NumFields(); i++ {
		fieldType, err := td.TypeAtIndex(i)
		if err != nil {
			return nil, err
		}

		field, err := types.ParseField(r, fieldType)
		if err != nil {
			return nil, err
		}

		if err := t.SetField(i, field); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// FieldsEqual reports whether both tuples carry the same schema and the same
// field values. Record locations are not compared.
func (t *Tuple) FieldsEqual(other *Tuple) bool {
	if other == nil || !t.TupleDesc.Equals(other.TupleDesc) {
		return false
	}
	for i, field := range t.fields {
		otherField := other.fields[i]
		if field == nil || otherField == nil {
			if field != otherField {
				return false
			}
			continue
		}
		if !field.Equals(otherField) {
			return false
		}
	}
	return true
}

// Clone creates a copy of this tuple's field values with no record location.
func (t *Tuple) Clone() (*Tuple, error) {
	clone := NewTuple(t.TupleDesc)
	for i := 0; i < t.TupleDesc.NumFields(); i++ {
		field, err := t.GetField(i)
		if err != nil {
			return nil, err
		}
		if field != nil {
			if err := clone.SetField(i, field); err != nil {
				return nil, fmt.Errorf("failed to copy field %d: %w", i, err)
			}
		}
	}
	return clone, nil
}

func (t *Tuple) String() string {
	parts := make([]string, 0, len(t.fields))
	for _, field := range t.fields {
		if field != nil {
			parts = append(parts, field.String())
		} else {
			parts = append(parts, "null")
		}
	}
	return strings.Join(parts, "\t")
}
