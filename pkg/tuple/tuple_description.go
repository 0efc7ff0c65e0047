package tuple

import (
	"fmt"
	"heapstore/pkg/types"
	"strings"
)

// TupleDescription describes the fixed schema of a tuple: the types and
// optional names of its fields, in order. A heap file's schema is immutable
// for the file's lifetime.
type TupleDescription struct {
	// Types contains the data type of each field in order.
	Types []types.Type
	// FieldNames contains the name of each field (optional, may be nil).
	FieldNames []string
}

// NewTupleDesc creates a TupleDescription from field types and optional field
// names. fieldNames may be nil; if given, its length must match fieldTypes.
func NewTupleDesc(fieldTypes []types.Type, fieldNames []string) (*TupleDescription, error) {
	if len(fieldTypes) < 1 {
		return nil, fmt.Errorf("must provide at least one field type")
	}

	typesCopy := make([]types.Type, len(fieldTypes))
	copy(typesCopy, fieldTypes)

	var namesCopy []string
	if fieldNames != nil {
		if len(fieldNames) != len(fieldTypes) {
			return nil, fmt.Errorf("field names length (%d) must match field types length (%d)",
				len(fieldNames), len(fieldTypes))
		}
		namesCopy = make([]string, len(fieldNames))
		copy(namesCopy, fieldNames)
	}

	return &TupleDescription{
		Types:      typesCopy,
		FieldNames: namesCopy,
	}, nil
}

// NumFields returns the number of fields in this schema.
func (td *TupleDescription) NumFields() int {
	return len(td.Types)
}

// TypeAtIndex returns the type of the ith field.
func (td *TupleDescription) TypeAtIndex(i int) (types.Type, error) {
	if i < 0 || i >= len(td.Types) {
		return 0, fmt.Errorf("field index %d out of bounds [0, %d)", i, len(td.Types))
	}
	return td.Types[i], nil
}

// GetFieldName returns the name of the ith field, or an empty string when no
// names were provided.
func (td *TupleDescription) GetFieldName(i int) (string, error) {
	if i < 0 || i >= len(td.Types) {
		return "", fmt.Errorf("field index %d out of bounds [0, %d)", i, len(td.Types))
	}
	if td.FieldNames == nil {
		return "", nil
	}
	return td.FieldNames[i], nil
}

// GetSize returns the serialized width in bytes of a tuple with this schema.
// Every field type has a fixed width, so all tuples of one schema are the
// same size.
func (td *TupleDescription) GetSize() uint32 {
	var size uint32
	for _, fieldType := range td.Types {
		size += fieldType.Size()
	}
	return size
}

// Equals reports whether two schemas have the same field types in the same
// order. Field names are not compared.
func (td *TupleDescription) Equals(other *TupleDescription) bool {
	if other == nil {
		return false
	}
	if len(td.Types) != len(other.Types) {
		return false
	}
	for i, fieldType := range td.Types {
		if fieldType != other.Types[i] {
			return false
		}
	}
	return true
}

func (td *TupleDescription) String() string {
	var parts []string
	for i, fieldType := range td.Types {
		name := "null"
		if td.FieldNames != nil && i < len(td.FieldNames) && td.FieldNames[i] != "" {
			name = td.FieldNames[i]
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", fieldType.String(), name))
	}
	return strings.Join(parts, ",")
}

// FindFieldIndex locates a field by name, case-sensitively.
func (td *TupleDescription) FindFieldIndex(fieldName string) (int, error) {
	for i := 0; i < td.NumFields(); i++ {
		name, _ := td.GetFieldName(i)
		if name == fieldName {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %s not found", fieldName)
}
