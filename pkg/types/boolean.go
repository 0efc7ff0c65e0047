package types

import (
	"heapstore/pkg/primitives"
	"io"
)

// BoolField represents a boolean field serialized as a single byte.
type BoolField struct {
	Value bool
}

func NewBoolField(value bool) *BoolField {
	return &BoolField{Value: value}
}

func (f *BoolField) Serialize(w io.Writer) error {
	b := byte(0)
	if f.Value {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}

func (f *BoolField) Compare(op primitives.Predicate, other Field) (bool, error) {
	otherBool, ok := other.(*BoolField)
	if !ok {
		return false, nil
	}

	switch op {
	case primitives.Equals:
		return f.Value == otherBool.Value, nil
	case primitives.NotEqual:
		return f.Value != otherBool.Value, nil
	default:
		return false, nil
	}
}

func (f *BoolField) Type() Type {
	return BoolType
}

func (f *BoolField) String() string {
	if f.Value {
		return "true"
	}
	return "false"
}

func (f *BoolField) Equals(other Field) bool {
	otherBool, ok := other.(*BoolField)
	if !ok {
		return false
	}
	return f.Value == otherBool.Value
}

func (f *BoolField) Hash() (primitives.HashCode, error) {
	if f.Value {
		return 1, nil
	}
	return 0, nil
}

func (f *BoolField) Length() uint32 {
	return BoolType.Size()
}
