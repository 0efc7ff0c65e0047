package types

import (
	"heapstore/pkg/primitives"
	"io"
	"strconv"
)

// IntField represents a 64-bit signed integer field.
type IntField struct {
	Value int64
}

func NewIntField(value int64) *IntField {
	return &IntField{Value: value}
}

func (f *IntField) Serialize(w io.Writer) error {
	_, err := w.Write(toBytes64(uint64(f.Value))) // #nosec G115
	return err
}

func (f *IntField) Compare(op primitives.Predicate, other Field) (bool, error) {
	otherInt, ok := other.(*IntField)
	if !ok {
		return false, nil
	}
	return compareOrdered(f.Value, otherInt.Value, op), nil
}

func (f *IntField) Type() Type {
	return IntType
}

func (f *IntField) String() string {
	return strconv.FormatInt(f.Value, 10)
}

func (f *IntField) Equals(other Field) bool {
	otherInt, ok := other.(*IntField)
	if !ok {
		return false
	}
	return f.Value == otherInt.Value
}

func (f *IntField) Hash() (primitives.HashCode, error) {
	return fnvHash(toBytes64(uint64(f.Value))), nil // #nosec G115
}

func (f *IntField) Length() uint32 {
	return IntType.Size()
}
