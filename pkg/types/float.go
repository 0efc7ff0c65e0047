package types

import (
	"heapstore/pkg/primitives"
	"io"
	"math"
	"strconv"
)

// Float64Field represents an IEEE 754 double-precision field.
type Float64Field struct {
	Value float64
}

func NewFloat64Field(value float64) *Float64Field {
	return &Float64Field{Value: value}
}

func (f *Float64Field) Serialize(w io.Writer) error {
	_, err := w.Write(toBytes64(math.Float64bits(f.Value)))
	return err
}

func (f *Float64Field) Compare(op primitives.Predicate, other Field) (bool, error) {
	otherFloat, ok := other.(*Float64Field)
	if !ok {
		return false, nil
	}
	return compareOrdered(f.Value, otherFloat.Value, op), nil
}

func (f *Float64Field) Type() Type {
	return FloatType
}

func (f *Float64Field) String() string {
	return strconv.FormatFloat(f.Value, 'g', -1, 64)
}

func (f *Float64Field) Equals(other Field) bool {
	otherFloat, ok := other.(*Float64Field)
	if !ok {
		return false
	}
	return f.Value == otherFloat.Value
}

func (f *Float64Field) Hash() (primitives.HashCode, error) {
	return fnvHash(toBytes64(math.Float64bits(f.Value))), nil
}

func (f *Float64Field) Length() uint32 {
	return FloatType.Size()
}
