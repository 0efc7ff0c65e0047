package types

import (
	"encoding/binary"
	"fmt"
	"heapstore/pkg/primitives"
	"io"

	"github.com/shopspring/decimal"
)

// DecimalField represents an exact fixed-point numeric field, used for values
// like money where binary floating point is unacceptable.
//
// Serialized form is 12 bytes: a 4-byte big-endian exponent (int32) followed
// by an 8-byte big-endian coefficient (int64), so the value is
// coefficient * 10^exponent. Coefficients outside the int64 range are not
// representable and fail at serialization time.
type DecimalField struct {
	Value decimal.Decimal
}

func NewDecimalField(value decimal.Decimal) *DecimalField {
	return &DecimalField{Value: value}
}

// NewDecimalFieldFromString parses a decimal literal such as "12.95".
func NewDecimalFieldFromString(s string) (*DecimalField, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal literal %q: %w", s, err)
	}
	return &DecimalField{Value: d}, nil
}

func (f *DecimalField) Serialize(w io.Writer) error {
	coefficient := f.Value.Coefficient()
	if !coefficient.IsInt64() {
		return fmt.Errorf("decimal coefficient %s exceeds 64 bits", coefficient)
	}

	buf := make([]byte, 12)
	binary.BigEndian.PutUint32(buf[0:4], uint32(f.Value.Exponent())) // #nosec G115
	binary.BigEndian.PutUint64(buf[4:12], uint64(coefficient.Int64())) // #nosec G115
	_, err := w.Write(buf)
	return err
}

func (f *DecimalField) Compare(op primitives.Predicate, other Field) (bool, error) {
	otherDecimal, ok := other.(*DecimalField)
	if !ok {
		return false, nil
	}
	return compareOrdered(f.Value.Cmp(otherDecimal.Value), 0, op), nil
}

func (f *DecimalField) Type() Type {
	return DecimalType
}

func (f *DecimalField) String() string {
	return f.Value.String()
}

func (f *DecimalField) Equals(other Field) bool {
	otherDecimal, ok := other.(*DecimalField)
	if !ok {
		return false
	}
	return f.Value.Equal(otherDecimal.Value)
}

func (f *DecimalField) Hash() (primitives.HashCode, error) {
	return fnvHash([]byte(f.Value.String())), nil
}

func (f *DecimalField) Length() uint32 {
	return DecimalType.Size()
}
