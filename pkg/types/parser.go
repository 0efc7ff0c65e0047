package types

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/shopspring/decimal"
)

// ParseField reads one serialized field of the given type from r. It is the
// inverse of Field.Serialize and consumes exactly fieldType.Size() bytes.
func ParseField(r io.Reader, fieldType Type) (Field, error) {
	switch fieldType {
	case IntType:
		return parseIntField(r)
	case StringType:
		return parseStringField(r)
	case BoolType:
		return parseBoolField(r)
	case FloatType:
		return parseFloatField(r)
	case DecimalType:
		return parseDecimalField(r)
	default:
		return nil, fmt.Errorf("unsupported field type: %v", fieldType)
	}
}

func parseIntField(r io.Reader) (*IntField, error) {
	buf, err := readBytes(r, IntType.Size())
	if err != nil {
		return nil, err
	}
	return NewIntField(int64(binary.BigEndian.Uint64(buf))), nil // #nosec G115
}

func parseStringField(r io.Reader) (*StringField, error) {
	lengthBytes, err := readBytes(r, 4)
	if err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(lengthBytes)
	if length > StringMaxSize {
		return nil, fmt.Errorf("string length %d exceeds maximum %d", length, StringMaxSize)
	}

	payload, err := readBytes(r, StringMaxSize)
	if err != nil {
		return nil, err
	}

	return NewStringField(string(payload[:length]), StringMaxSize), nil
}

func parseBoolField(r io.Reader) (*BoolField, error) {
	buf, err := readBytes(r, 1)
	if err != nil {
		return nil, err
	}
	return NewBoolField(buf[0] != 0), nil
}

func parseFloatField(r io.Reader) (*Float64Field, error) {
	buf, err := readBytes(r, FloatType.Size())
	if err != nil {
		return nil, err
	}
	return NewFloat64Field(math.Float64frombits(binary.BigEndian.Uint64(buf))), nil
}

func parseDecimalField(r io.Reader) (*DecimalField, error) {
	buf, err := readBytes(r, DecimalType.Size())
	if err != nil {
		return nil, err
	}

	exponent := int32(binary.BigEndian.Uint32(buf[0:4]))      // #nosec G115
	coefficient := int64(binary.BigEndian.Uint64(buf[4:12])) // #nosec G115
	return NewDecimalField(decimal.New(coefficient, exponent)), nil
}
