package types

import (
	"encoding/binary"
	"heapstore/pkg/primitives"
	"io"
	"strings"
)

// StringMaxSize is the fixed payload capacity of a string field in bytes.
// Strings serialize to 4 length bytes plus StringMaxSize padded bytes so that
// every tuple of a given schema has the same width.
const StringMaxSize = 128

// StringField represents a length-prefixed, padded string field.
type StringField struct {
	Value   string
	MaxSize int
}

// NewStringField creates a StringField, truncating values longer than maxSize.
func NewStringField(value string, maxSize int) *StringField {
	if len(value) > maxSize {
		value = value[:maxSize]
	}
	return &StringField{
		Value:   value,
		MaxSize: maxSize,
	}
}

// Serialize writes the field as a 4-byte big-endian length, the string bytes,
// and zero padding up to MaxSize.
func (s *StringField) Serialize(w io.Writer) error {
	length := min(len(s.Value), s.MaxSize)

	lengthBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(lengthBytes, uint32(length))
	if _, err := w.Write(lengthBytes); err != nil {
		return err
	}

	if _, err := w.Write([]byte(s.Value[:length])); err != nil {
		return err
	}

	padding := make([]byte, s.MaxSize-length)
	_, err := w.Write(padding)
	return err
}

// Compare performs a lexicographic comparison. Like is substring containment.
func (s *StringField) Compare(op primitives.Predicate, other Field) (bool, error) {
	otherString, ok := other.(*StringField)
	if !ok {
		return false, nil
	}

	if op == primitives.Like {
		return strings.Contains(s.Value, otherString.Value), nil
	}
	return compareOrdered(s.Value, otherString.Value, op), nil
}

func (s *StringField) Type() Type {
	return StringType
}

func (s *StringField) String() string {
	return s.Value
}

func (s *StringField) Equals(other Field) bool {
	otherString, ok := other.(*StringField)
	if !ok {
		return false
	}
	return s.Value == otherString.Value && s.MaxSize == otherString.MaxSize
}

func (s *StringField) Hash() (primitives.HashCode, error) {
	return fnvHash([]byte(s.Value)), nil
}

func (s *StringField) Length() uint32 {
	return StringType.Size()
}
