package types

import (
	"heapstore/pkg/primitives"
	"io"
)

// Field is one typed value inside a tuple.
type Field interface {
	// Serialize writes the field's fixed-width binary form to w.
	Serialize(w io.Writer) error

	// Compare applies op between this field and other. Fields of different
	// concrete types never compare true.
	Compare(op primitives.Predicate, other Field) (bool, error)

	Type() Type

	String() string

	Equals(other Field) bool

	Hash() (primitives.HashCode, error)
}
