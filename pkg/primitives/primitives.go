package primitives

import "fmt"

// TableID identifies one heap file (and therefore one table). It is derived
// by hashing the canonical path of the backing store, so the same file always
// yields the same ID across processes.
type TableID uint64

// PageNumber is a zero-based sequential page number within a table.
type PageNumber uint64

// SlotID is a slot index within a page.
type SlotID uint16

// HashCode represents a hash value computed for fast comparisons or lookups.
type HashCode uint64

// InvalidTableID is the zero value no real table may use.
const InvalidTableID TableID = 0

func (t TableID) IsValid() bool {
	return t != InvalidTableID
}

func (t TableID) String() string {
	return fmt.Sprintf("TableID(%d)", uint64(t))
}

// PageKey is the comparable form of a page identifier, usable as a map key by
// the page cache and the lock manager.
type PageKey struct {
	Table TableID
	Page  PageNumber
}

func (k PageKey) String() string {
	return fmt.Sprintf("page(table=%d, no=%d)", uint64(k.Table), uint64(k.Page))
}
