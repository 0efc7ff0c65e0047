package primitives

// PageID uniquely addresses one page within one heap file. The concrete
// implementation lives with the page types; keeping the interface here lets
// tuples reference their location without depending on the storage layer.
type PageID interface {
	// GetTableID returns the identity of the table this page belongs to.
	GetTableID() TableID

	// PageNo returns the zero-based page number within the table.
	PageNo() PageNumber

	// Key returns the comparable form used as a cache and lock key.
	Key() PageKey

	// Equals checks if two page IDs address the same page.
	Equals(other PageID) bool

	String() string
}
