package page

import "heapstore/pkg/concurrency/transaction"

// PageSize is the size of every page in bytes. It is a system-wide constant
// supplied at compile time; there is no file header recording it.
const PageSize = 4096

// Page represents a fixed-size page resident in the page cache. Pages may be
// dirty, meaning they were modified since they were last written to disk.
type Page interface {
	// GetID returns the identifier of this page.
	GetID() *PageDescriptor

	// IsDirty returns the transaction that last dirtied this page, or nil if
	// the page is clean.
	IsDirty() *transaction.TransactionID

	// MarkDirty sets or clears the dirty state of this page.
	MarkDirty(dirty bool, tid *transaction.TransactionID)

	// GetPageData serializes the page contents to exactly PageSize bytes.
	GetPageData() []byte

	// GetBeforeImage returns the page as it was before the current
	// transaction's modifications. Used by the cache's abort path.
	GetBeforeImage() Page

	// SetBeforeImage captures the current content as the new before image.
	// Called when a transaction that wrote this page commits.
	SetBeforeImage()
}
