package page

import (
	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/primitives"
	"heapstore/pkg/tuple"
)

// Permissions is the access level a transaction requests when acquiring a
// page. The cache maps it to shared or exclusive locking.
type Permissions int

const (
	ReadOnly Permissions = iota
	ReadWrite
)

func (p Permissions) String() string {
	if p == ReadWrite {
		return "READ_WRITE"
	}
	return "READ_ONLY"
}

// Pool is the page-acquisition contract the storage layer consumes. The page
// cache implements it: GetPage blocks until the requested lock is grantable,
// returns the pinned page, or fails with the cache's abort signal when the
// wait would deadlock.
type Pool interface {
	GetPage(tid *transaction.TransactionID, pid *PageDescriptor, perm Permissions) (Page, error)
}

// DbFile is a table's on-disk extent: a file of pages storing tuples.
type DbFile interface {
	// ReadPage reads the addressed page directly from disk. Called by the
	// page cache on a cache miss; everyone else goes through the cache.
	ReadPage(pid *PageDescriptor) (Page, error)

	// WritePage persists a page at its designated offset. Called by the
	// cache's flush path.
	WritePage(p Page) error

	// InsertTuple adds a tuple to the file on behalf of tid, returning every
	// page it dirtied.
	InsertTuple(tid *transaction.TransactionID, t *tuple.Tuple) ([]Page, error)

	// DeleteTuple removes a persisted tuple, returning the dirtied page.
	DeleteTuple(tid *transaction.TransactionID, t *tuple.Tuple) (Page, error)

	// GetID returns the stable identity of this file.
	GetID() primitives.TableID

	// GetTupleDesc returns the fixed schema of tuples stored in this file.
	GetTupleDesc() *tuple.TupleDescription
}
