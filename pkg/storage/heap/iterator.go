package heap

import (
	"fmt"
	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
)

// scanState is the lifecycle state of a full-table scan.
type scanState int

const (
	scanUnopened scanState = iota
	scanAwaitingPage
	scanInPage
	scanExhausted
	scanClosed
)

// Iterator is a lazy, page-spanning scan over every tuple in a heap file.
// Pages are fetched one at a time through the pool under read permission
// scoped to the scan's transaction.
//
// The page count is consulted lazily on each advance rather than snapshotted
// at Open, so pages appended by a concurrent insert become visible to an
// in-progress scan.
type Iterator struct {
	file     *HeapFile
	tid      *transaction.TransactionID
	state    scanState
	nextPage primitives.PageNumber
	cursor   *tuple.Iterator
}

// NewIterator creates an unopened scan over file on behalf of tid.
func NewIterator(file *HeapFile, tid *transaction.TransactionID) *Iterator {
	return &Iterator{
		file: file,
		tid:  tid,
	}
}

// Open resets the scan to page 0 with no page cursor active. It is
// re-entrant: calling Open (or Rewind) at any later point resets to the same
// initial state without requiring Close first.
func (it *Iterator) Open() error {
	it.releaseCursor()
	it.state = scanAwaitingPage
	it.nextPage = 0
	return nil
}

// HasNext reports whether another tuple is available, fetching pages as
// needed. Exhaustion and a closed or unopened scan report false without
// error; pool failures (including deadlock aborts) propagate unchanged.
func (it *Iterator) HasNext() (bool, error) {
	for {
		switch it.state {
		case scanUnopened, scanExhausted, scanClosed:
			return false, nil

		case scanInPage:
			hasNext, err := it.cursor.HasNext()
			if err != nil {
				return false, err
			}
			if hasNext {
				return true, nil
			}
			it.releaseCursor()
			it.state = scanAwaitingPage

		case scanAwaitingPage:
			numPages, err := it.file.NumPages()
			if err != nil {
				return false, err
			}
			if it.nextPage >= numPages {
				it.state = scanExhausted
				return false, nil
			}

			pid := page.NewPageDescriptor(it.file.GetID(), it.nextPage)
			pg, err := it.file.pool.GetPage(it.tid, pid, page.ReadOnly)
			if err != nil {
				return false, err
			}

			hp, ok := pg.(*HeapPage)
			if !ok {
				return false, fmt.Errorf("unexpected page type %T for %s", pg, pid)
			}

			it.cursor = hp.Iterator()
			it.nextPage++
			it.state = scanInPage

		default:
			return false, fmt.Errorf("invalid scan state %d", it.state)
		}
	}
}

// Next returns the next tuple. Pulling when the scan is not open or is past
// exhaustion fails with ErrScanExhausted; callers restart with Rewind or
// Open.
func (it *Iterator) Next() (*tuple.Tuple, error) {
	hasNext, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, fmt.Errorf("%w: state %d", ErrScanExhausted, it.state)
	}
	return it.cursor.Next()
}

// Rewind restarts the scan from the first record of page 0.
func (it *Iterator) Rewind() error {
	return it.Open()
}

// Close releases the page cursor and marks the scan closed. Subsequent
// HasNext calls report false until Open or Rewind is called again.
func (it *Iterator) Close() error {
	it.releaseCursor()
	it.state = scanClosed
	return nil
}

func (it *Iterator) releaseCursor() {
	if it.cursor != nil {
		_ = it.cursor.Close()
		it.cursor = nil
	}
}
