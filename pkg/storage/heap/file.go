package heap

import (
	"fmt"
	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
	"os"
	"sync"
)

// HeapFile maps one table onto a flat file of fixed-size pages, in no
// particular order. Byte offset of page n is n * page.PageSize; there is no
// file header. All page access during inserts, deletes and scans goes through
// the page pool, which owns locking and caching. The only exceptions are the
// raw ReadPage/WritePage entry points used by the pool's own miss and flush
// paths, and the direct append when the file grows.
type HeapFile struct {
	path      primitives.Filepath
	id        primitives.TableID
	tupleDesc *tuple.TupleDescription
	pool      page.Pool

	// growMu serializes file extension. It is distinct from per-page locks:
	// a grown page must be on disk before its number is observable via
	// NumPages, so concurrent readers never see an in-range page that does
	// not exist yet.
	growMu sync.Mutex
}

// NewHeapFile creates a heap file backed by the given path, creating the file
// if it does not exist. The file's identity is derived from the canonical
// path, so reconstruction over the same store yields the same identity.
func NewHeapFile(path primitives.Filepath, td *tuple.TupleDescription, pool page.Pool) (*HeapFile, error) {
	if path.IsEmpty() {
		return nil, fmt.Errorf("heap file path cannot be empty")
	}
	if td == nil {
		return nil, fmt.Errorf("tuple description cannot be nil")
	}

	canonical := path.Canonical()
	f, err := os.OpenFile(canonical.String(), os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrStorageIO, canonical, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("%w: failed to close %s: %v", ErrStorageIO, canonical, err)
	}

	return &HeapFile{
		path:      canonical,
		id:        canonical.Hash(),
		tupleDesc: td,
		pool:      pool,
	}, nil
}

// GetID returns the stable numeric identity of this file, derived from the
// canonical backing-store path. Idempotent across calls and restarts.
func (hf *HeapFile) GetID() primitives.TableID {
	return hf.id
}

// GetTupleDesc returns the fixed schema of tuples stored in this file.
func (hf *HeapFile) GetTupleDesc() *tuple.TupleDescription {
	return hf.tupleDesc
}

// FilePath returns the canonical path of the backing store.
func (hf *HeapFile) FilePath() primitives.Filepath {
	return hf.path
}

// NumPages returns floor(fileSize / PageSize). It is recomputed from the
// store's length on every call, never cached, so it reflects pages appended
// by this or any other process.
func (hf *HeapFile) NumPages() (primitives.PageNumber, error) {
	info, err := hf.path.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to stat %s: %v", ErrStorageIO, hf.path, err)
	}
	return primitives.PageNumber(info.Size() / page.PageSize), nil
}

// ReadPage reads the addressed page directly from disk. The page must belong
// to this file and lie within the current extent; violations fail with
// ErrPageNotInFile. I/O failures, including short reads at a page boundary,
// are fatal for the call and surface as ErrStorageIO.
func (hf *HeapFile) ReadPage(pid *page.PageDescriptor) (page.Page, error) {
	if pid == nil {
		return nil, fmt.Errorf("page ID cannot be nil")
	}
	if pid.GetTableID() != hf.id {
		return nil, fmt.Errorf("%w: %s belongs to a different table than %s", ErrPageNotInFile, pid, hf.id)
	}

	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}
	if pid.PageNo() >= numPages {
		return nil, fmt.Errorf("%w: %s, file has %d pages", ErrPageNotInFile, pid, numPages)
	}

	f, err := os.Open(hf.path.String())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrStorageIO, hf.path, err)
	}
	defer f.Close()

	data := make([]byte, page.PageSize)
	if _, err := f.ReadAt(data, int64(pid.PageNo())*page.PageSize); err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrStorageIO, pid, err)
	}

	return NewHeapPage(pid, data, hf.tupleDesc)
}

// WritePage serializes the page and overwrites its slot in the backing store.
// The file handle is acquired for the duration of the call and released on
// every exit path.
func (hf *HeapFile) WritePage(p page.Page) error {
	if p == nil {
		return fmt.Errorf("page cannot be nil")
	}

	pid := p.GetID()
	if pid.GetTableID() != hf.id {
		return fmt.Errorf("%w: %s belongs to a different table than %s", ErrPageNotInFile, pid, hf.id)
	}

	data := p.GetPageData()
	if len(data) != page.PageSize {
		return fmt.Errorf("invalid page data size: expected %d, got %d", page.PageSize, len(data))
	}

	f, err := os.OpenFile(hf.path.String(), os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %v", ErrStorageIO, hf.path, err)
	}
	defer f.Close()

	if _, err := f.WriteAt(data, int64(pid.PageNo())*page.PageSize); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", ErrStorageIO, pid, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: failed to sync %s: %v", ErrStorageIO, hf.path, err)
	}
	return nil
}

// InsertTuple places the tuple on the first existing page with a free slot,
// scanning pages in ascending order through the pool under write permission.
// If every page is full, the file grows by one directly-written page. The
// returned slice holds the single page the call dirtied.
//
// Lock-manager abort errors from the pool propagate unchanged; a mutation
// already applied to a pooled page is the pool's to roll back.
func (hf *HeapFile) InsertTuple(tid *transaction.TransactionID, t *tuple.Tuple) ([]page.Page, error) {
	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}

	for i := primitives.PageNumber(0); i < numPages; i++ {
		pid := page.NewPageDescriptor(hf.id, i)
		pg, err := hf.pool.GetPage(tid, pid, page.ReadWrite)
		if err != nil {
			return nil, err
		}

		hp, ok := pg.(*HeapPage)
		if !ok {
			return nil, fmt.Errorf("unexpected page type %T for %s", pg, pid)
		}

		if hp.GetNumEmptySlots() == 0 {
			continue
		}

		if err := hp.AddTuple(t); err != nil {
			return nil, err
		}
		hp.MarkDirty(true, tid)
		return []page.Page{hp}, nil
	}

	return hf.appendTuple(tid, t)
}

// appendTuple grows the file by one page holding just the new tuple. The page
// is written directly to the backing store, bypassing the pool, so that
// NumPages never reports a page that is not yet on disk.
func (hf *HeapFile) appendTuple(tid *transaction.TransactionID, t *tuple.Tuple) ([]page.Page, error) {
	hf.growMu.Lock()
	defer hf.growMu.Unlock()

	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}

	pid := page.NewPageDescriptor(hf.id, numPages)
	hp, err := NewEmptyHeapPage(pid, hf.tupleDesc)
	if err != nil {
		return nil, err
	}

	if hp.GetNumEmptySlots() == 0 {
		return nil, fmt.Errorf("%w: schema width %d, page size %d",
			ErrTupleTooLarge, hf.tupleDesc.GetSize(), page.PageSize)
	}

	if err := hp.AddTuple(t); err != nil {
		return nil, err
	}
	if err := hf.WritePage(hp); err != nil {
		return nil, err
	}

	hp.MarkDirty(true, tid)
	return []page.Page{hp}, nil
}

// DeleteTuple routes the delete back to the page and slot recorded in the
// tuple's RecordID, acquires that page through the pool under write
// permission, and clears the slot. Returns the single dirtied page.
func (hf *HeapFile) DeleteTuple(tid *transaction.TransactionID, t *tuple.Tuple) (page.Page, error) {
	if t == nil {
		return nil, fmt.Errorf("tuple cannot be nil")
	}
	if t.RecordID == nil {
		return nil, ErrNoRecordID
	}
	if t.RecordID.PageID.GetTableID() != hf.id {
		return nil, fmt.Errorf("%w: record table %s, file table %s",
			ErrTableMismatch, t.RecordID.PageID.GetTableID(), hf.id)
	}

	pid := page.NewPageDescriptor(hf.id, t.RecordID.PageID.PageNo())
	pg, err := hf.pool.GetPage(tid, pid, page.ReadWrite)
	if err != nil {
		return nil, err
	}

	hp, ok := pg.(*HeapPage)
	if !ok {
		return nil, fmt.Errorf("unexpected page type %T for %s", pg, pid)
	}

	if err := hp.DeleteTuple(t); err != nil {
		return nil, err
	}
	hp.MarkDirty(true, tid)
	return hp, nil
}

// Iterator returns an unopened full-scan over every tuple in the file on
// behalf of tid. Callers must Open it before pulling.
func (hf *HeapFile) Iterator(tid *transaction.TransactionID) *Iterator {
	return NewIterator(hf, tid)
}
