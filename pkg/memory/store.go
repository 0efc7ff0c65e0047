package memory

import (
	"fmt"
	"heapstore/pkg/concurrency/lock"
	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
	"sync"
	"time"
)

// MaxPageCount bounds how many pages the store keeps resident.
const MaxPageCount = 50

// TransactionInfo tracks the pages a live transaction has touched. Dirty
// pages are held by reference so commit can flush them even when the cache
// refused admission.
type TransactionInfo struct {
	startTime   time.Time
	dirtyPages  map[primitives.PageKey]page.Page
	lockedPages map[primitives.PageKey]page.Permissions
}

func newTransactionInfo() *TransactionInfo {
	return &TransactionInfo{
		startTime:   time.Now(),
		dirtyPages:  make(map[primitives.PageKey]page.Page),
		lockedPages: make(map[primitives.PageKey]page.Permissions),
	}
}

// PageStore is the shared page cache: the single authority for page
// residency and per-transaction locking. Every page acquisition goes through
// GetPage under a requested permission; the requested level decides
// shared-vs-exclusive locking, and waits that would deadlock surface
// lock.ErrDeadlock to the caller.
//
// The store runs NO-STEAL (dirty pages are never evicted) and FORCE (commit
// flushes the transaction's dirty pages), so aborts reduce to restoring
// in-memory before images.
type PageStore struct {
	tableManager *TableManager
	lockManager  *lock.LockManager
	cache        PageCache
	transactions map[*transaction.TransactionID]*TransactionInfo
	mutex        sync.RWMutex
}

// NewPageStore creates a page store over the given catalog.
func NewPageStore(tm *TableManager) *PageStore {
	return &PageStore{
		tableManager: tm,
		lockManager:  lock.NewLockManager(),
		cache:        NewLRUPageCache(MaxPageCount),
		transactions: make(map[*transaction.TransactionID]*TransactionInfo),
	}
}

// GetPage returns the addressed page after granting tid the lock implied by
// perm: shared for ReadOnly, exclusive for ReadWrite. Blocks until the lock
// is grantable or fails with the lock manager's abort signal. Cache misses
// read through the owning table's file.
func (p *PageStore) GetPage(tid *transaction.TransactionID, pid *page.PageDescriptor, perm page.Permissions) (page.Page, error) {
	if pid == nil {
		return nil, fmt.Errorf("page ID cannot be nil")
	}

	key := pid.Key()
	if err := p.lockManager.LockPage(tid, key, perm == page.ReadWrite); err != nil {
		return nil, err
	}

	p.trackPageAccess(tid, key, perm)

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if pg, exists := p.cache.Get(key); exists {
		return pg, nil
	}

	if p.cache.Size() >= MaxPageCount {
		if err := p.evictPage(); err != nil {
			return nil, fmt.Errorf("buffer pool full: %w", err)
		}
	}

	dbFile, err := p.tableManager.GetDbFile(pid.GetTableID())
	if err != nil {
		return nil, err
	}

	pg, err := dbFile.ReadPage(pid)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Put(key, pg); err != nil {
		return nil, fmt.Errorf("failed to cache page %s: %w", key, err)
	}
	return pg, nil
}

// InsertTuple adds a tuple to the named table within tid, recording every
// dirtied page so commit can flush and abort can roll back.
func (p *PageStore) InsertTuple(tid *transaction.TransactionID, tableID primitives.TableID, t *tuple.Tuple) error {
	dbFile, err := p.tableManager.GetDbFile(tableID)
	if err != nil {
		return err
	}

	modified, err := dbFile.InsertTuple(tid, t)
	if err != nil {
		return err
	}

	p.recordDirty(tid, modified)
	return nil
}

// DeleteTuple removes a persisted tuple within tid.
func (p *PageStore) DeleteTuple(tid *transaction.TransactionID, t *tuple.Tuple) error {
	if t == nil {
		return fmt.Errorf("tuple cannot be nil")
	}
	if t.RecordID == nil {
		return fmt.Errorf("tuple has no record ID")
	}

	dbFile, err := p.tableManager.GetDbFile(t.RecordID.PageID.GetTableID())
	if err != nil {
		return err
	}

	modified, err := dbFile.DeleteTuple(tid, t)
	if err != nil {
		return err
	}

	p.recordDirty(tid, []page.Page{modified})
	return nil
}

// CommitTransaction makes tid's changes durable: refresh before images,
// flush every dirty page (FORCE), then release all locks.
func (p *PageStore) CommitTransaction(tid *transaction.TransactionID) error {
	if tid == nil {
		return fmt.Errorf("transaction ID cannot be nil")
	}

	p.mutex.Lock()
	info, exists := p.transactions[tid]
	if !exists {
		p.mutex.Unlock()
		p.lockManager.UnlockAllPages(tid)
		return nil
	}

	type flushTarget struct {
		key primitives.PageKey
		pg  page.Page
	}
	targets := make([]flushTarget, 0, len(info.dirtyPages))
	for key, pg := range info.dirtyPages {
		// Prefer the resident copy; the tracked reference stands in for
		// pages the cache never admitted.
		if cached, ok := p.cache.Get(key); ok {
			pg = cached
		}
		pg.SetBeforeImage()
		targets = append(targets, flushTarget{key, pg})
	}
	p.mutex.Unlock()

	for _, target := range targets {
		if err := p.flushPage(target.key, target.pg); err != nil {
			return fmt.Errorf("commit failed: unable to flush page %s: %w", target.key, err)
		}
	}

	p.mutex.Lock()
	delete(p.transactions, tid)
	p.mutex.Unlock()

	p.lockManager.UnlockAllPages(tid)
	return nil
}

// AbortTransaction discards tid's changes by restoring each dirty page's
// before image in the cache, then releases all locks. Under NO-STEAL no
// uncommitted change ever reached disk, so memory restoration suffices.
func (p *PageStore) AbortTransaction(tid *transaction.TransactionID) error {
	if tid == nil {
		return fmt.Errorf("transaction ID cannot be nil")
	}

	p.mutex.Lock()
	info, exists := p.transactions[tid]
	if exists {
		for key := range info.dirtyPages {
			pg, resident := p.cache.Get(key)
			if !resident {
				continue
			}

			if before := pg.GetBeforeImage(); before != nil {
				_ = p.cache.Put(key, before)
			} else {
				p.cache.Remove(key)
			}
		}
		delete(p.transactions, tid)
	}
	p.mutex.Unlock()

	p.lockManager.UnlockAllPages(tid)
	return nil
}

// FlushAllPages writes every dirty resident page to its backing file.
func (p *PageStore) FlushAllPages() error {
	p.mutex.RLock()
	keys := p.cache.Keys()
	p.mutex.RUnlock()

	for _, key := range keys {
		p.mutex.RLock()
		pg, exists := p.cache.Get(key)
		p.mutex.RUnlock()
		if !exists {
			continue
		}

		if err := p.flushPage(key, pg); err != nil {
			return fmt.Errorf("failed to flush page %s: %w", key, err)
		}
	}
	return nil
}

// flushPage writes the page to disk if it is dirty, then marks it clean.
func (p *PageStore) flushPage(key primitives.PageKey, pg page.Page) error {
	if pg.IsDirty() == nil {
		return nil
	}

	dbFile, err := p.tableManager.GetDbFile(key.Table)
	if err != nil {
		return err
	}

	if err := dbFile.WritePage(pg); err != nil {
		return err
	}
	pg.MarkDirty(false, nil)
	return nil
}

// evictPage drops one clean, unlocked page. NO-STEAL: dirty pages stay
// resident until their transaction resolves. Callers hold p.mutex.
func (p *PageStore) evictPage() error {
	for _, key := range p.cache.Keys() {
		pg, exists := p.cache.Get(key)
		if !exists {
			continue
		}
		if pg.IsDirty() != nil {
			continue
		}
		if p.lockManager.IsPageLocked(key) {
			continue
		}

		p.cache.Remove(key)
		return nil
	}
	return fmt.Errorf("all pages are dirty or locked, cannot evict")
}

// trackPageAccess records that tid touched the page under the given
// permission.
func (p *PageStore) trackPageAccess(tid *transaction.TransactionID, key primitives.PageKey, perm page.Permissions) {
	info := p.getOrCreateTransaction(tid)

	p.mutex.Lock()
	info.lockedPages[key] = perm
	p.mutex.Unlock()
}

// recordDirty caches the modified pages and adds them to tid's dirty set.
// Pages written directly during file growth enter the cache here.
func (p *PageStore) recordDirty(tid *transaction.TransactionID, pages []page.Page) {
	info := p.getOrCreateTransaction(tid)

	p.mutex.Lock()
	defer p.mutex.Unlock()

	for _, pg := range pages {
		key := pg.GetID().Key()
		info.dirtyPages[key] = pg
		// A full cache of pinned pages can refuse admission; commit then
		// flushes through the tracked reference instead.
		_ = p.cache.Put(key, pg)
	}
}

func (p *PageStore) getOrCreateTransaction(tid *transaction.TransactionID) *TransactionInfo {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	info, exists := p.transactions[tid]
	if !exists {
		info = newTransactionInfo()
		p.transactions[tid] = info
	}
	return info
}
