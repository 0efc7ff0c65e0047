package lock

import (
	"fmt"
	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/primitives"
	"sync"
	"time"
)

const (
	maxAcquireAttempts = 1000
	baseRetryDelay     = time.Millisecond
	maxRetryDelay      = 100 * time.Millisecond
)

// LockManager grants page-level shared and exclusive locks to transactions.
// A requested ReadWrite acquisition maps to an exclusive lock, ReadOnly to a
// shared lock; shared-to-exclusive upgrades are granted when the requester is
// the sole holder. Conflicting requests wait with backoff, and waits that
// would close a cycle in the wait-for graph fail with ErrDeadlock.
type LockManager struct {
	mutex    sync.Mutex
	holders  map[primitives.PageKey][]lockHolder
	txLocks  map[*transaction.TransactionID]map[primitives.PageKey]LockType
	depGraph *DependencyGraph
}

func NewLockManager() *LockManager {
	return &LockManager{
		holders:  make(map[primitives.PageKey][]lockHolder),
		txLocks:  make(map[*transaction.TransactionID]map[primitives.PageKey]LockType),
		depGraph: NewDependencyGraph(),
	}
}

// LockPage blocks until tid holds the requested lock on the page, or fails
// with ErrDeadlock when waiting would deadlock. Re-acquiring an
// already-held lock of sufficient strength is a no-op.
func (lm *LockManager) LockPage(tid *transaction.TransactionID, key primitives.PageKey, exclusive bool) error {
	if tid == nil {
		return fmt.Errorf("transaction ID cannot be nil")
	}

	want := SharedLock
	if exclusive {
		want = ExclusiveLock
	}

	delay := baseRetryDelay
	for attempt := 0; attempt < maxAcquireAttempts; attempt++ {
		lm.mutex.Lock()

		if lm.alreadyHolds(tid, key, want) {
			lm.depGraph.RemoveTransaction(tid)
			lm.mutex.Unlock()
			return nil
		}

		if lm.canGrant(tid, key, want) {
			lm.grant(tid, key, want)
			lm.depGraph.RemoveTransaction(tid)
			lm.mutex.Unlock()
			return nil
		}

		for _, holder := range lm.holders[key] {
			if !holder.tid.Equals(tid) {
				lm.depGraph.AddEdge(tid, holder.tid)
			}
		}

		if lm.depGraph.HasCycle() {
			lm.depGraph.RemoveTransaction(tid)
			lm.mutex.Unlock()
			return fmt.Errorf("%w: transaction %s waiting for %s", ErrDeadlock, tid, key)
		}
		lm.mutex.Unlock()

		time.Sleep(delay)
		delay = min(delay*2, maxRetryDelay)
	}

	return fmt.Errorf("timeout waiting for lock on %s", key)
}

// UnlockAllPages releases every lock tid holds. Called when the transaction
// commits or aborts.
func (lm *LockManager) UnlockAllPages(tid *transaction.TransactionID) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	for key := range lm.txLocks[tid] {
		lm.removeHolder(tid, key)
	}
	delete(lm.txLocks, tid)
	lm.depGraph.RemoveTransaction(tid)
}

// IsPageLocked reports whether any transaction holds a lock on the page.
func (lm *LockManager) IsPageLocked(key primitives.PageKey) bool {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()
	return len(lm.holders[key]) > 0
}

// HoldsLock reports whether tid holds any lock on the page.
func (lm *LockManager) HoldsLock(tid *transaction.TransactionID, key primitives.PageKey) bool {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	_, held := lm.txLocks[tid][key]
	return held
}

// alreadyHolds reports whether tid's existing lock on the page satisfies the
// requested strength. Callers hold lm.mutex.
func (lm *LockManager) alreadyHolds(tid *transaction.TransactionID, key primitives.PageKey, want LockType) bool {
	held, ok := lm.txLocks[tid][key]
	if !ok {
		return false
	}
	return held == ExclusiveLock || want == SharedLock
}

// canGrant decides whether the requested lock is compatible with the page's
// current holders. Callers hold lm.mutex.
func (lm *LockManager) canGrant(tid *transaction.TransactionID, key primitives.PageKey, want LockType) bool {
	holders := lm.holders[key]
	if len(holders) == 0 {
		return true
	}

	if want == SharedLock {
		for _, h := range holders {
			if h.lockType == ExclusiveLock && !h.tid.Equals(tid) {
				return false
			}
		}
		return true
	}

	// Exclusive: grantable only when tid is the sole holder (upgrade) or
	// there are no holders at all.
	for _, h := range holders {
		if !h.tid.Equals(tid) {
			return false
		}
	}
	return true
}

// grant records the lock, replacing a weaker one held by tid (upgrade).
// Callers hold lm.mutex.
func (lm *LockManager) grant(tid *transaction.TransactionID, key primitives.PageKey, want LockType) {
	lm.removeHolder(tid, key)
	lm.holders[key] = append(lm.holders[key], lockHolder{tid: tid, lockType: want})

	if lm.txLocks[tid] == nil {
		lm.txLocks[tid] = make(map[primitives.PageKey]LockType)
	}
	lm.txLocks[tid][key] = want
}

// removeHolder drops tid from the page's holder list. Callers hold lm.mutex.
func (lm *LockManager) removeHolder(tid *transaction.TransactionID, key primitives.PageKey) {
	holders := lm.holders[key]
	for i, h := range holders {
		if h.tid.Equals(tid) {
			lm.holders[key] = append(holders[:i], holders[i+1:]...)
			break
		}
	}
	if len(lm.holders[key]) == 0 {
		delete(lm.holders, key)
	}
}
