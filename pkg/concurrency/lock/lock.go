package lock

import (
	"errors"
	"heapstore/pkg/concurrency/transaction"
)

// ErrDeadlock is the transaction-abort signal raised when granting a lock
// would close a cycle in the wait-for graph. The storage layer propagates it
// to callers uninterpreted; the victim transaction must abort.
var ErrDeadlock = errors.New("deadlock detected")

// LockType is the strength of a page lock.
type LockType int

const (
	SharedLock LockType = iota
	ExclusiveLock
)

func (lt LockType) String() string {
	if lt == ExclusiveLock {
		return "EXCLUSIVE"
	}
	return "SHARED"
}

// lockHolder records one transaction holding a lock on a page.
type lockHolder struct {
	tid      *transaction.TransactionID
	lockType LockType
}
