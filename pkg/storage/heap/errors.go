package heap

import "errors"

// The storage layer classifies failures with sentinel errors so callers can
// branch with errors.Is. Every error propagates to the immediate caller
// uninterpreted: no retries, no logging, no silent recovery.
var (
	// ErrPageNotInFile reports an addressing violation: the requested page
	// number is outside the file's extent or names a different table.
	ErrPageNotInFile = errors.New("page not in file")

	// ErrStorageIO reports a raw read or write failure. A short read at a
	// page boundary means corruption or truncation, not a transient
	// condition, so this is fatal for the requesting operation.
	ErrStorageIO = errors.New("storage I/O failure")

	// ErrTupleTooLarge reports that a record cannot fit even in an empty
	// page. This indicates a schema/page-size configuration defect.
	ErrTupleTooLarge = errors.New("tuple cannot fit in an empty page")

	// ErrTableMismatch reports a delete whose target record belongs to a
	// different table than this file.
	ErrTableMismatch = errors.New("record belongs to a different table")

	// ErrSlotEmpty reports a delete of a slot that is already free,
	// detecting double deletes.
	ErrSlotEmpty = errors.New("slot is already empty")

	// ErrTupleMismatch reports a delete whose record does not match what the
	// slot actually stores, detecting stale references.
	ErrTupleMismatch = errors.New("stored tuple does not match record")

	// ErrNoRecordID reports an operation on a record that was never
	// persisted and therefore has no location.
	ErrNoRecordID = errors.New("tuple has no record ID")

	// ErrPageFull reports an insert into a page with no empty slot.
	ErrPageFull = errors.New("no empty slot on page")

	// ErrScanExhausted reports a pull from a scan past its end without an
	// intervening Rewind or Open.
	ErrScanExhausted = errors.New("scan advanced past exhaustion")
)
