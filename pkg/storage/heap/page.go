package heap

import (
	"bytes"
	"fmt"
	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
	"sync"
)

// HeapPage is one fixed-size page of a heap file: a slot-validity bitmap
// header followed by fixed-width tuple slots.
//
// The slot count is fully determined by the page size and the schema width.
// Each slot costs its tuple width plus one header bit, so:
//
//	numSlots   = floor(PageSize * 8 / (tupleWidth * 8 + 1))
//	headerSize = ceil(numSlots / 8)
//
// Layout on disk: [bitmap header][slot 0][slot 1]...[slot N-1][padding].
// Bit i of the header (LSB first within each byte) marks slot i occupied.
type HeapPage struct {
	pageID    *page.PageDescriptor
	tupleDesc *tuple.TupleDescription
	header    []byte
	tuples    []*tuple.Tuple
	numSlots  primitives.SlotID
	dirtier   *transaction.TransactionID
	oldData   []byte // before image for the cache's abort path
	mutex     sync.RWMutex
}

// SlotsPerPage computes how many tuples of the given schema fit on one page.
func SlotsPerPage(td *tuple.TupleDescription) primitives.SlotID {
	tupleBits := uint64(td.GetSize())*8 + 1
	return primitives.SlotID(uint64(page.PageSize) * 8 / tupleBits)
}

// headerBytes is the size of the slot-validity bitmap for the given slot count.
func headerBytes(numSlots primitives.SlotID) int {
	return (int(numSlots) + 7) / 8
}

// EmptyPageData returns a zeroed buffer representing an empty page.
func EmptyPageData() []byte {
	return make([]byte, page.PageSize)
}

// NewHeapPage decodes raw page bytes into a HeapPage. data must be exactly
// PageSize bytes.
func NewHeapPage(pid *page.PageDescriptor, data []byte, td *tuple.TupleDescription) (*HeapPage, error) {
	if len(data) != page.PageSize {
		return nil, fmt.Errorf("invalid page data size: expected %d, got %d", page.PageSize, len(data))
	}

	hp := &HeapPage{
		pageID:    pid,
		tupleDesc: td,
		numSlots:  SlotsPerPage(td),
		oldData:   make([]byte, page.PageSize),
	}
	hp.header = make([]byte, headerBytes(hp.numSlots))
	hp.tuples = make([]*tuple.Tuple, hp.numSlots)

	if err := hp.parsePageData(data); err != nil {
		return nil, err
	}

	copy(hp.oldData, data)
	return hp, nil
}

// NewEmptyHeapPage creates a blank page for the given identifier and schema,
// used when the file grows.
func NewEmptyHeapPage(pid *page.PageDescriptor, td *tuple.TupleDescription) (*HeapPage, error) {
	return NewHeapPage(pid, EmptyPageData(), td)
}

// GetID returns the unique page identifier for this heap page.
func (hp *HeapPage) GetID() *page.PageDescriptor {
	return hp.pageID
}

// NumSlots returns the fixed slot capacity of this page.
func (hp *HeapPage) NumSlots() primitives.SlotID {
	return hp.numSlots
}

// GetNumEmptySlots returns the count of unoccupied slots on this page.
func (hp *HeapPage) GetNumEmptySlots() primitives.SlotID {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	empty := primitives.SlotID(0)
	for i := primitives.SlotID(0); i < hp.numSlots; i++ {
		if !hp.isSlotUsed(i) {
			empty++
		}
	}
	return empty
}

// IsDirty returns the transaction that last modified this page, or nil if
// the page is clean.
func (hp *HeapPage) IsDirty() *transaction.TransactionID {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return hp.dirtier
}

// MarkDirty sets the dirty state of this page for a specific transaction.
func (hp *HeapPage) MarkDirty(dirty bool, tid *transaction.TransactionID) {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	if dirty {
		hp.dirtier = tid
	} else {
		hp.dirtier = nil
	}
}

// GetPageData serializes the page into exactly PageSize bytes: the bitmap
// header, each occupied slot's tuple at its fixed offset, zeroes elsewhere.
func (hp *HeapPage) GetPageData() []byte {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	data := make([]byte, page.PageSize)
	copy(data, hp.header)

	tupleSize := int(hp.tupleDesc.GetSize())
	base := headerBytes(hp.numSlots)

	for i := primitives.SlotID(0); i < hp.numSlots; i++ {
		if !hp.isSlotUsed(i) || hp.tuples[i] == nil {
			continue
		}

		offset := base + int(i)*tupleSize
		buf := bytes.NewBuffer(data[offset:offset])
		if err := hp.tuples[i].Serialize(buf); err != nil {
			// Occupied slots hold only complete tuples: AddTuple rejects
			// unset fields and the codec parses full rows. A failure here
			// means the page state is corrupt.
			panic(fmt.Sprintf("serialize slot %d of %s: %v", i, hp.pageID, err))
		}
	}

	return data
}

// GetBeforeImage returns the page state prior to the current transaction's
// modifications.
func (hp *HeapPage) GetBeforeImage() page.Page {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	before, err := NewHeapPage(hp.pageID, hp.oldData, hp.tupleDesc)
	if err != nil {
		// oldData either decoded successfully at construction or was
		// produced by this page's own codec.
		panic(fmt.Sprintf("decode before image of %s: %v", hp.pageID, err))
	}
	return before
}

// SetBeforeImage captures the current content as the new rollback baseline.
func (hp *HeapPage) SetBeforeImage() {
	data := hp.GetPageData()

	hp.mutex.Lock()
	defer hp.mutex.Unlock()
	hp.oldData = data
}

// AddTuple inserts a tuple into the first empty slot, marking the slot used
// and stamping the tuple's RecordID with its new location. Fails with
// ErrPageFull when no slot is free.
func (hp *HeapPage) AddTuple(t *tuple.Tuple) error {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	if !t.TupleDesc.Equals(hp.tupleDesc) {
		return fmt.Errorf("tuple schema does not match page schema")
	}
	if !t.IsComplete() {
		return fmt.Errorf("tuple has unset fields")
	}

	for i := primitives.SlotID(0); i < hp.numSlots; i++ {
		if hp.isSlotUsed(i) {
			continue
		}
		hp.setSlotUsed(i, true)
		hp.tuples[i] = t
		t.RecordID = tuple.NewRecordID(hp.pageID, i)
		return nil
	}

	return ErrPageFull
}

// DeleteTuple clears the slot addressed by the tuple's RecordID. It fails
// with ErrSlotEmpty on a double delete and ErrTupleMismatch when the slot
// stores a different tuple than the caller's record. The tuple keeps its
// now-stale RecordID, so a repeated delete lands on the freed slot.
func (hp *HeapPage) DeleteTuple(t *tuple.Tuple) error {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	rid := t.RecordID
	if rid == nil {
		return ErrNoRecordID
	}
	if !rid.PageID.Equals(hp.pageID) {
		return fmt.Errorf("%w: tuple is on page %s, not %s", ErrTupleMismatch, rid.PageID, hp.pageID)
	}

	slot := rid.Slot
	if slot >= hp.numSlots || !hp.isSlotUsed(slot) {
		return fmt.Errorf("%w: slot %d", ErrSlotEmpty, slot)
	}

	stored := hp.tuples[slot]
	if stored == nil || (stored != t && !stored.FieldsEqual(t)) {
		return fmt.Errorf("%w: slot %d", ErrTupleMismatch, slot)
	}

	hp.setSlotUsed(slot, false)
	hp.tuples[slot] = nil
	return nil
}

// GetTuples returns all occupied tuples on this page in slot order.
func (hp *HeapPage) GetTuples() []*tuple.Tuple {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	tuples := make([]*tuple.Tuple, 0, hp.numSlots)
	for i := primitives.SlotID(0); i < hp.numSlots; i++ {
		if hp.isSlotUsed(i) && hp.tuples[i] != nil {
			tuples = append(tuples, hp.tuples[i])
		}
	}
	return tuples
}

// Iterator returns an opened cursor over the occupied tuples of this page.
func (hp *HeapPage) Iterator() *tuple.Iterator {
	it := tuple.NewIterator(hp.GetTuples())
	_ = it.Open()
	return it
}

// GetTupleDesc returns the schema of tuples stored on this page.
func (hp *HeapPage) GetTupleDesc() *tuple.TupleDescription {
	return hp.tupleDesc
}

// parsePageData rebuilds the bitmap and tuple array from raw page bytes.
func (hp *HeapPage) parsePageData(data []byte) error {
	copy(hp.header, data)

	tupleSize := int(hp.tupleDesc.GetSize())
	base := headerBytes(hp.numSlots)

	for i := primitives.SlotID(0); i < hp.numSlots; i++ {
		if !hp.isSlotUsed(i) {
			continue
		}

		offset := base + int(i)*tupleSize
		reader := bytes.NewReader(data[offset : offset+tupleSize])

		t, err := tuple.Parse(reader, hp.tupleDesc)
		if err != nil {
			return fmt.Errorf("failed to parse tuple at slot %d: %w", i, err)
		}

		t.RecordID = tuple.NewRecordID(hp.pageID, i)
		hp.tuples[i] = t
	}
	return nil
}

// isSlotUsed reads slot i's validity bit. Callers hold the page mutex.
func (hp *HeapPage) isSlotUsed(i primitives.SlotID) bool {
	if i >= hp.numSlots {
		return false
	}
	return hp.header[i/8]&(1<<(i%8)) != 0
}

// setSlotUsed writes slot i's validity bit. Callers hold the page mutex.
func (hp *HeapPage) setSlotUsed(i primitives.SlotID, used bool) {
	if used {
		hp.header[i/8] |= 1 << (i % 8)
	} else {
		hp.header[i/8] &^= 1 << (i % 8)
	}
}
