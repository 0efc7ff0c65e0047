package tuple

import (
	"fmt"
	"heapstore/pkg/primitives"
)

// RecordID is the location of one stored tuple: the page holding it and the
// slot within that page. A tuple has no RecordID until it is first persisted;
// deletes route through the RecordID back to the exact page and slot.
type RecordID struct {
	PageID primitives.PageID
	Slot   primitives.SlotID
}

// NewRecordID creates a RecordID for the given page and slot.
func NewRecordID(pageID primitives.PageID, slot primitives.SlotID) *RecordID {
	return &RecordID{
		PageID: pageID,
		Slot:   slot,
	}
}

func (rid *RecordID) Equals(other *RecordID) bool {
	if other == nil {
		return false
	}
	return rid.PageID.Equals(other.PageID) && rid.Slot == other.Slot
}

func (rid *RecordID) String() string {
	return fmt.Sprintf("RecordID(page=%s, slot=%d)", rid.PageID.String(), rid.Slot)
}
