package page

import (
	"fmt"
	"heapstore/pkg/primitives"
)

// PageDescriptor is the concrete page identifier: the owning table's identity
// paired with a zero-based sequential page number. It is the key under which
// the page cache and lock manager track the page.
type PageDescriptor struct {
	tableID primitives.TableID
	pageNum primitives.PageNumber
}

// NewPageDescriptor creates a page descriptor.
func NewPageDescriptor(tableID primitives.TableID, pageNum primitives.PageNumber) *PageDescriptor {
	return &PageDescriptor{
		tableID: tableID,
		pageNum: pageNum,
	}
}

// GetTableID returns the identity of the table this page belongs to.
func (pd *PageDescriptor) GetTableID() primitives.TableID {
	return pd.tableID
}

// PageNo returns the page number within the table.
func (pd *PageDescriptor) PageNo() primitives.PageNumber {
	return pd.pageNum
}

// Key returns the comparable map-key form of this identifier.
func (pd *PageDescriptor) Key() primitives.PageKey {
	return primitives.PageKey{Table: pd.tableID, Page: pd.pageNum}
}

func (pd *PageDescriptor) Equals(other primitives.PageID) bool {
	if other == nil {
		return false
	}
	return pd.tableID == other.GetTableID() && pd.pageNum == other.PageNo()
}

func (pd *PageDescriptor) String() string {
	return fmt.Sprintf("PageDescriptor(table=%d, page=%d)", pd.tableID, pd.pageNum)
}
