package transaction

import (
	"fmt"

	"github.com/google/uuid"
)

// TransactionID is the opaque token scoping page locks and dirty-page
// tracking. The storage layer passes it through to the page cache and never
// interprets it.
type TransactionID struct {
	id uuid.UUID
}

// NewTransactionID creates a fresh, globally unique transaction identifier.
func NewTransactionID() *TransactionID {
	return &TransactionID{id: uuid.New()}
}

func (tid *TransactionID) ID() uuid.UUID {
	return tid.id
}

func (tid *TransactionID) String() string {
	return fmt.Sprintf("TID-%s", tid.id.String()[:8])
}

func (tid *TransactionID) Equals(other *TransactionID) bool {
	if tid == nil || other == nil {
		return tid == other
	}
	return tid.id == other.id
}
