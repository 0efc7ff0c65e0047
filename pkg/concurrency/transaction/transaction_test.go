package transaction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTransactionID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTransactionID().ID().String()
		assert.False(t, seen[id], "duplicate transaction ID %s", id)
		seen[id] = true
	}
}

func TestTransactionID_Equals(t *testing.T) {
	t1 := NewTransactionID()
	t2 := NewTransactionID()

	assert.True(t, t1.Equals(t1))
	assert.False(t, t1.Equals(t2))
	assert.False(t, t1.Equals(nil))

	var nilTID *TransactionID
	assert.True(t, nilTID.Equals(nil))
}

func TestTransactionID_String(t *testing.T) {
	s := NewTransactionID().String()
	assert.True(t, strings.HasPrefix(s, "TID-"))
	assert.Len(t, s, len("TID-")+8)
}
