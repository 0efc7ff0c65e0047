package memory

import (
	"testing"

	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"

	"heapstore/pkg/storage/heap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) *tuple.TupleDescription {
	t.Helper()
	td, err := tuple.NewTupleDesc(
		[]types.Type{types.IntType, types.StringType},
		[]string{"id", "name"},
	)
	require.NoError(t, err)
	return td
}

func testPage(t *testing.T, table primitives.TableID, n primitives.PageNumber) page.Page {
	t.Helper()
	hp, err := heap.NewEmptyHeapPage(page.NewPageDescriptor(table, n), testSchema(t))
	require.NoError(t, err)
	return hp
}

func TestLRUPageCache_PutGet(t *testing.T) {
	c := NewLRUPageCache(3)

	key := primitives.PageKey{Table: 1, Page: 0}
	pg := testPage(t, 1, 0)

	_, ok := c.Get(key)
	assert.False(t, ok)

	require.NoError(t, c.Put(key, pg))
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Same(t, pg, got)
	assert.Equal(t, 1, c.Size())
}

func TestLRUPageCache_PutFailsWhenFull(t *testing.T) {
	c := NewLRUPageCache(2)

	require.NoError(t, c.Put(primitives.PageKey{Table: 1, Page: 0}, testPage(t, 1, 0)))
	require.NoError(t, c.Put(primitives.PageKey{Table: 1, Page: 1}, testPage(t, 1, 1)))

	err := c.Put(primitives.PageKey{Table: 1, Page: 2}, testPage(t, 1, 2))
	assert.Error(t, err)

	// Overwriting a resident key still works at capacity.
	assert.NoError(t, c.Put(primitives.PageKey{Table: 1, Page: 1}, testPage(t, 1, 1)))
	assert.Equal(t, 2, c.Size())
}

func TestLRUPageCache_KeysLRUOrder(t *testing.T) {
	c := NewLRUPageCache(3)

	k0 := primitives.PageKey{Table: 1, Page: 0}
	k1 := primitives.PageKey{Table: 1, Page: 1}
	k2 := primitives.PageKey{Table: 1, Page: 2}

	require.NoError(t, c.Put(k0, testPage(t, 1, 0)))
	require.NoError(t, c.Put(k1, testPage(t, 1, 1)))
	require.NoError(t, c.Put(k2, testPage(t, 1, 2)))

	// Touch k0 so k1 becomes the coldest entry.
	_, ok := c.Get(k0)
	require.True(t, ok)

	keys := c.Keys()
	require.Len(t, keys, 3)
	assert.Equal(t, k1, keys[0])
}

func TestLRUPageCache_RemoveClear(t *testing.T) {
	c := NewLRUPageCache(3)

	k := primitives.PageKey{Table: 1, Page: 0}
	require.NoError(t, c.Put(k, testPage(t, 1, 0)))

	c.Remove(k)
	_, ok := c.Get(k)
	assert.False(t, ok)

	require.NoError(t, c.Put(k, testPage(t, 1, 0)))
	c.Clear()
	assert.Equal(t, 0, c.Size())
}
