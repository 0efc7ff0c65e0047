package memory

import (
	"path/filepath"
	"testing"

	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/heap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T, name string) (*heap.HeapFile, *TableManager, *PageStore) {
	t.Helper()
	tm := NewTableManager()
	store := NewPageStore(tm)

	path := primitives.Filepath(filepath.Join(t.TempDir(), name+".dat"))
	hf, err := heap.NewHeapFile(path, testSchema(t), store)
	require.NoError(t, err)
	require.NoError(t, tm.AddTable(hf, name))

	return hf, tm, store
}

func TestTableManager_AddGet(t *testing.T) {
	hf, tm, _ := newTestTable(t, "users")

	id, err := tm.GetTableID("users")
	require.NoError(t, err)
	assert.Equal(t, hf.GetID(), id)

	file, err := tm.GetDbFile(id)
	require.NoError(t, err)
	assert.Same(t, hf, file.(*heap.HeapFile))

	assert.True(t, tm.TableExists("users"))
	assert.False(t, tm.TableExists("orders"))
}

func TestTableManager_UnknownLookups(t *testing.T) {
	tm := NewTableManager()

	_, err := tm.GetTableID("nope")
	assert.Error(t, err)

	_, err = tm.GetDbFile(primitives.TableID(12345))
	assert.Error(t, err)
}

func TestTableManager_ReplaceByName(t *testing.T) {
	hf, tm, store := newTestTable(t, "users")

	// Re-registering the same name points the catalog at the new file.
	path := primitives.Filepath(filepath.Join(t.TempDir(), "users2.dat"))
	hf2, err := heap.NewHeapFile(path, testSchema(t), store)
	require.NoError(t, err)
	require.NoError(t, tm.AddTable(hf2, "users"))

	id, err := tm.GetTableID("users")
	require.NoError(t, err)
	assert.Equal(t, hf2.GetID(), id)
	assert.NotEqual(t, hf.GetID(), id)
}

func TestTableManager_Remove(t *testing.T) {
	hf, tm, _ := newTestTable(t, "users")

	require.NoError(t, tm.RemoveTable("users"))
	assert.False(t, tm.TableExists("users"))

	_, err := tm.GetDbFile(hf.GetID())
	assert.Error(t, err)

	assert.Error(t, tm.RemoveTable("users"))
}

func TestTableManager_GetAllTableNames(t *testing.T) {
	_, tm, store := newTestTable(t, "users")

	path := primitives.Filepath(filepath.Join(t.TempDir(), "orders.dat"))
	hf, err := heap.NewHeapFile(path, testSchema(t), store)
	require.NoError(t, err)
	require.NoError(t, tm.AddTable(hf, "orders"))

	names := tm.GetAllTableNames()
	assert.ElementsMatch(t, []string{"users", "orders"}, names)
}
