package heap

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir is a stand-in for t.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestNewHeapFile(t *testing.T) {
	td := createTestTupleDesc(t)

	t.Run("creates backing file", func(t *testing.T) {
		path := primitives.Filepath(filepath.Join(t.TempDir(), "new.dat"))
		hf, err := NewHeapFile(path, td, newTestPool())
		require.NoError(t, err)

		_, statErr := os.Stat(path.String())
		assert.NoError(t, statErr)
		assert.Same(t, td, hf.GetTupleDesc())
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewHeapFile("", td, newTestPool())
		assert.Error(t, err)
	})

	t.Run("nil schema", func(t *testing.T) {
		path := primitives.Filepath(filepath.Join(t.TempDir(), "x.dat"))
		_, err := NewHeapFile(path, nil, newTestPool())
		assert.Error(t, err)
	})
}

func TestHeapFile_GetID(t *testing.T) {
	td := createTestTupleDesc(t)

	t.Run("stable across reconstruction", func(t *testing.T) {
		path := primitives.Filepath(filepath.Join(t.TempDir(), "stable.dat"))

		hf1, err := NewHeapFile(path, td, newTestPool())
		require.NoError(t, err)
		hf2, err := NewHeapFile(path, td, newTestPool())
		require.NoError(t, err)

		assert.Equal(t, hf1.GetID(), hf2.GetID())
	})

	t.Run("relative and absolute spellings agree", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)

		abs, err := NewHeapFile(primitives.Filepath(filepath.Join(dir, "t.dat")), td, newTestPool())
		require.NoError(t, err)
		rel, err := NewHeapFile("t.dat", td, newTestPool())
		require.NoError(t, err)

		assert.Equal(t, abs.GetID(), rel.GetID())
	})

	t.Run("distinct paths get distinct identities", func(t *testing.T) {
		dir := t.TempDir()
		hf1, err := NewHeapFile(primitives.Filepath(filepath.Join(dir, "a.dat")), td, newTestPool())
		require.NoError(t, err)
		hf2, err := NewHeapFile(primitives.Filepath(filepath.Join(dir, "b.dat")), td, newTestPool())
		require.NoError(t, err)

		assert.NotEqual(t, hf1.GetID(), hf2.GetID())
	})
}

func TestHeapFile_NumPages(t *testing.T) {
	td := createTestTupleDesc(t)
	hf, _ := createTestHeapFile(t, td)

	n, err := hf.NumPages()
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	// Grow the backing file by hand; the count reflects the new length
	// without any cache invalidation.
	require.NoError(t, os.Truncate(hf.FilePath().String(), 3*page.PageSize))
	n, err = hf.NumPages()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	// A trailing partial page does not count.
	require.NoError(t, os.Truncate(hf.FilePath().String(), 3*page.PageSize+100))
	n, err = hf.NumPages()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestHeapFile_ReadPage_Errors(t *testing.T) {
	td := createTestTupleDesc(t)
	hf, _ := createTestHeapFile(t, td)

	t.Run("nil page ID", func(t *testing.T) {
		_, err := hf.ReadPage(nil)
		assert.Error(t, err)
	})

	t.Run("foreign table", func(t *testing.T) {
		_, err := hf.ReadPage(page.NewPageDescriptor(hf.GetID()+1, 0))
		assert.ErrorIs(t, err, ErrPageNotInFile)
	})

	t.Run("page beyond extent", func(t *testing.T) {
		_, err := hf.ReadPage(page.NewPageDescriptor(hf.GetID(), 0))
		assert.ErrorIs(t, err, ErrPageNotInFile)
	})
}

func TestHeapFile_WriteReadRoundTrip(t *testing.T) {
	td := createTestTupleDesc(t)
	hf, _ := createTestHeapFile(t, td)

	pid := page.NewPageDescriptor(hf.GetID(), 0)
	hp, err := NewEmptyHeapPage(pid, td)
	require.NoError(t, err)
	require.NoError(t, hp.AddTuple(createTestTuple(t, td, 42, "persisted")))

	require.NoError(t, hf.WritePage(hp))

	pg, err := hf.ReadPage(pid)
	require.NoError(t, err)

	got := pg.(*HeapPage).GetTuples()
	require.Len(t, got, 1)

	f, err := got[0].GetField(0)
	require.NoError(t, err)
	assert.EqualValues(t, 42, f.(*types.IntField).Value)
}

func TestHeapFile_ReadPage_ReencodesToRawBytes(t *testing.T) {
	td := createTestTupleDesc(t)
	hf, _ := createTestHeapFile(t, td)

	pid := page.NewPageDescriptor(hf.GetID(), 0)
	hp, err := NewEmptyHeapPage(pid, td)
	require.NoError(t, err)
	require.NoError(t, hp.AddTuple(createTestTuple(t, td, 1, "raw")))
	require.NoError(t, hf.WritePage(hp))

	pg, err := hf.ReadPage(pid)
	require.NoError(t, err)

	raw, err := os.ReadFile(hf.FilePath().String())
	require.NoError(t, err)
	require.Len(t, raw, page.PageSize)
	assert.Equal(t, raw, pg.GetPageData())
}

func TestHeapFile_WritePage_Errors(t *testing.T) {
	td := createTestTupleDesc(t)
	hf, _ := createTestHeapFile(t, td)

	t.Run("nil page", func(t *testing.T) {
		assert.Error(t, hf.WritePage(nil))
	})

	t.Run("foreign page", func(t *testing.T) {
		hp, err := NewEmptyHeapPage(page.NewPageDescriptor(hf.GetID()+1, 0), td)
		require.NoError(t, err)
		assert.ErrorIs(t, hf.WritePage(hp), ErrPageNotInFile)
	})
}

func TestHeapFile_InsertTuple_GrowsFile(t *testing.T) {
	td := createTestTupleDesc(t)
	hf, _ := createTestHeapFile(t, td)
	tid := transaction.NewTransactionID()

	tup := createTestTuple(t, td, 1, "first")
	dirtied, err := hf.InsertTuple(tid, tup)
	require.NoError(t, err)
	require.Len(t, dirtied, 1)

	// The grown page is on disk immediately, not just in memory.
	n, err := hf.NumPages()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NotNil(t, tup.RecordID)
	assert.EqualValues(t, 0, tup.RecordID.PageID.PageNo())
	assert.True(t, tid.Equals(dirtied[0].IsDirty()))
}

func TestHeapFile_InsertTuple_FirstFit(t *testing.T) {
	td := createWideTupleDesc(t)
	hf, _ := createTestHeapFile(t, td)
	tid := transaction.NewTransactionID()

	perPage := int(SlotsPerPage(td))
	require.Equal(t, 4, perPage)

	// Fill page 0 and spill one tuple onto page 1.
	inserted := make([]*tupleRef, 0, perPage+1)
	for i := 0; i < perPage+1; i++ {
		tup := createWideTuple(t, td, "row")
		_, err := hf.InsertTuple(tid, tup)
		require.NoError(t, err)
		inserted = append(inserted, &tupleRef{tup.RecordID.PageID.PageNo(), tup})
	}

	n, err := hf.NumPages()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.EqualValues(t, 1, inserted[perPage].page)

	// Free a slot on page 0; the next insert lands there, not on page 1
	// and not on a new page.
	_, err = hf.DeleteTuple(tid, inserted[1].tup)
	require.NoError(t, err)

	refill := createWideTuple(t, td, "refill")
	_, err = hf.InsertTuple(tid, refill)
	require.NoError(t, err)
	assert.EqualValues(t, 0, refill.RecordID.PageID.PageNo())

	n, err = hf.NumPages()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

type tupleRef struct {
	page primitives.PageNumber
	tup  *tuple.Tuple
}

func TestHeapFile_DeleteTuple_Errors(t *testing.T) {
	td := createTestTupleDesc(t)
	hf, _ := createTestHeapFile(t, td)
	tid := transaction.NewTransactionID()

	t.Run("nil tuple", func(t *testing.T) {
		_, err := hf.DeleteTuple(tid, nil)
		assert.Error(t, err)
	})

	t.Run("never inserted", func(t *testing.T) {
		_, err := hf.DeleteTuple(tid, createTestTuple(t, td, 1, "floating"))
		assert.ErrorIs(t, err, ErrNoRecordID)
	})

	t.Run("foreign table", func(t *testing.T) {
		other, _ := createTestHeapFile(t, td)

		tup := createTestTuple(t, td, 2, "elsewhere")
		_, err := other.InsertTuple(tid, tup)
		require.NoError(t, err)

		_, err = hf.DeleteTuple(tid, tup)
		assert.ErrorIs(t, err, ErrTableMismatch)
	})
}

func TestHeapFile_InsertDeleteInsert(t *testing.T) {
	td := createTestTupleDesc(t)
	hf, _ := createTestHeapFile(t, td)
	tid := transaction.NewTransactionID()

	tup := createTestTuple(t, td, 10, "transient")
	_, err := hf.InsertTuple(tid, tup)
	require.NoError(t, err)

	pg, err := hf.DeleteTuple(tid, tup)
	require.NoError(t, err)
	assert.Equal(t, SlotsPerPage(td), pg.(*HeapPage).GetNumEmptySlots())

	// Deleted tuples can be re-inserted and get a fresh location.
	_, err = hf.InsertTuple(tid, tup)
	require.NoError(t, err)
	require.NotNil(t, tup.RecordID)
}

func TestHeapFile_DeleteTuple_Twice(t *testing.T) {
	td := createTestTupleDesc(t)
	hf, _ := createTestHeapFile(t, td)
	tid := transaction.NewTransactionID()

	tup := createTestTuple(t, td, 11, "once")
	_, err := hf.InsertTuple(tid, tup)
	require.NoError(t, err)

	_, err = hf.DeleteTuple(tid, tup)
	require.NoError(t, err)

	// The stale location routes the repeat back to the freed slot.
	_, err = hf.DeleteTuple(tid, tup)
	assert.ErrorIs(t, err, ErrSlotEmpty)
}

func TestHeapFile_InsertTuple_UnsetField(t *testing.T) {
	td := createTestTupleDesc(t)
	hf, _ := createTestHeapFile(t, td)
	tid := transaction.NewTransactionID()

	partial := tuple.NewTuple(td)
	require.NoError(t, partial.SetField(0, types.NewIntField(1)))

	_, err := hf.InsertTuple(tid, partial)
	assert.Error(t, err)

	// Nothing reaches disk for a rejected record.
	n, err := hf.NumPages()
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestHeapFile_InsertTuple_TupleTooLarge(t *testing.T) {
	fields := make([]types.Type, 32)
	names := make([]string, 32)
	for i := range fields {
		fields[i] = types.StringType
		names[i] = fmt.Sprintf("c%d", i)
	}
	td, err := tuple.NewTupleDesc(fields, names)
	require.NoError(t, err)
	require.Zero(t, SlotsPerPage(td))

	hf, _ := createTestHeapFile(t, td)
	tid := transaction.NewTransactionID()

	tup := tuple.NewTuple(td)
	for i := range fields {
		require.NoError(t, tup.SetField(i, types.NewStringField("v", types.StringMaxSize)))
	}

	_, err = hf.InsertTuple(tid, tup)
	assert.ErrorIs(t, err, ErrTupleTooLarge)

	n, err := hf.NumPages()
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}
