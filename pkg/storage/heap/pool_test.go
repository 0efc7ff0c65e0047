package heap

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"
)

// testPool is a minimal page pool for exercising heap files in isolation: no
// locking, no eviction, pages read through the owning file and kept resident
// so successive acquisitions observe earlier mutations.
type testPool struct {
	mu    sync.Mutex
	files map[primitives.TableID]*HeapFile
	pages map[primitives.PageKey]page.Page
}

func newTestPool() *testPool {
	return &testPool{
		files: make(map[primitives.TableID]*HeapFile),
		pages: make(map[primitives.PageKey]page.Page),
	}
}

func (p *testPool) register(hf *HeapFile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.files[hf.GetID()] = hf
}

func (p *testPool) GetPage(tid *transaction.TransactionID, pid *page.PageDescriptor, perm page.Permissions) (page.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := pid.Key()
	if pg, ok := p.pages[key]; ok {
		return pg, nil
	}

	hf, ok := p.files[pid.GetTableID()]
	if !ok {
		return nil, fmt.Errorf("no file registered for table %s", pid.GetTableID())
	}

	pg, err := hf.ReadPage(pid)
	if err != nil {
		return nil, err
	}
	p.pages[key] = pg
	return pg, nil
}

func createTestTupleDesc(t *testing.T) *tuple.TupleDescription {
	t.Helper()
	td, err := tuple.NewTupleDesc(
		[]types.Type{types.IntType, types.StringType},
		[]string{"id", "name"},
	)
	if err != nil {
		t.Fatalf("failed to create tuple desc: %v", err)
	}
	return td
}

// createWideTupleDesc returns a schema wide enough that only a handful of
// tuples fit on a page. Seven string fields at 132 bytes each come to 924
// bytes per tuple, which works out to 4 slots on a 4096-byte page.
func createWideTupleDesc(t *testing.T) *tuple.TupleDescription {
	t.Helper()
	fieldTypes := make([]types.Type, 7)
	fieldNames := make([]string, 7)
	for i := range fieldTypes {
		fieldTypes[i] = types.StringType
		fieldNames[i] = fmt.Sprintf("col%d", i)
	}
	td, err := tuple.NewTupleDesc(fieldTypes, fieldNames)
	if err != nil {
		t.Fatalf("failed to create tuple desc: %v", err)
	}
	return td
}

func createTestHeapFile(t *testing.T, td *tuple.TupleDescription) (*HeapFile, *testPool) {
	t.Helper()
	path := primitives.Filepath(filepath.Join(t.TempDir(), "test.dat"))

	pool := newTestPool()
	hf, err := NewHeapFile(path, td, pool)
	if err != nil {
		t.Fatalf("failed to create heap file: %v", err)
	}
	pool.register(hf)
	return hf, pool
}

func createTestTuple(t *testing.T, td *tuple.TupleDescription, id int64, name string) *tuple.Tuple {
	t.Helper()
	tup := tuple.NewTuple(td)
	if err := tup.SetField(0, types.NewIntField(id)); err != nil {
		t.Fatalf("failed to set field 0: %v", err)
	}
	if err := tup.SetField(1, types.NewStringField(name, types.StringMaxSize)); err != nil {
		t.Fatalf("failed to set field 1: %v", err)
	}
	return tup
}

func createWideTuple(t *testing.T, td *tuple.TupleDescription, seed string) *tuple.Tuple {
	t.Helper()
	tup := tuple.NewTuple(td)
	for i := 0; i < td.NumFields(); i++ {
		val := fmt.Sprintf("%s-%d", seed, i)
		if err := tup.SetField(i, types.NewStringField(val, types.StringMaxSize)); err != nil {
			t.Fatalf("failed to set field %d: %v", i, err)
		}
	}
	return tup
}
