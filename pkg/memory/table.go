package memory

import (
	"fmt"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"sync"

	"golang.org/x/exp/maps"
)

// TableInfo holds the catalog entry for one table.
type TableInfo struct {
	File page.DbFile
	Name string
}

func NewTableInfo(file page.DbFile, name string) *TableInfo {
	return &TableInfo{
		File: file,
		Name: name,
	}
}

func (ti *TableInfo) GetID() primitives.TableID {
	return ti.File.GetID()
}

// TableManager maps table names and identities to their backing files. The
// PageStore resolves a page's table through it on cache misses and flushes.
type TableManager struct {
	nameToTable map[string]*TableInfo
	idToTable   map[primitives.TableID]*TableInfo
	mutex       sync.RWMutex
}

func NewTableManager() *TableManager {
	return &TableManager{
		nameToTable: make(map[string]*TableInfo),
		idToTable:   make(map[primitives.TableID]*TableInfo),
	}
}

// AddTable registers a table. A table with the same name or identity is
// replaced.
func (tm *TableManager) AddTable(f page.DbFile, name string) error {
	if f == nil {
		return fmt.Errorf("file cannot be nil")
	}
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}

	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	info := NewTableInfo(f, name)
	id := f.GetID()

	if existing, exists := tm.nameToTable[name]; exists {
		delete(tm.idToTable, existing.GetID())
	}
	if existing, exists := tm.idToTable[id]; exists {
		delete(tm.nameToTable, existing.Name)
	}

	tm.nameToTable[name] = info
	tm.idToTable[id] = info
	return nil
}

// GetDbFile resolves a table identity to its backing file.
func (tm *TableManager) GetDbFile(id primitives.TableID) (page.DbFile, error) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	info, exists := tm.idToTable[id]
	if !exists {
		return nil, fmt.Errorf("table with ID %d not found", id)
	}
	return info.File, nil
}

// GetTableID resolves a table name to its identity.
func (tm *TableManager) GetTableID(name string) (primitives.TableID, error) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	info, exists := tm.nameToTable[name]
	if !exists {
		return 0, fmt.Errorf("table '%s' not found", name)
	}
	return info.GetID(), nil
}

// TableExists reports whether a table with the given name is registered.
func (tm *TableManager) TableExists(name string) bool {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	_, exists := tm.nameToTable[name]
	return exists
}

// RemoveTable unregisters a table.
func (tm *TableManager) RemoveTable(name string) error {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	info, exists := tm.nameToTable[name]
	if !exists {
		return fmt.Errorf("table '%s' not found", name)
	}

	delete(tm.nameToTable, name)
	delete(tm.idToTable, info.GetID())
	return nil
}

// GetAllTableNames returns the names of all registered tables.
func (tm *TableManager) GetAllTableNames() []string {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()
	return maps.Keys(tm.nameToTable)
}
