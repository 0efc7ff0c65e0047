// Package memory provides the shared page cache mediating all page access
// across transactions.
package memory

import (
	"fmt"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"sync"
)

// PageCache stores resident pages in memory. It knows nothing about
// transactions, locks, or durability; that is the PageStore's business.
type PageCache interface {
	// Get retrieves a resident page, marking it recently used.
	Get(key primitives.PageKey) (page.Page, bool)

	// Put stores or updates a page. Fails when the cache is full and the
	// page is not already resident.
	Put(key primitives.PageKey, p page.Page) error

	// Remove evicts a page. Does nothing if the page isn't resident.
	Remove(key primitives.PageKey)

	// Size returns the number of resident pages.
	Size() int

	// Clear drops every resident page.
	Clear()

	// Keys returns all resident page keys, least recently used first.
	Keys() []primitives.PageKey
}

// node is one entry in the LRU list.
type node struct {
	key  primitives.PageKey
	page page.Page
	prev *node
	next *node
}

// LRUPageCache is a bounded page cache with least-recently-used ordering,
// built from a doubly linked list plus a map for O(1) lookups. It does not
// evict on its own: Put fails when full, and the PageStore decides which
// clean, unlocked page to drop.
type LRUPageCache struct {
	maxSize int
	cache   map[primitives.PageKey]*node
	head    *node
	tail    *node
	mutex   sync.RWMutex
}

func NewLRUPageCache(maxSize int) *LRUPageCache {
	head := &node{}
	tail := &node{}
	head.next = tail
	tail.prev = head

	return &LRUPageCache{
		maxSize: maxSize,
		cache:   make(map[primitives.PageKey]*node),
		head:    head,
		tail:    tail,
	}
}

func (c *LRUPageCache) addToFront(n *node) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}

func (c *LRUPageCache) removeNode(n *node) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

func (c *LRUPageCache) moveToFront(n *node) {
	c.removeNode(n)
	c.addToFront(n)
}

func (c *LRUPageCache) Get(key primitives.PageKey) (page.Page, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if n, exists := c.cache[key]; exists {
		c.moveToFront(n)
		return n.page, true
	}
	return nil, false
}

func (c *LRUPageCache) Put(key primitives.PageKey, p page.Page) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if n, exists := c.cache[key]; exists {
		n.page = p
		c.moveToFront(n)
		return nil
	}

	if len(c.cache) >= c.maxSize {
		return fmt.Errorf("cache full, cannot add page %s", key)
	}

	n := &node{key: key, page: p}
	c.cache[key] = n
	c.addToFront(n)
	return nil
}

func (c *LRUPageCache) Remove(key primitives.PageKey) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if n, exists := c.cache[key]; exists {
		delete(c.cache, key)
		c.removeNode(n)
	}
}

func (c *LRUPageCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cache)
}

func (c *LRUPageCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[primitives.PageKey]*node)
	c.head.next = c.tail
	c.tail.prev = c.head
}

func (c *LRUPageCache) Keys() []primitives.PageKey {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	keys := make([]primitives.PageKey, 0, len(c.cache))
	for n := c.tail.prev; n != c.head; n = n.prev {
		keys = append(keys, n.key)
	}
	return keys
}
