// Package cache implements a bounded, byte-capacity LRU string→string store.
// All operations are single-threaded: a Cache has no internal locking, and
// concurrent callers must wrap every operation in their own mutex, exactly
// as the design this package follows expects of its storage backends.
package cache

// node is one entry in the cache's recency-ordered doubly linked list. Nodes
// live in a fixed arena (Cache.nodes) and are addressed by slot index rather
// than by pointer, which sidesteps the aliasing hazards that a hand-rolled
// pointer list invites when nodes are unlinked and relinked on every touch.
type node struct {
	key   string
	value string
	prev  int // arena index, -1 for none
	next  int // arena index, -1 for none
	free  bool
}

const noNode = -1

// Cache is a fixed-byte-capacity key/value store with least-recently-used
// eviction. The head of the internal list is the eviction victim; the tail
// is the most recently touched entry. Construct one with New.
type Cache struct {
	maxSize    int
	actualSize int

	nodes    []node
	freeList []int // indices into nodes available for reuse
	index    map[string]int

	head int // arena index of the LRU victim, or noNode if empty
	tail int // arena index of the most-recently-used entry, or noNode if empty
}

// New constructs an empty cache with the given total byte budget across all
// live key+value pairs.
func New(maxSize int) *Cache {
	if maxSize < 0 {
		maxSize = 0
	}
	return &Cache{
		maxSize: maxSize,
		index:   make(map[string]int),
		head:    noNode,
		tail:    noNode,
	}
}

// entrySize is the number of bytes a key/value pair occupies against the
// budget.
func entrySize(key, value string) int {
	return len(key) + len(value)
}

// Len reports the number of live entries.
func (c *Cache) Len() int { return len(c.index) }

// Contains reports whether key is present, without affecting recency order.
func (c *Cache) Contains(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Put inserts or replaces key's value. If key already exists, its value is
// replaced and the entry is moved to the tail; otherwise a new entry is
// inserted at the tail. Put evicts from the head as needed to stay within
// the byte budget, and fails without changing any state if the single entry
// itself exceeds the budget.
func (c *Cache) Put(key, value string) bool {
	if idx, ok := c.index[key]; ok {
		return c.replace(idx, key, value)
	}
	return c.insert(key, value)
}

// PutIfAbsent inserts key only if it does not already exist. It never
// replaces an existing value.
func (c *Cache) PutIfAbsent(key, value string) bool {
	if _, ok := c.index[key]; ok {
		return false
	}
	return c.insert(key, value)
}

// Set replaces key's value only if key already exists. It returns false and
// makes no change if key is absent.
func (c *Cache) Set(key, value string) bool {
	idx, ok := c.index[key]
	if !ok {
		return false
	}
	return c.replace(idx, key, value)
}

// Get returns key's value and promotes key to the tail. It returns "" and
// false, changing nothing, if key is absent.
func (c *Cache) Get(key string) (value string, ok bool) {
	idx, exists := c.index[key]
	if !exists {
		return "", false
	}
	c.touch(idx)
	return c.nodes[idx].value, true
}

// Delete removes key if present. Delete does not affect recency order of
// any remaining entry.
func (c *Cache) Delete(key string) bool {
	idx, ok := c.index[key]
	if !ok {
		return false
	}
	c.actualSize -= entrySize(c.nodes[idx].key, c.nodes[idx].value)
	c.unlink(idx)
	delete(c.index, key)
	c.free(idx)
	return true
}

// insert adds a brand-new key/value pair at the tail, evicting from the
// head as needed. It fails, leaving the cache unchanged, if the entry alone
// exceeds max_size.
func (c *Cache) insert(key, value string) bool {
	size := entrySize(key, value)
	if size > c.maxSize {
		return false
	}
	for c.actualSize+size > c.maxSize {
		c.evictHead()
	}

	idx := c.alloc(key, value)
	c.linkAtTail(idx)
	c.index[key] = idx
	c.actualSize += size
	return true
}

// replace updates the value of an existing node at idx, evicting from the
// head as needed, and promotes it to the tail. It fails, leaving the cache
// unchanged, if the entry with the new value alone exceeds max_size.
func (c *Cache) replace(idx int, key, newValue string) bool {
	n := &c.nodes[idx]
	if entrySize(key, newValue) > c.maxSize {
		return false
	}

	c.touch(idx) // move to tail first, mirroring the order Put prescribes

	sizeDiff := entrySize(key, newValue) - entrySize(n.key, n.value)
	for c.actualSize+sizeDiff > c.maxSize {
		// The node being replaced might itself become the eviction
		// victim only if it is still the head; evictHead handles that
		// generically since touch already moved it to the tail.
		c.evictHead()
	}

	c.actualSize += sizeDiff
	n.value = newValue
	return true
}

// touch moves the node at idx to the tail, marking it most recently used.
func (c *Cache) touch(idx int) {
	if idx == c.tail {
		return
	}
	c.unlink(idx)
	c.linkAtTail(idx)
}

// evictHead removes the current head node to free up budget.
func (c *Cache) evictHead() {
	idx := c.head
	n := &c.nodes[idx]
	c.actualSize -= entrySize(n.key, n.value)
	delete(c.index, n.key)
	c.unlink(idx)
	c.free(idx)
}

// unlink detaches idx from the doubly linked list without freeing it.
func (c *Cache) unlink(idx int) {
	n := &c.nodes[idx]
	if n.prev != noNode {
		c.nodes[n.prev].next = n.next
	} else {
		c.head = n.next
	}
	if n.next != noNode {
		c.nodes[n.next].prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = noNode, noNode
}

// linkAtTail appends idx to the tail of the list.
func (c *Cache) linkAtTail(idx int) {
	n := &c.nodes[idx]
	n.prev = c.tail
	n.next = noNode
	if c.tail != noNode {
		c.nodes[c.tail].next = idx
	} else {
		c.head = idx
	}
	c.tail = idx
}

// alloc returns a node slot holding key/value, reusing a freed slot when
// one is available.
func (c *Cache) alloc(key, value string) int {
	if n := len(c.freeList); n > 0 {
		idx := c.freeList[n-1]
		c.freeList = c.freeList[:n-1]
		c.nodes[idx] = node{key: key, value: value, prev: noNode, next: noNode}
		return idx
	}
	c.nodes = append(c.nodes, node{key: key, value: value, prev: noNode, next: noNode})
	return len(c.nodes) - 1
}

// free returns idx's slot to the arena's free list for reuse.
func (c *Cache) free(idx int) {
	c.nodes[idx] = node{free: true, prev: noNode, next: noNode}
	c.freeList = append(c.freeList, idx)
}
