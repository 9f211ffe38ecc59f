package fibonacci

import "sync"

// Cache is a memoization table from index to sequence value, shared by all
// clients. The table is contiguous: if index i is cached, so is every index
// below it. Entries are written once and never change.
//
// Cache is safe for concurrent use. Reads of already computed entries only
// take the read lock; extending the table takes the write lock and re-checks
// the length, so two callers racing to compute the same index converge on the
// same stored value.
type Cache struct {
	mu     sync.RWMutex
	values []int64
}

// NewCache returns a cache seeded with value(0) = value(1) = 1.
func NewCache() *Cache {
	values := make([]int64, 2, initialCapacity)
	values[0], values[1] = Seed, Seed
	return &Cache{values: values}
}

// Value returns the sequence value at index, computing and storing every
// missing entry up to it. It panics if index is negative.
func (c *Cache) Value(index int) int64 {
	if index < 0 {
		panic("fibonacci: negative index")
	}

	c.mu.RLock()
	if index < len(c.values) {
		v := c.values[index]
		c.mu.RUnlock()
		return v
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.extendLocked(index)
	return c.values[index]
}

// Prefix returns a copy of value(0) .. value(n-1). The returned slice is
// owned by the caller.
func (c *Cache) Prefix(n int) []int64 {
	if n <= 0 {
		return []int64{}
	}

	out := make([]int64, n)
	c.mu.RLock()
	if n <= len(c.values) {
		copy(out, c.values[:n])
		c.mu.RUnlock()
		return out
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.extendLocked(n - 1)
	copy(out, c.values[:n])
	return out
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// extendLocked grows the table iteratively until index is present.
// Another writer may already have done the work, in which case this is a no-op.
func (c *Cache) extendLocked(index int) {
	for i := len(c.values); i <= index; i++ {
		// Signed overflow wraps past MaxExactIndex.
		c.values = append(c.values, c.values[i-1]+c.values[i-2])
	}
}
