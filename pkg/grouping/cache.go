package grouping

import (
	"strconv"
	"sync"

	"github.com/ajitpratap0/tabular/pkg/value"
)

// Cache memoizes partitions so repeated grouping calls against the same
// table, key columns and DropNA setting skip the scan — for example an
// Agg followed by a Size over the same keys. Entries are keyed by the
// table's opaque identity, so a cache never serves a partition built
// for a different table: tables are immutable and every derived table
// carries a fresh identity. Purely an optimization; disabling it (nil
// cache) changes no observable behavior.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]*Entry
}

// NewCache returns an empty partition cache, safe for concurrent use.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]*Entry)}
}

func (c *Cache) get(key string) ([]*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	got, ok := c.entries[key]
	return got, ok
}

func (c *Cache) put(key string, entries []*Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entries
}

// Len reports the number of memoized partitions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cacheKey builds the memoization key. Column names are encoded as
// composite-key fragments so a name containing a separator byte cannot
// collide with a different column list.
func cacheKey(tableID string, keyColumns []string, dropna bool) string {
	vals := make([]value.Value, len(keyColumns))
	for i, c := range keyColumns {
		vals[i] = value.Text(c)
	}
	return tableID + "\x00" + value.CompositeKey(vals) + "\x00" + strconv.FormatBool(dropna)
}
