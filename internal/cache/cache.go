// ABOUTME: In-memory memo of decoded files keyed by path
// ABOUTME: Entries are invalidated when the file's modification time or size changes

package cache

import (
	"log/slog"
	"os"
	"sync"
	"time"
)

type entry struct {
	data    any
	modTime time.Time
	size    int64
}

// Cache memoises decoded files, safe for concurrent use
type Cache struct {
	store sync.Map
}

// New returns an empty cache
func New() *Cache {
	return &Cache{}
}

// Get returns the value stored for path if the file is unchanged since it was stored
func (c *Cache) Get(path string) (any, bool) {
	val, ok := c.store.Load(path)
	if !ok {
		slog.Debug("Cache miss", "path", path)
		return nil, false
	}

	e := val.(entry)
	info, err := os.Stat(path)
	if err != nil || !info.ModTime().Equal(e.modTime) || info.Size() != e.size {
		c.store.Delete(path)
		slog.Debug("Cache stale", "path", path)
		return nil, false
	}

	slog.Debug("Cache hit", "path", path)
	return e.data, true
}

// Set stores value for path stamped with the file's current state
func (c *Cache) Set(path string, value any) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	c.store.Store(path, entry{
		data:    value,
		modTime: info.ModTime(),
		size:    info.Size(),
	})
	slog.Debug("Cache set", "path", path)
	return nil
}

// Load returns the memoised value for path, decoding and storing it on a miss
func (c *Cache) Load(path string, decode func(path string) (any, error)) (any, error) {
	if v, ok := c.Get(path); ok {
		return v, nil
	}
	v, err := decode(path)
	if err != nil {
		return nil, err
	}
	if err := c.Set(path, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Cache) Clear(path string) {
	c.store.Delete(path)
}

// Prune drops entries whose files changed or disappeared
func (c *Cache) Prune() int {
	removed := 0
	c.store.Range(func(key, val any) bool {
		e := val.(entry)
		info, err := os.Stat(key.(string))
		if err != nil || !info.ModTime().Equal(e.modTime) || info.Size() != e.size {
			c.store.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Len returns the number of stored entries
func (c *Cache) Len() int {
	n := 0
	c.store.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
