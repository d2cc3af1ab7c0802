// Package bookcache keeps a local, non-authoritative set of saved book IDs so
// a client can mark already-saved search results without a round trip. The
// server's saved list always wins; Replace reconciles after any query.
package bookcache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Cache is an explicit, file-backed ID set. All state lives on the instance;
// nothing is ambient.
type Cache struct {
	mu   sync.Mutex
	path string
	ids  map[string]struct{}
}

func New(path string) *Cache {
	return &Cache{path: path, ids: make(map[string]struct{})}
}

// Load reads the cache file. A missing file is an empty cache, not an error.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		// A corrupt cache is worthless but harmless; start over.
		c.ids = make(map[string]struct{})
		return nil
	}
	c.ids = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		c.ids[id] = struct{}{}
	}
	return nil
}

func (c *Cache) Contains(bookID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ids[bookID]
	return ok
}

func (c *Cache) Add(bookID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[bookID] = struct{}{}
}

func (c *Cache) Remove(bookID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, bookID)
}

// Replace swaps the whole set for the authoritative server-side list.
func (c *Cache) Replace(bookIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = make(map[string]struct{}, len(bookIDs))
	for _, id := range bookIDs {
		c.ids[id] = struct{}{}
	}
}

// Flush writes the set back to disk, creating parent directories as needed.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.ids))
	for id := range c.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}
