// Package assets resolves models stored across several GRF archives.
package assets

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/webgl-export/internal/logger"
	"github.com/Faultbox/webgl-export/pkg/encoding"
	"github.com/Faultbox/webgl-export/pkg/formats"
	"github.com/Faultbox/webgl-export/pkg/grf"
	"github.com/Faultbox/webgl-export/pkg/mesh"
)

// Manager looks models up in a stack of GRF archives and caches the
// parsed meshes.
type Manager struct {
	archives []*grf.Archive
	cache    *Cache
	log      *zap.Logger
	mu       sync.RWMutex
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
		log:   logger.Named("assets"),
	}
}

// AddArchive opens a GRF archive and adds it to the manager.
// Archives are searched in reverse order (last added = highest priority).
func (m *Manager) AddArchive(path string) error {
	archive, err := grf.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}
	m.Add(archive)
	return nil
}

// Add adds an already opened archive. The manager takes ownership.
func (m *Manager) Add(archive *grf.Archive) {
	m.mu.Lock()
	m.archives = append(m.archives, archive)
	m.mu.Unlock()
}

// Mesh returns the model at path from the highest-priority archive holding
// it. Results are cached and shared, so callers must not modify them.
func (m *Manager) Mesh(path string) (*mesh.Mesh, error) {
	key := encoding.NormalizePath(path)
	if cached, ok := m.cache.Get(key); ok {
		return cached, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.archives) - 1; i >= 0; i-- {
		if !m.archives[i].Contains(key) {
			continue
		}
		loaded, err := formats.LoadArchiveEntry(m.archives[i], key)
		if err != nil {
			return nil, err
		}
		m.cache.Set(key, loaded)
		return loaded, nil
	}

	return nil, fmt.Errorf("%w: %s", grf.ErrNotFound, path)
}

// Models lists the RSM models across all archives, sorted and without
// duplicates. A non-empty pattern keeps names whose base matches it as a
// glob or whose path contains it.
func (m *Manager) Models(pattern string) []string {
	pattern = strings.ToLower(pattern)

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, archive := range m.archives {
		for _, name := range archive.List() {
			if seen[name] || filepath.Ext(name) != ".rsm" {
				continue
			}
			if pattern != "" {
				matched, _ := filepath.Match(pattern, filepath.Base(name))
				if !matched && !strings.Contains(name, pattern) {
					continue
				}
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Close closes all archives and logs how well the mesh cache did.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	hits, misses := m.cache.Stats()
	m.log.Debug("closing archives",
		zap.Int("archives", len(m.archives)),
		zap.Int("cache_hits", hits),
		zap.Int("cache_misses", misses),
	)

	for _, archive := range m.archives {
		archive.Close()
	}
	m.archives = nil
	m.cache.Clear()
}

// Cache is a simple in-memory cache for parsed meshes.
type Cache struct {
	data map[string]*mesh.Mesh
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*mesh.Mesh),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (*mesh.Mesh, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data *mesh.Mesh) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*mesh.Mesh)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
