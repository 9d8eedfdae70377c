// Package cache memoizes script registrations with the store.
//
// A Registry holds one Table per CacheKey. Runners that compute the same key
// share the Table, so a script is registered at most once per key for the
// lifetime of the Registry.
package cache

import (
	"sync"

	"github.com/aretw0/redscript/pkg/domain"
	"golang.org/x/sync/singleflight"
)

// Registry manages the registration tables.
type Registry struct {
	mu     sync.Mutex
	tables map[domain.CacheKey]*Table
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tables: make(map[domain.CacheKey]*Table),
	}
}

// Table returns the table for key, creating it on first use.
func (r *Registry) Table(key domain.CacheKey) *Table {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tables[key]
	if !ok {
		t = &Table{entries: make(map[string]*domain.Registration)}
		r.tables[key] = t
	}
	return t
}

// Len returns the number of tables.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tables)
}

// Table maps script paths to settled registrations. In-flight registrations
// are tracked by the embedded group and never stored until they succeed.
type Table struct {
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]*domain.Registration
}

// Get returns the settled registration for path.
func (t *Table) Get(path string) (*domain.Registration, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	reg, ok := t.entries[path]
	return reg, ok
}

// Len returns the number of settled registrations.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *Table) put(path string, reg *domain.Registration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[path] = reg
}
