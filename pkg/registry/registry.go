package registry

import (
	"sync"

	"github.com/sxt-network/sxt-node/pkg/commitment"
	"github.com/sxt-network/sxt-node/pkg/table"
)

// Registry is the tables registry of spec §4.D: it owns table schema,
// versioning, UUIDs, and quorum policy, and drives the commitment engine
// and commitment map on create/drop.
type Registry struct {
	mu      sync.RWMutex
	entries map[table.ID]Entry

	engine *commitment.Engine
	cmap   *commitment.Map
}

// New builds an empty registry bound to the given commitment engine and
// commitment map.
func New(engine *commitment.Engine, cmap *commitment.Map) *Registry {
	return &Registry{
		entries: make(map[table.ID]Entry),
		engine:  engine,
		cmap:    cmap,
	}
}

// Get returns the current registry entry for id.
func (r *Registry) Get(id table.ID) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Has reports whether id is registered.
func (r *Registry) Has(id table.ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

func (r *Registry) tablesInNamespace(namespace string) []table.ID {
	var out []table.ID
	for id := range r.entries {
		if id.Namespace == namespace {
			out = append(out, id)
		}
	}
	return out
}
