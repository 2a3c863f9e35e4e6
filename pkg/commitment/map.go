package commitment

import "sync"

// Key identifies a commitment-map entry: one per table.
type Key struct {
	Namespace string
	Name      string
}

// Map is the commitment map of spec §4.B: a key-value store from table key
// to its per-scheme commitments, with atomic create/update/delete.
type Map struct {
	mu      sync.RWMutex
	entries map[Key]PerSchemeCommitments
}

// NewMap returns an empty commitment map.
func NewMap() *Map {
	return &Map{entries: make(map[Key]PerSchemeCommitments)}
}

// Has reports whether key has an entry.
func (m *Map) Has(key Key) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[key]
	return ok
}

// SchemesFor returns the set of schemes committed for key, or false if the
// key has no entry.
func (m *Map) SchemesFor(key Key) (map[Scheme]struct{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return entry.Schemes(), true
}

// Get returns the per-scheme commitments for key.
func (m *Map) Get(key Key) (PerSchemeCommitments, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return entry, nil
}

// Create inserts a brand-new entry. Fails with ErrKeyExists if key is
// already present.
func (m *Map) Create(key Key, commitments PerSchemeCommitments) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; ok {
		return ErrKeyExists
	}
	m.entries[key] = commitments
	return nil
}

// Update replaces an existing entry's commitments. The replacement's
// scheme set must match the existing entry's scheme set exactly, else
// ErrSchemesMismatch (a commitment map never silently drops or adds
// schemes on update).
func (m *Map) Update(key Key, commitments PerSchemeCommitments) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.entries[key]
	if !ok {
		return ErrKeyNotFound
	}
	if !SameSchemes(existing.Schemes(), commitments.Schemes()) {
		return ErrSchemesMismatch
	}
	m.entries[key] = commitments
	return nil
}

// Delete removes an entry. Deleting an absent key is a no-op.
func (m *Map) Delete(key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}
