// Package store adapts CometBFT's key-value database to namespaced,
// prefix-partitioned storage with an ordered prefix scan. pkg/quorum keeps
// its submission/finalization state here; the commitment map and the
// tables registry are in-memory and do not use it.
package store

import (
	dbm "github.com/cometbft/cometbft-db"
)

// Prefixes partition the shared key space by subsystem. The attestor
// builds its tree from the commitment, stake-lock and contract prefixes;
// keys under the registry and quorum prefixes are not attested.
var (
	PrefixCommitment = []byte("c/")
	PrefixRegistry   = []byte("r/")
	PrefixQuorum     = []byte("q/")
	PrefixStakeLock  = []byte("s/")
	PrefixContract   = []byte("k/")
)

// Store wraps a CometBFT dbm.DB with namespaced get/set/delete and an
// ordered-prefix scan.
type Store struct {
	db dbm.DB
}

// New wraps an already-open CometBFT database.
func New(db dbm.DB) *Store {
	return &Store{db: db}
}

func namespaced(prefix, key []byte) []byte {
	out := make([]byte, 0, len(prefix)+len(key))
	out = append(out, prefix...)
	out = append(out, key...)
	return out
}

// Get reads a namespaced value. A nil result with a nil error means the
// key is absent.
func (s *Store) Get(prefix, key []byte) ([]byte, error) {
	return s.db.Get(namespaced(prefix, key))
}

// Has reports whether a namespaced key exists.
func (s *Store) Has(prefix, key []byte) (bool, error) {
	return s.db.Has(namespaced(prefix, key))
}

// Set durably writes a namespaced key-value pair.
func (s *Store) Set(prefix, key, value []byte) error {
	return s.db.SetSync(namespaced(prefix, key), value)
}

// Delete removes a namespaced key. Deleting an absent key is a no-op.
func (s *Store) Delete(prefix, key []byte) error {
	return s.db.DeleteSync(namespaced(prefix, key))
}

// Foliate is one (storage_key, storage_value) pair, the attestation-tree
// leaf unit of spec §3.
type Foliate struct {
	Key   []byte
	Value []byte
}

// ScanPrefix returns every key-value pair under prefix in ascending
// byte-lex key order (the order spec §3 requires for attestation-tree
// leaves), with prefix itself stripped from each returned key.
func (s *Store) ScanPrefix(prefix []byte) ([]Foliate, error) {
	end := prefixUpperBound(prefix)
	it, err := s.db.Iterator(prefix, end)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []Foliate
	for ; it.Valid(); it.Next() {
		k := it.Key()
		v := it.Value()
		key := make([]byte, len(k)-len(prefix))
		copy(key, k[len(prefix):])
		val := make([]byte, len(v))
		copy(val, v)
		out = append(out, Foliate{Key: key, Value: val})
	}
	return out, it.Error()
}

// prefixUpperBound returns the smallest byte string greater than every
// string with the given prefix, for use as an iterator's exclusive end
// bound. Returns nil (unbounded) if prefix is all 0xFF bytes.
func prefixUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
