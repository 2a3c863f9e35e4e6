// Package tree implements the attestation Merkle tree of spec §4.G: a
// Keccak-256 binary Merkle tree over storage-prefix "foliates"
// (commitments, staking locks, the staking-contract info singleton),
// adapted from the SHA-256 tree the teacher built for proof receipts.
package tree

import (
	"bytes"
	"encoding/hex"
	"errors"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrEmptyMerkleRoot = errors.New("merkle tree is empty")
	ErrLocateLeaf      = errors.New("leaf not found in tree")
)

// Leaf is one (storage_key, storage_value) pair.
type Leaf struct {
	Key   []byte
	Value []byte
}

func leafHash(l Leaf) []byte {
	return crypto.Keccak256(append(append([]byte{}, l.Key...), l.Value...))
}

func hashPair(a, b []byte) []byte {
	return crypto.Keccak256(append(append([]byte{}, a...), b...))
}

// Tree is a built, bottom-up Keccak-256 Merkle tree: levels[0] holds leaf
// hashes in the foliate-concatenation order, levels[len-1] holds the root.
type Tree struct {
	leaves []Leaf
	levels [][][]byte
}

// Build constructs the tree over leaves, which must already be in the
// fixed, documented foliate-concatenation order with each foliate's pairs
// in byte-lex key order (spec §4.G steps 1-2). Odd levels duplicate their
// last node before pairing (step 4).
func Build(leaves []Leaf) *Tree {
	t := &Tree{leaves: leaves}
	if len(leaves) == 0 {
		t.levels = [][][]byte{{}}
		return t
	}

	level := make([][]byte, len(leaves))
	for i, l := range leaves {
		level[i] = leafHash(l)
	}
	t.levels = [][][]byte{level}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([][]byte, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, hashPair(level[i], level[i+1]))
		}
		t.levels = append(t.levels, next)
		level = next
	}
	return t
}

// Root returns the tree's state root, or ErrEmptyMerkleRoot for an empty
// tree.
func (t *Tree) Root() ([]byte, error) {
	top := t.levels[len(t.levels)-1]
	if len(top) == 0 {
		return nil, ErrEmptyMerkleRoot
	}
	return top[0], nil
}

func (t *Tree) locate(key, value []byte) (int, error) {
	target := leafHash(Leaf{Key: key, Value: value})
	for i, l := range t.levels[0] {
		if bytes.Equal(l, target) {
			return i, nil
		}
	}
	return 0, ErrLocateLeaf
}

// ProveLeafPair returns the sibling-hash path from the given leaf to the
// root, as 64-char lowercase hex strings (spec §4.G "prove_leaf_pair").
func (t *Tree) ProveLeafPair(key, value []byte) ([]string, error) {
	if len(t.levels[0]) == 0 {
		return nil, ErrEmptyMerkleRoot
	}
	idx, err := t.locate(key, value)
	if err != nil {
		return nil, err
	}

	proof := make([]string, 0, len(t.levels)-1)
	for lvl := 0; lvl < len(t.levels)-1; lvl++ {
		level := t.levels[lvl]
		pairIdx := idx ^ 1
		if pairIdx >= len(level) {
			pairIdx = idx
		}
		proof = append(proof, hex.EncodeToString(level[pairIdx]))
		idx /= 2
	}
	return proof, nil
}

// ValidateProof checks that every entry in proof decodes to exactly 32
// bytes, as required before handing the proof to the external-chain
// contract (spec §4.G).
func ValidateProof(proof []string) ([][32]byte, error) {
	out := make([][32]byte, len(proof))
	for i, p := range proof {
		b, err := hex.DecodeString(p)
		if err != nil || len(b) != 32 {
			return nil, errors.New("proof entry does not decode to 32 bytes")
		}
		copy(out[i][:], b)
	}
	return out, nil
}

// SortedLeaves sorts foliate pairs into byte-lex key order in place and
// returns them, implementing spec §4.G step 1 for a single foliate.
func SortedLeaves(pairs []Leaf) []Leaf {
	sort.Slice(pairs, func(i, j int) bool {
		return bytes.Compare(pairs[i].Key, pairs[j].Key) < 0
	})
	return pairs
}
