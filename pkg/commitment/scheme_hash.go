package commitment

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/sxt-network/sxt-node/pkg/scalar"
)

// hashTag domain-separates the accumulator from any other keccak256 use in
// the module (attestation tree, scalar string hashing).
const hashTag = "SXT/COMMIT/HASH"

// hashCommitColumn seeds a hash-chain commitment for a freshly created
// column: keccak256(tag || scalar bytes...).
func hashCommitColumn(c scalar.Column) ([]byte, error) {
	return hashAppendColumn(nil, c)
}

// hashAppendColumn extends a running hash-chain commitment with newly
// appended rows: next = keccak256(prev || tag || scalar_0 || scalar_1 ...).
// An empty prev starts the chain.
func hashAppendColumn(prev []byte, newRows scalar.Column) ([]byte, error) {
	committable, err := scalar.ToScalars(newRows)
	if err != nil {
		return nil, err
	}
	parts := make([][]byte, 0, len(committable.Elements)+2)
	if len(prev) > 0 {
		parts = append(parts, prev)
	}
	parts = append(parts, []byte(hashTag))
	for _, e := range committable.Elements {
		b := e.Bytes()
		parts = append(parts, b[:])
	}
	return crypto.Keccak256(parts...), nil
}
