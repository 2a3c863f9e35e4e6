// Package forwarder implements the event forwarder of spec §4.I: watch
// attested blocks for stash unbonding events, rebuild the attestation tree
// to produce a leaf-pair proof, pack threshold signatures, and invoke the
// external-chain `sxtFulfillUnstake` contract call before advancing the
// native chain's forwarded-block watermark.
package forwarder

import (
	"context"
	"math/big"

	"github.com/sxt-network/sxt-node/pkg/attest/attestor"
	"github.com/sxt-network/sxt-node/pkg/store"
)

// BlockAttestedEvent is one `BlockAttested{block_number, attestation}`
// on-chain event (spec §6).
type BlockAttestedEvent struct {
	BlockNumber uint64
	Attestation attestor.EthereumAttestation
}

// Unbonding is one stash's unbonding request recorded at an attested block.
// StashID is the 32-byte stash account id; a zero-prefixed stash (first 12
// bytes zero) indicates an EVM-address-derived account (spec §4.I step 5).
type Unbonding struct {
	StashID [32]byte
	Amount  *big.Int
}

// EVMAddress returns the last 20 bytes of StashID, the EVM address the
// stash was derived from.
func (u Unbonding) EVMAddress() [20]byte {
	var out [20]byte
	copy(out[:], u.StashID[12:])
	return out
}

// IsZeroPrefixed reports whether StashID's first 12 bytes are zero (spec
// §4.I step 5).
func (u Unbonding) IsZeroPrefixed() bool {
	for _, b := range u.StashID[:12] {
		if b != 0 {
			return false
		}
	}
	return true
}

// EventSource delivers finalized blocks' BlockAttested events.
type EventSource interface {
	BlockAttestedEvents(ctx context.Context, blockNumber uint64) ([]BlockAttestedEvent, error)
}

// ChainReader fetches an attested block's unbonding events and the
// storage-prefix foliates (commitments, locks, staking-contract info) at
// that block's state, per spec §4.I steps 2-3.
type ChainReader interface {
	Unbondings(ctx context.Context, attestedBlock uint64) ([]Unbonding, error)
	Foliate(ctx context.Context, attestedBlock uint64, prefix []byte) ([]store.Foliate, error)
	Attestations(ctx context.Context, attestedBlock uint64) ([]attestor.EthereumAttestation, error)
	// LockRecord returns the (key, value) storage pair recording stash's
	// staking lock, used to locate its leaf in the rebuilt tree.
	LockRecord(ctx context.Context, attestedBlock uint64, stashID [32]byte) (key, value []byte, err error)
}

// NativeChain advances the native chain's forwarded-block watermark.
type NativeChain interface {
	MarkBlockForwarded(ctx context.Context, blockNumber uint64) error
}

// ExternalChain is the external-chain contract call surface.
type ExternalChain interface {
	SxtFulfillUnstake(ctx context.Context, staker [20]byte, amount *big.Int, blockNumber uint64, proof [][32]byte, r [][32]byte, s [][32]byte, v []uint8) error
}

// Metrics is the narrow Prometheus surface the forwarder reports to.
type Metrics interface {
	ObserveForward(blockNumber uint64, err error)
	ObserveWatermark(blockNumber uint64, err error)
}
