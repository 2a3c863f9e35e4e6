// Package attestor implements the off-chain attestor loop of spec §4.H:
// subscribe to finalized blocks, rebuild the attestation tree, sign the
// state root with a secp256k1 key, and submit an attestation extrinsic.
package attestor

import "errors"

var (
	ErrAttestationCreation = errors.New("attestation creation failed after retry")
	ErrStateRootMismatch   = errors.New("attested state roots disagree for the same block")
)

// EthereumAttestation is the extrinsic payload of spec §4.H step 4.
type EthereumAttestation struct {
	R         [32]byte
	S         [32]byte
	V         byte // 0 or 1, EVM recovery id before +27 normalization
	PubKey    []byte
	Addr      [20]byte
	StateRoot [32]byte
	BlockHash [32]byte
}

// StoredAttestation is one attestation persisted on-chain for a block,
// as consumed by the verification command and the forwarder.
type StoredAttestation struct {
	BlockNumber uint64
	Attestation EthereumAttestation
}
