package attestor

import (
	"crypto/ecdsa"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"
)

// CanonicalMessage builds state_root || block_number_le_u32, the exact
// byte sequence signed by attest_block (spec §3 "Attestation record",
// §4.H step 3).
func CanonicalMessage(stateRoot [32]byte, blockNumber uint32) []byte {
	msg := make([]byte, 0, 36)
	msg = append(msg, stateRoot[:]...)
	var bn [4]byte
	binary.LittleEndian.PutUint32(bn[:], blockNumber)
	msg = append(msg, bn[:]...)
	return msg
}

// Sign produces an EthereumAttestation over stateRoot at blockNumber using
// key, deriving the 20-byte address from the recoverable signature.
func Sign(key *ecdsa.PrivateKey, stateRoot [32]byte, blockNumber uint32, blockHash [32]byte) (EthereumAttestation, error) {
	digest := crypto.Keccak256(CanonicalMessage(stateRoot, blockNumber))

	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return EthereumAttestation{}, err
	}

	var r, s [32]byte
	copy(r[:], sig[0:32])
	copy(s[:], sig[32:64])
	v := sig[64]

	addr := crypto.PubkeyToAddress(key.PublicKey)
	var a [20]byte
	copy(a[:], addr.Bytes())

	return EthereumAttestation{
		R:         r,
		S:         s,
		V:         v,
		PubKey:    crypto.FromECDSAPub(&key.PublicKey),
		Addr:      a,
		StateRoot: stateRoot,
		BlockHash: blockHash,
	}, nil
}

// VerifySignature recomputes the canonical message for (stateRoot,
// blockNumber) and checks att's signature recovers to att.Addr.
func VerifySignature(att EthereumAttestation, blockNumber uint32) (bool, error) {
	digest := crypto.Keccak256(CanonicalMessage(att.StateRoot, blockNumber))
	sig := make([]byte, 65)
	copy(sig[0:32], att.R[:])
	copy(sig[32:64], att.S[:])
	sig[64] = att.V

	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return false, err
	}
	recovered := crypto.PubkeyToAddress(*pub)
	return recovered == att.Addr, nil
}
