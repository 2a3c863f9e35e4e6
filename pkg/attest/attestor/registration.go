package attestor

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// RegistrationProof is printed for an operator to submit to admin
// enrollment (spec §4.H "Registration").
type RegistrationProof struct {
	R          [32]byte
	S          [32]byte
	V          byte
	PubKey     []byte
	EthAddress [20]byte
}

// Register signs a canonical message containing the attestor's runtime
// account id with the external-chain key, one-shot (spec §4.H).
func Register(key *ecdsa.PrivateKey, runtimeAccountID string) (RegistrationProof, error) {
	digest := crypto.Keccak256([]byte("SXT/ATTESTOR/REGISTER"), []byte(runtimeAccountID))
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return RegistrationProof{}, err
	}
	var r, s [32]byte
	copy(r[:], sig[0:32])
	copy(s[:], sig[32:64])

	addr := crypto.PubkeyToAddress(key.PublicKey)
	var a [20]byte
	copy(a[:], addr.Bytes())

	return RegistrationProof{
		R:          r,
		S:          s,
		V:          sig[64],
		PubKey:     crypto.FromECDSAPub(&key.PublicKey),
		EthAddress: a,
	}, nil
}

// String renders the proof for admin copy-paste.
func (p RegistrationProof) String() string {
	return fmt.Sprintf("r=0x%x s=0x%x v=%d pub_key=0x%x addr=0x%x", p.R, p.S, p.V, p.PubKey, p.EthAddress)
}
