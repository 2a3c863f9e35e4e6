package attestor

// VerifyBlock recomputes the canonical message for blockNumber, verifies
// every attestation's signature, and asserts all state roots agree (spec
// §4.H "Verification"). Returns the agreed state root.
func VerifyBlock(blockNumber uint64, attestations []EthereumAttestation) ([32]byte, error) {
	var zero [32]byte
	if len(attestations) == 0 {
		return zero, ErrStateRootMismatch
	}

	want := attestations[0].StateRoot
	for _, att := range attestations {
		ok, err := VerifySignature(att, uint32(blockNumber))
		if err != nil {
			return zero, err
		}
		if !ok {
			return zero, ErrStateRootMismatch
		}
		if att.StateRoot != want {
			return zero, ErrStateRootMismatch
		}
	}
	return want, nil
}
