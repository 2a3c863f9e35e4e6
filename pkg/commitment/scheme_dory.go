package commitment

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/sxt-network/sxt-node/pkg/scalar"
)

// DorySRS is the structured reference string backing SchemeDory: a list of
// bn254 G1 generators, one per supported row position. The name echoes the
// generalized inner-product argument this vector-Pedersen construction is
// typically paired with; no pairing is used here, only an unblinded
// multi-scalar commitment per column.
type DorySRS struct {
	Generators []bn254.G1Affine
}

// commitSegment computes sum(generators[i]^scalars[i]) for the given
// slice, i.e. the bn254 multi-scalar-exponentiation of a column segment
// against the corresponding SRS window.
func commitSegment(generators []bn254.G1Affine, scalars []fr.Element) (bn254.G1Affine, error) {
	var result bn254.G1Affine
	if len(scalars) == 0 {
		result.X.SetZero()
		result.Y.SetZero()
		return result, nil
	}
	if len(generators) < len(scalars) {
		return bn254.G1Affine{}, fmt.Errorf("dory: reference string covers %d rows, need %d", len(generators), len(scalars))
	}
	if _, err := result.MultiExp(generators[:len(scalars)], scalars, ecc.MultiExpConfig{}); err != nil {
		return bn254.G1Affine{}, fmt.Errorf("dory: multi-exponentiation: %w", err)
	}
	return result, nil
}

func dorySegmentFromColumn(srs *DorySRS, offset int, c scalar.Column) (bn254.G1Affine, error) {
	committable, err := scalar.ToScalars(c)
	if err != nil {
		return bn254.G1Affine{}, err
	}
	if offset+len(committable.Elements) > len(srs.Generators) {
		return bn254.G1Affine{}, fmt.Errorf("dory: reference string too short for offset %d + %d rows", offset, len(committable.Elements))
	}
	return commitSegment(srs.Generators[offset:offset+len(committable.Elements)], committable.Elements)
}

// doryCommitColumn produces the initial commitment bytes for a freshly
// created column (offset 0).
func doryCommitColumn(srs *DorySRS, c scalar.Column) ([]byte, error) {
	p, err := dorySegmentFromColumn(srs, 0, c)
	if err != nil {
		return nil, err
	}
	b := p.Bytes()
	return b[:], nil
}

// doryAppendColumn extends an existing column commitment with the segment
// committing to the newly appended rows, by adding the delta commitment
// (linearity of the multi-scalar-exponentiation over disjoint generator
// windows).
func doryAppendColumn(srs *DorySRS, existing []byte, rowOffset int, newRows scalar.Column) ([]byte, error) {
	var old bn254.G1Affine
	if _, err := old.SetBytes(existing); err != nil {
		return nil, fmt.Errorf("dory: decode existing commitment: %w", err)
	}
	delta, err := dorySegmentFromColumn(srs, rowOffset, newRows)
	if err != nil {
		return nil, err
	}
	var sum bn254.G1Affine
	sum.Add(&old, &delta)
	b := sum.Bytes()
	return b[:], nil
}
