package scalar

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/crypto"
)

// fieldModulus is the bn254 scalar field modulus; Decimal75 values must
// satisfy |x| < fieldModulus/2 to convert losslessly (spec §4.A).
var fieldModulus = fr.Modulus()

var halfModulus = new(big.Int).Rsh(fieldModulus, 1)

// Committable is a column converted into the prover's scalar field, one
// element per row, in row order.
type Committable struct {
	Type     ColumnType
	Elements []fr.Element
}

// domain-separation tags, hashed ahead of the payload so that a VarChar and
// a VarBinary column carrying the same bytes never collide in scalar space.
const (
	tagVarChar   = "SXT/VARCHAR"
	tagVarBinary = "SXT/VARBINARY"
)

// ToScalars converts an OnChainColumn to its committable scalar-field form.
// Returns ErrOutOfScalarBounds for a Decimal75 value outside
// (-modulus/2, modulus/2).
func ToScalars(c Column) (Committable, error) {
	n := c.Len()
	out := Committable{Type: c.Type, Elements: make([]fr.Element, n)}

	switch c.Type.Kind() {
	case KindBoolean:
		for i, v := range c.Bool {
			if v {
				out.Elements[i].SetOne()
			} else {
				out.Elements[i].SetZero()
			}
		}
	case KindU8:
		for i, v := range c.U8 {
			out.Elements[i].SetUint64(uint64(v))
		}
	case KindI8:
		for i, v := range c.I8 {
			out.Elements[i].SetInt64(int64(v))
		}
	case KindI16:
		for i, v := range c.I16 {
			out.Elements[i].SetInt64(int64(v))
		}
	case KindI32:
		for i, v := range c.I32 {
			out.Elements[i].SetInt64(int64(v))
		}
	case KindI64:
		for i, v := range c.I64 {
			out.Elements[i].SetInt64(v)
		}
	case KindI128:
		for i, v := range c.I128 {
			out.Elements[i].SetBigInt(v)
		}
	case KindDecimal75:
		for i, v := range c.Decimal {
			if err := checkScalarBounds(v); err != nil {
				return Committable{}, err
			}
			out.Elements[i].SetBigInt(v)
		}
	case KindVarChar:
		for i, v := range c.VarChar {
			out.Elements[i] = hashToScalar(tagVarChar, []byte(v))
		}
	case KindVarBinary:
		for i, v := range c.VarBinary {
			out.Elements[i] = hashToScalar(tagVarBinary, v)
		}
	case KindTimestampTZ:
		for i, v := range c.TimestampTZ {
			out.Elements[i].SetInt64(v)
		}
	}
	return out, nil
}

func checkScalarBounds(v *big.Int) error {
	abs := new(big.Int).Abs(v)
	if abs.Cmp(halfModulus) > 0 {
		return ErrOutOfScalarBounds
	}
	return nil
}

// hashToScalar deterministically interns arbitrary bytes as a scalar, using
// a domain-separated Keccak-256 hash so the mapping is identical on every
// platform (spec §4.A: "Strings are interned ... hashed to scalars
// identically on all platforms").
func hashToScalar(tag string, data []byte) fr.Element {
	h := crypto.Keccak256([]byte(tag), data)
	var e fr.Element
	e.SetBytes(h)
	return e
}
