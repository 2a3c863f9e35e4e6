package scalar

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToScalars_Boolean(t *testing.T) {
	col := Column{Type: Boolean(), Bool: []bool{true, false, true}}
	out, err := ToScalars(col)
	require.NoError(t, err)
	require.Len(t, out.Elements, 3)
	require.True(t, out.Elements[0].IsOne())
	require.True(t, out.Elements[1].IsZero())
}

func TestToScalars_DecimalOutOfBounds(t *testing.T) {
	typ, err := Decimal75(75, 0)
	require.NoError(t, err)

	tooBig := new(big.Int).Set(fieldModulus) // certainly >= modulus/2
	col := Column{Type: typ, Decimal: []*big.Int{tooBig}}

	_, err = ToScalars(col)
	require.ErrorIs(t, err, ErrOutOfScalarBounds)
}

func TestToScalars_VarCharDeterministic(t *testing.T) {
	col := Column{Type: VarChar(), VarChar: []string{"hello", "hello", "world"}}
	out, err := ToScalars(col)
	require.NoError(t, err)
	require.True(t, out.Elements[0].Equal(&out.Elements[1]))
	require.False(t, out.Elements[0].Equal(&out.Elements[2]))
}

func TestToScalars_VarCharVsVarBinaryDoNotCollide(t *testing.T) {
	strCol := Column{Type: VarChar(), VarChar: []string{"abc"}}
	binCol := Column{Type: VarBinary(), VarBinary: [][]byte{[]byte("abc")}}

	strOut, err := ToScalars(strCol)
	require.NoError(t, err)
	binOut, err := ToScalars(binCol)
	require.NoError(t, err)

	require.False(t, strOut.Elements[0].Equal(&binOut.Elements[0]))
}

func TestDecimal75ValidationRange(t *testing.T) {
	_, err := Decimal75(0, 0)
	require.ErrorIs(t, err, ErrDecimalPrecision)

	_, err = Decimal75(76, 0)
	require.ErrorIs(t, err, ErrDecimalPrecision)

	_, err = Decimal75(10, -76)
	require.ErrorIs(t, err, ErrDecimalScale)

	_, err = Decimal75(10, 128)
	require.ErrorIs(t, err, ErrDecimalScale)

	_, err = Decimal75(10, -75)
	require.NoError(t, err)
}

func TestTimestampTZZoneRoundTrip(t *testing.T) {
	utc := "UTC"
	zoned, err := TimestampTZ(Second, &utc)
	require.NoError(t, err)
	unzoned, err := TimestampTZ(Second, nil)
	require.NoError(t, err)

	require.False(t, zoned.Equal(unzoned))
	require.Nil(t, unzoned.Zone())
	require.Equal(t, "UTC", *zoned.Zone())
}
