package scalar

import "math/big"

// Column is an OnChainColumn: a typed, homogeneous, non-nullable sequence
// matching one ColumnType. Exactly one of the value slices below is
// populated, selected by Type.Kind().
type Column struct {
	Type ColumnType

	Bool        []bool
	U8          []uint8
	I8          []int8
	I16         []int16
	I32         []int32
	I64         []int64
	I128        []*big.Int // two's-complement range of a 128-bit signed integer
	Decimal     []*big.Int // signed value; Type.Precision()/Type.Scale() give the decimal shape
	VarChar     []string
	VarBinary   [][]byte
	TimestampTZ []int64 // raw integer in Type.Unit() resolution
}

// NewEmpty returns a zero-length column of the given type, constructible
// for every type per spec §4.A.
func NewEmpty(t ColumnType) Column {
	c := Column{Type: t}
	switch t.Kind() {
	case KindBoolean:
		c.Bool = []bool{}
	case KindU8:
		c.U8 = []uint8{}
	case KindI8:
		c.I8 = []int8{}
	case KindI16:
		c.I16 = []int16{}
	case KindI32:
		c.I32 = []int32{}
	case KindI64:
		c.I64 = []int64{}
	case KindI128:
		c.I128 = []*big.Int{}
	case KindDecimal75:
		c.Decimal = []*big.Int{}
	case KindVarChar:
		c.VarChar = []string{}
	case KindVarBinary:
		c.VarBinary = [][]byte{}
	case KindTimestampTZ:
		c.TimestampTZ = []int64{}
	}
	return c
}

// Len returns the number of rows in the column.
func (c Column) Len() int {
	switch c.Type.Kind() {
	case KindBoolean:
		return len(c.Bool)
	case KindU8:
		return len(c.U8)
	case KindI8:
		return len(c.I8)
	case KindI16:
		return len(c.I16)
	case KindI32:
		return len(c.I32)
	case KindI64:
		return len(c.I64)
	case KindI128:
		return len(c.I128)
	case KindDecimal75:
		return len(c.Decimal)
	case KindVarChar:
		return len(c.VarChar)
	case KindVarBinary:
		return len(c.VarBinary)
	case KindTimestampTZ:
		return len(c.TimestampTZ)
	default:
		return 0
	}
}

// Slice returns the sub-column [from:to), preserving Type.
func (c Column) Slice(from, to int) Column {
	out := Column{Type: c.Type}
	switch c.Type.Kind() {
	case KindBoolean:
		out.Bool = append([]bool{}, c.Bool[from:to]...)
	case KindU8:
		out.U8 = append([]uint8{}, c.U8[from:to]...)
	case KindI8:
		out.I8 = append([]int8{}, c.I8[from:to]...)
	case KindI16:
		out.I16 = append([]int16{}, c.I16[from:to]...)
	case KindI32:
		out.I32 = append([]int32{}, c.I32[from:to]...)
	case KindI64:
		out.I64 = append([]int64{}, c.I64[from:to]...)
	case KindI128:
		out.I128 = append([]*big.Int{}, c.I128[from:to]...)
	case KindDecimal75:
		out.Decimal = append([]*big.Int{}, c.Decimal[from:to]...)
	case KindVarChar:
		out.VarChar = append([]string{}, c.VarChar[from:to]...)
	case KindVarBinary:
		out.VarBinary = append([][]byte{}, c.VarBinary[from:to]...)
	case KindTimestampTZ:
		out.TimestampTZ = append([]int64{}, c.TimestampTZ[from:to]...)
	}
	return out
}

// Append concatenates other onto c; both must share an identical Type.
func (c Column) Append(other Column) (Column, error) {
	if !c.Type.Equal(other.Type) {
		return Column{}, ErrTypeMismatch
	}
	out := c
	switch c.Type.Kind() {
	case KindBoolean:
		out.Bool = append(append([]bool{}, c.Bool...), other.Bool...)
	case KindU8:
		out.U8 = append(append([]uint8{}, c.U8...), other.U8...)
	case KindI8:
		out.I8 = append(append([]int8{}, c.I8...), other.I8...)
	case KindI16:
		out.I16 = append(append([]int16{}, c.I16...), other.I16...)
	case KindI32:
		out.I32 = append(append([]int32{}, c.I32...), other.I32...)
	case KindI64:
		out.I64 = append(append([]int64{}, c.I64...), other.I64...)
	case KindI128:
		out.I128 = append(append([]*big.Int{}, c.I128...), other.I128...)
	case KindDecimal75:
		out.Decimal = append(append([]*big.Int{}, c.Decimal...), other.Decimal...)
	case KindVarChar:
		out.VarChar = append(append([]string{}, c.VarChar...), other.VarChar...)
	case KindVarBinary:
		out.VarBinary = append(append([][]byte{}, c.VarBinary...), other.VarBinary...)
	case KindTimestampTZ:
		out.TimestampTZ = append(append([]int64{}, c.TimestampTZ...), other.TimestampTZ...)
	}
	return out, nil
}
