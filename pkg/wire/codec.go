// Package wire implements the row-data payload codec of spec §6: a
// platform-neutral columnar stream whose schema maps one-to-one to
// scalar.Column variants, plus the compact persisted-on-chain serialization
// of table.Table. Per spec §9 ("Arrow IPC dependency"), no third-party
// columnar-IPC library appears anywhere in the example corpus, so this
// package hand-rolls an equivalent length-prefixed binary format; the two
// entry points below (EncodeRowData/EncodeOnChain) share one wire shape so
// that round-tripping between them is exact by construction.
package wire

import (
	"encoding/binary"
	"math/big"

	"github.com/sxt-network/sxt-node/pkg/scalar"
	"github.com/sxt-network/sxt-node/pkg/table"
)

// kindTag is the one-byte wire discriminant for each scalar.Kind.
type kindTag byte

const (
	tagBoolean kindTag = iota
	tagU8
	tagI8
	tagI16
	tagI32
	tagI64
	tagI128
	tagDecimal75
	tagVarChar
	tagVarBinary
	tagTimestampTZ
)

func tagForKind(k scalar.Kind) kindTag {
	switch k {
	case scalar.KindBoolean:
		return tagBoolean
	case scalar.KindU8:
		return tagU8
	case scalar.KindI8:
		return tagI8
	case scalar.KindI16:
		return tagI16
	case scalar.KindI32:
		return tagI32
	case scalar.KindI64:
		return tagI64
	case scalar.KindI128:
		return tagI128
	case scalar.KindDecimal75:
		return tagDecimal75
	case scalar.KindVarChar:
		return tagVarChar
	case scalar.KindVarBinary:
		return tagVarBinary
	case scalar.KindTimestampTZ:
		return tagTimestampTZ
	default:
		return 0xFF
	}
}

// EncodeRowData serializes t as a single-record-batch row-data payload
// (spec §6 "Wire: row-data payload").
func EncodeRowData(t *table.Table) ([]byte, error) {
	return encode(t)
}

// DecodeRowData deserializes a row-data payload into an OnChainTable,
// rejecting nullable columns and unsupported types (spec §6).
func DecodeRowData(data []byte) (*table.Table, error) {
	return decode(data)
}

// EncodeOnChain serializes t into the compact persisted-on-chain form
// (spec §6 "Persisted-on-chain form").
func EncodeOnChain(t *table.Table) ([]byte, error) {
	return encode(t)
}

// DecodeOnChain is the inverse of EncodeOnChain.
func DecodeOnChain(data []byte) (*table.Table, error) {
	return decode(data)
}

type byteWriter struct {
	buf []byte
}

func (w *byteWriter) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *byteWriter) u16(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }
func (w *byteWriter) u32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }
func (w *byteWriter) i64(v int64)  { w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v)) }
func (w *byteWriter) bytes(b []byte) {
	w.u32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}
func (w *byteWriter) str(s string) { w.bytes([]byte(s)) }

// bigInt writes a signed big.Int as a sign byte (0 for non-negative, 1 for
// negative) followed by a length-prefixed big-endian magnitude.
func (w *byteWriter) bigInt(v *big.Int) {
	if v == nil {
		v = big.NewInt(0)
	}
	if v.Sign() < 0 {
		w.u8(1)
	} else {
		w.u8(0)
	}
	w.bytes(new(big.Int).Abs(v).Bytes())
}

type byteReader struct {
	buf []byte
	pos int
}

func (r *byteReader) remaining() int { return len(r.buf) - r.pos }

func (r *byteReader) u8() (uint8, error) {
	if r.remaining() < 1 {
		return 0, ErrTruncated
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *byteReader) u16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *byteReader) u32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *byteReader) i64() (int64, error) {
	if r.remaining() < 8 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return int64(v), nil
}

func (r *byteReader) bytes() ([]byte, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if r.remaining() < int(n) {
		return nil, ErrTruncated
	}
	out := append([]byte{}, r.buf[r.pos:r.pos+int(n)]...)
	r.pos += int(n)
	return out, nil
}

func (r *byteReader) str() (string, error) {
	b, err := r.bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *byteReader) bigInt() (*big.Int, error) {
	sign, err := r.u8()
	if err != nil {
		return nil, err
	}
	mag, err := r.bytes()
	if err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(mag)
	if sign == 1 {
		v.Neg(v)
	}
	return v, nil
}

func encode(t *table.Table) ([]byte, error) {
	w := &byteWriter{}
	cols := t.Columns()
	w.u32(uint32(len(cols)))
	for _, e := range cols {
		w.str(e.Identifier)
		w.u8(uint8(tagForKind(e.Column.Type.Kind())))
		w.u8(0) // nullable flag: always 0 — this format has no null representation
		switch e.Column.Type.Kind() {
		case scalar.KindDecimal75:
			w.u8(e.Column.Type.Precision())
			w.u16(uint16(e.Column.Type.Scale()))
		case scalar.KindTimestampTZ:
			w.u8(uint8(e.Column.Type.Unit()))
			if z := e.Column.Type.Zone(); z != nil {
				w.u8(1)
				w.str(*z)
			} else {
				w.u8(0)
			}
		}

		n := e.Column.Len()
		w.u32(uint32(n))
		switch e.Column.Type.Kind() {
		case scalar.KindBoolean:
			for _, v := range e.Column.Bool {
				if v {
					w.u8(1)
				} else {
					w.u8(0)
				}
			}
		case scalar.KindU8:
			for _, v := range e.Column.U8 {
				w.u8(v)
			}
		case scalar.KindI8:
			for _, v := range e.Column.I8 {
				w.u8(uint8(v))
			}
		case scalar.KindI16:
			for _, v := range e.Column.I16 {
				w.u16(uint16(v))
			}
		case scalar.KindI32:
			for _, v := range e.Column.I32 {
				w.u32(uint32(v))
			}
		case scalar.KindI64:
			for _, v := range e.Column.I64 {
				w.i64(v)
			}
		case scalar.KindI128:
			for _, v := range e.Column.I128 {
				w.bigInt(v)
			}
		case scalar.KindDecimal75:
			for _, v := range e.Column.Decimal {
				w.bigInt(v)
			}
		case scalar.KindVarChar:
			for _, v := range e.Column.VarChar {
				w.str(v)
			}
		case scalar.KindVarBinary:
			for _, v := range e.Column.VarBinary {
				w.bytes(v)
			}
		case scalar.KindTimestampTZ:
			for _, v := range e.Column.TimestampTZ {
				w.i64(v)
			}
		}
	}
	return w.buf, nil
}

func decode(data []byte) (*table.Table, error) {
	r := &byteReader{buf: data}
	numCols, err := r.u32()
	if err != nil {
		return nil, fmtErr(err)
	}

	entries := make([]table.Entry, 0, numCols)
	for i := uint32(0); i < numCols; i++ {
		ident, err := r.str()
		if err != nil {
			return nil, fmtErr(err)
		}
		tagByte, err := r.u8()
		if err != nil {
			return nil, fmtErr(err)
		}
		nullable, err := r.u8()
		if err != nil {
			return nil, fmtErr(err)
		}
		if nullable != 0 {
			return nil, ErrNativeRecordBatchUnsupportedType
		}

		colType, err := typeFromTag(kindTag(tagByte), r)
		if err != nil {
			return nil, err
		}

		n, err := r.u32()
		if err != nil {
			return nil, fmtErr(err)
		}

		col, err := decodeValues(colType, int(n), r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, table.Entry{Identifier: ident, Column: col})
	}

	t, err := table.New(entries)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func fmtErr(err error) error {
	if err == ErrTruncated {
		return ErrTruncated
	}
	return ErrNativeDeserialization
}

func typeFromTag(tag kindTag, r *byteReader) (scalar.ColumnType, error) {
	switch tag {
	case tagBoolean:
		return scalar.Boolean(), nil
	case tagU8:
		return scalar.U8Type(), nil
	case tagI8:
		return scalar.I8Type(), nil
	case tagI16:
		return scalar.I16Type(), nil
	case tagI32:
		return scalar.I32Type(), nil
	case tagI64:
		return scalar.I64Type(), nil
	case tagI128:
		return scalar.I128Type(), nil
	case tagVarChar:
		return scalar.VarChar(), nil
	case tagVarBinary:
		return scalar.VarBinary(), nil
	case tagDecimal75:
		prec, err := r.u8()
		if err != nil {
			return scalar.ColumnType{}, fmtErr(err)
		}
		scale, err := r.u16()
		if err != nil {
			return scalar.ColumnType{}, fmtErr(err)
		}
		ct, err := scalar.Decimal75(prec, int16(scale))
		if err != nil {
			return scalar.ColumnType{}, err
		}
		return ct, nil
	case tagTimestampTZ:
		unit, err := r.u8()
		if err != nil {
			return scalar.ColumnType{}, fmtErr(err)
		}
		hasZone, err := r.u8()
		if err != nil {
			return scalar.ColumnType{}, fmtErr(err)
		}
		var zone *string
		if hasZone == 1 {
			z, err := r.str()
			if err != nil {
				return scalar.ColumnType{}, fmtErr(err)
			}
			zone = &z
		}
		ct, err := scalar.TimestampTZ(scalar.TimeUnit(unit), zone)
		if err != nil {
			return scalar.ColumnType{}, err
		}
		return ct, nil
	default:
		return scalar.ColumnType{}, ErrNativeRecordBatchUnsupportedType
	}
}

func decodeValues(colType scalar.ColumnType, n int, r *byteReader) (scalar.Column, error) {
	col := scalar.NewEmpty(colType)
	switch colType.Kind() {
	case scalar.KindBoolean:
		col.Bool = make([]bool, n)
		for i := 0; i < n; i++ {
			v, err := r.u8()
			if err != nil {
				return scalar.Column{}, fmtErr(err)
			}
			col.Bool[i] = v != 0
		}
	case scalar.KindU8:
		col.U8 = make([]uint8, n)
		for i := 0; i < n; i++ {
			v, err := r.u8()
			if err != nil {
				return scalar.Column{}, fmtErr(err)
			}
			col.U8[i] = v
		}
	case scalar.KindI8:
		col.I8 = make([]int8, n)
		for i := 0; i < n; i++ {
			v, err := r.u8()
			if err != nil {
				return scalar.Column{}, fmtErr(err)
			}
			col.I8[i] = int8(v)
		}
	case scalar.KindI16:
		col.I16 = make([]int16, n)
		for i := 0; i < n; i++ {
			v, err := r.u16()
			if err != nil {
				return scalar.Column{}, fmtErr(err)
			}
			col.I16[i] = int16(v)
		}
	case scalar.KindI32:
		col.I32 = make([]int32, n)
		for i := 0; i < n; i++ {
			v, err := r.u32()
			if err != nil {
				return scalar.Column{}, fmtErr(err)
			}
			col.I32[i] = int32(v)
		}
	case scalar.KindI64:
		col.I64 = make([]int64, n)
		for i := 0; i < n; i++ {
			v, err := r.i64()
			if err != nil {
				return scalar.Column{}, fmtErr(err)
			}
			col.I64[i] = v
		}
	case scalar.KindI128:
		col.I128 = make([]*big.Int, n)
		for i := 0; i < n; i++ {
			v, err := r.bigInt()
			if err != nil {
				return scalar.Column{}, fmtErr(err)
			}
			col.I128[i] = v
		}
	case scalar.KindDecimal75:
		col.Decimal = make([]*big.Int, n)
		for i := 0; i < n; i++ {
			v, err := r.bigInt()
			if err != nil {
				return scalar.Column{}, fmtErr(err)
			}
			col.Decimal[i] = v
		}
	case scalar.KindVarChar:
		col.VarChar = make([]string, n)
		for i := 0; i < n; i++ {
			v, err := r.str()
			if err != nil {
				return scalar.Column{}, fmtErr(err)
			}
			col.VarChar[i] = v
		}
	case scalar.KindVarBinary:
		col.VarBinary = make([][]byte, n)
		for i := 0; i < n; i++ {
			v, err := r.bytes()
			if err != nil {
				return scalar.Column{}, fmtErr(err)
			}
			col.VarBinary[i] = v
		}
	case scalar.KindTimestampTZ:
		col.TimestampTZ = make([]int64, n)
		for i := 0; i < n; i++ {
			v, err := r.i64()
			if err != nil {
				return scalar.Column{}, fmtErr(err)
			}
			col.TimestampTZ[i] = v
		}
	}
	return col, nil
}
