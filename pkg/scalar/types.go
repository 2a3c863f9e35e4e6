// Package scalar provides the typed columnar primitives that back on-chain
// table commitments, and their lossless conversion into the prover's
// scalar field.
package scalar

import "fmt"

// Kind enumerates the closed set of supported column types.
type Kind int

const (
	KindBoolean Kind = iota
	KindU8
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindDecimal75
	KindVarChar
	KindVarBinary
	KindTimestampTZ
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "BOOLEAN"
	case KindU8:
		return "U8"
	case KindI8:
		return "I8"
	case KindI16:
		return "I16"
	case KindI32:
		return "I32"
	case KindI64:
		return "I64"
	case KindI128:
		return "I128"
	case KindDecimal75:
		return "DECIMAL75"
	case KindVarChar:
		return "VARCHAR"
	case KindVarBinary:
		return "VARBINARY"
	case KindTimestampTZ:
		return "TIMESTAMPTZ"
	default:
		return fmt.Sprintf("KIND(%d)", int(k))
	}
}

// TimeUnit is the resolution of a TimestampTZ column.
type TimeUnit int

const (
	Second TimeUnit = iota
	Millisecond
	Microsecond
	Nanosecond
)

func (u TimeUnit) String() string {
	switch u {
	case Second:
		return "s"
	case Millisecond:
		return "ms"
	case Microsecond:
		return "us"
	case Nanosecond:
		return "ns"
	default:
		return "?"
	}
}

// ColumnType fully describes one column's shape. The zero value is
// KindBoolean; use the constructor functions below to build other kinds so
// that Decimal75/TimestampTZ parameters are validated at construction time.
type ColumnType struct {
	kind Kind

	// Decimal75 only.
	decimalPrecision uint8 // 1..75
	decimalScale     int16 // -75..127

	// TimestampTZ only.
	timeUnit TimeUnit
	timeZone *string // nil means "unzoned", distinct from an explicit empty zone
}

func (t ColumnType) Kind() Kind { return t.kind }

// Precision returns the Decimal75 precision; only meaningful when
// Kind() == KindDecimal75.
func (t ColumnType) Precision() uint8 { return t.decimalPrecision }

// Scale returns the Decimal75 scale; only meaningful when
// Kind() == KindDecimal75.
func (t ColumnType) Scale() int16 { return t.decimalScale }

// Unit returns the TimestampTZ resolution; only meaningful when
// Kind() == KindTimestampTZ.
func (t ColumnType) Unit() TimeUnit { return t.timeUnit }

// Zone returns the TimestampTZ zone, or nil if the column is unzoned.
// Per spec decision (DESIGN.md Open Question 2): a present-but-empty zone
// is never collapsed into "unzoned", and "unzoned" is never coerced to UTC.
func (t ColumnType) Zone() *string { return t.timeZone }

func Boolean() ColumnType   { return ColumnType{kind: KindBoolean} }
func U8Type() ColumnType    { return ColumnType{kind: KindU8} }
func I8Type() ColumnType    { return ColumnType{kind: KindI8} }
func I16Type() ColumnType   { return ColumnType{kind: KindI16} }
func I32Type() ColumnType   { return ColumnType{kind: KindI32} }
func I64Type() ColumnType   { return ColumnType{kind: KindI64} }
func I128Type() ColumnType  { return ColumnType{kind: KindI128} }
func VarChar() ColumnType   { return ColumnType{kind: KindVarChar} }
func VarBinary() ColumnType { return ColumnType{kind: KindVarBinary} }

// Decimal75 constructs a DECIMAL75(precision, scale) column type.
// precision must be in [1,75] and scale in [-75,127], per spec §3.
func Decimal75(precision uint8, scale int16) (ColumnType, error) {
	if precision < 1 || precision > 75 {
		return ColumnType{}, fmt.Errorf("%w: precision %d not in [1,75]", ErrDecimalPrecision, precision)
	}
	if scale < -75 || scale > 127 {
		return ColumnType{}, fmt.Errorf("%w: scale %d not in [-75,127]", ErrDecimalScale, scale)
	}
	return ColumnType{kind: KindDecimal75, decimalPrecision: precision, decimalScale: scale}, nil
}

// TimestampTZ constructs a TIMESTAMPTZ(unit, tz) column type. A nil tz means
// the column is unzoned.
func TimestampTZ(unit TimeUnit, tz *string) (ColumnType, error) {
	switch unit {
	case Second, Millisecond, Microsecond, Nanosecond:
	default:
		return ColumnType{}, fmt.Errorf("%w: unit %d", ErrTimeUnit, int(unit))
	}
	return ColumnType{kind: KindTimestampTZ, timeUnit: unit, timeZone: tz}, nil
}

// Equal reports whether two column types are identical, including
// Decimal75/TimestampTZ parameters.
func (t ColumnType) Equal(o ColumnType) bool {
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case KindDecimal75:
		return t.decimalPrecision == o.decimalPrecision && t.decimalScale == o.decimalScale
	case KindTimestampTZ:
		if t.timeUnit != o.timeUnit {
			return false
		}
		if (t.timeZone == nil) != (o.timeZone == nil) {
			return false
		}
		return t.timeZone == nil || *t.timeZone == *o.timeZone
	default:
		return true
	}
}
