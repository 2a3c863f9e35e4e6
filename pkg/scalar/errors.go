package scalar

import "errors"

// Sentinel errors for column type construction and conversion. Each maps to
// a distinct error kind per spec §7 ("Schema/DDL" and "Commitment" groups).
var (
	ErrDecimalPrecision  = errors.New("decimal precision out of range")
	ErrDecimalScale      = errors.New("decimal scale out of range")
	ErrTimeUnit          = errors.New("unsupported timestamp unit")
	ErrTypeMismatch      = errors.New("value does not match column type")
	ErrOutOfScalarBounds = errors.New("value out of scalar bounds")
	ErrLengthMismatch    = errors.New("column lengths differ")
)
