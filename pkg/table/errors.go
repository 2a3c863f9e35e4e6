package table

import "errors"

// Sentinel errors, one per distinct kind named in spec §7's "Schema/DDL"
// and general table-model error groups.
var (
	ErrEmptyIdentifier     = errors.New("identifier must not be empty")
	ErrIdentifierTooLong   = errors.New("identifier too long")
	ErrNonASCIIIdentifier  = errors.New("identifier must be ASCII")
	ErrBadIdentifierCount  = errors.New("expected a two-segment qualified name")
	ErrTooFewColumns       = errors.New("table must have at least one column")
	ErrDuplicateIdentifier = errors.New("duplicate column identifier")
	ErrReservedPrefix      = errors.New("column identifier uses reserved META_ prefix")
	ErrMissingNotNull      = errors.New("column must be declared NOT NULL")
	ErrUnsupportedType     = errors.New("unsupported column type")
	ErrUnsupportedOption   = errors.New("unsupported column option")
	ErrColumnNotFound      = errors.New("column not found")
	ErrLengthMismatch      = errors.New("columns have differing row counts")
	ErrStatementTooLarge   = errors.New("CREATE TABLE statement exceeds size limit")
)

// ReservedMetaPrefix is the prefix reserved for injected metadata columns
// (currently only META_ROW_NUMBER). User-declared columns may not use it.
const ReservedMetaPrefix = "META_"
