package commitment

import "errors"

// Errors raised by the commitment map (spec §4.B).
var (
	ErrKeyExists       = errors.New("commitment key already exists")
	ErrKeyNotFound     = errors.New("commitment key not found")
	ErrSchemesMismatch = errors.New("update scheme set does not match existing commitment scheme set")
)

// Errors raised by the commitment engine (spec §4.C).
var (
	ErrInappropriateSnapshotCommitment    = errors.New("snapshot commitment schema does not match table schema")
	ErrUnsupportedScheme                  = errors.New("no public setup material provided for requested scheme")
	ErrNoCommitments                      = errors.New("process_insert called with an empty commitment set")
	ErrTableCommitmentRangeMismatch       = errors.New("existing per-scheme commitments do not share the same end row")
	ErrTableCommitmentColumnOrderMismatch = errors.New("existing per-scheme commitments do not share the same column order")
	ErrColumnCommitmentsMismatch          = errors.New("insert references a column outside the commitment's declared schema")
)
