package registry

import "errors"

var (
	ErrTableAlreadyExists  = errors.New("table already registered")
	ErrTableNotFound       = errors.New("table not found")
	ErrEmptyColumnUUIDName = errors.New("column uuid update references an unknown column")

	// ErrInvalidSnapshotURL marks a FromSnapshot creation mode whose URL is
	// not a well-formed https:// URL, mirroring the original runtime's
	// rejection of malformed snapshot URLs at the extrinsic boundary.
	ErrInvalidSnapshotURL = errors.New("snapshot url must be a valid https:// url")
)
