package wire

import "errors"

// Sub-kinds of the quorum "deserialization" error family (spec §7
// "Quorum" group: "deserialization (with sub-kinds for IPC shape
// failures)").
var (
	ErrNativeDeserialization            = errors.New("native deserialization error")
	ErrNativeRecordBatchUnsupportedType = errors.New("record batch contains an unsupported or nullable column type")
	ErrTruncated                        = errors.New("wire payload truncated")
	ErrIdentifierTooLong                = errors.New("column identifier exceeds wire limit")
)
