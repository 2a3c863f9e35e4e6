// Package submitter implements the external-tx submitter of spec §4.J: a
// monotonic per-account nonce, mortality-windowed transactions, and a
// classify-and-retry submit loop driven by the chain's status stream.
//
// The submitter talks to the native chain through a small façade in place
// of the source's deeply nested generic provider stack: Submit(account, tx,
// mortality?) -> StatusReport, backed by a Provider capability set
// {ChainID, NextNonce, SendRawTx, FinalizedEvents, Reconnect}. The Provider
// has no gas-estimation call.
package submitter

import "errors"

var (
	// ErrExtrinsicFailed is returned when a transaction finalizes without
	// an ExtrinsicSuccess event (spec §4.J "absence of either is treated
	// as failure").
	ErrExtrinsicFailed = errors.New("submitter: extrinsic finalized without success event")
	// ErrBackoffExhausted is returned once all retries are spent (spec §9
	// open question: surface a distinct exhausted-backoff error rather
	// than looping forever).
	ErrBackoffExhausted = errors.New("submitter: retries exhausted")
)

// MaxRetries bounds retry attempts after the first submit (spec §4.J "up
// to 3 retries").
const MaxRetries = 3

// Tx is an opaque, already-encoded call plus the method name used only for
// logging/metrics labeling.
type Tx struct {
	Method string
	Data   []byte
}

// Mortality bounds how long a transaction remains valid: the block header
// it was built against, plus a lifespan in blocks.
type Mortality struct {
	BlockHeader    []byte
	LifespanBlocks uint64
}

// StatusKind enumerates the status-stream states of spec §4.J.
type StatusKind int

const (
	StatusValidated StatusKind = iota
	StatusBroadcasted
	StatusInBestBlock
	StatusInFinalizedBlock
	StatusNoLongerInBestBlock
	StatusDropped
	StatusInvalid
	StatusError
)

// TxStatus is one event off the submission's status stream.
type TxStatus struct {
	Kind  StatusKind
	Peers int
	Hash  string
	Msg   string
}

// StatusReport is the structured status spec §7 promises on request: per-tx
// {validated, broadcasted_peers, in_best_block, finalized_in_block,
// dropped_message?, invalid_message?, error_message?}.
type StatusReport struct {
	Validated        bool
	BroadcastedPeers int
	InBestBlock      *string
	FinalizedInBlock *string
	DroppedMessage   *string
	InvalidMessage   *string
	ErrorMessage     *string
}
