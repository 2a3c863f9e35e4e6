package submitter

import "context"

// Provider is the chain-client façade the submitter drives: a minimal
// capability set rather than a full node client, matching spec §9's
// "small façade interface" decision.
type Provider interface {
	ChainID(ctx context.Context) (uint64, error)
	NextNonce(ctx context.Context, account string) (uint64, error)
	SendRawTx(ctx context.Context, account string, nonce uint64, tx Tx, mortality *Mortality) (StatusStream, error)
	// FinalizedEvents returns the event names recorded for blockHash, used
	// to distinguish ExtrinsicSuccess from ExtrinsicFailed once a tx
	// reaches InFinalizedBlock.
	FinalizedEvents(ctx context.Context, blockHash string) ([]string, error)
	// Reconnect re-establishes the underlying connection after a
	// connection-closed error (spec §4.J retry classification).
	Reconnect(ctx context.Context) error
}

// StatusStream yields the submission's status events in order. Next
// returns ok=false once the stream is exhausted with no error.
type StatusStream interface {
	Next(ctx context.Context) (status TxStatus, ok bool, err error)
}
