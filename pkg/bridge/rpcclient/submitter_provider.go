package rpcclient

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/sxt-network/sxt-node/pkg/bridge/submitter"
)

// ChainID implements submitter.Provider via `chain_getChainId`.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var id hexutil.Uint64
	if err := c.call(ctx, &id, "chain_getChainId"); err != nil {
		return 0, fmt.Errorf("rpcclient: chain_getChainId: %w", err)
	}
	return uint64(id), nil
}

// NextNonce implements submitter.Provider via `system_accountNextIndex`.
func (c *Client) NextNonce(ctx context.Context, account string) (uint64, error) {
	var nonce hexutil.Uint64
	if err := c.call(ctx, &nonce, "system_accountNextIndex", account); err != nil {
		return 0, fmt.Errorf("rpcclient: system_accountNextIndex: %w", err)
	}
	return uint64(nonce), nil
}

// FinalizedEvents implements submitter.Provider via `sxt_getBlockEvents`,
// returning the event names recorded at blockHash (spec §4.J
// "ExtrinsicSuccess"/"ExtrinsicFailed" scan).
func (c *Client) FinalizedEvents(ctx context.Context, blockHash string) ([]string, error) {
	var events []string
	if err := c.call(ctx, &events, "sxt_getBlockEvents", blockHash); err != nil {
		return nil, fmt.Errorf("rpcclient: sxt_getBlockEvents: %w", err)
	}
	return events, nil
}

// wireStatus is the subscription notification payload for
// author_submitAndWatchExtrinsic, tagged-union style: exactly one of the
// fields below is set per notification.
type wireStatus struct {
	Validated           bool   `json:"validated,omitempty"`
	Broadcast           []string `json:"broadcast,omitempty"`
	InBlock             string `json:"inBlock,omitempty"`
	Finalized           string `json:"finalized,omitempty"`
	NoLongerInBestBlock bool   `json:"noLongerInBestBlock,omitempty"`
	Dropped             string `json:"dropped,omitempty"`
	Invalid             string `json:"invalid,omitempty"`
	Error               string `json:"error,omitempty"`
}

func (w wireStatus) toTxStatus() submitter.TxStatus {
	switch {
	case w.Validated:
		return submitter.TxStatus{Kind: submitter.StatusValidated}
	case w.Broadcast != nil:
		return submitter.TxStatus{Kind: submitter.StatusBroadcasted, Peers: len(w.Broadcast)}
	case w.InBlock != "":
		return submitter.TxStatus{Kind: submitter.StatusInBestBlock, Hash: w.InBlock}
	case w.Finalized != "":
		return submitter.TxStatus{Kind: submitter.StatusInFinalizedBlock, Hash: w.Finalized}
	case w.NoLongerInBestBlock:
		return submitter.TxStatus{Kind: submitter.StatusNoLongerInBestBlock}
	case w.Dropped != "":
		return submitter.TxStatus{Kind: submitter.StatusDropped, Msg: w.Dropped}
	case w.Invalid != "":
		return submitter.TxStatus{Kind: submitter.StatusInvalid, Msg: w.Invalid}
	default:
		return submitter.TxStatus{Kind: submitter.StatusError, Msg: w.Error}
	}
}

// subscriptionStream adapts an rpc.ClientSubscription into
// submitter.StatusStream.
type subscriptionStream struct {
	ch   chan wireStatus
	stop func()
	err  <-chan error
}

func (s *subscriptionStream) Next(ctx context.Context) (submitter.TxStatus, bool, error) {
	select {
	case <-ctx.Done():
		return submitter.TxStatus{}, false, ctx.Err()
	case err := <-s.err:
		return submitter.TxStatus{}, false, err
	case w, ok := <-s.ch:
		if !ok {
			return submitter.TxStatus{}, false, nil
		}
		status := w.toTxStatus()
		terminal := status.Kind == submitter.StatusInFinalizedBlock ||
			status.Kind == submitter.StatusDropped ||
			status.Kind == submitter.StatusInvalid ||
			status.Kind == submitter.StatusError
		if terminal {
			s.stop()
		}
		return status, true, nil
	}
}

// SendRawTx implements submitter.Provider by subscribing to
// `author_submitAndWatchExtrinsic`, the long-standing Substrate-family RPC
// name for a watched submission; the native chain's JSON-RPC surface
// mirrors this shape per spec §4.J's status-stream contract.
func (c *Client) SendRawTx(ctx context.Context, account string, nonce uint64, tx submitter.Tx, mortality *submitter.Mortality) (submitter.StatusStream, error) {
	ch := make(chan wireStatus, 16)
	sub, err := c.rpc.Subscribe(ctx, "author", ch, "submitAndWatchExtrinsic", account, nonce, tx.Method, hexutil.Bytes(tx.Data), mortalityArg(mortality))
	if err != nil {
		return nil, fmt.Errorf("rpcclient: author_submitAndWatchExtrinsic: %w", err)
	}
	return &subscriptionStream{ch: ch, stop: sub.Unsubscribe, err: sub.Err()}, nil
}

func mortalityArg(m *submitter.Mortality) interface{} {
	if m == nil {
		return nil
	}
	return struct {
		BlockHeader    hexutil.Bytes `json:"blockHeader"`
		LifespanBlocks uint64        `json:"lifespanBlocks"`
	}{hexutil.Bytes(m.BlockHeader), m.LifespanBlocks}
}
