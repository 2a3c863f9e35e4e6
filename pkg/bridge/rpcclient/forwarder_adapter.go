package rpcclient

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/sxt-network/sxt-node/pkg/attest/attestor"
	"github.com/sxt-network/sxt-node/pkg/bridge/forwarder"
)

type wireBlockAttested struct {
	BlockNumber uint64             `json:"blockNumber"`
	Attestation wireEthAttestation `json:"attestation"`
}

type wireEthAttestation struct {
	R         hexutil.Bytes `json:"r"`
	S         hexutil.Bytes `json:"s"`
	V         uint8         `json:"v"`
	PubKey    hexutil.Bytes `json:"pubKey"`
	Addr      hexutil.Bytes `json:"addr"`
	StateRoot hexutil.Bytes `json:"stateRoot"`
	BlockHash hexutil.Bytes `json:"blockHash"`
}

func (w wireEthAttestation) toAttestation() (attestor.EthereumAttestation, error) {
	var att attestor.EthereumAttestation
	if len(w.R) != 32 || len(w.S) != 32 || len(w.Addr) != 20 || len(w.StateRoot) != 32 || len(w.BlockHash) != 32 {
		return att, fmt.Errorf("rpcclient: malformed attestation field length")
	}
	copy(att.R[:], w.R)
	copy(att.S[:], w.S)
	att.V = w.V
	att.PubKey = append([]byte{}, w.PubKey...)
	copy(att.Addr[:], w.Addr)
	copy(att.StateRoot[:], w.StateRoot)
	copy(att.BlockHash[:], w.BlockHash)
	return att, nil
}

// BlockAttestedEvents implements forwarder.EventSource via
// `sxt_getBlockAttestedEvents`.
func (c *Client) BlockAttestedEvents(ctx context.Context, blockNumber uint64) ([]forwarder.BlockAttestedEvent, error) {
	var wire []wireBlockAttested
	if err := c.call(ctx, &wire, "sxt_getBlockAttestedEvents", blockNumber); err != nil {
		return nil, fmt.Errorf("rpcclient: sxt_getBlockAttestedEvents: %w", err)
	}
	out := make([]forwarder.BlockAttestedEvent, len(wire))
	for i, w := range wire {
		att, err := w.Attestation.toAttestation()
		if err != nil {
			return nil, err
		}
		out[i] = forwarder.BlockAttestedEvent{BlockNumber: w.BlockNumber, Attestation: att}
	}
	return out, nil
}

type wireUnbonding struct {
	StashID hexutil.Bytes `json:"stashId"`
	Amount  *hexutil.Big  `json:"amount"`
}

// Unbondings implements forwarder.ChainReader via `sxt_getUnbondings`.
func (c *Client) Unbondings(ctx context.Context, attestedBlock uint64) ([]forwarder.Unbonding, error) {
	var wire []wireUnbonding
	if err := c.call(ctx, &wire, "sxt_getUnbondings", attestedBlock); err != nil {
		return nil, fmt.Errorf("rpcclient: sxt_getUnbondings: %w", err)
	}
	out := make([]forwarder.Unbonding, len(wire))
	for i, w := range wire {
		if len(w.StashID) != 32 {
			return nil, fmt.Errorf("rpcclient: unbonding stash id must be 32 bytes, got %d", len(w.StashID))
		}
		var stash [32]byte
		copy(stash[:], w.StashID)
		amount := big.NewInt(0)
		if w.Amount != nil {
			amount = (*big.Int)(w.Amount)
		}
		out[i] = forwarder.Unbonding{StashID: stash, Amount: amount}
	}
	return out, nil
}

// Attestations implements forwarder.ChainReader via
// `sxt_getAttestationsForBlock`.
func (c *Client) Attestations(ctx context.Context, attestedBlock uint64) ([]attestor.EthereumAttestation, error) {
	var wire []wireEthAttestation
	if err := c.call(ctx, &wire, "sxt_getAttestationsForBlock", attestedBlock); err != nil {
		return nil, fmt.Errorf("rpcclient: sxt_getAttestationsForBlock: %w", err)
	}
	out := make([]attestor.EthereumAttestation, len(wire))
	for i, w := range wire {
		att, err := w.toAttestation()
		if err != nil {
			return nil, err
		}
		out[i] = att
	}
	return out, nil
}

// LockRecord implements forwarder.ChainReader via `sxt_getStakeLockRecord`.
func (c *Client) LockRecord(ctx context.Context, attestedBlock uint64, stashID [32]byte) ([]byte, []byte, error) {
	var pair foliatePair
	if err := c.call(ctx, &pair, "sxt_getStakeLockRecord", attestedBlock, hexutil.Bytes(stashID[:])); err != nil {
		return nil, nil, fmt.Errorf("rpcclient: sxt_getStakeLockRecord: %w", err)
	}
	return []byte(pair.Key), []byte(pair.Value), nil
}

// MarkBlockForwarded implements forwarder.NativeChain via
// `sxt_markBlockForwarded`.
func (c *Client) MarkBlockForwarded(ctx context.Context, blockNumber uint64) error {
	var ok bool
	if err := c.call(ctx, &ok, "sxt_markBlockForwarded", blockNumber); err != nil {
		return fmt.Errorf("rpcclient: sxt_markBlockForwarded: %w", err)
	}
	if !ok {
		return fmt.Errorf("rpcclient: sxt_markBlockForwarded rejected block %d", blockNumber)
	}
	return nil
}

// FinalizedBlocks subscribes to the native chain's finalized-head
// notifications via `chain_subscribeFinalizedHeads`, forwarding block
// numbers on the returned channel until ctx is cancelled.
func (c *Client) FinalizedBlocks(ctx context.Context) (<-chan uint64, error) {
	type header struct {
		Number hexutil.Uint64 `json:"number"`
	}
	raw := make(chan header, 16)
	sub, err := c.rpc.Subscribe(ctx, "chain", raw, "subscribeFinalizedHeads")
	if err != nil {
		return nil, fmt.Errorf("rpcclient: chain_subscribeFinalizedHeads: %w", err)
	}

	out := make(chan uint64, 16)
	go func() {
		defer close(out)
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-sub.Err():
				_ = err
				return
			case h, ok := <-raw:
				if !ok {
					return
				}
				select {
				case out <- uint64(h.Number):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
