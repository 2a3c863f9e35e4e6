package rpcclient

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/sxt-network/sxt-node/pkg/store"
)

// foliatePair mirrors store.Foliate over the wire; binary fields cross
// JSON-RPC as hex per go-ethereum's hexutil convention.
type foliatePair struct {
	Key   hexutil.Bytes `json:"key"`
	Value hexutil.Bytes `json:"value"`
}

// Foliate implements attestor.FoliateSource and forwarder.ChainReader by
// calling the native chain's `sxt_getFoliate` RPC method.
func (c *Client) Foliate(ctx context.Context, blockNumber uint64, prefix []byte) ([]store.Foliate, error) {
	var pairs []foliatePair
	if err := c.call(ctx, &pairs, "sxt_getFoliate", blockNumber, hexutil.Bytes(prefix)); err != nil {
		return nil, fmt.Errorf("rpcclient: sxt_getFoliate: %w", err)
	}
	out := make([]store.Foliate, len(pairs))
	for i, p := range pairs {
		out[i] = store.Foliate{Key: []byte(p.Key), Value: []byte(p.Value)}
	}
	return out, nil
}

// BlockHash implements attestor.FoliateSource via `chain_getBlockHash`.
func (c *Client) BlockHash(ctx context.Context, blockNumber uint64) ([32]byte, error) {
	var hash hexutil.Bytes
	var out [32]byte
	if err := c.call(ctx, &hash, "chain_getBlockHash", blockNumber); err != nil {
		return out, fmt.Errorf("rpcclient: chain_getBlockHash: %w", err)
	}
	if len(hash) != 32 {
		return out, fmt.Errorf("rpcclient: chain_getBlockHash: expected 32 bytes, got %d", len(hash))
	}
	copy(out[:], hash)
	return out, nil
}
