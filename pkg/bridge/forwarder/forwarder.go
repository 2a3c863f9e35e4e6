package forwarder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sxt-network/sxt-node/pkg/attest/attestor"
	"github.com/sxt-network/sxt-node/pkg/attest/tree"
	"github.com/sxt-network/sxt-node/pkg/store"
)

// foliatePrefixes mirrors attestor.loop's fixed foliate-concatenation
// order (spec §4.G step 2), needed here to rebuild the same tree the
// attestors signed over.
var foliatePrefixes = [][]byte{store.PrefixCommitment, store.PrefixStakeLock, store.PrefixContract}

// Forwarder is the finalized-block subscription and per-block forwarding
// pipeline of spec §4.I.
type Forwarder struct {
	events      EventSource
	reader      ChainReader
	native      NativeChain
	external    ExternalChain
	metrics     Metrics
	concurrency int
	logger      *log.Logger
	sleep       func(time.Duration)
}

// New builds a Forwarder. concurrency bounds how many finalized blocks are
// processed in parallel.
func New(events EventSource, reader ChainReader, native NativeChain, external ExternalChain, metrics Metrics, concurrency int, logger *log.Logger) *Forwarder {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Forwarder{
		events: events, reader: reader, native: native, external: external,
		metrics: metrics, concurrency: concurrency, logger: logger, sleep: time.Sleep,
	}
}

// Run processes finalized block numbers delivered on blocks until ctx is
// cancelled or blocks is closed.
func (f *Forwarder) Run(ctx context.Context, blocks <-chan uint64) error {
	sem := make(chan struct{}, f.concurrency)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case blockNumber, ok := <-blocks:
			if !ok {
				wg.Wait()
				return nil
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(bn uint64) {
				defer wg.Done()
				defer func() { <-sem }()
				err := f.ProcessBlock(ctx, bn)
				if f.metrics != nil {
					f.metrics.ObserveForward(bn, err)
				}
				if err != nil && f.logger != nil {
					f.logger.Printf("[forwarder] block %d: %v", bn, err)
				}
			}(blockNumber)
		}
	}
}

// ProcessBlock runs spec §4.I's per-block pipeline. Unbonding-forwarding
// failures are logged, not returned: only a watermark-advance failure is
// surfaced, matching the "error policy" in spec §4.I.
func (f *Forwarder) ProcessBlock(ctx context.Context, blockNumber uint64) error {
	attested, err := f.events.BlockAttestedEvents(ctx, blockNumber)
	if err != nil {
		return fmt.Errorf("forwarder: collect BlockAttested events: %w", err)
	}

	for _, evt := range attested {
		if err := f.forwardAttestedBlock(ctx, evt); err != nil && f.logger != nil {
			f.logger.Printf("[forwarder] attested block %d: %v", evt.BlockNumber, err)
		}
	}

	return f.markForwardedWithRetry(ctx, blockNumber)
}

func (f *Forwarder) forwardAttestedBlock(ctx context.Context, evt BlockAttestedEvent) error {
	unbondings, err := f.reader.Unbondings(ctx, evt.BlockNumber)
	if err != nil {
		return fmt.Errorf("fetch unbondings: %w", err)
	}
	if len(unbondings) == 0 {
		return nil
	}

	t, err := f.buildTree(ctx, evt.BlockNumber)
	if err != nil {
		return fmt.Errorf("rebuild tree: %w", err)
	}

	attestations, err := f.reader.Attestations(ctx, evt.BlockNumber)
	if err != nil {
		return fmt.Errorf("fetch attestations: %w", err)
	}
	r, s, v := packSignatures(attestations)

	var firstErr error
	for _, u := range unbondings {
		if !u.IsZeroPrefixed() {
			continue
		}
		if err := f.forwardUnbonding(ctx, evt.BlockNumber, t, u, r, s, v); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *Forwarder) buildTree(ctx context.Context, attestedBlock uint64) (*tree.Tree, error) {
	var leaves []tree.Leaf
	for _, prefix := range foliatePrefixes {
		pairs, err := f.reader.Foliate(ctx, attestedBlock, prefix)
		if err != nil {
			return nil, err
		}
		for _, p := range tree.SortedLeaves(toTreeLeaves(pairs)) {
			leaves = append(leaves, p)
		}
	}
	return tree.Build(leaves), nil
}

func toTreeLeaves(pairs []store.Foliate) []tree.Leaf {
	out := make([]tree.Leaf, len(pairs))
	for i, p := range pairs {
		out[i] = tree.Leaf{Key: p.Key, Value: p.Value}
	}
	return out
}

func (f *Forwarder) forwardUnbonding(ctx context.Context, attestedBlock uint64, t *tree.Tree, u Unbonding, r, s [][32]byte, v []uint8) error {
	key, value, err := f.reader.LockRecord(ctx, attestedBlock, u.StashID)
	if err != nil {
		return fmt.Errorf("lock record for stash %x: %w", u.StashID, err)
	}
	hexProof, err := t.ProveLeafPair(key, value)
	if err != nil {
		return fmt.Errorf("prove leaf pair for stash %x: %w", u.StashID, err)
	}
	// ProveLeafPair's leaf-to-root sibling order is passed through
	// unreversed: original_source/event-forwarder's convert_proof performs
	// the same hex->bytes conversion with no reordering before calling
	// sxtFulfillUnstake (spec §4.G/§6).
	proof, err := tree.ValidateProof(hexProof)
	if err != nil {
		return fmt.Errorf("validate proof for stash %x: %w", u.StashID, err)
	}

	return f.external.SxtFulfillUnstake(ctx, u.EVMAddress(), u.Amount, attestedBlock, proof, r, s, v)
}

// packSignatures builds the per-attestor (r, s, v) arrays for the external
// call, remapping v from the 0/1 recovery id to EVM's 27/28 (spec §4.I
// step 4).
func packSignatures(attestations []attestor.EthereumAttestation) (r, s [][32]byte, v []uint8) {
	r = make([][32]byte, len(attestations))
	s = make([][32]byte, len(attestations))
	v = make([]uint8, len(attestations))
	for i, a := range attestations {
		r[i] = a.R
		s[i] = a.S
		v[i] = a.V + 27
	}
	return r, s, v
}

// markForwardedWithRetry calls MarkBlockForwarded up to 3 times in all, with
// exponential backoff (spec §4.I "Error policy"): the watermark advance is
// the only step in this pipeline that must succeed.
func (f *Forwarder) markForwardedWithRetry(ctx context.Context, blockNumber uint64) error {
	const maxAttempts = 3
	backoff := 200 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = f.native.MarkBlockForwarded(ctx, blockNumber)
		if f.metrics != nil {
			f.metrics.ObserveWatermark(blockNumber, err)
		}
		if err == nil {
			return nil
		}
		if attempt == maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		f.sleep(backoff)
		backoff *= 2
	}
	return fmt.Errorf("mark_block_forwarded(%d) failed after %d attempts: %w", blockNumber, maxAttempts, err)
}
