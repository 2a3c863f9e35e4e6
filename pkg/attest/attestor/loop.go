package attestor

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log"
	"sync"

	"github.com/sxt-network/sxt-node/pkg/attest/tree"
	"github.com/sxt-network/sxt-node/pkg/store"
)

// FoliateSource fetches the (key, value) pairs of one storage-prefix
// foliate at a given finalized block's state (commitments, staking
// locks, the staking-contract info singleton).
type FoliateSource interface {
	Foliate(ctx context.Context, blockNumber uint64, prefix []byte) ([]store.Foliate, error)
	BlockHash(ctx context.Context, blockNumber uint64) ([32]byte, error)
}

// Submitter is the narrow view of an external-tx submitter (pkg/bridge/submitter)
// the attestor needs: submission of an attest_block call, returning once the
// submission has succeeded or failed.
type Submitter interface {
	SubmitAttestBlock(ctx context.Context, blockNumber uint64, att EthereumAttestation) error
}

// Metrics is the narrow Prometheus surface the loop reports to.
type Metrics interface {
	ObserveAttestation(blockNumber uint64, err error)
}

// foliatePrefixes is the fixed, documented order foliates are concatenated
// in when building the tree (spec §4.G step 2): commitments, then staking
// locks, then the staking-contract info singleton.
var foliatePrefixes = [][]byte{store.PrefixCommitment, store.PrefixStakeLock, store.PrefixContract}

// Loop is the attestor's finalized-block subscription and per-block
// attestation pipeline.
type Loop struct {
	source      FoliateSource
	submitter   Submitter
	metrics     Metrics
	key         *ecdsa.PrivateKey
	concurrency int
	logger      *log.Logger
}

// New builds an attestor Loop. concurrency bounds how many finalized
// blocks are processed in parallel (spec §4.H "block_process_concurrency").
func New(source FoliateSource, submitter Submitter, metrics Metrics, key *ecdsa.PrivateKey, concurrency int, logger *log.Logger) *Loop {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Loop{source: source, submitter: submitter, metrics: metrics, key: key, concurrency: concurrency, logger: logger}
}

// Run processes finalized block numbers delivered on blocks until ctx is
// cancelled or blocks is closed. Up to l.concurrency blocks process in
// parallel; per-block work is independent (spec §4.H "Schedule").
func (l *Loop) Run(ctx context.Context, blocks <-chan uint64) error {
	sem := make(chan struct{}, l.concurrency)
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
				err := l.ProcessBlock(ctx, bn)
				if l.metrics != nil {
					l.metrics.ObserveAttestation(bn, err)
				}
				if err != nil && l.logger != nil {
					l.logger.Printf("[attestor] block %d: %v", bn, err)
				}
			}(blockNumber)
		}
	}
}

// ProcessBlock runs the per-block pipeline of spec §4.H steps 1-5: fetch
// foliates, build the tree, sign the state root, submit attest_block, and
// retry once on any submission failure before surfacing ErrAttestationCreation.
func (l *Loop) ProcessBlock(ctx context.Context, blockNumber uint64) error {
	att, err := l.buildAttestation(ctx, blockNumber)
	if err != nil {
		return err
	}

	submitErr := l.submitter.SubmitAttestBlock(ctx, blockNumber, att)
	if submitErr == nil {
		return nil
	}
	// Retry once with a fresh attestation (the submitter is responsible
	// for refreshing its own nonce before resubmitting).
	att, err = l.buildAttestation(ctx, blockNumber)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAttestationCreation, err)
	}
	if err := l.submitter.SubmitAttestBlock(ctx, blockNumber, att); err != nil {
		return fmt.Errorf("%w: %v", ErrAttestationCreation, err)
	}
	return nil
}

func (l *Loop) buildAttestation(ctx context.Context, blockNumber uint64) (EthereumAttestation, error) {
	var leaves []tree.Leaf
	for _, prefix := range foliatePrefixes {
		pairs, err := l.source.Foliate(ctx, blockNumber, prefix)
		if err != nil {
			return EthereumAttestation{}, err
		}
		for _, p := range tree.SortedLeaves(toTreeLeaves(pairs)) {
			leaves = append(leaves, p)
		}
	}

	t := tree.Build(leaves)
	root, err := t.Root()
	if err != nil {
		return EthereumAttestation{}, err
	}
	var stateRoot [32]byte
	copy(stateRoot[:], root)

	blockHash, err := l.source.BlockHash(ctx, blockNumber)
	if err != nil {
		return EthereumAttestation{}, err
	}

	return Sign(l.key, stateRoot, uint32(blockNumber), blockHash)
}

func toTreeLeaves(pairs []store.Foliate) []tree.Leaf {
	out := make([]tree.Leaf, len(pairs))
	for i, p := range pairs {
		out[i] = tree.Leaf{Key: p.Key, Value: p.Value}
	}
	return out
}
