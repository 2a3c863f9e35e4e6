package submitter

import (
	"context"
	"fmt"
	"time"

	"github.com/sxt-network/sxt-node/pkg/attest/attestor"
)

// Submitter drives the classify-and-retry submit loop of spec §4.J over a
// single Provider. Submissions for the same account are serialized so the
// in-memory nonce cache stays consistent with the one outstanding call.
type Submitter struct {
	provider Provider
	metrics  Metrics
	sleep    func(time.Duration)

	mu    chan struct{} // 1-buffered; held for the whole attempt+retry loop
	nonce map[string]uint64
}

// New builds a Submitter over provider.
func New(provider Provider, metrics Metrics) *Submitter {
	mu := make(chan struct{}, 1)
	mu <- struct{}{}
	return &Submitter{
		provider: provider,
		metrics:  metrics,
		sleep:    time.Sleep,
		mu:       mu,
		nonce:    make(map[string]uint64),
	}
}

// SubmitAttestBlock adapts Submit to attestor.Submitter, encoding att as the
// attest_block call.
func (s *Submitter) SubmitAttestBlock(ctx context.Context, blockNumber uint64, att attestor.EthereumAttestation) error {
	tx := Tx{Method: "attest_block", Data: encodeAttestBlockCall(blockNumber, att)}
	_, err := s.Submit(ctx, attestorAccount, tx, nil)
	return err
}

// attestorAccount is the fixed account id every attest_block submission is
// sent and nonce-tracked under; one attestor key runs per process.
const attestorAccount = "attestor"

func encodeAttestBlockCall(blockNumber uint64, att attestor.EthereumAttestation) []byte {
	buf := make([]byte, 0, 8+32+32+1+20+32+32)
	buf = appendUint64(buf, blockNumber)
	buf = append(buf, att.R[:]...)
	buf = append(buf, att.S[:]...)
	buf = append(buf, att.V)
	buf = append(buf, att.Addr[:]...)
	buf = append(buf, att.StateRoot[:]...)
	buf = append(buf, att.BlockHash[:]...)
	return buf
}

func appendUint64(buf []byte, v uint64) []byte {
	for i := 7; i >= 0; i-- {
		buf = append(buf, byte(v>>(8*uint(i))))
	}
	return buf
}

// Submit sends tx for account, retrying per spec §4.J's classification
// rules up to MaxRetries times, and returns the terminal StatusReport.
func (s *Submitter) Submit(ctx context.Context, account string, tx Tx, mortality *Mortality) (StatusReport, error) {
	<-s.mu
	defer func() { s.mu <- struct{}{} }()

	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		report, err := s.attempt(ctx, account, tx, mortality)
		if s.metrics != nil {
			s.metrics.ObserveSubmit(tx.Method, err)
		}
		if err == nil {
			s.nonce[account]++
			return report, nil
		}
		lastErr = err
		if attempt == MaxRetries {
			break
		}

		action := classify(err.Error())
		if s.metrics != nil {
			s.metrics.ObserveRetry(tx.Method, retryActionName(action))
		}
		switch action {
		case retryRefreshNonce:
			delete(s.nonce, account)
		case retryReconnect:
			if rerr := s.provider.Reconnect(ctx); rerr != nil {
				return StatusReport{}, fmt.Errorf("submitter: reconnect failed: %w (after %v)", rerr, err)
			}
			delete(s.nonce, account)
		case retryBackoff:
			s.sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
		}
	}
	return StatusReport{}, fmt.Errorf("%w: %v", ErrBackoffExhausted, lastErr)
}

func retryActionName(a retryAction) string {
	switch a {
	case retryRefreshNonce:
		return "refresh_nonce"
	case retryReconnect:
		return "reconnect"
	default:
		return "backoff"
	}
}

func (s *Submitter) attempt(ctx context.Context, account string, tx Tx, mortality *Mortality) (StatusReport, error) {
	nonce, ok := s.nonce[account]
	if !ok {
		n, err := s.provider.NextNonce(ctx, account)
		if err != nil {
			return StatusReport{}, err
		}
		nonce = n
		s.nonce[account] = n
	}

	stream, err := s.provider.SendRawTx(ctx, account, nonce, tx, mortality)
	if err != nil {
		return StatusReport{}, err
	}
	return s.watch(ctx, stream)
}

// watch drains stream into a StatusReport, checking finalized blocks for
// an ExtrinsicSuccess event (spec §4.J "absence of either is failure"). A
// stream that ends before reaching InFinalizedBlock is a failure too.
func (s *Submitter) watch(ctx context.Context, stream StatusStream) (StatusReport, error) {
	var report StatusReport
	for {
		status, ok, err := stream.Next(ctx)
		if err != nil {
			return StatusReport{}, err
		}
		if !ok {
			return StatusReport{}, fmt.Errorf("submitter: status stream ended before finalization")
		}

		switch status.Kind {
		case StatusValidated:
			report.Validated = true
		case StatusBroadcasted:
			report.BroadcastedPeers = status.Peers
		case StatusInBestBlock:
			h := status.Hash
			report.InBestBlock = &h
		case StatusInFinalizedBlock:
			h := status.Hash
			report.FinalizedInBlock = &h
			events, err := s.provider.FinalizedEvents(ctx, status.Hash)
			if err != nil {
				return StatusReport{}, err
			}
			if !containsEvent(events, "ExtrinsicSuccess") {
				return StatusReport{}, ErrExtrinsicFailed
			}
			return report, nil
		case StatusNoLongerInBestBlock:
			// Note only; the chain may still finalize a later block for
			// this tx, so the stream keeps running.
		case StatusDropped:
			msg := status.Msg
			report.DroppedMessage = &msg
			return StatusReport{}, fmt.Errorf("submitter: dropped: %s", status.Msg)
		case StatusInvalid:
			msg := status.Msg
			report.InvalidMessage = &msg
			return StatusReport{}, fmt.Errorf("submitter: invalid: %s", status.Msg)
		case StatusError:
			msg := status.Msg
			report.ErrorMessage = &msg
			return StatusReport{}, fmt.Errorf("submitter: %s", status.Msg)
		}
	}
}

func containsEvent(events []string, name string) bool {
	for _, e := range events {
		if e == name {
			return true
		}
	}
	return false
}
