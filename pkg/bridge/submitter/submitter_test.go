package submitter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	statuses []TxStatus
	pos      int
	err      error
}

func (f *fakeStream) Next(ctx context.Context) (TxStatus, bool, error) {
	if f.pos >= len(f.statuses) {
		return TxStatus{}, false, f.err
	}
	s := f.statuses[f.pos]
	f.pos++
	return s, true, nil
}

type fakeProvider struct {
	nonces       map[string]uint64
	sendErr      error
	sendErrCount int
	streams      []*fakeStream
	streamIdx    int
	events       map[string][]string
	reconnects   int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{nonces: map[string]uint64{}, events: map[string][]string{}}
}

func (f *fakeProvider) ChainID(ctx context.Context) (uint64, error) { return 1, nil }

func (f *fakeProvider) NextNonce(ctx context.Context, account string) (uint64, error) {
	return f.nonces[account], nil
}

func (f *fakeProvider) SendRawTx(ctx context.Context, account string, nonce uint64, tx Tx, m *Mortality) (StatusStream, error) {
	if f.sendErrCount > 0 {
		f.sendErrCount--
		return nil, f.sendErr
	}
	if f.streamIdx >= len(f.streams) {
		return &fakeStream{}, nil
	}
	s := f.streams[f.streamIdx]
	f.streamIdx++
	return s, nil
}

func (f *fakeProvider) FinalizedEvents(ctx context.Context, blockHash string) ([]string, error) {
	return f.events[blockHash], nil
}

func (f *fakeProvider) Reconnect(ctx context.Context) error {
	f.reconnects++
	return nil
}

func noSleep(time.Duration) {}

func TestSubmitSucceedsOnFinalizedSuccessEvent(t *testing.T) {
	p := newFakeProvider()
	p.events["0xblock"] = []string{"ExtrinsicSuccess"}
	p.streams = []*fakeStream{{statuses: []TxStatus{
		{Kind: StatusValidated},
		{Kind: StatusBroadcasted, Peers: 3},
		{Kind: StatusInBestBlock, Hash: "0xbest"},
		{Kind: StatusInFinalizedBlock, Hash: "0xblock"},
	}}}

	s := New(p, nil)
	s.sleep = noSleep

	report, err := s.Submit(context.Background(), "alice", Tx{Method: "bond"}, nil)
	require.NoError(t, err)
	require.True(t, report.Validated)
	require.Equal(t, 3, report.BroadcastedPeers)
	require.Equal(t, "0xblock", *report.FinalizedInBlock)
	require.Equal(t, uint64(1), s.nonce["alice"])
}

func TestSubmitFailsWhenExtrinsicFailedEvent(t *testing.T) {
	p := newFakeProvider()
	p.events["0xblock"] = []string{"ExtrinsicFailed"}
	stream := &fakeStream{statuses: []TxStatus{{Kind: StatusInFinalizedBlock, Hash: "0xblock"}}}
	p.streams = []*fakeStream{stream, stream, stream, stream}

	s := New(p, nil)
	s.sleep = noSleep

	_, err := s.Submit(context.Background(), "alice", Tx{Method: "bond"}, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrBackoffExhausted)
}

func TestSubmitRefreshesNonceOnStaleNonceError(t *testing.T) {
	p := newFakeProvider()
	p.nonces["alice"] = 5
	p.sendErr = errors.New("invalid transaction nonce")
	p.sendErrCount = 1
	p.events["0xblock"] = []string{"ExtrinsicSuccess"}
	p.streams = []*fakeStream{{statuses: []TxStatus{{Kind: StatusInFinalizedBlock, Hash: "0xblock"}}}}

	s := New(p, nil)
	s.sleep = noSleep
	s.nonce["alice"] = 0 // stale cached nonce

	report, err := s.Submit(context.Background(), "alice", Tx{Method: "bond"}, nil)
	require.NoError(t, err)
	require.Equal(t, "0xblock", *report.FinalizedInBlock)
}

func TestSubmitReconnectsOnConnectionClosedError(t *testing.T) {
	p := newFakeProvider()
	p.sendErr = errors.New("use of closed network connection")
	p.sendErrCount = 1
	p.events["0xblock"] = []string{"ExtrinsicSuccess"}
	p.streams = []*fakeStream{{statuses: []TxStatus{{Kind: StatusInFinalizedBlock, Hash: "0xblock"}}}}

	s := New(p, nil)
	s.sleep = noSleep

	_, err := s.Submit(context.Background(), "alice", Tx{Method: "bond"}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, p.reconnects)
}

func TestSubmitDroppedStatusReturnsError(t *testing.T) {
	p := newFakeProvider()
	stream := &fakeStream{statuses: []TxStatus{{Kind: StatusDropped, Msg: "pool full"}}}
	p.streams = []*fakeStream{stream, stream, stream, stream}

	s := New(p, nil)
	s.sleep = noSleep

	_, err := s.Submit(context.Background(), "alice", Tx{Method: "bond"}, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrBackoffExhausted)
}
