package rpcclient

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"github.com/sxt-network/sxt-node/pkg/bridge/submitter"
)

func TestWireEthAttestationRejectsWrongFieldLengths(t *testing.T) {
	w := wireEthAttestation{R: make(hexutil.Bytes, 31)}
	_, err := w.toAttestation()
	require.Error(t, err)
}

func TestWireEthAttestationRoundTrip(t *testing.T) {
	w := wireEthAttestation{
		R:         make(hexutil.Bytes, 32),
		S:         make(hexutil.Bytes, 32),
		V:         27,
		Addr:      make(hexutil.Bytes, 20),
		StateRoot: make(hexutil.Bytes, 32),
		BlockHash: make(hexutil.Bytes, 32),
	}
	att, err := w.toAttestation()
	require.NoError(t, err)
	require.Equal(t, uint8(27), att.V)
}

func TestWireStatusToTxStatusMapsEachVariant(t *testing.T) {
	cases := []struct {
		in   wireStatus
		kind submitter.StatusKind
	}{
		{wireStatus{Validated: true}, submitter.StatusValidated},
		{wireStatus{Broadcast: []string{"peer1", "peer2"}}, submitter.StatusBroadcasted},
		{wireStatus{InBlock: "0xabc"}, submitter.StatusInBestBlock},
		{wireStatus{Finalized: "0xdef"}, submitter.StatusInFinalizedBlock},
		{wireStatus{NoLongerInBestBlock: true}, submitter.StatusNoLongerInBestBlock},
		{wireStatus{Dropped: "pool full"}, submitter.StatusDropped},
		{wireStatus{Invalid: "bad signature"}, submitter.StatusInvalid},
		{wireStatus{Error: "boom"}, submitter.StatusError},
	}
	for _, c := range cases {
		got := c.in.toTxStatus()
		require.Equal(t, c.kind, got.Kind)
	}
	require.Equal(t, 2, wireStatus{Broadcast: []string{"a", "b"}}.toTxStatus().Peers)
}

func TestMortalityArgNilReturnsNil(t *testing.T) {
	require.Nil(t, mortalityArg(nil))
}

func TestMortalityArgPopulated(t *testing.T) {
	arg := mortalityArg(&submitter.Mortality{BlockHeader: []byte{1, 2}, LifespanBlocks: 64})
	require.NotNil(t, arg)
}
