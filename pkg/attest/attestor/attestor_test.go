package attestor

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/sxt-network/sxt-node/pkg/store"
)

var errTransient = errors.New("transient submit failure")

func TestSignAndVerifySignatureRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	var root [32]byte
	copy(root[:], crypto.Keccak256([]byte("state")))
	var blockHash [32]byte
	copy(blockHash[:], crypto.Keccak256([]byte("hash")))

	att, err := Sign(key, root, 7, blockHash)
	require.NoError(t, err)

	ok, err := VerifySignature(att, 7)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifySignature(att, 8)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyBlockAgreesOnStateRoot(t *testing.T) {
	key1, _ := crypto.GenerateKey()
	key2, _ := crypto.GenerateKey()
	var root [32]byte
	copy(root[:], crypto.Keccak256([]byte("state")))
	var blockHash [32]byte

	att1, err := Sign(key1, root, 3, blockHash)
	require.NoError(t, err)
	att2, err := Sign(key2, root, 3, blockHash)
	require.NoError(t, err)

	got, err := VerifyBlock(3, []EthereumAttestation{att1, att2})
	require.NoError(t, err)
	require.Equal(t, root, got)
}

func TestVerifyBlockDetectsMismatch(t *testing.T) {
	key1, _ := crypto.GenerateKey()
	key2, _ := crypto.GenerateKey()
	var rootA, rootB [32]byte
	copy(rootA[:], crypto.Keccak256([]byte("a")))
	copy(rootB[:], crypto.Keccak256([]byte("b")))
	var blockHash [32]byte

	att1, _ := Sign(key1, rootA, 3, blockHash)
	att2, _ := Sign(key2, rootB, 3, blockHash)

	_, err := VerifyBlock(3, []EthereumAttestation{att1, att2})
	require.ErrorIs(t, err, ErrStateRootMismatch)
}

type fakeSource struct {
	pairs     map[string][]store.Foliate
	blockHash [32]byte
}

func (f *fakeSource) Foliate(_ context.Context, _ uint64, prefix []byte) ([]store.Foliate, error) {
	return f.pairs[string(prefix)], nil
}

func (f *fakeSource) BlockHash(_ context.Context, _ uint64) ([32]byte, error) {
	return f.blockHash, nil
}

type flakySubmitter struct{ calls int }

func (f *flakySubmitter) SubmitAttestBlock(_ context.Context, _ uint64, _ EthereumAttestation) error {
	f.calls++
	if f.calls == 1 {
		return errTransient
	}
	return nil
}

type alwaysFailSubmitter struct{}

func (a *alwaysFailSubmitter) SubmitAttestBlock(_ context.Context, _ uint64, _ EthereumAttestation) error {
	return errTransient
}

func TestProcessBlockRetriesOnceThenSucceeds(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	source := &fakeSource{pairs: map[string][]store.Foliate{
		string(store.PrefixCommitment): {{Key: []byte("A"), Value: []byte("1")}},
	}}
	sub := &flakySubmitter{}
	loop := New(source, sub, nil, key, 2, nil)

	err = loop.ProcessBlock(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 2, sub.calls)
}

func TestProcessBlockSurfacesCreationErrorAfterTwoFailures(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	source := &fakeSource{pairs: map[string][]store.Foliate{
		string(store.PrefixCommitment): {{Key: []byte("A"), Value: []byte("1")}},
	}}
	sub := &alwaysFailSubmitter{}
	loop := New(source, sub, nil, key, 1, nil)

	err = loop.ProcessBlock(context.Background(), 1)
	require.ErrorIs(t, err, ErrAttestationCreation)
}
