package store

import (
	"testing"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(dbm.NewMemDB())
}

func TestSetGetDelete(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Set(PrefixRegistry, []byte("NS.T"), []byte("entry-1")))

	v, err := s.Get(PrefixRegistry, []byte("NS.T"))
	require.NoError(t, err)
	require.Equal(t, []byte("entry-1"), v)

	ok, err := s.Has(PrefixRegistry, []byte("NS.T"))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Delete(PrefixRegistry, []byte("NS.T")))
	v, err = s.Get(PrefixRegistry, []byte("NS.T"))
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestScanPrefixOrdersByKeyAndStripsPrefix(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Set(PrefixCommitment, []byte("B"), []byte("2")))
	require.NoError(t, s.Set(PrefixCommitment, []byte("A"), []byte("1")))
	require.NoError(t, s.Set(PrefixCommitment, []byte("C"), []byte("3")))
	// A key under a different prefix must not leak into the scan.
	require.NoError(t, s.Set(PrefixRegistry, []byte("A"), []byte("other")))

	foliates, err := s.ScanPrefix(PrefixCommitment)
	require.NoError(t, err)
	require.Len(t, foliates, 3)
	require.Equal(t, []byte("A"), foliates[0].Key)
	require.Equal(t, []byte("B"), foliates[1].Key)
	require.Equal(t, []byte("C"), foliates[2].Key)
}
