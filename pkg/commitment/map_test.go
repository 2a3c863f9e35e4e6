package commitment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleCommitments() PerSchemeCommitments {
	return PerSchemeCommitments{
		SchemeHashAccumulator: TableCommitment{Scheme: SchemeHashAccumulator, Begin: 0, End: 1},
	}
}

func TestMapCreateHasGet(t *testing.T) {
	m := NewMap()
	key := Key{Namespace: "NS", Name: "T"}
	require.False(t, m.Has(key))

	require.NoError(t, m.Create(key, sampleCommitments()))
	require.True(t, m.Has(key))

	got, err := m.Get(key)
	require.NoError(t, err)
	require.Contains(t, got, SchemeHashAccumulator)
}

func TestMapCreateDuplicateFails(t *testing.T) {
	m := NewMap()
	key := Key{Namespace: "NS", Name: "T"}
	require.NoError(t, m.Create(key, sampleCommitments()))
	require.ErrorIs(t, m.Create(key, sampleCommitments()), ErrKeyExists)
}

func TestMapUpdateRequiresSameSchemes(t *testing.T) {
	m := NewMap()
	key := Key{Namespace: "NS", Name: "T"}
	require.NoError(t, m.Create(key, sampleCommitments()))

	mismatched := PerSchemeCommitments{
		SchemeDory: TableCommitment{Scheme: SchemeDory, Begin: 0, End: 1},
	}
	require.ErrorIs(t, m.Update(key, mismatched), ErrSchemesMismatch)

	updated := PerSchemeCommitments{
		SchemeHashAccumulator: TableCommitment{Scheme: SchemeHashAccumulator, Begin: 0, End: 2},
	}
	require.NoError(t, m.Update(key, updated))
	got, err := m.Get(key)
	require.NoError(t, err)
	require.Equal(t, uint64(2), got[SchemeHashAccumulator].End)
}

func TestMapDeleteIsIdempotent(t *testing.T) {
	m := NewMap()
	key := Key{Namespace: "NS", Name: "T"}
	require.NoError(t, m.Create(key, sampleCommitments()))
	m.Delete(key)
	require.False(t, m.Has(key))
	m.Delete(key)
	require.False(t, m.Has(key))
}

func TestMapGetMissingFails(t *testing.T) {
	m := NewMap()
	_, err := m.Get(Key{Namespace: "NS", Name: "MISSING"})
	require.ErrorIs(t, err, ErrKeyNotFound)
}
