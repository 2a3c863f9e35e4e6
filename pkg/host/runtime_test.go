package host

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string { return e.name }

func TestRuntimeHostTracksCallerAndEvents(t *testing.T) {
	h := NewRuntimeHost(42)
	require.Equal(t, uint64(42), h.BlockNumber())

	h.SetCaller(Caller{Kind: OriginSigned, Account: "alice"})
	require.False(t, h.Caller().IsRoot())
	require.Equal(t, "alice", h.Caller().Account)

	h.Emit(testEvent{name: "A"})
	h.Emit(testEvent{name: "B"})
	events := h.DrainEvents()
	require.Len(t, events, 2)
	require.Empty(t, h.DrainEvents())
}

func TestRuntimeHostHashIsDeterministic(t *testing.T) {
	h := NewRuntimeHost(1)
	a := h.Hash([]byte("x"))
	b := h.Hash([]byte("x"))
	require.Equal(t, a, b)
}
