package systable

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sxt-network/sxt-node/pkg/host"
	"github.com/sxt-network/sxt-node/pkg/scalar"
	"github.com/sxt-network/sxt-node/pkg/table"
)

type fakeStaking struct {
	credited      map[string]*big.Int
	bonded        map[string]bool
	unbonded      map[string]bool
	rebonded      map[string]bool
	nominees      map[string][]string
	irrecoverable map[string]bool
}

func newFakeStaking() *fakeStaking {
	return &fakeStaking{
		credited:      map[string]*big.Int{},
		bonded:        map[string]bool{},
		unbonded:      map[string]bool{},
		rebonded:      map[string]bool{},
		nominees:      map[string][]string{},
		irrecoverable: map[string]bool{},
	}
}

func (f *fakeStaking) DeriveAccount(addr [20]byte) (string, error) {
	return "acct-" + string(addr[:4]), nil
}
func (f *fakeStaking) IsBonded(account string) bool { return f.bonded[account] }
func (f *fakeStaking) ForceCreditBalance(account string, amount *big.Int) error {
	cur, ok := f.credited[account]
	if !ok {
		cur = big.NewInt(0)
	}
	f.credited[account] = new(big.Int).Add(cur, amount)
	return nil
}
func (f *fakeStaking) Bond(account string, amount *big.Int) error {
	if f.irrecoverable[account] {
		return fmt.Errorf("bond rejected: %w", ErrBondIrrecoverable)
	}
	f.bonded[account] = true
	return nil
}
func (f *fakeStaking) BondExtra(account string, amount *big.Int) error { return nil }
func (f *fakeStaking) Unbond(account string) error {
	f.unbonded[account] = true
	return nil
}
func (f *fakeStaking) Rebond(account string) error {
	f.rebonded[account] = true
	return nil
}
func (f *fakeStaking) Nominate(account string, targets []string) error {
	f.nominees[account] = targets
	return nil
}

func stakedTable(t *testing.T, addr [20]byte, amount int64) *table.Table {
	t.Helper()
	tbl, err := table.New([]table.Entry{
		{Identifier: "STAKER", Column: scalar.Column{Type: scalar.VarBinary(), VarBinary: [][]byte{addr[:]}}},
		{Identifier: "AMOUNT", Column: scalar.Column{Type: scalar.I64Type(), I64: []int64{amount}}},
	})
	require.NoError(t, err)
	return tbl
}

func TestHandleStakedCreditsAndBondsThenBondsExtra(t *testing.T) {
	staking := newFakeStaking()
	h := host.NewRuntimeHost(1)
	r := NewRouter(staking, nil, nil, h)

	id := table.ID{Namespace: "SXT_SYSTEM_STAKING", Name: "STAKED"}
	var addr [20]byte
	addr[0] = 0x44

	require.NoError(t, r.Route(id, stakedTable(t, addr, 100)))
	account := "acct-" + string(addr[:4])
	require.Equal(t, big.NewInt(100), staking.credited[account])
	require.True(t, staking.bonded[account])

	require.NoError(t, r.Route(id, stakedTable(t, addr, 100)))
	require.Equal(t, big.NewInt(200), staking.credited[account])
}

func TestHandleStakedRowErrorEmitsEventNotError(t *testing.T) {
	staking := newFakeStaking()
	h := host.NewRuntimeHost(1)
	r := NewRouter(staking, nil, nil, h)

	tbl, err := table.New([]table.Entry{
		{Identifier: "AMOUNT", Column: scalar.Column{Type: scalar.I64Type(), I64: []int64{100}}},
	})
	require.NoError(t, err)

	id := table.ID{Namespace: "SXT_SYSTEM_STAKING", Name: "STAKED"}
	require.NoError(t, r.Route(id, tbl))

	events := h.DrainEvents()
	require.Len(t, events, 1)
	evt, ok := events[0].(MessageProcessingError)
	require.True(t, ok)
	require.Contains(t, evt.Error, "missing")
}

func TestHandleStakedIrrecoverableBondForceChillsValidator(t *testing.T) {
	staking := newFakeStaking()
	h := host.NewRuntimeHost(1)
	r := NewRouter(staking, nil, nil, h)

	var addr [20]byte
	addr[0] = 0x55
	account := "acct-" + string(addr[:4])
	staking.irrecoverable[account] = true

	id := table.ID{Namespace: "SXT_SYSTEM_STAKING", Name: "STAKED"}
	require.NoError(t, r.Route(id, stakedTable(t, addr, 100)))

	events := h.DrainEvents()
	require.Len(t, events, 2)
	chilled, ok := events[0].(ValidatorForceChilled)
	require.True(t, ok)
	require.Equal(t, account, chilled.Validator)
	_, ok = events[1].(MessageProcessingError)
	require.True(t, ok)
}

func TestHandleNominatedEmptyListEmitsEvent(t *testing.T) {
	staking := newFakeStaking()
	h := host.NewRuntimeHost(1)
	r := NewRouter(staking, nil, nil, h)

	var addr [20]byte
	tbl, err := table.New([]table.Entry{
		{Identifier: "STAKER", Column: scalar.Column{Type: scalar.VarBinary(), VarBinary: [][]byte{addr[:]}}},
		{Identifier: "NODES", Column: scalar.Column{Type: scalar.VarChar(), VarChar: []string{"[]"}}},
	})
	require.NoError(t, err)

	id := table.ID{Namespace: "SXT_SYSTEM_STAKING", Name: "NOMINATED"}
	require.NoError(t, r.Route(id, tbl))

	events := h.DrainEvents()
	require.Len(t, events, 1)
	_, ok := events[0].(EmptyNominationSet)
	require.True(t, ok)
}

func TestHandleMessageEnforcesMonotonicNonce(t *testing.T) {
	staking := newFakeStaking()
	h := host.NewRuntimeHost(1)
	r := NewRouter(staking, nil, nil, h)

	buildMsg := func(nonce int64) *table.Table {
		tbl, err := table.New([]table.Entry{
			{Identifier: "SENDER", Column: scalar.Column{Type: scalar.VarChar(), VarChar: []string{"alice"}}},
			{Identifier: "NONCE", Column: scalar.Column{Type: scalar.I64Type(), I64: []int64{nonce}}},
			{Identifier: "PAYLOAD", Column: scalar.Column{Type: scalar.VarBinary(), VarBinary: [][]byte{[]byte("hi")}}},
		})
		require.NoError(t, err)
		return tbl
	}

	id := table.ID{Namespace: "SXT_SYSTEM_STAKING", Name: "MESSAGE"}
	require.NoError(t, r.Route(id, buildMsg(1)))
	require.Len(t, h.DrainEvents(), 1) // MessageReceived

	require.NoError(t, r.Route(id, buildMsg(1))) // late nonce -> captured as event
	events := h.DrainEvents()
	require.Len(t, events, 1)
	_, ok := events[0].(MessageProcessingError)
	require.True(t, ok)

	require.NoError(t, r.Route(id, buildMsg(5))) // future nonce -> captured as event
	events = h.DrainEvents()
	require.Len(t, events, 1)
	_, ok = events[0].(MessageProcessingError)
	require.True(t, ok)

	require.NoError(t, r.Route(id, buildMsg(2)))
	events = h.DrainEvents()
	require.Len(t, events, 1)
	_, ok = events[0].(MessageReceived)
	require.True(t, ok)
}

func TestRouteRejectsUnknownTable(t *testing.T) {
	staking := newFakeStaking()
	h := host.NewRuntimeHost(1)
	r := NewRouter(staking, nil, nil, h)

	id := table.ID{Namespace: "SXT_SYSTEM_STAKING", Name: "BOGUS"}
	tbl, err := table.New([]table.Entry{
		{Identifier: "A", Column: scalar.Column{Type: scalar.I64Type(), I64: []int64{1}}},
	})
	require.NoError(t, err)
	err = r.Route(id, tbl)
	require.ErrorIs(t, err, ErrUnknownSystemTable)
}
