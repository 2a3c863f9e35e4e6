package quorum

import (
	"testing"

	"github.com/stretchr/testify/require"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/sxt-network/sxt-node/pkg/commitment"
	"github.com/sxt-network/sxt-node/pkg/host"
	"github.com/sxt-network/sxt-node/pkg/registry"
	"github.com/sxt-network/sxt-node/pkg/scalar"
	"github.com/sxt-network/sxt-node/pkg/store"
	"github.com/sxt-network/sxt-node/pkg/table"
	"github.com/sxt-network/sxt-node/pkg/wire"
)

type allowAll struct{}

func (allowAll) HasPublicPermission(string) bool              { return true }
func (allowAll) HasPrivilegedPermission(string, table.ID) bool { return true }

type publicOnly struct{}

func (publicOnly) HasPublicPermission(string) bool              { return true }
func (publicOnly) HasPrivilegedPermission(string, table.ID) bool { return false }

type recordingRouter struct {
	routed []table.ID
	err    error
}

func (r *recordingRouter) Route(id table.ID, _ *table.Table) error {
	r.routed = append(r.routed, id)
	return r.err
}

func buildQuorum(t *testing.T, perms Permissions, router SystemRouter, tt registry.TableType) (*Quorum, *host.RuntimeHost, table.ID) {
	return buildQuorumNamed(t, perms, router, tt, tt.Kind.String()+"NS.T")
}

func buildQuorumNamed(t *testing.T, perms Permissions, router SystemRouter, tt registry.TableType, qualifiedName string) (*Quorum, *host.RuntimeHost, table.ID) {
	t.Helper()
	engine := commitment.NewEngine(commitment.PerSchemeSetups{
		commitment.SchemeHashAccumulator: commitment.PublicSetup{},
	})
	cmap := commitment.NewMap()
	reg := registry.New(engine, cmap)

	stmt, err := table.Parse("CREATE TABLE " + qualifiedName + " (A INT NOT NULL)")
	require.NoError(t, err)
	require.NoError(t, table.ValidateCreateTable(stmt))

	_, err = reg.CreateTables(1, []registry.CreateTablesEntry{{
		Statement: stmt,
		Mode:      registry.CreationMode{Empty: &registry.EmptyMode{Schemes: []commitment.Scheme{commitment.SchemeHashAccumulator}}},
		TableType: tt,
		Source:    "test",
	}})
	require.NoError(t, err)

	s := store.New(dbm.NewMemDB())
	h := host.NewRuntimeHost(1)
	q := New(s, reg, cmap, engine, perms, router, h)
	return q, h, stmt.Table
}

func buildRowData(t *testing.T, values []int32) []byte {
	t.Helper()
	tbl, err := table.New([]table.Entry{{Identifier: "A", Column: scalar.Column{Type: scalar.I32Type(), I32: values}}})
	require.NoError(t, err)
	data, err := wire.EncodeRowData(tbl)
	require.NoError(t, err)
	return data
}

func TestSubmitReachesPublicQuorumAndFinalizes(t *testing.T) {
	q := uint8(2)
	tt := registry.TableType{Kind: registry.TableTypeTesting, Testing: registry.QuorumPolicy{Public: &q}}
	quo, h, id := buildQuorum(t, allowAll{}, nil, tt)

	rowData := buildRowData(t, []int32{1, 2, 3})

	for i, account := range []string{"acc1", "acc2"} {
		results, err := quo.Submit("batch-1", id, rowData, nil, account)
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.Equal(t, i+1, results[0].Agreements)
		require.False(t, results[0].Finalized)
	}

	results, err := quo.Submit("batch-1", id, rowData, nil, "acc3")
	require.NoError(t, err)
	require.True(t, results[0].Finalized)

	finalized, err := isFinalized(quo.store, "batch-1")
	require.NoError(t, err)
	require.True(t, finalized)

	events := h.DrainEvents()
	var sawReached bool
	for _, e := range events {
		if _, ok := e.(QuorumReached); ok {
			sawReached = true
		}
	}
	require.True(t, sawReached)
}

func TestSubmitRejectsLateBatch(t *testing.T) {
	q := uint8(0)
	tt := registry.TableType{Kind: registry.TableTypeTesting, Testing: registry.QuorumPolicy{Public: &q}}
	quo, _, id := buildQuorum(t, allowAll{}, nil, tt)

	rowData := buildRowData(t, []int32{1})
	_, err := quo.Submit("batch-1", id, rowData, nil, "acc1")
	require.NoError(t, err)

	_, err = quo.Submit("batch-1", id, rowData, nil, "acc2")
	require.ErrorIs(t, err, ErrLateBatch)
}

func TestSubmitRejectsEmptyRowData(t *testing.T) {
	q := uint8(0)
	tt := registry.TableType{Kind: registry.TableTypeTesting, Testing: registry.QuorumPolicy{Public: &q}}
	quo, _, id := buildQuorum(t, allowAll{}, nil, tt)

	_, err := quo.Submit("batch-1", id, nil, nil, "acc1")
	require.ErrorIs(t, err, ErrNoData)
}

func TestSubmitRejectsUnauthorizedScope(t *testing.T) {
	q := uint8(0)
	tt := registry.TableType{Kind: registry.TableTypeTesting, Testing: registry.QuorumPolicy{Privileged: &q}}
	quo, _, id := buildQuorum(t, publicOnly{}, nil, tt)

	rowData := buildRowData(t, []int32{1})
	_, err := quo.Submit("batch-1", id, rowData, nil, "acc1")
	require.ErrorIs(t, err, ErrUnauthorizedSubmitter)
}

func TestSubmitRejectsUnregisteredTable(t *testing.T) {
	q := uint8(0)
	tt := registry.TableType{Kind: registry.TableTypeTesting, Testing: registry.QuorumPolicy{Public: &q}}
	quo, _, _ := buildQuorum(t, allowAll{}, nil, tt)

	missing, err := table.NewID("NS", "MISSING")
	require.NoError(t, err)
	_, err = quo.Submit("batch-1", missing, buildRowData(t, []int32{1}), nil, "acc1")
	require.ErrorIs(t, err, ErrInvalidTable)
}

func TestFinalizeRoutesStakingNamespaceTable(t *testing.T) {
	q := uint8(0)
	tt := registry.TableType{Kind: registry.TableTypeTesting, Testing: registry.QuorumPolicy{Public: &q}}
	router := &recordingRouter{}
	quo, h, id := buildQuorumNamed(t, allowAll{}, router, tt, StakingNamespace+".STAKED")

	rowData := buildRowData(t, []int32{1})
	_, err := quo.Submit("batch-1", id, rowData, nil, "acc1")
	require.NoError(t, err)

	require.Len(t, router.routed, 1)
	require.Equal(t, id, router.routed[0])

	var sawUpdate bool
	for _, e := range h.DrainEvents() {
		if _, ok := e.(SystemTableUpdate); ok {
			sawUpdate = true
		}
	}
	require.True(t, sawUpdate)
}
