package quorum

import (
	"fmt"

	"github.com/sxt-network/sxt-node/pkg/commitment"
	"github.com/sxt-network/sxt-node/pkg/host"
	"github.com/sxt-network/sxt-node/pkg/registry"
	"github.com/sxt-network/sxt-node/pkg/store"
	"github.com/sxt-network/sxt-node/pkg/table"
	"github.com/sxt-network/sxt-node/pkg/wire"
)

// Quorum drives spec §4.E: per-scope submission voting and finalization of
// table-row batches, routing staking-namespace finalizations through a
// SystemRouter.
type Quorum struct {
	store       *store.Store
	registry    *registry.Registry
	cmap        *commitment.Map
	engine      *commitment.Engine
	permissions Permissions
	router      SystemRouter
	host        host.Host
}

// New builds a Quorum bound to the given registry, commitment map/engine,
// permission oracle, system-table router, and host runtime.
func New(s *store.Store, reg *registry.Registry, cmap *commitment.Map, engine *commitment.Engine, perms Permissions, router SystemRouter, h host.Host) *Quorum {
	return &Quorum{store: s, registry: reg, cmap: cmap, engine: engine, permissions: perms, router: router, host: h}
}

// VoteResult describes the outcome of one enabled-and-authorized scope's
// voting round within a single Submit call.
type VoteResult struct {
	Scope      Scope
	Agreements int
	Finalized  bool
}

// Submit validates and casts a submission's vote in every scope the caller
// is authorized for and which the table's quorum policy enables (spec
// §4.E). A batch already terminal returns LateBatch before any scope is
// considered.
func (q *Quorum) Submit(batchID string, id table.ID, rowData []byte, blockNumber *uint64, account string) ([]VoteResult, error) {
	if batchID == "" {
		return nil, ErrInvalidBatch
	}
	if id.Namespace == "" || id.Name == "" {
		return nil, ErrInvalidTable
	}
	if len(rowData) == 0 {
		return nil, ErrNoData
	}
	entry, ok := q.registry.Get(id)
	if !ok {
		return nil, ErrInvalidTable
	}
	finalized, err := isFinalized(q.store, batchID)
	if err != nil {
		return nil, err
	}
	if finalized {
		return nil, ErrLateBatch
	}

	hash := q.hashSubmission(rowData, blockNumber)

	type scopeAttempt struct {
		scope     Scope
		threshold *uint8
	}
	attempts := []scopeAttempt{
		{ScopePublic, entry.QuorumPolicy.Public},
		{ScopePrivileged, entry.QuorumPolicy.Privileged},
	}

	var results []VoteResult
	authorized := false
	for _, a := range attempts {
		if a.threshold == nil {
			continue
		}
		if !q.authorizedFor(a.scope, account, id) {
			continue
		}
		authorized = true

		votes, err := recordSubmission(q.store, batchID, a.scope, account, hash)
		if err != nil {
			return nil, err
		}
		agreements := 0
		for _, v := range votes {
			if v == hash {
				agreements++
			}
		}
		q.host.Emit(DataSubmitted{BatchID: batchID, Table: id, Scope: a.scope, Account: account, Agreements: agreements})

		result := VoteResult{Scope: a.scope, Agreements: agreements}
		if agreements > int(*a.threshold) {
			dissents := len(votes) - agreements
			quorum := DataQuorum{
				BatchID:     batchID,
				Table:       id,
				DataHash:    hash,
				Scope:       a.scope,
				BlockNumber: blockNumber,
				Agreements:  agreements,
				Dissents:    dissents,
			}
			if err := q.finalize(quorum, rowData); err != nil {
				return nil, err
			}
			result.Finalized = true
		}
		results = append(results, result)
		if result.Finalized {
			// public precedes privileged when both cross threshold in the
			// same call (spec §4.E); stop after the first finalization.
			break
		}
	}
	if !authorized {
		return nil, ErrUnauthorizedSubmitter
	}
	return results, nil
}

func (q *Quorum) hashSubmission(rowData []byte, blockNumber *uint64) [32]byte {
	data := append([]byte{}, rowData...)
	if blockNumber != nil {
		data = append(data, []byte(fmt.Sprintf("%d", *blockNumber))...)
	}
	var out [32]byte
	copy(out[:], q.host.Hash(data))
	return out
}

func (q *Quorum) authorizedFor(scope Scope, account string, id table.ID) bool {
	switch scope {
	case ScopePublic:
		return q.permissions.HasPublicPermission(account)
	case ScopePrivileged:
		return q.permissions.HasPrivilegedPermission(account, id)
	default:
		return false
	}
}

// finalize is spec §4.E's finalization algorithm, run at most once per
// batch (the caller has already checked isFinalized before voting began,
// and a batch can cross exactly one scope's threshold per Submit call).
func (q *Quorum) finalize(quorum DataQuorum, rowData []byte) error {
	if err := clearBatchSubmissions(q.store, quorum.BatchID); err != nil {
		return err
	}
	if err := persistFinal(q.store, quorum); err != nil {
		return err
	}

	insertTable, err := wire.DecodeRowData(rowData)
	if err != nil {
		return fmt.Errorf("quorum: deserialize row data: %w", err)
	}

	key := commitment.Key{Namespace: quorum.Table.Namespace, Name: quorum.Table.Name}
	existing, err := q.cmap.Get(key)
	if err != nil {
		return err
	}
	updated, augmented, err := q.engine.ProcessInsert(existing, insertTable)
	if err != nil {
		return err
	}
	if err := q.cmap.Update(key, updated); err != nil {
		return err
	}

	blockNumber := quorum.BlockNumber
	if blockNumber == nil {
		if col, ok := insertTable.Get("BLOCK_NUMBER"); ok && len(col.I64) > 0 {
			bn := uint64(col.I64[len(col.I64)-1])
			blockNumber = &bn
		}
	}
	if blockNumber != nil {
		if err := persistHighestBlockNumber(q.store, quorum.Table, *blockNumber); err != nil {
			return err
		}
	}

	if augmented.Len() == 0 {
		q.host.Emit(QuorumEmptyBlock{Table: quorum.Table, BlockNumber: blockNumber, Agreements: quorum.Agreements, Dissents: quorum.Dissents})
	} else {
		q.host.Emit(QuorumReached{Quorum: quorum, Rows: augmented.Len()})
	}

	if quorum.Table.Namespace == StakingNamespace && q.router != nil {
		if err := q.router.Route(quorum.Table, augmented); err != nil {
			q.host.Emit(SystemTableError{Table: quorum.Table, Error: err.Error()})
		} else {
			q.host.Emit(SystemTableUpdate{Table: quorum.Table})
		}
	}
	return nil
}
