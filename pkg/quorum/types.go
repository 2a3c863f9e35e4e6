// Package quorum implements the indexing quorum protocol of spec §4.E:
// dual-scope off-chain submission voting and on-chain finalization of
// table-row batches.
package quorum

import (
	"github.com/sxt-network/sxt-node/pkg/table"
)

// MaxSubmittersPerScope bounds distinct (batch_id, scope) submitters.
const MaxSubmittersPerScope = 16

// Scope is the voting scope a submission is cast under.
type Scope int

const (
	ScopePublic Scope = iota
	ScopePrivileged
)

func (s Scope) String() string {
	switch s {
	case ScopePublic:
		return "Public"
	case ScopePrivileged:
		return "Privileged"
	default:
		return "Unknown"
	}
}

// DataQuorum is the finalized batch record of spec §3 "Finalized batch
// record": once written for a batch_id, further submissions to it are
// terminal (LateBatch).
type DataQuorum struct {
	BatchID     string
	Table       table.ID
	DataHash    [32]byte
	Scope       Scope
	BlockNumber *uint64
	Agreements  int
	Dissents    int
}

// Permissions answers the authorization question behind UnauthorizedSubmitter:
// whether account may cast a vote in the named scope.
type Permissions interface {
	HasPublicPermission(account string) bool
	HasPrivilegedPermission(account string, id table.ID) bool
}

// SystemRouter processes a finalized table whose identifier falls in the
// staking-system namespace (spec §4.F). Implemented by pkg/systable.
type SystemRouter interface {
	Route(id table.ID, tbl *table.Table) error
}

// StakingNamespace is the reserved namespace finalized tables are routed
// to the system-table router under (spec §4.E step 7, scenario S4).
const StakingNamespace = "SXT_SYSTEM_STAKING"
