package quorum

import "github.com/sxt-network/sxt-node/pkg/table"

// DataSubmitted is emitted on every accepted per-scope vote (spec §4.E
// step 3).
type DataSubmitted struct {
	BatchID    string
	Table      table.ID
	Scope      Scope
	Account    string
	Agreements int
}

func (DataSubmitted) EventName() string { return "DataSubmitted" }

// QuorumEmptyBlock is emitted on finalization when the deserialized insert
// carries zero rows.
type QuorumEmptyBlock struct {
	Table       table.ID
	BlockNumber *uint64
	Agreements  int
	Dissents    int
}

func (QuorumEmptyBlock) EventName() string { return "QuorumEmptyBlock" }

// QuorumReached is emitted on finalization when the deserialized insert
// carries at least one row.
type QuorumReached struct {
	Quorum DataQuorum
	Rows   int
}

func (QuorumReached) EventName() string { return "QuorumReached" }

// SystemTableUpdate is emitted when a staking-namespace table finalizes and
// the system-table router processes it successfully.
type SystemTableUpdate struct {
	Table table.ID
}

func (SystemTableUpdate) EventName() string { return "SystemTableUpdate" }

// SystemTableError is emitted when the system-table router fails; it never
// aborts the enclosing finalization (spec §4.E step 7).
type SystemTableError struct {
	Table table.ID
	Error string
}

func (SystemTableError) EventName() string { return "SystemTableError" }
