// Package registry implements the tables registry of spec §4.D: table
// identity, schema, DDL, UUIDs, versioning, and per-table quorum policy.
package registry

import (
	"github.com/google/uuid"

	"github.com/sxt-network/sxt-node/pkg/commitment"
	"github.com/sxt-network/sxt-node/pkg/table"
)

// TableType selects the default quorum policy a table is registered with
// (spec §4.D). Testing carries an explicit override policy.
type TableType struct {
	Kind    TableTypeKind
	Testing QuorumPolicy // only meaningful when Kind == TableTypeTesting
}

type TableTypeKind int

const (
	TableTypeCoreBlockchain TableTypeKind = iota
	TableTypeSCI
	TableTypeCommunity
	TableTypeTesting
)

func (k TableTypeKind) String() string {
	switch k {
	case TableTypeCoreBlockchain:
		return "CoreBlockchain"
	case TableTypeSCI:
		return "SCI"
	case TableTypeCommunity:
		return "Community"
	case TableTypeTesting:
		return "Testing"
	default:
		return "Unknown"
	}
}

// QuorumPolicy is InsertQuorumSize from spec §3: per-scope threshold, with
// a nil pointer meaning the scope is disabled.
type QuorumPolicy struct {
	Public     *uint8
	Privileged *uint8
}

func u8p(v uint8) *uint8 { return &v }

// DefaultQuorumPolicy returns the table_type -> default InsertQuorumSize
// mapping of spec §4.D.
func DefaultQuorumPolicy(tt TableType) QuorumPolicy {
	switch tt.Kind {
	case TableTypeCoreBlockchain:
		return QuorumPolicy{Public: u8p(3), Privileged: nil}
	case TableTypeSCI:
		return QuorumPolicy{Public: u8p(1), Privileged: nil}
	case TableTypeCommunity:
		return QuorumPolicy{Public: nil, Privileged: u8p(0)}
	case TableTypeTesting:
		return tt.Testing
	default:
		return QuorumPolicy{}
	}
}

// CreationMode is the tagged union of spec §4.D's create_tables entry
// bundle: either an empty commitment under the given schemes, or
// commitments supplied from an off-chain snapshot.
type CreationMode struct {
	Empty        *EmptyMode
	FromSnapshot *FromSnapshotMode
}

// EmptyMode requests fresh, empty per-scheme commitments.
type EmptyMode struct {
	Schemes []commitment.Scheme
}

// FromSnapshotMode supplies commitments computed off-chain over an initial
// dataset not ingested through the chain's own insert path.
type FromSnapshotMode struct {
	URL         string
	Commitments commitment.PerSchemeCommitments
}

// Entry is the table registry entry of spec §3: everything the registry
// remembers about one registered table, at its current version.
type Entry struct {
	CreateStatement string
	TableType       TableType
	Source          string
	Version         uint64
	TableUUID       uuid.UUID
	ColumnUUIDs     map[string]uuid.UUID
	QuorumPolicy    QuorumPolicy
	SnapshotURL     *string
}

// CreateTablesEntry is one element of a create_tables batch (spec §4.D).
type CreateTablesEntry struct {
	Statement *table.Statement
	Mode      CreationMode
	TableType TableType
	Source    string
}
