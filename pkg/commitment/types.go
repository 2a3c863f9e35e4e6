// Package commitment implements the commitment map (spec §4.B) and
// commitment engine (spec §4.C): per-table append-only commitments under
// one or more commitment schemes.
package commitment

import (
	"github.com/sxt-network/sxt-node/pkg/scalar"
)

// Scheme tags the supported commitment constructions. The design is open
// over the set (spec §3); two are implemented here.
type Scheme int

const (
	// SchemeDory is a Pedersen-style vector commitment over bn254: each
	// column commits to sum(g_i^scalar_i) against a structured reference
	// string, appendable by adding the delta over newly-inserted rows.
	SchemeDory Scheme = iota
	// SchemeHashAccumulator commits a column as a running Keccak-256 hash
	// chain over its scalar encoding; cheap to append, not succinct.
	SchemeHashAccumulator
)

func (s Scheme) String() string {
	switch s {
	case SchemeDory:
		return "Dory"
	case SchemeHashAccumulator:
		return "HashAccumulator"
	default:
		return "Unknown"
	}
}

// ColumnMeta is the per-column metadata carried by a TableCommitment:
// identifier, type, and the opaque per-column commitment value.
type ColumnMeta struct {
	Identifier string
	Type       scalar.ColumnType
	Value      []byte
}

// TableCommitment is the commitment described in spec §3: a row range
// [Begin,End) fixed at creation/extended by appends, plus ordered
// per-column metadata. Column metadata never changes post-creation except
// for each column's Value as rows are appended.
type TableCommitment struct {
	Scheme  Scheme
	Begin   uint64
	End     uint64
	Columns []ColumnMeta
}

// Identifiers returns the ordered column identifiers.
func (c TableCommitment) Identifiers() []string {
	out := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = col.Identifier
	}
	return out
}

// RowCount returns End-Begin.
func (c TableCommitment) RowCount() uint64 { return c.End - c.Begin }

// PublicSetup is the scheme-specific public setup material required to
// create or extend a commitment (spec §4.C "public setup material per
// scheme"). SchemeHashAccumulator needs none.
type PublicSetup struct {
	Dory *DorySRS
}

// PerSchemeSetups maps the schemes a caller wants to use to their public
// setup material.
type PerSchemeSetups map[Scheme]PublicSetup

// PerSchemeCommitments maps schemes to their TableCommitment, used
// throughout the engine and map APIs.
type PerSchemeCommitments map[Scheme]TableCommitment

// Schemes returns the set of schemes present, for the commitment-map
// "update" precondition (spec §4.B).
func (m PerSchemeCommitments) Schemes() map[Scheme]struct{} {
	out := make(map[Scheme]struct{}, len(m))
	for s := range m {
		out[s] = struct{}{}
	}
	return out
}

// SameSchemes reports whether two scheme sets are identical.
func SameSchemes(a, b map[Scheme]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for s := range a {
		if _, ok := b[s]; !ok {
			return false
		}
	}
	return true
}
