package commitment

import (
	"fmt"

	"github.com/sxt-network/sxt-node/pkg/scalar"
	"github.com/sxt-network/sxt-node/pkg/table"
)

// MetaRowNumberColumn is the trailing metadata column every committed
// table carries in addition to its declared schema (spec §4.C): a
// BIGINT/I64 row-number sequence assigned by the engine on every insert.
const MetaRowNumberColumn = "META_ROW_NUMBER"

// Engine implements the commitment algorithms of spec §4.C: create-table,
// create-table-from-snapshot, and process-insert, each operating across
// every scheme named in the setups it is given.
type Engine struct {
	setups PerSchemeSetups
}

// NewEngine builds an engine bound to the given public setup material, one
// entry per scheme the caller wants commitments maintained under.
func NewEngine(setups PerSchemeSetups) *Engine {
	return &Engine{setups: setups}
}

func (e *Engine) commitColumn(s Scheme, c scalar.Column) ([]byte, error) {
	switch s {
	case SchemeDory:
		setup, ok := e.setups[SchemeDory]
		if !ok || setup.Dory == nil {
			return nil, ErrUnsupportedScheme
		}
		return doryCommitColumn(setup.Dory, c)
	case SchemeHashAccumulator:
		return hashCommitColumn(c)
	default:
		return nil, ErrUnsupportedScheme
	}
}

func (e *Engine) appendColumn(s Scheme, existing []byte, rowOffset int, newRows scalar.Column) ([]byte, error) {
	switch s {
	case SchemeDory:
		setup, ok := e.setups[SchemeDory]
		if !ok || setup.Dory == nil {
			return nil, ErrUnsupportedScheme
		}
		return doryAppendColumn(setup.Dory, existing, rowOffset, newRows)
	case SchemeHashAccumulator:
		return hashAppendColumn(existing, newRows)
	default:
		return nil, ErrUnsupportedScheme
	}
}

// withMetaRowNumber returns stmt's columns with a trailing
// META_ROW_NUMBER BIGINT NOT NULL column appended. The caller's statement
// must not already declare metadata columns (table.ValidateCreateTable
// rejects the META_ reserved prefix ahead of this call).
func withMetaRowNumber(stmt *table.Statement) []table.ColumnDef {
	out := make([]table.ColumnDef, 0, len(stmt.Columns)+1)
	out = append(out, stmt.Columns...)
	out = append(out, table.ColumnDef{Identifier: MetaRowNumberColumn, Type: scalar.I64Type(), NotNull: true})
	return out
}

// CreateTable validates and augments a freshly parsed CREATE TABLE (spec
// §4.C). The caller is expected to have already run table.ValidateCreateTable
// over stmt; CreateTable only adds the metadata column and builds one
// empty commitment per requested scheme. schemes narrows which of the
// engine's configured schemes get a commitment (spec §4.D "Empty(scheme_flags)");
// an empty schemes selects every scheme the engine was built with.
func (e *Engine) CreateTable(stmt *table.Statement, schemes ...Scheme) (*table.Statement, PerSchemeCommitments, error) {
	augmentedCols := withMetaRowNumber(stmt)
	augmented := &table.Statement{Table: stmt.Table, Columns: augmentedCols, PrimaryKey: stmt.PrimaryKey, With: stmt.With}

	wanted := schemes
	if len(wanted) == 0 {
		wanted = make([]Scheme, 0, len(e.setups))
		for s := range e.setups {
			wanted = append(wanted, s)
		}
	}

	commitments := make(PerSchemeCommitments, len(wanted))
	for _, s := range wanted {
		if _, ok := e.setups[s]; !ok {
			return nil, nil, ErrUnsupportedScheme
		}
		cols := make([]ColumnMeta, len(augmentedCols))
		for i, c := range augmentedCols {
			val, err := e.commitColumn(s, scalar.NewEmpty(c.Type))
			if err != nil {
				return nil, nil, err
			}
			cols[i] = ColumnMeta{Identifier: c.Identifier, Type: c.Type, Value: val}
		}
		commitments[s] = TableCommitment{Scheme: s, Begin: 0, End: 0, Columns: cols}
	}
	return augmented, commitments, nil
}

// CreateTableFromSnapshot accepts commitments computed off-chain over rows
// the chain never ingests directly (spec §4.C), validating that the
// snapshot's schema and scheme set match what the engine would itself
// produce before trusting it as the table's starting state.
func (e *Engine) CreateTableFromSnapshot(stmt *table.Statement, snapshot PerSchemeCommitments) (*table.Statement, PerSchemeCommitments, error) {
	augmentedCols := withMetaRowNumber(stmt)
	augmented := &table.Statement{Table: stmt.Table, Columns: augmentedCols, PrimaryKey: stmt.PrimaryKey, With: stmt.With}

	for s := range e.setups {
		tc, ok := snapshot[s]
		if !ok {
			return nil, nil, ErrInappropriateSnapshotCommitment
		}
		if len(tc.Columns) != len(augmentedCols) {
			return nil, nil, ErrInappropriateSnapshotCommitment
		}
		for i, col := range tc.Columns {
			want := augmentedCols[i]
			if col.Identifier != want.Identifier || !col.Type.Equal(want.Type) {
				return nil, nil, ErrInappropriateSnapshotCommitment
			}
		}
	}
	return augmented, snapshot, nil
}

// referenceOrder returns the declared-schema column identifiers (i.e.
// excluding MetaRowNumberColumn) in commitment order, taken from an
// arbitrary scheme's commitment since every scheme must agree on column
// order (spec §3 "schemes ... must agree on row range and column order").
func referenceOrder(tc TableCommitment) []string {
	ids := tc.Identifiers()
	if len(ids) == 0 {
		return ids
	}
	return ids[:len(ids)-1]
}

// ProcessInsert appends insert's rows to every scheme's commitment (spec
// §4.C "Process insert"). It reorders insert's columns to the commitment's
// declared order, appends each scheme's per-column commitment, and returns
// both the updated per-scheme commitments and the metadata-augmented
// insert (original columns in commitment order, plus a META_ROW_NUMBER
// column holding [end, end+n)).
func (e *Engine) ProcessInsert(existing PerSchemeCommitments, insert *table.Table) (PerSchemeCommitments, *table.Table, error) {
	if len(existing) == 0 {
		return nil, nil, ErrNoCommitments
	}

	var refEnd uint64
	var refOrder []string
	first := true
	for _, tc := range existing {
		if first {
			refEnd = tc.End
			refOrder = referenceOrder(tc)
			first = false
			continue
		}
		if tc.End != refEnd {
			return nil, nil, ErrTableCommitmentRangeMismatch
		}
		if !equalOrder(referenceOrder(tc), refOrder) {
			return nil, nil, ErrTableCommitmentColumnOrderMismatch
		}
	}

	reordered, err := insert.Reorder(refOrder)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrColumnCommitmentsMismatch, err)
	}

	n := reordered.Len()
	out := make(PerSchemeCommitments, len(existing))
	for s, tc := range existing {
		updatedCols := make([]ColumnMeta, len(tc.Columns))
		for i, col := range tc.Columns {
			if col.Identifier == MetaRowNumberColumn {
				rowNumbers := make([]int64, n)
				for r := 0; r < n; r++ {
					rowNumbers[r] = int64(refEnd) + int64(r)
				}
				metaCol := scalar.Column{Type: scalar.I64Type(), I64: rowNumbers}
				val, err := e.appendColumn(s, col.Value, int(refEnd), metaCol)
				if err != nil {
					return nil, nil, err
				}
				updatedCols[i] = ColumnMeta{Identifier: col.Identifier, Type: col.Type, Value: val}
				continue
			}
			newCol, ok := reordered.Get(col.Identifier)
			if !ok {
				return nil, nil, ErrColumnCommitmentsMismatch
			}
			val, err := e.appendColumn(s, col.Value, int(refEnd), newCol)
			if err != nil {
				return nil, nil, err
			}
			updatedCols[i] = ColumnMeta{Identifier: col.Identifier, Type: col.Type, Value: val}
		}
		out[s] = TableCommitment{Scheme: s, Begin: tc.Begin, End: refEnd + uint64(n), Columns: updatedCols}
	}

	augmentedInsert, err := buildAugmentedInsert(reordered, refEnd)
	if err != nil {
		return nil, nil, err
	}
	return out, augmentedInsert, nil
}

func equalOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func buildAugmentedInsert(reordered *table.Table, end uint64) (*table.Table, error) {
	n := reordered.Len()
	entries := make([]table.Entry, 0, len(reordered.Identifiers())+1)
	for _, id := range reordered.Identifiers() {
		col, _ := reordered.Get(id)
		entries = append(entries, table.Entry{Identifier: id, Column: col})
	}
	rowNumbers := make([]int64, n)
	for r := 0; r < n; r++ {
		rowNumbers[r] = int64(end) + int64(r)
	}
	entries = append(entries, table.Entry{Identifier: MetaRowNumberColumn, Column: scalar.Column{Type: scalar.I64Type(), I64: rowNumbers}})
	return table.New(entries)
}
