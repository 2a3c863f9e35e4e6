package commitment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sxt-network/sxt-node/pkg/scalar"
	"github.com/sxt-network/sxt-node/pkg/table"
)

func buildEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(PerSchemeSetups{
		SchemeDory:            PublicSetup{Dory: testSRS(t, 64)},
		SchemeHashAccumulator: PublicSetup{},
	})
}

func buildStatement(t *testing.T) *table.Statement {
	t.Helper()
	stmt, err := table.Parse("CREATE TABLE NS.T (A BIGINT NOT NULL)")
	require.NoError(t, err)
	require.NoError(t, table.ValidateCreateTable(stmt))
	return stmt
}

func buildInsert(t *testing.T, ints []int64) *table.Table {
	t.Helper()
	tbl, err := table.New([]table.Entry{
		{Identifier: "A", Column: scalar.Column{Type: scalar.I64Type(), I64: ints}},
	})
	require.NoError(t, err)
	return tbl
}

func TestEngineCreateTableAddsMetaColumnAndBothSchemes(t *testing.T) {
	e := buildEngine(t)
	stmt := buildStatement(t)

	augmented, commitments, err := e.CreateTable(stmt)
	require.NoError(t, err)
	require.Len(t, augmented.Columns, 2)
	require.Equal(t, MetaRowNumberColumn, augmented.Columns[1].Identifier)

	require.Len(t, commitments, 2)
	require.Equal(t, uint64(0), commitments[SchemeDory].End)
	require.Equal(t, uint64(0), commitments[SchemeHashAccumulator].End)
	require.Equal(t, []string{"A", MetaRowNumberColumn}, commitments[SchemeDory].Identifiers())
}

func TestEngineProcessInsertExtendsRangeAndAppendsMetaRowNumber(t *testing.T) {
	e := buildEngine(t)
	stmt := buildStatement(t)
	_, commitments, err := e.CreateTable(stmt)
	require.NoError(t, err)

	insert := buildInsert(t, []int64{10, 20, 30})
	updated, augmentedInsert, err := e.ProcessInsert(commitments, insert)
	require.NoError(t, err)

	require.Equal(t, uint64(3), updated[SchemeDory].End)
	require.Equal(t, uint64(3), updated[SchemeHashAccumulator].End)

	metaCol, ok := augmentedInsert.Get(MetaRowNumberColumn)
	require.True(t, ok)
	require.Equal(t, []int64{0, 1, 2}, metaCol.I64)

	// A second insert must continue the row-number sequence from the new end.
	second := buildInsert(t, []int64{40})
	updated2, augmentedInsert2, err := e.ProcessInsert(updated, second)
	require.NoError(t, err)
	require.Equal(t, uint64(4), updated2[SchemeDory].End)
	metaCol2, _ := augmentedInsert2.Get(MetaRowNumberColumn)
	require.Equal(t, []int64{3}, metaCol2.I64)
}

func TestEngineProcessInsertRejectsUnknownColumn(t *testing.T) {
	e := buildEngine(t)
	stmt := buildStatement(t)
	_, commitments, err := e.CreateTable(stmt)
	require.NoError(t, err)

	badInsert, err := table.New([]table.Entry{
		{Identifier: "B", Column: scalar.Column{Type: scalar.I64Type(), I64: []int64{2}}},
	})
	require.NoError(t, err)

	_, _, err = e.ProcessInsert(commitments, badInsert)
	require.ErrorIs(t, err, ErrColumnCommitmentsMismatch)
}

func TestEngineProcessInsertRejectsEmptyCommitmentSet(t *testing.T) {
	e := buildEngine(t)
	insert := buildInsert(t, []int64{1})
	_, _, err := e.ProcessInsert(PerSchemeCommitments{}, insert)
	require.ErrorIs(t, err, ErrNoCommitments)
}

func TestEngineProcessInsertRejectsRangeMismatch(t *testing.T) {
	e := buildEngine(t)
	mismatched := PerSchemeCommitments{
		SchemeDory: TableCommitment{Scheme: SchemeDory, End: 5, Columns: []ColumnMeta{
			{Identifier: "A", Type: scalar.I64Type()},
			{Identifier: MetaRowNumberColumn, Type: scalar.I64Type()},
		}},
		SchemeHashAccumulator: TableCommitment{Scheme: SchemeHashAccumulator, End: 9, Columns: []ColumnMeta{
			{Identifier: "A", Type: scalar.I64Type()},
			{Identifier: MetaRowNumberColumn, Type: scalar.I64Type()},
		}},
	}
	insert := buildInsert(t, []int64{1})
	_, _, err := e.ProcessInsert(mismatched, insert)
	require.ErrorIs(t, err, ErrTableCommitmentRangeMismatch)
}

func TestEngineCreateTableFromSnapshotValidatesSchema(t *testing.T) {
	e := buildEngine(t)
	stmt := buildStatement(t)

	goodCols := []ColumnMeta{
		{Identifier: "A", Type: scalar.I64Type()},
		{Identifier: MetaRowNumberColumn, Type: scalar.I64Type()},
	}
	goodSnapshot := PerSchemeCommitments{
		SchemeDory:            TableCommitment{Scheme: SchemeDory, Columns: goodCols},
		SchemeHashAccumulator: TableCommitment{Scheme: SchemeHashAccumulator, Columns: goodCols},
	}
	_, _, err := e.CreateTableFromSnapshot(stmt, goodSnapshot)
	require.NoError(t, err)

	badCols := []ColumnMeta{
		{Identifier: "B", Type: scalar.I64Type()},
		{Identifier: MetaRowNumberColumn, Type: scalar.I64Type()},
	}
	badSnapshot := PerSchemeCommitments{
		SchemeDory:            TableCommitment{Scheme: SchemeDory, Columns: badCols},
		SchemeHashAccumulator: TableCommitment{Scheme: SchemeHashAccumulator, Columns: goodCols},
	}
	_, _, err = e.CreateTableFromSnapshot(stmt, badSnapshot)
	require.ErrorIs(t, err, ErrInappropriateSnapshotCommitment)
}
