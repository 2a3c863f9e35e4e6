package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCreateTable(t *testing.T) {
	stmt, err := Parse("CREATE TABLE TEST.T (int_column INT NOT NULL)")
	require.NoError(t, err)
	require.Equal(t, "TEST", stmt.Table.Namespace)
	require.Equal(t, "T", stmt.Table.Name)
	require.Len(t, stmt.Columns, 1)
	require.Equal(t, "INT_COLUMN", stmt.Columns[0].Identifier)
	require.NoError(t, ValidateCreateTable(stmt))
}

func TestParseCreateTableWithClause(t *testing.T) {
	stmt, err := Parse(`CREATE TABLE NS.TBL (A BIGINT NOT NULL, B VARCHAR NOT NULL) WITH (TABLE_UUID='abc-123')`)
	require.NoError(t, err)
	v, ok := stmt.WithValue("TABLE_UUID")
	require.True(t, ok)
	require.Equal(t, "abc-123", v)
}

func TestValidateRejectsReservedPrefix(t *testing.T) {
	stmt, err := Parse("CREATE TABLE NS.T (META_FOO INT NOT NULL)")
	require.NoError(t, err)
	require.ErrorIs(t, ValidateCreateTable(stmt), ErrReservedPrefix)
}

func TestValidateRejectsMissingNotNull(t *testing.T) {
	stmt, err := Parse("CREATE TABLE NS.T (A INT)")
	require.NoError(t, err)
	require.ErrorIs(t, ValidateCreateTable(stmt), ErrMissingNotNull)
}

func TestRenderRoundTrip(t *testing.T) {
	stmt, err := Parse("CREATE TABLE NS.T (A INT NOT NULL, B DECIMAL(10,2) NOT NULL)")
	require.NoError(t, err)
	rendered := Render(stmt)

	reparsed, err := Parse(rendered)
	require.NoError(t, err)
	require.Equal(t, stmt.Table, reparsed.Table)
	require.Len(t, reparsed.Columns, 2)
	require.Equal(t, uint8(10), reparsed.Columns[1].Type.Precision())
	require.Equal(t, int16(2), reparsed.Columns[1].Type.Scale())
}
