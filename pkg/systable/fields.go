package systable

import (
	"fmt"
	"math/big"

	"github.com/sxt-network/sxt-node/pkg/scalar"
	"github.com/sxt-network/sxt-node/pkg/table"
)

func column(tbl *table.Table, name string, kind scalar.Kind) (scalar.Column, error) {
	col, ok := tbl.Get(name)
	if !ok {
		return scalar.Column{}, fmt.Errorf("%w: %s", ErrMissingExpectedField, name)
	}
	if col.Type.Kind() != kind {
		return scalar.Column{}, fmt.Errorf("%w: %s", ErrIncorrectFieldType, name)
	}
	return col, nil
}

// ethAddrField reads a fixed 20-byte EVM address from a VARBINARY column.
func ethAddrField(tbl *table.Table, name string, row int) ([20]byte, error) {
	var out [20]byte
	col, err := column(tbl, name, scalar.KindVarBinary)
	if err != nil {
		return out, err
	}
	v := col.VarBinary[row]
	if len(v) != 20 {
		return out, fmt.Errorf("%w: %s must be 20 bytes", ErrIncorrectFieldType, name)
	}
	copy(out[:], v)
	return out, nil
}

func i64Field(tbl *table.Table, name string, row int) (int64, error) {
	col, err := column(tbl, name, scalar.KindI64)
	if err != nil {
		return 0, err
	}
	return col.I64[row], nil
}

func varCharField(tbl *table.Table, name string, row int) (string, error) {
	col, err := column(tbl, name, scalar.KindVarChar)
	if err != nil {
		return "", err
	}
	return col.VarChar[row], nil
}

func varBinaryField(tbl *table.Table, name string, row int) ([]byte, error) {
	col, err := column(tbl, name, scalar.KindVarBinary)
	if err != nil {
		return nil, err
	}
	return col.VarBinary[row], nil
}

func amountField(tbl *table.Table, name string, row int) (*big.Int, error) {
	if col, ok := tbl.Get(name); ok && col.Type.Kind() == scalar.KindDecimal75 {
		return col.Decimal[row], nil
	}
	v, err := i64Field(tbl, name, row)
	if err != nil {
		return nil, err
	}
	return big.NewInt(v), nil
}
