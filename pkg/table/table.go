package table

import "github.com/sxt-network/sxt-node/pkg/scalar"

// Entry is one column of an OnChainTable: an uppercase identifier paired
// with its typed data.
type Entry struct {
	Identifier string
	Column     scalar.Column
}

// Table is the OnChainTable of spec §3: an ordered mapping from uppercase
// identifier to OnChainColumn. Column order is significant — commitments
// are order-sensitive.
type Table struct {
	entries []Entry
	index   map[string]int
}

// New validates and constructs a Table. Invariants enforced: at least one
// column, all columns of equal length, column identifiers unique.
func New(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, ErrTooFewColumns
	}
	index := make(map[string]int, len(entries))
	rowCount := entries[0].Column.Len()
	for i, e := range entries {
		if _, exists := index[e.Identifier]; exists {
			return nil, ErrDuplicateIdentifier
		}
		index[e.Identifier] = i
		if e.Column.Len() != rowCount {
			return nil, ErrLengthMismatch
		}
	}
	return &Table{entries: append([]Entry{}, entries...), index: index}, nil
}

// Columns returns the ordered column entries.
func (t *Table) Columns() []Entry { return t.entries }

// Len returns the table's row count.
func (t *Table) Len() int {
	if len(t.entries) == 0 {
		return 0
	}
	return t.entries[0].Column.Len()
}

// Get looks up a column by its uppercase identifier.
func (t *Table) Get(identifier string) (scalar.Column, bool) {
	i, ok := t.index[identifier]
	if !ok {
		return scalar.Column{}, false
	}
	return t.entries[i].Column, true
}

// Identifiers returns the column identifiers in order.
func (t *Table) Identifiers() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Identifier
	}
	return out
}

// Reorder returns a new Table whose columns are arranged to match order
// (case-sensitive on uppercase identifiers). Every identifier in order must
// be present in t, and every column of t must appear in order.
func (t *Table) Reorder(order []string) (*Table, error) {
	if len(order) != len(t.entries) {
		return nil, ErrColumnNotFound
	}
	out := make([]Entry, len(order))
	for i, id := range order {
		idx, ok := t.index[id]
		if !ok {
			return nil, ErrColumnNotFound
		}
		out[i] = t.entries[idx]
	}
	return New(out)
}
