package registry

import "github.com/sxt-network/sxt-node/pkg/table"

// SchemaUpdated is emitted once per table on a successful create_tables
// entry (spec §4.D).
type SchemaUpdated struct {
	Table   table.ID
	Version uint64
}

// TableUuidUpdated is emitted when a single table's UUID is rewritten in
// place (spec §4.D "UUID update ops").
type TableUuidUpdated struct {
	Table table.ID
}

// NamespaceUuidUpdated is emitted when every table UUID under a namespace
// is rewritten in one operation (spec §4.D "UUID update ops").
type NamespaceUuidUpdated struct {
	Namespace     string
	UpdatedTables []string
}
