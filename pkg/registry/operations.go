package registry

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/sxt-network/sxt-node/pkg/commitment"
	"github.com/sxt-network/sxt-node/pkg/table"
)

// MaxClearTablesBatch bounds how many tables clear_tables removes per call
// (spec §4.D "bounded-batch clear for catastrophic reset").
const MaxClearTablesBatch = 256

type staged struct {
	id          table.ID
	entry       Entry
	commitments commitment.PerSchemeCommitments
}

// CreateTables registers every entry atomically: either all entries are
// validated, committed to the commitment map, and registered, or none are
// (spec §4.D).
func (r *Registry) CreateTables(blockNumber uint64, entries []CreateTablesEntry) ([]SchemaUpdated, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	plan := make([]staged, 0, len(entries))
	for _, e := range entries {
		if _, exists := r.entries[e.Statement.Table]; exists {
			return nil, fmt.Errorf("%w: %s", ErrTableAlreadyExists, e.Statement.Table)
		}

		var augmented *table.Statement
		var commitments commitment.PerSchemeCommitments
		var err error
		var snapshotURL *string

		if e.Mode.FromSnapshot != nil {
			if err := validateSnapshotURL(e.Mode.FromSnapshot.URL); err != nil {
				return nil, err
			}
			augmented, err = withTableUUIDOptions(e.Statement, blockNumber)
			if err != nil {
				return nil, err
			}
			augmented, commitments, err = r.engine.CreateTableFromSnapshot(augmented, e.Mode.FromSnapshot.Commitments)
			snapURL := e.Mode.FromSnapshot.URL
			snapshotURL = &snapURL
		} else {
			augmented, err = withTableUUIDOptions(e.Statement, blockNumber)
			if err != nil {
				return nil, err
			}
			var schemes []commitment.Scheme
			if e.Mode.Empty != nil {
				schemes = e.Mode.Empty.Schemes
			}
			augmented, commitments, err = r.engine.CreateTable(augmented, schemes...)
		}
		if err != nil {
			return nil, err
		}

		entry := Entry{
			CreateStatement: table.Render(augmented),
			TableType:       e.TableType,
			Source:          e.Source,
			Version:         1,
			TableUUID:       deriveTableUUID(blockNumber, e.Statement.Table),
			ColumnUUIDs:     columnUUIDsFor(blockNumber, e.Statement),
			QuorumPolicy:    DefaultQuorumPolicy(e.TableType),
			SnapshotURL:     snapshotURL,
		}

		plan = append(plan, staged{id: e.Statement.Table, entry: entry, commitments: commitments})
	}

	// Commit phase: create every commitment-map entry before touching the
	// registry; if one cmap.Create fails, the entries this call already
	// created are deleted again, so a failed batch leaves both unchanged.
	for i, s := range plan {
		if err := r.cmap.Create(commitment.Key{Namespace: s.id.Namespace, Name: s.id.Name}, s.commitments); err != nil {
			for _, done := range plan[:i] {
				r.cmap.Delete(commitment.Key{Namespace: done.id.Namespace, Name: done.id.Name})
			}
			return nil, err
		}
	}
	events := make([]SchemaUpdated, 0, len(plan))
	for _, s := range plan {
		r.entries[s.id] = s.entry
		events = append(events, SchemaUpdated{Table: s.id, Version: s.entry.Version})
	}
	return events, nil
}

// DropTable removes a table's commitments, schema, and quorum policy
// (spec §4.D).
func (r *Registry) DropTable(id table.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return ErrTableNotFound
	}
	r.cmap.Delete(commitment.Key{Namespace: id.Namespace, Name: id.Name})
	delete(r.entries, id)
	return nil
}

// ClearTables removes up to MaxClearTablesBatch registered tables in
// deterministic (namespace, name) order, returning the identifiers
// actually removed. A privileged, bounded-batch reset (spec §4.D).
func (r *Registry) ClearTables() []table.ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]table.ID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sortIDs(ids)
	if len(ids) > MaxClearTablesBatch {
		ids = ids[:MaxClearTablesBatch]
	}
	for _, id := range ids {
		r.cmap.Delete(commitment.Key{Namespace: id.Namespace, Name: id.Name})
		delete(r.entries, id)
	}
	return ids
}

// validateSnapshotURL rejects any FromSnapshot URL that does not parse as an
// https:// URL with a host, mirroring the original runtime's rejection of
// malformed snapshot URLs at the extrinsic boundary rather than at query
// time.
func validateSnapshotURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidSnapshotURL, raw)
	}
	return nil
}

func sortIDs(ids []table.ID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && less(ids[j], ids[j-1]); j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

func less(a, b table.ID) bool {
	if a.Namespace != b.Namespace {
		return a.Namespace < b.Namespace
	}
	return a.Name < b.Name
}

// UpdateTableUUID re-derives and rewrites a single table's UUID, bumping
// its version and preserving every other WITH option (spec §4.D).
func (r *Registry) UpdateTableUUID(blockNumber uint64, id table.ID) (TableUuidUpdated, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return TableUuidUpdated{}, ErrTableNotFound
	}
	entry.TableUUID = deriveTableUUID(blockNumber, id)
	stmt, err := table.Parse(entry.CreateStatement)
	if err != nil {
		return TableUuidUpdated{}, err
	}
	stmt.With = table.WithOptions(stmt.With, table.WithOption{Key: "TABLE_UUID", Value: entry.TableUUID.String()})
	entry.CreateStatement = table.Render(stmt)
	entry.Version++
	r.entries[id] = entry
	return TableUuidUpdated{Table: id}, nil
}

// UpdateNamespaceUUIDs rotates the table UUID of every table registered
// under namespace in one operation (spec §4.D).
func (r *Registry) UpdateNamespaceUUIDs(blockNumber uint64, namespace string) (NamespaceUuidUpdated, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.tablesInNamespace(namespace)
	sortIDs(ids)
	updated := make([]string, 0, len(ids))
	for _, id := range ids {
		entry := r.entries[id]
		entry.TableUUID = deriveTableUUID(blockNumber, id)
		entry.Version++
		r.entries[id] = entry
		updated = append(updated, id.Name)
	}
	return NamespaceUuidUpdated{Namespace: namespace, UpdatedTables: updated}, nil
}

func withTableUUIDOptions(stmt *table.Statement, blockNumber uint64) (*table.Statement, error) {
	tableUUID := deriveTableUUID(blockNumber, stmt.Table)
	additions := []table.WithOption{{Key: "TABLE_UUID", Value: tableUUID.String()}}
	for _, c := range stmt.Columns {
		colUUID := deriveColumnUUID(blockNumber, stmt.Table, c.Identifier)
		additions = append(additions, table.WithOption{Key: "COLUMN_" + c.Identifier + "_UUID", Value: colUUID.String()})
	}
	return &table.Statement{
		Table:      stmt.Table,
		Columns:    stmt.Columns,
		PrimaryKey: stmt.PrimaryKey,
		With:       table.WithOptions(stmt.With, additions...),
	}, nil
}

func columnUUIDsFor(blockNumber uint64, stmt *table.Statement) map[string]uuid.UUID {
	out := make(map[string]uuid.UUID, len(stmt.Columns))
	for _, c := range stmt.Columns {
		out[c.Identifier] = deriveColumnUUID(blockNumber, stmt.Table, c.Identifier)
	}
	return out
}
