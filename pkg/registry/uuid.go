package registry

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sxt-network/sxt-node/pkg/table"
)

// rootNamespace anchors every deterministic UUID this package derives. It
// is itself computed deterministically (rather than hard-coded) from a
// fixed brand string, so the derivation needs no externally-supplied seed.
var rootNamespace = uuid.NewSHA1(uuid.Nil, []byte("sxt-node/registry/uuid-namespace"))

// deriveTableUUID computes the table_uuid for (block_number, namespace,
// name), per spec §4.D: "deterministic from block_number || namespace ||
// name". Re-deriving with the same inputs always yields the same UUID;
// the same table re-created in a later block gets a fresh one.
func deriveTableUUID(blockNumber uint64, id table.ID) uuid.UUID {
	seed := fmt.Sprintf("%d|%s|%s", blockNumber, id.Namespace, id.Name)
	return uuid.NewSHA1(rootNamespace, []byte(seed))
}

// deriveColumnUUID computes one column's UUID, additionally salted by the
// column identifier so that distinct columns of the same table never
// collide.
func deriveColumnUUID(blockNumber uint64, id table.ID, column string) uuid.UUID {
	seed := fmt.Sprintf("%d|%s|%s|%s", blockNumber, id.Namespace, id.Name, column)
	return uuid.NewSHA1(rootNamespace, []byte(seed))
}
