// Package systable implements the system-table router of spec §4.F: rows
// finalized into the staking-system namespace drive the consensus
// runtime's staking and messaging state instead of being merely stored.
package systable

import (
	"errors"
	"math/big"

	"github.com/sxt-network/sxt-node/pkg/table"
)

var (
	ErrMissingExpectedField = errors.New("row is missing an expected field")
	ErrIncorrectFieldType   = errors.New("row field has an unexpected column type")
	ErrUnknownSystemTable   = errors.New("unrecognized system table name")
	ErrLateNonce            = errors.New("message nonce is not newer than the last processed nonce")
	ErrFutureNonce          = errors.New("message nonce skips ahead of the expected next nonce")

	// ErrBondIrrecoverable marks a STAKED row's bond as unrecoverable
	// (e.g. the derived account was slashed out of existence or the
	// staking pallet refuses to ever bond it again). StakingRuntime
	// implementations wrap this sentinel so handleStakedRow can tell it
	// apart from a transient bonding failure and force-chill the
	// validator instead of just logging the row.
	ErrBondIrrecoverable = errors.New("derived account cannot be bonded")
)

// StakingRuntime is the consensus-runtime staking capability STAKED,
// NOMINATED, UNSTAKE_INITIATED, and UNSTAKE_CANCELLED rows drive (spec
// §4.F). The staking pallet itself is an external collaborator (spec §1
// Non-goals); this is its call surface.
type StakingRuntime interface {
	// DeriveAccount maps an EVM-bridged staker address to its substrate
	// account id (spec glossary "Stash").
	DeriveAccount(ethAddr [20]byte) (string, error)
	IsBonded(account string) bool
	ForceCreditBalance(account string, amount *big.Int) error
	Bond(account string, amount *big.Int) error
	BondExtra(account string, amount *big.Int) error
	Unbond(account string) error
	Rebond(account string) error
	Nominate(account string, targets []string) error
}

// MessageHandler dispatches one MESSAGE row's payload after nonce
// validation (spec §4.F "Dispatch to sub-handlers (e.g. session-key
// registration)").
type MessageHandler interface {
	Handle(sender string, payload []byte) error
}

// PaySystemHandler processes ZKPAY_* rows, opaque to this spec.
type PaySystemHandler interface {
	Handle(id table.ID, tbl *table.Table) error
}
