package systable

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sxt-network/sxt-node/pkg/host"
	"github.com/sxt-network/sxt-node/pkg/table"
)

const (
	tableStaked           = "STAKED"
	tableNominated        = "NOMINATED"
	tableUnstakeInitiated = "UNSTAKE_INITIATED"
	tableUnstakeCancelled = "UNSTAKE_CANCELLED"
	tableMessage          = "MESSAGE"
	zkPayPrefix           = "ZKPAY_"
)

// Router switches on a finalized system table's (namespace, name) and
// drives the consensus runtime (spec §4.F). It implements
// quorum.SystemRouter.
type Router struct {
	staking StakingRuntime
	message MessageHandler
	zkpay   PaySystemHandler
	host    host.Host

	mu    sync.Mutex
	nonce map[string]uint64 // SystemTables::LastProcessedUserNonce[account]
}

// NewRouter builds a Router. zkpay may be nil if the deployment carries no
// pay-system handler.
func NewRouter(staking StakingRuntime, message MessageHandler, zkpay PaySystemHandler, h host.Host) *Router {
	return &Router{staking: staking, message: message, zkpay: zkpay, host: h, nonce: make(map[string]uint64)}
}

// Route dispatches tbl's rows per spec §4.F. A returned error means the
// whole table could not be processed (unknown name, no handler wired);
// per-row failures are captured as MessageProcessingError events instead.
func (r *Router) Route(id table.ID, tbl *table.Table) error {
	switch id.Name {
	case tableStaked:
		r.forEachRow(tbl, r.handleStakedRow)
	case tableNominated:
		r.forEachRow(tbl, r.handleNominatedRow)
	case tableUnstakeInitiated:
		r.forEachRow(tbl, r.handleUnstakeInitiatedRow)
	case tableUnstakeCancelled:
		r.forEachRow(tbl, r.handleUnstakeCancelledRow)
	case tableMessage:
		r.forEachRow(tbl, r.handleMessageRow)
	default:
		if strings.HasPrefix(id.Name, zkPayPrefix) {
			if r.zkpay == nil {
				return fmt.Errorf("%w: %s (no pay-system handler wired)", ErrUnknownSystemTable, id.Name)
			}
			return r.zkpay.Handle(id, tbl)
		}
		return fmt.Errorf("%w: %s", ErrUnknownSystemTable, id.Name)
	}
	return nil
}

// forEachRow runs handle over every row of tbl, capturing per-row errors
// as MessageProcessingError events rather than propagating them (spec
// §4.F "one bad row does not fail the batch").
func (r *Router) forEachRow(tbl *table.Table, handle func(tbl *table.Table, row int) error) {
	for row := 0; row < tbl.Len(); row++ {
		if err := handle(tbl, row); err != nil {
			r.host.Emit(MessageProcessingError{Row: row, Error: err.Error()})
		}
	}
}

func (r *Router) handleStakedRow(tbl *table.Table, row int) error {
	addr, err := ethAddrField(tbl, "STAKER", row)
	if err != nil {
		return err
	}
	amount, err := amountField(tbl, "AMOUNT", row)
	if err != nil {
		return err
	}
	account, err := r.staking.DeriveAccount(addr)
	if err != nil {
		return err
	}
	if err := r.staking.ForceCreditBalance(account, amount); err != nil {
		return r.forceChillOnIrrecoverableBond(account, err)
	}
	if r.staking.IsBonded(account) {
		if err := r.staking.BondExtra(account, amount); err != nil {
			return r.forceChillOnIrrecoverableBond(account, err)
		}
		return nil
	}
	if err := r.staking.Bond(account, amount); err != nil {
		return r.forceChillOnIrrecoverableBond(account, err)
	}
	return nil
}

// forceChillOnIrrecoverableBond emits ValidatorForceChilled when err marks
// the account's bond as unrecoverable (spec §6), then returns err
// unchanged so the row is still captured as a MessageProcessingError.
func (r *Router) forceChillOnIrrecoverableBond(account string, err error) error {
	if errors.Is(err, ErrBondIrrecoverable) {
		r.host.Emit(ValidatorForceChilled{Validator: account})
	}
	return err
}

func (r *Router) handleNominatedRow(tbl *table.Table, row int) error {
	addr, err := ethAddrField(tbl, "STAKER", row)
	if err != nil {
		return err
	}
	nodesJSON, err := varCharField(tbl, "NODES", row)
	if err != nil {
		return err
	}
	var nodes []string
	if err := json.Unmarshal([]byte(nodesJSON), &nodes); err != nil {
		return fmt.Errorf("%w: NODES is not a JSON string list", ErrIncorrectFieldType)
	}
	account, err := r.staking.DeriveAccount(addr)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		r.host.Emit(EmptyNominationSet{Row: row})
		return nil
	}
	return r.staking.Nominate(account, nodes)
}

func (r *Router) handleUnstakeInitiatedRow(tbl *table.Table, row int) error {
	addr, err := ethAddrField(tbl, "STAKER", row)
	if err != nil {
		return err
	}
	account, err := r.staking.DeriveAccount(addr)
	if err != nil {
		return err
	}
	return r.staking.Unbond(account)
}

func (r *Router) handleUnstakeCancelledRow(tbl *table.Table, row int) error {
	addr, err := ethAddrField(tbl, "STAKER", row)
	if err != nil {
		return err
	}
	account, err := r.staking.DeriveAccount(addr)
	if err != nil {
		return err
	}
	return r.staking.Rebond(account)
}

func (r *Router) handleMessageRow(tbl *table.Table, row int) error {
	sender, err := varCharField(tbl, "SENDER", row)
	if err != nil {
		return err
	}
	nonce, err := i64Field(tbl, "NONCE", row)
	if err != nil {
		return err
	}
	payload, err := varBinaryField(tbl, "PAYLOAD", row)
	if err != nil {
		return err
	}

	r.mu.Lock()
	want := r.nonce[sender] + 1
	r.mu.Unlock()

	if uint64(nonce) < want {
		return ErrLateNonce
	}
	if uint64(nonce) > want {
		return ErrFutureNonce
	}

	if r.message != nil {
		if err := r.message.Handle(sender, payload); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.nonce[sender] = uint64(nonce)
	r.mu.Unlock()

	r.host.Emit(MessageReceived{Sender: sender, Payload: payload})
	return nil
}
