package forwarder

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// sxtBridgeABI is the contract interface for spec §6's wire call. Hand
// bound (not abigen-generated) since the pack carries no Solidity build
// step; the signature matches the ABI exactly.
const sxtBridgeABI = `[{
  "name": "sxtFulfillUnstake",
  "type": "function",
  "stateMutability": "nonpayable",
  "inputs": [
    {"name": "staker", "type": "address"},
    {"name": "amount", "type": "uint256"},
    {"name": "blockNumber", "type": "uint64"},
    {"name": "proof", "type": "bytes32[]"},
    {"name": "r", "type": "bytes32[]"},
    {"name": "s", "type": "bytes32[]"},
    {"name": "v", "type": "uint8[]"}
  ],
  "outputs": []
}]`

// SxtBridge is a thin bind.BoundContract wrapper over the external-chain
// bridge contract, authorized to transact with a single forwarder key.
type SxtBridge struct {
	contract *bind.BoundContract
	auth     *bind.TransactOpts
}

// NewSxtBridge binds address on backend and authorizes transactions with
// key for the given chain id.
func NewSxtBridge(address common.Address, backend bind.ContractBackend, key *ecdsa.PrivateKey, chainID *big.Int) (*SxtBridge, error) {
	parsed, err := abi.JSON(strings.NewReader(sxtBridgeABI))
	if err != nil {
		return nil, err
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, err
	}
	contract := bind.NewBoundContract(address, parsed, backend, backend, backend)
	return &SxtBridge{contract: contract, auth: auth}, nil
}

// SxtFulfillUnstake implements ExternalChain over the bound contract.
func (b *SxtBridge) SxtFulfillUnstake(ctx context.Context, staker [20]byte, amount *big.Int, blockNumber uint64, proof, r, s [][32]byte, v []uint8) error {
	opts := *b.auth
	opts.Context = ctx
	_, err := b.contract.Transact(&opts, "sxtFulfillUnstake", common.Address(staker), amount, blockNumber, proof, r, s, v)
	return err
}
