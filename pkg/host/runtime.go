package host

import (
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
)

// RuntimeHost is the concrete Host used by block application: it tracks
// the current block's caller and height, hashes with Keccak-256 (the same
// hasher the attestation tree and scalar conversion use), and buffers
// emitted events for the block being built.
type RuntimeHost struct {
	mu          sync.Mutex
	caller      Caller
	blockNumber uint64
	events      []Event
}

// NewRuntimeHost returns a RuntimeHost scoped to one block.
func NewRuntimeHost(blockNumber uint64) *RuntimeHost {
	return &RuntimeHost{blockNumber: blockNumber}
}

// SetCaller sets the origin for the dispatch about to run. Called once per
// extrinsic before it's dispatched.
func (h *RuntimeHost) SetCaller(c Caller) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.caller = c
}

func (h *RuntimeHost) Caller() Caller {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.caller
}

func (h *RuntimeHost) BlockNumber() uint64 { return h.blockNumber }

func (h *RuntimeHost) Hash(data []byte) []byte {
	return crypto.Keccak256(data)
}

func (h *RuntimeHost) Emit(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

// DrainEvents returns and clears every event emitted so far this block.
func (h *RuntimeHost) DrainEvents() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.events
	h.events = nil
	return out
}
