package systable

// MessageProcessingError is emitted for a single bad row; it never aborts
// the enclosing batch (spec §4.F).
type MessageProcessingError struct {
	Row   int
	Error string
}

func (MessageProcessingError) EventName() string { return "MessageProcessingError" }

// MessageReceived is emitted for every row successfully dispatched to a
// MessageHandler.
type MessageReceived struct {
	Sender  string
	Payload []byte
}

func (MessageReceived) EventName() string { return "MessageReceived" }

// EmptyNominationSet is emitted when a NOMINATED row's node list parses
// but is empty.
type EmptyNominationSet struct {
	Row int
}

func (EmptyNominationSet) EventName() string { return "EmptyNominationSet" }

// ValidatorForceChilled is emitted when a STAKED row's derived account
// fails bonding irrecoverably (spec §6), mirroring the offence handler's
// "slash and chill" fallback in the original staking pallet.
type ValidatorForceChilled struct {
	Validator string
}

func (ValidatorForceChilled) EventName() string { return "ValidatorForceChilled" }
