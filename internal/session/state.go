package session

// State represents where a chat session is in the upload/chat progression
type State string

const (
	// StateWelcome: no active session yet
	StateWelcome State = "welcome"
	// StateAwaitingInvoice: session active, no validation result yet
	StateAwaitingInvoice State = "awaiting_invoice"
	// StateChatting: a validation result is attached to the session
	StateChatting State = "chatting"
)

var validStates = map[State]bool{
	StateWelcome:         true,
	StateAwaitingInvoice: true,
	StateChatting:        true,
}

// IsValid returns true if the state is a known session state
func (s State) IsValid() bool {
	return validStates[s]
}

// IsTerminal returns true if no further transitions are allowed. Chatting
// is terminal within a session's lifetime: there is no way back to
// awaiting_invoice once a result has landed.
func (s State) IsTerminal() bool {
	return s == StateChatting
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
