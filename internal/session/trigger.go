package session

// Trigger represents an event that can advance a session's state
type Trigger string

const (
	// TriggerOpenSession activates a session (welcome -> awaiting_invoice)
	TriggerOpenSession Trigger = "OPEN_SESSION"
	// TriggerAttachResult fires on successful receipt of a validation
	// payload (awaiting_invoice -> chatting); at most once per session
	TriggerAttachResult Trigger = "ATTACH_RESULT"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
