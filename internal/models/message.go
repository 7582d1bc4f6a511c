package models

import (
	"encoding/json"
	"time"
)

// MessageType is the closed set of chat message kinds. The transcript
// display switches exhaustively over these; adding a kind means touching
// every switch, which is the point.
type MessageType string

const (
	MessageWelcome          MessageType = "welcome"
	MessagePrompt           MessageType = "prompt"
	MessageFileUpload       MessageType = "file_upload"
	MessageValidationResult MessageType = "validation_result"
	MessageText             MessageType = "text_message"
	MessageError            MessageType = "error"
	MessageLoading          MessageType = "loading_indicator"
)

var validMessageTypes = map[MessageType]bool{
	MessageWelcome:          true,
	MessagePrompt:           true,
	MessageFileUpload:       true,
	MessageValidationResult: true,
	MessageText:             true,
	MessageError:            true,
	MessageLoading:          true,
}

// IsValid returns true if the message type is a known variant
func (t MessageType) IsValid() bool {
	return validMessageTypes[t]
}

// String returns the string representation of the message type
func (t MessageType) String() string {
	return string(t)
}

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a session transcript. Payload carries an
// embedded ValidationPayload (as JSON) for validation_result messages.
type ChatMessage struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Role      string          `json:"role"`
	Message   string          `json:"message"`
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	ResultID  string          `json:"result_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// ValidationPayload decodes the embedded payload, or returns nil when the
// message carries none.
func (m *ChatMessage) ValidationPayload() (*ValidationPayload, error) {
	if len(m.Payload) == 0 {
		return nil, nil
	}
	var payload ValidationPayload
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ChatSession is one conversation. A session accumulates at most one live
// invoice context: InvoiceResultID is set once, when the first validation
// result lands.
type ChatSession struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	InvoiceResultID string    `json:"invoice_result_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DefaultSessionTitle is used when a session is created without a title.
const DefaultSessionTitle = "New Chat"
