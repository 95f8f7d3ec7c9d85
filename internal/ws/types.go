package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	MessageTypeMove       MessageType = "move"
	MessageTypePass       MessageType = "pass"
	MessageTypeReset      MessageType = "reset"
	MessageTypeCPU        MessageType = "cpu"
	MessageTypeValidMoves MessageType = "validMoves"
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeMatchFound MessageType = "matchFound"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage marshals payload into a message envelope.
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}

// ErrorMessage builds the envelope sent to a client whose request failed.
func ErrorMessage(msg string) Message {
	raw, _ := json.Marshal(map[string]string{"error": msg})
	return Message{Type: MessageTypeError, Payload: raw}
}
