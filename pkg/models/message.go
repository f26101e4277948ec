package models

import (
	"time"

	"github.com/google/uuid"
)

// Message types exchanged between the orchestrator and workers.
const (
	// MessageTypeRequest is a generic request expecting a correlated response.
	MessageTypeRequest = "request"
	// MessageTypeTaskExecution is a request carrying a task to execute.
	MessageTypeTaskExecution = "task_execution"
	// MessageTypeResponse is a successful reply to a request.
	MessageTypeResponse = "response"
	// MessageTypeError is an error reply to a request.
	MessageTypeError = "error"
)

// Message is an event exchanged between the orchestrator and workers over
// the broker. Messages are ephemeral: they exist only as published events
// and are never persisted.
type Message struct {
	// ID is the unique identifier for this message.
	ID string `json:"message_id"`
	// SenderID identifies who published the message.
	SenderID string `json:"sender_id"`
	// ReceiverID identifies the intended recipient.
	ReceiverID string `json:"receiver_id"`
	// Content is the message payload.
	Content map[string]any `json:"content"`
	// Type classifies the message; handlers branch on it.
	Type string `json:"type"`
	// ConversationID correlates a request with its eventual response.
	ConversationID string `json:"conversation_id"`
	// Timestamp is when the message was created.
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh ID and timestamp. If
// conversationID is empty a new one is generated.
func NewMessage(senderID, receiverID string, content map[string]any, msgType, conversationID string) Message {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	return Message{
		ID:             uuid.NewString(),
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        content,
		Type:           msgType,
		ConversationID: conversationID,
		Timestamp:      time.Now(),
	}
}

// IsRequest returns true for message types that expect a correlated reply.
func (m Message) IsRequest() bool {
	return m.Type == MessageTypeRequest || m.Type == MessageTypeTaskExecution
}
