package types

import (
	"time"

	"github.com/google/uuid"
)

// MessageSender identifies who authored a thread message
type MessageSender string

// Message sender constants
const (
	SenderSystem MessageSender = "SYSTEM"
	SenderVendor MessageSender = "VENDOR"
	SenderHuman  MessageSender = "HUMAN"
)

// ThreadMessage is one email persisted against a conversation thread.
// DedupKey is set on automated outbound sends and is the idempotence guard:
// a retried send step checks for an existing message with the same key
// before calling the transport again.
type ThreadMessage struct {
	ID                uuid.UUID     `json:"id"`
	ThreadID          uuid.UUID     `json:"thread_id"`
	Sender            MessageSender `json:"sender"`
	Inbound           bool          `json:"inbound"`
	Subject           string        `json:"subject"`
	Body              string        `json:"body"`
	ProviderMessageID string        `json:"provider_message_id,omitempty"`
	DedupKey          string        `json:"dedup_key,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

// InboundEmail is a raw message delivered by the email transport before it
// is matched to a thread
type InboundEmail struct {
	ProviderMessageID string    `json:"provider_message_id"`
	ProviderThreadID  string    `json:"provider_thread_id,omitempty"`
	From              string    `json:"from"`
	To                string    `json:"to"`
	Subject           string    `json:"subject"`
	Body              string    `json:"body"`
	HTML              bool      `json:"html,omitempty"`
	ReceivedAt        time.Time `json:"received_at"`
}
