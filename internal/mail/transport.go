// Package mail defines the email transport contract consumed by the outreach
// pipeline and the Gmail-backed implementation of it.
package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/vendor-outreach/internal/types"
)

// SendRequest describes one outbound email
type SendRequest struct {
	To               string
	Subject          string
	Body             string
	ProviderThreadID string // empty for the first message of a conversation
}

// SendResult reports the transport identifiers of a sent message
type SendResult struct {
	MessageID        string
	ProviderThreadID string
}

// Transport is the opaque email service the pipeline sends and polls through.
// Send failures are transient unless wrapped in PermanentError.
type Transport interface {
	// Send delivers a message and returns the provider's message and thread ids
	Send(ctx context.Context, req SendRequest) (*SendResult, error)
	// ListUnread returns unread inbound messages for one mail account
	ListUnread(ctx context.Context, query string) ([]types.InboundEmail, error)
}

// PermanentError marks a transport failure that retrying cannot fix,
// e.g. an invalid recipient address
type PermanentError struct {
	Reason string
	Cause  error
}

func (e *PermanentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("permanent transport failure: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("permanent transport failure: %s", e.Reason)
}

func (e *PermanentError) Unwrap() error {
	return e.Cause
}

// IsPermanent reports whether err is a non-retryable transport failure
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
