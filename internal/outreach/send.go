// Package outreach initiates vendor conversations: it renders and sends the
// first message once a human has approved contact, and owns the shared
// retrying email sender used by every outbound step.
package outreach

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/vendor-outreach/internal/db"
	"github.com/jonathan/vendor-outreach/internal/mail"
	"github.com/jonathan/vendor-outreach/internal/types"
)

const (
	// maxSendAttempts bounds transport retries for one logical send
	maxSendAttempts = 3
	// retryBaseDelay grows linearly per attempt
	retryBaseDelay = 500 * time.Millisecond
)

// MessageStore is the subset of the store the sender needs for idempotence
type MessageStore interface {
	GetMessageByDedupKey(ctx context.Context, dedupKey string) (*types.ThreadMessage, error)
	InsertMessage(ctx context.Context, input *db.MessageInput) (*types.ThreadMessage, error)
}

// Sender delivers outbound emails with bounded retries and a dedup guard so
// a retried step never double-sends
type Sender struct {
	store     MessageStore
	transport mail.Transport
}

// NewSender creates a Sender over the given store and transport
func NewSender(store MessageStore, transport mail.Transport) *Sender {
	return &Sender{store: store, transport: transport}
}

// Send delivers one message for a thread. If a message with the same dedup
// key was already recorded, the recorded message is returned without calling
// the transport: the earlier attempt's send already happened (or is treated
// as having happened, since the record precedes our knowledge of delivery).
// Transient failures are retried up to maxSendAttempts; permanent failures
// return immediately.
func (s *Sender) Send(ctx context.Context, threadID uuid.UUID, sender types.MessageSender, req mail.SendRequest, dedupKey string) (*types.ThreadMessage, *mail.SendResult, error) {
	if dedupKey != "" {
		existing, err := s.store.GetMessageByDedupKey(ctx, dedupKey)
		if err != nil {
			return nil, nil, err
		}
		if existing != nil {
			return existing, &mail.SendResult{
				MessageID:        existing.ProviderMessageID,
				ProviderThreadID: req.ProviderThreadID,
			}, nil
		}
	}

	var result *mail.SendResult
	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		result, lastErr = s.transport.Send(ctx, req)
		if lastErr == nil {
			break
		}
		if mail.IsPermanent(lastErr) || ctx.Err() != nil {
			return nil, nil, lastErr
		}
		if attempt < maxSendAttempts {
			select {
			case <-time.After(retryBaseDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			}
		}
	}
	if lastErr != nil {
		return nil, nil, fmt.Errorf("send failed after %d attempts: %w", maxSendAttempts, lastErr)
	}

	msg, err := s.store.InsertMessage(ctx, &db.MessageInput{
		ThreadID:          threadID,
		Sender:            sender,
		Inbound:           false,
		Subject:           req.Subject,
		Body:              req.Body,
		ProviderMessageID: result.MessageID,
		DedupKey:          dedupKey,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record sent message: %w", err)
	}

	return msg, result, nil
}
