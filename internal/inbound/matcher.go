// Package inbound matches vendor replies to threads and runs the parse ->
// decide -> act pipeline on them.
package inbound

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/vendor-outreach/internal/db"
	"github.com/jonathan/vendor-outreach/internal/types"
)

// Store is the persistence surface the inbound pipeline needs
type Store interface {
	GetThreadByProviderThreadID(ctx context.Context, providerThreadID string) (*types.VendorThread, error)
	FindWaitingThreadBySender(ctx context.Context, fromAddress string) (*types.VendorThread, error)
	InsertUnmatchedMessage(ctx context.Context, email *types.InboundEmail) error
	GetVendor(ctx context.Context, id uuid.UUID) (*types.Vendor, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*types.Event, error)
	GetMessageByDedupKey(ctx context.Context, dedupKey string) (*types.ThreadMessage, error)
	InsertMessage(ctx context.Context, input *db.MessageInput) (*types.ThreadMessage, error)
	InsertParsedResponse(ctx context.Context, threadID, messageID uuid.UUID, facts *types.ParsedFacts, rawOutput string) (*types.ParsedResponse, error)
	InsertDecision(ctx context.Context, d *types.Decision) (*types.Decision, error)
	TransitionThread(ctx context.Context, id uuid.UUID, from, to types.ThreadStatus, m db.ThreadMutation) (bool, error)
	AppendLog(ctx context.Context, threadID uuid.UUID, stepType types.StepType, details map[string]any) (*types.AutomationStep, error)
}

// Match resolves an inbound email to its thread. The provider thread id is
// authoritative; when absent or unknown the sender address is tried against
// threads still waiting on a reply. An unmatched email is recorded and
// dropped: nil result, no error, nothing sent back to the sender.
func Match(ctx context.Context, store Store, email *types.InboundEmail) (*types.VendorThread, error) {
	if email.ProviderThreadID != "" {
		thread, err := store.GetThreadByProviderThreadID(ctx, email.ProviderThreadID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up thread by provider id: %w", err)
		}
		if thread != nil {
			return thread, nil
		}
	}

	thread, err := store.FindWaitingThreadBySender(ctx, email.From)
	if err != nil {
		return nil, fmt.Errorf("failed to look up thread by sender: %w", err)
	}
	if thread != nil {
		return thread, nil
	}

	if email.ReceivedAt.IsZero() {
		email.ReceivedAt = time.Now()
	}
	if err := store.InsertUnmatchedMessage(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to record unmatched message: %w", err)
	}
	fmt.Printf("Warning: no thread matched inbound message %s from %s\n",
		email.ProviderMessageID, email.From)
	return nil, nil
}
