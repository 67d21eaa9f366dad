package outreach

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/vendor-outreach/internal/db"
	"github.com/jonathan/vendor-outreach/internal/llm"
	"github.com/jonathan/vendor-outreach/internal/mail"
	"github.com/jonathan/vendor-outreach/internal/types"
)

// VendorNotFoundError indicates the referenced vendor does not exist
type VendorNotFoundError struct {
	VendorID uuid.UUID
}

func (e *VendorNotFoundError) Error() string {
	return fmt.Sprintf("vendor not found: %s", e.VendorID)
}

// Store is the persistence surface the dispatcher needs
type Store interface {
	MessageStore
	GetVendor(ctx context.Context, id uuid.UUID) (*types.Vendor, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*types.Event, error)
	GetThreadByVendor(ctx context.Context, vendorID uuid.UUID) (*types.VendorThread, error)
	CreateThread(ctx context.Context, vendorID, eventID uuid.UUID) (*types.VendorThread, error)
	ApproveThread(ctx context.Context, threadID uuid.UUID, approvedBy string, now time.Time) (bool, error)
	TransitionThread(ctx context.Context, id uuid.UUID, from, to types.ThreadStatus, m db.ThreadMutation) (bool, error)
	AppendLog(ctx context.Context, threadID uuid.UUID, stepType types.StepType, details map[string]any) (*types.AutomationStep, error)
	ArmTimer(ctx context.Context, threadID uuid.UUID, fireAt time.Time, attempt int) (*db.FollowUpTimer, error)
}

// Config holds dispatcher timing
type Config struct {
	// FirstFollowUpDelay is how long after the first send the follow-up
	// timer fires
	FirstFollowUpDelay time.Duration
}

// DefaultConfig returns the default dispatcher configuration
func DefaultConfig() Config {
	return Config{FirstFollowUpDelay: 72 * time.Hour}
}

// Dispatcher starts vendor conversations. An optional LLM client
// personalizes the first message; without one the deterministic template
// is used.
type Dispatcher struct {
	store  Store
	sender *Sender
	llm    llm.Client // optional
	cfg    Config

	now func() time.Time
}

// NewDispatcher creates a dispatcher. llmClient may be nil.
func NewDispatcher(store Store, transport mail.Transport, llmClient llm.Client, cfg Config) *Dispatcher {
	if cfg.FirstFollowUpDelay <= 0 {
		cfg = DefaultConfig()
	}
	return &Dispatcher{
		store:  store,
		sender: NewSender(store, transport),
		llm:    llmClient,
		cfg:    cfg,
		now:    time.Now,
	}
}

// StartResult reports what Start did
type StartResult struct {
	Sent    bool   `json:"sent"`
	Skipped string `json:"skipped,omitempty"` // non-empty when Start was a no-op
	Thread  *types.VendorThread
}

// Start sends the first inquiry for a vendor. It is a normal, explicit skip
// (not an error) when outreach has not been approved or the vendor was
// already contacted.
func (d *Dispatcher) Start(ctx context.Context, vendorID uuid.UUID) (*StartResult, error) {
	vendor, err := d.store.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, &VendorNotFoundError{VendorID: vendorID}
	}

	thread, err := d.store.GetThreadByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		thread, err = d.store.CreateThread(ctx, vendorID, vendor.EventID)
		if err != nil {
			return nil, err
		}
	}

	if !thread.OutreachApproved {
		return &StartResult{Skipped: "outreach not approved", Thread: thread}, nil
	}
	if thread.Status != types.StatusNotContacted {
		return &StartResult{Skipped: "vendor already contacted", Thread: thread}, nil
	}

	event, err := d.store.GetEvent(ctx, vendor.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, fmt.Errorf("event %s not found for vendor %s", vendor.EventID, vendorID)
	}

	body, err := d.renderFirstMessage(ctx, vendor, event)
	if err != nil {
		return nil, err
	}
	subject := FirstMessageSubject(event.Name, vendor.Category)

	// The audit trail records the attempt before the send so a transport
	// failure still leaves a trace of what the automation tried to do.
	if _, err := d.store.AppendLog(ctx, thread.ID, types.StepOutreach, map[string]any{
		"to":      vendor.ContactEmail,
		"subject": subject,
	}); err != nil {
		return nil, err
	}

	dedupKey := fmt.Sprintf("outreach:%s", thread.ID)
	_, result, err := d.sender.Send(ctx, thread.ID, types.SenderSystem, mail.SendRequest{
		To:      vendor.ContactEmail,
		Subject: subject,
		Body:    body,
	}, dedupKey)
	if err != nil {
		if mail.IsPermanent(err) {
			// The address is unusable; park the thread for a human instead
			// of silently dropping the vendor.
			reason := fmt.Sprintf("outreach could not be delivered: %v", err)
			category := types.EscalationCustom
			_, _ = d.store.TransitionThread(ctx, thread.ID, types.StatusNotContacted, types.StatusEscalation, db.ThreadMutation{
				EscalationReason:   &reason,
				EscalationCategory: &category,
			})
			_, _ = d.store.AppendLog(ctx, thread.ID, types.StepEscalation, map[string]any{
				"reason": reason,
			})
		}
		return nil, err
	}

	now := d.now()
	ok, err := d.store.TransitionThread(ctx, thread.ID, types.StatusNotContacted, types.StatusWaiting, db.ThreadMutation{
		ProviderThreadID: &result.ProviderThreadID,
		LastTouch:        &now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race with another dispatch of the same vendor; the send
		// was deduped so nothing went out twice.
		return &StartResult{Skipped: "vendor already contacted", Thread: thread}, nil
	}

	if _, err := d.store.ArmTimer(ctx, thread.ID, now.Add(d.cfg.FirstFollowUpDelay), 1); err != nil {
		return nil, err
	}

	updated, err := d.store.GetThreadByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	return &StartResult{Sent: true, Thread: updated}, nil
}

// ApproveResult reports what Approve did for one vendor
type ApproveResult struct {
	VendorID        uuid.UUID `json:"vendor_id"`
	AlreadyApproved bool      `json:"already_approved"`
	Dispatched      bool      `json:"dispatched"`
	Error           string    `json:"error,omitempty"`
}

// Approve records human approval and triggers dispatch. Idempotent:
// approving an already-approved vendor is a no-op, not an error.
func (d *Dispatcher) Approve(ctx context.Context, vendorID uuid.UUID, approvedBy string) (*ApproveResult, error) {
	vendor, err := d.store.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, &VendorNotFoundError{VendorID: vendorID}
	}

	thread, err := d.store.GetThreadByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		thread, err = d.store.CreateThread(ctx, vendorID, vendor.EventID)
		if err != nil {
			return nil, err
		}
	}

	approved, err := d.store.ApproveThread(ctx, thread.ID, approvedBy, d.now())
	if err != nil {
		return nil, err
	}
	if !approved {
		return &ApproveResult{VendorID: vendorID, AlreadyApproved: true}, nil
	}

	// The approval enters the audit trail before the dispatch side effect.
	if _, err := d.store.AppendLog(ctx, thread.ID, types.StepApproval, map[string]any{
		"approved_by": approvedBy,
	}); err != nil {
		return nil, err
	}

	start, err := d.Start(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	return &ApproveResult{VendorID: vendorID, Dispatched: start.Sent}, nil
}

// BulkApprove approves a batch of vendors. One vendor's failure is recorded
// in its result and does not abort the rest.
func (d *Dispatcher) BulkApprove(ctx context.Context, vendorIDs []uuid.UUID, approvedBy string) []ApproveResult {
	results := make([]ApproveResult, 0, len(vendorIDs))
	for _, id := range vendorIDs {
		res, err := d.Approve(ctx, id, approvedBy)
		if err != nil {
			results = append(results, ApproveResult{VendorID: id, Error: err.Error()})
			continue
		}
		results = append(results, *res)
	}
	return results
}

// renderFirstMessage builds the inquiry body, preferring an LLM-personalized
// variant when a client is configured
func (d *Dispatcher) renderFirstMessage(ctx context.Context, vendor *types.Vendor, event *types.Event) (string, error) {
	data := FirstMessageData{
		ContactName: vendor.ContactName,
		VendorName:  vendor.Name,
		EventName:   event.Name,
		Category:    vendor.Category,
		Headcount:   event.Constraints.Headcount,
		Dates:       formatPreferredDates(event.Constraints.PreferredDates),
	}

	base, err := RenderFirstMessage(data)
	if err != nil {
		return "", err
	}

	if d.llm == nil {
		return base, nil
	}

	personalized, err := d.llm.GenerateContent(ctx, personalizePrompt(base, data), llm.TierAdvanced)
	if err != nil || strings.TrimSpace(personalized) == "" {
		// Personalization is best-effort; the template always works.
		fmt.Printf("Warning: message personalization failed, using template: %v\n", err)
		return base, nil
	}
	return strings.TrimSpace(personalized), nil
}

// formatPreferredDates renders preferred dates for the inquiry body
func formatPreferredDates(dates []types.PreferredDate) string {
	if len(dates) == 0 {
		return ""
	}
	parts := make([]string, 0, len(dates))
	for _, d := range dates {
		parts = append(parts, d.Date)
	}
	return strings.Join(parts, " or ")
}
