// Package scheduler drives durable follow-up timers for threads waiting on
// a vendor reply.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/vendor-outreach/internal/db"
	"github.com/jonathan/vendor-outreach/internal/mail"
	"github.com/jonathan/vendor-outreach/internal/outreach"
	"github.com/jonathan/vendor-outreach/internal/types"
)

// Store is the persistence surface the scheduler needs
type Store interface {
	outreach.MessageStore
	DueTimers(ctx context.Context, now time.Time) ([]db.FollowUpTimer, error)
	MarkTimerFired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	ArmTimer(ctx context.Context, threadID uuid.UUID, fireAt time.Time, attempt int) (*db.FollowUpTimer, error)
	GetThread(ctx context.Context, id uuid.UUID) (*types.VendorThread, error)
	GetVendor(ctx context.Context, id uuid.UUID) (*types.Vendor, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*types.Event, error)
	TransitionThread(ctx context.Context, id uuid.UUID, from, to types.ThreadStatus, m db.ThreadMutation) (bool, error)
	AppendLog(ctx context.Context, threadID uuid.UUID, stepType types.StepType, details map[string]any) (*types.AutomationStep, error)
}

// Config bounds the follow-up sequence
type Config struct {
	// MaxFollowUps caps automated nudges per thread; the last one is the
	// breakup message
	MaxFollowUps int
	// NextFollowUpDelay spaces follow-ups after the first
	NextFollowUpDelay time.Duration
}

// DefaultConfig returns the default follow-up policy
func DefaultConfig() Config {
	return Config{
		MaxFollowUps:      2,
		NextFollowUpDelay: 96 * time.Hour,
	}
}

// Scheduler fires due timers and sends reminder or breakup messages
type Scheduler struct {
	store  Store
	sender *outreach.Sender
	cfg    Config
}

// New creates a scheduler over the given store and transport
func New(store Store, transport mail.Transport, cfg Config) *Scheduler {
	if cfg.MaxFollowUps <= 0 {
		cfg = DefaultConfig()
	}
	return &Scheduler{store: store, sender: outreach.NewSender(store, transport), cfg: cfg}
}

// Arm durably schedules a follow-up check
func (s *Scheduler) Arm(ctx context.Context, threadID uuid.UUID, fireAt time.Time, attempt int) error {
	_, err := s.store.ArmTimer(ctx, threadID, fireAt, attempt)
	return err
}

// Tick processes every due unfired timer. A timer whose thread has moved on
// from WAITING is consumed silently; cancellation is implicit in the status
// check at fire time. One timer's failure does not block the rest.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) error {
	timers, err := s.store.DueTimers(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to load due timers: %w", err)
	}

	for _, timer := range timers {
		claimed, err := s.store.MarkTimerFired(ctx, timer.ID, now)
		if err != nil {
			return err
		}
		if !claimed {
			continue
		}
		if err := s.fire(ctx, &timer, now); err != nil {
			fmt.Printf("Warning: follow-up for thread %s failed: %v\n", timer.ThreadID, err)
		}
	}
	return nil
}

func (s *Scheduler) fire(ctx context.Context, timer *db.FollowUpTimer, now time.Time) error {
	thread, err := s.store.GetThread(ctx, timer.ThreadID)
	if err != nil {
		return err
	}
	if thread == nil || thread.Status != types.StatusWaiting {
		return nil
	}
	if thread.FollowUpCount >= s.cfg.MaxFollowUps {
		return nil
	}

	vendor, err := s.store.GetVendor(ctx, thread.VendorID)
	if err != nil {
		return err
	}
	if vendor == nil {
		return fmt.Errorf("vendor %s not found", thread.VendorID)
	}
	event, err := s.store.GetEvent(ctx, thread.EventID)
	if err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("event %s not found", thread.EventID)
	}

	final := timer.Attempt >= s.cfg.MaxFollowUps

	var body string
	if final {
		body = BreakupMessage(vendor.ContactName, event.Name)
	} else {
		body = ReminderMessage(vendor.ContactName, event.Name)
	}

	if _, err := s.store.AppendLog(ctx, thread.ID, types.StepFollowUp, map[string]any{
		"attempt": timer.Attempt,
		"final":   final,
	}); err != nil {
		return err
	}

	dedupKey := fmt.Sprintf("followup:%s:%d", thread.ID, timer.Attempt)
	_, _, err = s.sender.Send(ctx, thread.ID, types.SenderSystem, mail.SendRequest{
		To:               vendor.ContactEmail,
		Subject:          "Re: " + outreach.FirstMessageSubject(event.Name, vendor.Category),
		Body:             body,
		ProviderThreadID: thread.ProviderThreadID,
	}, dedupKey)
	if err != nil {
		return err
	}

	if final {
		_, err = s.store.TransitionThread(ctx, thread.ID, types.StatusWaiting, types.StatusRejected, db.ThreadMutation{
			IncrementFollowUp: true,
			LastTouch:         &now,
		})
		return err
	}

	ok, err := s.store.TransitionThread(ctx, thread.ID, types.StatusWaiting, types.StatusWaiting, db.ThreadMutation{
		IncrementFollowUp: true,
		LastTouch:         &now,
	})
	if err != nil {
		return err
	}
	if !ok {
		// The vendor replied while we were sending; the reply pipeline owns
		// the thread now.
		return nil
	}

	return s.Arm(ctx, thread.ID, now.Add(s.cfg.NextFollowUpDelay), timer.Attempt+1)
}
