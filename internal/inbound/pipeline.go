package inbound

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/vendor-outreach/internal/db"
	"github.com/jonathan/vendor-outreach/internal/decision"
	"github.com/jonathan/vendor-outreach/internal/mail"
	"github.com/jonathan/vendor-outreach/internal/outreach"
	"github.com/jonathan/vendor-outreach/internal/types"
)

// Extractor turns a raw vendor email into structured facts. It never fails:
// unusable input yields low-confidence facts.
type Extractor interface {
	Extract(ctx context.Context, rawEmailText string, constraints *types.EventConstraints) (*types.ParsedFacts, string)
}

// Pipeline processes one matched vendor reply end to end
type Pipeline struct {
	store     Store
	extractor Extractor
	sender    *outreach.Sender
	cfg       decision.Config

	now func() time.Time
}

// NewPipeline wires the reply pipeline
func NewPipeline(store Store, extractor Extractor, transport mail.Transport, cfg decision.Config) *Pipeline {
	return &Pipeline{
		store:     store,
		extractor: extractor,
		sender:    outreach.NewSender(store, transport),
		cfg:       cfg,
		now:       time.Now,
	}
}

// HandleInbound matches and processes one inbound email. Unmatched and
// already-processed messages are dropped without error.
func (p *Pipeline) HandleInbound(ctx context.Context, email *types.InboundEmail) error {
	thread, err := Match(ctx, p.store, email)
	if err != nil {
		return err
	}
	if thread == nil {
		return nil
	}

	// The same message shows up on every poll until processed; the dedup
	// key makes reprocessing a no-op.
	dedupKey := fmt.Sprintf("inbound:%s", email.ProviderMessageID)
	if email.ProviderMessageID != "" {
		existing, err := p.store.GetMessageByDedupKey(ctx, dedupKey)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
	}

	body := email.Body
	if email.HTML {
		body = mail.StripHTML(body)
	}

	msg, err := p.store.InsertMessage(ctx, &db.MessageInput{
		ThreadID:          thread.ID,
		Sender:            types.SenderVendor,
		Inbound:           true,
		Subject:           email.Subject,
		Body:              body,
		ProviderMessageID: email.ProviderMessageID,
		DedupKey:          dedupKey,
	})
	if err != nil {
		return fmt.Errorf("failed to record inbound message: %w", err)
	}

	event, err := p.store.GetEvent(ctx, thread.EventID)
	if err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("event %s not found for thread %s", thread.EventID, thread.ID)
	}

	facts, rawOutput := p.extractor.Extract(ctx, body, &event.Constraints)

	parsed, err := p.store.InsertParsedResponse(ctx, thread.ID, msg.ID, facts, rawOutput)
	if err != nil {
		return fmt.Errorf("failed to record parsed response: %w", err)
	}

	now := p.now()
	moved, err := p.store.TransitionThread(ctx, thread.ID, types.StatusWaiting, types.StatusParsed, db.ThreadMutation{
		Confidence: &facts.Confidence,
		LastTouch:  &now,
	})
	if err != nil {
		return err
	}
	if !moved {
		// The thread left WAITING while we worked (manual override or a
		// racing step). The reply and extraction are recorded; the verdict
		// belongs to whoever won.
		fmt.Printf("Thread %s no longer waiting, reply recorded without decision\n", thread.ID)
		return nil
	}

	verdict := decision.Evaluate(facts, &event.Constraints, p.cfg)
	verdict.ThreadID = thread.ID
	verdict.ParsedResponseID = parsed.ID
	if _, err := p.store.InsertDecision(ctx, verdict); err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}

	return p.applyVerdict(ctx, thread, event, parsed.ID.String(), verdict)
}

// applyVerdict moves the thread out of PARSED according to the decision.
// The DECISION log entry precedes every side effect.
func (p *Pipeline) applyVerdict(ctx context.Context, thread *types.VendorThread, event *types.Event, parsedID string, verdict *types.Decision) error {
	if _, err := p.store.AppendLog(ctx, thread.ID, types.StepDecision, map[string]any{
		"outcome": string(verdict.Outcome),
		"reason":  verdict.Reason,
	}); err != nil {
		return err
	}

	now := p.now()

	switch {
	case verdict.ShouldEscalate():
		_, err := p.store.TransitionThread(ctx, thread.ID, types.StatusParsed, types.StatusEscalation, db.ThreadMutation{
			Decision:           &verdict.Outcome,
			EscalationReason:   &verdict.Reason,
			EscalationCategory: verdict.EscalationCategory,
			LastTouch:          &now,
		})
		if err != nil {
			return err
		}
		_, err = p.store.AppendLog(ctx, thread.ID, types.StepEscalation, map[string]any{
			"category": categoryString(verdict.EscalationCategory),
			"reason":   verdict.Reason,
		})
		return err

	case verdict.ShouldAutoRespond():
		return p.autoRespond(ctx, thread, event, parsedID, verdict, now)

	case verdict.Outcome == types.OutcomeViable:
		_, err := p.store.TransitionThread(ctx, thread.ID, types.StatusParsed, types.StatusViable, db.ThreadMutation{
			Decision:  &verdict.Outcome,
			LastTouch: &now,
		})
		return err

	default:
		// NEGOTIATE and anything unrecognized goes to a human.
		reason := fmt.Sprintf("outcome %s requires human review: %s", verdict.Outcome, verdict.Reason)
		category := types.EscalationCustom
		_, err := p.store.TransitionThread(ctx, thread.ID, types.StatusParsed, types.StatusEscalation, db.ThreadMutation{
			Decision:           &verdict.Outcome,
			EscalationReason:   &reason,
			EscalationCategory: &category,
			LastTouch:          &now,
		})
		return err
	}
}

// autoRespond sends the decision's draft (a polite decline) and closes the
// thread. A permanent delivery failure escalates instead of failing the poll.
func (p *Pipeline) autoRespond(ctx context.Context, thread *types.VendorThread, event *types.Event, parsedID string, verdict *types.Decision, now time.Time) error {
	vendor, err := p.store.GetVendor(ctx, thread.VendorID)
	if err != nil {
		return err
	}
	if vendor == nil {
		return fmt.Errorf("vendor %s not found for thread %s", thread.VendorID, thread.ID)
	}

	_, _, err = p.sender.Send(ctx, thread.ID, types.SenderSystem, mail.SendRequest{
		To:               vendor.ContactEmail,
		Subject:          "Re: " + outreach.FirstMessageSubject(event.Name, vendor.Category),
		Body:             verdict.ProposedNextAction,
		ProviderThreadID: thread.ProviderThreadID,
	}, fmt.Sprintf("autoresponse:%s", parsedID))
	if err != nil {
		if mail.IsPermanent(err) {
			reason := fmt.Sprintf("auto-response could not be delivered: %v", err)
			category := types.EscalationCustom
			_, terr := p.store.TransitionThread(ctx, thread.ID, types.StatusParsed, types.StatusEscalation, db.ThreadMutation{
				Decision:           &verdict.Outcome,
				EscalationReason:   &reason,
				EscalationCategory: &category,
				LastTouch:          &now,
			})
			if terr != nil {
				return terr
			}
			_, terr = p.store.AppendLog(ctx, thread.ID, types.StepEscalation, map[string]any{
				"reason": reason,
			})
			return terr
		}
		return err
	}

	if _, err := p.store.AppendLog(ctx, thread.ID, types.StepAutoResponse, map[string]any{
		"to": vendor.ContactEmail,
	}); err != nil {
		return err
	}

	_, err = p.store.TransitionThread(ctx, thread.ID, types.StatusParsed, types.StatusRejected, db.ThreadMutation{
		Decision:  &verdict.Outcome,
		LastTouch: &now,
	})
	return err
}

func categoryString(c *types.EscalationCategory) string {
	if c == nil {
		return ""
	}
	return string(*c)
}
