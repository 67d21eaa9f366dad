package inbound

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/vendor-outreach/internal/db"
	"github.com/jonathan/vendor-outreach/internal/mail"
	"github.com/jonathan/vendor-outreach/internal/types"
)

type fakeStore struct {
	mu        sync.Mutex
	vendors   map[uuid.UUID]*types.Vendor
	events    map[uuid.UUID]*types.Event
	threads   map[uuid.UUID]*types.VendorThread
	messages  []*types.ThreadMessage
	parsed    []*types.ParsedResponse
	decisions []*types.Decision
	logs      map[uuid.UUID][]types.AutomationStep
	unmatched []*types.InboundEmail
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vendors: make(map[uuid.UUID]*types.Vendor),
		events:  make(map[uuid.UUID]*types.Event),
		threads: make(map[uuid.UUID]*types.VendorThread),
		logs:    make(map[uuid.UUID][]types.AutomationStep),
	}
}

func (f *fakeStore) GetThreadByProviderThreadID(_ context.Context, providerThreadID string) (*types.VendorThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.threads {
		if t.ProviderThreadID == providerThreadID && providerThreadID != "" {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindWaitingThreadBySender(_ context.Context, fromAddress string) (*types.VendorThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.threads {
		v := f.vendors[t.VendorID]
		if v != nil && v.ContactEmail == fromAddress && t.Status == types.StatusWaiting {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) InsertUnmatchedMessage(_ context.Context, email *types.InboundEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unmatched = append(f.unmatched, email)
	return nil
}

func (f *fakeStore) GetVendor(_ context.Context, id uuid.UUID) (*types.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vendors[id], nil
}

func (f *fakeStore) GetEvent(_ context.Context, id uuid.UUID) (*types.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[id], nil
}

func (f *fakeStore) GetMessageByDedupKey(_ context.Context, dedupKey string) (*types.ThreadMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.DedupKey == dedupKey && dedupKey != "" {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) InsertMessage(_ context.Context, input *db.MessageInput) (*types.ThreadMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := &types.ThreadMessage{
		ID:                uuid.New(),
		ThreadID:          input.ThreadID,
		Sender:            input.Sender,
		Inbound:           input.Inbound,
		Subject:           input.Subject,
		Body:              input.Body,
		ProviderMessageID: input.ProviderMessageID,
		DedupKey:          input.DedupKey,
		CreatedAt:         time.Now(),
	}
	f.messages = append(f.messages, m)
	return m, nil
}

func (f *fakeStore) InsertParsedResponse(_ context.Context, threadID, messageID uuid.UUID, facts *types.ParsedFacts, rawOutput string) (*types.ParsedResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &types.ParsedResponse{
		ID:           uuid.New(),
		ThreadID:     threadID,
		MessageID:    messageID,
		Availability: facts.Availability,
		Quote:        facts.Quote,
		Inclusions:   facts.Inclusions,
		Questions:    facts.Questions,
		Sentiment:    facts.Sentiment,
		Confidence:   facts.Confidence,
		RawOutput:    rawOutput,
		CreatedAt:    time.Now(),
	}
	f.parsed = append(f.parsed, p)
	return p, nil
}

func (f *fakeStore) InsertDecision(_ context.Context, d *types.Decision) (*types.Decision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *d
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	f.decisions = append(f.decisions, &stored)
	return &stored, nil
}

func (f *fakeStore) TransitionThread(_ context.Context, id uuid.UUID, from, to types.ThreadStatus, m db.ThreadMutation) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.threads[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	if m.Decision != nil {
		t.Decision = m.Decision
	}
	if m.Confidence != nil {
		t.Confidence = m.Confidence
	}
	if m.EscalationReason != nil {
		t.EscalationReason = *m.EscalationReason
	}
	if m.EscalationCategory != nil {
		t.EscalationCategory = m.EscalationCategory
	}
	if m.ClearEscalation {
		t.EscalationReason = ""
		t.EscalationCategory = nil
	}
	if m.ProviderThreadID != nil {
		t.ProviderThreadID = *m.ProviderThreadID
	}
	if m.LastTouch != nil {
		t.LastTouch = m.LastTouch
	}
	if m.IncrementFollowUp {
		t.FollowUpCount++
	}
	return true, nil
}

func (f *fakeStore) AppendLog(_ context.Context, threadID uuid.UUID, stepType types.StepType, details map[string]any) (*types.AutomationStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	step := types.AutomationStep{
		ThreadID:  threadID,
		Seq:       len(f.logs[threadID]) + 1,
		Type:      stepType,
		Details:   details,
		CreatedAt: time.Now(),
	}
	f.logs[threadID] = append(f.logs[threadID], step)
	return &step, nil
}

// fakeExtractor returns canned facts
type fakeExtractor struct {
	facts *types.ParsedFacts
	raw   string

	lastInput       string
	lastConstraints *types.EventConstraints
}

func (f *fakeExtractor) Extract(_ context.Context, rawEmailText string, constraints *types.EventConstraints) (*types.ParsedFacts, string) {
	f.lastInput = rawEmailText
	f.lastConstraints = constraints
	return f.facts, f.raw
}

// fakeTransport records sends and serves canned unread messages
type fakeTransport struct {
	mu      sync.Mutex
	sent    []mail.SendRequest
	sendErr error
	unread  []types.InboundEmail
	listErr error
}

func (f *fakeTransport) Send(_ context.Context, req mail.SendRequest) (*mail.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &mail.SendResult{MessageID: uuid.NewString(), ProviderThreadID: req.ProviderThreadID}, nil
}

func (f *fakeTransport) ListUnread(_ context.Context, _ string) ([]types.InboundEmail, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.unread, nil
}
