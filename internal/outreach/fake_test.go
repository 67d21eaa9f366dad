package outreach

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/vendor-outreach/internal/db"
	"github.com/jonathan/vendor-outreach/internal/llm"
	"github.com/jonathan/vendor-outreach/internal/mail"
	"github.com/jonathan/vendor-outreach/internal/types"
)

// fakeStore is an in-memory Store that mirrors the conditional-update
// semantics of the real database layer
type fakeStore struct {
	mu       sync.Mutex
	vendors  map[uuid.UUID]*types.Vendor
	events   map[uuid.UUID]*types.Event
	threads  map[uuid.UUID]*types.VendorThread
	messages []*types.ThreadMessage
	logs     map[uuid.UUID][]types.AutomationStep
	timers   []*db.FollowUpTimer
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vendors: make(map[uuid.UUID]*types.Vendor),
		events:  make(map[uuid.UUID]*types.Event),
		threads: make(map[uuid.UUID]*types.VendorThread),
		logs:    make(map[uuid.UUID][]types.AutomationStep),
	}
}

func (f *fakeStore) addVendor(v *types.Vendor) { f.vendors[v.ID] = v }
func (f *fakeStore) addEvent(e *types.Event)   { f.events[e.ID] = e }

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

func (f *fakeStore) GetThreadByVendor(_ context.Context, vendorID uuid.UUID) (*types.VendorThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.threads {
		if t.VendorID == vendorID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateThread(_ context.Context, vendorID, eventID uuid.UUID) (*types.VendorThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &types.VendorThread{
		ID:        uuid.New(),
		VendorID:  vendorID,
		EventID:   eventID,
		Status:    types.StatusNotContacted,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.threads[t.ID] = t
	copied := *t
	return &copied, nil
}

func (f *fakeStore) ApproveThread(_ context.Context, threadID uuid.UUID, approvedBy string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.threads[threadID]
	if !ok || t.OutreachApproved {
		return false, nil
	}
	t.OutreachApproved = true
	t.ApprovedBy = approvedBy
	t.ApprovedAt = &now
	return true, nil
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
	t.UpdatedAt = time.Now()
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

func (f *fakeStore) ArmTimer(_ context.Context, threadID uuid.UUID, fireAt time.Time, attempt int) (*db.FollowUpTimer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &db.FollowUpTimer{ID: uuid.New(), ThreadID: threadID, FireAt: fireAt, Attempt: attempt}
	f.timers = append(f.timers, t)
	return t, nil
}

func (f *fakeStore) GetMessageByDedupKey(_ context.Context, dedupKey string) (*types.ThreadMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.DedupKey == dedupKey {
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

func (f *fakeStore) threadByVendor(vendorID uuid.UUID) *types.VendorThread {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.threads {
		if t.VendorID == vendorID {
			return t
		}
	}
	return nil
}

// fakeTransport records sends and can be told to fail
type fakeTransport struct {
	mu        sync.Mutex
	sent      []mail.SendRequest
	failTimes int   // transient failures before succeeding
	err       error // returned while failTimes > 0, or always if permanent
}

func (f *fakeTransport) Send(_ context.Context, req mail.SendRequest) (*mail.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	if f.err != nil && (f.failTimes > 0 || mail.IsPermanent(f.err)) {
		f.failTimes--
		return nil, f.err
	}
	return &mail.SendResult{
		MessageID:        uuid.NewString(),
		ProviderThreadID: "provider-thread-1",
	}, nil
}

func (f *fakeTransport) ListUnread(_ context.Context, _ string) ([]types.InboundEmail, error) {
	return nil, nil
}

func (f *fakeTransport) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakeLLM returns a canned personalization result
type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Close() error { return nil }
