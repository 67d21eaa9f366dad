package outreach

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/vendor-outreach/internal/mail"
	"github.com/jonathan/vendor-outreach/internal/types"
)

func seedVendor(store *fakeStore) *types.Vendor {
	event := &types.Event{
		ID:   uuid.New(),
		Name: "Hamilton Wedding",
		Constraints: types.EventConstraints{
			Headcount:          120,
			BudgetCeilingCents: 500000,
			BudgetFlexPercent:  10,
			PreferredDates: []types.PreferredDate{
				{Date: "2026-10-17", FlexDays: 1},
			},
		},
	}
	vendor := &types.Vendor{
		ID:           uuid.New(),
		EventID:      event.ID,
		Name:         "Maple & Thyme Catering",
		Category:     "catering",
		ContactName:  "Dana",
		ContactEmail: "dana@maplethyme.example",
	}
	store.addEvent(event)
	store.addVendor(vendor)
	return vendor
}

func TestApproveDispatchesOutreach(t *testing.T) {
	store := newFakeStore()
	transport := &fakeTransport{}
	vendor := seedVendor(store)

	d := NewDispatcher(store, transport, nil, DefaultConfig())

	res, err := d.Approve(context.Background(), vendor.ID, "planner@example.com")
	require.NoError(t, err)
	assert.True(t, res.Dispatched)
	assert.False(t, res.AlreadyApproved)

	thread := store.threadByVendor(vendor.ID)
	require.NotNil(t, thread)
	assert.Equal(t, types.StatusWaiting, thread.Status)
	assert.Equal(t, "provider-thread-1", thread.ProviderThreadID)
	assert.NotNil(t, thread.LastTouch)

	assert.Equal(t, 1, transport.sendCount())
	assert.Equal(t, "dana@maplethyme.example", transport.sent[0].To)
	assert.Contains(t, transport.sent[0].Body, "Hamilton Wedding")
	assert.Contains(t, transport.sent[0].Body, "2026-10-17")

	// Approval enters the trail before the outreach send.
	steps := store.logs[thread.ID]
	require.Len(t, steps, 2)
	assert.Equal(t, types.StepApproval, steps[0].Type)
	assert.Equal(t, "planner@example.com", steps[0].Details["approved_by"])
	assert.Equal(t, types.StepOutreach, steps[1].Type)

	require.Len(t, store.timers, 1)
	assert.Equal(t, 1, store.timers[0].Attempt)
	assert.WithinDuration(t, time.Now().Add(72*time.Hour), store.timers[0].FireAt, time.Minute)
}

func TestApproveIsIdempotent(t *testing.T) {
	store := newFakeStore()
	transport := &fakeTransport{}
	vendor := seedVendor(store)

	d := NewDispatcher(store, transport, nil, DefaultConfig())

	_, err := d.Approve(context.Background(), vendor.ID, "planner@example.com")
	require.NoError(t, err)

	res, err := d.Approve(context.Background(), vendor.ID, "planner@example.com")
	require.NoError(t, err)
	assert.True(t, res.AlreadyApproved)
	assert.False(t, res.Dispatched)

	assert.Equal(t, 1, transport.sendCount())

	thread := store.threadByVendor(vendor.ID)
	approvals := 0
	for _, s := range store.logs[thread.ID] {
		if s.Type == types.StepApproval {
			approvals++
		}
	}
	assert.Equal(t, 1, approvals)
}

func TestStartRequiresApproval(t *testing.T) {
	store := newFakeStore()
	transport := &fakeTransport{}
	vendor := seedVendor(store)

	d := NewDispatcher(store, transport, nil, DefaultConfig())

	res, err := d.Start(context.Background(), vendor.ID)
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Equal(t, "outreach not approved", res.Skipped)
	assert.Equal(t, 0, transport.sendCount())
}

func TestStartSkipsContactedVendor(t *testing.T) {
	store := newFakeStore()
	transport := &fakeTransport{}
	vendor := seedVendor(store)

	d := NewDispatcher(store, transport, nil, DefaultConfig())

	_, err := d.Approve(context.Background(), vendor.ID, "planner@example.com")
	require.NoError(t, err)

	res, err := d.Start(context.Background(), vendor.ID)
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Equal(t, "vendor already contacted", res.Skipped)
	assert.Equal(t, 1, transport.sendCount())
}

func TestStartUnknownVendor(t *testing.T) {
	store := newFakeStore()
	d := NewDispatcher(store, &fakeTransport{}, nil, DefaultConfig())

	_, err := d.Start(context.Background(), uuid.New())
	require.Error(t, err)

	var notFound *VendorNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestStartPermanentFailureEscalates(t *testing.T) {
	store := newFakeStore()
	transport := &fakeTransport{
		err: &mail.PermanentError{Reason: "address rejected"},
	}
	vendor := seedVendor(store)

	d := NewDispatcher(store, transport, nil, DefaultConfig())

	_, err := d.Approve(context.Background(), vendor.ID, "planner@example.com")
	require.Error(t, err)

	// One attempt, no retries on a permanent rejection.
	assert.Equal(t, 1, transport.sendCount())

	thread := store.threadByVendor(vendor.ID)
	require.NotNil(t, thread)
	assert.Equal(t, types.StatusEscalation, thread.Status)
	require.NotNil(t, thread.EscalationCategory)
	assert.Equal(t, types.EscalationCustom, *thread.EscalationCategory)
	assert.NotEmpty(t, thread.EscalationReason)
}

func TestBulkApproveContinuesOnFailure(t *testing.T) {
	store := newFakeStore()
	transport := &fakeTransport{}
	vendor := seedVendor(store)
	missing := uuid.New()

	d := NewDispatcher(store, transport, nil, DefaultConfig())

	results := d.BulkApprove(context.Background(), []uuid.UUID{missing, vendor.ID}, "planner@example.com")
	require.Len(t, results, 2)
	assert.NotEmpty(t, results[0].Error)
	assert.True(t, results[1].Dispatched)
	assert.Equal(t, 1, transport.sendCount())
}

func TestPersonalizedFirstMessage(t *testing.T) {
	store := newFakeStore()
	transport := &fakeTransport{}
	vendor := seedVendor(store)

	d := NewDispatcher(store, transport, &fakeLLM{response: "Hi Dana, loved your seasonal menus!"}, DefaultConfig())

	_, err := d.Approve(context.Background(), vendor.ID, "planner@example.com")
	require.NoError(t, err)

	require.Equal(t, 1, transport.sendCount())
	assert.Equal(t, "Hi Dana, loved your seasonal menus!", transport.sent[0].Body)
}

func TestPersonalizationFallsBackToTemplate(t *testing.T) {
	store := newFakeStore()
	transport := &fakeTransport{}
	vendor := seedVendor(store)

	d := NewDispatcher(store, transport, &fakeLLM{err: errors.New("quota exceeded")}, DefaultConfig())

	_, err := d.Approve(context.Background(), vendor.ID, "planner@example.com")
	require.NoError(t, err)

	require.Equal(t, 1, transport.sendCount())
	assert.Contains(t, transport.sent[0].Body, "Hamilton Wedding")
	assert.Contains(t, transport.sent[0].Body, "120")
}
