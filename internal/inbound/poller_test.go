package inbound

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/vendor-outreach/internal/types"
)

func TestPoll_ProcessesAllAccounts(t *testing.T) {
	healthy := &fakeTransport{unread: []types.InboundEmail{
		{ProviderMessageID: "a-1", From: "one@example.com"},
		{ProviderMessageID: "a-2", From: "two@example.com"},
	}}
	alsoHealthy := &fakeTransport{unread: []types.InboundEmail{
		{ProviderMessageID: "b-1", From: "three@example.com"},
	}}

	var mu sync.Mutex
	var seen []string
	p := &Poller{
		accounts: []Account{
			{ID: "planner@example.com", Transport: healthy},
			{ID: "backup@example.com", Transport: alsoHealthy},
		},
		handle: func(_ context.Context, email *types.InboundEmail) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, email.ProviderMessageID)
			return nil
		},
	}

	require.NoError(t, p.Poll(context.Background()))
	assert.ElementsMatch(t, []string{"a-1", "a-2", "b-1"}, seen)
}

func TestPoll_AccountFailureDoesNotStopOthers(t *testing.T) {
	broken := &fakeTransport{listErr: errors.New("token expired")}
	healthy := &fakeTransport{unread: []types.InboundEmail{
		{ProviderMessageID: "ok-1", From: "one@example.com"},
	}}

	var mu sync.Mutex
	var seen []string
	p := &Poller{
		accounts: []Account{
			{ID: "broken@example.com", Transport: broken},
			{ID: "healthy@example.com", Transport: healthy},
		},
		handle: func(_ context.Context, email *types.InboundEmail) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, email.ProviderMessageID)
			return nil
		},
	}

	require.NoError(t, p.Poll(context.Background()))
	assert.Equal(t, []string{"ok-1"}, seen)
}

func TestPoll_HandlerErrorIsContained(t *testing.T) {
	transport := &fakeTransport{unread: []types.InboundEmail{
		{ProviderMessageID: "bad-1"},
		{ProviderMessageID: "good-1"},
	}}

	var mu sync.Mutex
	var seen []string
	p := &Poller{
		accounts: []Account{{ID: "planner@example.com", Transport: transport}},
		handle: func(_ context.Context, email *types.InboundEmail) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, email.ProviderMessageID)
			if email.ProviderMessageID == "bad-1" {
				return errors.New("extraction store down")
			}
			return nil
		},
	}

	require.NoError(t, p.Poll(context.Background()))
	assert.Equal(t, []string{"bad-1", "good-1"}, seen)
}
