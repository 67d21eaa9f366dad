package inbound

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/vendor-outreach/internal/types"
)

func TestMatch_ByProviderThreadID(t *testing.T) {
	store := newFakeStore()
	thread := seedThread(store)

	got, err := Match(context.Background(), store, &types.InboundEmail{
		ProviderMessageID: "msg-1",
		ProviderThreadID:  "prov-thread-1",
		From:              "someone-else@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, thread.ID, got.ID)
}

func TestMatch_FallsBackToSenderAddress(t *testing.T) {
	store := newFakeStore()
	thread := seedThread(store)

	got, err := Match(context.Background(), store, &types.InboundEmail{
		ProviderMessageID: "msg-2",
		From:              "studio@goldenhour.example",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, thread.ID, got.ID)
}

func TestMatch_SenderFallbackOnlyMatchesWaiting(t *testing.T) {
	store := newFakeStore()
	thread := seedThread(store)
	store.threads[thread.ID].Status = types.StatusRejected

	got, err := Match(context.Background(), store, &types.InboundEmail{
		ProviderMessageID: "msg-3",
		From:              "studio@goldenhour.example",
	})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Len(t, store.unmatched, 1)
}

func TestMatch_UnknownSenderRecorded(t *testing.T) {
	store := newFakeStore()
	seedThread(store)

	got, err := Match(context.Background(), store, &types.InboundEmail{
		ProviderMessageID: "msg-4",
		From:              "stranger@example.com",
	})
	require.NoError(t, err)
	assert.Nil(t, got)
	require.Len(t, store.unmatched, 1)
	assert.Equal(t, "msg-4", store.unmatched[0].ProviderMessageID)
	assert.False(t, store.unmatched[0].ReceivedAt.IsZero())
}
