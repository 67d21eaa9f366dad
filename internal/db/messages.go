package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/vendor-outreach/internal/types"
)

// MessageInput holds the fields for inserting a thread message
type MessageInput struct {
	ThreadID          uuid.UUID
	Sender            types.MessageSender
	Inbound           bool
	Subject           string
	Body              string
	ProviderMessageID string
	DedupKey          string
}

// InsertMessage persists one thread message
func (db *DB) InsertMessage(ctx context.Context, input *MessageInput) (*types.ThreadMessage, error) {
	var m types.ThreadMessage
	var providerMessageID, dedupKey *string

	err := db.pool.QueryRow(ctx,
		`INSERT INTO thread_messages (thread_id, sender, inbound, subject, body, provider_message_id, dedup_key)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
		 RETURNING id, thread_id, sender, inbound, subject, body, provider_message_id, dedup_key, created_at`,
		input.ThreadID, input.Sender, input.Inbound, input.Subject, input.Body,
		input.ProviderMessageID, input.DedupKey,
	).Scan(&m.ID, &m.ThreadID, &m.Sender, &m.Inbound, &m.Subject, &m.Body,
		&providerMessageID, &dedupKey, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	if providerMessageID != nil {
		m.ProviderMessageID = *providerMessageID
	}
	if dedupKey != nil {
		m.DedupKey = *dedupKey
	}
	return &m, nil
}

// GetMessageByDedupKey retrieves a message by its idempotence key; returns
// nil when no send with that key was recorded. This is the guard that keeps
// a retried step from double-sending.
func (db *DB) GetMessageByDedupKey(ctx context.Context, dedupKey string) (*types.ThreadMessage, error) {
	var m types.ThreadMessage
	var providerMessageID, storedKey *string

	err := db.pool.QueryRow(ctx,
		`SELECT id, thread_id, sender, inbound, subject, body, provider_message_id, dedup_key, created_at
		 FROM thread_messages WHERE dedup_key = $1`,
		dedupKey,
	).Scan(&m.ID, &m.ThreadID, &m.Sender, &m.Inbound, &m.Subject, &m.Body,
		&providerMessageID, &storedKey, &m.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get message by dedup key: %w", err)
	}

	if providerMessageID != nil {
		m.ProviderMessageID = *providerMessageID
	}
	if storedKey != nil {
		m.DedupKey = *storedKey
	}
	return &m, nil
}

// ListMessages returns a thread's messages oldest first
func (db *DB) ListMessages(ctx context.Context, threadID uuid.UUID) ([]types.ThreadMessage, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, thread_id, sender, inbound, subject, body, provider_message_id, dedup_key, created_at
		 FROM thread_messages WHERE thread_id = $1 ORDER BY created_at`,
		threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []types.ThreadMessage
	for rows.Next() {
		var m types.ThreadMessage
		var providerMessageID, dedupKey *string
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.Sender, &m.Inbound, &m.Subject, &m.Body,
			&providerMessageID, &dedupKey, &m.CreatedAt); err != nil {
			return nil, err
		}
		if providerMessageID != nil {
			m.ProviderMessageID = *providerMessageID
		}
		if dedupKey != nil {
			m.DedupKey = *dedupKey
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// InsertUnmatchedMessage records an inbound email that matched no thread.
// Unmatched mail is logged and dropped, never silently discarded.
func (db *DB) InsertUnmatchedMessage(ctx context.Context, email *types.InboundEmail) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO unmatched_messages (provider_message_id, provider_thread_id, from_address, to_address, subject)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5)`,
		email.ProviderMessageID, email.ProviderThreadID, email.From, email.To, email.Subject)
	if err != nil {
		return fmt.Errorf("failed to record unmatched message: %w", err)
	}
	return nil
}
