package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/vendor-outreach/internal/types"
)

// InsertParsedResponse persists an extraction result. Rows are immutable
// once created.
func (db *DB) InsertParsedResponse(ctx context.Context, threadID, messageID uuid.UUID, facts *types.ParsedFacts, rawOutput string) (*types.ParsedResponse, error) {
	availability, err := json.Marshal(orEmpty(facts.Availability))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal availability: %w", err)
	}
	inclusions, err := json.Marshal(orEmpty(facts.Inclusions))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inclusions: %w", err)
	}
	questions, err := json.Marshal(orEmpty(facts.Questions))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal questions: %w", err)
	}
	var quote []byte
	if facts.Quote != nil {
		quote, err = json.Marshal(facts.Quote)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal quote: %w", err)
		}
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO parsed_responses (thread_id, message_id, availability, quote, inclusions, questions, sentiment, confidence, raw_output)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		threadID, messageID, availability, quote, inclusions, questions,
		facts.Sentiment, facts.Confidence, rawOutput,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert parsed response: %w", err)
	}

	return db.GetParsedResponse(ctx, id)
}

// GetParsedResponse retrieves a parsed response by id; returns nil if absent
func (db *DB) GetParsedResponse(ctx context.Context, id uuid.UUID) (*types.ParsedResponse, error) {
	var p types.ParsedResponse
	var availability, quote, inclusions, questions []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, thread_id, message_id, availability, quote, inclusions, questions, sentiment, confidence, raw_output, created_at
		 FROM parsed_responses WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.ThreadID, &p.MessageID, &availability, &quote, &inclusions,
		&questions, &p.Sentiment, &p.Confidence, &p.RawOutput, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get parsed response: %w", err)
	}

	if err := json.Unmarshal(availability, &p.Availability); err != nil {
		return nil, fmt.Errorf("failed to unmarshal availability: %w", err)
	}
	if err := json.Unmarshal(inclusions, &p.Inclusions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inclusions: %w", err)
	}
	if err := json.Unmarshal(questions, &p.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	if quote != nil {
		p.Quote = &types.Quote{}
		if err := json.Unmarshal(quote, p.Quote); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
		}
	}

	return &p, nil
}

// orEmpty keeps jsonb columns as [] rather than null for nil slices
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
