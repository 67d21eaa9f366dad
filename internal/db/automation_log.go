package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/vendor-outreach/internal/types"
)

// AppendLog appends one step to a thread's automation history. The log is
// append-only: entries are keyed by (thread_id, seq) and never updated.
// The primary key serializes concurrent appenders to the same thread.
func (db *DB) AppendLog(ctx context.Context, threadID uuid.UUID, stepType types.StepType, details map[string]any) (*types.AutomationStep, error) {
	var detailsJSON []byte
	if details != nil {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal log details: %w", err)
		}
	}

	var step types.AutomationStep
	err := db.pool.QueryRow(ctx,
		`INSERT INTO automation_log (thread_id, seq, step_type, details)
		 SELECT $1, COALESCE(MAX(seq), 0) + 1, $2, $3
		 FROM automation_log WHERE thread_id = $1
		 RETURNING thread_id, seq, step_type, details, created_at`,
		threadID, stepType, detailsJSON,
	).Scan(&step.ThreadID, &step.Seq, &step.Type, &detailsJSON, &step.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append log entry: %w", err)
	}

	if detailsJSON != nil {
		_ = json.Unmarshal(detailsJSON, &step.Details)
	}
	return &step, nil
}

// ListLog returns a thread's automation history in order
func (db *DB) ListLog(ctx context.Context, threadID uuid.UUID) ([]types.AutomationStep, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT thread_id, seq, step_type, details, created_at
		 FROM automation_log WHERE thread_id = $1 ORDER BY seq`,
		threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list log: %w", err)
	}
	defer rows.Close()

	var steps []types.AutomationStep
	for rows.Next() {
		var step types.AutomationStep
		var detailsJSON []byte
		if err := rows.Scan(&step.ThreadID, &step.Seq, &step.Type, &detailsJSON, &step.CreatedAt); err != nil {
			return nil, err
		}
		if detailsJSON != nil {
			_ = json.Unmarshal(detailsJSON, &step.Details)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}
