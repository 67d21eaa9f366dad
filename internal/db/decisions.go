package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/vendor-outreach/internal/types"
)

// InsertDecision persists a decision against its parsed response. Rows are
// immutable once created.
func (db *DB) InsertDecision(ctx context.Context, d *types.Decision) (*types.Decision, error) {
	actions := d.SuggestedActions
	if actions == nil {
		actions = []types.SuggestedAction{}
	}
	actionsJSON, err := json.Marshal(actions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal suggested actions: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO decisions (parsed_response_id, thread_id, outcome, reason, proposed_next_action, escalation_category, suggested_actions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		d.ParsedResponseID, d.ThreadID, d.Outcome, d.Reason, d.ProposedNextAction,
		(*string)(d.EscalationCategory), actionsJSON,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert decision: %w", err)
	}

	return db.GetDecisionByParsedResponse(ctx, d.ParsedResponseID)
}

// GetDecisionByParsedResponse retrieves the decision recorded for a parsed
// response; returns nil if absent
func (db *DB) GetDecisionByParsedResponse(ctx context.Context, parsedResponseID uuid.UUID) (*types.Decision, error) {
	var d types.Decision
	var escCategory *string
	var actionsJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, parsed_response_id, thread_id, outcome, reason, proposed_next_action, escalation_category, suggested_actions, created_at
		 FROM decisions WHERE parsed_response_id = $1`,
		parsedResponseID,
	).Scan(&d.ID, &d.ParsedResponseID, &d.ThreadID, &d.Outcome, &d.Reason,
		&d.ProposedNextAction, &escCategory, &actionsJSON, &d.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get decision: %w", err)
	}

	if escCategory != nil {
		c := types.EscalationCategory(*escCategory)
		d.EscalationCategory = &c
	}
	if err := json.Unmarshal(actionsJSON, &d.SuggestedActions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal suggested actions: %w", err)
	}

	return &d, nil
}
