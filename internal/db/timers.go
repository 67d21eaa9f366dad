package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FollowUpTimer is a durable "re-invoke this thread's follow-up logic at
// time T" record. Timers survive process restarts; cancellation is implicit
// through the thread status check at fire time.
type FollowUpTimer struct {
	ID       uuid.UUID  `json:"id"`
	ThreadID uuid.UUID  `json:"thread_id"`
	FireAt   time.Time  `json:"fire_at"`
	Attempt  int        `json:"attempt"`
	FiredAt  *time.Time `json:"fired_at,omitempty"`
}

// ArmTimer durably records a follow-up check for a thread
func (db *DB) ArmTimer(ctx context.Context, threadID uuid.UUID, fireAt time.Time, attempt int) (*FollowUpTimer, error) {
	var t FollowUpTimer
	err := db.pool.QueryRow(ctx,
		`INSERT INTO followup_timers (thread_id, fire_at, attempt)
		 VALUES ($1, $2, $3)
		 RETURNING id, thread_id, fire_at, attempt, fired_at`,
		threadID, fireAt, attempt,
	).Scan(&t.ID, &t.ThreadID, &t.FireAt, &t.Attempt, &t.FiredAt)
	if err != nil {
		return nil, fmt.Errorf("failed to arm timer: %w", err)
	}
	return &t, nil
}

// DueTimers returns unfired timers whose fire time has passed, oldest first
func (db *DB) DueTimers(ctx context.Context, now time.Time) ([]FollowUpTimer, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, thread_id, fire_at, attempt, fired_at
		 FROM followup_timers
		 WHERE fired_at IS NULL AND fire_at <= $1
		 ORDER BY fire_at`,
		now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due timers: %w", err)
	}
	defer rows.Close()

	var timers []FollowUpTimer
	for rows.Next() {
		var t FollowUpTimer
		if err := rows.Scan(&t.ID, &t.ThreadID, &t.FireAt, &t.Attempt, &t.FiredAt); err != nil {
			return nil, err
		}
		timers = append(timers, t)
	}
	return timers, rows.Err()
}

// MarkTimerFired stamps a timer as processed. Conditional on being unfired
// so two overlapping scheduler passes cannot both claim the same timer.
func (db *DB) MarkTimerFired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE followup_timers SET fired_at = $2 WHERE id = $1 AND fired_at IS NULL`,
		id, now)
	if err != nil {
		return false, fmt.Errorf("failed to mark timer fired: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
