package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/vendor-outreach/internal/types"
)

const threadColumns = `id, vendor_id, event_id, status, decision, confidence,
	follow_up_count, last_touch, escalation_reason, escalation_category,
	outreach_approved, approved_by, approved_at, provider_thread_id,
	created_at, updated_at`

// scanThread reads one vendor_threads row into the domain type
func scanThread(row pgx.Row) (*types.VendorThread, error) {
	var t types.VendorThread
	var decision, confidence, escReason, escCategory, approvedBy, providerThreadID *string
	err := row.Scan(&t.ID, &t.VendorID, &t.EventID, &t.Status, &decision, &confidence,
		&t.FollowUpCount, &t.LastTouch, &escReason, &escCategory,
		&t.OutreachApproved, &approvedBy, &t.ApprovedAt, &providerThreadID,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if decision != nil {
		d := types.Outcome(*decision)
		t.Decision = &d
	}
	if confidence != nil {
		c := types.Confidence(*confidence)
		t.Confidence = &c
	}
	if escReason != nil {
		t.EscalationReason = *escReason
	}
	if escCategory != nil {
		c := types.EscalationCategory(*escCategory)
		t.EscalationCategory = &c
	}
	if approvedBy != nil {
		t.ApprovedBy = *approvedBy
	}
	if providerThreadID != nil {
		t.ProviderThreadID = *providerThreadID
	}
	return &t, nil
}

// CreateThread creates a NOT_CONTACTED thread for a (vendor, event) pair
func (db *DB) CreateThread(ctx context.Context, vendorID, eventID uuid.UUID) (*types.VendorThread, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO vendor_threads (vendor_id, event_id)
		 VALUES ($1, $2)
		 RETURNING `+threadColumns,
		vendorID, eventID)
	thread, err := scanThread(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}
	return thread, nil
}

// GetThread retrieves a thread by id; returns nil if not found
func (db *DB) GetThread(ctx context.Context, id uuid.UUID) (*types.VendorThread, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+threadColumns+` FROM vendor_threads WHERE id = $1`, id)
	thread, err := scanThread(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	return thread, nil
}

// GetThreadByVendor retrieves the thread for a vendor; returns nil if the
// vendor has never been contacted
func (db *DB) GetThreadByVendor(ctx context.Context, vendorID uuid.UUID) (*types.VendorThread, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+threadColumns+` FROM vendor_threads WHERE vendor_id = $1`, vendorID)
	thread, err := scanThread(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get thread by vendor: %w", err)
	}
	return thread, nil
}

// GetThreadByProviderThreadID retrieves a thread by its transport-level
// conversation handle; returns nil if none matches
func (db *DB) GetThreadByProviderThreadID(ctx context.Context, providerThreadID string) (*types.VendorThread, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+threadColumns+` FROM vendor_threads WHERE provider_thread_id = $1`,
		providerThreadID)
	thread, err := scanThread(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get thread by provider thread id: %w", err)
	}
	return thread, nil
}

// FindWaitingThreadBySender retrieves a WAITING thread whose vendor's on-file
// contact address matches the sender; returns nil if none matches
func (db *DB) FindWaitingThreadBySender(ctx context.Context, fromAddress string) (*types.VendorThread, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+prefixedThreadColumns("t")+`
		 FROM vendor_threads t
		 JOIN vendors v ON v.id = t.vendor_id
		 WHERE t.status = 'WAITING' AND LOWER(v.contact_email) = LOWER($1)
		 ORDER BY t.created_at
		 LIMIT 1`,
		fromAddress)
	thread, err := scanThread(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find thread by sender: %w", err)
	}
	return thread, nil
}

// ApproveThread records human approval for outreach. Idempotent: returns
// false without touching the row when approval was already recorded.
func (db *DB) ApproveThread(ctx context.Context, threadID uuid.UUID, approvedBy string, now time.Time) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE vendor_threads
		 SET outreach_approved = TRUE, approved_by = $2, approved_at = $3, updated_at = NOW()
		 WHERE id = $1 AND outreach_approved = FALSE`,
		threadID, approvedBy, now)
	if err != nil {
		return false, fmt.Errorf("failed to approve thread: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ThreadMutation holds the optional field updates applied together with a
// status transition
type ThreadMutation struct {
	Decision           *types.Outcome
	Confidence         *types.Confidence
	EscalationReason   *string
	EscalationCategory *types.EscalationCategory
	ClearEscalation    bool
	ProviderThreadID   *string
	LastTouch          *time.Time
	IncrementFollowUp  bool
}

// TransitionThread atomically moves a thread from one status to another,
// applying the mutation in the same conditional update. Returns false when
// the thread was not in the expected status, which is how racing steps
// (reply handling vs timer firing) are serialized per record.
func (db *DB) TransitionThread(ctx context.Context, id uuid.UUID, from, to types.ThreadStatus, m ThreadMutation) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE vendor_threads SET
			status = $3,
			decision = COALESCE($4, decision),
			confidence = COALESCE($5, confidence),
			escalation_reason = CASE WHEN $6 THEN NULL ELSE COALESCE($7, escalation_reason) END,
			escalation_category = CASE WHEN $6 THEN NULL ELSE COALESCE($8, escalation_category) END,
			provider_thread_id = COALESCE($9, provider_thread_id),
			last_touch = COALESCE($10, last_touch),
			follow_up_count = follow_up_count + CASE WHEN $11 THEN 1 ELSE 0 END,
			updated_at = NOW()
		 WHERE id = $1 AND status = $2`,
		id, from, to,
		(*string)(m.Decision), (*string)(m.Confidence),
		m.ClearEscalation, m.EscalationReason, (*string)(m.EscalationCategory),
		m.ProviderThreadID, m.LastTouch, m.IncrementFollowUp)
	if err != nil {
		return false, fmt.Errorf("failed to transition thread %s -> %s: %w", from, to, err)
	}
	return tag.RowsAffected() == 1, nil
}

// OverrideThreadStatus sets a thread's status unconditionally (human manual
// override). Escalation fields are cleared when leaving ESCALATION.
func (db *DB) OverrideThreadStatus(ctx context.Context, id uuid.UUID, to types.ThreadStatus) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE vendor_threads SET
			status = $2,
			escalation_reason = CASE WHEN $2 = 'ESCALATION' THEN escalation_reason ELSE NULL END,
			escalation_category = CASE WHEN $2 = 'ESCALATION' THEN escalation_category ELSE NULL END,
			updated_at = NOW()
		 WHERE id = $1`,
		id, to)
	if err != nil {
		return false, fmt.Errorf("failed to override thread status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListPendingApproval returns an event's threads still waiting for human
// outreach sign-off
func (db *DB) ListPendingApproval(ctx context.Context, eventID uuid.UUID) ([]types.VendorThread, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+threadColumns+`
		 FROM vendor_threads
		 WHERE event_id = $1 AND outreach_approved = FALSE AND status = 'NOT_CONTACTED'
		 ORDER BY created_at`,
		eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approval: %w", err)
	}
	defer rows.Close()

	var threads []types.VendorThread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, *t)
	}
	return threads, rows.Err()
}

// prefixedThreadColumns qualifies the thread column list with a table alias
func prefixedThreadColumns(alias string) string {
	return alias + ".id, " + alias + ".vendor_id, " + alias + ".event_id, " +
		alias + ".status, " + alias + ".decision, " + alias + ".confidence, " +
		alias + ".follow_up_count, " + alias + ".last_touch, " +
		alias + ".escalation_reason, " + alias + ".escalation_category, " +
		alias + ".outreach_approved, " + alias + ".approved_by, " +
		alias + ".approved_at, " + alias + ".provider_thread_id, " +
		alias + ".created_at, " + alias + ".updated_at"
}
