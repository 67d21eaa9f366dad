package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/vendor-outreach/internal/types"
)

// GetVendor retrieves a vendor by id; returns nil if absent. Vendor records
// are owned by the wider application, this core only reads them.
func (db *DB) GetVendor(ctx context.Context, id uuid.UUID) (*types.Vendor, error) {
	var v types.Vendor
	err := db.pool.QueryRow(ctx,
		`SELECT id, event_id, name, category, contact_name, contact_email, created_at
		 FROM vendors WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.EventID, &v.Name, &v.Category, &v.ContactName, &v.ContactEmail, &v.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}
	return &v, nil
}

// GetEvent retrieves an event and its constraints; returns nil if absent
func (db *DB) GetEvent(ctx context.Context, id uuid.UUID) (*types.Event, error) {
	var e types.Event
	var preferredDates []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, headcount, budget_ceiling_cents, budget_flex_percent, preferred_dates, created_at
		 FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Name, &e.Constraints.Headcount, &e.Constraints.BudgetCeilingCents,
		&e.Constraints.BudgetFlexPercent, &preferredDates, &e.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if err := json.Unmarshal(preferredDates, &e.Constraints.PreferredDates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preferred dates: %w", err)
	}
	return &e, nil
}

// GetThreadContext gathers thread, vendor, and event in one denormalized
// fetch; returns nil when the thread does not exist
func (db *DB) GetThreadContext(ctx context.Context, threadID uuid.UUID) (*types.ThreadContext, error) {
	var tc types.ThreadContext
	var decision, confidence, escReason, escCategory, approvedBy, providerThreadID *string
	var preferredDates []byte

	t := &tc.Thread
	err := db.pool.QueryRow(ctx,
		`SELECT `+prefixedThreadColumns("t")+`,
		        v.id, v.event_id, v.name, v.category, v.contact_name, v.contact_email, v.created_at,
		        e.id, e.name, e.headcount, e.budget_ceiling_cents, e.budget_flex_percent, e.preferred_dates, e.created_at
		 FROM vendor_threads t
		 JOIN vendors v ON v.id = t.vendor_id
		 JOIN events e ON e.id = t.event_id
		 WHERE t.id = $1`,
		threadID,
	).Scan(&t.ID, &t.VendorID, &t.EventID, &t.Status, &decision, &confidence,
		&t.FollowUpCount, &t.LastTouch, &escReason, &escCategory,
		&t.OutreachApproved, &approvedBy, &t.ApprovedAt, &providerThreadID,
		&t.CreatedAt, &t.UpdatedAt,
		&tc.Vendor.ID, &tc.Vendor.EventID, &tc.Vendor.Name, &tc.Vendor.Category,
		&tc.Vendor.ContactName, &tc.Vendor.ContactEmail, &tc.Vendor.CreatedAt,
		&tc.Event.ID, &tc.Event.Name, &tc.Event.Constraints.Headcount,
		&tc.Event.Constraints.BudgetCeilingCents, &tc.Event.Constraints.BudgetFlexPercent,
		&preferredDates, &tc.Event.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get thread context: %w", err)
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
	if err := json.Unmarshal(preferredDates, &tc.Event.Constraints.PreferredDates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preferred dates: %w", err)
	}

	return &tc, nil
}
