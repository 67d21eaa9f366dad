// Package types provides type definitions for structured data used throughout the vendor-outreach system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// ThreadStatus represents the lifecycle state of a vendor conversation
type ThreadStatus string

// Thread status constants. Transitions form a DAG except the repeatable
// WAITING -> PARSED -> WAITING negotiation loop.
const (
	StatusNotContacted ThreadStatus = "NOT_CONTACTED"
	StatusWaiting      ThreadStatus = "WAITING"
	StatusParsed       ThreadStatus = "PARSED"
	StatusEscalation   ThreadStatus = "ESCALATION"
	StatusViable       ThreadStatus = "VIABLE"
	StatusRejected     ThreadStatus = "REJECTED"
	StatusDone         ThreadStatus = "DONE"
)

// ValidStatuses lists every thread status, used for manual override validation
var ValidStatuses = []ThreadStatus{
	StatusNotContacted, StatusWaiting, StatusParsed,
	StatusEscalation, StatusViable, StatusRejected, StatusDone,
}

// IsValidStatus reports whether s is a known thread status
func IsValidStatus(s ThreadStatus) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends automated processing.
// VIABLE is terminal only pending external human confirmation.
func (s ThreadStatus) IsTerminal() bool {
	return s == StatusViable || s == StatusRejected || s == StatusDone
}

// VendorThread tracks one vendor's outreach lifecycle for one event
type VendorThread struct {
	ID                 uuid.UUID           `json:"id"`
	VendorID           uuid.UUID           `json:"vendor_id"`
	EventID            uuid.UUID           `json:"event_id"`
	Status             ThreadStatus        `json:"status"`
	Decision           *Outcome            `json:"decision,omitempty"`
	Confidence         *Confidence         `json:"confidence,omitempty"`
	FollowUpCount      int                 `json:"follow_up_count"`
	LastTouch          *time.Time          `json:"last_touch,omitempty"`
	EscalationReason   string              `json:"escalation_reason,omitempty"`
	EscalationCategory *EscalationCategory `json:"escalation_category,omitempty"`
	OutreachApproved   bool                `json:"outreach_approved"`
	ApprovedBy         string              `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time          `json:"approved_at,omitempty"`
	ProviderThreadID   string              `json:"provider_thread_id,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// StepType categorizes automation log entries
type StepType string

// Automation step type constants
const (
	StepOutreach       StepType = "OUTREACH"
	StepApproval       StepType = "APPROVAL"
	StepFollowUp       StepType = "FOLLOW_UP"
	StepDecision       StepType = "DECISION"
	StepEscalation     StepType = "ESCALATION"
	StepAutoResponse   StepType = "AUTO_RESPONSE"
	StepHumanReply     StepType = "HUMAN_REPLY"
	StepStatusOverride StepType = "STATUS_OVERRIDE"
	StepInbound        StepType = "INBOUND"
	StepMatchFailure   StepType = "MATCH_FAILURE"
)

// AutomationStep is one entry in a thread's append-only audit trail.
// Entries are keyed by (thread_id, seq) and never mutated.
type AutomationStep struct {
	ThreadID  uuid.UUID      `json:"thread_id"`
	Seq       int            `json:"seq"`
	Type      StepType       `json:"type"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
