package types

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the decision engine's verdict on a parsed vendor response
type Outcome string

// Decision outcome constants
const (
	OutcomeViable    Outcome = "VIABLE"
	OutcomeNegotiate Outcome = "NEGOTIATE"
	OutcomeReject    Outcome = "REJECT"
	OutcomeEscalate  Outcome = "ESCALATE"
)

// EscalationCategory classifies why a thread needs human judgment
type EscalationCategory string

// Escalation category constants
const (
	EscalationLowConfidence  EscalationCategory = "low_confidence"
	EscalationVendorQuestion EscalationCategory = "vendor_questions"
	EscalationMissingInfo    EscalationCategory = "missing_info"
	EscalationBudgetEdge     EscalationCategory = "budget_edge"
	EscalationCustom         EscalationCategory = "custom"
)

// ActionType categorizes a suggested action for a human reviewer
type ActionType string

// Suggested action type constants
const (
	ActionNegotiate ActionType = "negotiate"
	ActionAccept    ActionType = "accept"
	ActionDecline   ActionType = "decline"
	ActionReply     ActionType = "reply"
)

// SuggestedAction is one ranked option presented to a human during escalation
type SuggestedAction struct {
	Label      string     `json:"label"`
	Action     ActionType `json:"action"`
	Draft      string     `json:"draft"`
	Confidence int        `json:"confidence"` // 0-100
}

// Decision is the decision engine's verdict for one ParsedResponse.
// Immutable once stored; ShouldEscalate and ShouldAutoRespond are derived
// from Outcome and are mutually exclusive. VIABLE is neither: it holds the
// thread for explicit human confirmation.
type Decision struct {
	ID                 uuid.UUID           `json:"id"`
	ParsedResponseID   uuid.UUID           `json:"parsed_response_id"`
	ThreadID           uuid.UUID           `json:"thread_id"`
	Outcome            Outcome             `json:"outcome"`
	Reason             string              `json:"reason"`
	ProposedNextAction string              `json:"proposed_next_action,omitempty"`
	EscalationCategory *EscalationCategory `json:"escalation_category,omitempty"`
	SuggestedActions   []SuggestedAction   `json:"suggested_actions,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

// ShouldEscalate reports whether the decision requires human review
func (d *Decision) ShouldEscalate() bool {
	return d.Outcome == OutcomeEscalate
}

// ShouldAutoRespond reports whether the decision's draft is sent without
// human review
func (d *Decision) ShouldAutoRespond() bool {
	return d.Outcome == OutcomeReject
}
