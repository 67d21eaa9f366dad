// Package decision implements the rule engine that turns parsed vendor facts
// into an outcome. Evaluate is a pure function: no I/O, fully deterministic
// given its inputs, which is what makes it testable in isolation.
package decision

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/vendor-outreach/internal/types"
)

// Config holds the tunable thresholds of the engine.
// BudgetEdgeMultiplier bounds the escalation band above the flexible budget:
// quotes inside (maxBudget, maxBudget*multiplier] escalate as budget_edge,
// quotes above it are rejected outright.
type Config struct {
	BudgetEdgeMultiplier float64
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{BudgetEdgeMultiplier: 1.15}
}

// Evaluate maps (parsed facts, event constraints) to a decision.
// Rules apply in order, first match wins:
//  1. low extraction confidence -> escalate (low_confidence)
//  2. open vendor questions -> escalate (vendor_questions)
//  3. neither availability nor quote -> escalate (missing_info)
//  4. no date overlap -> reject with auto-response
//  5. quote ladder: hard breach rejects, edge escalates, within budget with
//     availability is VIABLE (held for human confirmation, never auto-sent)
//  6. availability but no quote -> escalate (missing_info, pricing)
//  7. fallback -> escalate (custom)
func Evaluate(parsed *types.ParsedFacts, constraints *types.EventConstraints, cfg Config) *types.Decision {
	if cfg.BudgetEdgeMultiplier <= 1 {
		cfg = DefaultConfig()
	}

	// Rule 1: the extractor itself is unsure, a human must read the email.
	if parsed.Confidence == types.ConfidenceLow {
		return escalate(types.EscalationLowConfidence,
			"extraction confidence is low; the reply needs human reading", nil)
	}

	// Rule 2: the vendor asked questions we cannot answer automatically.
	if len(parsed.Questions) > 0 {
		draft := QuestionReplyDraft(parsed.Questions)
		d := escalate(types.EscalationVendorQuestion,
			fmt.Sprintf("vendor asked %d question(s) that need answers", len(parsed.Questions)),
			[]types.SuggestedAction{{
				Label:      "Answer vendor questions",
				Action:     types.ActionReply,
				Draft:      draft,
				Confidence: 70,
			}})
		d.ProposedNextAction = draft
		return d
	}

	// Rule 3: nothing actionable was extracted.
	if len(parsed.Availability) == 0 && parsed.Quote == nil {
		return escalate(types.EscalationMissingInfo,
			"reply contains neither availability nor pricing", nil)
	}

	// Rule 4: offered dates miss every preferred-date window. Terminal,
	// auto-responded, never an escalation.
	if len(parsed.Availability) > 0 {
		overlap := DateOverlap(parsed.Availability, constraints.PreferredDates)
		if len(overlap) == 0 {
			return &types.Decision{
				Outcome:            types.OutcomeReject,
				Reason:             "vendor availability does not overlap any preferred date window",
				ProposedNextAction: RejectionDraft("none of the offered dates work for our event"),
			}
		}
	}

	// Rule 5: budget ladder.
	if parsed.Quote != nil {
		maxBudget := constraints.MaxBudgetCents()
		hardLimit := int64(float64(maxBudget) * cfg.BudgetEdgeMultiplier)

		switch {
		case parsed.Quote.AmountCents > hardLimit:
			return &types.Decision{
				Outcome: types.OutcomeReject,
				Reason: fmt.Sprintf("quote %s exceeds the flexible budget %s by more than %.0f%%",
					FormatCents(parsed.Quote.AmountCents), FormatCents(maxBudget),
					(cfg.BudgetEdgeMultiplier-1)*100),
				ProposedNextAction: RejectionDraft("the quoted price is above our budget for this event"),
			}

		case parsed.Quote.AmountCents > maxBudget:
			reason := fmt.Sprintf("quote %s is above the flexible budget %s but within the negotiable edge",
				FormatCents(parsed.Quote.AmountCents), FormatCents(maxBudget))
			return escalate(types.EscalationBudgetEdge, reason, []types.SuggestedAction{
				{
					Label:      "Negotiate toward budget",
					Action:     types.ActionNegotiate,
					Draft:      NegotiationDraft(parsed.Quote.AmountCents, maxBudget),
					Confidence: 80,
				},
				{
					Label:      "Accept the quote as-is",
					Action:     types.ActionAccept,
					Draft:      AcceptanceDraft(parsed.Quote.AmountCents),
					Confidence: 60,
				},
				{
					Label:      "Decline politely",
					Action:     types.ActionDecline,
					Draft:      RejectionDraft("the quoted price is above our budget for this event"),
					Confidence: 50,
				},
			})

		case len(parsed.Availability) > 0:
			// Within budget and dates work: viable, but the confirmation is
			// held for human approval so automation never commits to a vendor.
			return &types.Decision{
				Outcome: types.OutcomeViable,
				Reason: fmt.Sprintf("quote %s is within budget and availability overlaps preferred dates",
					FormatCents(parsed.Quote.AmountCents)),
				ProposedNextAction: ConfirmationDraft(),
			}
		}
	}

	// Rule 6: dates work but the vendor never named a price.
	if len(parsed.Availability) > 0 && parsed.Quote == nil {
		return escalate(types.EscalationMissingInfo,
			"vendor offered dates but no pricing", nil)
	}

	// Rule 7: nothing above matched.
	return escalate(types.EscalationCustom,
		"reply did not match any automated handling rule", nil)
}

// escalate builds an ESCALATE decision with the given category
func escalate(category types.EscalationCategory, reason string, actions []types.SuggestedAction) *types.Decision {
	cat := category
	return &types.Decision{
		Outcome:            types.OutcomeEscalate,
		Reason:             reason,
		EscalationCategory: &cat,
		SuggestedActions:   actions,
	}
}

// DateOverlap returns the vendor-offered dates that fall inside any preferred
// date's flexibility window. Dates are ISO (YYYY-MM-DD); unparseable entries
// on either side are skipped, not errors.
func DateOverlap(offered []string, preferred []types.PreferredDate) []string {
	var overlap []string
	for _, o := range offered {
		od, err := time.Parse("2006-01-02", strings.TrimSpace(o))
		if err != nil {
			continue
		}
		for _, p := range preferred {
			pd, err := time.Parse("2006-01-02", p.Date)
			if err != nil {
				continue
			}
			diff := od.Sub(pd)
			if diff < 0 {
				diff = -diff
			}
			if diff <= time.Duration(p.FlexDays)*24*time.Hour {
				overlap = append(overlap, o)
				break
			}
		}
	}
	return overlap
}

// FormatCents renders a cent amount as a dollar string for draft messages
func FormatCents(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
