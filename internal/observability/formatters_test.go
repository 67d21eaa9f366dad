package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/vendor-outreach/internal/types"
)

func TestPrintThread(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	outcome := types.OutcomeViable
	p.PrintThread(&types.ThreadContext{
		Thread: types.VendorThread{
			Status:           types.StatusViable,
			Decision:         &outcome,
			FollowUpCount:    1,
			OutreachApproved: true,
		},
		Vendor: types.Vendor{Name: "Maple & Thyme Catering", Category: "catering"},
		Event:  types.Event{Name: "Hamilton Wedding"},
	})

	out := buf.String()
	assert.Contains(t, out, "VENDOR THREAD")
	assert.Contains(t, out, "Maple & Thyme Catering")
	assert.Contains(t, out, "VIABLE")
	assert.Contains(t, out, "Follow-ups sent: 1")
}

func TestPrintThread_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintThread(nil)
	assert.Empty(t, buf.String())
}

func TestPrintParsedResponse(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintParsedResponse(&types.ParsedResponse{
		Availability: []string{"2026-10-17", "2026-10-18"},
		Quote:        &types.Quote{AmountCents: 450000},
		Questions:    []string{"Is the venue outdoors?"},
		Sentiment:    types.SentimentPositive,
		Confidence:   types.ConfidenceHigh,
	})

	out := buf.String()
	assert.Contains(t, out, "PARSED VENDOR RESPONSE")
	assert.Contains(t, out, "HIGH")
	assert.Contains(t, out, "$4500.00")
	assert.Contains(t, out, "2026-10-17")
	assert.Contains(t, out, "Is the venue outdoors?")
}

func TestPrintDecision(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	category := types.EscalationBudgetEdge
	p.PrintDecision(&types.Decision{
		Outcome:            types.OutcomeEscalate,
		Reason:             "quote slightly over budget",
		EscalationCategory: &category,
		SuggestedActions: []types.SuggestedAction{
			{Label: "Negotiate toward budget", Action: types.ActionNegotiate, Confidence: 80},
			{Label: "Accept the overage", Action: types.ActionAccept, Confidence: 60},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "DECISION")
	assert.Contains(t, out, "ESCALATE")
	assert.Contains(t, out, "budget_edge")
	assert.Contains(t, out, "Negotiate toward budget")
	assert.Contains(t, out, "80%")
}
