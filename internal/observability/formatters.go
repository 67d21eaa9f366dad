// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/vendor-outreach/internal/decision"
	"github.com/jonathan/vendor-outreach/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintThread outputs a human-readable summary of a vendor thread with its
// vendor and event context.
func (p *Printer) PrintThread(tc *types.ThreadContext) {
	if tc == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Vendor:   %s\n", tc.Vendor.Name))
	if tc.Vendor.Category != "" {
		sb.WriteString(fmt.Sprintf("Category: %s\n", tc.Vendor.Category))
	}
	sb.WriteString(fmt.Sprintf("Event:    %s\n", tc.Event.Name))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", tc.Thread.Status))

	if tc.Thread.Decision != nil {
		sb.WriteString(fmt.Sprintf("Decision: %s\n", *tc.Thread.Decision))
	}
	if tc.Thread.FollowUpCount > 0 {
		sb.WriteString(fmt.Sprintf("Follow-ups sent: %d\n", tc.Thread.FollowUpCount))
	}
	if tc.Thread.EscalationReason != "" {
		sb.WriteString("\n")
		sb.WriteString("Escalation:\n")
		sb.WriteString(fmt.Sprintf("  %s\n", tc.Thread.EscalationReason))
	}
	if !tc.Thread.OutreachApproved {
		sb.WriteString("\n")
		sb.WriteString("⚠ Outreach not yet approved\n")
	}

	p.printBox("VENDOR THREAD", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintParsedResponse outputs the facts extracted from a vendor reply.
func (p *Printer) PrintParsedResponse(parsed *types.ParsedResponse) {
	if parsed == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Confidence: %s\n", parsed.Confidence))
	sb.WriteString(fmt.Sprintf("Sentiment:  %s\n", parsed.Sentiment))
	if parsed.Quote != nil {
		sb.WriteString(fmt.Sprintf("Quote:      %s\n", decision.FormatCents(parsed.Quote.AmountCents)))
	}
	sb.WriteString("\n")

	if len(parsed.Availability) > 0 {
		sb.WriteString("Availability:\n")
		count := min(len(parsed.Availability), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", parsed.Availability[i]))
		}
		if len(parsed.Availability) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(parsed.Availability)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(parsed.Questions) > 0 {
		sb.WriteString("Vendor questions:\n")
		count := min(len(parsed.Questions), 3)
		for i := 0; i < count; i++ {
			q := parsed.Questions[i]
			if len(q) > 50 {
				q = q[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", q))
		}
		if len(parsed.Questions) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(parsed.Questions)-3))
		}
	}

	p.printBox("PARSED VENDOR RESPONSE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDecision outputs the engine's verdict and any suggested actions.
func (p *Printer) PrintDecision(d *types.Decision) {
	if d == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Outcome: %s\n", d.Outcome))
	reason := d.Reason
	if len(reason) > 50 {
		reason = reason[:47] + "..."
	}
	sb.WriteString(fmt.Sprintf("Reason:  %s\n", reason))
	if d.EscalationCategory != nil {
		sb.WriteString(fmt.Sprintf("Category: %s\n", *d.EscalationCategory))
	}

	if len(d.SuggestedActions) > 0 {
		sb.WriteString("\n")
		sb.WriteString("Suggested actions:\n")
		for i, action := range d.SuggestedActions {
			sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, action.Label))
			sb.WriteString(fmt.Sprintf("    Confidence: %d%%\n", action.Confidence))
			if i < len(d.SuggestedActions)-1 {
				sb.WriteString("\n")
			}
		}
	}

	p.printBox("DECISION", strings.TrimSuffix(sb.String(), "\n"))
}
