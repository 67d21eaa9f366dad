// Package decision - drafts.go builds the reply bodies attached to decisions.
// Drafts are plain text; the dispatcher fills in vendor and event names when
// it knows them.
package decision

import (
	"fmt"
	"strings"
)

// RejectionDraft builds a polite decline citing the given reason
func RejectionDraft(reason string) string {
	var sb strings.Builder
	sb.WriteString("Hi,\n\n")
	sb.WriteString("Thank you so much for getting back to us. Unfortunately ")
	sb.WriteString(reason)
	sb.WriteString(", so we won't be able to move forward this time.\n\n")
	sb.WriteString("We really appreciate your time and will keep you in mind for future events.\n\n")
	sb.WriteString("Best regards")
	return sb.String()
}

// NegotiationDraft asks the vendor to meet the flexible budget
func NegotiationDraft(quotedCents, maxBudgetCents int64) string {
	var sb strings.Builder
	sb.WriteString("Hi,\n\n")
	sb.WriteString(fmt.Sprintf(
		"Thanks for the quote of %s. We'd love to work with you, but our budget for this is closer to %s. ",
		FormatCents(quotedCents), FormatCents(maxBudgetCents)))
	sb.WriteString("Is there any flexibility on pricing, or a package that would fit that range?\n\n")
	sb.WriteString("Best regards")
	return sb.String()
}

// AcceptanceDraft accepts a quote as-is
func AcceptanceDraft(quotedCents int64) string {
	var sb strings.Builder
	sb.WriteString("Hi,\n\n")
	sb.WriteString(fmt.Sprintf(
		"Thanks for the quote of %s - that works for us and we'd like to go ahead. ",
		FormatCents(quotedCents)))
	sb.WriteString("What are the next steps to confirm the booking?\n\n")
	sb.WriteString("Best regards")
	return sb.String()
}

// ConfirmationDraft confirms a viable vendor. Held for human approval before
// send: this is the one automatically-reachable outcome that is never
// auto-responded.
func ConfirmationDraft() string {
	var sb strings.Builder
	sb.WriteString("Hi,\n\n")
	sb.WriteString("Great news - your availability and pricing both work for our event. ")
	sb.WriteString("We'd like to move forward. Could you send over the next steps to confirm?\n\n")
	sb.WriteString("Best regards")
	return sb.String()
}

// QuestionReplyDraft scaffolds a reply addressing each vendor question.
// Answers are left for the human to fill in.
func QuestionReplyDraft(questions []string) string {
	var sb strings.Builder
	sb.WriteString("Hi,\n\n")
	sb.WriteString("Thanks for your reply! To answer your questions:\n\n")
	for i, q := range questions {
		sb.WriteString(fmt.Sprintf("%d. %s\n   [answer]\n", i+1, strings.TrimSpace(q)))
	}
	sb.WriteString("\nLooking forward to hearing from you.\n\n")
	sb.WriteString("Best regards")
	return sb.String()
}
