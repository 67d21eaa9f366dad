// Package extractor converts raw vendor email text into structured facts
// (availability, quote, inclusions, questions, sentiment) via an LLM.
//
// Extraction never fails loudly: any LLM, parsing, or schema error produces
// a low-confidence empty-fields result so the decision engine's
// escalate-on-low-confidence path acts as the safety net.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/vendor-outreach/internal/llm"
	"github.com/jonathan/vendor-outreach/internal/schemas"
	"github.com/jonathan/vendor-outreach/internal/types"
)

// Extractor parses vendor replies with an LLM client
type Extractor struct {
	client llm.Client
}

// New creates an extractor backed by the given LLM client
func New(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// wireFacts is the JSON shape the LLM returns; quote amounts arrive as
// decimal dollars and are converted to cents
type wireFacts struct {
	Availability []string `json:"availability"`
	Quote        *struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		Notes    string  `json:"notes"`
	} `json:"quote"`
	Inclusions []string `json:"inclusions"`
	Questions  []string `json:"questions"`
	Sentiment  string   `json:"sentiment"`
	Confidence string   `json:"confidence"`
	Summary    string   `json:"summary"`
}

// Extract parses a vendor email into structured facts, using the event
// constraints as context for date interpretation. The second return value is
// the raw LLM output kept for audit and replay. Extract does not return an
// error: failures degrade to a low-confidence result.
func (e *Extractor) Extract(ctx context.Context, rawEmailText string, constraints *types.EventConstraints) (*types.ParsedFacts, string) {
	if strings.TrimSpace(rawEmailText) == "" {
		return degraded("empty email body"), ""
	}

	prompt := buildPrompt(rawEmailText, constraints)

	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		fmt.Printf("Warning: extraction LLM call failed: %v\n", err)
		return degraded("extraction failed"), ""
	}

	if err := schemas.ValidateJSONString(factsSchema, raw); err != nil {
		fmt.Printf("Warning: extraction output failed schema validation: %v\n", err)
		return degraded("extraction output was malformed"), raw
	}

	var wire wireFacts
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		fmt.Printf("Warning: failed to parse extraction output: %v\n", err)
		return degraded("extraction output was malformed"), raw
	}

	facts := &types.ParsedFacts{
		Availability: wire.Availability,
		Inclusions:   wire.Inclusions,
		Questions:    wire.Questions,
		Sentiment:    types.Sentiment(wire.Sentiment),
		Confidence:   types.Confidence(wire.Confidence),
		Summary:      wire.Summary,
	}
	if wire.Quote != nil {
		facts.Quote = &types.Quote{
			AmountCents: int64(math.Round(wire.Quote.Amount * 100)),
			Currency:    wire.Quote.Currency,
			Notes:       wire.Quote.Notes,
		}
	}

	facts.Confidence = RefineConfidence(facts)
	return facts, raw
}

// degraded returns the low-confidence empty result used on any failure path
func degraded(summary string) *types.ParsedFacts {
	return &types.ParsedFacts{
		Availability: []string{},
		Inclusions:   []string{},
		Questions:    []string{},
		Sentiment:    types.SentimentNeutral,
		Confidence:   types.ConfidenceLow,
		Summary:      summary,
	}
}

// RefineConfidence applies the local heuristic on top of the extractor's
// self-reported confidence. It never upgrades a LOW rating: a confidently
// wrong extractor is the case this guards against.
//
// HIGH requires availability and quote present with no open questions.
// MEDIUM requires at least one of availability/quote. A result with neither
// degrades to LOW regardless of the self-report.
func RefineConfidence(f *types.ParsedFacts) types.Confidence {
	if f.Confidence == types.ConfidenceLow {
		return types.ConfidenceLow
	}
	if len(f.Availability) == 0 && f.Quote == nil {
		return types.ConfidenceLow
	}
	if f.Confidence == types.ConfidenceHigh &&
		len(f.Availability) > 0 && f.Quote != nil && len(f.Questions) == 0 {
		return types.ConfidenceHigh
	}
	return types.ConfidenceMedium
}

// buildPrompt constructs the extraction prompt with event context
func buildPrompt(rawEmailText string, constraints *types.EventConstraints) string {
	var sb strings.Builder

	sb.WriteString(`You are an expert assistant parsing a vendor's email reply about an event booking.
Extract ONLY facts stated in the email - do not invent, infer, or summarize beyond what is written.`)
	sb.WriteString("\n\n")

	if constraints != nil && len(constraints.PreferredDates) > 0 {
		sb.WriteString("Context - the event is being planned around these dates:\n")
		for _, d := range constraints.PreferredDates {
			sb.WriteString(fmt.Sprintf("  - %s (flexible by %d days)\n", d.Date, d.FlexDays))
		}
		if constraints.Headcount > 0 {
			sb.WriteString(fmt.Sprintf("Expected headcount: %d\n", constraints.Headcount))
		}
		sb.WriteString("Use this context to resolve relative dates the vendor mentions.\n\n")
	}

	sb.WriteString(`Return ONLY valid JSON matching this exact structure:
{
  "availability": ["string"],  // dates the vendor says they are available, ISO format YYYY-MM-DD
  "quote": {"amount": number, "currency": "string", "notes": "string"},  // quoted price in dollars, or null if no price given
  "inclusions": ["string"],    // what the quote includes (staff, equipment, food, ...)
  "questions": ["string"],     // questions the vendor asked us, verbatim
  "sentiment": "POSITIVE" | "NEUTRAL" | "NEGATIVE",
  "confidence": "HIGH" | "MEDIUM" | "LOW",  // your confidence in this extraction
  "summary": "string"          // one-sentence summary of the reply
}

IMPORTANT:
- If the vendor gives no dates, "availability" must be an empty array.
- If the vendor gives no price, "quote" must be null.
- Report LOW confidence when the email is ambiguous or off-topic.
- Return ONLY the JSON object, no markdown, no explanation, no code blocks.

Vendor email:
"""
`)
	sb.WriteString(rawEmailText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}
