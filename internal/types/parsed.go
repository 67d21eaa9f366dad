package types

import (
	"time"

	"github.com/google/uuid"
)

// Confidence represents how reliable an extraction is judged to be
type Confidence string

// Extraction confidence levels
const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Sentiment represents the overall tone of a vendor reply
type Sentiment string

// Sentiment values reported by the extractor
const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentNegative Sentiment = "NEGATIVE"
)

// Quote represents a price quoted by a vendor
type Quote struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// ParsedFacts is the extractor's structured output for one vendor email.
// Availability dates use ISO format (YYYY-MM-DD); unparseable dates are
// skipped downstream rather than rejected.
type ParsedFacts struct {
	Availability []string   `json:"availability"`
	Quote        *Quote     `json:"quote,omitempty"`
	Inclusions   []string   `json:"inclusions"`
	Questions    []string   `json:"questions"`
	Sentiment    Sentiment  `json:"sentiment"`
	Confidence   Confidence `json:"confidence"`
	Summary      string     `json:"summary,omitempty"`
}

// ParsedResponse is a persisted extraction result for one inbound message.
// Immutable once created; RawOutput keeps the extractor's unprocessed reply
// for audit and replay.
type ParsedResponse struct {
	ID           uuid.UUID  `json:"id"`
	ThreadID     uuid.UUID  `json:"thread_id"`
	MessageID    uuid.UUID  `json:"message_id"`
	Availability []string   `json:"availability"`
	Quote        *Quote     `json:"quote,omitempty"`
	Inclusions   []string   `json:"inclusions"`
	Questions    []string   `json:"questions"`
	Sentiment    Sentiment  `json:"sentiment"`
	Confidence   Confidence `json:"confidence"`
	RawOutput    string     `json:"raw_output,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Facts returns the extraction fields of a stored response, for re-evaluation
func (p *ParsedResponse) Facts() *ParsedFacts {
	return &ParsedFacts{
		Availability: p.Availability,
		Quote:        p.Quote,
		Inclusions:   p.Inclusions,
		Questions:    p.Questions,
		Sentiment:    p.Sentiment,
		Confidence:   p.Confidence,
	}
}
