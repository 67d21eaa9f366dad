package extractor

// factsSchema is the JSON Schema the extractor's LLM output must satisfy
// before it is accepted. Output that fails validation is treated as an
// extraction failure and degraded to a low-confidence result.
const factsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["availability", "inclusions", "questions", "sentiment", "confidence"],
  "properties": {
    "availability": {
      "type": "array",
      "items": {"type": "string"}
    },
    "quote": {
      "type": ["object", "null"],
      "required": ["amount"],
      "properties": {
        "amount": {"type": "number", "minimum": 0},
        "currency": {"type": "string"},
        "notes": {"type": "string"}
      }
    },
    "inclusions": {
      "type": "array",
      "items": {"type": "string"}
    },
    "questions": {
      "type": "array",
      "items": {"type": "string"}
    },
    "sentiment": {
      "type": "string",
      "enum": ["POSITIVE", "NEUTRAL", "NEGATIVE"]
    },
    "confidence": {
      "type": "string",
      "enum": ["HIGH", "MEDIUM", "LOW"]
    },
    "summary": {"type": "string"}
  }
}`
