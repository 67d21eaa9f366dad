package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["sentiment"],
	"properties": {
		"sentiment": {"type": "string", "enum": ["POSITIVE", "NEUTRAL", "NEGATIVE"]},
		"questions": {"type": "array", "items": {"type": "string"}}
	}
}`

func TestValidateJSONString_Valid(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"sentiment": "POSITIVE", "questions": []}`)
	assert.NoError(t, err)
}

func TestValidateJSONString_MissingRequiredField(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"questions": ["do you travel?"]}`)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Errors)
	assert.Contains(t, err.Error(), "sentiment")
}

func TestValidateJSONString_WrongType(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"sentiment": "POSITIVE", "questions": "not-an-array"}`)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "questions", ve.Errors[0].Field)
}

func TestValidateJSONString_InvalidEnumValue(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"sentiment": "ECSTATIC"}`)
	require.Error(t, err)
}

func TestValidateJSONString_MalformedJSON(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"sentiment":`)
	require.Error(t, err)

	var le *SchemaLoadError
	assert.ErrorAs(t, err, &le)
}
