package outreach

import (
	"fmt"
	"strings"
	"text/template"
)

// firstMessageTemplate is the deterministic inquiry sent when no LLM client
// is configured or personalization fails
var firstMessageTemplate = template.Must(template.New("first_message").Parse(
	`Hi{{if .ContactName}} {{.ContactName}}{{end}},

We're planning {{.EventName}} and came across {{.VendorName}}{{if .Category}} while looking for {{.Category}} options{{end}}.
{{if .Headcount}}We're expecting around {{.Headcount}} guests{{end}}{{if .Dates}} and are targeting {{.Dates}}{{end}}.

Could you let us know:
  - your availability around those dates
  - pricing for an event of this size
  - what your packages include

Thanks so much!

Best regards`))

// FirstMessageData holds the fields rendered into the first inquiry
type FirstMessageData struct {
	ContactName string
	VendorName  string
	EventName   string
	Category    string
	Headcount   int
	Dates       string
}

// RenderFirstMessage renders the deterministic first inquiry
func RenderFirstMessage(data FirstMessageData) (string, error) {
	var sb strings.Builder
	if err := firstMessageTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render first message: %w", err)
	}
	return sb.String(), nil
}

// FirstMessageSubject builds the subject line for a new inquiry
func FirstMessageSubject(eventName, category string) string {
	if category != "" {
		return fmt.Sprintf("%s inquiry for %s", capitalize(category), eventName)
	}
	return fmt.Sprintf("Inquiry for %s", eventName)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// personalizePrompt asks the LLM to adapt the inquiry to the vendor
func personalizePrompt(base string, data FirstMessageData) string {
	var sb strings.Builder
	sb.WriteString("Rewrite the following vendor inquiry email so it reads naturally and personally.\n")
	sb.WriteString("Keep every question and fact intact. Do not invent details. Keep it short.\n")
	sb.WriteString(fmt.Sprintf("The vendor is %q", data.VendorName))
	if data.Category != "" {
		sb.WriteString(fmt.Sprintf(", a %s vendor", data.Category))
	}
	sb.WriteString(".\n\nEmail:\n\"\"\"\n")
	sb.WriteString(base)
	sb.WriteString("\n\"\"\"\n\nReturn ONLY the rewritten email body, no commentary.")
	return sb.String()
}
