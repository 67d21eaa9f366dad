package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"simple paragraphs",
			"<html><body><p>Hi there,</p><p>We are available June 20.</p></body></html>",
			"Hi there,\nWe are available June 20.",
		},
		{
			"drops style and script",
			"<html><head><style>p{color:red}</style></head><body><script>x()</script><p>Quote: $4,800</p></body></html>",
			"Quote: $4,800",
		},
		{
			"list items on separate lines",
			"<ul><li>Staff included</li><li>Equipment included</li></ul>",
			"Staff included\nEquipment included",
		},
		{
			"plain text passes through",
			"just a plain reply",
			"just a plain reply",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.html))
		})
	}
}

func TestExtractAddress(t *testing.T) {
	assert.Equal(t, "pat@vendor.com", extractAddress("Pat Vendor <pat@vendor.com>"))
	assert.Equal(t, "pat@vendor.com", extractAddress("pat@vendor.com"))
	assert.Equal(t, "a@b.com", extractAddress("  a@b.com  "))
}
