package types

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is an event supplier being contacted. Vendor records are owned by
// the wider application; this core only reads them.
type Vendor struct {
	ID           uuid.UUID `json:"id"`
	EventID      uuid.UUID `json:"event_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category,omitempty"` // catering, venue, photography, ...
	ContactName  string    `json:"contact_name,omitempty"`
	ContactEmail string    `json:"contact_email"`
	CreatedAt    time.Time `json:"created_at"`
}

// Event is the occasion vendors are being sourced for
type Event struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Constraints EventConstraints `json:"constraints"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ThreadContext is the denormalized read model gathering a thread together
// with its vendor and event in a single fetch
type ThreadContext struct {
	Thread VendorThread `json:"thread"`
	Vendor Vendor       `json:"vendor"`
	Event  Event        `json:"event"`
}
