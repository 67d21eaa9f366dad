package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// PreferredDate is one date the event could happen on, with a flexibility
// window of +/- FlexDays around it
type PreferredDate struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	FlexDays int    `json:"flex_days" validate:"min=0"`
}

// EventConstraints holds the event parameters the decision engine evaluates
// vendor responses against. Read-only to this core.
type EventConstraints struct {
	Headcount         int             `json:"headcount" validate:"min=0"`
	BudgetCeilingCents int64          `json:"budget_ceiling_cents" validate:"min=0"`
	BudgetFlexPercent float64         `json:"budget_flex_percent" validate:"min=0,max=100"`
	PreferredDates    []PreferredDate `json:"preferred_dates" validate:"dive"`
}

// MaxBudgetCents returns the ceiling scaled by the flexibility percent
func (c *EventConstraints) MaxBudgetCents() int64 {
	return int64(float64(c.BudgetCeilingCents) * (1 + c.BudgetFlexPercent/100))
}

// Validate validates the constraints using the validator
func (c *EventConstraints) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid event constraints: %w", err)
	}
	return nil
}
