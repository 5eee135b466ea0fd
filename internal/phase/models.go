package phase

import "time"

// Phase is one delivery/estimation stage attached to a demand. Phases are
// written during and after technical review; their presence locks the review
// outcome (a reviewed demand with phases can no longer be reverted).
//
// Amounts are expressed in minor units (e.g., cents) using int64.
type Phase struct {
	ID       string `json:"id" db:"id"`
	DemandID string `json:"demand_id" db:"demand_id"`

	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`

	// Sequence orders phases within a demand, 1-based.
	Sequence int `json:"sequence" db:"sequence"`

	EstimatedHours float64 `json:"estimated_hours" db:"estimated_hours"`

	Currency string `json:"currency" db:"currency"`

	// HourlyRateMinor is the rate used to cost this phase.
	HourlyRateMinor int64 `json:"hourly_rate_minor" db:"hourly_rate_minor"`

	// EstimatedCostMinor is derived from hours and rate at write time.
	EstimatedCostMinor int64 `json:"estimated_cost_minor" db:"estimated_cost_minor"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
