package phase

import "math"

// EstimateInput drives one phase cost calculation.
type EstimateInput struct {
	EstimatedHours  float64
	HourlyRateMinor int64

	// BillingIncrementHours rounds the estimate up to whole blocks
	// (e.g., 8 for day-granular estimates). Zero means per-hour.
	BillingIncrementHours int

	// MinimumBillableHours enforces a floor on tiny phases.
	MinimumBillableHours int
}

// Estimate is the costed result.
type Estimate struct {
	BillableHours int   `json:"billable_hours"`
	CostMinor     int64 `json:"cost_minor"`
}

// EstimateCost computes the billable cost of a phase. Pure calculation: hours
// are rounded up to the billing increment after applying the minimum, then
// multiplied by the hourly rate.
func EstimateCost(in EstimateInput) Estimate {
	hours := billableHours(in.EstimatedHours, in.MinimumBillableHours, in.BillingIncrementHours)
	return Estimate{
		BillableHours: hours,
		CostMinor:     in.HourlyRateMinor * int64(hours),
	}
}

func billableHours(actual float64, minHours, incrementHours int) int {
	if actual < 0 {
		actual = 0
	}
	if minHours < 0 {
		minHours = 0
	}
	if incrementHours <= 0 {
		incrementHours = 1
	}

	h := int(math.Ceil(actual))
	if h < minHours {
		h = minHours
	}

	// round up to nearest increment
	q := h / incrementHours
	if h%incrementHours != 0 {
		q++
	}
	return q * incrementHours
}
