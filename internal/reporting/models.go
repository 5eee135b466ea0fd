package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// PortfolioSummaryRequest requests aggregated demand metrics.
// Company isolation: CompanyID is required.

type PortfolioSummaryRequest struct {
	CompanyID string    `json:"company_id"`
	Range     TimeRange `json:"range"`
	SquadID   string    `json:"squad_id,omitempty"`
}

type PortfolioSummary struct {
	CompanyID string `json:"company_id"`
	SquadID   string `json:"squad_id,omitempty"`

	TotalDemands int `json:"total_demands"`

	// ByStatus holds a count per lifecycle status; statuses with zero demands
	// are omitted.
	ByStatus map[string]int `json:"by_status"`

	RegulatoryDemands int `json:"regulatory_demands"`

	TotalEstimatedHours     float64 `json:"total_estimated_hours"`
	TotalEstimatedCostMinor int64   `json:"total_estimated_cost_minor"`
	AverageROIPercent       float64 `json:"average_roi_percent"`
}

// ApprovalProgressRequest asks how far one demand is through its approval
// tiers.

type ApprovalProgressRequest struct {
	CompanyID string `json:"company_id"`
	DemandID  string `json:"demand_id"`
}

type LevelProgress struct {
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Pending  int `json:"pending"`
}

type ApprovalProgress struct {
	CompanyID string `json:"company_id"`
	DemandID  string `json:"demand_id"`

	// ByLevel keys are the approval levels (manager, committee, technical).
	ByLevel map[string]LevelProgress `json:"by_level"`

	TotalEntries int `json:"total_entries"`

	// Settled is true when no level has an open pending seat.
	Settled bool `json:"settled"`
}
