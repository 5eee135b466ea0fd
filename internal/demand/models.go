package demand

import "time"

// Demand is the work-request record moving through the approval-and-delivery
// lifecycle.
//
// Invariants:
// - company_id is required (tenancy).
// - Demands are never hard-deleted; archival is a status value.
// - Version starts at 1 and is incremented transactionally alongside each
//   scope_change event append, never derived by counting events.
// - Regulatory and RegulatoryDeadline travel together: a regulatory demand
//   must carry a deadline.
type Demand struct {
	ID   string `json:"id" db:"id"`
	Code string `json:"code" db:"code"`

	CompanyID string `json:"company_id" db:"company_id"`
	SquadID   string `json:"squad_id,omitempty" db:"squad_id"`

	RequesterID string `json:"requester_id" db:"requester_id"`
	OwnerID     string `json:"owner_id,omitempty" db:"owner_id"`

	Status   Status   `json:"status" db:"status"`
	Priority Priority `json:"priority" db:"priority"`

	// Classification is a free-form tag (e.g. "new_feature", "tech_debt").
	Classification string `json:"classification,omitempty" db:"classification"`

	Regulatory         bool       `json:"regulatory" db:"regulatory"`
	RegulatoryDeadline *time.Time `json:"regulatory_deadline,omitempty" db:"regulatory_deadline"`

	Description string `json:"description,omitempty" db:"description"`
	Notes       string `json:"notes,omitempty" db:"notes"`
	Checklist   string `json:"checklist,omitempty" db:"checklist"`

	EstimatedHours     float64 `json:"estimated_hours" db:"estimated_hours"`
	EstimatedCostMinor int64   `json:"estimated_cost_minor" db:"estimated_cost_minor"`
	ROIPercent         float64 `json:"roi_percent" db:"roi_percent"`

	// Version is the scope-change counter, >= 1.
	Version int `json:"version" db:"version"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Status is the demand lifecycle state.
type Status string

const (
	StatusStandBy                 Status = "stand_by"
	StatusBacklog                 Status = "backlog"
	StatusAwaitingManager         Status = "awaiting_manager"
	StatusApprovedByPM            Status = "approved_by_pm"
	StatusAwaitingTechnicalReview Status = "awaiting_technical_review"
	StatusAwaitingCommittee       Status = "awaiting_committee"
	StatusUnderReview             Status = "under_review"
	StatusApproved                Status = "approved"
	StatusInProgress              Status = "in_progress"
	StatusBlocked                 Status = "blocked"
	StatusCompleted               Status = "completed"
	StatusRejected                Status = "rejected"
	StatusArchived                Status = "archived"
)

var allStatuses = map[Status]struct{}{
	StatusStandBy: {}, StatusBacklog: {}, StatusAwaitingManager: {},
	StatusApprovedByPM: {}, StatusAwaitingTechnicalReview: {},
	StatusAwaitingCommittee: {}, StatusUnderReview: {}, StatusApproved: {},
	StatusInProgress: {}, StatusBlocked: {}, StatusCompleted: {},
	StatusRejected: {}, StatusArchived: {},
}

func (s Status) Valid() bool {
	_, ok := allStatuses[s]
	return ok
}

// Terminal reports whether the status has no legal outgoing transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusArchived:
		return true
	default:
		return false
	}
}

// Priority of the demand. Low/Medium demands auto-promote to InProgress after
// project-manager approval.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}
