package approval

import (
	"time"

	"demand-platform/internal/audit"
)

// Level is one of the three approval tiers a demand must clear.
type Level string

const (
	LevelManager   Level = "manager"
	LevelCommittee Level = "committee"
	LevelTechnical Level = "technical"
)

// levelRank fixes the display order of levels: manager < committee < technical.
var levelRank = map[Level]int{
	LevelManager:   0,
	LevelCommittee: 1,
	LevelTechnical: 2,
}

func (l Level) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

// RecordStatus is the current outcome of one approver at one level.
type RecordStatus string

const (
	StatusPending  RecordStatus = "pending"
	StatusApproved RecordStatus = "approved"
	StatusRejected RecordStatus = "rejected"
)

// statusPriority ranks outcomes for the reconciliation merge: a recorded
// decision (approved/rejected) always outranks pending, and pending outranks
// anything unrecognizable. Recency only matters within the same rank.
func statusPriority(s RecordStatus) int {
	switch s {
	case StatusApproved, StatusRejected:
		return 2
	case StatusPending:
		return 1
	default:
		return 0
	}
}

// Record is one mutable row in the approval ledger, keyed by
// (demand, level, approver). It is created when an approver first acts and
// updated in place when the same approver acts again at the same level.
type Record struct {
	ID           string       `json:"id"`
	DemandID     string       `json:"demand_id"`
	Level        Level        `json:"level"`
	ApproverID   string       `json:"approver_id"`
	ApproverName string       `json:"approver_name,omitempty"`
	Status       RecordStatus `json:"status"`
	Reason       string       `json:"reason,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Entry is one reconciled approval row: the winning status for a
// (level, approver) pair after merging events, ledger records, and the
// committee roster. Derived, never persisted.
type Entry struct {
	Level        Level        `json:"level"`
	ApproverID   string       `json:"approver_id,omitempty"`
	ApproverName string       `json:"approver_name,omitempty"`
	Status       RecordStatus `json:"status"`
	Reason       string       `json:"reason,omitempty"`

	// Timestamp is the instant backing the winning status; zero when no source
	// carried one (e.g. a synthetic roster-pending entry).
	Timestamp time.Time `json:"timestamp"`
}

func (e Entry) hasTimestamp() bool { return !e.Timestamp.IsZero() }

// key identifies one merge slot. Entries without an approver share the
// per-level "global" slot.
func (e Entry) key() string {
	id := e.ApproverID
	if id == "" {
		id = "global"
	}
	return string(e.Level) + "-" + id
}

// approvalActions maps the six approval-shaped event action codes to the
// level and outcome they express. Every other action is invisible to the
// reconciliation.
var approvalActions = map[audit.Action]struct {
	level  Level
	status RecordStatus
}{
	audit.ActionApproveManager:   {LevelManager, StatusApproved},
	audit.ActionRejectManager:    {LevelManager, StatusRejected},
	audit.ActionApproveCommittee: {LevelCommittee, StatusApproved},
	audit.ActionRejectCommittee:  {LevelCommittee, StatusRejected},
	audit.ActionApproveTechnical: {LevelTechnical, StatusApproved},
	audit.ActionRejectTechnical:  {LevelTechnical, StatusRejected},
}

// ApprovalActions lists the event action codes the reconciliation consumes,
// for use as a ListFilter.
func ApprovalActions() []audit.Action {
	out := make([]audit.Action, 0, len(approvalActions))
	for a := range approvalActions {
		out = append(out, a)
	}
	return out
}
