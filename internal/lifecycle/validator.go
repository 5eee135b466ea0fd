package lifecycle

import (
	"fmt"
	"time"

	"demand-platform/internal/demand"
)

// Input is everything the validator needs to judge a requested transition.
// It is a plain value so the validator stays a pure function: no storage, no
// clocks, no side effects, same answer for the same input every time.
type Input struct {
	Current demand.Status
	Target  demand.Status

	Priority           demand.Priority
	Regulatory         bool
	RegulatoryDeadline *time.Time

	// PhaseCount is the number of phase/estimate records already attached to
	// the demand. Reverting a submitted technical review is illegal once any
	// exist.
	PhaseCount int
}

// Result is the validator's verdict.
//
// When RequiresConfirmation is true the transition is legal but externally
// consequential; the caller must obtain explicit confirmation before
// committing. Message is surfaced verbatim to the end actor on rejection.
type Result struct {
	Allowed              bool   `json:"allowed"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
	Message              string `json:"message,omitempty"`
	ConfirmationMessage  string `json:"confirmation_message,omitempty"`
}

// transitions is the legal-transition graph: targets reachable per source
// state. Terminal states (completed, rejected, archived) have no entry.
var transitions = map[demand.Status][]demand.Status{
	demand.StatusStandBy: {
		demand.StatusBacklog, demand.StatusArchived,
	},
	demand.StatusBacklog: {
		demand.StatusAwaitingManager, demand.StatusStandBy, demand.StatusArchived,
	},
	demand.StatusAwaitingManager: {
		demand.StatusApprovedByPM, demand.StatusRejected, demand.StatusBacklog, demand.StatusStandBy,
	},
	demand.StatusApprovedByPM: {
		demand.StatusAwaitingTechnicalReview, demand.StatusAwaitingCommittee,
		demand.StatusInProgress, demand.StatusStandBy,
	},
	demand.StatusAwaitingTechnicalReview: {
		demand.StatusAwaitingCommittee, demand.StatusApprovedByPM, demand.StatusRejected,
	},
	demand.StatusAwaitingCommittee: {
		demand.StatusUnderReview, demand.StatusApproved, demand.StatusRejected,
	},
	demand.StatusUnderReview: {
		demand.StatusApproved, demand.StatusRejected, demand.StatusAwaitingCommittee,
	},
	demand.StatusApproved: {
		demand.StatusInProgress, demand.StatusStandBy,
	},
	demand.StatusInProgress: {
		demand.StatusBlocked, demand.StatusCompleted, demand.StatusStandBy,
	},
	demand.StatusBlocked: {
		demand.StatusInProgress, demand.StatusStandBy, demand.StatusArchived,
	},
}

// Validate judges a single requested transition. It never mutates anything;
// callers apply the transition separately after honoring the verdict.
func Validate(in Input) Result {
	if !in.Current.Valid() || !in.Target.Valid() {
		return Result{Message: "unknown demand status"}
	}
	if in.Current == in.Target {
		return Result{Message: fmt.Sprintf("demand is already %s", in.Target)}
	}
	if in.Current.Terminal() {
		return Result{Message: fmt.Sprintf("a %s demand cannot change status", in.Current)}
	}

	if !targetReachable(in.Current, in.Target) {
		return Result{Message: fmt.Sprintf("cannot move a %s demand to %s", in.Current, in.Target)}
	}

	// Stand-by is reserved for regulatory work with a known deadline.
	if in.Target == demand.StatusStandBy {
		if !in.Regulatory || in.RegulatoryDeadline == nil {
			return Result{Message: "regulatory flag and regulatory deadline are required before moving to stand-by; edit the demand and try again"}
		}
	}

	// Reversing a submitted technical review is blocked once downstream
	// phase/estimate records exist.
	if in.Current == demand.StatusAwaitingTechnicalReview && in.Target == demand.StatusApprovedByPM {
		if in.PhaseCount > 0 {
			return Result{Message: "technical review cannot be reverted: phase records already exist for this demand"}
		}
		return Result{
			Allowed:              true,
			RequiresConfirmation: true,
			ConfirmationMessage:  "This reverts a submitted technical review. Continue?",
		}
	}

	if in.Target.Terminal() {
		return Result{
			Allowed:              true,
			RequiresConfirmation: true,
			ConfirmationMessage:  fmt.Sprintf("Moving this demand to %s cannot be undone. Continue?", in.Target),
		}
	}

	return Result{Allowed: true}
}

// CascadeTarget reports the automatic follow-up transition triggered by a
// committed transition, if any: low-risk work (priority low/medium) skips
// manual promotion and moves straight from approved_by_pm to in_progress.
func CascadeTarget(committed demand.Status, priority demand.Priority) (demand.Status, bool) {
	if committed != demand.StatusApprovedByPM {
		return "", false
	}
	if priority != demand.PriorityLow && priority != demand.PriorityMedium {
		return "", false
	}
	return demand.StatusInProgress, true
}

func targetReachable(from, to demand.Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
