package lifecycle

import (
	"testing"
	"time"

	"demand-platform/internal/demand"
)

func TestValidate_StandByRequiresRegulatoryFields(t *testing.T) {
	deadline := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		regulatory bool
		deadline   *time.Time
		want       bool
	}{
		{"neither", false, nil, false},
		{"flag only", true, nil, false},
		{"deadline only", false, &deadline, false},
		{"both", true, &deadline, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Validate(Input{
				Current:            demand.StatusBacklog,
				Target:             demand.StatusStandBy,
				Priority:           demand.PriorityMedium,
				Regulatory:         tc.regulatory,
				RegulatoryDeadline: tc.deadline,
			})
			if res.Allowed != tc.want {
				t.Fatalf("allowed = %v, want %v (message %q)", res.Allowed, tc.want, res.Message)
			}
			if !tc.want && res.Message == "" {
				t.Fatalf("rejection must carry a message")
			}
		})
	}
}

func TestValidate_RejectsUnreachableTargets(t *testing.T) {
	res := Validate(Input{Current: demand.StatusBacklog, Target: demand.StatusCompleted})
	if res.Allowed {
		t.Fatalf("backlog -> completed must be illegal")
	}
}

func TestValidate_TerminalStatesHaveNoExits(t *testing.T) {
	for _, s := range []demand.Status{demand.StatusCompleted, demand.StatusRejected, demand.StatusArchived} {
		res := Validate(Input{Current: s, Target: demand.StatusBacklog})
		if res.Allowed {
			t.Fatalf("expected no transitions out of %s", s)
		}
	}
}

func TestValidate_SameStatusRejected(t *testing.T) {
	res := Validate(Input{Current: demand.StatusBacklog, Target: demand.StatusBacklog})
	if res.Allowed {
		t.Fatalf("no-op transition must be rejected")
	}
}

func TestValidate_TerminalTargetNeedsConfirmation(t *testing.T) {
	res := Validate(Input{Current: demand.StatusInProgress, Target: demand.StatusCompleted})
	if !res.Allowed || !res.RequiresConfirmation || res.ConfirmationMessage == "" {
		t.Fatalf("expected allowed with confirmation, got %+v", res)
	}
}

func TestValidate_TechnicalReviewReversal(t *testing.T) {
	base := Input{
		Current: demand.StatusAwaitingTechnicalReview,
		Target:  demand.StatusApprovedByPM,
	}

	res := Validate(base)
	if !res.Allowed || !res.RequiresConfirmation {
		t.Fatalf("reversal without phases should be allowed with confirmation, got %+v", res)
	}

	withPhases := base
	withPhases.PhaseCount = 1
	res = Validate(withPhases)
	if res.Allowed {
		t.Fatalf("reversal with phase records must be illegal")
	}
}

func TestValidate_IsDeterministic(t *testing.T) {
	in := Input{Current: demand.StatusBacklog, Target: demand.StatusAwaitingManager, Priority: demand.PriorityHigh}
	first := Validate(in)
	for i := 0; i < 5; i++ {
		if got := Validate(in); got != first {
			t.Fatalf("validator not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestCascadeTarget(t *testing.T) {
	cases := []struct {
		committed demand.Status
		priority  demand.Priority
		want      bool
	}{
		{demand.StatusApprovedByPM, demand.PriorityLow, true},
		{demand.StatusApprovedByPM, demand.PriorityMedium, true},
		{demand.StatusApprovedByPM, demand.PriorityHigh, false},
		{demand.StatusApprovedByPM, demand.PriorityCritical, false},
		{demand.StatusApproved, demand.PriorityLow, false},
	}
	for _, tc := range cases {
		target, ok := CascadeTarget(tc.committed, tc.priority)
		if ok != tc.want {
			t.Fatalf("CascadeTarget(%s, %s) ok = %v, want %v", tc.committed, tc.priority, ok, tc.want)
		}
		if ok && target != demand.StatusInProgress {
			t.Fatalf("cascade target must be in_progress, got %s", target)
		}
	}
}
