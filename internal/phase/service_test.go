package phase

import (
	"context"
	"testing"

	"demand-platform/internal/audit"
	"demand-platform/internal/demand"
)

func TestEstimateCost(t *testing.T) {
	cases := []struct {
		name      string
		in        EstimateInput
		wantHours int
		wantCost  int64
	}{
		{"zero", EstimateInput{}, 0, 0},
		{"exact hours", EstimateInput{EstimatedHours: 8, HourlyRateMinor: 10000}, 8, 80000},
		{"fractional rounds up", EstimateInput{EstimatedHours: 7.2, HourlyRateMinor: 10000}, 8, 80000},
		{"minimum applies", EstimateInput{EstimatedHours: 1, HourlyRateMinor: 10000, MinimumBillableHours: 4}, 4, 40000},
		{"increment rounds up", EstimateInput{EstimatedHours: 9, HourlyRateMinor: 10000, BillingIncrementHours: 8}, 16, 160000},
		{"negative clamps to zero", EstimateInput{EstimatedHours: -3, HourlyRateMinor: 10000}, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EstimateCost(tc.in)
			if got.BillableHours != tc.wantHours || got.CostMinor != tc.wantCost {
				t.Fatalf("EstimateCost(%+v) = %+v, want hours=%d cost=%d",
					tc.in, got, tc.wantHours, tc.wantCost)
			}
		})
	}
}

func TestAdd_WritesPhaseAndEvent(t *testing.T) {
	repo := NewMemoryRepo(nil)
	svc := NewService(repo)

	p, err := svc.Add(context.Background(), AddRequest{
		DemandID: "d-1", ActorID: "u-1",
		Name: "discovery", Sequence: 1,
		EstimatedHours: 7.5, Currency: "BRL", HourlyRateMinor: 25000,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if p.EstimatedCostMinor != 8*25000 {
		t.Fatalf("cost = %d, want %d", p.EstimatedCostMinor, 8*25000)
	}

	evs := repo.Events().Events()
	if len(evs) != 1 || evs[0].Action != audit.ActionAddPhase {
		t.Fatalf("events = %+v, want single add_phase", evs)
	}
	if evs[0].After["name"] != "discovery" {
		t.Fatalf("event snapshot = %v", evs[0].After)
	}

	n, err := svc.CountForDemand(context.Background(), "d-1")
	if err != nil || n != 1 {
		t.Fatalf("CountForDemand = %d, %v", n, err)
	}
}

func TestAdd_Validation(t *testing.T) {
	svc := NewService(NewMemoryRepo(nil))

	_, err := svc.Add(context.Background(), AddRequest{DemandID: "d-1", ActorID: "u-1"})
	if !demand.IsValidationError(err) {
		t.Fatalf("missing name: want ValidationError, got %v", err)
	}

	_, err = svc.Add(context.Background(), AddRequest{
		DemandID: "d-1", ActorID: "u-1", Name: "x", EstimatedHours: -1,
	})
	if !demand.IsValidationError(err) {
		t.Fatalf("negative hours: want ValidationError, got %v", err)
	}
}

func TestUpdate_RecostsAndAppendsEvent(t *testing.T) {
	repo := NewMemoryRepo(nil)
	svc := NewService(repo)

	p, err := svc.Add(context.Background(), AddRequest{
		DemandID: "d-1", ActorID: "u-1",
		Name: "build", EstimatedHours: 10, HourlyRateMinor: 10000,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	hours := 20.0
	updated, err := svc.Update(context.Background(), UpdateRequest{
		DemandID: "d-1", PhaseID: p.ID, ActorID: "u-2",
		EstimatedHours: &hours,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.EstimatedCostMinor != 200000 {
		t.Fatalf("recosted = %d, want 200000", updated.EstimatedCostMinor)
	}

	evs := repo.Events().Events()
	last := evs[len(evs)-1]
	if last.Action != audit.ActionUpdatePhase {
		t.Fatalf("last action = %s, want update_phase", last.Action)
	}
	changes := audit.Diff(last.Before, last.After)
	keys := map[string]bool{}
	for _, c := range changes {
		keys[c.Key] = true
	}
	if !keys["estimated_hours"] || !keys["estimated_cost_minor"] {
		t.Fatalf("diff keys = %v, want estimated_hours and estimated_cost_minor", keys)
	}
}

func TestUpdate_UnknownPhase(t *testing.T) {
	svc := NewService(NewMemoryRepo(nil))
	_, err := svc.Update(context.Background(), UpdateRequest{
		DemandID: "d-1", PhaseID: "nope", ActorID: "u-1",
	})
	if err != ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
