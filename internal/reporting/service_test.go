package reporting

import (
	"context"
	"testing"
	"time"

	"demand-platform/internal/approval"
	"demand-platform/internal/demand"
)

type stubReconciler struct {
	entries []approval.Entry
	err     error
}

func (s stubReconciler) Reconcile(ctx context.Context, companyID, demandID string) ([]approval.Entry, error) {
	return s.entries, s.err
}

func TestReporting_CompanyIsolation(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	repo.Demands = []demand.Demand{
		{ID: "d1", CompanyID: "co-1", Status: demand.StatusInProgress, EstimatedHours: 10, CreatedAt: now},
		{ID: "d2", CompanyID: "co-2", Status: demand.StatusInProgress, EstimatedHours: 50, CreatedAt: now},
	}
	svc := NewService(repo, nil)

	out, err := svc.PortfolioSummary(context.Background(), PortfolioSummaryRequest{
		CompanyID: "co-1",
		Range:     TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalDemands != 1 {
		t.Fatalf("expected 1 demand, got %d", out.TotalDemands)
	}
	if out.TotalEstimatedHours != 10 {
		t.Fatalf("expected 10 hours, got %v", out.TotalEstimatedHours)
	}
}

func TestReporting_PortfolioSummaryAggregates(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	repo.Demands = []demand.Demand{
		{ID: "d1", CompanyID: "co", SquadID: "sq", Status: demand.StatusBacklog,
			Regulatory: true, EstimatedHours: 40, EstimatedCostMinor: 400000, ROIPercent: 10, CreatedAt: now},
		{ID: "d2", CompanyID: "co", SquadID: "sq", Status: demand.StatusBacklog,
			EstimatedHours: 20, EstimatedCostMinor: 200000, ROIPercent: 30, CreatedAt: now},
		{ID: "d3", CompanyID: "co", SquadID: "other", Status: demand.StatusCompleted,
			EstimatedHours: 99, CreatedAt: now},
	}
	svc := NewService(repo, nil)

	out, err := svc.PortfolioSummary(context.Background(), PortfolioSummaryRequest{
		CompanyID: "co", SquadID: "sq",
		Range: TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalDemands != 2 || out.ByStatus["backlog"] != 2 {
		t.Fatalf("unexpected summary: %+v", out)
	}
	if out.RegulatoryDemands != 1 {
		t.Fatalf("expected 1 regulatory demand, got %d", out.RegulatoryDemands)
	}
	if out.TotalEstimatedCostMinor != 600000 {
		t.Fatalf("expected cost 600000, got %d", out.TotalEstimatedCostMinor)
	}
	if out.AverageROIPercent != 20 {
		t.Fatalf("expected avg ROI 20, got %v", out.AverageROIPercent)
	}
}

func TestReporting_InvalidRange(t *testing.T) {
	svc := NewService(NewMemoryRepo(), nil)
	now := time.Unix(1700000000, 0).UTC()
	_, err := svc.PortfolioSummary(context.Background(), PortfolioSummaryRequest{
		CompanyID: "co",
		Range:     TimeRange{From: now, To: now},
	})
	if err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestReporting_ApprovalProgress(t *testing.T) {
	svc := NewService(NewMemoryRepo(), stubReconciler{entries: []approval.Entry{
		{Level: approval.LevelManager, ApproverID: "m", Status: approval.StatusApproved},
		{Level: approval.LevelCommittee, ApproverID: "a", Status: approval.StatusApproved},
		{Level: approval.LevelCommittee, ApproverID: "b", Status: approval.StatusPending},
		{Level: approval.LevelTechnical, ApproverID: "t", Status: approval.StatusRejected},
	}})

	out, err := svc.ApprovalProgress(context.Background(), ApprovalProgressRequest{
		CompanyID: "co", DemandID: "d-1",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalEntries != 4 || out.Settled {
		t.Fatalf("unexpected progress: %+v", out)
	}
	committee := out.ByLevel["committee"]
	if committee.Approved != 1 || committee.Pending != 1 {
		t.Fatalf("unexpected committee progress: %+v", committee)
	}
	if out.ByLevel["technical"].Rejected != 1 {
		t.Fatalf("unexpected technical progress: %+v", out.ByLevel["technical"])
	}
}
