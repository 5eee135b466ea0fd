package reporting

import (
	"context"
	"errors"
	"time"

	"demand-platform/internal/approval"
	"demand-platform/internal/demand"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// IMPORTANT:
// - Methods must enforce company filtering.
// - Implementations should query immutable sources where possible (demand
//   rows plus the append-only event log).

type Repository interface {
	ListDemands(ctx context.Context, companyID string, from, to time.Time) ([]demand.Demand, error)
}

// Reconciler yields the canonical approvals view; internal/approval provides
// the real implementation.
type Reconciler interface {
	Reconcile(ctx context.Context, companyID, demandID string) ([]approval.Entry, error)
}

type Service struct {
	repo      Repository
	approvals Reconciler
}

func NewService(repo Repository, approvals Reconciler) *Service {
	return &Service{repo: repo, approvals: approvals}
}

func (s *Service) PortfolioSummary(ctx context.Context, req PortfolioSummaryRequest) (PortfolioSummary, error) {
	if req.CompanyID == "" {
		return PortfolioSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return PortfolioSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return PortfolioSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListDemands(ctx, req.CompanyID, req.Range.From, req.Range.To)
	if err != nil {
		return PortfolioSummary{}, err
	}

	out := PortfolioSummary{
		CompanyID: req.CompanyID,
		SquadID:   req.SquadID,
		ByStatus:  make(map[string]int),
	}
	var roiSum float64
	var roiCount int
	for _, d := range rows {
		if req.SquadID != "" && d.SquadID != req.SquadID {
			continue
		}
		out.TotalDemands++
		out.ByStatus[string(d.Status)]++
		if d.Regulatory {
			out.RegulatoryDemands++
		}
		out.TotalEstimatedHours += d.EstimatedHours
		out.TotalEstimatedCostMinor += d.EstimatedCostMinor
		if d.ROIPercent != 0 {
			roiSum += d.ROIPercent
			roiCount++
		}
	}
	if roiCount > 0 {
		out.AverageROIPercent = roiSum / float64(roiCount)
	}
	return out, nil
}

func (s *Service) ApprovalProgress(ctx context.Context, req ApprovalProgressRequest) (ApprovalProgress, error) {
	if req.CompanyID == "" || req.DemandID == "" {
		return ApprovalProgress{}, ErrInvalidRequest
	}
	if s.approvals == nil {
		return ApprovalProgress{}, errors.New("reporting: approvals not configured")
	}

	entries, err := s.approvals.Reconcile(ctx, req.CompanyID, req.DemandID)
	if err != nil {
		return ApprovalProgress{}, err
	}

	out := ApprovalProgress{
		CompanyID: req.CompanyID,
		DemandID:  req.DemandID,
		ByLevel:   make(map[string]LevelProgress),
		Settled:   true,
	}
	for _, e := range entries {
		p := out.ByLevel[string(e.Level)]
		switch e.Status {
		case approval.StatusApproved:
			p.Approved++
		case approval.StatusRejected:
			p.Rejected++
		default:
			p.Pending++
			out.Settled = false
		}
		out.ByLevel[string(e.Level)] = p
		out.TotalEntries++
	}
	return out, nil
}
