package phase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"demand-platform/internal/audit"
	"demand-platform/internal/demand"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("phase not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Repository persists phases. Writes are composite: the phase row and its
// event land in one transaction, same as demand writes.
type Repository interface {
	Create(ctx context.Context, p Phase, e audit.Event) error
	Update(ctx context.Context, p Phase, e audit.Event) (Phase, error)
	ListForDemand(ctx context.Context, demandID string) ([]Phase, error)
	CountForDemand(ctx context.Context, demandID string) (int, error)
}

// Service owns phase writes. It also satisfies the transition engine's phase
// counter, which is how phases lock the technical-review reversal.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type AddRequest struct {
	DemandID string
	ActorID  string

	Name        string
	Description string
	Sequence    int

	EstimatedHours  float64
	Currency        string
	HourlyRateMinor int64
}

func (s *Service) Add(ctx context.Context, req AddRequest) (Phase, error) {
	if req.DemandID == "" || req.ActorID == "" {
		return Phase{}, ErrInvalidArgument
	}
	if req.Name == "" {
		return Phase{}, demand.NewValidationError("phase name is required")
	}
	if req.EstimatedHours < 0 || req.HourlyRateMinor < 0 {
		return Phase{}, demand.NewValidationError("phase estimates cannot be negative")
	}

	now := s.clock().UTC()
	est := EstimateCost(EstimateInput{
		EstimatedHours:  req.EstimatedHours,
		HourlyRateMinor: req.HourlyRateMinor,
	})

	p := Phase{
		ID:                 uuid.NewString(),
		DemandID:           req.DemandID,
		Name:               req.Name,
		Description:        req.Description,
		Sequence:           req.Sequence,
		EstimatedHours:     req.EstimatedHours,
		Currency:           req.Currency,
		HourlyRateMinor:    req.HourlyRateMinor,
		EstimatedCostMinor: est.CostMinor,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	e := audit.Event{
		ID:          uuid.NewString(),
		DemandID:    req.DemandID,
		ActorID:     req.ActorID,
		Action:      audit.ActionAddPhase,
		Description: fmt.Sprintf("phase %q added", p.Name),
		After:       fields(p),
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, p, e); err != nil {
		return Phase{}, err
	}
	return p, nil
}

type UpdateRequest struct {
	DemandID string
	PhaseID  string
	ActorID  string

	Name            *string
	Description     *string
	Sequence        *int
	EstimatedHours  *float64
	HourlyRateMinor *int64
}

func (s *Service) Update(ctx context.Context, req UpdateRequest) (Phase, error) {
	if req.DemandID == "" || req.PhaseID == "" || req.ActorID == "" {
		return Phase{}, ErrInvalidArgument
	}

	phases, err := s.repo.ListForDemand(ctx, req.DemandID)
	if err != nil {
		return Phase{}, err
	}
	var cur Phase
	found := false
	for _, p := range phases {
		if p.ID == req.PhaseID {
			cur, found = p, true
			break
		}
	}
	if !found {
		return Phase{}, ErrNotFound
	}

	next := cur
	if req.Name != nil {
		if *req.Name == "" {
			return Phase{}, demand.NewValidationError("phase name is required")
		}
		next.Name = *req.Name
	}
	if req.Description != nil {
		next.Description = *req.Description
	}
	if req.Sequence != nil {
		next.Sequence = *req.Sequence
	}
	if req.EstimatedHours != nil {
		if *req.EstimatedHours < 0 {
			return Phase{}, demand.NewValidationError("phase estimates cannot be negative")
		}
		next.EstimatedHours = *req.EstimatedHours
	}
	if req.HourlyRateMinor != nil {
		if *req.HourlyRateMinor < 0 {
			return Phase{}, demand.NewValidationError("phase estimates cannot be negative")
		}
		next.HourlyRateMinor = *req.HourlyRateMinor
	}

	est := EstimateCost(EstimateInput{
		EstimatedHours:  next.EstimatedHours,
		HourlyRateMinor: next.HourlyRateMinor,
	})
	next.EstimatedCostMinor = est.CostMinor
	next.UpdatedAt = s.clock().UTC()

	e := audit.Event{
		ID:          uuid.NewString(),
		DemandID:    req.DemandID,
		ActorID:     req.ActorID,
		Action:      audit.ActionUpdatePhase,
		Description: fmt.Sprintf("phase %q updated", next.Name),
		Before:      fields(cur),
		After:       fields(next),
		CreatedAt:   next.UpdatedAt,
	}

	return s.repo.Update(ctx, next, e)
}

func (s *Service) ListForDemand(ctx context.Context, demandID string) ([]Phase, error) {
	if demandID == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.ListForDemand(ctx, demandID)
}

// CountForDemand satisfies the lifecycle engine's PhaseCounter.
func (s *Service) CountForDemand(ctx context.Context, demandID string) (int, error) {
	return s.repo.CountForDemand(ctx, demandID)
}

func fields(p Phase) audit.Snapshot {
	return audit.Snapshot{
		"name":                 p.Name,
		"description":          p.Description,
		"sequence":             p.Sequence,
		"estimated_hours":      p.EstimatedHours,
		"currency":             p.Currency,
		"hourly_rate_minor":    p.HourlyRateMinor,
		"estimated_cost_minor": p.EstimatedCostMinor,
	}
}
