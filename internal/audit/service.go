package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for demand events.
//
// It MUST be append-only: no Update/Delete methods exist, and implementations
// must not add them.
type Repository interface {
	Append(ctx context.Context, e Event) error
	// ListForDemand returns events newest-first.
	ListForDemand(ctx context.Context, demandID string, f ListFilter) ([]Event, error)
}

var (
	ErrInvalidEvent = errors.New("audit: invalid event")
	ErrNotFound     = errors.New("audit: not found")
)

// Service records and queries the lifecycle event log.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// Append writes one immutable event. The id and timestamp are filled in when
// absent; everything else is stored as given.
func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.DemandID == "" {
		return ErrInvalidEvent
	}
	if e.ActorID == "" {
		return ErrInvalidEvent
	}
	if !e.Action.Valid() {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// ListForDemand returns a demand's events newest-first, optionally filtered by
// action and time window.
func (s *Service) ListForDemand(ctx context.Context, demandID string, f ListFilter) ([]Event, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	if demandID == "" {
		return nil, ErrInvalidEvent
	}
	return s.repo.ListForDemand(ctx, demandID, f)
}
