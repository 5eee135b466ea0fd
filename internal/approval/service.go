package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"demand-platform/internal/audit"
	"demand-platform/internal/demand"
	"demand-platform/internal/roster"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("approval record not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// EventSource is the slice of the event log the reconciliation reads.
type EventSource interface {
	ListForDemand(ctx context.Context, demandID string, f audit.ListFilter) ([]audit.Event, error)
}

// Store is the mutable approval ledger, keyed by (demand, level, approver).
// Apply upserts the record and appends the matching event atomically.
type Store interface {
	Apply(ctx context.Context, r Record, e audit.Event) (Record, error)
	ListForDemand(ctx context.Context, demandID string) ([]Record, error)
}

// Service owns approval votes and the reconciled approvals view.
type Service struct {
	events EventSource
	store  Store
	roster roster.Provider
	clock  func() time.Time
}

func NewService(events EventSource, store Store, rosterProvider roster.Provider) *Service {
	return &Service{events: events, store: store, roster: rosterProvider, clock: time.Now}
}

// Reconcile produces the canonical approvals view for one demand.
//
// The read is side-effect-free and safe to repeat. A source returning
// not-found contributes nothing; any other fetch failure aborts the whole
// read so the merge never mixes a half-fetched source with the others.
func (s *Service) Reconcile(ctx context.Context, companyID, demandID string) ([]Entry, error) {
	if companyID == "" || demandID == "" {
		return nil, ErrInvalidArgument
	}

	events, err := s.events.ListForDemand(ctx, demandID, audit.ListFilter{Actions: ApprovalActions()})
	if err != nil && !errors.Is(err, audit.ErrNotFound) {
		return nil, fmt.Errorf("fetch approval events: %w", err)
	}

	records, err := s.store.ListForDemand(ctx, demandID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("fetch approval records: %w", err)
	}

	members, err := s.roster.ActiveMembers(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("fetch committee roster: %w", err)
	}

	return Reconcile(events, records, members), nil
}

type VoteRequest struct {
	CompanyID string
	DemandID  string

	ApproverID   string
	ApproverName string

	Level   Level
	Approve bool

	// Reason is required when rejecting.
	Reason string
}

// Vote records one approver's decision at one level: the ledger row is
// upserted (same approver acting again overwrites their earlier outcome) and
// the matching event is appended, in one transaction.
func (s *Service) Vote(ctx context.Context, req VoteRequest) (Record, error) {
	if req.DemandID == "" || req.ApproverID == "" {
		return Record{}, ErrInvalidArgument
	}
	if !req.Level.Valid() {
		return Record{}, demand.NewValidationError("approval level must be one of manager, committee, technical")
	}
	if !req.Approve && req.Reason == "" {
		return Record{}, demand.NewValidationError("a reason is required when rejecting")
	}

	status := StatusApproved
	if !req.Approve {
		status = StatusRejected
	}
	now := s.clock().UTC()

	r := Record{
		ID:           uuid.NewString(),
		DemandID:     req.DemandID,
		Level:        req.Level,
		ApproverID:   req.ApproverID,
		ApproverName: req.ApproverName,
		Status:       status,
		Reason:       req.Reason,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	e := audit.Event{
		ID:          uuid.NewString(),
		DemandID:    req.DemandID,
		ActorID:     req.ApproverID,
		ActorName:   req.ApproverName,
		Action:      voteAction(req.Level, status),
		Description: voteDescription(req.Level, status, req.Reason),
		CreatedAt:   now,
	}

	return s.store.Apply(ctx, r, e)
}

func voteAction(level Level, status RecordStatus) audit.Action {
	for a, meta := range approvalActions {
		if meta.level == level && meta.status == status {
			return a
		}
	}
	return audit.ActionApprove
}

func voteDescription(level Level, status RecordStatus, reason string) string {
	d := fmt.Sprintf("demand %s at %s level", status, level)
	if reason != "" {
		d = fmt.Sprintf("%s: %s", d, reason)
	}
	return d
}
