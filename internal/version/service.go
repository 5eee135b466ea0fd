package version

import (
	"context"
	"time"

	"demand-platform/internal/audit"
	"demand-platform/internal/demand"
)

// Snapshot is one numbered scope version of a demand, derived from the event
// log. Nothing here is persisted separately: the demand stores only its
// current version counter, and each scope-change event carries the full
// field-set at that moment, so the Nth newest scope-change event (0-indexed)
// is version currentVersion-N.
type Snapshot struct {
	Number    int            `json:"number"`
	ActorID   string         `json:"actor_id"`
	ChangedAt time.Time      `json:"changed_at"`
	Fields    audit.Snapshot `json:"fields"`

	// Changes is the rendered diff against the previous version.
	Changes []audit.FieldChange `json:"changes,omitempty"`
}

type DemandSource interface {
	Get(ctx context.Context, companyID, id string) (demand.Demand, error)
}

type EventSource interface {
	ListForDemand(ctx context.Context, demandID string, f audit.ListFilter) ([]audit.Event, error)
}

// Service derives the numbered version history of a demand.
type Service struct {
	demands DemandSource
	events  EventSource
}

func NewService(demands DemandSource, events EventSource) *Service {
	return &Service{demands: demands, events: events}
}

// History returns the demand's scope versions, newest first. A demand whose
// scope never changed has an empty history; its only version is the live row.
func (s *Service) History(ctx context.Context, companyID, demandID string) ([]Snapshot, error) {
	if companyID == "" || demandID == "" {
		return nil, demand.ErrInvalidArgument
	}

	d, err := s.demands.Get(ctx, companyID, demandID)
	if err != nil {
		return nil, err
	}

	events, err := s.events.ListForDemand(ctx, demandID, audit.ListFilter{
		Actions: []audit.Action{audit.ActionScopeChange},
	})
	if err != nil {
		return nil, err
	}

	out := make([]Snapshot, 0, len(events))
	for i, e := range events {
		out = append(out, Snapshot{
			Number:    d.Version - i,
			ActorID:   e.ActorID,
			ChangedAt: e.CreatedAt,
			Fields:    e.After,
			Changes:   audit.Diff(e.Before, e.After),
		})
	}
	return out, nil
}

// At returns the full field-set of one numbered version, or ErrNotFound when
// that version predates the log or does not exist yet.
func (s *Service) At(ctx context.Context, companyID, demandID string, number int) (Snapshot, error) {
	history, err := s.History(ctx, companyID, demandID)
	if err != nil {
		return Snapshot{}, err
	}
	for _, v := range history {
		if v.Number == number {
			return v, nil
		}
	}
	return Snapshot{}, demand.ErrNotFound
}
