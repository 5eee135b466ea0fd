package demand

import (
	"context"
	"errors"
	"fmt"
	"time"

	"demand-platform/internal/audit"
	"demand-platform/internal/notify"
	"demand-platform/pkg/logger"

	"github.com/google/uuid"
)

// Service provides demand CRUD and field edits.
//
// Scope rule:
// - Edits to scope-relevant fields (description, checklist, classification,
//   estimated hours/cost) increment the version counter and append a
//   scope_change event carrying the full after-snapshot, in one transaction.
// - All other edits append a plain edit event and leave the version alone.
//
// Status transitions do not live here; see internal/lifecycle.
type Service struct {
	repo     Repository
	notifier notify.Notifier
	clock    func() time.Time
}

func NewService(repo Repository, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Service{repo: repo, notifier: notifier, clock: time.Now}
}

type CreateRequest struct {
	Code           string     `json:"code"`
	CompanyID      string     `json:"company_id"`
	SquadID        string     `json:"squad_id,omitempty"`
	RequesterID    string     `json:"requester_id"`
	Priority       Priority   `json:"priority"`
	Classification string     `json:"classification,omitempty"`
	Regulatory     bool       `json:"regulatory"`
	RegulatoryDeadline *time.Time `json:"regulatory_deadline,omitempty"`
	Description    string     `json:"description,omitempty"`
	Checklist      string     `json:"checklist,omitempty"`
	EstimatedHours float64    `json:"estimated_hours,omitempty"`
	EstimatedCostMinor int64  `json:"estimated_cost_minor,omitempty"`
	ROIPercent     float64    `json:"roi_percent,omitempty"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Demand, error) {
	if req.CompanyID == "" || req.RequesterID == "" || req.Code == "" {
		return Demand{}, ErrInvalidArgument
	}
	if !req.Priority.Valid() {
		return Demand{}, NewValidationError("priority must be one of low, medium, high, critical")
	}
	if req.Regulatory && req.RegulatoryDeadline == nil {
		return Demand{}, NewValidationError("regulatory demands require a regulatory deadline")
	}

	now := s.clock().UTC()
	d := Demand{
		ID:                 uuid.NewString(),
		Code:               req.Code,
		CompanyID:          req.CompanyID,
		SquadID:            req.SquadID,
		RequesterID:        req.RequesterID,
		Status:             StatusBacklog,
		Priority:           req.Priority,
		Classification:     req.Classification,
		Regulatory:         req.Regulatory,
		RegulatoryDeadline: req.RegulatoryDeadline,
		Description:        req.Description,
		Checklist:          req.Checklist,
		EstimatedHours:     req.EstimatedHours,
		EstimatedCostMinor: req.EstimatedCostMinor,
		ROIPercent:         req.ROIPercent,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	e := audit.Event{
		DemandID:    d.ID,
		ActorID:     req.RequesterID,
		Action:      audit.ActionCreate,
		Description: fmt.Sprintf("demand %s created", d.Code),
		After:       Fields(d),
		CreatedAt:   now,
	}
	e.ID = uuid.NewString()

	if err := s.repo.Create(ctx, d, e); err != nil {
		return Demand{}, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, companyID, id string) (Demand, error) {
	if companyID == "" || id == "" {
		return Demand{}, ErrInvalidArgument
	}
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) ListByCompany(ctx context.Context, companyID string) ([]Demand, error) {
	if companyID == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.ListByCompany(ctx, companyID)
}

// UpdateRequest carries optional field edits; nil pointers mean "unchanged".
type UpdateRequest struct {
	ActorID string

	SquadID            *string
	Priority           *Priority
	Classification     *string
	Regulatory         *bool
	RegulatoryDeadline *time.Time
	Description        *string
	Notes              *string
	Checklist          *string
	EstimatedHours     *float64
	EstimatedCostMinor *int64
	ROIPercent         *float64
}

// Update applies field edits to a demand and records them on the event log.
func (s *Service) Update(ctx context.Context, companyID, id string, req UpdateRequest) (Demand, error) {
	if companyID == "" || id == "" || req.ActorID == "" {
		return Demand{}, ErrInvalidArgument
	}

	cur, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return Demand{}, err
	}

	next := cur
	scopeChange := false

	if req.SquadID != nil {
		next.SquadID = *req.SquadID
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return Demand{}, NewValidationError("priority must be one of low, medium, high, critical")
		}
		next.Priority = *req.Priority
	}
	if req.Classification != nil && *req.Classification != cur.Classification {
		next.Classification = *req.Classification
		scopeChange = true
	}
	if req.Regulatory != nil {
		next.Regulatory = *req.Regulatory
	}
	if req.RegulatoryDeadline != nil {
		next.RegulatoryDeadline = req.RegulatoryDeadline
	}
	if next.Regulatory && next.RegulatoryDeadline == nil {
		return Demand{}, NewValidationError("regulatory demands require a regulatory deadline")
	}
	if req.Description != nil && *req.Description != cur.Description {
		next.Description = *req.Description
		scopeChange = true
	}
	if req.Notes != nil {
		next.Notes = *req.Notes
	}
	if req.Checklist != nil && *req.Checklist != cur.Checklist {
		next.Checklist = *req.Checklist
		scopeChange = true
	}
	if req.EstimatedHours != nil && *req.EstimatedHours != cur.EstimatedHours {
		next.EstimatedHours = *req.EstimatedHours
		scopeChange = true
	}
	if req.EstimatedCostMinor != nil && *req.EstimatedCostMinor != cur.EstimatedCostMinor {
		next.EstimatedCostMinor = *req.EstimatedCostMinor
		scopeChange = true
	}
	if req.ROIPercent != nil {
		next.ROIPercent = *req.ROIPercent
	}

	now := s.clock().UTC()
	next.UpdatedAt = now

	action := audit.ActionEdit
	desc := "demand fields edited"
	if scopeChange {
		action = audit.ActionScopeChange
		desc = "demand scope changed"
		next.Version = cur.Version + 1
	}

	e := audit.Event{
		ID:          uuid.NewString(),
		DemandID:    cur.ID,
		ActorID:     req.ActorID,
		Action:      action,
		Description: desc,
		Before:      Fields(cur),
		After:       Fields(next),
		CreatedAt:   now,
	}

	return s.repo.Update(ctx, next, scopeChange, e)
}

// AssignOwner sets the owning actor and emits a notification intent to the
// new owner. The intent is best-effort; a failed send never fails the write.
func (s *Service) AssignOwner(ctx context.Context, companyID, id, actorID, ownerID string) (Demand, error) {
	if companyID == "" || id == "" || actorID == "" || ownerID == "" {
		return Demand{}, ErrInvalidArgument
	}

	cur, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return Demand{}, err
	}

	next := cur
	next.OwnerID = ownerID
	now := s.clock().UTC()
	next.UpdatedAt = now

	e := audit.Event{
		ID:          uuid.NewString(),
		DemandID:    cur.ID,
		ActorID:     actorID,
		Action:      audit.ActionAssignOwner,
		Description: fmt.Sprintf("owner assigned to %s", ownerID),
		Before:      audit.Snapshot{"owner_id": cur.OwnerID},
		After:       audit.Snapshot{"owner_id": ownerID},
		CreatedAt:   now,
	}

	out, err := s.repo.Update(ctx, next, false, e)
	if err != nil {
		return Demand{}, err
	}

	if err := s.notifier.Send(ctx, notify.Intent{
		RecipientID: ownerID,
		DemandID:    cur.ID,
		Subject:     "demand assigned",
		Message:     fmt.Sprintf("You are now the owner of demand %s.", cur.Code),
	}); err != nil {
		logger.From(ctx).Warn("owner notification failed", "demand_id", cur.ID, "err", err)
	}
	return out, nil
}

// LogDailyUpdate appends a free-text progress note to the event log.
func (s *Service) LogDailyUpdate(ctx context.Context, companyID, id, actorID, text string) error {
	if companyID == "" || id == "" || actorID == "" {
		return ErrInvalidArgument
	}
	if text == "" {
		return NewValidationError("daily update text is required")
	}

	cur, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return err
	}

	e := audit.Event{
		ID:          uuid.NewString(),
		DemandID:    cur.ID,
		ActorID:     actorID,
		Action:      audit.ActionLogDailyUpdate,
		Description: text,
		CreatedAt:   s.clock().UTC(),
	}
	// Daily updates don't touch demand fields; reuse Update with the current
	// row so the event rides the same transactional path.
	_, err = s.repo.Update(ctx, cur, false, e)
	return err
}

// IsValidationError reports whether err is a local, recoverable validation
// failure whose message should be surfaced verbatim.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Fields renders the full field-set of a demand as an event snapshot.
// scope_change events store this so any version can be reconstructed without
// replaying the whole log.
func Fields(d Demand) audit.Snapshot {
	s := audit.Snapshot{
		"code":                 d.Code,
		"company_id":           d.CompanyID,
		"squad_id":             d.SquadID,
		"requester_id":         d.RequesterID,
		"owner_id":             d.OwnerID,
		"status":               string(d.Status),
		"priority":             string(d.Priority),
		"classification":       d.Classification,
		"regulatory":           d.Regulatory,
		"description":          d.Description,
		"notes":                d.Notes,
		"checklist":            d.Checklist,
		"estimated_hours":      d.EstimatedHours,
		"estimated_cost_minor": d.EstimatedCostMinor,
		"roi_percent":          d.ROIPercent,
		"version":              d.Version,
	}
	if d.RegulatoryDeadline != nil {
		s["regulatory_deadline"] = d.RegulatoryDeadline.UTC().Format(time.RFC3339)
	}
	return s
}
