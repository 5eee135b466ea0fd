package lifecycle

import (
	"context"
	"fmt"
	"time"

	"demand-platform/internal/audit"
	"demand-platform/internal/demand"
	"demand-platform/internal/notify"
	"demand-platform/pkg/logger"

	"github.com/google/uuid"
)

// PhaseCounter reports how many phase/estimate records exist for a demand.
// internal/phase provides the real implementation; a nil counter is treated
// as zero phases.
type PhaseCounter interface {
	CountForDemand(ctx context.Context, demandID string) (int, error)
}

// Engine applies status transitions.
//
// Flow per request: load fresh state, run the pure validator, honor the
// confirmation gate, then commit via a compare-and-swap status write that
// appends the change event in the same transaction. Two concurrent requests
// against a stale read cannot both succeed; the loser gets ErrConflict.
//
// The auto-promotion cascade is a dependent, non-atomic follow-up: if the
// second write fails the first stays committed.
type Engine struct {
	demands  demand.Repository
	phases   PhaseCounter
	notifier notify.Notifier
	clock    func() time.Time
}

func NewEngine(demands demand.Repository, phases PhaseCounter, notifier notify.Notifier) *Engine {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Engine{demands: demands, phases: phases, notifier: notifier, clock: time.Now}
}

type TransitionRequest struct {
	CompanyID string
	DemandID  string
	ActorID   string

	Target demand.Status

	// Confirmed acknowledges a RequiresConfirmation verdict. Transitions that
	// need confirmation are not committed until the caller retries with
	// Confirmed set.
	Confirmed bool

	// Reason is required when rejecting; recorded on the event and forwarded
	// to the requester.
	Reason string
}

type TransitionOutcome struct {
	Demand demand.Demand `json:"demand"`

	// Committed is false when the request stopped at the confirmation gate.
	Committed bool `json:"committed"`

	// Cascaded is true when the automatic promotion to in_progress was also
	// applied.
	Cascaded bool `json:"cascaded"`

	RequiresConfirmation bool   `json:"requires_confirmation,omitempty"`
	ConfirmationMessage  string `json:"confirmation_message,omitempty"`
}

// Preview runs the validator against fresh state without committing anything.
func (e *Engine) Preview(ctx context.Context, companyID, demandID string, target demand.Status) (Result, error) {
	d, err := e.demands.Get(ctx, companyID, demandID)
	if err != nil {
		return Result{}, err
	}
	in, err := e.validatorInput(ctx, d, target)
	if err != nil {
		return Result{}, err
	}
	return Validate(in), nil
}

// ChangeStatus validates and commits one transition, then applies the
// best-effort cascade when it fires.
func (e *Engine) ChangeStatus(ctx context.Context, req TransitionRequest) (TransitionOutcome, error) {
	if req.CompanyID == "" || req.DemandID == "" || req.ActorID == "" {
		return TransitionOutcome{}, demand.ErrInvalidArgument
	}
	if req.Target == demand.StatusRejected && req.Reason == "" {
		return TransitionOutcome{}, demand.NewValidationError("a reason is required when rejecting a demand")
	}

	d, err := e.demands.Get(ctx, req.CompanyID, req.DemandID)
	if err != nil {
		return TransitionOutcome{}, err
	}

	in, err := e.validatorInput(ctx, d, req.Target)
	if err != nil {
		return TransitionOutcome{}, err
	}

	verdict := Validate(in)
	if !verdict.Allowed {
		return TransitionOutcome{}, demand.NewValidationError(verdict.Message)
	}
	if verdict.RequiresConfirmation && !req.Confirmed {
		return TransitionOutcome{
			Demand:               d,
			RequiresConfirmation: true,
			ConfirmationMessage:  verdict.ConfirmationMessage,
		}, nil
	}

	committed, err := e.commit(ctx, d, req.Target, req.ActorID, req.Reason)
	if err != nil {
		return TransitionOutcome{}, err
	}
	out := TransitionOutcome{Demand: committed, Committed: true}

	if req.Target == demand.StatusRejected {
		e.notifyRejection(ctx, committed, req.Reason)
	}

	// Cascade: re-validate against the committed state and apply the
	// follow-up as its own event. Best-effort; the first write stands either
	// way.
	if target, ok := CascadeTarget(committed.Status, committed.Priority); ok {
		cascadeIn, err := e.validatorInput(ctx, committed, target)
		if err == nil {
			if v := Validate(cascadeIn); v.Allowed {
				promoted, err := e.commit(ctx, committed, target, req.ActorID, "")
				if err != nil {
					logger.From(ctx).Warn("cascade promotion failed",
						"demand_id", committed.ID, "target", target, "err", err)
				} else {
					out.Demand = promoted
					out.Cascaded = true
				}
			}
		}
	}

	return out, nil
}

func (e *Engine) commit(ctx context.Context, d demand.Demand, target demand.Status, actorID, reason string) (demand.Demand, error) {
	now := e.clock().UTC()
	desc := fmt.Sprintf("status changed from %s to %s", d.Status, target)
	if reason != "" {
		desc = fmt.Sprintf("%s: %s", desc, reason)
	}

	ev := audit.Event{
		ID:          uuid.NewString(),
		DemandID:    d.ID,
		ActorID:     actorID,
		Action:      actionForTarget(target),
		Description: desc,
		Before:      audit.Snapshot{"status": string(d.Status)},
		After:       audit.Snapshot{"status": string(target)},
		CreatedAt:   now,
	}

	return e.demands.UpdateStatus(ctx, d.CompanyID, d.ID, d.Status, target, ev)
}

func (e *Engine) validatorInput(ctx context.Context, d demand.Demand, target demand.Status) (Input, error) {
	in := Input{
		Current:            d.Status,
		Target:             target,
		Priority:           d.Priority,
		Regulatory:         d.Regulatory,
		RegulatoryDeadline: d.RegulatoryDeadline,
	}
	// The phase count only gates the technical-review reversal; skip the
	// lookup otherwise.
	if e.phases != nil && d.Status == demand.StatusAwaitingTechnicalReview && target == demand.StatusApprovedByPM {
		n, err := e.phases.CountForDemand(ctx, d.ID)
		if err != nil {
			return Input{}, err
		}
		in.PhaseCount = n
	}
	return in, nil
}

func (e *Engine) notifyRejection(ctx context.Context, d demand.Demand, reason string) {
	if err := e.notifier.Send(ctx, notify.Intent{
		RecipientID: d.RequesterID,
		DemandID:    d.ID,
		Subject:     "demand rejected",
		Message:     fmt.Sprintf("Demand %s was rejected: %s", d.Code, reason),
	}); err != nil {
		logger.From(ctx).Warn("rejection notification failed", "demand_id", d.ID, "err", err)
	}
}

func actionForTarget(target demand.Status) audit.Action {
	switch target {
	case demand.StatusRejected:
		return audit.ActionReject
	case demand.StatusArchived:
		return audit.ActionArchive
	default:
		return audit.ActionChangeStatus
	}
}
