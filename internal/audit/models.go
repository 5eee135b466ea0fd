package audit

import "time"

// Event is an immutable, append-only lifecycle record for a demand.
//
// Invariants:
// - Events are never updated or deleted; they are the durable source of truth
//   for "what happened" to a demand.
// - demand_id and action are required.
// - Before/After are open-ended field snapshots; the set of tracked fields
//   grows over time, so no fixed schema is imposed.
//
// Storage recommendation (Postgres):
// - Table demand_events with an INSERT-only policy.
// - Before/After stored as JSONB.
type Event struct {
	ID       string `json:"id" db:"id"`
	DemandID string `json:"demand_id" db:"demand_id"`

	// ActorID is the user who caused the event.
	ActorID string `json:"actor_id" db:"actor_id"`

	// ActorName is a display name captured at write time, best-effort.
	ActorName string `json:"actor_name,omitempty" db:"actor_name"`

	Action Action `json:"action" db:"action"`

	// Description is a short human-readable summary.
	Description string `json:"description,omitempty" db:"description"`

	// Before and After are field snapshots around the change.
	// For scope_change events, After carries the full field-set of the demand
	// at that moment so a point-in-time view needs no replay.
	Before Snapshot `json:"before,omitempty" db:"before"`
	After  Snapshot `json:"after,omitempty" db:"after"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Snapshot is an open-ended field map captured alongside an event.
type Snapshot map[string]any

// ListFilter narrows ListForDemand results. Zero values mean "no filter".
type ListFilter struct {
	Actions []Action
	From    time.Time
	To      time.Time
}
