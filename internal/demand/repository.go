package demand

import (
	"context"

	"demand-platform/internal/audit"
)

// Repository is the persistence contract for demands.
//
// Composite methods take the audit event caused by the write so implementations
// can commit both atomically: no event is recorded for a failed write, and no
// write survives a failed event append.
type Repository interface {
	// Create inserts a new demand and its creation event.
	Create(ctx context.Context, d Demand, e audit.Event) error

	Get(ctx context.Context, companyID, id string) (Demand, error)

	ListByCompany(ctx context.Context, companyID string) ([]Demand, error)

	// Update persists field edits. When scopeChange is true the version
	// counter is incremented in the same transaction as the event append.
	Update(ctx context.Context, d Demand, scopeChange bool, e audit.Event) (Demand, error)

	// UpdateStatus performs a compare-and-swap on the status column: the write
	// only succeeds when the stored status still equals from. Returns
	// ErrConflict otherwise, so a caller acting on a stale read fails loudly
	// instead of silently double-applying.
	UpdateStatus(ctx context.Context, companyID, id string, from, to Status, e audit.Event) (Demand, error)
}
