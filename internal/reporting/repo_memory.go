package reporting

import (
	"context"
	"errors"
	"sync"
	"time"

	"demand-platform/internal/demand"
)

// MemoryRepo is a simple in-memory reporting repository for tests and early
// development. It enforces company isolation on reads.

type MemoryRepo struct {
	mu sync.Mutex

	Demands []demand.Demand
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListDemands(ctx context.Context, companyID string, from, to time.Time) ([]demand.Demand, error) {
	if companyID == "" {
		return nil, errors.New("company_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]demand.Demand, 0)
	for _, d := range r.Demands {
		if d.CompanyID != companyID {
			continue
		}
		if !d.CreatedAt.IsZero() {
			if d.CreatedAt.Before(from) || !d.CreatedAt.Before(to) {
				continue
			}
		}
		out = append(out, d)
	}
	return out, nil
}
