package demand

import (
	"context"
	"sort"
	"sync"
	"time"

	"demand-platform/internal/audit"
)

// MemoryRepo is an in-memory repository useful for tests.
// It mirrors the transactional semantics of the Postgres repo: composite
// methods apply the demand write and the event append together or not at all.
type MemoryRepo struct {
	mu      sync.Mutex
	demands map[string]Demand
	events  *audit.MemoryRepo
}

func NewMemoryRepo(events *audit.MemoryRepo) *MemoryRepo {
	if events == nil {
		events = audit.NewMemoryRepo()
	}
	return &MemoryRepo{demands: make(map[string]Demand), events: events}
}

// Events exposes the backing event repo so tests can share it with an
// audit.Service.
func (r *MemoryRepo) Events() *audit.MemoryRepo { return r.events }

func (r *MemoryRepo) Create(ctx context.Context, d Demand, e audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.demands[d.ID] = d
	return r.events.Append(ctx, e)
}

func (r *MemoryRepo) Get(ctx context.Context, companyID, id string) (Demand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.demands[id]
	if !ok || d.CompanyID != companyID {
		return Demand{}, ErrNotFound
	}
	return d, nil
}

func (r *MemoryRepo) ListByCompany(ctx context.Context, companyID string) ([]Demand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Demand
	for _, d := range r.demands {
		if d.CompanyID == companyID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, d Demand, scopeChange bool, e audit.Event) (Demand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.demands[d.ID]
	if !ok || cur.CompanyID != d.CompanyID {
		return Demand{}, ErrNotFound
	}
	d.Status = cur.Status
	d.Version = cur.Version
	if scopeChange {
		d.Version++
	}
	d.CreatedAt = cur.CreatedAt
	r.demands[d.ID] = d
	if err := r.events.Append(ctx, e); err != nil {
		return Demand{}, err
	}
	return d, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, companyID, id string, from, to Status, e audit.Event) (Demand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.demands[id]
	if !ok || cur.CompanyID != companyID {
		return Demand{}, ErrNotFound
	}
	if cur.Status != from {
		return Demand{}, ErrConflict
	}
	cur.Status = to
	cur.UpdatedAt = time.Now().UTC()
	r.demands[id] = cur
	if err := r.events.Append(ctx, e); err != nil {
		return Demand{}, err
	}
	return cur, nil
}
