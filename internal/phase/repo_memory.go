package phase

import (
	"context"
	"sort"
	"sync"

	"demand-platform/internal/audit"
)

// MemoryRepo is an in-memory phase repository useful for tests.
type MemoryRepo struct {
	mu     sync.Mutex
	phases map[string]Phase
	events *audit.MemoryRepo
}

func NewMemoryRepo(events *audit.MemoryRepo) *MemoryRepo {
	if events == nil {
		events = audit.NewMemoryRepo()
	}
	return &MemoryRepo{phases: make(map[string]Phase), events: events}
}

func (r *MemoryRepo) Events() *audit.MemoryRepo { return r.events }

func (r *MemoryRepo) Create(ctx context.Context, p Phase, e audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases[p.ID] = p
	return r.events.Append(ctx, e)
}

func (r *MemoryRepo) Update(ctx context.Context, p Phase, e audit.Event) (Phase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.phases[p.ID]
	if !ok || cur.DemandID != p.DemandID {
		return Phase{}, ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	r.phases[p.ID] = p
	if err := r.events.Append(ctx, e); err != nil {
		return Phase{}, err
	}
	return p, nil
}

func (r *MemoryRepo) ListForDemand(ctx context.Context, demandID string) ([]Phase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Phase
	for _, p := range r.phases {
		if p.DemandID == demandID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) CountForDemand(ctx context.Context, demandID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.phases {
		if p.DemandID == demandID {
			n++
		}
	}
	return n, nil
}
