package audit

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory append-only repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *MemoryRepo) ListForDemand(ctx context.Context, demandID string, f ListFilter) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	actionSet := make(map[Action]struct{}, len(f.Actions))
	for _, a := range f.Actions {
		actionSet[a] = struct{}{}
	}

	var out []Event
	for _, e := range r.events {
		if e.DemandID != demandID {
			continue
		}
		if len(actionSet) > 0 {
			if _, ok := actionSet[e.Action]; !ok {
				continue
			}
		}
		if !f.From.IsZero() && e.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && e.CreatedAt.After(f.To) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Events returns a copy of everything appended, in insertion order.
func (r *MemoryRepo) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
