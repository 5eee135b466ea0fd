package roster

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory roster useful for tests.
type MemoryRepo struct {
	mu      sync.Mutex
	members map[string][]Member
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{members: make(map[string][]Member)}
}

func (r *MemoryRepo) Put(companyID string, members ...Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[companyID] = append(r.members[companyID], members...)
}

func (r *MemoryRepo) ActiveMembers(ctx context.Context, companyID string) ([]Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Member
	for _, m := range r.members[companyID] {
		if m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}
