package approval

import (
	"context"
	"sync"

	"demand-platform/internal/audit"
)

// MemoryStore is an in-memory approval ledger useful for tests. It mirrors
// the Postgres store's upsert semantics on the (demand, level, approver) key.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
	events  *audit.MemoryRepo
}

func NewMemoryStore(events *audit.MemoryRepo) *MemoryStore {
	if events == nil {
		events = audit.NewMemoryRepo()
	}
	return &MemoryStore{records: make(map[string]Record), events: events}
}

// Events exposes the backing event repo so tests can share it with other
// services.
func (s *MemoryStore) Events() *audit.MemoryRepo { return s.events }

func recordKey(r Record) string {
	return r.DemandID + "/" + string(r.Level) + "/" + r.ApproverID
}

func (s *MemoryStore) Apply(ctx context.Context, r Record, e audit.Event) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey(r)
	if cur, ok := s.records[key]; ok {
		cur.ApproverName = r.ApproverName
		cur.Status = r.Status
		cur.Reason = r.Reason
		cur.UpdatedAt = r.UpdatedAt
		r = cur
	}
	s.records[key] = r

	if err := s.events.Append(ctx, e); err != nil {
		return Record{}, err
	}
	return r, nil
}

func (s *MemoryStore) ListForDemand(ctx context.Context, demandID string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if r.DemandID == demandID {
			out = append(out, r)
		}
	}
	return out, nil
}
