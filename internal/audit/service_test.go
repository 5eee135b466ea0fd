package audit

import (
	"context"
	"testing"
	"time"
)

func TestService_AppendRequiresDemandActorAction(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if err := svc.Append(context.Background(), Event{ActorID: "u", Action: ActionCreate}); err == nil {
		t.Fatalf("expected error without demand_id")
	}
	if err := svc.Append(context.Background(), Event{DemandID: "d", Action: ActionCreate}); err == nil {
		t.Fatalf("expected error without actor_id")
	}
	if err := svc.Append(context.Background(), Event{DemandID: "d", ActorID: "u", Action: Action("promote")}); err == nil {
		t.Fatalf("expected error for unknown action code")
	}
}

func TestService_AppendFillsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	err := svc.Append(context.Background(), Event{
		DemandID: "d1",
		ActorID:  "u1",
		Action:   ActionChangeStatus,
		Before:   Snapshot{"status": "backlog"},
		After:    Snapshot{"status": "awaiting_manager"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	if evs[0].ID == "" || evs[0].CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be filled: %+v", evs[0])
	}
}

func TestService_ListForDemandNewestFirstAndFiltered(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	seed := []Event{
		{DemandID: "d1", ActorID: "u1", Action: ActionCreate, CreatedAt: base},
		{DemandID: "d1", ActorID: "u1", Action: ActionScopeChange, CreatedAt: base.Add(time.Hour)},
		{DemandID: "d1", ActorID: "u2", Action: ActionScopeChange, CreatedAt: base.Add(2 * time.Hour)},
		{DemandID: "d2", ActorID: "u1", Action: ActionCreate, CreatedAt: base.Add(3 * time.Hour)},
	}
	for _, e := range seed {
		if err := svc.Append(context.Background(), e); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}

	all, err := svc.ListForDemand(context.Background(), "d1", ListFilter{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events for d1, got %d", len(all))
	}
	if !all[0].CreatedAt.After(all[1].CreatedAt) {
		t.Fatalf("expected newest-first ordering")
	}

	scoped, err := svc.ListForDemand(context.Background(), "d1", ListFilter{
		Actions: []Action{ActionScopeChange},
		From:    base.Add(90 * time.Minute),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ActorID != "u2" {
		t.Fatalf("expected only the later scope_change event, got %+v", scoped)
	}
}
