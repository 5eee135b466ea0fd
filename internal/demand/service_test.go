package demand

import (
	"context"
	"testing"
	"time"

	"demand-platform/internal/audit"
	"demand-platform/internal/notify"
)

type recordingNotifier struct {
	intents []notify.Intent
}

func (r *recordingNotifier) Send(ctx context.Context, intent notify.Intent) error {
	r.intents = append(r.intents, intent)
	return nil
}

func newTestService(t *testing.T) (*Service, *MemoryRepo, *recordingNotifier) {
	t.Helper()
	repo := NewMemoryRepo(nil)
	n := &recordingNotifier{}
	svc := NewService(repo, n)
	return svc, repo, n
}

func createTestDemand(t *testing.T, svc *Service) Demand {
	t.Helper()
	d, err := svc.Create(context.Background(), CreateRequest{
		Code: "DEM-001", CompanyID: "co-1", RequesterID: "u-req",
		Priority: PriorityMedium, Description: "initial scope",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return d
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Create(context.Background(), CreateRequest{
		Code: "X", CompanyID: "co-1", RequesterID: "u-1", Priority: "urgent",
	}); !IsValidationError(err) {
		t.Fatalf("bad priority: want ValidationError, got %v", err)
	}

	if _, err := svc.Create(context.Background(), CreateRequest{
		Code: "X", CompanyID: "co-1", RequesterID: "u-1",
		Priority: PriorityHigh, Regulatory: true,
	}); !IsValidationError(err) {
		t.Fatalf("regulatory without deadline: want ValidationError, got %v", err)
	}
}

func TestCreate_StartsInBacklogAtVersionOne(t *testing.T) {
	svc, repo, _ := newTestService(t)
	d := createTestDemand(t, svc)

	if d.Status != StatusBacklog || d.Version != 1 {
		t.Fatalf("new demand = status %s version %d, want backlog v1", d.Status, d.Version)
	}

	evs := repo.Events().Events()
	if len(evs) != 1 || evs[0].Action != audit.ActionCreate {
		t.Fatalf("events = %+v, want single create", evs)
	}
	if evs[0].After["code"] != "DEM-001" {
		t.Fatalf("create event must snapshot the full field-set, got %v", evs[0].After)
	}
}

func TestUpdate_ScopeChangeBumpsVersion(t *testing.T) {
	svc, repo, _ := newTestService(t)
	d := createTestDemand(t, svc)

	desc := "expanded scope"
	updated, err := svc.Update(context.Background(), "co-1", d.ID, UpdateRequest{
		ActorID: "u-req", Description: &desc,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("version = %d, want 2 after scope change", updated.Version)
	}

	evs := repo.Events().Events()
	last := evs[len(evs)-1]
	if last.Action != audit.ActionScopeChange {
		t.Fatalf("last action = %s, want scope_change", last.Action)
	}
	if last.After["description"] != desc || last.After["version"] != 2 {
		t.Fatalf("scope event must snapshot the new field-set, got %v", last.After)
	}
}

func TestUpdate_NonScopeEditKeepsVersion(t *testing.T) {
	svc, repo, _ := newTestService(t)
	d := createTestDemand(t, svc)

	notes := "internal note"
	updated, err := svc.Update(context.Background(), "co-1", d.ID, UpdateRequest{
		ActorID: "u-req", Notes: &notes,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Version != 1 {
		t.Fatalf("version = %d, want 1 after plain edit", updated.Version)
	}

	evs := repo.Events().Events()
	if evs[len(evs)-1].Action != audit.ActionEdit {
		t.Fatalf("last action = %s, want edit", evs[len(evs)-1].Action)
	}
}

func TestUpdate_UnchangedScopeFieldIsNotAScopeChange(t *testing.T) {
	svc, repo, _ := newTestService(t)
	d := createTestDemand(t, svc)

	same := d.Description
	updated, err := svc.Update(context.Background(), "co-1", d.ID, UpdateRequest{
		ActorID: "u-req", Description: &same,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Version != 1 {
		t.Fatalf("re-submitting the same description must not bump the version")
	}
	evs := repo.Events().Events()
	if evs[len(evs)-1].Action != audit.ActionEdit {
		t.Fatalf("last action = %s, want edit", evs[len(evs)-1].Action)
	}
}

func TestAssignOwner_NotifiesNewOwner(t *testing.T) {
	svc, repo, n := newTestService(t)
	d := createTestDemand(t, svc)

	updated, err := svc.AssignOwner(context.Background(), "co-1", d.ID, "u-mgr", "u-owner")
	if err != nil {
		t.Fatalf("AssignOwner: %v", err)
	}
	if updated.OwnerID != "u-owner" {
		t.Fatalf("owner = %q, want u-owner", updated.OwnerID)
	}
	if len(n.intents) != 1 || n.intents[0].RecipientID != "u-owner" {
		t.Fatalf("intents = %+v, want one to u-owner", n.intents)
	}

	evs := repo.Events().Events()
	if evs[len(evs)-1].Action != audit.ActionAssignOwner {
		t.Fatalf("last action = %s, want assign_owner", evs[len(evs)-1].Action)
	}
}

func TestLogDailyUpdate(t *testing.T) {
	svc, repo, _ := newTestService(t)
	d := createTestDemand(t, svc)

	if err := svc.LogDailyUpdate(context.Background(), "co-1", d.ID, "u-req", ""); !IsValidationError(err) {
		t.Fatalf("empty text: want ValidationError, got %v", err)
	}

	if err := svc.LogDailyUpdate(context.Background(), "co-1", d.ID, "u-req", "waiting on vendor"); err != nil {
		t.Fatalf("LogDailyUpdate: %v", err)
	}

	evs, err := repo.Events().ListForDemand(context.Background(), d.ID, audit.ListFilter{
		Actions: []audit.Action{audit.ActionLogDailyUpdate},
	})
	if err != nil || len(evs) != 1 {
		t.Fatalf("daily update events = %d (%v), want 1", len(evs), err)
	}
	if evs[0].Description != "waiting on vendor" {
		t.Fatalf("description = %q", evs[0].Description)
	}
}

func TestGet_IsCompanyScoped(t *testing.T) {
	svc, _, _ := newTestService(t)
	d := createTestDemand(t, svc)

	if _, err := svc.Get(context.Background(), "co-other", d.ID); err != ErrNotFound {
		t.Fatalf("cross-company read: want ErrNotFound, got %v", err)
	}
}

func TestFields_DeadlineRendering(t *testing.T) {
	deadline := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	s := Fields(Demand{Regulatory: true, RegulatoryDeadline: &deadline})
	if s["regulatory_deadline"] != "2025-12-31T00:00:00Z" {
		t.Fatalf("deadline = %v", s["regulatory_deadline"])
	}
	if _, ok := Fields(Demand{})["regulatory_deadline"]; ok {
		t.Fatalf("absent deadline must not appear in the snapshot")
	}
}
