package approval

import (
	"context"
	"reflect"
	"testing"
	"time"

	"demand-platform/internal/audit"
	"demand-platform/internal/roster"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func at(min int) time.Time { return t0.Add(time.Duration(min) * time.Minute) }

func TestReconcile_DecisionOutranksLaterPending(t *testing.T) {
	// A stale pending record written after the decision must not displace it.
	events := []audit.Event{
		{ID: "e1", DemandID: "d-1", ActorID: "u-a", ActorName: "Alice",
			Action: audit.ActionApproveCommittee, CreatedAt: at(0)},
	}
	records := []Record{
		{DemandID: "d-1", Level: LevelCommittee, ApproverID: "u-a",
			Status: StatusPending, CreatedAt: at(5), UpdatedAt: at(5)},
	}

	got := Reconcile(events, records, nil)
	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1", len(got))
	}
	if got[0].Status != StatusApproved {
		t.Fatalf("status = %s, want approved (pending must never win on recency)", got[0].Status)
	}
}

func TestReconcile_SameApproverConvergesToLaterOutcome(t *testing.T) {
	events := []audit.Event{
		{ID: "e1", DemandID: "d-1", ActorID: "u-a",
			Action: audit.ActionRejectManager, CreatedAt: at(0)},
		{ID: "e2", DemandID: "d-1", ActorID: "u-a",
			Action: audit.ActionApproveManager, CreatedAt: at(10)},
	}

	got := Reconcile(events, nil, nil)
	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1", len(got))
	}
	if got[0].Status != StatusApproved || !got[0].Timestamp.Equal(at(10)) {
		t.Fatalf("got %+v, want approved at t+10", got[0])
	}
}

func TestReconcile_RosterBackfillIsNonDestructive(t *testing.T) {
	events := []audit.Event{
		{ID: "e1", DemandID: "d-1", ActorID: "u-a",
			Action: audit.ActionApproveCommittee, CreatedAt: at(0)},
	}
	members := []roster.Member{
		{ID: "u-a", Name: "Alice", Active: true},
		{ID: "u-b", Name: "Bob", Active: true},
	}

	got := Reconcile(events, nil, members)
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}

	byID := map[string]Entry{}
	for _, e := range got {
		byID[e.ApproverID] = e
	}
	a := byID["u-a"]
	if a.Status != StatusApproved {
		t.Fatalf("roster merge changed a recorded vote: %+v", a)
	}
	if a.ApproverName != "Alice" {
		t.Fatalf("roster must backfill the missing display name, got %q", a.ApproverName)
	}
	b := byID["u-b"]
	if b.Status != StatusPending || b.hasTimestamp() {
		t.Fatalf("unanswered seat must be synthetic pending without timestamp: %+v", b)
	}
}

func TestReconcile_RemovedMemberKeepsHistoricalEntry(t *testing.T) {
	// u-old voted but is no longer on the roster.
	events := []audit.Event{
		{ID: "e1", DemandID: "d-1", ActorID: "u-old", ActorName: "Olga",
			Action: audit.ActionRejectCommittee, CreatedAt: at(0)},
	}
	members := []roster.Member{{ID: "u-new", Name: "Nina", Active: true}}

	got := Reconcile(events, nil, members)
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	if got[0].ApproverID != "u-old" || got[0].Status != StatusRejected {
		t.Fatalf("historical vote must survive roster changes: %+v", got[0])
	}
}

func TestReconcile_Ordering(t *testing.T) {
	events := []audit.Event{
		{ID: "e1", DemandID: "d-1", ActorID: "u-t", ActorName: "Tess",
			Action: audit.ActionApproveTechnical, CreatedAt: at(1)},
		{ID: "e2", DemandID: "d-1", ActorID: "u-m", ActorName: "Mara",
			Action: audit.ActionApproveManager, CreatedAt: at(2)},
		{ID: "e3", DemandID: "d-1", ActorID: "u-c1", ActorName: "Carol",
			Action: audit.ActionApproveCommittee, CreatedAt: at(3)},
		{ID: "e4", DemandID: "d-1", ActorID: "u-c2", ActorName: "Dave",
			Action: audit.ActionRejectCommittee, CreatedAt: at(9)},
	}
	members := []roster.Member{
		{ID: "u-c3", Name: "Zed", Active: true},
		{ID: "u-c4", Name: "Amy", Active: true},
	}

	got := Reconcile(events, nil, members)

	var keys []string
	for _, e := range got {
		keys = append(keys, string(e.Level)+":"+e.ApproverName)
	}
	want := []string{
		"manager:Mara",
		// Within committee: timestamped entries newest-first, then the
		// timestamp-less synthetic seats alphabetically.
		"committee:Dave",
		"committee:Carol",
		"committee:Amy",
		"committee:Zed",
		"technical:Tess",
	}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("order = %v, want %v", keys, want)
	}
}

func TestReconcile_IsDeterministic(t *testing.T) {
	events := []audit.Event{
		{ID: "e1", DemandID: "d-1", ActorID: "u-a", ActorName: "Alice",
			Action: audit.ActionApproveCommittee, CreatedAt: at(0)},
		{ID: "e2", DemandID: "d-1", ActorID: "u-b", ActorName: "Bob",
			Action: audit.ActionRejectManager, CreatedAt: at(1)},
	}
	records := []Record{
		{DemandID: "d-1", Level: LevelTechnical, ApproverID: "u-c",
			ApproverName: "Cleo", Status: StatusApproved, CreatedAt: at(2), UpdatedAt: at(4)},
	}
	members := []roster.Member{
		{ID: "u-d", Name: "Dana", Active: true},
		{ID: "u-e", Name: "Evan", Active: true},
	}

	first := Reconcile(events, records, members)
	for i := 0; i < 10; i++ {
		if got := Reconcile(events, records, members); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs:\n%v\nvs\n%v", i, got, first)
		}
	}
}

func TestReconcile_EmptyInputs(t *testing.T) {
	if got := Reconcile(nil, nil, nil); len(got) != 0 {
		t.Fatalf("empty inputs must reconcile to an empty list, got %v", got)
	}
}

func TestReconcile_ExampleScenario(t *testing.T) {
	// Committee roster {A, B}; events show A approved; records show B pending.
	events := []audit.Event{
		{ID: "e1", DemandID: "d-1", ActorID: "u-a", ActorName: "A",
			Action: audit.ActionApproveCommittee, CreatedAt: at(1)},
	}
	records := []Record{
		{DemandID: "d-1", Level: LevelCommittee, ApproverID: "u-b",
			ApproverName: "B", Status: StatusPending},
	}
	members := []roster.Member{
		{ID: "u-a", Name: "A", Active: true},
		{ID: "u-b", Name: "B", Active: true},
	}

	got := Reconcile(events, records, members)
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	if got[0].ApproverID != "u-a" || got[0].Status != StatusApproved {
		t.Fatalf("first entry = %+v, want A approved", got[0])
	}
	if got[1].ApproverID != "u-b" || got[1].Status != StatusPending {
		t.Fatalf("second entry = %+v, want B pending", got[1])
	}
}

func TestVote_UpsertsAndAppendsEvent(t *testing.T) {
	store := NewMemoryStore(nil)
	rosterRepo := roster.NewMemoryRepo()
	svc := NewService(store.Events(), store, rosterRepo)

	tick := 0
	svc.clock = func() time.Time {
		tick++
		return at(tick)
	}

	_, err := svc.Vote(context.Background(), VoteRequest{
		CompanyID: "co-1", DemandID: "d-1",
		ApproverID: "u-a", ApproverName: "Alice",
		Level: LevelCommittee, Approve: false,
	})
	if err == nil {
		t.Fatalf("reject without reason must fail")
	}

	rec, err := svc.Vote(context.Background(), VoteRequest{
		CompanyID: "co-1", DemandID: "d-1",
		ApproverID: "u-a", ApproverName: "Alice",
		Level: LevelCommittee, Approve: false, Reason: "out of scope",
	})
	if err != nil {
		t.Fatalf("Vote: %v", err)
	}
	if rec.Status != StatusRejected {
		t.Fatalf("status = %s, want rejected", rec.Status)
	}

	again, err := svc.Vote(context.Background(), VoteRequest{
		CompanyID: "co-1", DemandID: "d-1",
		ApproverID: "u-a", ApproverName: "Alice",
		Level: LevelCommittee, Approve: true,
	})
	if err != nil {
		t.Fatalf("second Vote: %v", err)
	}
	if again.ID != rec.ID {
		t.Fatalf("repeat vote must update the same row, got new id %s", again.ID)
	}
	if again.Status != StatusApproved || !again.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("repeat vote must overwrite status and keep created_at: %+v", again)
	}

	evs := store.Events().Events()
	if len(evs) != 2 {
		t.Fatalf("events = %d, want 2", len(evs))
	}
	if evs[0].Action != audit.ActionRejectCommittee || evs[1].Action != audit.ActionApproveCommittee {
		t.Fatalf("event actions = %s, %s", evs[0].Action, evs[1].Action)
	}

	entries, err := svc.Reconcile(context.Background(), "co-1", "d-1")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != StatusApproved {
		t.Fatalf("reconciled view = %+v, want single approved entry", entries)
	}
}
