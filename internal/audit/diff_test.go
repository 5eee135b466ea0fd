package audit

import "testing"

func TestDiff_UnionOfChangedKeys(t *testing.T) {
	before := Snapshot{"status": "backlog", "priority": "medium", "hours": 10}
	after := Snapshot{"status": "stand_by", "priority": "medium", "deadline": "2025-06-01"}

	changes := Diff(before, after)
	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d: %+v", len(changes), changes)
	}

	// sorted by key: deadline, hours, status
	if changes[0].Key != "deadline" || changes[0].Old != nil || changes[0].New != "2025-06-01" {
		t.Fatalf("unexpected deadline change: %+v", changes[0])
	}
	if changes[1].Key != "hours" || changes[1].New != nil {
		t.Fatalf("expected hours to be reported as removed: %+v", changes[1])
	}
	if changes[2].Key != "status" || changes[2].Old != "backlog" || changes[2].New != "stand_by" {
		t.Fatalf("unexpected status change: %+v", changes[2])
	}
}

func TestDiff_EqualSnapshotsProduceNothing(t *testing.T) {
	s := Snapshot{"a": 1, "b": "x"}
	if changes := Diff(s, Snapshot{"a": 1, "b": "x"}); len(changes) != 0 {
		t.Fatalf("expected no changes, got %+v", changes)
	}
}

func TestDiff_NumericRepresentationsCompareBySerializedValue(t *testing.T) {
	// JSON round-trips turn ints into float64; the serialized forms still match.
	before := Snapshot{"hours": float64(10)}
	after := Snapshot{"hours": 10}
	if changes := Diff(before, after); len(changes) != 0 {
		t.Fatalf("expected serialized-equal values to be unchanged, got %+v", changes)
	}
}

func TestDiff_NilSides(t *testing.T) {
	changes := Diff(nil, Snapshot{"status": "backlog"})
	if len(changes) != 1 || changes[0].Key != "status" {
		t.Fatalf("unexpected: %+v", changes)
	}
	if changes = Diff(nil, nil); len(changes) != 0 {
		t.Fatalf("expected empty diff, got %+v", changes)
	}
}
