package approval

import (
	"sort"

	"demand-platform/internal/audit"
	"demand-platform/internal/roster"
)

// Reconcile merges the three approval sources into one canonical list, one
// entry per (level, approver) pair. It is a pure function over its inputs:
// same events, records, and roster always yield the same ordered list.
//
// Merge precedence per slot:
//  1. Higher status priority wins outright (a recorded decision is never
//     displaced by a later "pending").
//  2. Equal priority is broken by recency; exact ties keep the incoming
//     entry (last-writer-wins).
//  3. Roster members without a slot get a synthetic pending entry; members
//     who already hold a slot only have a missing display name backfilled.
//
// Empty inputs are valid: a demand nobody has acted on reconciles to the
// roster's pending seats, or to nothing at all.
func Reconcile(events []audit.Event, records []Record, members []roster.Member) []Entry {
	slots := make(map[string]Entry)

	for _, ev := range events {
		meta, ok := approvalActions[ev.Action]
		if !ok {
			continue
		}
		merge(slots, Entry{
			Level:        meta.level,
			ApproverID:   ev.ActorID,
			ApproverName: ev.ActorName,
			Status:       meta.status,
			Timestamp:    ev.CreatedAt,
		})
	}

	for _, r := range records {
		ts := r.UpdatedAt
		if ts.IsZero() {
			ts = r.CreatedAt
		}
		merge(slots, Entry{
			Level:        r.Level,
			ApproverID:   r.ApproverID,
			ApproverName: r.ApproverName,
			Status:       r.Status,
			Reason:       r.Reason,
			Timestamp:    ts,
		})
	}

	// Roster pass only adds seats or backfills names; it never touches a
	// status already decided above.
	for _, m := range members {
		seat := Entry{
			Level:        LevelCommittee,
			ApproverID:   m.ID,
			ApproverName: m.Name,
			Status:       StatusPending,
		}
		cur, ok := slots[seat.key()]
		if !ok {
			slots[seat.key()] = seat
			continue
		}
		if cur.ApproverName == "" {
			cur.ApproverName = m.Name
			slots[seat.key()] = cur
		}
	}

	out := make([]Entry, 0, len(slots))
	for _, e := range slots {
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if levelRank[a.Level] != levelRank[b.Level] {
			return levelRank[a.Level] < levelRank[b.Level]
		}
		switch {
		case a.hasTimestamp() && b.hasTimestamp():
			if !a.Timestamp.Equal(b.Timestamp) {
				return a.Timestamp.After(b.Timestamp)
			}
		case a.hasTimestamp():
			return true
		case b.hasTimestamp():
			return false
		}
		if a.ApproverName != b.ApproverName {
			return a.ApproverName < b.ApproverName
		}
		return a.ApproverID < b.ApproverID
	})
	return out
}

func merge(slots map[string]Entry, in Entry) {
	cur, ok := slots[in.key()]
	if !ok {
		slots[in.key()] = in
		return
	}

	curP, inP := statusPriority(cur.Status), statusPriority(in.Status)
	switch {
	case inP > curP:
		slots[in.key()] = carryName(in, cur)
	case inP < curP:
		// Keep the holder; still pick up a display name if it was missing.
		if cur.ApproverName == "" && in.ApproverName != "" {
			cur.ApproverName = in.ApproverName
			slots[in.key()] = cur
		}
	default:
		// Equal priority: later timestamp wins, last-writer-wins on exact ties.
		if !in.Timestamp.Before(cur.Timestamp) {
			slots[in.key()] = carryName(in, cur)
		}
	}
}

func carryName(winner, loser Entry) Entry {
	if winner.ApproverName == "" {
		winner.ApproverName = loser.ApproverName
	}
	return winner
}
