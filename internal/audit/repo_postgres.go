package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PostgresRepo persists events in the demand_events table.
//
// Assumed schema:
//
//	demand_events (
//	  id uuid primary key,
//	  demand_id uuid not null,
//	  actor_id text not null,
//	  actor_name text not null default '',
//	  action text not null,
//	  description text not null default '',
//	  before jsonb,
//	  after jsonb,
//	  created_at timestamptz not null
//	)
//
// An INSERT-only policy (or a trigger rejecting UPDATE/DELETE) should guard
// immutability at the store level.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	return AppendTx(ctx, r.db, e)
}

// AppendTx inserts an event using any execer (pool or open transaction), so
// callers can append events atomically with the write that caused them.
func AppendTx(ctx context.Context, execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, e Event) error {
	before, err := marshalSnapshot(e.Before)
	if err != nil {
		return fmt.Errorf("audit: marshal before: %w", err)
	}
	after, err := marshalSnapshot(e.After)
	if err != nil {
		return fmt.Errorf("audit: marshal after: %w", err)
	}

	const q = `
INSERT INTO demand_events (
  id, demand_id, actor_id, actor_name, action, description, before, after, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
`
	_, err = execer.ExecContext(ctx, q,
		e.ID,
		e.DemandID,
		e.ActorID,
		e.ActorName,
		e.Action,
		e.Description,
		before,
		after,
		e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) ListForDemand(ctx context.Context, demandID string, f ListFilter) ([]Event, error) {
	var (
		where = []string{"demand_id = $1"}
		args  = []any{demandID}
	)
	if len(f.Actions) > 0 {
		ph := make([]string, 0, len(f.Actions))
		for _, a := range f.Actions {
			args = append(args, string(a))
			ph = append(ph, fmt.Sprintf("$%d", len(args)))
		}
		where = append(where, fmt.Sprintf("action IN (%s)", strings.Join(ph, ",")))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	q := fmt.Sprintf(`
SELECT id, demand_id, actor_id, actor_name, action, description, before, after, created_at
FROM demand_events
WHERE %s
ORDER BY created_at DESC, id DESC
`, strings.Join(where, " AND "))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e             Event
			before, after []byte
			createdAt     time.Time
		)
		if err := rows.Scan(
			&e.ID,
			&e.DemandID,
			&e.ActorID,
			&e.ActorName,
			&e.Action,
			&e.Description,
			&before,
			&after,
			&createdAt,
		); err != nil {
			return nil, err
		}
		if e.Before, err = unmarshalSnapshot(before); err != nil {
			return nil, err
		}
		if e.After, err = unmarshalSnapshot(after); err != nil {
			return nil, err
		}
		e.CreatedAt = createdAt
		out = append(out, e)
	}
	return out, rows.Err()
}

func marshalSnapshot(s Snapshot) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func unmarshalSnapshot(raw []byte) (Snapshot, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return s, nil
}
