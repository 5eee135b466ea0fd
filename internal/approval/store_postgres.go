package approval

import (
	"context"
	"database/sql"
	"fmt"

	"demand-platform/internal/audit"
	"demand-platform/pkg/utils"
)

// PostgresStore persists the approval ledger.
//
// Expected schema:
//
//	CREATE TABLE approval_records (
//	    id            UUID PRIMARY KEY,
//	    demand_id     UUID NOT NULL REFERENCES demands (id),
//	    level         TEXT NOT NULL,
//	    approver_id   UUID NOT NULL,
//	    approver_name TEXT NOT NULL DEFAULT '',
//	    status        TEXT NOT NULL,
//	    reason        TEXT NOT NULL DEFAULT '',
//	    created_at    TIMESTAMPTZ NOT NULL,
//	    updated_at    TIMESTAMPTZ NOT NULL,
//	    UNIQUE (demand_id, level, approver_id)
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

// Apply upserts one ledger row on its (demand, level, approver) key and
// appends the vote event in the same transaction. A repeat vote by the same
// approver overwrites status and reason and refreshes updated_at; created_at
// and the row id are kept from the first vote.
func (s *PostgresStore) Apply(ctx context.Context, r Record, e audit.Event) (Record, error) {
	var out Record
	err := utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO approval_records
			    (id, demand_id, level, approver_id, approver_name, status, reason, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (demand_id, level, approver_id) DO UPDATE SET
			    approver_name = EXCLUDED.approver_name,
			    status        = EXCLUDED.status,
			    reason        = EXCLUDED.reason,
			    updated_at    = EXCLUDED.updated_at
			RETURNING id, demand_id, level, approver_id, approver_name, status, reason, created_at, updated_at`,
			r.ID, r.DemandID, r.Level, r.ApproverID, r.ApproverName, r.Status, r.Reason, r.CreatedAt, r.UpdatedAt)
		if err := scanRecord(row, &out); err != nil {
			return fmt.Errorf("upsert approval record: %w", err)
		}
		return audit.AppendTx(ctx, tx, e)
	})
	if err != nil {
		return Record{}, err
	}
	return out, nil
}

func (s *PostgresStore) ListForDemand(ctx context.Context, demandID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, demand_id, level, approver_id, approver_name, status, reason, created_at, updated_at
		FROM approval_records
		WHERE demand_id = $1
		ORDER BY updated_at DESC`, demandID)
	if err != nil {
		return nil, fmt.Errorf("query approval records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := scanRecord(rows, &r); err != nil {
			return nil, fmt.Errorf("scan approval record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, r *Record) error {
	return row.Scan(&r.ID, &r.DemandID, &r.Level, &r.ApproverID, &r.ApproverName,
		&r.Status, &r.Reason, &r.CreatedAt, &r.UpdatedAt)
}
