package phase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"demand-platform/internal/audit"
	"demand-platform/pkg/utils"
)

// PostgresRepo persists phases.
//
// Expected schema:
//
//	CREATE TABLE demand_phases (
//	    id                   UUID PRIMARY KEY,
//	    demand_id            UUID NOT NULL REFERENCES demands (id),
//	    name                 TEXT NOT NULL,
//	    description          TEXT NOT NULL DEFAULT '',
//	    sequence             INT NOT NULL DEFAULT 0,
//	    estimated_hours      DOUBLE PRECISION NOT NULL DEFAULT 0,
//	    currency             TEXT NOT NULL DEFAULT '',
//	    hourly_rate_minor    BIGINT NOT NULL DEFAULT 0,
//	    estimated_cost_minor BIGINT NOT NULL DEFAULT 0,
//	    created_at           TIMESTAMPTZ NOT NULL,
//	    updated_at           TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX idx_demand_phases_demand ON demand_phases (demand_id);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const phaseColumns = `id, demand_id, name, description, sequence, estimated_hours,
	currency, hourly_rate_minor, estimated_cost_minor, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, p Phase, e audit.Event) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO demand_phases (`+phaseColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			p.ID, p.DemandID, p.Name, p.Description, p.Sequence, p.EstimatedHours,
			p.Currency, p.HourlyRateMinor, p.EstimatedCostMinor, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert phase: %w", err)
		}
		return audit.AppendTx(ctx, tx, e)
	})
}

func (r *PostgresRepo) Update(ctx context.Context, p Phase, e audit.Event) (Phase, error) {
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE demand_phases SET
			    name = $1, description = $2, sequence = $3, estimated_hours = $4,
			    hourly_rate_minor = $5, estimated_cost_minor = $6, updated_at = $7
			WHERE id = $8 AND demand_id = $9`,
			p.Name, p.Description, p.Sequence, p.EstimatedHours,
			p.HourlyRateMinor, p.EstimatedCostMinor, p.UpdatedAt,
			p.ID, p.DemandID)
		if err != nil {
			return fmt.Errorf("update phase: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return audit.AppendTx(ctx, tx, e)
	})
	if err != nil {
		return Phase{}, err
	}
	return p, nil
}

func (r *PostgresRepo) ListForDemand(ctx context.Context, demandID string) ([]Phase, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+phaseColumns+`
		FROM demand_phases
		WHERE demand_id = $1
		ORDER BY sequence, created_at`, demandID)
	if err != nil {
		return nil, fmt.Errorf("query phases: %w", err)
	}
	defer rows.Close()

	var out []Phase
	for rows.Next() {
		var p Phase
		if err := rows.Scan(&p.ID, &p.DemandID, &p.Name, &p.Description, &p.Sequence,
			&p.EstimatedHours, &p.Currency, &p.HourlyRateMinor, &p.EstimatedCostMinor,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan phase: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) CountForDemand(ctx context.Context, demandID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM demand_phases WHERE demand_id = $1`, demandID).Scan(&n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("count phases: %w", err)
	}
	return n, nil
}
