package demand

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"demand-platform/internal/audit"
	"demand-platform/pkg/utils"
)

// PostgresRepo persists demands in the demands table.
//
// Assumed schema: demands with one row per demand, version integer >= 1, and
// demand_events as described in internal/audit. Status writes are guarded by a
// WHERE status = $prev predicate rather than row locks; concurrent transition
// attempts against a stale read fail with ErrConflict and are retried by the
// caller with fresh state.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const demandColumns = `
id, code, company_id, squad_id, requester_id, owner_id, status, priority,
classification, regulatory, regulatory_deadline, description, notes, checklist,
estimated_hours, estimated_cost_minor, roi_percent, version, created_at, updated_at
`

func (r *PostgresRepo) Create(ctx context.Context, d Demand, e audit.Event) error {
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
INSERT INTO demands (` + demandColumns + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20
)
`
		if _, err := tx.ExecContext(ctx, q,
			d.ID, d.Code, d.CompanyID, d.SquadID, d.RequesterID, d.OwnerID,
			d.Status, d.Priority, d.Classification, d.Regulatory, d.RegulatoryDeadline,
			d.Description, d.Notes, d.Checklist, d.EstimatedHours, d.EstimatedCostMinor,
			d.ROIPercent, d.Version, d.CreatedAt, d.UpdatedAt,
		); err != nil {
			return err
		}
		return audit.AppendTx(ctx, tx, e)
	})
}

func (r *PostgresRepo) Get(ctx context.Context, companyID, id string) (Demand, error) {
	const q = `
SELECT ` + demandColumns + `
FROM demands
WHERE company_id = $1 AND id = $2
`
	return scanDemand(r.db.QueryRowContext(ctx, q, companyID, id))
}

func (r *PostgresRepo) ListByCompany(ctx context.Context, companyID string) ([]Demand, error) {
	const q = `
SELECT ` + demandColumns + `
FROM demands
WHERE company_id = $1
ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Demand
	for rows.Next() {
		d, err := scanDemand(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, d Demand, scopeChange bool, e audit.Event) (Demand, error) {
	var out Demand
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		versionExpr := "version"
		if scopeChange {
			versionExpr = "version + 1"
		}
		q := `
UPDATE demands SET
  squad_id = $3, owner_id = $4, priority = $5, classification = $6,
  regulatory = $7, regulatory_deadline = $8, description = $9, notes = $10,
  checklist = $11, estimated_hours = $12, estimated_cost_minor = $13,
  roi_percent = $14, version = ` + versionExpr + `, updated_at = $15
WHERE company_id = $1 AND id = $2
RETURNING ` + demandColumns + `
`
		var err error
		out, err = scanDemand(tx.QueryRowContext(ctx, q,
			d.CompanyID, d.ID, d.SquadID, d.OwnerID, d.Priority, d.Classification,
			d.Regulatory, d.RegulatoryDeadline, d.Description, d.Notes, d.Checklist,
			d.EstimatedHours, d.EstimatedCostMinor, d.ROIPercent, d.UpdatedAt,
		))
		if err != nil {
			return err
		}
		return audit.AppendTx(ctx, tx, e)
	})
	if err != nil {
		return Demand{}, err
	}
	return out, nil
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, companyID, id string, from, to Status, e audit.Event) (Demand, error) {
	var out Demand
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		// Compare-and-swap: the predicate on the previously-read status makes
		// at most one of two concurrent transition attempts succeed.
		const q = `
UPDATE demands
SET status = $4, updated_at = $5
WHERE company_id = $1 AND id = $2 AND status = $3
RETURNING ` + demandColumns + `
`
		var err error
		out, err = scanDemand(tx.QueryRowContext(ctx, q, companyID, id, from, to, time.Now().UTC()))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Distinguish "no such demand" from "status moved under us".
				if _, getErr := r.Get(ctx, companyID, id); getErr != nil {
					return getErr
				}
				return ErrConflict
			}
			return err
		}
		return audit.AppendTx(ctx, tx, e)
	})
	if err != nil {
		return Demand{}, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDemand(row rowScanner) (Demand, error) {
	var (
		d        Demand
		deadline sql.NullTime
	)
	err := row.Scan(
		&d.ID, &d.Code, &d.CompanyID, &d.SquadID, &d.RequesterID, &d.OwnerID,
		&d.Status, &d.Priority, &d.Classification, &d.Regulatory, &deadline,
		&d.Description, &d.Notes, &d.Checklist, &d.EstimatedHours,
		&d.EstimatedCostMinor, &d.ROIPercent, &d.Version, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Demand{}, ErrNotFound
		}
		return Demand{}, err
	}
	if deadline.Valid {
		t := deadline.Time
		d.RegulatoryDeadline = &t
	}
	return d, nil
}
