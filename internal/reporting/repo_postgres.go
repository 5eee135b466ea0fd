package reporting

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"demand-platform/internal/demand"
)

// PostgresRepo reads reporting inputs straight from the demands table.
// Aggregation happens in the service so the queries stay trivial.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) ListDemands(ctx context.Context, companyID string, from, to time.Time) ([]demand.Demand, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, company_id, squad_id, status, priority, regulatory,
		       estimated_hours, estimated_cost_minor, roi_percent, created_at
		FROM demands
		WHERE company_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at`, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query demands for reporting: %w", err)
	}
	defer rows.Close()

	var out []demand.Demand
	for rows.Next() {
		var d demand.Demand
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.SquadID, &d.Status, &d.Priority,
			&d.Regulatory, &d.EstimatedHours, &d.EstimatedCostMinor, &d.ROIPercent,
			&d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan demand for reporting: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
