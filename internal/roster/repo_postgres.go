package roster

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRepo reads committee membership from Postgres.
//
// Expected schema:
//
//	CREATE TABLE committee_members (
//	    id         UUID PRIMARY KEY,
//	    company_id UUID NOT NULL,
//	    name       TEXT NOT NULL,
//	    active     BOOLEAN NOT NULL DEFAULT TRUE,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX idx_committee_members_company ON committee_members (company_id) WHERE active;
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) ActiveMembers(ctx context.Context, companyID string) ([]Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, active
		FROM committee_members
		WHERE company_id = $1 AND active
		ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query committee members: %w", err)
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Active); err != nil {
			return nil, fmt.Errorf("scan committee member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
