package roster

import "context"

// Member is one person on a company's approval committee.
type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Provider yields the committee roster for a company. The reconciliation
// engine uses it to backfill pending rows for members who have not acted yet.
type Provider interface {
	ActiveMembers(ctx context.Context, companyID string) ([]Member, error)
}
