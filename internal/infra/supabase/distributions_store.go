package supabase

import (
	"context"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
)

const tableDistributions = "distributions"

func (c *Client) CreateDistribution(ctx context.Context, d *domain.Distribution) (*domain.Distribution, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateDistribution")
	defer span.End()

	var out domain.Distribution
	if err := c.doPost(ctx, tableDistributions, d, &out); err != nil {
		return nil, c.writeError(tableDistributions, err)
	}
	if out.ID == "" {
		out = *d
	}
	return &out, nil
}

func (c *Client) ListDistributions(ctx context.Context, filter domain.DistributionFilter) ([]domain.Distribution, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListDistributions")
	defer span.End()

	path := from(tableDistributions).
		eq("id", filter.ID).
		eq("distributedBy", filter.DistributedBy).
		eq("fundRequestId", filter.FundRequestID).
		between("created_at", filter.Range).
		order("created_at.desc").
		String()

	rows := []domain.Distribution{}
	if err := c.doRequest(ctx, path, &rows); err != nil {
		return nil, c.readError(tableDistributions, err)
	}
	return rows, nil
}
