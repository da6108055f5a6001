package supabase

import (
	"context"
	"net/http"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
)

const tableDonations = "donations"

func (c *Client) CreateDonation(ctx context.Context, d *domain.Donation) (*domain.Donation, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateDonation")
	defer span.End()

	var out domain.Donation
	if err := c.doPost(ctx, tableDonations, d, &out); err != nil {
		if hasStatus(err, http.StatusConflict) {
			return nil, &domain.ErrConflict{Message: "transaction id already recorded"}
		}
		return nil, c.writeError(tableDonations, err)
	}
	if out.ID == "" {
		out = *d
	}
	return &out, nil
}

func (c *Client) ListDonations(ctx context.Context, filter domain.DonationFilter) ([]domain.Donation, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListDonations")
	defer span.End()

	path := from(tableDonations).
		between("created_at", filter.Range).
		order("created_at.desc").
		String()

	rows := []domain.Donation{}
	if err := c.doRequest(ctx, path, &rows); err != nil {
		return nil, c.readError(tableDonations, err)
	}
	return rows, nil
}
