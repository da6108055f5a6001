package supabase

import (
	"context"

	"github.com/boddenberg/funds-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Fund requests (table "funds")
// ============================================================

const tableFunds = "funds"

func (c *Client) CreateFundRequest(ctx context.Context, fr *domain.FundRequest) (*domain.FundRequest, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateFundRequest")
	defer span.End()

	var out domain.FundRequest
	if err := c.doPost(ctx, tableFunds, fr, &out); err != nil {
		return nil, c.writeError(tableFunds, err)
	}
	if out.ID == "" {
		out = *fr
	}
	return &out, nil
}

func (c *Client) GetFundRequest(ctx context.Context, id string) (*domain.FundRequest, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetFundRequest")
	defer span.End()
	span.SetAttributes(attribute.String("fund_request.id", id))

	var rows []domain.FundRequest
	path := from(tableFunds).eq("id", id).limit("1").String()
	if err := c.doRequest(ctx, path, &rows); err != nil {
		return nil, c.readError(tableFunds, err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "fund request", ID: id}
	}
	return &rows[0], nil
}

func (c *Client) ListFundRequests(ctx context.Context, filter domain.FundRequestFilter) ([]domain.FundRequest, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListFundRequests")
	defer span.End()

	path := from(tableFunds).
		eq("requestedBy", filter.RequestedBy).
		eq("status", string(filter.Status)).
		between("created_at", filter.Range).
		order("created_at.desc").
		String()

	rows := []domain.FundRequest{}
	if err := c.doRequest(ctx, path, &rows); err != nil {
		return nil, c.readError(tableFunds, err)
	}
	return rows, nil
}

func (c *Client) UpdateFundRequest(ctx context.Context, id string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateFundRequest")
	defer span.End()
	span.SetAttributes(attribute.String("fund_request.id", id))

	n, err := c.doPatch(ctx, from(tableFunds).eq("id", id).String(), updates)
	if err != nil {
		return c.writeError(tableFunds, err)
	}
	if n == 0 {
		return &domain.ErrNotFound{Resource: "fund request", ID: id}
	}
	return nil
}

// SwapRemainingAmount is a conditional PATCH: the row only matches while
// remainingAmount still holds the expected value.
func (c *Client) SwapRemainingAmount(ctx context.Context, id string, expected, next decimal.Decimal) (bool, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SwapRemainingAmount")
	defer span.End()
	span.SetAttributes(
		attribute.String("fund_request.id", id),
		attribute.String("expected", expected.String()),
		attribute.String("next", next.String()),
	)

	path := from(tableFunds).eq("id", id).eq("remainingAmount", expected.String()).String()
	n, err := c.doPatch(ctx, path, map[string]any{"remainingAmount": next})
	if err != nil {
		return false, c.writeError(tableFunds, err)
	}
	return n > 0, nil
}
