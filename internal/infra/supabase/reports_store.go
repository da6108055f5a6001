package supabase

import (
	"context"

	"github.com/boddenberg/funds-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Report snapshots: tables "reports", "fundReports" and "externalReports"
// ============================================================

const (
	tableReports         = "reports"
	tableFundReports     = "fundReports"
	tableExternalReports = "externalReports"
)

func (c *Client) CreateReport(ctx context.Context, r *domain.Report) (*domain.Report, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateReport")
	defer span.End()

	var out domain.Report
	if err := c.doPost(ctx, tableReports, r, &out); err != nil {
		return nil, c.writeError(tableReports, err)
	}
	if out.ID == "" {
		out = *r
	}
	return &out, nil
}

func (c *Client) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetReport")
	defer span.End()
	span.SetAttributes(attribute.String("report.id", id))

	var rows []domain.Report
	if err := c.doRequest(ctx, from(tableReports).eq("id", id).limit("1").String(), &rows); err != nil {
		return nil, c.readError(tableReports, err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "report", ID: id}
	}
	return &rows[0], nil
}

func (c *Client) ListReports(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListReports")
	defer span.End()

	path := from(tableReports).
		eq("createdBy", filter.CreatedBy).
		contains("sharedWith", string(filter.SharedWith)).
		order("created_at.desc").
		String()

	rows := []domain.Report{}
	if err := c.doRequest(ctx, path, &rows); err != nil {
		return nil, c.readError(tableReports, err)
	}
	return rows, nil
}

func (c *Client) CreateFundReport(ctx context.Context, r *domain.FundReport) (*domain.FundReport, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateFundReport")
	defer span.End()

	var out domain.FundReport
	if err := c.doPost(ctx, tableFundReports, r, &out); err != nil {
		return nil, c.writeError(tableFundReports, err)
	}
	if out.ID == "" {
		out = *r
	}
	return &out, nil
}

func (c *Client) ListFundReports(ctx context.Context, filter domain.ReportFilter) ([]domain.FundReport, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListFundReports")
	defer span.End()

	path := from(tableFundReports).
		eq("createdBy", filter.CreatedBy).
		contains("sharedWith", string(filter.SharedWith)).
		order("created_at.desc").
		String()

	rows := []domain.FundReport{}
	if err := c.doRequest(ctx, path, &rows); err != nil {
		return nil, c.readError(tableFundReports, err)
	}
	return rows, nil
}

func (c *Client) CreateExternalReport(ctx context.Context, r *domain.ExternalReport) (*domain.ExternalReport, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateExternalReport")
	defer span.End()

	var out domain.ExternalReport
	if err := c.doPost(ctx, tableExternalReports, r, &out); err != nil {
		return nil, c.writeError(tableExternalReports, err)
	}
	if out.ID == "" {
		out = *r
	}
	return &out, nil
}

func (c *Client) ListExternalReports(ctx context.Context) ([]domain.ExternalReport, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListExternalReports")
	defer span.End()

	rows := []domain.ExternalReport{}
	if err := c.doRequest(ctx, from(tableExternalReports).order("created_at.desc").String(), &rows); err != nil {
		return nil, c.readError(tableExternalReports, err)
	}
	return rows, nil
}
