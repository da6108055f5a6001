package supabase

import (
	"context"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
)

const tableDocuments = "docsShare"

func (c *Client) CreateDocument(ctx context.Context, d *domain.Document) (*domain.Document, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateDocument")
	defer span.End()

	var out domain.Document
	if err := c.doPost(ctx, tableDocuments, d, &out); err != nil {
		return nil, c.writeError(tableDocuments, err)
	}
	if out.ID == "" {
		out = *d
	}
	return &out, nil
}

func (c *Client) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListDocuments")
	defer span.End()

	path := from(tableDocuments).
		eq("SharedBy", filter.SharedBy).
		contains("SharedWith", string(filter.SharedWith)).
		order("created_at.desc").
		String()

	rows := []domain.Document{}
	if err := c.doRequest(ctx, path, &rows); err != nil {
		return nil, c.readError(tableDocuments, err)
	}
	return rows, nil
}
