package supabase

import (
	"context"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
)

// Messages live in the "acknowledgment" table.
const tableMessages = "acknowledgment"

func (c *Client) CreateMessage(ctx context.Context, m *domain.Message) (*domain.Message, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateMessage")
	defer span.End()

	var out domain.Message
	if err := c.doPost(ctx, tableMessages, m, &out); err != nil {
		return nil, c.writeError(tableMessages, err)
	}
	if out.ID == "" {
		out = *m
	}
	return &out, nil
}

func (c *Client) ListMessages(ctx context.Context, filter domain.MessageFilter) ([]domain.Message, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListMessages")
	defer span.End()

	path := from(tableMessages).
		eq("message_by", filter.MessageBy).
		eq("user_email", filter.UserEmail).
		order("created_at.desc").
		String()

	rows := []domain.Message{}
	if err := c.doRequest(ctx, path, &rows); err != nil {
		return nil, c.readError(tableMessages, err)
	}
	return rows, nil
}
