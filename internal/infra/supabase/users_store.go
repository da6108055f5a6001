package supabase

import (
	"context"
	"net/http"

	"github.com/boddenberg/funds-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

const tableUsers = "users"

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListUsers")
	defer span.End()

	rows := []domain.User{}
	if err := c.doRequest(ctx, from(tableUsers).order("created_at.desc").String(), &rows); err != nil {
		return nil, c.readError(tableUsers, err)
	}
	return rows, nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByEmail")
	defer span.End()

	var rows []domain.User
	if err := c.doRequest(ctx, from(tableUsers).eq("email", email).limit("1").String(), &rows); err != nil {
		return nil, c.readError(tableUsers, err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "user", ID: email}
	}
	return &rows[0], nil
}

func (c *Client) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateUser")
	defer span.End()

	var out domain.User
	if err := c.doPost(ctx, tableUsers, u, &out); err != nil {
		if hasStatus(err, http.StatusConflict) {
			return nil, &domain.ErrConflict{Message: "user already exists: " + u.Email}
		}
		return nil, c.writeError(tableUsers, err)
	}
	if out.ID == "" {
		out = *u
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", id))

	n, err := c.doPatch(ctx, from(tableUsers).eq("id", id).String(), updates)
	if err != nil {
		return c.writeError(tableUsers, err)
	}
	if n == 0 {
		return &domain.ErrNotFound{Resource: "user", ID: id}
	}
	return nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", id))

	n, err := c.doDelete(ctx, from(tableUsers).eq("id", id).String())
	if err != nil {
		return c.writeError(tableUsers, err)
	}
	if n == 0 {
		return &domain.ErrNotFound{Resource: "user", ID: id}
	}
	return nil
}
