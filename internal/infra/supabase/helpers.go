package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
)

// ============================================================
// HTTP helpers for POST, PATCH, DELETE
// ============================================================

// doPost inserts one row and decodes the stored representation into out.
func (c *Client) doPost(ctx context.Context, table string, data, out any) error {
	jsonBody, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return c.guard.Write(ctx, func() error {
		body, err := c.do(ctx, http.MethodPost, c.restURL(table), bytes.NewReader(jsonBody), "application/json", "return=representation")
		if err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		return decodeFirst(body, out)
	})
}

// doPatch applies a partial update and returns how many rows changed.
func (c *Client) doPatch(ctx context.Context, path string, data any) (int, error) {
	jsonBody, err := json.Marshal(data)
	if err != nil {
		return 0, err
	}

	var n int
	err = c.guard.Write(ctx, func() error {
		body, err := c.do(ctx, http.MethodPatch, c.restURL(path), bytes.NewReader(jsonBody), "application/json", "return=representation")
		if err != nil {
			return err
		}
		var rows []json.RawMessage
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &rows); err != nil {
				return err
			}
		}
		n = len(rows)
		return nil
	})
	return n, err
}

// doDelete removes rows and returns how many were deleted.
func (c *Client) doDelete(ctx context.Context, path string) (int, error) {
	var n int
	err := c.guard.Write(ctx, func() error {
		body, err := c.do(ctx, http.MethodDelete, c.restURL(path), nil, "", "return=representation")
		if err != nil {
			return err
		}
		var rows []json.RawMessage
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &rows); err != nil {
				return err
			}
		}
		n = len(rows)
		return nil
	})
	return n, err
}

// decodeFirst accepts either a row array or a single object.
func decodeFirst(body []byte, out any) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	if body[0] == '[' {
		var rows []json.RawMessage
		if err := json.Unmarshal(body, &rows); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		body = rows[0]
	}
	return json.Unmarshal(body, out)
}

// ============================================================
// PostgREST query builder
// ============================================================

type query struct {
	table  string
	values url.Values
}

func from(table string) *query {
	return &query{table: table, values: url.Values{}}
}

func (q *query) eq(column, value string) *query {
	if value != "" {
		q.values.Add(column, "eq."+value)
	}
	return q
}

// contains filters array columns holding value.
func (q *query) contains(column, value string) *query {
	if value != "" {
		q.values.Add(column, `cs.{"`+value+`"}`)
	}
	return q
}

// between applies an inclusive created_at range.
func (q *query) between(column string, r domain.DateRange) *query {
	if r.From != nil {
		q.values.Add(column, "gte."+r.From.UTC().Format(time.RFC3339Nano))
	}
	if r.To != nil {
		q.values.Add(column, "lte."+r.To.UTC().Format(time.RFC3339Nano))
	}
	return q
}

func (q *query) order(spec string) *query {
	q.values.Set("order", spec)
	return q
}

func (q *query) limit(n string) *query {
	q.values.Set("limit", n)
	return q
}

func (q *query) String() string {
	if len(q.values) == 0 {
		return q.table
	}
	return q.table + "?" + q.values.Encode()
}
