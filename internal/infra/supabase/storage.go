package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/boddenberg/funds-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// FileStorage implementation: Storage API (/storage/v1)
// ============================================================

// Upload stores body as bucket/name. The body is read once, so uploads
// are never retried.
func (c *Client) Upload(ctx context.Context, bucket, name, contentType string, body io.Reader) error {
	ctx, span := tracer.Start(ctx, "Supabase.Upload")
	defer span.End()
	span.SetAttributes(
		attribute.String("storage.bucket", bucket),
		attribute.String("storage.object", name),
	)

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	u := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, bucket, url.PathEscape(name))
	err := c.guard.Write(ctx, func() error {
		_, err := c.do(ctx, http.MethodPost, u, body, contentType, "")
		return err
	})
	if err != nil {
		if open := c.circuitError(err); open != nil {
			return open
		}
		c.metrics.IncrExternalError("supabase/storage")
		return &domain.ErrWrite{Collection: "storage/" + bucket, Err: err}
	}
	return nil
}

// PublicURL is the address of an object in a public bucket.
func (c *Client) PublicURL(bucket, name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, bucket, url.PathEscape(name))
}
