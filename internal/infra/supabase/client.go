// Package supabase implements the record-store, identity and file-storage
// ports on top of Supabase (PostgREST, GoTrue and Storage).
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/infra/observability"
	"github.com/boddenberg/funds-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

const serviceName = "supabase"

// Client wraps HTTP calls to the Supabase APIs.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	guard          *resilience.Guard
	metrics        *observability.Metrics
	logger         *zap.Logger
}

// NewClient creates a Supabase client. Every call goes through guard.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, guard *resilience.Guard, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		guard:          guard,
		metrics:        metrics,
		logger:         logger,
	}
}

// statusError is a non-2xx answer from Supabase.
type statusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("supabase %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// retryable reports whether the same request may succeed later.
func (e *statusError) retryable() bool {
	return e.Status >= 500 || e.Status == http.StatusRequestTimeout || e.Status == http.StatusTooManyRequests
}

func hasStatus(err error, status int) bool {
	var se *statusError
	return errors.As(err, &se) && se.Status == status
}

// do executes an authenticated request. Client errors are marked
// permanent so reads are not retried on them.
func (c *Client) do(ctx context.Context, method, url string, body io.Reader, contentType, prefer string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		c.logger.Error("supabase: failed to create request",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, resilience.Permanent(err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("supabase: failed to read response body",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		se := &statusError{Method: method, Path: req.URL.Path, Status: resp.StatusCode, Body: string(respBody)}
		if se.retryable() {
			return nil, se
		}
		return nil, resilience.Permanent(se)
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
	)

	return respBody, nil
}

func (c *Client) restURL(path string) string {
	return fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
}

// doRequest executes a PostgREST read and decodes the row array into out.
func (c *Client) doRequest(ctx context.Context, path string, out any) error {
	return c.guard.Read(ctx, func() error {
		body, err := c.do(ctx, http.MethodGet, c.restURL(path), nil, "", "")
		if err != nil {
			return err
		}
		if len(bytes.TrimSpace(body)) == 0 {
			body = []byte("[]")
		}
		if err := json.Unmarshal(body, out); err != nil {
			return resilience.Permanent(fmt.Errorf("decode %s: %w", path, err))
		}
		return nil
	})
}

// readError converts a failed read into the domain error callers expect.
func (c *Client) readError(collection string, err error) error {
	if err == nil {
		return nil
	}
	if open := c.circuitError(err); open != nil {
		return open
	}
	c.metrics.IncrExternalError(serviceName)
	return &domain.ErrQuery{Collection: collection, Err: err}
}

// writeError converts a failed write into the domain error callers expect.
func (c *Client) writeError(collection string, err error) error {
	if err == nil {
		return nil
	}
	if open := c.circuitError(err); open != nil {
		return open
	}
	c.metrics.IncrExternalError(serviceName)
	return &domain.ErrWrite{Collection: collection, Err: err}
}

func (c *Client) circuitError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: serviceName}
	}
	return nil
}

// Ping checks that PostgREST answers. Used by /readyz.
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Supabase.Ping")
	defer span.End()

	var rows []map[string]any
	return c.readError("funds", c.doRequest(ctx, "funds?select=id&limit=1", &rows))
}
