package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/boddenberg/funds-bfa-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// IdentityProvider implementation: GoTrue (/auth/v1)
// ============================================================

type gotrueSession struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	User        struct {
		Email    string                  `json:"email"`
		Metadata domain.IdentityMetadata `json:"user_metadata"`
	} `json:"user"`
}

func (c *Client) authURL(path string) string {
	return fmt.Sprintf("%s/auth/v1/%s", c.baseURL, path)
}

// SignIn exchanges email + password for a GoTrue session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.ProviderSession, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SignIn")
	defer span.End()

	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	var s gotrueSession
	err = c.guard.Write(ctx, func() error {
		body, err := c.do(ctx, http.MethodPost, c.authURL("token?grant_type=password"), bytes.NewReader(payload), "application/json", "")
		if err != nil {
			return err
		}
		return json.Unmarshal(body, &s)
	})
	if err != nil {
		if hasStatus(err, http.StatusBadRequest) || hasStatus(err, http.StatusUnauthorized) {
			return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
		}
		if open := c.circuitError(err); open != nil {
			return nil, open
		}
		c.metrics.IncrExternalError("supabase/auth")
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}

	c.logger.Debug("supabase: sign-in OK", zap.String("email", s.User.Email))

	return &domain.ProviderSession{
		AccessToken: s.AccessToken,
		ExpiresIn:   s.ExpiresIn,
		Email:       s.User.Email,
		Metadata:    s.User.Metadata,
	}, nil
}

// SignUp creates the GoTrue account carrying the display name and role.
func (c *Client) SignUp(ctx context.Context, email, password string, meta domain.IdentityMetadata) error {
	ctx, span := tracer.Start(ctx, "Supabase.SignUp")
	defer span.End()

	payload, err := json.Marshal(map[string]any{
		"email":    email,
		"password": password,
		"data":     meta,
	})
	if err != nil {
		return err
	}

	err = c.guard.Write(ctx, func() error {
		_, err := c.do(ctx, http.MethodPost, c.authURL("signup"), bytes.NewReader(payload), "application/json", "")
		return err
	})
	if err != nil {
		if hasStatus(err, http.StatusUnprocessableEntity) || hasStatus(err, http.StatusBadRequest) {
			return &domain.ErrConflict{Message: "identity already registered: " + email}
		}
		if open := c.circuitError(err); open != nil {
			return open
		}
		c.metrics.IncrExternalError("supabase/auth")
		return &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}

	c.logger.Info("supabase: identity created", zap.String("email", email), zap.String("role", string(meta.Role)))
	return nil
}
