// Package service holds the use cases. AuthService handles dashboard login,
// BFA access tokens and logout.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

const tokenIssuer = "funds-bfa"

// TokenDenylist remembers revoked token ids until they expire.
type TokenDenylist interface {
	Get(key string) (bool, bool)
	SetWithTTL(key string, value bool, ttl time.Duration)
}

// AuthService orchestrates authentication flows.
type AuthService struct {
	users      port.UserStore
	identities port.IdentityProvider
	revoked    TokenDenylist
	jwtSecret  []byte
	accessTTL  time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(users port.UserStore, identities port.IdentityProvider, revoked TokenDenylist, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		identities: identities,
		revoked:    revoked,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		logger:     logger,
	}
}

// ============================================================
// Login (POST /v1/auth/login)
// ============================================================

// Login checks the account against the users table. The first login
// verifies the bcrypt hash and creates the identity-provider account;
// later logins go straight to the identity provider.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	span.SetAttributes(attribute.String("email", email))

	role, ok := domain.ParseRole(string(req.Role))
	if !ok {
		return nil, &domain.ErrValidation{Field: "role", Message: "unknown role"}
	}
	if email == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email and password are required"}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		var nf *domain.ErrNotFound
		if errors.As(err, &nf) {
			return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user.Role != role {
		s.logger.Warn("login: role mismatch",
			zap.String("email", email),
			zap.String("requested_role", string(role)),
		)
		return nil, &domain.ErrForbidden{Action: "sign in as " + string(role)}
	}
	if !user.IsAdmin {
		s.logger.Warn("login: account not enabled", zap.String("email", email))
		return nil, &domain.ErrForbidden{Action: "sign in with a disabled account"}
	}

	if user.IsLoggedIn {
		if _, err := s.identities.SignIn(ctx, email, req.Password); err != nil {
			return nil, fmt.Errorf("sign in: %w", err)
		}
	} else if err := s.firstLogin(ctx, user, req.Password, req.DisplayName); err != nil {
		return nil, err
	}

	token, err := s.signAccessToken(email, role)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("user logged in", zap.String("email", email), zap.String("role", string(role)))

	return &domain.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.accessTTL.Seconds()),
		Email:       email,
		Role:        role,
		Redirect:    domain.DashboardPath(role),
	}, nil
}

func (s *AuthService) firstLogin(ctx context.Context, user *domain.User, password, displayName string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login: wrong password", zap.String("email", user.Email))
		return &domain.ErrUnauthorized{Message: "invalid credentials"}
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return &domain.ErrValidation{Field: "displayName", Message: "required on first login"}
	}

	err := s.identities.SignUp(ctx, user.Email, password, domain.IdentityMetadata{FullName: displayName, Role: user.Role})
	var conflict *domain.ErrConflict
	switch {
	case errors.As(err, &conflict):
		// A previous first login created the identity but did not finish.
		if _, err := s.identities.SignIn(ctx, user.Email, password); err != nil {
			return fmt.Errorf("sign in: %w", err)
		}
	case err != nil:
		return fmt.Errorf("sign up: %w", err)
	}

	if err := s.users.UpdateUser(ctx, user.ID, map[string]any{"isLoggedIn": true}); err != nil {
		return fmt.Errorf("mark user logged in: %w", err)
	}

	s.logger.Info("first login completed", zap.String("email", user.Email))
	return nil
}

// ============================================================
// Logout (POST /v1/auth/logout)
// ============================================================

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *JWTClaims) error {
	_, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl > 0 {
		s.revoked.SetWithTTL(claims.ID, true, ttl)
	}

	s.logger.Info("user logged out", zap.String("email", claims.Subject))
	return nil
}

// ============================================================
// Access token validation
// ============================================================

// JWTClaims represents the custom claims in access tokens.
type JWTClaims struct {
	Role domain.Role `json:"role"`
	Type string      `json:"type"`
	jwt.RegisteredClaims
}

// Identity is the actor the token was issued to.
func (c *JWTClaims) Identity() domain.Identity {
	return domain.Identity{Email: c.Subject, Role: c.Role}
}

func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}
	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token type"}
	}
	if _, ok := domain.ParseRole(string(claims.Role)); !ok {
		return nil, &domain.ErrUnauthorized{Message: "invalid token role"}
	}
	if _, revoked := s.revoked.Get(claims.ID); revoked {
		return nil, &domain.ErrUnauthorized{Message: "token revoked"}
	}

	return claims, nil
}

func (s *AuthService) signAccessToken(email string, role domain.Role) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Role: role,
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
