package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var userTracer = otel.Tracer("service/users")

const (
	bcryptCost        = bcrypt.DefaultCost
	minPasswordLength = 6
)

// UserService manages dashboard accounts on behalf of the finance
// administrator.
type UserService struct {
	store  port.UserStore
	logger *zap.Logger
}

func NewUserService(store port.UserStore, logger *zap.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// List returns every account except the actor's own.
func (s *UserService) List(ctx context.Context, actor domain.Identity) ([]domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.List")
	defer span.End()

	rows, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.User, 0, len(rows))
	for _, u := range rows {
		if u.Email == actor.Email {
			continue
		}
		out = append(out, u.Public())
	}
	return out, nil
}

// Create adds an enabled account that has not logged in yet.
func (s *UserService) Create(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.Create")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, &domain.ErrValidation{Field: "email", Message: "a valid email is required"}
	}
	if len(password) < minPasswordLength {
		return nil, &domain.ErrValidation{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if _, ok := domain.ParseRole(string(role)); !ok {
		return nil, &domain.ErrValidation{Field: "role", Message: "unknown role"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.store.CreateUser(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Role:         role,
		IsAdmin:      true,
		IsLoggedIn:   false,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created", zap.String("email", email), zap.String("role", string(role)))
	out := u.Public()
	return &out, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	ctx, span := userTracer.Start(ctx, "UserService.Delete")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return &domain.ErrValidation{Field: "id", Message: "is required"}
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("user deleted", zap.String("id", id))
	return nil
}
