package memory

import (
	"context"
	"errors"
	"time"

	"github.com/boddenberg/funds-bfa-go/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password of the seeded development accounts.
const DefaultPassword = "password123"

var defaultUsers = []struct {
	email string
	role  domain.Role
}{
	{"officer@alkhidmat.org", domain.RoleFinanceOfficer},
	{"admin@alkhidmat.org", domain.RoleFinanceAdministrator},
	{"manager@alkhidmat.org", domain.RoleProgramManager},
}

// SeedDefaultUsers creates one first-login account per role. Accounts
// that already exist are left alone.
func (s *Store) SeedDefaultUsers(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	for _, du := range defaultUsers {
		_, err := s.CreateUser(ctx, &domain.User{
			ID:           uuid.NewString(),
			Email:        du.email,
			Role:         du.role,
			IsAdmin:      true,
			PasswordHash: string(hash),
			CreatedAt:    time.Now().UTC(),
		})
		var conflict *domain.ErrConflict
		if err != nil && !errors.As(err, &conflict) {
			return err
		}
	}
	return nil
}
