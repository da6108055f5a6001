package memory

import (
	"context"
	"sync"
	"time"

	"github.com/boddenberg/funds-bfa-go/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = time.Hour

type identity struct {
	hash []byte
	meta domain.IdentityMetadata
}

// Identities is an in-process identity provider.
type Identities struct {
	mu       sync.RWMutex
	accounts map[string]identity
}

func NewIdentities() *Identities {
	return &Identities{accounts: make(map[string]identity)}
}

func (p *Identities) SignIn(ctx context.Context, email, password string) (*domain.ProviderSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	acct, ok := p.accounts[email]
	p.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}
	return &domain.ProviderSession{
		AccessToken: uuid.NewString(),
		ExpiresIn:   int(sessionTTL.Seconds()),
		Email:       email,
		Metadata:    acct.meta,
	}, nil
}

func (p *Identities) SignUp(ctx context.Context, email, password string, meta domain.IdentityMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.accounts[email]; ok {
		return &domain.ErrConflict{Message: "identity already registered: " + email}
	}
	p.accounts[email] = identity{hash: hash, meta: meta}
	return nil
}
