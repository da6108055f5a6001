package service_test

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/infra/memory"

	"github.com/shopspring/decimal"
)

var (
	officer = domain.Identity{Email: "officer@x.org", Role: domain.RoleFinanceOfficer}
	admin   = domain.Identity{Email: "admin@x.org", Role: domain.RoleFinanceAdministrator}
	manager = domain.Identity{Email: "manager@x.org", Role: domain.RoleProgramManager}
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var errBackend = errors.New("backend unavailable")

// --- Mocks ---

// faultyStore wraps the memory store and fails selected calls.
type faultyStore struct {
	*memory.Store

	failCreateDistribution bool
	commitThenFailCreate   bool // store the row, then report a write error
	failListDonations      bool
	failListDistributions  bool
	failCreateMessage      bool
	failSwapAfter          int32 // fail every swap once this many have succeeded; 0 disables
	swaps                  atomic.Int32
	raceOnSwap             func()
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Store: memory.New()}
}

func (f *faultyStore) CreateDistribution(ctx context.Context, d *domain.Distribution) (*domain.Distribution, error) {
	if f.failCreateDistribution {
		return nil, &domain.ErrWrite{Collection: "distributions", Err: errBackend}
	}
	if f.commitThenFailCreate {
		if _, err := f.Store.CreateDistribution(ctx, d); err != nil {
			return nil, err
		}
		return nil, &domain.ErrWrite{Collection: "distributions", Err: context.DeadlineExceeded}
	}
	return f.Store.CreateDistribution(ctx, d)
}

func (f *faultyStore) ListDonations(ctx context.Context, filter domain.DonationFilter) ([]domain.Donation, error) {
	if f.failListDonations {
		return nil, &domain.ErrQuery{Collection: "donations", Err: errBackend}
	}
	return f.Store.ListDonations(ctx, filter)
}

func (f *faultyStore) ListDistributions(ctx context.Context, filter domain.DistributionFilter) ([]domain.Distribution, error) {
	if f.failListDistributions {
		return nil, &domain.ErrQuery{Collection: "distributions", Err: errBackend}
	}
	return f.Store.ListDistributions(ctx, filter)
}

func (f *faultyStore) CreateMessage(ctx context.Context, m *domain.Message) (*domain.Message, error) {
	if f.failCreateMessage {
		return nil, &domain.ErrWrite{Collection: "acknowledgment", Err: errBackend}
	}
	return f.Store.CreateMessage(ctx, m)
}

func (f *faultyStore) SwapRemainingAmount(ctx context.Context, id string, expected, next decimal.Decimal) (bool, error) {
	if f.raceOnSwap != nil {
		hook := f.raceOnSwap
		f.raceOnSwap = nil
		hook()
	}
	if f.failSwapAfter > 0 && f.swaps.Load() >= f.failSwapAfter {
		return false, &domain.ErrWrite{Collection: "funds", Err: errBackend}
	}
	ok, err := f.Store.SwapRemainingAmount(ctx, id, expected, next)
	if ok {
		f.swaps.Add(1)
	}
	return ok, err
}
