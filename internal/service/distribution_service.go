package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/infra/observability"
	"github.com/boddenberg/funds-bfa-go/internal/port"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var distributionTracer = otel.Tracer("service/distributions")

const compensationTimeout = 5 * time.Second

// DistributionService allocates approved funds to beneficiaries and keeps
// remainingAmount in step with the recorded distributions.
type DistributionService struct {
	funds         port.FundRequestStore
	distributions port.DistributionStore
	casAttempts   int
	metrics       *observability.Metrics
	logger        *zap.Logger
}

func NewDistributionService(funds port.FundRequestStore, distributions port.DistributionStore, casAttempts int, metrics *observability.Metrics, logger *zap.Logger) *DistributionService {
	if casAttempts < 1 {
		casAttempts = 1
	}
	return &DistributionService{
		funds:         funds,
		distributions: distributions,
		casAttempts:   casAttempts,
		metrics:       metrics,
		logger:        logger,
	}
}

// ============================================================
// Distribute (POST /v1/manager/distributions)
// ============================================================

// Distribute reserves the beneficiaries' total on the fund request, then
// records the distribution. A failed insert gives the reservation back
// once the record is known to be absent.
func (s *DistributionService) Distribute(ctx context.Context, actor domain.Identity, fundRequestID string, beneficiaries []domain.Beneficiary) (*domain.Distribution, error) {
	ctx, span := distributionTracer.Start(ctx, "DistributionService.Distribute")
	defer span.End()
	span.SetAttributes(attribute.String("fund_request.id", fundRequestID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("distribute", time.Since(start))
	}()

	clean := cleanBeneficiaries(beneficiaries)
	if len(clean) == 0 {
		return nil, &domain.ErrValidation{Field: "beneficiaries", Message: "at least one beneficiary with a name and a positive amount is required"}
	}
	total := domain.SumBeneficiaries(clean)

	fr, err := s.reserve(ctx, fundRequestID, total)
	if err != nil {
		return nil, err
	}

	record := &domain.Distribution{
		ID:            uuid.NewString(),
		FundRequestID: fr.ID,
		Beneficiaries: clean,
		Category:      fr.Category,
		DistributedBy: actor.Email,
		CreatedAt:     time.Now().UTC(),
	}
	d, err := s.distributions.CreateDistribution(ctx, record)
	if err != nil {
		committed, lookupErr := s.recorded(ctx, record.ID)
		switch {
		case lookupErr != nil:
			s.metrics.IncrCompensationFailure()
			s.logger.Error("distribution insert outcome unknown, balance left reserved",
				zap.String("id", record.ID),
				zap.String("fund_request_id", fr.ID),
				zap.String("amount", total.String()),
				zap.Error(err),
				zap.NamedError("lookup_error", lookupErr),
			)
		case committed != nil:
			s.logger.Warn("distribution insert reported an error but the record exists",
				zap.String("id", record.ID),
				zap.String("fund_request_id", fr.ID),
				zap.Error(err),
			)
			d, err = committed, nil
		default:
			s.compensate(ctx, fr.ID, total)
		}
		if err != nil {
			var we *domain.ErrWrite
			if errors.As(err, &we) {
				return nil, err
			}
			return nil, &domain.ErrWrite{Collection: "distributions", Err: err}
		}
	}

	s.metrics.RecordDistribution(d.Category, total)
	s.logger.Info("distribution recorded",
		zap.String("id", d.ID),
		zap.String("fund_request_id", fr.ID),
		zap.String("distributed_by", actor.Email),
		zap.Int("beneficiaries", len(clean)),
		zap.String("total", total.String()),
	)
	return d, nil
}

// reserve subtracts total from remainingAmount with a compare-and-swap,
// re-reading the request each time another writer got there first.
func (s *DistributionService) reserve(ctx context.Context, id string, total decimal.Decimal) (*domain.FundRequest, error) {
	for attempt := 0; attempt < s.casAttempts; attempt++ {
		fr, err := s.funds.GetFundRequest(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get fund request: %w", err)
		}
		if fr.Status != domain.FundRequestApproved {
			return nil, &domain.ErrInvalidState{
				Resource: "fund request",
				ID:       id,
				Status:   string(fr.Status),
				Expected: string(domain.FundRequestApproved),
			}
		}
		if total.GreaterThan(fr.RemainingAmount) {
			return nil, &domain.ErrInsufficientBalance{
				FundRequestID: id,
				Available:     fr.RemainingAmount,
				Required:      total,
			}
		}

		next := fr.RemainingAmount.Sub(total)
		ok, err := s.funds.SwapRemainingAmount(ctx, id, fr.RemainingAmount, next)
		if err != nil {
			return nil, fmt.Errorf("reserve balance: %w", err)
		}
		if ok {
			fr.RemainingAmount = next
			return fr, nil
		}

		s.metrics.IncrBalanceConflict()
		s.logger.Debug("balance changed concurrently, retrying",
			zap.String("fund_request_id", id),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, &domain.ErrConflict{Message: "fund request balance changed concurrently, try again"}
}

// recorded looks a distribution up by id after a failed insert. The insert
// may have committed before the error (timeout, dropped connection), so the
// balance is only given back when the record is confirmed absent.
func (s *DistributionService) recorded(ctx context.Context, id string) (*domain.Distribution, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	rows, err := s.distributions.ListDistributions(ctx, domain.DistributionFilter{ID: id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// compensate adds total back to remainingAmount. It runs even when the
// caller's context is already cancelled.
func (s *DistributionService) compensate(ctx context.Context, id string, total decimal.Decimal) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < s.casAttempts; attempt++ {
		fr, err := s.funds.GetFundRequest(ctx, id)
		if err != nil {
			lastErr = err
			continue
		}
		ok, err := s.funds.SwapRemainingAmount(ctx, id, fr.RemainingAmount, fr.RemainingAmount.Add(total))
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			s.logger.Warn("distribution insert failed, balance restored",
				zap.String("fund_request_id", id),
				zap.String("amount", total.String()),
			)
			return
		}
		lastErr = errors.New("balance changed concurrently")
	}

	s.metrics.IncrCompensationFailure()
	s.logger.Error("failed to restore balance after distribution insert failure",
		zap.String("fund_request_id", id),
		zap.String("amount", total.String()),
		zap.Error(lastErr),
	)
}

// ============================================================
// Listing
// ============================================================

// List returns the distributions recorded by actor.
func (s *DistributionService) List(ctx context.Context, actor domain.Identity) ([]domain.Distribution, error) {
	ctx, span := distributionTracer.Start(ctx, "DistributionService.List")
	defer span.End()

	rows, err := s.distributions.ListDistributions(ctx, domain.DistributionFilter{DistributedBy: actor.Email})
	if err != nil {
		return nil, fmt.Errorf("list distributions: %w", err)
	}
	return rows, nil
}

// cleanBeneficiaries drops rows without a name or a positive amount.
func cleanBeneficiaries(in []domain.Beneficiary) []domain.Beneficiary {
	out := make([]domain.Beneficiary, 0, len(in))
	for _, b := range in {
		name := strings.TrimSpace(b.Name)
		if name == "" || !b.Amount.IsPositive() {
			continue
		}
		out = append(out, domain.Beneficiary{Name: name, Amount: b.Amount})
	}
	return out
}
