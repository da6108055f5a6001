package service

import (
	"context"
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

var fundTracer = otel.Tracer("service/funds")

// FundService owns the fund request lifecycle:
// pending -> approved | rejected.
type FundService struct {
	store   port.FundRequestStore
	strict  bool
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewFundService creates the service. With strict set, approve and reject
// only accept requests that are still pending.
func NewFundService(store port.FundRequestStore, strict bool, metrics *observability.Metrics, logger *zap.Logger) *FundService {
	return &FundService{
		store:   store,
		strict:  strict,
		metrics: metrics,
		logger:  logger,
	}
}

// ============================================================
// Create (POST /v1/manager/fund-requests)
// ============================================================

func (s *FundService) Create(ctx context.Context, actor domain.Identity, amount decimal.Decimal, category domain.CategoryID, reason string) (*domain.FundRequest, error) {
	ctx, span := fundTracer.Start(ctx, "FundService.Create")
	defer span.End()

	if !amount.IsPositive() {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be greater than zero"}
	}
	if !domain.ValidCategory(category) {
		return nil, &domain.ErrValidation{Field: "category", Message: "unknown category"}
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &domain.ErrValidation{Field: "reason", Message: "is required"}
	}

	fr, err := s.store.CreateFundRequest(ctx, &domain.FundRequest{
		ID:              uuid.NewString(),
		Amount:          amount,
		Category:        category,
		Reason:          reason,
		Status:          domain.FundRequestPending,
		RequestedBy:     actor.Email,
		CreatedAt:       time.Now().UTC(),
		RemainingAmount: amount,
	})
	if err != nil {
		return nil, fmt.Errorf("create fund request: %w", err)
	}

	span.SetAttributes(attribute.String("fund_request.id", fr.ID))
	s.metrics.IncrFundTransition(domain.FundRequestPending)
	s.logger.Info("fund request created",
		zap.String("id", fr.ID),
		zap.String("requested_by", actor.Email),
		zap.String("category", string(category)),
		zap.String("amount", amount.String()),
	)
	return fr, nil
}

// ============================================================
// Approve / Reject (POST /v1/admin/fund-requests/{id}/...)
// ============================================================

func (s *FundService) Approve(ctx context.Context, actor domain.Identity, id string) (*domain.FundRequest, error) {
	ctx, span := fundTracer.Start(ctx, "FundService.Approve")
	defer span.End()
	span.SetAttributes(attribute.String("fund_request.id", id))

	fr, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.store.UpdateFundRequest(ctx, id, map[string]any{
		"status":     domain.FundRequestApproved,
		"approvedAt": now,
	}); err != nil {
		return nil, fmt.Errorf("approve fund request: %w", err)
	}

	fr.Status = domain.FundRequestApproved
	fr.ApprovedAt = &now

	s.metrics.IncrFundTransition(domain.FundRequestApproved)
	s.logger.Info("fund request approved",
		zap.String("id", id),
		zap.String("approved_by", actor.Email),
	)
	return fr, nil
}

func (s *FundService) Reject(ctx context.Context, actor domain.Identity, id, reason string) (*domain.FundRequest, error) {
	ctx, span := fundTracer.Start(ctx, "FundService.Reject")
	defer span.End()
	span.SetAttributes(attribute.String("fund_request.id", id))

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &domain.ErrValidation{Field: "reason", Message: "a rejection reason is required"}
	}

	fr, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateFundRequest(ctx, id, map[string]any{
		"status":          domain.FundRequestRejected,
		"rejectionReason": reason,
	}); err != nil {
		return nil, fmt.Errorf("reject fund request: %w", err)
	}

	fr.Status = domain.FundRequestRejected
	fr.RejectionReason = reason

	s.metrics.IncrFundTransition(domain.FundRequestRejected)
	s.logger.Info("fund request rejected",
		zap.String("id", id),
		zap.String("rejected_by", actor.Email),
	)
	return fr, nil
}

// load fetches the request and applies the transition guard.
func (s *FundService) load(ctx context.Context, id string) (*domain.FundRequest, error) {
	fr, err := s.store.GetFundRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get fund request: %w", err)
	}
	if s.strict && fr.Status != domain.FundRequestPending {
		return nil, &domain.ErrInvalidState{
			Resource: "fund request",
			ID:       id,
			Status:   string(fr.Status),
			Expected: string(domain.FundRequestPending),
		}
	}
	return fr, nil
}

// ============================================================
// Listing
// ============================================================

// List returns requests matching filter, newest first.
func (s *FundService) List(ctx context.Context, filter domain.FundRequestFilter) ([]domain.FundRequest, error) {
	ctx, span := fundTracer.Start(ctx, "FundService.List")
	defer span.End()

	rows, err := s.store.ListFundRequests(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list fund requests: %w", err)
	}
	return rows, nil
}

// ListOwn returns the actor's own requests.
func (s *FundService) ListOwn(ctx context.Context, actor domain.Identity) ([]domain.FundRequest, error) {
	return s.List(ctx, domain.FundRequestFilter{RequestedBy: actor.Email})
}

// ListApproved returns the actor's requests that can receive distributions.
func (s *FundService) ListApproved(ctx context.Context, actor domain.Identity) ([]domain.FundRequest, error) {
	return s.List(ctx, domain.FundRequestFilter{RequestedBy: actor.Email, Status: domain.FundRequestApproved})
}

// Queue splits every request into pending and already processed.
func (s *FundService) Queue(ctx context.Context) (*domain.FundRequestQueue, error) {
	rows, err := s.List(ctx, domain.FundRequestFilter{})
	if err != nil {
		return nil, err
	}
	q := &domain.FundRequestQueue{Pending: []domain.FundRequest{}, Processed: []domain.FundRequest{}}
	for _, fr := range rows {
		if fr.Status == domain.FundRequestPending {
			q.Pending = append(q.Pending, fr)
		} else {
			q.Processed = append(q.Processed, fr)
		}
	}
	return q, nil
}
