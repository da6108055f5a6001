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
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var reportTracer = otel.Tracer("service/reports")

// Snapshots are always shared with a fixed audience per report type.
var (
	donationReportAudience = []domain.Role{domain.RoleFinanceAdministrator}
	fundReportAudience     = []domain.Role{domain.RoleFinanceOfficer}
)

// ReportService aggregates raw records into frozen report snapshots.
type ReportService struct {
	donations     port.DonationStore
	funds         port.FundRequestStore
	distributions port.DistributionStore
	reports       port.ReportStore
	metrics       *observability.Metrics
	logger        *zap.Logger
}

func NewReportService(
	donations port.DonationStore,
	funds port.FundRequestStore,
	distributions port.DistributionStore,
	reports port.ReportStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		donations:     donations,
		funds:         funds,
		distributions: distributions,
		reports:       reports,
		metrics:       metrics,
		logger:        logger,
	}
}

// ============================================================
// Donation report (POST /v1/officer/reports)
// ============================================================

func (s *ReportService) GenerateDonationReport(ctx context.Context, actor domain.Identity, title string, r domain.DateRange) (*domain.Report, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.GenerateDonationReport")
	defer span.End()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &domain.ErrValidation{Field: "title", Message: "is required"}
	}

	donations, err := s.donations.ListDonations(ctx, domain.DonationFilter{Range: r})
	if err != nil {
		return nil, fmt.Errorf("donation report: %w", err)
	}

	report := &domain.Report{
		ID:         uuid.NewString(),
		Title:      title,
		CreatedBy:  actor.Email,
		SharedWith: donationReportAudience,
		Periods:    r.Period(),
		CreatedAt:  time.Now().UTC(),
	}
	report.TotalDonations, report.DonationsByCategory, report.TransactionCount = AggregateDonations(donations)

	saved, err := s.reports.CreateReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("save donation report: %w", err)
	}

	s.logger.Info("donation report generated",
		zap.String("id", saved.ID),
		zap.String("created_by", actor.Email),
		zap.Int("transactions", saved.TransactionCount),
	)
	return saved, nil
}

// AggregateDonations totals donations overall and per category.
func AggregateDonations(donations []domain.Donation) (decimal.Decimal, map[domain.CategoryID]decimal.Decimal, int) {
	total := decimal.Zero
	byCategory := map[domain.CategoryID]decimal.Decimal{}
	for _, d := range donations {
		total = total.Add(d.Amount)
		byCategory[d.Category] = byCategory[d.Category].Add(d.Amount)
	}
	return total, byCategory, len(donations)
}

// ============================================================
// Fund report (POST /v1/manager/reports)
// ============================================================

// GenerateFundReport aggregates the actor's fund requests and the
// distributions they recorded. The date range applies to both.
func (s *ReportService) GenerateFundReport(ctx context.Context, actor domain.Identity, title string, r domain.DateRange) (*domain.FundReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.GenerateFundReport")
	defer span.End()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &domain.ErrValidation{Field: "title", Message: "is required"}
	}

	var (
		requests      []domain.FundRequest
		distributions []domain.Distribution
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.funds.ListFundRequests(gCtx, domain.FundRequestFilter{RequestedBy: actor.Email, Range: r})
		if err != nil {
			return fmt.Errorf("fund requests: %w", err)
		}
		requests = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.distributions.ListDistributions(gCtx, domain.DistributionFilter{DistributedBy: actor.Email, Range: r})
		if err != nil {
			return fmt.Errorf("distributions: %w", err)
		}
		distributions = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fund report: %w", err)
	}

	report := &domain.FundReport{
		ID:               uuid.NewString(),
		Title:            title,
		TotalFunds:       decimal.Zero,
		TotalDistributed: decimal.Zero,
		FundsByCategory:  map[domain.CategoryID]decimal.Decimal{},
		FundsByStatus:    map[domain.FundRequestStatus]decimal.Decimal{},
		TransactionCount: len(requests),
		CreatedBy:        actor.Email,
		SharedWith:       fundReportAudience,
		Periods:          r.Period(),
		CreatedAt:        time.Now().UTC(),
	}
	for _, fr := range requests {
		report.TotalFunds = report.TotalFunds.Add(fr.Amount)
		report.FundsByCategory[fr.Category] = report.FundsByCategory[fr.Category].Add(fr.Amount)
		report.FundsByStatus[fr.Status] = report.FundsByStatus[fr.Status].Add(fr.Amount)
	}
	for _, d := range distributions {
		report.TotalDistributed = report.TotalDistributed.Add(d.Total())
	}

	saved, err := s.reports.CreateFundReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("save fund report: %w", err)
	}

	s.logger.Info("fund report generated",
		zap.String("id", saved.ID),
		zap.String("created_by", actor.Email),
		zap.Int("requests", saved.TransactionCount),
	)
	return saved, nil
}

// ============================================================
// Listing
// ============================================================

// ListOwnReports returns donation reports created by actor.
func (s *ReportService) ListOwnReports(ctx context.Context, actor domain.Identity) ([]domain.Report, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.ListOwnReports")
	defer span.End()

	rows, err := s.reports.ListReports(ctx, domain.ReportFilter{CreatedBy: actor.Email})
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return rows, nil
}

// ListSharedReports returns donation reports shared with role.
func (s *ReportService) ListSharedReports(ctx context.Context, role domain.Role) ([]domain.Report, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.ListSharedReports")
	defer span.End()

	rows, err := s.reports.ListReports(ctx, domain.ReportFilter{SharedWith: role})
	if err != nil {
		return nil, fmt.Errorf("list shared reports: %w", err)
	}
	return rows, nil
}

// ListOwnFundReports returns fund reports created by actor.
func (s *ReportService) ListOwnFundReports(ctx context.Context, actor domain.Identity) ([]domain.FundReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.ListOwnFundReports")
	defer span.End()

	rows, err := s.reports.ListFundReports(ctx, domain.ReportFilter{CreatedBy: actor.Email})
	if err != nil {
		return nil, fmt.Errorf("list fund reports: %w", err)
	}
	return rows, nil
}

// ListSharedFundReports returns fund reports shared with role.
func (s *ReportService) ListSharedFundReports(ctx context.Context, role domain.Role) ([]domain.FundReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.ListSharedFundReports")
	defer span.End()

	rows, err := s.reports.ListFundReports(ctx, domain.ReportFilter{SharedWith: role})
	if err != nil {
		return nil, fmt.Errorf("list shared fund reports: %w", err)
	}
	return rows, nil
}
