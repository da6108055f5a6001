package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/infra/observability"
	"github.com/boddenberg/funds-bfa-go/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var dashboardTracer = otel.Tracer("service/dashboard")

const recentItems = 5

// DashboardService builds the per-role landing page summaries.
type DashboardService struct {
	store   port.RecordStore
	cache   port.Cache[any]
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewDashboardService(store port.RecordStore, cache port.Cache[any], metrics *observability.Metrics, logger *zap.Logger) *DashboardService {
	return &DashboardService{store: store, cache: cache, metrics: metrics, logger: logger}
}

func cacheKey(actor domain.Identity) string {
	return fmt.Sprintf("dashboard:%s:%s", actor.Role, actor.Email)
}

// cached returns the summary stored for actor, if any.
func cached[T any](s *DashboardService, actor domain.Identity) (*T, bool) {
	if v, ok := s.cache.Get(cacheKey(actor)); ok {
		if d, ok := v.(*T); ok {
			s.metrics.IncrCacheHit("dashboard")
			return d, true
		}
	}
	s.metrics.IncrCacheMiss("dashboard")
	return nil, false
}

// ============================================================
// Finance Officer
// ============================================================

func (s *DashboardService) Officer(ctx context.Context, actor domain.Identity) (*domain.OfficerDashboard, error) {
	if d, ok := cached[domain.OfficerDashboard](s, actor); ok {
		return d, nil
	}

	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Officer")
	defer span.End()

	var (
		donations []domain.Donation
		messages  []domain.Message
		reports   []domain.Report
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		donations, err = s.store.ListDonations(gCtx, domain.DonationFilter{})
		return err
	})
	g.Go(func() (err error) {
		messages, err = s.store.ListMessages(gCtx, domain.MessageFilter{MessageBy: actor.Email})
		return err
	})
	g.Go(func() (err error) {
		reports, err = s.store.ListReports(gCtx, domain.ReportFilter{CreatedBy: actor.Email})
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("officer dashboard", zap.String("email", actor.Email), zap.Error(err))
		return nil, fmt.Errorf("officer dashboard: %w", err)
	}

	total, _, count := AggregateDonations(donations)
	d := &domain.OfficerDashboard{
		TotalDonations:  total,
		DonationCount:   count,
		MessagesSent:    len(messages),
		ReportsCreated:  len(reports),
		RecentDonations: head(donations, recentItems),
	}
	s.cache.Set(cacheKey(actor), d)
	return d, nil
}

// ============================================================
// Finance Administrator
// ============================================================

func (s *DashboardService) Admin(ctx context.Context, actor domain.Identity) (*domain.AdminDashboard, error) {
	if d, ok := cached[domain.AdminDashboard](s, actor); ok {
		return d, nil
	}

	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Admin")
	defer span.End()

	var (
		reports  []domain.Report
		requests []domain.FundRequest
		shares   []domain.ExternalReport
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		reports, err = s.store.ListReports(gCtx, domain.ReportFilter{SharedWith: domain.RoleFinanceAdministrator})
		return err
	})
	g.Go(func() (err error) {
		requests, err = s.store.ListFundRequests(gCtx, domain.FundRequestFilter{})
		return err
	})
	g.Go(func() (err error) {
		shares, err = s.store.ListExternalReports(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("admin dashboard", zap.String("email", actor.Email), zap.Error(err))
		return nil, fmt.Errorf("admin dashboard: %w", err)
	}

	d := &domain.AdminDashboard{
		ReportsReceived: len(reports),
		ExternalShares:  len(shares),
	}
	for _, fr := range requests {
		switch fr.Status {
		case domain.FundRequestPending:
			d.PendingRequests++
		case domain.FundRequestApproved:
			d.ApprovedRequests++
		case domain.FundRequestRejected:
			d.RejectedRequests++
		}
	}
	s.cache.Set(cacheKey(actor), d)
	return d, nil
}

// ============================================================
// Program Manager
// ============================================================

func (s *DashboardService) Manager(ctx context.Context, actor domain.Identity) (*domain.ManagerDashboard, error) {
	if d, ok := cached[domain.ManagerDashboard](s, actor); ok {
		return d, nil
	}

	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Manager")
	defer span.End()

	var (
		requests      []domain.FundRequest
		distributions []domain.Distribution
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		requests, err = s.store.ListFundRequests(gCtx, domain.FundRequestFilter{RequestedBy: actor.Email})
		return err
	})
	g.Go(func() (err error) {
		distributions, err = s.store.ListDistributions(gCtx, domain.DistributionFilter{DistributedBy: actor.Email})
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("manager dashboard", zap.String("email", actor.Email), zap.Error(err))
		return nil, fmt.Errorf("manager dashboard: %w", err)
	}

	d := &domain.ManagerDashboard{
		TotalRequested:      decimal.Zero,
		TotalApproved:       decimal.Zero,
		TotalDistributed:    decimal.Zero,
		DistributionCount:   len(distributions),
		RecentDistributions: head(distributions, recentItems),
	}
	for _, fr := range requests {
		d.TotalRequested = d.TotalRequested.Add(fr.Amount)
		switch fr.Status {
		case domain.FundRequestApproved:
			d.TotalApproved = d.TotalApproved.Add(fr.Amount)
		case domain.FundRequestPending:
			d.PendingRequests++
		}
	}
	for _, dist := range distributions {
		d.TotalDistributed = d.TotalDistributed.Add(dist.Total())
	}
	s.cache.Set(cacheKey(actor), d)
	return d, nil
}

// Invalidate drops every cached summary.
func (s *DashboardService) Invalidate() {
	if c, ok := s.cache.(interface{ DeletePrefix(string) }); ok {
		c.DeletePrefix("dashboard:")
	}
}

func head[T any](rows []T, n int) []T {
	if len(rows) > n {
		rows = rows[:n]
	}
	return append([]T{}, rows...)
}
