package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/infra/observability"
	"github.com/boddenberg/funds-bfa-go/internal/service"

	"go.uber.org/zap"
)

func newReportService(store *faultyStore) *service.ReportService {
	return service.NewReportService(store, store, store, store, observability.NewMetrics(), zap.NewNop())
}

func seedDonation(t *testing.T, store *faultyStore, id string, category domain.CategoryID, amount int64, at time.Time) {
	t.Helper()
	_, err := store.CreateDonation(context.Background(), &domain.Donation{
		ID:            id,
		TransactionID: "TXN" + id,
		UserEmail:     "donor@x.org",
		Category:      category,
		Amount:        dec(amount),
		PaymentMethod: domain.PaymentCash,
		Status:        domain.DonationSuccess,
		CreatedAt:     at,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestGenerateDonationReport_Totals(t *testing.T) {
	store := newFaultyStore()
	now := time.Now().UTC()
	seedDonation(t, store, "1", domain.CategoryZakat, 100, now)
	seedDonation(t, store, "2", domain.CategoryEducation, 50, now)

	r, err := newReportService(store).GenerateDonationReport(context.Background(), officer, "Q1", domain.DateRange{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !r.TotalDonations.Equal(dec(150)) {
		t.Errorf("expected total 150, got %s", r.TotalDonations)
	}
	if r.TransactionCount != 2 {
		t.Errorf("expected 2 transactions, got %d", r.TransactionCount)
	}
	if !r.DonationsByCategory[domain.CategoryZakat].Equal(dec(100)) || !r.DonationsByCategory[domain.CategoryEducation].Equal(dec(50)) {
		t.Errorf("unexpected breakdown: %v", r.DonationsByCategory)
	}
	if len(r.SharedWith) != 1 || r.SharedWith[0] != domain.RoleFinanceAdministrator {
		t.Errorf("expected shared with Finance Administrator, got %v", r.SharedWith)
	}
	if r.Periods.From != "Start" || r.Periods.To != "Today" {
		t.Errorf("unexpected periods: %+v", r.Periods)
	}

	shared, _ := newReportService(store).ListSharedReports(context.Background(), domain.RoleFinanceAdministrator)
	if len(shared) != 1 || shared[0].ID != r.ID {
		t.Errorf("expected report visible to admin, got %+v", shared)
	}
}

func TestGenerateDonationReport_DateRangeInclusive(t *testing.T) {
	store := newFaultyStore()
	seedDonation(t, store, "before", domain.CategoryZakat, 10, time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC))
	seedDonation(t, store, "first", domain.CategoryZakat, 20, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	seedDonation(t, store, "last", domain.CategoryHealth, 30, time.Date(2024, 3, 31, 22, 0, 0, 0, time.UTC))
	seedDonation(t, store, "after", domain.CategoryZakat, 40, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	r, err := domain.ParseDateRange("2024-03-01", "2024-03-31")
	if err != nil {
		t.Fatal(err)
	}
	report, err := newReportService(store).GenerateDonationReport(context.Background(), officer, "March", r)
	if err != nil {
		t.Fatal(err)
	}
	if !report.TotalDonations.Equal(dec(50)) || report.TransactionCount != 2 {
		t.Errorf("expected 50 over 2 donations, got %s over %d", report.TotalDonations, report.TransactionCount)
	}
	if report.Periods.From != "2024-03-01" || report.Periods.To != "2024-03-31" {
		t.Errorf("unexpected periods: %+v", report.Periods)
	}
}

func TestGenerateDonationReport_QueryFailurePersistsNothing(t *testing.T) {
	store := newFaultyStore()
	store.failListDonations = true
	svc := newReportService(store)

	_, err := svc.GenerateDonationReport(context.Background(), officer, "Q1", domain.DateRange{})
	var qe *domain.ErrQuery
	if !errors.As(err, &qe) {
		t.Fatalf("expected ErrQuery, got %v", err)
	}

	rows, _ := svc.ListOwnReports(context.Background(), officer)
	if len(rows) != 0 {
		t.Errorf("expected no report persisted, got %d", len(rows))
	}
}

func TestGenerateDonationReport_TitleRequired(t *testing.T) {
	_, err := newReportService(newFaultyStore()).GenerateDonationReport(context.Background(), officer, " ", domain.DateRange{})
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestGenerateFundReport(t *testing.T) {
	store := newFaultyStore()
	metrics := observability.NewMetrics()
	funds := service.NewFundService(store, false, metrics, zap.NewNop())
	dist := service.NewDistributionService(store, store, 3, metrics, zap.NewNop())
	ctx := context.Background()

	a, _ := funds.Create(ctx, manager, dec(1000), domain.CategoryZakat, "a")
	funds.Create(ctx, manager, dec(200), domain.CategoryHealth, "b")
	c, _ := funds.Create(ctx, manager, dec(300), domain.CategoryZakat, "c")
	funds.Create(ctx, admin, dec(999), domain.CategoryZakat, "not mine")
	funds.Approve(ctx, admin, a.ID)
	funds.Reject(ctx, admin, c.ID, "no")
	dist.Distribute(ctx, manager, a.ID, []domain.Beneficiary{{Name: "A", Amount: dec(400)}, {Name: "B", Amount: dec(100)}})

	r, err := newReportService(store).GenerateFundReport(ctx, manager, "Funds", domain.DateRange{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !r.TotalFunds.Equal(dec(1500)) || r.TransactionCount != 3 {
		t.Errorf("expected 1500 over 3 requests, got %s over %d", r.TotalFunds, r.TransactionCount)
	}
	if !r.TotalDistributed.Equal(dec(500)) {
		t.Errorf("expected 500 distributed, got %s", r.TotalDistributed)
	}
	if !r.FundsByCategory[domain.CategoryZakat].Equal(dec(1300)) || !r.FundsByCategory[domain.CategoryHealth].Equal(dec(200)) {
		t.Errorf("unexpected categories: %v", r.FundsByCategory)
	}
	if !r.FundsByStatus[domain.FundRequestApproved].Equal(dec(1000)) ||
		!r.FundsByStatus[domain.FundRequestPending].Equal(dec(200)) ||
		!r.FundsByStatus[domain.FundRequestRejected].Equal(dec(300)) {
		t.Errorf("unexpected statuses: %v", r.FundsByStatus)
	}
	if len(r.SharedWith) != 1 || r.SharedWith[0] != domain.RoleFinanceOfficer {
		t.Errorf("expected shared with Finance Officer, got %v", r.SharedWith)
	}

	forOfficer, _ := newReportService(store).ListSharedFundReports(ctx, domain.RoleFinanceOfficer)
	if len(forOfficer) != 1 {
		t.Errorf("expected fund report visible to officer, got %d", len(forOfficer))
	}
}

func TestGenerateFundReport_DistributionQueryFailure(t *testing.T) {
	store := newFaultyStore()
	store.failListDistributions = true
	svc := newReportService(store)

	_, err := svc.GenerateFundReport(context.Background(), manager, "Funds", domain.DateRange{})
	var qe *domain.ErrQuery
	if !errors.As(err, &qe) {
		t.Fatalf("expected ErrQuery, got %v", err)
	}
	rows, _ := svc.ListOwnFundReports(context.Background(), manager)
	if len(rows) != 0 {
		t.Errorf("expected no fund report persisted, got %d", len(rows))
	}
}
