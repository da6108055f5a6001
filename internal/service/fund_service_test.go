package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/infra/memory"
	"github.com/boddenberg/funds-bfa-go/internal/infra/observability"
	"github.com/boddenberg/funds-bfa-go/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func newFundService(store *memory.Store, strict bool) *service.FundService {
	return service.NewFundService(store, strict, observability.NewMetrics(), zap.NewNop())
}

func TestFundCreate_Success(t *testing.T) {
	svc := newFundService(memory.New(), false)

	fr, err := svc.Create(context.Background(), manager, dec(1000), domain.CategoryZakat, "  winter relief  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if fr.Status != domain.FundRequestPending {
		t.Errorf("expected pending, got %s", fr.Status)
	}
	if !fr.RemainingAmount.Equal(fr.Amount) {
		t.Errorf("expected remaining == amount, got %s vs %s", fr.RemainingAmount, fr.Amount)
	}
	if fr.RequestedBy != manager.Email {
		t.Errorf("expected requestedBy %s, got %s", manager.Email, fr.RequestedBy)
	}
	if fr.Reason != "winter relief" {
		t.Errorf("expected trimmed reason, got %q", fr.Reason)
	}
}

func TestFundCreate_Validation(t *testing.T) {
	svc := newFundService(memory.New(), false)

	cases := []struct {
		name     string
		amount   decimal.Decimal
		category domain.CategoryID
		reason   string
		field    string
	}{
		{"zero amount", dec(0), domain.CategoryZakat, "r", "amount"},
		{"negative amount", dec(-5), domain.CategoryZakat, "r", "amount"},
		{"unknown category", dec(10), "lottery", "r", "category"},
		{"blank reason", dec(10), domain.CategoryHealth, "   ", "reason"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), manager, tc.amount, tc.category, tc.reason)
			var ve *domain.ErrValidation
			if !errors.As(err, &ve) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if ve.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, ve.Field)
			}
		})
	}
}

func TestFundApprove(t *testing.T) {
	store := memory.New()
	svc := newFundService(store, false)
	ctx := context.Background()
	fr, _ := svc.Create(ctx, manager, dec(500), domain.CategoryEducation, "books")

	approved, err := svc.Approve(ctx, admin, fr.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if approved.Status != domain.FundRequestApproved || approved.ApprovedAt == nil {
		t.Errorf("unexpected approved request: %+v", approved)
	}

	stored, _ := store.GetFundRequest(ctx, fr.ID)
	if stored.Status != domain.FundRequestApproved || stored.ApprovedAt == nil {
		t.Errorf("approval not persisted: %+v", stored)
	}
}

func TestFundApprove_NotFound(t *testing.T) {
	svc := newFundService(memory.New(), false)

	_, err := svc.Approve(context.Background(), admin, "missing")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFundReject_EmptyReasonLeavesStatus(t *testing.T) {
	store := memory.New()
	svc := newFundService(store, false)
	ctx := context.Background()
	fr, _ := svc.Create(ctx, manager, dec(500), domain.CategoryHealth, "clinic")

	_, err := svc.Reject(ctx, admin, fr.ID, "  ")
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	stored, _ := store.GetFundRequest(ctx, fr.ID)
	if stored.Status != domain.FundRequestPending {
		t.Errorf("expected status untouched, got %s", stored.Status)
	}
}

func TestFundReject(t *testing.T) {
	store := memory.New()
	svc := newFundService(store, false)
	ctx := context.Background()
	fr, _ := svc.Create(ctx, manager, dec(500), domain.CategoryHealth, "clinic")

	if _, err := svc.Reject(ctx, admin, fr.ID, "budget exhausted"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	stored, _ := store.GetFundRequest(ctx, fr.ID)
	if stored.Status != domain.FundRequestRejected || stored.RejectionReason != "budget exhausted" {
		t.Errorf("unexpected stored request: %+v", stored)
	}
}

func TestFundTransitions_PermissiveByDefault(t *testing.T) {
	svc := newFundService(memory.New(), false)
	ctx := context.Background()
	fr, _ := svc.Create(ctx, manager, dec(500), domain.CategoryHealth, "clinic")

	if _, err := svc.Reject(ctx, admin, fr.ID, "no"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Approve(ctx, admin, fr.ID); err != nil {
		t.Fatalf("expected re-approval to be allowed, got %v", err)
	}
}

func TestFundTransitions_Strict(t *testing.T) {
	svc := newFundService(memory.New(), true)
	ctx := context.Background()
	fr, _ := svc.Create(ctx, manager, dec(500), domain.CategoryHealth, "clinic")

	if _, err := svc.Approve(ctx, admin, fr.ID); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Reject(ctx, admin, fr.ID, "changed my mind")
	var ise *domain.ErrInvalidState
	if !errors.As(err, &ise) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if ise.Status != string(domain.FundRequestApproved) {
		t.Errorf("expected current status approved, got %s", ise.Status)
	}
}

func TestFundQueueAndListings(t *testing.T) {
	svc := newFundService(memory.New(), false)
	ctx := context.Background()
	other := domain.Identity{Email: "other@x.org", Role: domain.RoleProgramManager}

	a, _ := svc.Create(ctx, manager, dec(100), domain.CategoryZakat, "a")
	svc.Create(ctx, manager, dec(200), domain.CategoryZakat, "b")
	svc.Create(ctx, other, dec(300), domain.CategoryZakat, "c")
	svc.Approve(ctx, admin, a.ID)

	q, err := svc.Queue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(q.Pending) != 2 || len(q.Processed) != 1 {
		t.Errorf("expected 2 pending / 1 processed, got %d / %d", len(q.Pending), len(q.Processed))
	}

	own, _ := svc.ListOwn(ctx, manager)
	if len(own) != 2 {
		t.Errorf("expected 2 own requests, got %d", len(own))
	}

	approved, _ := svc.ListApproved(ctx, manager)
	if len(approved) != 1 || approved[0].ID != a.ID {
		t.Errorf("unexpected approved list: %+v", approved)
	}
}
