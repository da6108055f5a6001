package service_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/infra/observability"
	"github.com/boddenberg/funds-bfa-go/internal/service"

	"go.uber.org/zap"
)

var txnPattern = regexp.MustCompile(`^TXN\d{13}[A-Z0-9]{6}$`)

func TestRecordDonation_Success(t *testing.T) {
	store := newFaultyStore()
	svc := service.NewDonationService(store, store, observability.NewMetrics(), zap.NewNop())
	ctx := context.Background()

	d, err := svc.Record(ctx, officer, "donor@x.org", domain.CategoryGaza, dec(250), domain.PaymentOnlineWallet)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !txnPattern.MatchString(d.TransactionID) {
		t.Errorf("unexpected transaction id %q", d.TransactionID)
	}
	if d.Status != domain.DonationSuccess {
		t.Errorf("expected success, got %s", d.Status)
	}

	msgs, _ := store.ListMessages(ctx, domain.MessageFilter{UserEmail: "donor@x.org"})
	if len(msgs) != 1 || msgs[0].Title != "Payment Confirmed" || msgs[0].MessageBy != officer.Email {
		t.Errorf("expected acknowledgment, got %+v", msgs)
	}
}

func TestRecordDonation_AcknowledgmentFailureKeepsDonation(t *testing.T) {
	store := newFaultyStore()
	store.failCreateMessage = true
	svc := service.NewDonationService(store, store, observability.NewMetrics(), zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Record(ctx, officer, "donor@x.org", domain.CategoryZakat, dec(10), domain.PaymentCash); err != nil {
		t.Fatalf("expected donation to succeed, got %v", err)
	}
	rows, _ := svc.List(ctx, domain.DateRange{})
	if len(rows) != 1 {
		t.Errorf("expected 1 donation, got %d", len(rows))
	}
}

func TestRecordDonation_Validation(t *testing.T) {
	svc := service.NewDonationService(newFaultyStore(), newFaultyStore(), observability.NewMetrics(), zap.NewNop())

	cases := []struct {
		name   string
		email  string
		cat    domain.CategoryID
		amount int64
		method string
		field  string
	}{
		{"bad email", "nope", domain.CategoryZakat, 10, domain.PaymentCash, "user_email"},
		{"bad category", "d@x.org", "misc", 10, domain.PaymentCash, "category"},
		{"zero amount", "d@x.org", domain.CategoryZakat, 0, domain.PaymentCash, "amount"},
		{"bad method", "d@x.org", domain.CategoryZakat, 10, "Cheque", "payment_method"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), officer, tc.email, tc.cat, dec(tc.amount), tc.method)
			var ve *domain.ErrValidation
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("expected ErrValidation on %s, got %v", tc.field, err)
			}
		})
	}
}

func TestSendMessage(t *testing.T) {
	store := newFaultyStore()
	svc := service.NewMessageService(store, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Send(ctx, officer, "donor@x.org", "Thanks", "Much appreciated"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Send(ctx, officer, "donor@x.org", "", "body"); err == nil {
		t.Error("expected validation error for blank title")
	}

	sent, _ := svc.ListSent(ctx, officer)
	if len(sent) != 1 {
		t.Errorf("expected 1 sent message, got %d", len(sent))
	}
}
