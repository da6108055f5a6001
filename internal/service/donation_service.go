package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
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

var donationTracer = otel.Tracer("service/donations")

const txnAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DonationService records donations and acknowledges them to the donor.
type DonationService struct {
	donations port.DonationStore
	messages  port.MessageStore
	metrics   *observability.Metrics
	logger    *zap.Logger
}

func NewDonationService(donations port.DonationStore, messages port.MessageStore, metrics *observability.Metrics, logger *zap.Logger) *DonationService {
	return &DonationService{
		donations: donations,
		messages:  messages,
		metrics:   metrics,
		logger:    logger,
	}
}

// Record stores a successful donation and sends the "Payment Confirmed"
// acknowledgment. A failed acknowledgment does not fail the donation.
func (s *DonationService) Record(ctx context.Context, actor domain.Identity, userEmail string, category domain.CategoryID, amount decimal.Decimal, paymentMethod string) (*domain.Donation, error) {
	ctx, span := donationTracer.Start(ctx, "DonationService.Record")
	defer span.End()

	userEmail = strings.TrimSpace(userEmail)
	if userEmail == "" || !strings.Contains(userEmail, "@") {
		return nil, &domain.ErrValidation{Field: "user_email", Message: "a valid donor email is required"}
	}
	if !domain.ValidCategory(category) {
		return nil, &domain.ErrValidation{Field: "category", Message: "unknown category"}
	}
	if !amount.IsPositive() {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be greater than zero"}
	}
	if !domain.ValidPaymentMethod(paymentMethod) {
		return nil, &domain.ErrValidation{Field: "payment_method", Message: "unsupported payment method"}
	}

	txnID, err := newTransactionID(time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate transaction id: %w", err)
	}

	d, err := s.donations.CreateDonation(ctx, &domain.Donation{
		ID:            uuid.NewString(),
		TransactionID: txnID,
		UserEmail:     userEmail,
		Category:      category,
		Amount:        amount,
		PaymentMethod: paymentMethod,
		Status:        domain.DonationSuccess,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("record donation: %w", err)
	}
	span.SetAttributes(attribute.String("donation.transaction_id", d.TransactionID))

	s.metrics.RecordDonation(category, amount)
	s.logger.Info("donation recorded",
		zap.String("transaction_id", d.TransactionID),
		zap.String("recorded_by", actor.Email),
		zap.String("category", string(category)),
		zap.String("amount", amount.String()),
	)

	s.acknowledge(ctx, actor, d)
	return d, nil
}

func (s *DonationService) acknowledge(ctx context.Context, actor domain.Identity, d *domain.Donation) {
	_, err := s.messages.CreateMessage(ctx, &domain.Message{
		ID:        uuid.NewString(),
		Title:     "Payment Confirmed",
		Message:   fmt.Sprintf("Thank you for your donation of %s towards %s. Transaction ID: %s", d.Amount.StringFixed(2), categoryTitle(d.Category), d.TransactionID),
		UserEmail: d.UserEmail,
		MessageBy: actor.Email,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.metrics.IncrAcknowledgmentError()
		s.logger.Error("failed to store donation acknowledgment",
			zap.String("transaction_id", d.TransactionID),
			zap.Error(err),
		)
	}
}

// List returns donations inside r, newest first.
func (s *DonationService) List(ctx context.Context, r domain.DateRange) ([]domain.Donation, error) {
	ctx, span := donationTracer.Start(ctx, "DonationService.List")
	defer span.End()

	rows, err := s.donations.ListDonations(ctx, domain.DonationFilter{Range: r})
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return rows, nil
}

// newTransactionID returns "TXN" + unix millis + 6 upper-case alphanumerics.
func newTransactionID(now time.Time) (string, error) {
	var b strings.Builder
	b.WriteString("TXN")
	b.WriteString(fmt.Sprintf("%d", now.UnixMilli()))
	max := big.NewInt(int64(len(txnAlphabet)))
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(txnAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func categoryTitle(id domain.CategoryID) string {
	if c, ok := domain.LookupCategory(id); ok {
		return c.Title
	}
	return string(id)
}
