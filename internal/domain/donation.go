package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DonationStatus is the payment outcome of a donation.
type DonationStatus string

const (
	DonationSuccess DonationStatus = "success"
	DonationPending DonationStatus = "pending"
	DonationFailed  DonationStatus = "failed"
)

// Donation is recorded once by a finance officer and never changes.
type Donation struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transactionId"`
	UserEmail     string          `json:"user_email"`
	Category      CategoryID      `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        DonationStatus  `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DonationFilter selects donations.
type DonationFilter struct {
	Range DateRange
}

// Matches reports whether d satisfies the filter.
func (f DonationFilter) Matches(d *Donation) bool {
	return f.Range.Contains(d.CreatedAt)
}

// RecordDonationRequest is the body of POST /v1/officer/donations.
type RecordDonationRequest struct {
	UserEmail     string          `json:"user_email" validate:"required,email"`
	Category      CategoryID      `json:"category" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required"`
}
