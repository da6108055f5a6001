package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Fund Requests
// ============================================================

// FundRequestStatus is the lifecycle state of a fund request.
type FundRequestStatus string

const (
	FundRequestPending  FundRequestStatus = "pending"
	FundRequestApproved FundRequestStatus = "approved"
	FundRequestRejected FundRequestStatus = "rejected"
)

// FundRequest is a program manager's ask for money in a category.
type FundRequest struct {
	ID              string            `json:"id"`
	Amount          decimal.Decimal   `json:"amount"`
	Category        CategoryID        `json:"category"`
	Reason          string            `json:"reason"`
	Status          FundRequestStatus `json:"status"`
	RequestedBy     string            `json:"requestedBy"`
	CreatedAt       time.Time         `json:"created_at"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
	RemainingAmount decimal.Decimal   `json:"remainingAmount"`
	ApprovedAt      *time.Time        `json:"approvedAt,omitempty"`
}

// FundRequestFilter selects fund requests. Zero fields are ignored.
type FundRequestFilter struct {
	RequestedBy string
	Status      FundRequestStatus
	Range       DateRange
}

// Matches reports whether fr satisfies the filter.
func (f FundRequestFilter) Matches(fr *FundRequest) bool {
	if f.RequestedBy != "" && fr.RequestedBy != f.RequestedBy {
		return false
	}
	if f.Status != "" && fr.Status != f.Status {
		return false
	}
	return f.Range.Contains(fr.CreatedAt)
}

// CreateFundRequestRequest is the body of POST /v1/manager/fund-requests.
type CreateFundRequestRequest struct {
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Category CategoryID      `json:"category" validate:"required"`
	Reason   string          `json:"reason" validate:"required"`
}

// RejectFundRequestRequest is the body of POST .../fund-requests/{id}/reject.
type RejectFundRequestRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// FundRequestQueue splits requests the way the approval page shows them.
type FundRequestQueue struct {
	Pending   []FundRequest `json:"pending"`
	Processed []FundRequest `json:"processed"`
}

// ============================================================
// Distributions
// ============================================================

// Beneficiary receives part of a distribution.
type Beneficiary struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Distribution allocates part of an approved request's balance.
type Distribution struct {
	ID            string        `json:"id"`
	FundRequestID string        `json:"fundRequestId"`
	Beneficiaries []Beneficiary `json:"beneficiaries"`
	Category      CategoryID    `json:"category"`
	DistributedBy string        `json:"distributedBy"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Total sums the beneficiary amounts.
func (d *Distribution) Total() decimal.Decimal {
	return SumBeneficiaries(d.Beneficiaries)
}

// SumBeneficiaries adds up beneficiary amounts.
func SumBeneficiaries(bs []Beneficiary) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bs {
		total = total.Add(b.Amount)
	}
	return total
}

// DistributionFilter selects distributions. Zero fields are ignored.
type DistributionFilter struct {
	ID            string
	DistributedBy string
	FundRequestID string
	Range         DateRange
}

// Matches reports whether d satisfies the filter.
func (f DistributionFilter) Matches(d *Distribution) bool {
	if f.ID != "" && d.ID != f.ID {
		return false
	}
	if f.DistributedBy != "" && d.DistributedBy != f.DistributedBy {
		return false
	}
	if f.FundRequestID != "" && d.FundRequestID != f.FundRequestID {
		return false
	}
	return f.Range.Contains(d.CreatedAt)
}

// DistributeRequest is the body of POST /v1/manager/distributions.
type DistributeRequest struct {
	FundRequestID string        `json:"fundRequestId" validate:"required"`
	Beneficiaries []Beneficiary `json:"beneficiaries" validate:"required,min=1"`
}
