package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Report snapshots
// ============================================================

// Report is a frozen aggregate of donations.
type Report struct {
	ID                  string                         `json:"id"`
	Title               string                         `json:"title"`
	TotalDonations      decimal.Decimal                `json:"totalDonations"`
	DonationsByCategory map[CategoryID]decimal.Decimal `json:"donationsByCategory"`
	TransactionCount    int                            `json:"transactionCount"`
	CreatedBy           string                         `json:"createdBy"`
	SharedWith          []Role                         `json:"sharedWith"`
	Periods             ReportPeriod                   `json:"periods"`
	CreatedAt           time.Time                      `json:"created_at"`
}

// FundReport is a frozen aggregate of a manager's fund activity.
type FundReport struct {
	ID               string                                `json:"id"`
	Title            string                                `json:"title"`
	TotalFunds       decimal.Decimal                       `json:"totalFunds"`
	TotalDistributed decimal.Decimal                       `json:"totalDistributed"`
	FundsByCategory  map[CategoryID]decimal.Decimal        `json:"FundsByCategory"`
	FundsByStatus    map[FundRequestStatus]decimal.Decimal `json:"FundsByStatus"`
	TransactionCount int                                   `json:"transactionCount"`
	CreatedBy        string                                `json:"createdBy"`
	SharedWith       []Role                                `json:"sharedWith"`
	Periods          ReportPeriod                          `json:"periods"`
	CreatedAt        time.Time                             `json:"created_at"`
}

// ReportFilter selects report snapshots. Zero fields are ignored.
type ReportFilter struct {
	CreatedBy  string
	SharedWith Role
}

func (f ReportFilter) matches(createdBy string, sharedWith []Role) bool {
	if f.CreatedBy != "" && createdBy != f.CreatedBy {
		return false
	}
	if f.SharedWith != "" && !containsRole(sharedWith, f.SharedWith) {
		return false
	}
	return true
}

// MatchesReport reports whether r satisfies the filter.
func (f ReportFilter) MatchesReport(r *Report) bool {
	return f.matches(r.CreatedBy, r.SharedWith)
}

// MatchesFundReport reports whether r satisfies the filter.
func (f ReportFilter) MatchesFundReport(r *FundReport) bool {
	return f.matches(r.CreatedBy, r.SharedWith)
}

// GenerateReportRequest is the body of the report generation endpoints.
type GenerateReportRequest struct {
	Title string `json:"title" validate:"required"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}

// ============================================================
// External sharing
// ============================================================

// ShareTarget is an outside party a report can be shared with.
type ShareTarget string

const (
	ShareAuditor    ShareTarget = "auditor"
	ShareGovernment ShareTarget = "government"
)

// ValidShareTarget reports whether t is an accepted external target.
func ValidShareTarget(t ShareTarget) bool {
	return t == ShareAuditor || t == ShareGovernment
}

// ExternalReport records a report shared outside the organisation.
type ExternalReport struct {
	ID        string      `json:"id"`
	ReportID  string      `json:"reportId"`
	Notes     string      `json:"notes"`
	SharedTo  ShareTarget `json:"sharedTo"`
	SharedBy  string      `json:"sharedBy"`
	CreatedAt time.Time   `json:"created_at"`
}

// ShareReportRequest is the body of POST /v1/admin/shares.
type ShareReportRequest struct {
	ReportID string      `json:"reportId" validate:"required"`
	SharedTo ShareTarget `json:"sharedTo" validate:"required,oneof=auditor government"`
	Notes    string      `json:"notes"`
}

func containsRole(rs []Role, r Role) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}
