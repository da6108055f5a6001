package domain

import "github.com/shopspring/decimal"

// ============================================================
// Dashboard summaries
// ============================================================

// OfficerDashboard summarises the finance officer's activity.
type OfficerDashboard struct {
	TotalDonations  decimal.Decimal `json:"totalDonations"`
	DonationCount   int             `json:"donationCount"`
	MessagesSent    int             `json:"messagesSent"`
	ReportsCreated  int             `json:"reportsCreated"`
	RecentDonations []Donation      `json:"recentDonations"`
}

// AdminDashboard summarises what awaits the finance administrator.
type AdminDashboard struct {
	ReportsReceived  int `json:"reportsReceived"`
	PendingRequests  int `json:"pendingRequests"`
	ApprovedRequests int `json:"approvedRequests"`
	RejectedRequests int `json:"rejectedRequests"`
	ExternalShares   int `json:"externalShares"`
}

// ManagerDashboard summarises the program manager's funds.
type ManagerDashboard struct {
	TotalRequested      decimal.Decimal `json:"totalRequested"`
	TotalApproved       decimal.Decimal `json:"totalApproved"`
	PendingRequests     int             `json:"pendingRequests"`
	TotalDistributed    decimal.Decimal `json:"totalDistributed"`
	DistributionCount   int             `json:"distributionCount"`
	RecentDistributions []Distribution  `json:"recentDistributions"`
}
