// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"io"

	"github.com/boddenberg/funds-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// FundRequestStore persists fund requests.
type FundRequestStore interface {
	CreateFundRequest(ctx context.Context, fr *domain.FundRequest) (*domain.FundRequest, error)
	GetFundRequest(ctx context.Context, id string) (*domain.FundRequest, error)
	ListFundRequests(ctx context.Context, filter domain.FundRequestFilter) ([]domain.FundRequest, error)
	// UpdateFundRequest applies a partial update; ErrNotFound when no row matches.
	UpdateFundRequest(ctx context.Context, id string, updates map[string]any) error
	// SwapRemainingAmount sets remainingAmount to next only if it still
	// equals expected. It reports whether the swap happened.
	SwapRemainingAmount(ctx context.Context, id string, expected, next decimal.Decimal) (bool, error)
}

// DistributionStore persists distributions. Records are append-only.
type DistributionStore interface {
	CreateDistribution(ctx context.Context, d *domain.Distribution) (*domain.Distribution, error)
	ListDistributions(ctx context.Context, filter domain.DistributionFilter) ([]domain.Distribution, error)
}

// DonationStore persists donations. Records are append-only.
type DonationStore interface {
	CreateDonation(ctx context.Context, d *domain.Donation) (*domain.Donation, error)
	ListDonations(ctx context.Context, filter domain.DonationFilter) ([]domain.Donation, error)
}

// ReportStore persists report snapshots and their external shares.
type ReportStore interface {
	CreateReport(ctx context.Context, r *domain.Report) (*domain.Report, error)
	GetReport(ctx context.Context, id string) (*domain.Report, error)
	ListReports(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error)

	CreateFundReport(ctx context.Context, r *domain.FundReport) (*domain.FundReport, error)
	ListFundReports(ctx context.Context, filter domain.ReportFilter) ([]domain.FundReport, error)

	CreateExternalReport(ctx context.Context, r *domain.ExternalReport) (*domain.ExternalReport, error)
	ListExternalReports(ctx context.Context) ([]domain.ExternalReport, error)
}

// UserStore persists dashboard accounts.
type UserStore interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, updates map[string]any) error
	DeleteUser(ctx context.Context, id string) error
}

// MessageStore persists donor acknowledgments.
type MessageStore interface {
	CreateMessage(ctx context.Context, m *domain.Message) (*domain.Message, error)
	ListMessages(ctx context.Context, filter domain.MessageFilter) ([]domain.Message, error)
}

// DocumentStore persists shared document records.
type DocumentStore interface {
	CreateDocument(ctx context.Context, d *domain.Document) (*domain.Document, error)
	ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)
}

// RecordStore groups every collection of the hosted backend.
type RecordStore interface {
	FundRequestStore
	DistributionStore
	DonationStore
	ReportStore
	UserStore
	MessageStore
	DocumentStore
}

// IdentityProvider authenticates dashboard accounts.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*domain.ProviderSession, error)
	SignUp(ctx context.Context, email, password string, meta domain.IdentityMetadata) error
}

// FileStorage keeps uploaded files and exposes them by URL.
type FileStorage interface {
	Upload(ctx context.Context, bucket, name, contentType string, body io.Reader) error
	PublicURL(bucket, name string) string
}
