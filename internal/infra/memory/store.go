// Package memory implements the record-store, identity and file-storage
// ports in process. It backs tests and local runs without Supabase.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/boddenberg/funds-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

// Store keeps every collection in maps guarded by one RWMutex.
type Store struct {
	mu              sync.RWMutex
	funds           map[string]domain.FundRequest
	distributions   []domain.Distribution
	donations       []domain.Donation
	reports         map[string]domain.Report
	fundReports     []domain.FundReport
	externalReports []domain.ExternalReport
	users           map[string]domain.User
	messages        []domain.Message
	documents       []domain.Document
}

func New() *Store {
	return &Store{
		funds:   make(map[string]domain.FundRequest),
		reports: make(map[string]domain.Report),
		users:   make(map[string]domain.User),
	}
}

// Ping reports whether the store can serve requests.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// ============================================================
// Fund requests
// ============================================================

func (s *Store) CreateFundRequest(ctx context.Context, fr *domain.FundRequest) (*domain.FundRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.funds[fr.ID]; ok {
		return nil, &domain.ErrConflict{Message: "fund request already exists: " + fr.ID}
	}
	s.funds[fr.ID] = *fr
	out := *fr
	return &out, nil
}

func (s *Store) GetFundRequest(ctx context.Context, id string) (*domain.FundRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fr, ok := s.funds[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "fund request", ID: id}
	}
	return &fr, nil
}

func (s *Store) ListFundRequests(ctx context.Context, filter domain.FundRequestFilter) ([]domain.FundRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.FundRequest{}
	for _, fr := range s.funds {
		if filter.Matches(&fr) {
			out = append(out, fr)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateFundRequest(ctx context.Context, id string, updates map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fr, ok := s.funds[id]
	if !ok {
		return &domain.ErrNotFound{Resource: "fund request", ID: id}
	}
	if err := patch(&fr, updates); err != nil {
		return &domain.ErrWrite{Collection: "funds", Err: err}
	}
	s.funds[id] = fr
	return nil
}

func (s *Store) SwapRemainingAmount(ctx context.Context, id string, expected, next decimal.Decimal) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fr, ok := s.funds[id]
	if !ok || !fr.RemainingAmount.Equal(expected) {
		return false, nil
	}
	fr.RemainingAmount = next
	s.funds[id] = fr
	return true, nil
}

// ============================================================
// Distributions, donations, messages, documents
// ============================================================

func (s *Store) CreateDistribution(ctx context.Context, d *domain.Distribution) (*domain.Distribution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := *d
	out.Beneficiaries = append([]domain.Beneficiary(nil), d.Beneficiaries...)
	s.mu.Lock()
	s.distributions = append(s.distributions, out)
	s.mu.Unlock()
	return &out, nil
}

func (s *Store) ListDistributions(ctx context.Context, filter domain.DistributionFilter) ([]domain.Distribution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Distribution{}
	for i := len(s.distributions) - 1; i >= 0; i-- {
		if d := s.distributions[i]; filter.Matches(&d) {
			d.Beneficiaries = append([]domain.Beneficiary(nil), d.Beneficiaries...)
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) CreateDonation(ctx context.Context, d *domain.Donation) (*domain.Donation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.donations {
		if existing.TransactionID == d.TransactionID {
			return nil, &domain.ErrConflict{Message: "transaction id already recorded"}
		}
	}
	s.donations = append(s.donations, *d)
	out := *d
	return &out, nil
}

func (s *Store) ListDonations(ctx context.Context, filter domain.DonationFilter) ([]domain.Donation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Donation{}
	for i := len(s.donations) - 1; i >= 0; i-- {
		if d := s.donations[i]; filter.Matches(&d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) CreateMessage(ctx context.Context, m *domain.Message) (*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.messages = append(s.messages, *m)
	s.mu.Unlock()
	out := *m
	return &out, nil
}

func (s *Store) ListMessages(ctx context.Context, filter domain.MessageFilter) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Message{}
	for i := len(s.messages) - 1; i >= 0; i-- {
		if m := s.messages[i]; filter.Matches(&m) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) CreateDocument(ctx context.Context, d *domain.Document) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := *d
	out.SharedWith = append([]domain.Role(nil), d.SharedWith...)
	s.mu.Lock()
	s.documents = append(s.documents, out)
	s.mu.Unlock()
	return &out, nil
}

func (s *Store) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Document{}
	for i := len(s.documents) - 1; i >= 0; i-- {
		if d := s.documents[i]; filter.Matches(&d) {
			out = append(out, d)
		}
	}
	return out, nil
}

// ============================================================
// Reports
// ============================================================

func (s *Store) CreateReport(ctx context.Context, r *domain.Report) (*domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = *r
	out := *r
	return &out, nil
}

func (s *Store) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "report", ID: id}
	}
	return &r, nil
}

func (s *Store) ListReports(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Report{}
	for _, r := range s.reports {
		if filter.MatchesReport(&r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateFundReport(ctx context.Context, r *domain.FundReport) (*domain.FundReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.fundReports = append(s.fundReports, *r)
	s.mu.Unlock()
	out := *r
	return &out, nil
}

func (s *Store) ListFundReports(ctx context.Context, filter domain.ReportFilter) ([]domain.FundReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.FundReport{}
	for i := len(s.fundReports) - 1; i >= 0; i-- {
		if r := s.fundReports[i]; filter.MatchesFundReport(&r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) CreateExternalReport(ctx context.Context, r *domain.ExternalReport) (*domain.ExternalReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.externalReports = append(s.externalReports, *r)
	s.mu.Unlock()
	out := *r
	return &out, nil
}

func (s *Store) ListExternalReports(ctx context.Context) ([]domain.ExternalReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ExternalReport, 0, len(s.externalReports))
	for i := len(s.externalReports) - 1; i >= 0; i-- {
		out = append(out, s.externalReports[i])
	}
	return out, nil
}

// ============================================================
// Users
// ============================================================

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: email}
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, &domain.ErrConflict{Message: "user already exists: " + u.Email}
		}
	}
	s.users[u.ID] = *u
	out := *u
	return &out, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, updates map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return &domain.ErrNotFound{Resource: "user", ID: id}
	}
	if err := patch(&u, updates); err != nil {
		return &domain.ErrWrite{Collection: "users", Err: err}
	}
	s.users[id] = u
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return &domain.ErrNotFound{Resource: "user", ID: id}
	}
	delete(s.users, id)
	return nil
}

// patch merges column updates into a record through its JSON form, the
// same shape PostgREST applies them to.
func patch(record any, updates map[string]any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fields := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return err
	}
	for k, v := range updates {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}
	return json.Unmarshal(merged, record)
}
