package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/handler"
	"github.com/boddenberg/funds-bfa-go/internal/infra/cache"
	"github.com/boddenberg/funds-bfa-go/internal/infra/memory"
	"github.com/boddenberg/funds-bfa-go/internal/infra/observability"
	"github.com/boddenberg/funds-bfa-go/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	store := memory.New()
	if err := store.SeedDefaultUsers(context.Background()); err != nil {
		t.Fatal(err)
	}
	dashCache := cache.New[any](time.Minute)
	revoked := cache.New[bool](time.Minute)
	t.Cleanup(dashCache.Close)
	t.Cleanup(revoked.Close)

	files := memory.NewFiles("http://localhost/files")
	svc := handler.Services{
		Auth:          service.NewAuthService(store, memory.NewIdentities(), revoked, "test-secret", time.Hour, logger),
		Funds:         service.NewFundService(store, false, metrics, logger),
		Distributions: service.NewDistributionService(store, store, 3, metrics, logger),
		Reports:       service.NewReportService(store, store, store, store, metrics, logger),
		Donations:     service.NewDonationService(store, store, metrics, logger),
		Messages:      service.NewMessageService(store, logger),
		Documents:     service.NewDocumentService(store, files, "admin-images", logger),
		Shares:        service.NewShareService(store, logger),
		Users:         service.NewUserService(store, logger),
		Dashboards:    service.NewDashboardService(store, dashCache, metrics, logger),
		Backend:       store,
		Files:         files,
	}
	return handler.NewRouter(svc, []string{"http://localhost:5173"}, metrics, logger)
}

func do(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, router http.Handler, email string, role domain.Role) string {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/v1/auth/login", "", map[string]any{
		"email":       email,
		"password":    memory.DefaultPassword,
		"role":        role,
		"displayName": "Test User",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", email, rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	return resp.AccessToken
}

func TestOperationalEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/ping", "/v1/catalog"} {
		rec := do(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestCatalog(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/v1/catalog", "", nil)
	var catalog domain.Catalog
	if err := json.NewDecoder(rec.Body).Decode(&catalog); err != nil {
		t.Fatal(err)
	}
	if len(catalog.Categories) != 6 || len(catalog.Roles) != 3 {
		t.Errorf("unexpected catalog: %+v", catalog)
	}
}

func TestAuthGuards(t *testing.T) {
	router := newTestRouter(t)

	if rec := do(t, router, http.MethodGet, "/v1/officer/dashboard", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: expected 401, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/v1/officer/dashboard", "not-a-jwt", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", rec.Code)
	}

	officerToken := login(t, router, "officer@alkhidmat.org", domain.RoleFinanceOfficer)
	if rec := do(t, router, http.MethodGet, "/v1/admin/dashboard", officerToken, nil); rec.Code != http.StatusForbidden {
		t.Errorf("wrong role: expected 403, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/v1/officer/dashboard", officerToken, nil); rec.Code != http.StatusOK {
		t.Errorf("own area: expected 200, got %d", rec.Code)
	}

	if rec := do(t, router, http.MethodPost, "/v1/auth/logout", officerToken, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/v1/auth/me", officerToken, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("revoked token: expected 401, got %d", rec.Code)
	}
}

func TestLogin_RoleMismatch(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/v1/auth/login", "", map[string]any{
		"email": "officer@alkhidmat.org", "password": memory.DefaultPassword,
		"role": domain.RoleProgramManager, "displayName": "X",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/v1/auth/login", "", map[string]any{"email": "nope"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestFundLifecycle(t *testing.T) {
	router := newTestRouter(t)
	managerToken := login(t, router, "manager@alkhidmat.org", domain.RoleProgramManager)
	adminToken := login(t, router, "admin@alkhidmat.org", domain.RoleFinanceAdministrator)

	rec := do(t, router, http.MethodPost, "/v1/manager/fund-requests", managerToken, map[string]any{
		"amount": 1000, "category": "zakat", "reason": "winter relief",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var fr domain.FundRequest
	json.NewDecoder(rec.Body).Decode(&fr)

	beneficiaries := func(amount int) map[string]any {
		return map[string]any{
			"fundRequestId": fr.ID,
			"beneficiaries": []map[string]any{{"name": "Family A", "amount": amount}},
		}
	}

	if rec := do(t, router, http.MethodPost, "/v1/manager/distributions", managerToken, beneficiaries(100)); rec.Code != http.StatusConflict {
		t.Errorf("distribute before approval: expected 409, got %d", rec.Code)
	}

	// Warm the dashboard cache so the next write has to invalidate it.
	do(t, router, http.MethodGet, "/v1/manager/dashboard", managerToken, nil)

	if rec := do(t, router, http.MethodPost, "/v1/admin/fund-requests/"+fr.ID+"/approve", adminToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, router, http.MethodPost, "/v1/admin/fund-requests/missing/approve", adminToken, nil); rec.Code != http.StatusNotFound {
		t.Errorf("approve missing: expected 404, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/v1/admin/fund-requests/"+fr.ID+"/reject", adminToken, map[string]any{"reason": ""}); rec.Code != http.StatusBadRequest {
		t.Errorf("reject without reason: expected 400, got %d", rec.Code)
	}

	if rec := do(t, router, http.MethodPost, "/v1/manager/distributions", managerToken, beneficiaries(400)); rec.Code != http.StatusCreated {
		t.Fatalf("distribute: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, router, http.MethodPost, "/v1/manager/distributions", managerToken, beneficiaries(700)); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("overdraw: expected 422, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/v1/manager/fund-requests/approved", managerToken, nil)
	var approved []domain.FundRequest
	json.NewDecoder(rec.Body).Decode(&approved)
	if len(approved) != 1 || !approved[0].RemainingAmount.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected remaining 600, got %+v", approved)
	}

	rec = do(t, router, http.MethodGet, "/v1/manager/dashboard", managerToken, nil)
	var dash domain.ManagerDashboard
	json.NewDecoder(rec.Body).Decode(&dash)
	if !dash.TotalDistributed.Equal(decimal.NewFromInt(400)) || !dash.TotalApproved.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("unexpected dashboard: %+v", dash)
	}

	rec = do(t, router, http.MethodPost, "/v1/manager/reports", managerToken, map[string]any{"title": "Winter"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("fund report: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	officerToken := login(t, router, "officer@alkhidmat.org", domain.RoleFinanceOfficer)
	rec = do(t, router, http.MethodGet, "/v1/officer/fund-reports", officerToken, nil)
	var shared []domain.FundReport
	json.NewDecoder(rec.Body).Decode(&shared)
	if len(shared) != 1 || !shared[0].TotalDistributed.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected fund report shared with officer, got %+v", shared)
	}
}

func TestDonationReportFlow(t *testing.T) {
	router := newTestRouter(t)
	officerToken := login(t, router, "officer@alkhidmat.org", domain.RoleFinanceOfficer)
	adminToken := login(t, router, "admin@alkhidmat.org", domain.RoleFinanceAdministrator)

	for _, d := range []map[string]any{
		{"user_email": "a@x.org", "category": "zakat", "amount": 100, "payment_method": "Cash"},
		{"user_email": "b@x.org", "category": "education", "amount": 50, "payment_method": "Bank Transfer"},
	} {
		if rec := do(t, router, http.MethodPost, "/v1/officer/donations", officerToken, d); rec.Code != http.StatusCreated {
			t.Fatalf("donation: expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := do(t, router, http.MethodPost, "/v1/officer/reports", officerToken, map[string]any{"title": "March"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("report: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var report domain.Report
	json.NewDecoder(rec.Body).Decode(&report)
	if !report.TotalDonations.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected total 150, got %s", report.TotalDonations)
	}

	rec = do(t, router, http.MethodGet, "/v1/admin/reports", adminToken, nil)
	var received []domain.Report
	json.NewDecoder(rec.Body).Decode(&received)
	if len(received) != 1 {
		t.Fatalf("expected admin to see 1 report, got %d", len(received))
	}

	rec = do(t, router, http.MethodPost, "/v1/admin/shares", adminToken, map[string]any{"reportId": report.ID, "sharedTo": "auditor"})
	if rec.Code != http.StatusCreated {
		t.Errorf("share: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, router, http.MethodPost, "/v1/admin/shares", adminToken, map[string]any{"reportId": report.ID, "sharedTo": "press"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad target: expected 400, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/v1/officer/donations?from=2000-01-01&to=not-a-date", officerToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad range: expected 400, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/v1/officer/messages", officerToken, nil)
	var msgs []domain.Message
	json.NewDecoder(rec.Body).Decode(&msgs)
	if len(msgs) != 2 {
		t.Errorf("expected 2 acknowledgments, got %d", len(msgs))
	}
}

func TestUserManagement(t *testing.T) {
	router := newTestRouter(t)
	adminToken := login(t, router, "admin@alkhidmat.org", domain.RoleFinanceAdministrator)

	rec := do(t, router, http.MethodPost, "/v1/admin/users", adminToken, map[string]any{
		"email": "new@alkhidmat.org", "password": "secret1", "role": domain.RoleProgramManager,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var u domain.User
	json.NewDecoder(rec.Body).Decode(&u)

	rec = do(t, router, http.MethodPost, "/v1/admin/users", adminToken, map[string]any{
		"email": "new@alkhidmat.org", "password": "secret1", "role": domain.RoleProgramManager,
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate: expected 409, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/v1/admin/users", adminToken, nil)
	var users []domain.User
	json.NewDecoder(rec.Body).Decode(&users)
	if len(users) != 3 {
		t.Errorf("expected 3 users besides the admin, got %d", len(users))
	}

	if rec := do(t, router, http.MethodDelete, "/v1/admin/users/"+u.ID, adminToken, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodDelete, "/v1/admin/users/"+u.ID, adminToken, nil); rec.Code != http.StatusNotFound {
		t.Errorf("delete again: expected 404, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/v1/admin/metrics", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("metrics: expected 200, got %d", rec.Code)
	}
}

func TestShareDocument(t *testing.T) {
	router := newTestRouter(t)
	adminToken := login(t, router, "admin@alkhidmat.org", domain.RoleFinanceAdministrator)
	officerToken := login(t, router, "officer@alkhidmat.org", domain.RoleFinanceOfficer)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("subject", "Receipts")
	mw.WriteField("message", "For the audit")
	mw.WriteField("sharedWith", "Finance Officer,Program Manager")
	fw, _ := mw.CreateFormFile("file", "receipt.png")
	fw.Write([]byte("png-bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("share: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var doc domain.Document
	json.NewDecoder(rec.Body).Decode(&doc)

	rec = do(t, router, http.MethodGet, strings.TrimPrefix(doc.ImageURL, "http://localhost"), "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "png-bytes" {
		t.Errorf("download: expected 200 with the upload, got %d %q", rec.Code, rec.Body.String())
	}
	if rec := do(t, router, http.MethodGet, "/files/admin-images/missing.png", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing file: expected 404, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/v1/documents", officerToken, nil)
	var inbox domain.DocumentInbox
	json.NewDecoder(rec.Body).Decode(&inbox)
	if len(inbox.SharedToYou) != 1 || len(inbox.SharedByYou) != 0 {
		t.Errorf("unexpected officer inbox: %+v", inbox)
	}
}

func TestDistribute_FractionalAmounts(t *testing.T) {
	router := newTestRouter(t)
	managerToken := login(t, router, "manager@alkhidmat.org", domain.RoleProgramManager)
	adminToken := login(t, router, "admin@alkhidmat.org", domain.RoleFinanceAdministrator)

	rec := do(t, router, http.MethodPost, "/v1/manager/fund-requests", managerToken,
		json.RawMessage(`{"amount": 0.3, "category": "health", "reason": "clinic supplies"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var fr domain.FundRequest
	json.NewDecoder(rec.Body).Decode(&fr)

	if rec := do(t, router, http.MethodPost, "/v1/admin/fund-requests/"+fr.ID+"/approve", adminToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/v1/manager/distributions", managerToken, json.RawMessage(
		`{"fundRequestId": "`+fr.ID+`", "beneficiaries": [{"name": "a", "amount": 0.1}, {"name": "b", "amount": 0.2}]}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("distribute: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodGet, "/v1/manager/fund-requests/approved", managerToken, nil)
	var rows []map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatal(err)
	}
	var remaining string
	for _, row := range rows {
		if string(row["id"]) == `"`+fr.ID+`"` {
			remaining = string(row["remainingAmount"])
		}
	}
	if remaining != "0" {
		t.Errorf("expected remainingAmount 0 as a JSON number, got %q", remaining)
	}

	rec = do(t, router, http.MethodPost, "/v1/manager/distributions", managerToken, json.RawMessage(
		`{"fundRequestId": "`+fr.ID+`", "beneficiaries": [{"name": "c", "amount": 0.01}]}`))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("exhausted request: expected 422, got %d", rec.Code)
	}
}
