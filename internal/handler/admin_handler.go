package handler

import (
	"net/http"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Finance Administrator (/v1/admin)
// ============================================================

func adminDashboardHandler(dashboards *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/dashboard")
		defer span.End()

		d, err := dashboards.Admin(ctx, IdentityFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func listSharedReportsHandler(reports *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/reports")
		defer span.End()

		rows, err := reports.ListSharedReports(ctx, domain.RoleFinanceAdministrator)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

// ============================================================
// External shares
// ============================================================

func listSharesHandler(shares *service.ShareService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/shares")
		defer span.End()

		rows, err := shares.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func shareReportHandler(shares *service.ShareService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/shares")
		defer span.End()

		var req domain.ShareReportRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		share, err := shares.Share(ctx, IdentityFromContext(ctx), req.ReportID, req.SharedTo, req.Notes)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, share)
	}
}

// ============================================================
// Fund request approval
// ============================================================

func fundRequestQueueHandler(funds *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/fund-requests")
		defer span.End()

		queue, err := funds.Queue(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, queue)
	}
}

func approveFundRequestHandler(funds *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/fund-requests/{id}/approve")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("fund_request.id", id))

		fr, err := funds.Approve(ctx, IdentityFromContext(ctx), id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, fr)
	}
}

func rejectFundRequestHandler(funds *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/fund-requests/{id}/reject")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("fund_request.id", id))

		var req domain.RejectFundRequestRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		fr, err := funds.Reject(ctx, IdentityFromContext(ctx), id, req.Reason)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, fr)
	}
}

// ============================================================
// Users
// ============================================================

func listUsersHandler(users *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/users")
		defer span.End()

		rows, err := users.List(ctx, IdentityFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func createUserHandler(users *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/users")
		defer span.End()

		var req domain.CreateUserRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		u, err := users.Create(ctx, req.Email, req.Password, req.Role)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

func deleteUserHandler(users *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/users/{id}")
		defer span.End()

		if err := users.Delete(ctx, chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
