package handler

import (
	"net/http"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Program Manager (/v1/manager)
// ============================================================

func managerDashboardHandler(dashboards *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/manager/dashboard")
		defer span.End()

		d, err := dashboards.Manager(ctx, IdentityFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func listOwnFundRequestsHandler(funds *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/manager/fund-requests")
		defer span.End()

		rows, err := funds.ListOwn(ctx, IdentityFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func listApprovedFundRequestsHandler(funds *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/manager/fund-requests/approved")
		defer span.End()

		rows, err := funds.ListApproved(ctx, IdentityFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func createFundRequestHandler(funds *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/manager/fund-requests")
		defer span.End()

		var req domain.CreateFundRequestRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		fr, err := funds.Create(ctx, IdentityFromContext(ctx), req.Amount, req.Category, req.Reason)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("fund_request.id", fr.ID))
		writeJSON(w, http.StatusCreated, fr)
	}
}

func listDistributionsHandler(distributions *service.DistributionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/manager/distributions")
		defer span.End()

		rows, err := distributions.List(ctx, IdentityFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func distributeHandler(distributions *service.DistributionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/manager/distributions")
		defer span.End()

		var req domain.DistributeRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("fund_request.id", req.FundRequestID))

		d, err := distributions.Distribute(ctx, IdentityFromContext(ctx), req.FundRequestID, req.Beneficiaries)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, d)
	}
}

func listOwnFundReportsHandler(reports *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/manager/reports")
		defer span.End()

		rows, err := reports.ListOwnFundReports(ctx, IdentityFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func generateFundReportHandler(reports *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/manager/reports")
		defer span.End()

		var req domain.GenerateReportRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		rng, err := domain.ParseDateRange(req.From, req.To)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		report, err := reports.GenerateFundReport(ctx, IdentityFromContext(ctx), req.Title, rng)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, report)
	}
}
