package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/infra/observability"
	"github.com/boddenberg/funds-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Pinger is implemented by the record-store backends.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ObjectReader serves stored files. Only the in-memory backend needs it;
// Supabase serves its own public URLs.
type ObjectReader interface {
	Object(bucket, name string) (data []byte, contentType string, ok bool)
}

// Services bundles what the router serves.
type Services struct {
	Auth          *service.AuthService
	Funds         *service.FundService
	Distributions *service.DistributionService
	Reports       *service.ReportService
	Donations     *service.DonationService
	Messages      *service.MessageService
	Documents     *service.DocumentService
	Shares        *service.ShareService
	Users         *service.UserService
	Dashboards    *service.DashboardService
	Backend       Pinger
	Files         ObjectReader
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc Services, allowedOrigins []string, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(requestMetrics(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc.Backend))
	r.Get("/readyz", readyzHandler(svc.Backend, logger))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	if svc.Files != nil {
		r.Get("/files/{bucket}/*", filesHandler(svc.Files))
	}

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/catalog", catalogHandler())

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authLoginHandler(svc.Auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svc.Auth, logger))
				r.Post("/logout", authLogoutHandler(svc.Auth, logger))
				r.Get("/me", authMeHandler())
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svc.Auth, logger))
			r.Use(invalidateDashboards(svc.Dashboards))

			// =============================================
			// Documents (every role)
			// =============================================
			r.Get("/documents", listDocumentsHandler(svc.Documents, logger))
			r.Post("/documents", shareDocumentHandler(svc.Documents, logger))

			// =============================================
			// Finance Officer
			// =============================================
			r.Route("/officer", func(r chi.Router) {
				r.Use(RequireRole(domain.RoleFinanceOfficer, logger))
				r.Get("/dashboard", officerDashboardHandler(svc.Dashboards, logger))
				r.Get("/donations", listDonationsHandler(svc.Donations, logger))
				r.Post("/donations", recordDonationHandler(svc.Donations, logger))
				r.Get("/messages", listMessagesHandler(svc.Messages, logger))
				r.Post("/messages", sendMessageHandler(svc.Messages, logger))
				r.Get("/reports", listOwnReportsHandler(svc.Reports, logger))
				r.Post("/reports", generateDonationReportHandler(svc.Reports, logger))
				r.Get("/fund-reports", listSharedFundReportsHandler(svc.Reports, logger))
			})

			// =============================================
			// Finance Administrator
			// =============================================
			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireRole(domain.RoleFinanceAdministrator, logger))
				r.Get("/dashboard", adminDashboardHandler(svc.Dashboards, logger))
				r.Get("/reports", listSharedReportsHandler(svc.Reports, logger))
				r.Get("/shares", listSharesHandler(svc.Shares, logger))
				r.Post("/shares", shareReportHandler(svc.Shares, logger))
				r.Get("/fund-requests", fundRequestQueueHandler(svc.Funds, logger))
				r.Post("/fund-requests/{id}/approve", approveFundRequestHandler(svc.Funds, logger))
				r.Post("/fund-requests/{id}/reject", rejectFundRequestHandler(svc.Funds, logger))
				r.Get("/users", listUsersHandler(svc.Users, logger))
				r.Post("/users", createUserHandler(svc.Users, logger))
				r.Delete("/users/{id}", deleteUserHandler(svc.Users, logger))
				r.Get("/metrics", operationsMetricsHandler(metrics))
			})

			// =============================================
			// Program Manager
			// =============================================
			r.Route("/manager", func(r chi.Router) {
				r.Use(RequireRole(domain.RoleProgramManager, logger))
				r.Get("/dashboard", managerDashboardHandler(svc.Dashboards, logger))
				r.Get("/fund-requests", listOwnFundRequestsHandler(svc.Funds, logger))
				r.Post("/fund-requests", createFundRequestHandler(svc.Funds, logger))
				r.Get("/fund-requests/approved", listApprovedFundRequestsHandler(svc.Funds, logger))
				r.Get("/distributions", listDistributionsHandler(svc.Distributions, logger))
				r.Post("/distributions", distributeHandler(svc.Distributions, logger))
				r.Get("/reports", listOwnFundReportsHandler(svc.Reports, logger))
				r.Post("/reports", generateFundReportHandler(svc.Reports, logger))
			})
		})
	})

	return r
}

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler(backend Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "bfa-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if backend != nil {
			start := time.Now()
			err := backend.Ping(r.Context())
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "record-store", Status: status,
				LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler(backend Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if backend != nil {
			if err := backend.Ping(r.Context()); err != nil {
				logger.Warn("readiness check failed", zap.Error(err))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func catalogHandler() http.HandlerFunc {
	catalog := domain.NewCatalog()
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog)
	}
}

func operationsMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
