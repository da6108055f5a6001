package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/funds-bfa-go/internal/config"
	"github.com/boddenberg/funds-bfa-go/internal/handler"
	"github.com/boddenberg/funds-bfa-go/internal/infra/cache"
	"github.com/boddenberg/funds-bfa-go/internal/infra/memory"
	"github.com/boddenberg/funds-bfa-go/internal/infra/observability"
	"github.com/boddenberg/funds-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/funds-bfa-go/internal/infra/supabase"
	"github.com/boddenberg/funds-bfa-go/internal/port"
	"github.com/boddenberg/funds-bfa-go/internal/service"

	"go.uber.org/zap"
)

// backend is what a record-store adapter has to provide.
type backend interface {
	port.RecordStore
	handler.Pinger
}

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel, "funds-bfa")
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_supabase", cfg.UseSupabase),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Bool("strict_transitions", cfg.StrictTransitions),
		zap.Int("balance_cas_attempts", cfg.BalanceCASAttempts),
	)

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "funds-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	dashboardCache := cache.New[any](cfg.CacheTTL)
	defer dashboardCache.Close()
	revokedTokens := cache.New[bool](cfg.JWTAccessTTL)
	defer revokedTokens.Close()

	// --- Backend ---
	var (
		store      backend
		identities port.IdentityProvider
		files      port.FileStorage
		objects    handler.ObjectReader
	)

	if cfg.UseSupabase && cfg.SupabaseURL != "" {
		logger.Info("using Supabase as data backend",
			zap.String("supabase_url", cfg.SupabaseURL),
		)
		guard := resilience.NewGuard(resilience.NewCircuitBreaker("supabase"), resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		})
		client := supabase.NewClient(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			guard,
			metrics,
			logger,
		)
		store, identities, files = client, client, client
	} else {
		logger.Warn("Supabase not configured, using in-memory backend")
		mem := memory.New()
		if cfg.DevSeedUsers {
			if err := mem.SeedDefaultUsers(context.Background()); err != nil {
				logger.Fatal("failed to seed users", zap.Error(err))
			}
			logger.Info("seeded development accounts", zap.String("password", memory.DefaultPassword))
		}
		store = mem
		identities = memory.NewIdentities()
		memFiles := memory.NewFiles(fmt.Sprintf("http://localhost:%d/files", cfg.Port))
		files, objects = memFiles, memFiles
	}

	// --- Services ---
	dashboards := service.NewDashboardService(store, dashboardCache, metrics, logger)
	svc := handler.Services{
		Auth:          service.NewAuthService(store, identities, revokedTokens, cfg.JWTSecret, cfg.JWTAccessTTL, logger),
		Funds:         service.NewFundService(store, cfg.StrictTransitions, metrics, logger),
		Distributions: service.NewDistributionService(store, store, cfg.BalanceCASAttempts, metrics, logger),
		Reports:       service.NewReportService(store, store, store, store, metrics, logger),
		Donations:     service.NewDonationService(store, store, metrics, logger),
		Messages:      service.NewMessageService(store, logger),
		Documents:     service.NewDocumentService(store, files, cfg.StorageBucket, logger),
		Shares:        service.NewShareService(store, logger),
		Users:         service.NewUserService(store, logger),
		Dashboards:    dashboards,
		Backend:       store,
		Files:         objects,
	}

	// --- Router ---
	router := handler.NewRouter(svc, cfg.CORSAllowedOrigins, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
