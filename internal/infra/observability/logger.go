package observability

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates the service logger: JSON on the production base, or
// colorized console at debug level. Every entry carries the service name.
func NewLogger(level, service string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]any{"service": service}
	if level == "warn" || level == "error" {
		lvl, _ := zapcore.ParseLevel(level)
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	if level == "debug" {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return logger
}

type actorKey struct{}

// actor is filled in by the auth middleware further down the chain, after
// the request logger has already put it in the context.
type actor struct {
	mu    sync.Mutex
	email string
	role  string
}

// SetActor records who made the request so the request log line can name
// them. It is a no-op outside ZapLoggerMiddleware.
func SetActor(ctx context.Context, email, role string) {
	if a, ok := ctx.Value(actorKey{}).(*actor); ok {
		a.mu.Lock()
		a.email, a.role = email, role
		a.mu.Unlock()
	}
}

func (a *actor) fields() []zap.Field {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.email == "" {
		return nil
	}
	return []zap.Field{zap.String("actor", a.email), zap.String("actor_role", a.role)}
}

// ZapLoggerMiddleware logs HTTP requests with zap, including the
// authenticated actor when there is one.
// Uses Warn for 4xx, Error for 5xx, Info for 2xx/3xx.
func ZapLoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			who := &actor{}
			r = r.WithContext(context.WithValue(r.Context(), actorKey{}, who))

			defer func() {
				status := ww.Status()
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("route", routePattern(r)),
					zap.Int("status", status),
					zap.Duration("latency", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("remote_addr", r.RemoteAddr),
				}
				fields = append(fields, who.fields()...)

				switch {
				case status >= 500:
					logger.Error("http request", fields...)
				case status >= 400:
					logger.Warn("http request", fields...)
				default:
					logger.Info("http request", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// routePattern returns the matched chi pattern (e.g. /v1/admin/users/{id})
// so logs group by route instead of by id.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// TracingMiddleware extracts trace context from incoming requests.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
