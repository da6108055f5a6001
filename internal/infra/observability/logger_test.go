package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerMiddleware_LogsActor(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := ZapLoggerMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Auth runs on a derived request, as in the router.
		r = r.WithContext(r.Context())
		SetActor(r.Context(), "manager@x.org", "Program Manager")
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/manager/distributions", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["actor"] != "manager@x.org" || fields["actor_role"] != "Program Manager" {
		t.Errorf("unexpected actor fields: %v", fields)
	}
	if fields["status"] != int64(http.StatusCreated) {
		t.Errorf("expected status 201, got %v", fields["status"])
	}
}

func TestZapLoggerMiddleware_LevelsAndAnonymous(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler := ZapLoggerMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/officer/dashboard", nil))

	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected one warn entry, got %+v", entries)
	}
	if _, ok := entries[0].ContextMap()["actor"]; ok {
		t.Error("expected no actor on an unauthenticated request")
	}
}

func TestSetActor_OutsideMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	SetActor(req.Context(), "a@x.org", "Finance Officer")
}

func TestNewLogger_ServiceField(t *testing.T) {
	logger := NewLogger("warn", "funds-bfa")
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("expected info disabled at warn level")
	}
	if !NewLogger("debug", "funds-bfa").Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug enabled at debug level")
	}
}
