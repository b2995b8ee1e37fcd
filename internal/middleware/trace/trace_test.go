package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "fintrack/internal/log"
)

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Handler: slog.NewTextHandler(&buf, nil)})
	m := NewMiddleware(logger, func(*http.Request) string { return "203.0.113.1" })

	var seenID string
	var seenLogger *applog.Logger
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		seenLogger = applog.FromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/expenses/9", nil))

	if !strings.HasPrefix(seenID, "req_") {
		t.Fatalf("unexpected request id %q", seenID)
	}
	if rec.Header().Get(RequestIDHeader) != seenID {
		t.Fatal("request id header not echoed")
	}
	if seenLogger.Component() != applog.ComponentHTTP {
		t.Fatalf("expected http logger in context, got %q", seenLogger.Component())
	}

	out := buf.String()
	for _, want := range []string{"level=WARN", "status_code=404", "client_ip=203.0.113.1", "request_id=" + seenID} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
	if m.GetMetrics().TotalRequests != 1 {
		t.Errorf("expected one request, got %d", m.GetMetrics().TotalRequests)
	}
}

func TestGenerateRequestIDUnique(t *testing.T) {
	if GenerateRequestID() == GenerateRequestID() {
		t.Fatal("request ids should differ")
	}
}
