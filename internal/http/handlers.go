package http

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks templates and the storage backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if len(s.templates) == 0 {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.health == nil:
		checks["database"] = "not_configured"
	default:
		if err := s.health.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
			checks["database"] = "failed"
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

type metric struct {
	name, help, kind string
	value            float64
}

// handleMetrics writes the counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	security := s.securityDetector.GetMetrics()
	limits := s.rateLimiter.GetMetrics()
	cacheStats := s.categories.CacheStats()

	metrics := []metric{
		{"http_requests_total", "Total number of HTTP requests", "counter", float64(s.traceMiddleware.GetMetrics().TotalRequests)},
		{"transactions_created_total", "Total number of transactions created", "counter", float64(atomic.LoadInt64(&s.appMetrics.totalTransactions))},
		{"login_failures_total", "Total failed login attempts", "counter", float64(atomic.LoadInt64(&s.appMetrics.failedLogins))},
		{"rate_limit_hits_total", "Total rate limit hits", "counter", float64(limits.TotalHits)},
		{"suspicious_requests_total", "Total suspicious requests detected", "counter", float64(security.SuspiciousRequests)},
		{"active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", float64(limits.ClientCount)},
		{"category_cache_hits_total", "Category catalog cache hits", "counter", float64(cacheStats.Hits)},
		{"category_cache_misses_total", "Category catalog cache misses", "counter", float64(cacheStats.Misses)},
		{"uptime_seconds", "Application uptime in seconds", "gauge", math.Round(time.Since(s.appMetrics.uptime).Seconds())},
	}

	var b strings.Builder
	for _, m := range metrics {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s %s\n%s %s\n\n",
			m.name, m.help, m.name, m.kind, m.name, strconv.FormatFloat(m.value, 'f', -1, 64))
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, b.String())
}
