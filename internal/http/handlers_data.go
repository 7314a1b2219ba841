package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"budgetbuddy/internal/log"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Export(r.Context())
	if err != nil {
		s.fail(w, r, err, log.OpExport, "Failed to export data")
		return
	}

	filename := "budgetbuddy-export-" + snap.ExportedAt.Format("2006-01-02")
	if wantsYAML(r.URL.Query().Get("format"), r.Header.Get("Accept")) {
		out, err := yaml.Marshal(snap)
		if err != nil {
			s.fail(w, r, err, log.OpExport, "Failed to export data")
			return
		}
		NewResponse().
			Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.yaml"`, filename)).
			Raw("application/yaml", out).
			Write(w)
		return
	}

	OK(snap).
		Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.json"`, filename)).
		Write(w)
}

func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.ClearAll(r.Context()); err != nil {
		s.fail(w, r, err, log.OpClear, "Failed to clear data")
		return
	}
	s.aiCache.Purge()
	s.logger.InfoContext(r.Context(), "All data cleared", log.FieldOperation, log.OpClear)
	OK(MessageResponse{Message: "All data cleared successfully"}).Write(w)
}

// Operational endpoints

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if err := s.probeStore(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		checks["store"] = "failed"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	stats := s.aiCache.Stats()
	checks["ai_cache"] = map[string]any{"entries": stats.Size, "status": "ok"}
	checks["rate_limiter"] = map[string]any{"active_clients": s.limiter.ActiveClients(), "status": "ok"}

	NewResponse().
		Status(httpStatus).
		JSON(map[string]any{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   s.ledger.Version(),
			"checks":    checks,
		}).
		Write(w)
}

func (s *Server) probeStore(ctx context.Context) error {
	if s.ready != nil {
		return s.ready(ctx)
	}
	_, err := s.ledger.GetSettings(ctx)
	return err
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	limitMetrics := s.limiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()
	cacheStats := s.aiCache.Stats()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_client_errors_total", "counter", "Responses with a 4xx status", traceMetrics.ClientErrors)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric("http_response_time_avg_microseconds", "gauge", "Mean response time", traceMetrics.AverageResponseTime)
	metric("transactions_recorded_total", "counter", "Transactions created through the API", s.transactionsRecorded.Load())
	metric("ledger_version", "gauge", "Mutations applied since start", s.ledger.Version())
	metric("ai_generations_total", "counter", "Generator calls that were not served from cache", s.aiGenerations.Load())
	metric("ai_cache_hits_total", "counter", "AI cache hits", cacheStats.Hits)
	metric("ai_cache_misses_total", "counter", "AI cache misses", cacheStats.Misses)
	metric("ai_cache_entries", "gauge", "Current AI cache entries", cacheStats.Size)
	metric("rate_limit_rejections_total", "counter", "Requests rejected by the rate limiter", limitMetrics.Rejected)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", limitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Requests matching probe patterns", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.startedAt).Seconds()))
}
