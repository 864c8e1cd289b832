// Package metrics exposes Prometheus instrumentation for tool calls,
// registry loads, and engine invocations.
package metrics

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flagsweeper"

var (
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tools",
		Name:      "calls_total",
		Help:      "Tool executions by tool name and status.",
	}, []string{"tool", "status"})

	registryLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "registry",
		Name:      "loads_total",
		Help:      "Flag registry load attempts by status.",
	}, []string{"status"})

	engineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "rewrite_duration_seconds",
		Help:      "Latency of external engine invocations by status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
)

// CountToolCall records one tool execution.
func CountToolCall(tool, status string) {
	toolCalls.WithLabelValues(tool, status).Inc()
}

// CountRegistryLoad records one registry load attempt.
func CountRegistryLoad(status string) {
	registryLoads.WithLabelValues(status).Inc()
}

// ObserveEngine records the latency of one engine invocation.
func ObserveEngine(d time.Duration, status string) {
	engineDuration.WithLabelValues(status).Observe(d.Seconds())
}

// ListenAndServe starts an HTTP listener exposing /metrics in the
// background and returns the server for shutdown.
func ListenAndServe(addr string, logger *slog.Logger) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("Metrics listener started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Metrics listener failed", slog.String("error", err.Error()))
		}
	}()

	return srv
}
