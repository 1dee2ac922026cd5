// Package metrics exports scan counters in the prometheus text format.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/rugscan/internal/model"
)

// ScanMetrics holds the collectors for one run. Each instance owns a private
// registry so repeated runs in one process do not collide.
type ScanMetrics struct {
	registry *prometheus.Registry

	ScansTotal        *prometheus.CounterVec
	ScanFailures      prometheus.Counter
	SignaturesMatched *prometheus.CounterVec
	LiquidityLocked   *prometheus.CounterVec
	RiskScore         prometheus.Histogram
	ScanDuration      prometheus.Histogram
}

// New creates and registers the scan collectors
func New() *ScanMetrics {
	m := &ScanMetrics{
		registry: prometheus.NewRegistry(),
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rugscan_scans_total",
			Help: "Total number of completed scans by risk band",
		}, []string{"band"}),
		ScanFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rugscan_scan_failures_total",
			Help: "Total number of sources that could not be scanned",
		}),
		SignaturesMatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rugscan_signatures_matched_total",
			Help: "Total number of matched signatures per category",
		}, []string{"category"}),
		LiquidityLocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rugscan_liquidity_locked_total",
			Help: "Total number of scans referencing a liquidity lock custodian",
		}, []string{"provider"}),
		RiskScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rugscan_risk_score",
			Help:    "Distribution of risk score values",
			Buckets: []float64{0, 10, 30, 50, 70, 100, 150},
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rugscan_scan_duration_seconds",
			Help:    "Time spent acquiring and analyzing one source",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.ScansTotal,
		m.ScanFailures,
		m.SignaturesMatched,
		m.LiquidityLocked,
		m.RiskScore,
		m.ScanDuration,
	)
	return m
}

// Observe records a completed report
func (m *ScanMetrics) Observe(report *model.Report, elapsed time.Duration) {
	m.ScansTotal.WithLabelValues(string(report.Score.Band)).Inc()
	m.RiskScore.Observe(float64(report.Score.Value))
	m.ScanDuration.Observe(elapsed.Seconds())

	for _, match := range report.Matches {
		m.SignaturesMatched.WithLabelValues(match.Category.Label).Add(float64(len(match.Matched)))
	}
	if report.Liquidity.Locked {
		m.LiquidityLocked.WithLabelValues(report.Liquidity.Provider).Inc()
	}
}

// ObserveFailure records a source that produced no report
func (m *ScanMetrics) ObserveFailure() {
	m.ScanFailures.Inc()
}

// Registry exposes the private registry
func (m *ScanMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all collected metrics to path in the text exposition format
func (m *ScanMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// Handler serves the private registry in the prometheus exposition format
func (m *ScanMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled
func (m *ScanMetrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
