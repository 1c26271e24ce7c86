package minidfs

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics manages Prometheus metrics for cluster launches.
type Metrics struct {
	registry *prometheus.Registry
	server   *http.Server

	// Lifecycle metrics
	LaunchesTotal   *prometheus.CounterVec
	ClustersUp      prometheus.Gauge
	StartupSeconds  prometheus.Histogram
	ShutdownSeconds prometheus.Histogram

	// Failure metrics
	ReadinessFailures prometheus.Counter
	ShutdownFailures  prometheus.Counter
}

// NewMetrics creates a new metrics collector on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		LaunchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "minidfs_launches_total",
			Help: "Total cluster launch attempts",
		}, []string{"status"}),

		ClustersUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "minidfs_clusters_up",
			Help: "Number of clusters currently ready",
		}),

		StartupSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "minidfs_startup_seconds",
			Help:    "Time from launch until the NameNode left safe mode",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),

		ShutdownSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "minidfs_shutdown_seconds",
			Help:    "Cluster teardown duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),

		ReadinessFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minidfs_readiness_failures_total",
			Help: "Clusters that never left safe mode",
		}),

		ShutdownFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minidfs_shutdown_failures_total",
			Help: "Cluster teardowns that returned an error",
		}),
	}

	// Register all metrics
	registry.MustRegister(
		m.LaunchesTotal,
		m.ClustersUp,
		m.StartupSeconds,
		m.ShutdownSeconds,
		m.ReadinessFailures,
		m.ShutdownFailures,
	)

	// Also register default Go metrics
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Start begins serving the metrics endpoint at addr.
func (m *Metrics) Start(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	m.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Log error but don't crash
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		m.server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Stop stops the metrics server.
func (m *Metrics) Stop() {
	if m.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		m.server.Shutdown(ctx)
	}
}

// observeLaunch records a launch attempt.
func (m *Metrics) observeLaunch(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.LaunchesTotal.WithLabelValues(status).Inc()
}

// observeReady records a successful or failed wait for readiness.
func (m *Metrics) observeReady(startup time.Duration, err error) {
	if err != nil {
		m.ReadinessFailures.Inc()
		return
	}
	m.StartupSeconds.Observe(startup.Seconds())
	m.ClustersUp.Inc()
}

// observeShutdown records a teardown.
func (m *Metrics) observeShutdown(wasUp bool, d time.Duration, err error) {
	if wasUp {
		m.ClustersUp.Dec()
	}
	if err != nil {
		m.ShutdownFailures.Inc()
		return
	}
	m.ShutdownSeconds.Observe(d.Seconds())
}
