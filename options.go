package minidfs

import (
	"log/slog"

	"github.com/seanp33/minidfs/launcher"
)

// Option configures a cluster handle at creation time.
type Option func(*clusterOptions)

type clusterOptions struct {
	launcher launcher.Launcher
	prober   Prober
	hooks    Hooks
	metrics  *Metrics
	logger   *slog.Logger
}

func defaultClusterOptions() *clusterOptions {
	return &clusterOptions{
		hooks: NoOpHooks{},
	}
}

// WithLauncher sets the launcher used to start and stop the external
// cluster process. The default is a JVM launcher resolved from HADOOP_HOME.
func WithLauncher(l launcher.Launcher) Option {
	return func(o *clusterOptions) {
		o.launcher = l
	}
}

// WithProber sets a custom readiness prober. The default probes the
// NameNode JMX servlet over HTTP.
func WithProber(p Prober) Option {
	return func(o *clusterOptions) {
		o.prober = p
	}
}

// WithHooks sets lifecycle hooks for the cluster.
func WithHooks(h Hooks) Option {
	return func(o *clusterOptions) {
		o.hooks = h
	}
}

// WithMetrics attaches a metrics collector to the cluster.
func WithMetrics(m *Metrics) Option {
	return func(o *clusterOptions) {
		o.metrics = m
	}
}

// WithLogger sets a custom logger, overriding Config.Logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clusterOptions) {
		o.logger = logger
	}
}
