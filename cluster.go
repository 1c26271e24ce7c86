package minidfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/seanp33/minidfs/jmx"
	"github.com/seanp33/minidfs/launcher"
)

// Ports reports the ports the NameNode bound.
type Ports struct {
	// NameNodeRPC is the NameNode client RPC port.
	NameNodeRPC int

	// NameNodeHTTP is the NameNode HTTP (JMX/WebHDFS) port.
	NameNodeHTTP int
}

// Cluster is a handle to an externally-hosted mini DFS cluster. The handle
// owns the cluster process for its whole lifecycle: Create launches it,
// WaitUntilUp blocks until the NameNode leaves safe mode, Shutdown tears the
// process down, and Close releases harness-side resources.
//
// A handle expects a single owner driving the lifecycle sequentially.
// Accessors are safe for concurrent use, but concurrent lifecycle calls on
// the same handle are not supported.
type Cluster struct {
	cfg      Config
	hooks    Hooks
	metrics  *Metrics
	launcher launcher.Launcher
	prober   Prober
	logger   *slog.Logger

	mu         sync.RWMutex
	state      State
	ports      Ports
	launchedAt time.Time
	readyAt    time.Time
	lastProbe  *jmx.NameNodeStatus

	baseDir string
	scratch bool

	closeOnce sync.Once
}

// Create launches a new cluster from the given configuration. On failure it
// returns a nil handle and the launch error; there is nothing to free. No
// retries are attempted.
//
// The returned handle is not yet ready to serve - call WaitUntilUp before
// using the filesystem.
func Create(ctx context.Context, cfg Config, opts ...Option) (*Cluster, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := defaultClusterOptions()
	for _, opt := range opts {
		opt(o)
	}

	logger := cfg.Logger
	if o.logger != nil {
		logger = o.logger
	}
	logger = logger.With("component", "minidfs")

	baseDir := cfg.BaseDir
	scratch := false
	if baseDir == "" {
		dir, err := os.MkdirTemp("", "minidfs-")
		if err != nil {
			return nil, fmt.Errorf("failed to create scratch dir: %w", err)
		}
		baseDir = dir
		scratch = true
	}

	l := o.launcher
	if l == nil {
		l = launcher.NewJVM(launcher.WithLogger(logger), launcher.WithStartTimeout(cfg.StartupTimeout))
	}

	logger.Info("creating cluster", "datanodes", cfg.DataNodes, "format", cfg.Format, "basedir", baseDir)

	ports, err := l.Start(ctx, launcher.Spec{
		Format:           cfg.Format,
		DataNodes:        cfg.DataNodes,
		BaseDir:          baseDir,
		NameNodePort:     cfg.NameNodePort,
		NameNodeHTTPPort: cfg.NameNodeHTTPPort,
	})
	if o.metrics != nil {
		o.metrics.observeLaunch(err)
	}
	if err != nil {
		if scratch {
			os.RemoveAll(baseDir)
		}
		return nil, fmt.Errorf("failed to launch cluster: %w", err)
	}

	prober := o.prober
	if prober == nil {
		prober = newJMXProber(ports.NameNodeHTTP)
	}

	c := &Cluster{
		cfg:        cfg,
		hooks:      o.hooks,
		metrics:    o.metrics,
		launcher:   l,
		prober:     prober,
		logger:     logger,
		state:      StateStarting,
		ports:      Ports{NameNodeRPC: ports.NameNodeRPC, NameNodeHTTP: ports.NameNodeHTTP},
		launchedAt: time.Now(),
		baseDir:    baseDir,
		scratch:    scratch,
	}

	if err := c.hooks.OnStarted(ctx, c.ports); err != nil {
		logger.Error("OnStarted hook failed", "error", err)
	}

	return c, nil
}

// WaitUntilUp blocks until the NameNode leaves safe mode, the configured
// startup timeout elapses, or ctx is cancelled. It returns nil exactly when
// the cluster became ready.
func (c *Cluster) WaitUntilUp(ctx context.Context) error {
	c.mu.RLock()
	state := c.state
	c.mu.RUnlock()

	switch {
	case state == StateUp:
		return nil
	case state.Terminal():
		return ErrClusterDown
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.StartupTimeout)
	defer cancel()

	ticker := time.NewTicker(c.cfg.ProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if c.metrics != nil {
				c.metrics.observeReady(0, ErrStartupTimeout)
			}
			c.logger.Error("cluster never left safe mode", "timeout", c.cfg.StartupTimeout)
			return ErrStartupTimeout
		case <-ticker.C:
			status, err := c.prober.Probe(waitCtx)
			if err != nil {
				// NameNode HTTP server not answering yet.
				continue
			}

			c.mu.Lock()
			c.lastProbe = status
			c.mu.Unlock()

			if status.InSafeMode() {
				continue
			}

			startup := time.Since(c.launchedAt)
			c.mu.Lock()
			c.state = StateUp
			c.readyAt = time.Now()
			c.mu.Unlock()

			if c.metrics != nil {
				c.metrics.observeReady(startup, nil)
			}
			c.logger.Info("cluster up", "startup", startup, "nnport", c.ports.NameNodeRPC)

			if err := c.hooks.OnReady(ctx); err != nil {
				c.logger.Error("OnReady hook failed", "error", err)
			}
			return nil
		}
	}
}

// Shutdown tears down the external cluster process. It is safe to call on a
// cluster that never became ready. A nil return means teardown completed
// cleanly; the handle still has to be closed afterwards.
func (c *Cluster) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return ErrClosed
	case StateDown:
		c.mu.Unlock()
		return nil
	}
	wasUp := c.state == StateUp
	c.state = StateDown
	c.mu.Unlock()

	stopCtx, cancel := context.WithTimeout(ctx, c.cfg.ShutdownTimeout)
	defer cancel()

	start := time.Now()
	err := c.launcher.Stop(stopCtx)
	if c.metrics != nil {
		c.metrics.observeShutdown(wasUp, time.Since(start), err)
	}
	if err != nil {
		c.logger.Error("cluster shutdown failed", "error", err)
		err = fmt.Errorf("%w: %v", ErrShutdownFailed, err)
	} else {
		c.logger.Info("cluster shut down")
	}

	if hookErr := c.hooks.OnShutdown(ctx, err); hookErr != nil {
		c.logger.Error("OnShutdown hook failed", "error", hookErr)
	}

	return err
}

// Close releases harness-side resources: the scratch directory, if Create
// made one, and the launcher handle. It performs no cluster-level teardown -
// call Shutdown first for a running cluster. Close is idempotent; the handle
// is expected to have a single owner calling it once.
func (c *Cluster) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()

		if c.scratch {
			err = os.RemoveAll(c.baseDir)
		}
		c.logger.Debug("cluster handle closed")
	})
	return err
}

// NameNodePort returns the bound NameNode RPC port of the single, non-HA
// NameNode.
func (c *Cluster) NameNodePort() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state == StateClosed {
		return 0, ErrClosed
	}
	if c.ports.NameNodeRPC == 0 {
		return 0, ErrNoNameNodePort
	}
	return c.ports.NameNodeRPC, nil
}

// NameNodeHTTPPort returns the bound NameNode HTTP port.
func (c *Cluster) NameNodeHTTPPort() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state == StateClosed {
		return 0, ErrClosed
	}
	if c.ports.NameNodeHTTP == 0 {
		return 0, ErrNoNameNodePort
	}
	return c.ports.NameNodeHTTP, nil
}

// URI returns the hdfs:// URI of the cluster filesystem.
func (c *Cluster) URI() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("hdfs://127.0.0.1:%d", c.ports.NameNodeRPC)
}

// BaseDir returns the cluster storage directory.
func (c *Cluster) BaseDir() string {
	return c.baseDir
}

// State returns the lifecycle state of the handle.
func (c *Cluster) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Status reports the current status. For a live cluster it re-probes the
// NameNode; probe failures fall back to the last observed values.
func (c *Cluster) Status(ctx context.Context) *Status {
	c.mu.RLock()
	state := c.state
	probe := c.lastProbe
	readyAt := c.readyAt
	ports := c.ports
	c.mu.RUnlock()

	if !state.Terminal() {
		if fresh, err := c.prober.Probe(ctx); err == nil {
			probe = fresh
			c.mu.Lock()
			c.lastProbe = fresh
			c.mu.Unlock()
		}
	}

	status := &Status{
		State:            state,
		NameNodePort:     ports.NameNodeRPC,
		NameNodeHTTPPort: ports.NameNodeHTTP,
		DataNodes:        c.cfg.DataNodes,
		LiveDataNodes:    -1,
	}
	if probe != nil {
		status.SafeMode = probe.InSafeMode()
		status.LiveDataNodes = probe.LiveDataNodes
	}
	if !readyAt.IsZero() && state == StateUp {
		status.Uptime = time.Since(readyAt)
	}
	return status
}
