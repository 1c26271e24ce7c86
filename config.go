package minidfs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"time"
)

const (
	DefaultDataNodes       = 1
	DefaultStartupTimeout  = 2 * time.Minute
	DefaultProbeInterval   = 500 * time.Millisecond
	DefaultShutdownTimeout = 30 * time.Second
)

// Config configures a mini DFS cluster launch.
type Config struct {
	// Format requests that the cluster's storage directories be formatted
	// before startup.
	Format bool

	// DataNodes is the number of DataNodes to start (default 1).
	DataNodes int

	// NameNodePort is the requested NameNode RPC port. Zero means an
	// ephemeral port chosen by the cluster; the bound port is read back via
	// Cluster.NameNodePort.
	NameNodePort int

	// NameNodeHTTPPort is the requested NameNode HTTP (JMX/WebHDFS) port.
	// Zero means ephemeral.
	NameNodeHTTPPort int

	// BaseDir is the directory for NameNode and DataNode storage. Empty
	// means a scratch directory is created at launch and removed when the
	// handle is closed.
	BaseDir string

	// User is the HDFS user for client connections (default: current OS user).
	User string

	// Timing configuration
	StartupTimeout  time.Duration
	ProbeInterval   time.Duration
	ShutdownTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) Validate() error {
	if c.DataNodes < 0 {
		return fmt.Errorf("DataNodes must not be negative")
	}
	if c.NameNodePort < 0 || c.NameNodePort > 65535 {
		return fmt.Errorf("NameNodePort out of range: %d", c.NameNodePort)
	}
	if c.NameNodeHTTPPort < 0 || c.NameNodeHTTPPort > 65535 {
		return fmt.Errorf("NameNodeHTTPPort out of range: %d", c.NameNodeHTTPPort)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataNodes == 0 {
		c.DataNodes = DefaultDataNodes
	}
	if c.StartupTimeout == 0 {
		c.StartupTimeout = DefaultStartupTimeout
	}
	if c.ProbeInterval == 0 {
		c.ProbeInterval = DefaultProbeInterval
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.User == "" {
		if u, err := user.Current(); err == nil {
			c.User = u.Username
		}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// FileConfig represents the cluster configuration loaded from a JSON file.
// This is the user-facing configuration format used by the minidfs CLI.
type FileConfig struct {
	ClusterID        string         `json:"clusterId,omitempty"`
	Format           bool           `json:"format"`
	DataNodes        int            `json:"dataNodes,omitempty"`
	NameNodePort     int            `json:"nameNodePort,omitempty"`
	NameNodeHTTPPort int            `json:"nameNodeHttpPort,omitempty"`
	BaseDir          string         `json:"baseDir,omitempty"`
	User             string         `json:"user,omitempty"`
	HadoopHome       string         `json:"hadoopHome,omitempty"`
	StartupTimeoutMs int64          `json:"startupTimeoutMs,omitempty"`
	MetricsAddr      string         `json:"metricsAddr,omitempty"`
	NATS             NATSFileConfig `json:"nats,omitempty"`
}

// NATSFileConfig contains NATS connection settings for cluster sharing.
type NATSFileConfig struct {
	Servers     []string `json:"servers,omitempty"`
	Credentials string   `json:"credentials,omitempty"`
}

// IsConfigured returns true if NATS settings are configured.
func (n NATSFileConfig) IsConfigured() bool {
	return len(n.Servers) > 0
}

// LoadConfigFromFile loads configuration from a JSON file.
func LoadConfigFromFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// WriteConfigToFile writes the configuration to a JSON file.
func WriteConfigToFile(cfg *FileConfig, path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *FileConfig) ApplyDefaults() {
	if c.DataNodes == 0 {
		c.DataNodes = DefaultDataNodes
	}
	if c.StartupTimeoutMs == 0 {
		c.StartupTimeoutMs = int64(DefaultStartupTimeout / time.Millisecond)
	}
}

// Validate validates the configuration.
func (c *FileConfig) Validate() error {
	if c.DataNodes < 0 {
		return fmt.Errorf("dataNodes must not be negative")
	}
	if c.NameNodePort < 0 || c.NameNodePort > 65535 {
		return fmt.Errorf("nameNodePort out of range: %d", c.NameNodePort)
	}
	if c.NameNodeHTTPPort < 0 || c.NameNodeHTTPPort > 65535 {
		return fmt.Errorf("nameNodeHttpPort out of range: %d", c.NameNodeHTTPPort)
	}
	return nil
}

// ToConfig converts FileConfig to the Config used by Create.
func (c *FileConfig) ToConfig(logger *slog.Logger) Config {
	return Config{
		Format:           c.Format,
		DataNodes:        c.DataNodes,
		NameNodePort:     c.NameNodePort,
		NameNodeHTTPPort: c.NameNodeHTTPPort,
		BaseDir:          c.BaseDir,
		User:             c.User,
		StartupTimeout:   time.Duration(c.StartupTimeoutMs) * time.Millisecond,
		Logger:           logger,
	}
}

// NewDefaultFileConfig creates a new FileConfig with default values.
func NewDefaultFileConfig(clusterID string) *FileConfig {
	cfg := &FileConfig{
		ClusterID: clusterID,
		Format:    true,
	}
	cfg.ApplyDefaults()
	return cfg
}
