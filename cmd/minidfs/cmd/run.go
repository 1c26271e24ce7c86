package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seanp33/minidfs"
	"github.com/seanp33/minidfs/discovery"
	"github.com/seanp33/minidfs/launcher"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a mini DFS cluster until interrupted",
	Long: `Launch a mini DFS cluster, wait for the NameNode to leave safe mode,
and keep it running until SIGINT/SIGTERM.

The bound ports are printed once the cluster is ready. With NATS configured,
the cluster is announced for other processes to discover.

Example:
  minidfs run --format --datanodes 2
  minidfs run --config ./minidfs.json`,
	RunE: runCluster,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("format", false, "Format cluster storage before startup")
	runCmd.Flags().Int("datanodes", 0, "Number of DataNodes")
	runCmd.Flags().Int("nnport", 0, "NameNode RPC port (0 = ephemeral)")
	runCmd.Flags().Int("httpport", 0, "NameNode HTTP port (0 = ephemeral)")
	runCmd.Flags().String("basedir", "", "Cluster storage directory (default: scratch dir)")
	runCmd.Flags().String("hadoop-home", "", "Hadoop installation directory")
	runCmd.Flags().String("metrics-addr", "", "Prometheus metrics HTTP address")
	runCmd.Flags().String("nats", "", "NATS URL to announce the cluster on")
	runCmd.Flags().String("cluster-id", "", "Cluster ID for announcements")

	viper.BindPFlag("hadoop_home", runCmd.Flags().Lookup("hadoop-home"))
	viper.BindPFlag("nats_url", runCmd.Flags().Lookup("nats"))
}

func runCluster(cmd *cobra.Command, args []string) error {
	fileCfg := loadOrDefaultConfig()

	if f, _ := cmd.Flags().GetBool("format"); f {
		fileCfg.Format = true
	}
	if n, _ := cmd.Flags().GetInt("datanodes"); n > 0 {
		fileCfg.DataNodes = n
	}
	if p, _ := cmd.Flags().GetInt("nnport"); p > 0 {
		fileCfg.NameNodePort = p
	}
	if p, _ := cmd.Flags().GetInt("httpport"); p > 0 {
		fileCfg.NameNodeHTTPPort = p
	}
	if d, _ := cmd.Flags().GetString("basedir"); d != "" {
		fileCfg.BaseDir = d
	}
	if a, _ := cmd.Flags().GetString("metrics-addr"); a != "" {
		fileCfg.MetricsAddr = a
	}
	if id, _ := cmd.Flags().GetString("cluster-id"); id != "" {
		fileCfg.ClusterID = id
	}
	if natsURL := viper.GetString("nats_url"); natsURL != "" {
		fileCfg.NATS.Servers = []string{natsURL}
	}

	fileCfg.ApplyDefaults()
	if err := fileCfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := slog.Default()
	cfg := fileCfg.ToConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var jvmOpts []launcher.JVMOption
	jvmOpts = append(jvmOpts, launcher.WithLogger(logger))
	if home := viperOrFile(fileCfg.HadoopHome, "hadoop_home"); home != "" {
		jvmOpts = append(jvmOpts, launcher.WithHadoopHome(home))
	}

	opts := []minidfs.Option{
		minidfs.WithLauncher(launcher.NewJVM(jvmOpts...)),
	}

	metricsOpts, err := metricsOptions(ctx, fileCfg.MetricsAddr)
	if err != nil {
		return err
	}
	opts = append(opts, metricsOpts...)

	cluster, err := minidfs.Create(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer cluster.Close()

	if err := cluster.WaitUntilUp(ctx); err != nil {
		cluster.Shutdown(context.Background())
		return err
	}

	nnPort, err := cluster.NameNodePort()
	if err != nil {
		cluster.Shutdown(context.Background())
		return err
	}
	httpPort, _ := cluster.NameNodeHTTPPort()

	fmt.Printf("cluster up: %s (http 127.0.0.1:%d)\n", cluster.URI(), httpPort)

	// Announce the cluster for other processes if NATS is configured.
	if fileCfg.NATS.IsConfigured() {
		if err := announce(ctx, fileCfg, nnPort, httpPort); err != nil {
			logger.Warn("failed to announce cluster", "error", err)
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")

	return cluster.Shutdown(context.Background())
}

// metricsOptions starts the metrics endpoint and returns the option wiring
// it into the cluster. An empty addr disables metrics entirely so no
// collectors are registered.
func metricsOptions(ctx context.Context, addr string) ([]minidfs.Option, error) {
	if addr == "" {
		return nil, nil
	}

	metrics := minidfs.NewMetrics()
	if err := metrics.Start(ctx, addr); err != nil {
		return nil, fmt.Errorf("failed to start metrics endpoint: %w", err)
	}
	return []minidfs.Option{minidfs.WithMetrics(metrics)}, nil
}

func announce(ctx context.Context, fileCfg *minidfs.FileConfig, nnPort, httpPort int) error {
	var connOpts []nats.Option
	if fileCfg.NATS.Credentials != "" {
		connOpts = append(connOpts, nats.UserCredentials(fileCfg.NATS.Credentials))
	}

	nc, err := nats.Connect(fileCfg.NATS.Servers[0], connOpts...)
	if err != nil {
		return err
	}

	registry, err := discovery.NewRegistry(ctx, nc)
	if err != nil {
		nc.Close()
		return err
	}

	id := fileCfg.ClusterID
	if id == "" {
		id = "default"
	}

	if err := registry.Announce(ctx, discovery.Info{
		ID:               id,
		NameNodePort:     nnPort,
		NameNodeHTTPPort: httpPort,
	}); err != nil {
		nc.Close()
		return err
	}

	go func() {
		<-ctx.Done()
		registry.Deregister(context.Background(), id)
		nc.Close()
	}()

	return nil
}

func loadOrDefaultConfig() *minidfs.FileConfig {
	cfg, err := minidfs.LoadConfigFromFile(configPath())
	if err != nil {
		return minidfs.NewDefaultFileConfig("")
	}
	return cfg
}

func viperOrFile(fileValue, viperKey string) string {
	if v := viper.GetString(viperKey); v != "" {
		return v
	}
	return fileValue
}
