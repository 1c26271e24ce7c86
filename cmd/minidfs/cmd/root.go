// Package cmd provides the CLI commands for minidfs.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "minidfs",
	Short: "Launch disposable HDFS mini clusters for testing",
	Long: `minidfs launches, waits for, and tears down disposable single-NameNode
HDFS mini clusters hosted in an external JVM or container.

Use minidfs to run a cluster for local development, share it with parallel
test processes over NATS, and inspect its readiness state.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./minidfs.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// Environment variable bindings
	viper.BindEnv("hadoop_home", "HADOOP_HOME")
	viper.BindEnv("nats_url", "NATS_URL")
}

func initConfig() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "minidfs.json"
}
