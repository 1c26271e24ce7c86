package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seanp33/minidfs/jmx"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the readiness state of a running cluster",
	Long: `Query the NameNode JMX servlet of a running cluster and print its
readiness state.

Example:
  minidfs status --http 127.0.0.1:9870`,
	RunE: showStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().String("http", "127.0.0.1:9870", "NameNode HTTP address")
	statusCmd.Flags().Bool("json", false, "Output as JSON")
}

func showStatus(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("http")
	asJSON, _ := cmd.Flags().GetBool("json")

	client := jmx.NewClient(addr)
	status, err := client.NameNodeStatus(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to query NameNode at %s: %w", addr, err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"safeMode":      status.InSafeMode(),
			"fsState":       status.State,
			"liveDataNodes": status.LiveDataNodes,
		})
	}

	if status.InSafeMode() {
		fmt.Printf("NameNode %s: SAFE MODE (%s)\n", addr, status.SafeMode)
	} else {
		fmt.Printf("NameNode %s: UP, %d live DataNodes\n", addr, status.LiveDataNodes)
	}
	return nil
}
