package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seanp33/minidfs"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default minidfs configuration file to the path given by
--config (default ./minidfs.json).`,
	RunE: writeDefaultConfig,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("cluster-id", "", "Cluster ID for announcements")
}

func writeDefaultConfig(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("cluster-id")
	cfg := minidfs.NewDefaultFileConfig(id)

	path := configPath()
	if err := minidfs.WriteConfigToFile(cfg, path); err != nil {
		return err
	}

	fmt.Printf("wrote %s\n", path)
	return nil
}
