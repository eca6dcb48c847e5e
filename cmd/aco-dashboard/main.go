// Command aco-dashboard serves the ACO analytics dashboard and exports its
// tables from the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/banshee-data/aco.dashboard/internal/config"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func (o *rootOptions) loadConfig() (*config.DashboardConfig, error) {
	if o.configPath == "" {
		return &config.DashboardConfig{}, nil
	}
	return config.LoadDashboardConfig(o.configPath)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "aco-dashboard",
		Short: "ACO population health and cost analytics dashboard",
		Long: `aco-dashboard serves an interactive dashboard over a synthetic ACO
dataset: market performance, savings simulation, cost breakdown, quality,
network leakage and episode drill-downs.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a dashboard config JSON file")

	cmd.AddCommand(
		newServeCmd(opts),
		newExportCmd(opts),
		newMigrateCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
