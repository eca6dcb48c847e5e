package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/banshee-data/aco.dashboard/internal/dashboard"
	"github.com/banshee-data/aco.dashboard/internal/dataset"
	"github.com/banshee-data/aco.dashboard/internal/db"
	"github.com/banshee-data/aco.dashboard/internal/version"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var listen, dbPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = &listen
			}
			if dbPath != "" {
				cfg.DBPath = &dbPath
			}

			catalog, err := dataset.Load()
			if err != nil {
				return fmt.Errorf("load dataset: %w", err)
			}
			database, err := db.NewDB(cfg.GetDBPath())
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Printf("%s", version.String())
			ws := dashboard.NewWebServer(dashboard.WebServerConfig{
				Config:  cfg,
				Catalog: catalog,
				DB:      database,
			})
			if err := ws.Start(ctx); err != nil {
				return err
			}
			log.Printf("Graceful shutdown complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (overrides config)")
	return cmd
}
