package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/banshee-data/aco.dashboard/internal/db"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite database path (overrides config)")

	// withDB opens the database without applying migrations.
	withDB := func(fn func(cmd *cobra.Command, args []string, database *db.DB) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			path := cfg.GetDBPath()
			if dbPath != "" {
				path = dbPath
			}
			database, err := db.OpenDB(path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer database.Close()
			return fn(cmd, args, database)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, _ []string, database *db.DB) error {
				return db.RunMigrateUp(database, db.MigrationsFS(), cmd.OutOrStdout())
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, _ []string, database *db.DB) error {
				return db.RunMigrateDown(database, db.MigrationsFS(), cmd.OutOrStdout())
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current and latest schema versions",
			Args:  cobra.NoArgs,
			RunE: withDB(func(cmd *cobra.Command, _ []string, database *db.DB) error {
				return db.RunMigrateStatus(database, db.MigrationsFS(), cmd.OutOrStdout())
			}),
		},
		&cobra.Command{
			Use:   "to <version>",
			Short: "Migrate up or down to a version",
			Args:  cobra.ExactArgs(1),
			RunE: withDB(func(cmd *cobra.Command, args []string, database *db.DB) error {
				v, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return db.RunMigrateTo(database, db.MigrationsFS(), uint(v), cmd.OutOrStdout())
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Record a version without running migrations (dirty recovery)",
			Args:  cobra.ExactArgs(1),
			RunE: withDB(func(cmd *cobra.Command, args []string, database *db.DB) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return db.RunMigrateForce(database, db.MigrationsFS(), v, cmd.OutOrStdout())
			}),
		},
	)
	return cmd
}
