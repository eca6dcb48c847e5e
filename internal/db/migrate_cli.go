package db

import (
	"fmt"
	"io"
	"io/fs"
	"log"
)

// RunMigrateUp applies all pending migrations and prints the new version.
func RunMigrateUp(database *DB, migrationsFS fs.FS, w io.Writer) error {
	log.Printf("Running migrations...")
	if err := database.MigrateUp(migrationsFS); err != nil {
		return err
	}
	return printVersion(database, migrationsFS, w)
}

// RunMigrateDown rolls back one migration and prints the new version.
func RunMigrateDown(database *DB, migrationsFS fs.FS, w io.Writer) error {
	log.Printf("Rolling back one migration...")
	if err := database.MigrateDown(migrationsFS); err != nil {
		return err
	}
	return printVersion(database, migrationsFS, w)
}

// RunMigrateStatus prints the schema version, the latest available version
// and any recovery hint.
func RunMigrateStatus(database *DB, migrationsFS fs.FS, w io.Writer) error {
	s, err := database.GetMigrationStatus(migrationsFS)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "=== Migration Status ===")
	fmt.Fprintf(w, "Current version: %d\n", s.CurrentVersion)
	fmt.Fprintf(w, "Latest available: %d\n", s.LatestVersion)
	fmt.Fprintf(w, "Dirty: %v\n", s.Dirty)
	fmt.Fprintf(w, "Schema migrations table exists: %v\n", s.SchemaMigrationsExists)

	switch {
	case s.Dirty:
		fmt.Fprintln(w, "\nWARNING: Database is in a dirty state!")
		fmt.Fprintln(w, "A migration failed mid-execution. Inspect the database, fix it, then run:")
		fmt.Fprintln(w, "  aco-dashboard migrate force <version>")
	case s.Pending() > 0:
		fmt.Fprintf(w, "\n%d migration(s) pending. Run 'aco-dashboard migrate up' to update.\n", s.Pending())
	default:
		fmt.Fprintln(w, "\nDatabase is up to date.")
	}
	return nil
}

// RunMigrateTo migrates up or down to version.
func RunMigrateTo(database *DB, migrationsFS fs.FS, version uint, w io.Writer) error {
	log.Printf("Migrating to version %d...", version)
	if err := database.MigrateTo(migrationsFS, version); err != nil {
		return err
	}
	return printVersion(database, migrationsFS, w)
}

// RunMigrateForce sets the recorded version without running migrations.
func RunMigrateForce(database *DB, migrationsFS fs.FS, version int, w io.Writer) error {
	if err := database.MigrateForce(migrationsFS, version); err != nil {
		return err
	}
	fmt.Fprintf(w, "Migration version forced to %d\n", version)
	return nil
}

func printVersion(database *DB, migrationsFS fs.FS, w io.Writer) error {
	version, dirty, err := database.MigrateVersion(migrationsFS)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}
