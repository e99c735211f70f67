package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/zphere-io/tenantctl/pkg/orchestrator"
)

// migrateMasterCmd represents the migrate-master command
var migrateMasterCmd = &cobra.Command{
	Use:   "migrate-master",
	Short: "Converge the master database schema to head",
	Long: `Converge the master (control-plane) database schema to its latest revision.

The connection URL is read from ALEMBIC_DB_URL, falling back to DATABASE_URL.
When MIGRATION_RUNNER is set (for example "alembic upgrade head") the external
runner is invoked instead and its exit code is propagated unchanged. Failed
migrations are never retried: partial application may require manual
inspection.

Example:
  tenantctl migrate-master`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMasterMigration(); err != nil {
			fmt.Fprintf(os.Stderr, "Master migration failed: %v\n", err)
			os.Exit(orchestrator.ExitCode(err))
		}
	},
}

var migrateMasterDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback master database migrations",
	Long: `Rollback master database migrations.

This command rolls back the specified number of migrations (default: 1).
Only available for the in-process migration path.

Example:
  tenantctl migrate-master down      # Rollback 1 migration
  tenantctl migrate-master down 3    # Rollback 3 migrations`,
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) > 0 {
			_, _ = fmt.Sscanf(args[0], "%d", &steps)
		}

		if err := runMasterMigrationDown(steps); err != nil {
			fmt.Fprintf(os.Stderr, "Rollback failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var migrateMasterStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current master migration version",
	Long:  `Show the current master database migration version.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := showMasterMigrationStatus(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get status: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateMasterCmd)
	migrateMasterCmd.AddCommand(migrateMasterDownCmd)
	migrateMasterCmd.AddCommand(migrateMasterStatusCmd)
}

// withMigrationsTable points golang-migrate at its own bookkeeping table,
// leaving alembic_version available for the Python alembic tool.
func withMigrationsTable(dbURL string) string {
	if dbURL == "" {
		return ""
	}
	if strings.Contains(dbURL, "?") {
		return dbURL + "&x-migrations-table=orchestrator_schema_migrations"
	}
	return dbURL + "?x-migrations-table=orchestrator_schema_migrations"
}

func runMasterMigration() error {
	cfg := getConfig()
	dbURL, err := cfg.RequireMasterDB()
	if err != nil {
		return err
	}

	// External runner path: exit code passthrough, nothing else.
	if argv := cfg.RunnerArgv(); len(argv) > 0 {
		o := &orchestrator.Orchestrator{Master: &orchestrator.ExecRunner{Command: argv}}
		if _, err := o.MigrateMaster(context.Background(), dbURL); err != nil {
			return err
		}
		fmt.Println("Master migration complete")
		return nil
	}

	m, err := createMasterMigrateInstance(withMigrationsTable(dbURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, _ := m.Version()
	fmt.Printf("Current version: %d (dirty: %v)\n", version, dirty)

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			fmt.Println("No migrations to run - master schema is up to date")
			if err := stampAlembicVersion(dbURL); err != nil {
				fmt.Printf("Warning: Failed to stamp alembic_version: %v\n", err)
			}
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	newVersion, _, _ := m.Version()
	fmt.Printf("Migrated to version: %d\n", newVersion)

	if err := stampAlembicVersion(dbURL); err != nil {
		fmt.Printf("Warning: Failed to stamp alembic_version: %v\n", err)
	}

	fmt.Println("Master migration complete")
	return nil
}

// alembicRevisions maps each migration file to the revision id the Python
// alembic tool records for the same schema change. alembic stores opaque
// revision hashes, not filenames, so stamping anything else would break a
// later "alembic upgrade" with an unlocatable revision. Files without an
// entry have no alembic counterpart and never move the stamp.
var alembicRevisions = map[string]string{
	// pre-address schema, the down_revision of the address migration
	"0002_create_users": "f4c5250914f6",
	// 20250919_add_address_to_users
	"0003_add_address_to_users": "3b9f0f2a1add",
}

// alembicStampFor returns the alembic revision id for the newest applied
// migration file, or "" when none of the applied files has an alembic
// counterpart.
func alembicStampFor(files []string, currentVersion int64) string {
	sort.Strings(files)

	stamp := ""
	for _, basename := range files {
		parts := strings.SplitN(basename, "_", 2)
		if len(parts) < 2 {
			continue
		}

		var fileVersion int64
		_, _ = fmt.Sscanf(parts[0], "%d", &fileVersion)
		if fileVersion > currentVersion {
			break
		}

		if rev, ok := alembicRevisions[strings.TrimSuffix(basename, ".up.sql")]; ok {
			stamp = rev
		}
	}
	return stamp
}

// stampAlembicVersion creates/updates the alembic_version table so the
// Python alembic tool recognizes migrations run by Go.
//
// golang-migrate keeps its own orchestrator_schema_migrations table (via the
// x-migrations-table parameter), so alembic_version can be stamped freely.
func stampAlembicVersion(dbURL string) error {
	sqlDB, err := sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	var currentVersion int64
	err = sqlDB.QueryRow("SELECT version FROM orchestrator_schema_migrations WHERE dirty = false LIMIT 1").Scan(&currentVersion)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil // No migrations applied yet
		}
		return fmt.Errorf("failed to get current version: %w", err)
	}

	_, err = sqlDB.Exec(`
		CREATE TABLE IF NOT EXISTS alembic_version (
			version_num varchar(64) PRIMARY KEY
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create alembic_version table: %w", err)
	}

	files, err := listMasterMigrationFiles()
	if err != nil {
		return fmt.Errorf("failed to list migration files: %w", err)
	}

	stamp := alembicStampFor(files, currentVersion)
	if stamp == "" {
		return nil
	}

	if _, err := sqlDB.Exec(`DELETE FROM alembic_version`); err != nil {
		return fmt.Errorf("failed to clear alembic_version: %w", err)
	}
	if _, err := sqlDB.Exec(`INSERT INTO alembic_version (version_num) VALUES ($1)`, stamp); err != nil {
		return fmt.Errorf("failed to stamp alembic_version: %w", err)
	}

	fmt.Println("Stamped alembic_version for alembic interoperability")
	return nil
}

func runMasterMigrationDown(steps int) error {
	cfg := getConfig()
	dbURL, err := cfg.RequireMasterDB()
	if err != nil {
		return err
	}

	m, err := createMasterMigrateInstance(withMigrationsTable(dbURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	fmt.Printf("Rolling back %d migration(s)...\n", steps)

	if err := m.Steps(-steps); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	version, _, _ := m.Version()
	fmt.Printf("Rolled back to version: %d\n", version)
	return nil
}

func showMasterMigrationStatus() error {
	cfg := getConfig()
	dbURL, err := cfg.RequireMasterDB()
	if err != nil {
		return err
	}

	m, err := createMasterMigrateInstance(withMigrationsTable(dbURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, err := m.Version()
	if err != nil {
		if err == migrate.ErrNilVersion {
			fmt.Println("No migrations have been applied yet")
			return nil
		}
		return err
	}

	fmt.Printf("Current version: %d\n", version)
	if dirty {
		fmt.Println("Warning: Database is in a dirty state")
	}
	return nil
}
