//go:build !embed_migrations

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	masterMigrationsPath = "db/migrations/master"
	tenantMigrationsPath = "db/migrations/tenant"
)

func createMasterMigrateInstance(dbURL string) (*migrate.Migrate, error) {
	fmt.Printf("Running migrations from file://%s\n", masterMigrationsPath)
	return migrate.New("file://"+masterMigrationsPath, dbURL)
}

func createTenantMigrateInstance(dbURL string) (*migrate.Migrate, error) {
	return migrate.New("file://"+tenantMigrationsPath, dbURL)
}

func listMasterMigrationFiles() ([]string, error) {
	entries, err := os.ReadDir(masterMigrationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
