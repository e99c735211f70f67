package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithMigrationsTable(t *testing.T) {
	tests := []struct {
		name     string
		dbURL    string
		expected string
	}{
		{
			name:     "no query string",
			dbURL:    "postgres://db:5432/zphere_master",
			expected: "postgres://db:5432/zphere_master?x-migrations-table=orchestrator_schema_migrations",
		},
		{
			name:     "existing query string",
			dbURL:    "postgres://db:5432/zphere_master?sslmode=disable",
			expected: "postgres://db:5432/zphere_master?sslmode=disable&x-migrations-table=orchestrator_schema_migrations",
		},
		{
			name:     "empty",
			dbURL:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, withMigrationsTable(tt.dbURL))
		})
	}
}

func TestAlembicStampFor(t *testing.T) {
	files := []string{
		"0003_add_address_to_users.up.sql",
		"0001_create_organizations.up.sql",
		"0002_create_users.up.sql",
	}

	tests := []struct {
		name           string
		currentVersion int64
		expected       string
	}{
		{
			name:           "no applied file has an alembic counterpart",
			currentVersion: 1,
			expected:       "",
		},
		{
			name:           "pre-address schema",
			currentVersion: 2,
			expected:       "f4c5250914f6",
		},
		{
			name:           "head stamps the address revision hash",
			currentVersion: 3,
			expected:       "3b9f0f2a1add",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, alembicStampFor(files, tt.currentVersion))
		})
	}
}

func TestAlembicStampIsARevisionHash(t *testing.T) {
	// alembic can only locate revisions it knows; stamping a Go migration
	// filename would break a later "alembic upgrade".
	stamp := alembicStampFor([]string{"0003_add_address_to_users.up.sql"}, 3)
	assert.Equal(t, "3b9f0f2a1add", stamp)
	assert.NotContains(t, stamp, "add_address_to_users")
}

func TestCreateTenantDBArgValidation(t *testing.T) {
	err := createTenantDBCmd.Args(createTenantDBCmd, []string{})
	assert.Error(t, err, "missing organization id must be rejected")

	err = createTenantDBCmd.Args(createTenantDBCmd, []string{"  "})
	assert.Error(t, err, "blank organization id must be rejected")

	err = createTenantDBCmd.Args(createTenantDBCmd, []string{"org-1", "org-2"})
	assert.Error(t, err, "extra arguments must be rejected")

	err = createTenantDBCmd.Args(createTenantDBCmd, []string{"org-1"})
	assert.NoError(t, err)
}
