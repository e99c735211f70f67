package integration

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/zphere-io/tenantctl/pkg/orchestrator"
)

// Organization ids are uuids in the master schema; the features refer to
// organizations by slug, mapped to fixed ids here.
var orgIDsBySlug = map[string]string{
	"acme":   "0540fdd7-7b68-4285-9763-d4b6f65f3821",
	"globex": "7be0f5e9-16cf-41c9-b9d8-25c1a61f0af5",
	"ghost":  "d9ec8c9c-8e5b-47fb-9f44-2e13e2a6f8e0", // never inserted
}

// StepsContext carries scenario state between steps.
type StepsContext struct {
	tc *TestContext

	lastErr      error
	syncResult   *orchestrator.SyncResult
	syncBaseline int64
	syncToken    string
}

func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc, syncToken: tc.AdminToken}
}

func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		s.lastErr = nil
		s.syncResult = nil
		s.syncToken = s.tc.AdminToken
		return ctx, nil
	})

	sc.Step(`^the master schema has been migrated to head$`, s.masterSchemaMigrated)
	sc.Step(`^I run the master migration$`, s.runMasterMigration)
	sc.Step(`^the master migration succeeds$`, s.masterMigrationSucceeds)
	sc.Step(`^the users table has an address column$`, s.usersTableHasAddressColumn)

	sc.Step(`^an organization "([^"]*)" exists$`, s.organizationExists)
	sc.Step(`^I provision the tenant database for "([^"]*)"$`, s.provisionTenant)
	sc.Step(`^the tenant database for "([^"]*)" exists$`, s.tenantDatabaseExists)
	sc.Step(`^the organization "([^"]*)" records its tenant database$`, s.organizationRecordsTenantDatabase)
	sc.Step(`^provisioning fails with "([^"]*)"$`, s.provisioningFailsWith)

	sc.Step(`^no admin token is configured$`, s.noAdminToken)
	sc.Step(`^I trigger a sync of all tenants$`, s.triggerSyncAll)
	sc.Step(`^the sync succeeds$`, s.syncSucceeds)
	sc.Step(`^the sync report counts (\d+) organizations?$`, s.syncReportCounts)
	sc.Step(`^the sync fails before any request is made$`, s.syncFailsBeforeRequest)
}

// withMigrationsTable keeps golang-migrate bookkeeping out of alembic_version.
func withMigrationsTable(dbURL string) string {
	if strings.Contains(dbURL, "?") {
		return dbURL + "&x-migrations-table=orchestrator_schema_migrations"
	}
	return dbURL + "?x-migrations-table=orchestrator_schema_migrations"
}

func (s *StepsContext) newMasterMigrate() (*migrate.Migrate, error) {
	source := "file://" + filepath.Join(s.tc.MigrationsDir, "master")
	return migrate.New(source, withMigrationsTable(s.tc.DatabaseURL))
}

func (s *StepsContext) newTenantMigrate(dbURL string) (*migrate.Migrate, error) {
	source := "file://" + filepath.Join(s.tc.MigrationsDir, "tenant")
	return migrate.New(source, dbURL)
}

func (s *StepsContext) masterSchemaMigrated() error {
	if err := s.runMasterMigration(); err != nil {
		return err
	}
	return s.lastErr
}

func (s *StepsContext) runMasterMigration() error {
	m, err := s.newMasterMigrate()
	if err != nil {
		s.lastErr = err
		return nil
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		s.lastErr = err
		return nil
	}
	s.lastErr = nil
	return nil
}

func (s *StepsContext) masterMigrationSucceeds() error {
	if s.lastErr != nil {
		return fmt.Errorf("master migration failed: %w", s.lastErr)
	}
	return nil
}

func (s *StepsContext) usersTableHasAddressColumn() error {
	var count int64
	err := s.tc.DB.Raw(
		`SELECT count(*) FROM information_schema.columns WHERE table_name = 'users' AND column_name = 'address'`,
	).Scan(&count).Error
	if err != nil {
		return err
	}
	if count != 1 {
		return fmt.Errorf("users.address column not found")
	}
	return nil
}

func (s *StepsContext) organizationExists(slug string) error {
	id, ok := orgIDsBySlug[slug]
	if !ok {
		return fmt.Errorf("unknown organization slug %q", slug)
	}
	return s.tc.DB.Exec(
		`INSERT INTO organizations (id, name, slug) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`,
		id, slug, slug,
	).Error
}

func (s *StepsContext) provisionTenant(slug string) error {
	id, ok := orgIDsBySlug[slug]
	if !ok {
		return fmt.Errorf("unknown organization slug %q", slug)
	}
	p := &orchestrator.NativeProvisioner{
		Master:     s.tc.DB,
		MasterURL:  s.tc.DatabaseURL,
		NewMigrate: s.newTenantMigrate,
	}
	s.lastErr = p.Provision(context.Background(), id)
	return nil
}

func (s *StepsContext) tenantDatabaseExists(slug string) error {
	if s.lastErr != nil {
		return fmt.Errorf("provisioning failed: %w", s.lastErr)
	}

	id := orgIDsBySlug[slug]
	dbName := orchestrator.TenantDatabaseName(id)

	var exists bool
	err := s.tc.DB.Raw(`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = ?)`, dbName).
		Scan(&exists).Error
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("tenant database %s does not exist", dbName)
	}
	return nil
}

func (s *StepsContext) organizationRecordsTenantDatabase(slug string) error {
	id := orgIDsBySlug[slug]

	var recorded string
	err := s.tc.DB.Raw(`SELECT settings ->> 'database_name' FROM organizations WHERE id = ?`, id).
		Scan(&recorded).Error
	if err != nil {
		return err
	}
	if recorded != orchestrator.TenantDatabaseName(id) {
		return fmt.Errorf("organization settings record %q, want %q", recorded, orchestrator.TenantDatabaseName(id))
	}
	return nil
}

func (s *StepsContext) provisioningFailsWith(fragment string) error {
	if s.lastErr == nil {
		return fmt.Errorf("expected provisioning to fail with %q, it succeeded", fragment)
	}
	if !strings.Contains(s.lastErr.Error(), fragment) {
		return fmt.Errorf("error %q does not contain %q", s.lastErr, fragment)
	}
	return nil
}

func (s *StepsContext) noAdminToken() error {
	s.syncToken = ""
	return nil
}

func (s *StepsContext) triggerSyncAll() error {
	s.syncBaseline = s.tc.SyncRequests.Load()

	client := &orchestrator.SyncClient{
		BaseURL:    s.tc.AdminAPI.URL,
		Token:      s.syncToken,
		HTTPClient: s.tc.HTTPClient,
	}
	s.syncResult, s.lastErr = client.SyncAll(context.Background())
	return nil
}

func (s *StepsContext) syncSucceeds() error {
	if s.lastErr != nil {
		return fmt.Errorf("sync failed: %w", s.lastErr)
	}
	if s.syncResult == nil || s.syncResult.Status != 200 {
		return fmt.Errorf("expected a 200 sync result, got %+v", s.syncResult)
	}
	return nil
}

func (s *StepsContext) syncReportCounts(n int) error {
	summary := s.syncResult.Summary()
	if summary == nil {
		return fmt.Errorf("sync body is not a summary: %s", s.syncResult.Body)
	}
	if summary.OrganizationsProcessed != n {
		return fmt.Errorf("sync processed %d organizations, want %d", summary.OrganizationsProcessed, n)
	}
	return nil
}

func (s *StepsContext) syncFailsBeforeRequest() error {
	var precondition *orchestrator.PreconditionError
	if !errors.As(s.lastErr, &precondition) {
		return fmt.Errorf("expected a missing-credential failure, got %v", s.lastErr)
	}
	if got := s.tc.SyncRequests.Load(); got != s.syncBaseline {
		return fmt.Errorf("a request reached the admin API despite missing credentials")
	}
	return nil
}
