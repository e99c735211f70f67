package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockMaster(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)

	return gdb, mock
}

func TestTenantDatabaseName(t *testing.T) {
	// The backend routes to zphere_tenant_<id> with the id verbatim, so the
	// uuid's dashes must survive.
	assert.Equal(t,
		"zphere_tenant_0540fdd7-7b68-4285-9763-d4b6f65f3821",
		TenantDatabaseName("0540fdd7-7b68-4285-9763-d4b6f65f3821"))
}

func TestTenantDatabaseURL(t *testing.T) {
	url, err := TenantDatabaseURL("postgres://app:secret@db:5432/zphere_master?sslmode=disable", "org-1")
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:secret@db:5432/zphere_tenant_org-1?sslmode=disable", url)
}

func TestNativeProvisionerOrganizationNotFound(t *testing.T) {
	gdb, mock := newMockMaster(t)

	mock.ExpectQuery(`SELECT \* FROM "organizations" WHERE id = \$1`).
		WithArgs("missing-org").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}))

	p := &NativeProvisioner{Master: gdb, MasterURL: "postgres://db/zphere_master"}
	err := p.Provision(context.Background(), "missing-org")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "organization missing-org not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNativeProvisionerSkipsCreateWhenDatabaseExists(t *testing.T) {
	gdb, mock := newMockMaster(t)

	mock.ExpectQuery(`SELECT \* FROM "organizations" WHERE id = \$1`).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).
			AddRow("org-1", "Acme", "acme"))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM pg_database WHERE datname = \$1\)`).
		WithArgs("zphere_tenant_org-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	p := &NativeProvisioner{
		Master:    gdb,
		MasterURL: "postgres://db/zphere_master",
		NewMigrate: func(dbURL string) (*migrate.Migrate, error) {
			assert.Contains(t, dbURL, "zphere_tenant_org-1")
			return nil, errors.New("stop before migrate")
		},
	}

	err := p.Provision(context.Background(), "org-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop before migrate")
	// No CREATE DATABASE was expected and none was issued.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNativeProvisionerEmptyOrgID(t *testing.T) {
	p := &NativeProvisioner{}
	err := p.Provision(context.Background(), "   ")

	var precondition *PreconditionError
	assert.True(t, errors.As(err, &precondition))
}

func TestExecProvisionerAppendsOrgID(t *testing.T) {
	p := &ExecProvisioner{
		Command: []string{"sh", "-c", `test "$1" = "org-123"`, "provision"},
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
	}

	err := p.Provision(context.Background(), "org-123")
	assert.NoError(t, err, "organization id must be appended as the final argument")
}

func TestExecProvisionerExitCodePassthrough(t *testing.T) {
	p := &ExecProvisioner{
		Command: []string{"sh", "-c", "exit 5"},
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
	}

	err := p.Provision(context.Background(), "org-123")

	var toolErr *ExternalToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, 5, toolErr.Code)
	assert.Equal(t, 5, ExitCode(err))
}

func TestExecProvisionerPreconditions(t *testing.T) {
	var precondition *PreconditionError

	err := (&ExecProvisioner{}).Provision(context.Background(), "org-123")
	assert.True(t, errors.As(err, &precondition))

	err = (&ExecProvisioner{Command: []string{"sh", "-c", "exit 0"}}).Provision(context.Background(), "")
	assert.True(t, errors.As(err, &precondition))
}

func TestOrchestratorProvisionTenant(t *testing.T) {
	// mockProvisioner via ExecProvisioner would shell out; use a stub.
	stub := &stubProvisioner{}
	o := &Orchestrator{Provisioner: stub}

	target, err := o.ProvisionTenant(context.Background(), "org-9")
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, target.LastKnownStatus)
	assert.Equal(t, 1, stub.calls)

	target, err = o.ProvisionTenant(context.Background(), "")
	var precondition *PreconditionError
	require.ErrorAs(t, err, &precondition)
	assert.Equal(t, StatusPending, target.LastKnownStatus)
	assert.Equal(t, 1, stub.calls, "provisioner must not run on a precondition failure")
}

type stubProvisioner struct {
	calls int
	err   error
}

func (s *stubProvisioner) Provision(ctx context.Context, orgID string) error {
	s.calls++
	return s.err
}
