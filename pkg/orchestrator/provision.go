package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/zphere-io/tenantctl/pkg/model"
)

// Provisioner creates and migrates a single tenant's database. Provisioning
// the same organization twice is not supported.
type Provisioner interface {
	Provision(ctx context.Context, orgID string) error
}

// ExecProvisioner shells out to an external provisioning command, appending
// the organization id as the final argument. Exit codes pass through.
type ExecProvisioner struct {
	Command []string
	Stdout  io.Writer
	Stderr  io.Writer
}

func (p *ExecProvisioner) Provision(ctx context.Context, orgID string) error {
	if len(p.Command) == 0 {
		return &PreconditionError{Missing: "tenant provision command"}
	}
	if strings.TrimSpace(orgID) == "" {
		return &PreconditionError{Missing: "organization id"}
	}

	argv := append(append([]string{}, p.Command...), orgID)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExternalToolError{Command: argv[0], Code: exitErr.ExitCode(), Err: err}
		}
		return &ExternalToolError{Command: argv[0], Code: 1, Err: err}
	}
	return nil
}

// TenantDatabaseName returns the database name for an organization. The id
// is kept verbatim, dashes included, because the backend routes to
// zphere_tenant_<id> as-is; the identifier is quoted wherever it is used.
func TenantDatabaseName(orgID string) string {
	return "zphere_tenant_" + orgID
}

// TenantDatabaseURL rewrites the master connection URL to point at the
// organization's tenant database.
func TenantDatabaseURL(masterURL, orgID string) (string, error) {
	u, err := url.Parse(masterURL)
	if err != nil {
		return "", fmt.Errorf("invalid master database URL: %w", err)
	}
	u.Path = "/" + TenantDatabaseName(orgID)
	return u.String(), nil
}

// NativeProvisioner provisions the tenant database in-process: it verifies
// the organization exists in the master DB, creates the database if absent,
// migrates it to head and records the database name in the organization's
// settings so the backend starts routing to it.
type NativeProvisioner struct {
	Master    *gorm.DB
	MasterURL string

	// NewMigrate returns a migrate instance for the tenant database URL.
	NewMigrate func(dbURL string) (*migrate.Migrate, error)

	Out io.Writer
}

func (p *NativeProvisioner) Provision(ctx context.Context, orgID string) error {
	if strings.TrimSpace(orgID) == "" {
		return &PreconditionError{Missing: "organization id"}
	}

	var org model.Organization
	err := p.Master.WithContext(ctx).Where("id = ?", orgID).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("organization %s not found", orgID)
	}
	if err != nil {
		return fmt.Errorf("failed to look up organization: %w", err)
	}

	dbName := TenantDatabaseName(orgID)

	var exists bool
	if err := p.Master.WithContext(ctx).
		Raw(`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = ?)`, dbName).
		Scan(&exists).Error; err != nil {
		return fmt.Errorf("failed to check for tenant database: %w", err)
	}
	if !exists {
		// CREATE DATABASE cannot take bind parameters.
		if err := p.Master.WithContext(ctx).
			Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName)).Error; err != nil {
			return fmt.Errorf("failed to create tenant database %s: %w", dbName, err)
		}
	}

	tenantURL, err := TenantDatabaseURL(p.MasterURL, orgID)
	if err != nil {
		return err
	}

	m, err := p.NewMigrate(tenantURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("tenant migration failed: %w", err)
	}

	settings, err := json.Marshal(map[string]interface{}{
		"database_created": true,
		"database_name":    dbName,
	})
	if err != nil {
		return err
	}
	if err := p.Master.WithContext(ctx).
		Exec(`UPDATE organizations SET settings = COALESCE(settings, '{}'::jsonb) || ?::jsonb WHERE id = ?`,
			string(settings), orgID).Error; err != nil {
		return fmt.Errorf("failed to record tenant database on organization: %w", err)
	}

	if p.Out != nil {
		fmt.Fprintf(p.Out, "Created tenant database %s for organization %s\n", dbName, org.Name)
	}
	return nil
}
