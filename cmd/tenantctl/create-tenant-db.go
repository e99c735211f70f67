package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zphere-io/tenantctl/pkg/db"
	"github.com/zphere-io/tenantctl/pkg/orchestrator"
)

// createTenantDBCmd represents the create-tenant-db command
var createTenantDBCmd = &cobra.Command{
	Use:   "create-tenant-db <organization-id>",
	Short: "Create and migrate a single tenant's database",
	Long: `Create a new database for an organization and migrate it to head.

The organization must already exist in the master database; the tenant
database is named zphere_tenant_<organization-id>. When TENANT_PROVISION_CMD
is set the external provisioning command is invoked with the organization id
appended, and its exit code is propagated unchanged.

Provisioning the same organization twice is not supported.

Example:
  tenantctl create-tenant-db 0540fdd7-7b68-4285-9763-d4b6f65f3821`,
	Args: cobra.MatchAll(cobra.ExactArgs(1), func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(args[0]) == "" {
			return fmt.Errorf("organization id must not be empty")
		}
		return nil
	}),
	Run: func(cmd *cobra.Command, args []string) {
		if err := provisionTenant(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create tenant database: %v\n", err)
			os.Exit(orchestrator.ExitCode(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(createTenantDBCmd)
}

func provisionTenant(orgID string) error {
	cfg := getConfig()
	ctx := context.Background()

	// External provisioner path: exit code passthrough.
	if argv := cfg.ProvisionArgv(); len(argv) > 0 {
		o := &orchestrator.Orchestrator{Provisioner: &orchestrator.ExecProvisioner{Command: argv}}
		_, err := o.ProvisionTenant(ctx, orgID)
		return err
	}

	dbURL, err := cfg.RequireMasterDB()
	if err != nil {
		return err
	}

	master, err := db.Connect(db.Config{URL: dbURL})
	if err != nil {
		return err
	}

	o := &orchestrator.Orchestrator{
		Provisioner: &orchestrator.NativeProvisioner{
			Master:     master,
			MasterURL:  dbURL,
			NewMigrate: createTenantMigrateInstance,
			Out:        os.Stdout,
		},
	}
	_, err = o.ProvisionTenant(ctx, orgID)
	return err
}
