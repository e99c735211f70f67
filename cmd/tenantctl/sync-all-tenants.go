package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/zphere-io/tenantctl/pkg/orchestrator"
)

// syncAllTenantsCmd represents the sync-all-tenants command
var syncAllTenantsCmd = &cobra.Command{
	Use:   "sync-all-tenants",
	Short: "Synchronize schema state across all tenant databases",
	Long: `Trigger the backend's bulk tenant-schema synchronization.

Requires API_BASE_URL and ADMIN_TOKEN; both are validated before any network
call. Issues exactly one POST to /admin/tenants/migrations/sync-all and
reports the aggregate result: HTTP 200 prints the JSON summary and exits 0,
any other status reports the status code and body on stderr and exits 1.
There are no retries and no partial-success interpretation.

Example:
  API_BASE_URL=http://localhost:8000/api/v1 ADMIN_TOKEN=... tenantctl sync-all-tenants`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSyncAll(); err != nil {
			fmt.Fprintf(os.Stderr, "Tenant sync failed: %v\n", err)
			os.Exit(orchestrator.ExitCode(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(syncAllTenantsCmd)
}

func runSyncAll() error {
	cfg := getConfig()
	baseURL, token, err := cfg.RequireAPICredentials()
	if err != nil {
		return err
	}

	o := &orchestrator.Orchestrator{
		Sync: &orchestrator.SyncClient{
			BaseURL:    baseURL,
			Token:      token,
			HTTPClient: &http.Client{Timeout: cfg.RequestTimeoutDuration()},
		},
	}

	result, err := o.SyncAllTenants(context.Background())
	if err != nil {
		return err
	}

	_, _ = os.Stdout.Write(result.Body)
	if n := len(result.Body); n > 0 && result.Body[n-1] != '\n' {
		fmt.Println()
	}

	// A 200 means total success by contract, but a body that still lists
	// per-tenant errors is worth flagging to the operator.
	if summary := result.Summary(); summary != nil && len(summary.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d tenant(s) reported errors inside a 200 response\n", len(summary.Errors))
	}
	return nil
}
