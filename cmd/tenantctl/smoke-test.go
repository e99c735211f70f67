package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zphere-io/tenantctl/pkg/orchestrator"
	"github.com/zphere-io/tenantctl/pkg/smoketest"
)

// smokeTestCmd represents the smoke-test command
var smokeTestCmd = &cobra.Command{
	Use:   "smoke-test",
	Short: "Run a login and customer round-trip against the API",
	Long: `Run a disposable integration check against a running backend.

Authenticates via the login endpoint, then issues a tenant-scoped customer
creation and a customer list, each tagged with the tenant-identifying headers,
and prints a verdict per step. This is an operator aid, not part of the
automated test suite.

Example:
  tenantctl smoke-test
  tenantctl smoke-test --email admin@zphere.com --password admin123`,
	Run: func(cmd *cobra.Command, args []string) {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if err := runSmokeTest(email, password); err != nil {
			fmt.Fprintf(os.Stderr, "Smoke test failed: %v\n", err)
			os.Exit(orchestrator.ExitCode(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(smokeTestCmd)
	smokeTestCmd.Flags().StringP("email", "e", "admin@zphere.com", "Login email")
	smokeTestCmd.Flags().StringP("password", "p", "admin123", "Login password")
}

func runSmokeTest(email, password string) error {
	cfg := getConfig()
	if cfg.APIBaseURL == "" {
		return &orchestrator.PreconditionError{Missing: "API_BASE_URL"}
	}

	client := smoketest.NewClient(cfg.APIBaseURL)
	return client.Run(context.Background(), email, password, os.Stdout)
}
