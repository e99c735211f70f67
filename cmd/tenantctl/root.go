package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/zphere-io/tenantctl/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "tenantctl",
	Short: "Drive zphere multi-tenant schema migrations",
	Long: `tenantctl drives multi-tenant schema migrations to a consistent state.

It converges the master database schema, provisions per-organization tenant
databases and triggers the backend's bulk tenant synchronization, reporting
outcomes unambiguously for operators and automation pipelines.`,
}

var (
	cfgOnce sync.Once
	cfg     *config.Config
)

// getConfig loads configuration once at startup and hands every command the
// same value.
func getConfig() *config.Config {
	cfgOnce.Do(func() {
		loaded, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	})
	return cfg
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
