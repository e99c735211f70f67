package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zphere-io/tenantctl/pkg/orchestrator"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the backend API to be ready",
	Long: `Wait for the backend API to be ready by polling its health endpoint.

This command will repeatedly check {API_BASE_URL}/health until it responds
successfully or the maximum number of retries is reached. Useful before
sync-all-tenants in deployment pipelines.

Example:
  tenantctl wait
  tenantctl wait --retries 60`,
	Run: func(cmd *cobra.Command, args []string) {
		retries, _ := cmd.Flags().GetInt("retries")

		cfg := getConfig()
		if cfg.APIBaseURL == "" {
			fmt.Fprintln(os.Stderr, "API_BASE_URL environment variable is required")
			os.Exit(1)
		}

		if err := waitForAPI(cfg.APIBaseURL, retries); err != nil {
			fmt.Fprintf(os.Stderr, "Backend did not become ready: %v\n", err)
			os.Exit(orchestrator.ExitCode(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().IntP("retries", "r", 90, "Number of retries")
}

func waitForAPI(baseURL string, retries int) error {
	url := strings.TrimSuffix(baseURL, "/") + "/health"
	client := &http.Client{Timeout: 2 * time.Second}

	fmt.Println("Waiting for the backend to be ready...")

	for i := 0; i < retries; i++ {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode < 300 {
				fmt.Println()
				fmt.Println("Backend is ready!")
				return nil
			}
		}

		fmt.Print(".")
		time.Sleep(1 * time.Second)
	}

	fmt.Println()
	return fmt.Errorf("backend is not ready after %d seconds", retries)
}
