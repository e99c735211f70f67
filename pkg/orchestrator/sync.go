package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SyncPath is the admin API route that synchronizes schema state across all
// tenant databases in a single request/response cycle.
const SyncPath = "/admin/tenants/migrations/sync-all"

// DefaultSyncTimeout bounds the single sync-all request. The backend walks
// every tenant database before answering, so this is deliberately generous.
const DefaultSyncTimeout = 5 * time.Minute

// SyncClient triggers the backend's bulk tenant-schema synchronization.
// This is a fire-and-forget operation: no retry, no pagination, no polling.
type SyncClient struct {
	BaseURL string
	Token   string

	// HTTPClient defaults to a client with DefaultSyncTimeout.
	HTTPClient *http.Client
}

// SyncResult is the outcome of one sync-all call, immutable once received.
// Body is the raw JSON document the backend returned; its shape is owned by
// the backend and only inspected best-effort via Summary.
type SyncResult struct {
	Status int
	Body   []byte
}

// SyncSummary is the best-effort parsed shape of a 200 body. Fields the
// backend did not send stay zero.
type SyncSummary struct {
	OrganizationsProcessed int         `json:"organizations_processed"`
	Errors                 []SyncError `json:"errors"`
}

// SyncError is one tenant's failure as reported inside a sync-all body.
type SyncError struct {
	TenantID string `json:"tenant_id"`
	Error    string `json:"error"`
}

// Summary parses the body into a SyncSummary, or returns nil if the body is
// not a JSON object of the expected shape.
func (r *SyncResult) Summary() *SyncSummary {
	var s SyncSummary
	if err := json.Unmarshal(r.Body, &s); err != nil {
		return nil
	}
	return &s
}

// SyncAll issues exactly one POST to the sync-all endpoint. Both credentials
// are validated before any network I/O. A 200 response is total success; any
// other status is returned as a RemoteRequestError carrying the status code
// and raw body. The SyncResult is returned alongside the error when a
// response was received at all.
func (c *SyncClient) SyncAll(ctx context.Context) (*SyncResult, error) {
	if c.BaseURL == "" {
		return nil, &PreconditionError{Missing: "API_BASE_URL"}
	}
	if c.Token == "" {
		return nil, &PreconditionError{Missing: "ADMIN_TOKEN"}
	}

	url := strings.TrimSuffix(c.BaseURL, "/") + SyncPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync-all request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultSyncTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sync-all request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync-all response: %w", err)
	}

	result := &SyncResult{Status: resp.StatusCode, Body: body}
	if resp.StatusCode != http.StatusOK {
		return result, &RemoteRequestError{Status: resp.StatusCode, Body: body}
	}
	return result, nil
}
