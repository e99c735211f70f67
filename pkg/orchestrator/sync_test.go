package orchestrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncAllSuccess(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.Equal(t, http.MethodPost, r.Method)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"synced":5}`))
	}))
	defer server.Close()

	client := &SyncClient{BaseURL: server.URL, Token: "admin-token"}
	result, err := client.SyncAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Status)
	assert.Contains(t, string(result.Body), `{"synced":5}`)
	assert.Equal(t, SyncPath, gotPath)
	assert.Equal(t, "Bearer admin-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
}

func TestSyncAllFailureReportsStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"db down"}`))
	}))
	defer server.Close()

	client := &SyncClient{BaseURL: server.URL, Token: "admin-token"}
	result, err := client.SyncAll(context.Background())

	var remote *RemoteRequestError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusInternalServerError, remote.Status)
	assert.Contains(t, remote.Error(), "500")
	assert.Contains(t, remote.Error(), "db down")
	assert.Equal(t, 1, ExitCode(err))

	// The result is still handed back for reporting.
	require.NotNil(t, result)
	assert.Equal(t, http.StatusInternalServerError, result.Status)
}

func TestSyncAllFailsFastWithoutCredentials(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	tests := []struct {
		name    string
		client  *SyncClient
		missing string
	}{
		{
			name:    "missing base URL",
			client:  &SyncClient{Token: "admin-token"},
			missing: "API_BASE_URL",
		},
		{
			name:    "missing token",
			client:  &SyncClient{BaseURL: server.URL},
			missing: "ADMIN_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.client.SyncAll(context.Background())

			var precondition *PreconditionError
			require.ErrorAs(t, err, &precondition)
			assert.Equal(t, tt.missing, precondition.Missing)
			assert.Nil(t, result)
		})
	}

	assert.Equal(t, 0, requests, "no request may be sent when a credential is missing")
}

func TestSyncResultSummary(t *testing.T) {
	result := &SyncResult{
		Status: http.StatusOK,
		Body:   []byte(`{"organizations_processed":4,"errors":[{"tenant_id":"org-1","error":"timeout"}]}`),
	}

	summary := result.Summary()
	require.NotNil(t, summary)
	assert.Equal(t, 4, summary.OrganizationsProcessed)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "org-1", summary.Errors[0].TenantID)

	malformed := &SyncResult{Status: http.StatusOK, Body: []byte(`not json`)}
	assert.Nil(t, malformed.Summary())
}
