package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetKindString(t *testing.T) {
	assert.Equal(t, "master", TargetKindMaster.String())
	assert.Equal(t, "tenant", TargetKindTenant.String())

	kind, err := TargetKindString("tenant")
	require.NoError(t, err)
	assert.Equal(t, TargetKindTenant, kind)

	_, err = TargetKindString("replica")
	assert.Error(t, err)
}

func TestTargetLifecycle(t *testing.T) {
	target := MasterTarget("postgres://localhost/zphere_master")
	assert.Equal(t, TargetKindMaster, target.Kind)
	assert.Equal(t, StatusPending, target.LastKnownStatus)

	target.MarkApplied()
	assert.Equal(t, StatusApplied, target.LastKnownStatus)

	tenant := TenantTarget("org-123")
	assert.Equal(t, TargetKindTenant, tenant.Kind)
	assert.Equal(t, "org-123", tenant.ConnectionRef)

	tenant.MarkFailed()
	assert.Equal(t, StatusFailed, tenant.LastKnownStatus)
}
