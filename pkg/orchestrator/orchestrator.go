package orchestrator

import "context"

// Orchestrator ties the three operations to explicit collaborators instead
// of ambient environment state, so each one can be exercised against a mock.
// All operations are strictly sequential: one external call, block, report.
type Orchestrator struct {
	Master      MasterMigrator
	Provisioner Provisioner
	Sync        *SyncClient
}

// MigrateMaster converges the master schema to head. A missing connection
// URL fails before the migrator is ever invoked and leaves the target
// pending.
func (o *Orchestrator) MigrateMaster(ctx context.Context, dbURL string) (MigrationTarget, error) {
	target := MasterTarget(dbURL)
	if dbURL == "" {
		return target, &PreconditionError{Missing: "ALEMBIC_DB_URL or DATABASE_URL"}
	}
	if err := o.Master.Migrate(ctx, dbURL); err != nil {
		target.MarkFailed()
		return target, err
	}
	target.MarkApplied()
	return target, nil
}

// ProvisionTenant creates and migrates one organization's database.
func (o *Orchestrator) ProvisionTenant(ctx context.Context, orgID string) (MigrationTarget, error) {
	target := TenantTarget(orgID)
	if orgID == "" {
		return target, &PreconditionError{Missing: "organization id"}
	}
	if err := o.Provisioner.Provision(ctx, orgID); err != nil {
		target.MarkFailed()
		return target, err
	}
	target.MarkApplied()
	return target, nil
}

// SyncAllTenants triggers the backend's bulk synchronization.
func (o *Orchestrator) SyncAllTenants(ctx context.Context) (*SyncResult, error) {
	return o.Sync.SyncAll(ctx)
}
