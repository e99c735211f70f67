// Package main implements tenantctl, the operator CLI that drives zphere
// multi-tenant schema migrations.
//
// # Architecture
//
// The tool is organized into several packages:
//
//   - pkg/orchestrator: migration targets, error taxonomy, runners and the
//     sync-all client
//   - pkg/config: explicit configuration loaded once from file and environment
//   - pkg/db: master database connection utilities
//   - pkg/model: master and tenant database models
//   - pkg/smoketest: API round-trip checks
//   - db: embedded SQL migrations
//
// # Quick Start
//
//	# Converge the master schema
//	export ALEMBIC_DB_URL=postgres://...
//	tenantctl migrate-master
//
//	# Provision one tenant database
//	tenantctl create-tenant-db 0540fdd7-7b68-4285-9763-d4b6f65f3821
//
//	# Synchronize every tenant database
//	export API_BASE_URL=http://localhost:8000/api/v1
//	export ADMIN_TOKEN=...
//	tenantctl sync-all-tenants
//
// # Environment Variables
//
//   - ALEMBIC_DB_URL: master database connection string (DATABASE_URL fallback)
//   - API_BASE_URL: backend admin API base URL
//   - ADMIN_TOKEN: admin bearer token for cross-tenant operations
//   - MIGRATION_RUNNER: external master migration command (optional)
//   - TENANT_PROVISION_CMD: external tenant provisioning command (optional)
package main
