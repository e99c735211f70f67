// Package orchestrator drives multi-tenant schema migrations to a consistent
// state. It owns no persistent state of its own: the master and tenant
// databases and the admin API are external collaborators, reached through a
// CLI exit code or an HTTP status, and every operation here issues exactly
// one external call and reports its outcome unambiguously.
package orchestrator
