// Package model holds the database models the orchestrator reads and
// writes. Organizations and users live in the master database; customers
// live in each tenant database.
package model
