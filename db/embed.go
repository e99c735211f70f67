// Package db carries the embedded SQL migrations for the master and tenant
// schemas. Production builds compile them in (embed_migrations build tag);
// development builds read them from disk.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS
