package checkpoint

import "embed"

// MigrationsFS embeds the goose migration scripts that create the
// Postgres-backed checkpoint store's schema, so cmd/orchestratord can
// apply them at startup without a separate migration step.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
