// Package migrations embeds the goose SQL migrations that define the
// wgstats schema. They are applied on startup via app.MigrateDB.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
