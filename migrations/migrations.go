// Package migrations embeds the SQL schema migrations.
package migrations

import "embed"

// FS holds the up/down migration files read by golang-migrate.
//
//go:embed *.sql
var FS embed.FS
