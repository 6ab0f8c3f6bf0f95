// Package migrations embeds the SQL migration files so the binary can
// bring a fresh database up to the current schema on boot.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
