// Package migrations embeds the local store schema migrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
