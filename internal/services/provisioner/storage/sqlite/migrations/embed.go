// Package migrations embeds the provisioner schema migration files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
