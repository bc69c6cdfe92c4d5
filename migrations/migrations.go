// Package migrations embeds the SQL schema migrations applied at server start.
package migrations

import "embed"

// FS holds one directory of migrations per database driver
//
//go:embed postgres/*.sql
var FS embed.FS
