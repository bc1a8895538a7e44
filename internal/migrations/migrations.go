// Package migrations embeds the goose SQL migrations so the binary can
// bring the schema up to date at startup without shipping loose files.
package migrations

import "embed"

// Files holds the embedded SQL migration files.
//
//go:embed sql/*.sql
var Files embed.FS
