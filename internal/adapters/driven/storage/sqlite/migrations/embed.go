// Package migrations carries the numbered schema files for the sqlite chunk
// store. NNN_name.up.sql files are applied in order; down files are kept for
// manual rollback.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
