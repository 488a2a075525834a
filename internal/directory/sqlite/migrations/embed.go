package migrations

import "embed"

// FS holds the directory schema migrations.
//
//go:embed *.sql
var FS embed.FS
