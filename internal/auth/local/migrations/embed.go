package migrations

import "embed"

// FS holds the account schema migrations.
//
//go:embed *.sql
var FS embed.FS
