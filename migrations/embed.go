package migrations

import "embed"

// FS holds the bootstrap schema applied by cmd/catalogue-migrate.
//
//go:embed *.sql
var FS embed.FS
