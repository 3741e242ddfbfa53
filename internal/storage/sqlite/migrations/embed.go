package migrations

import "embed"

// FS contains embedded SQLite migrations for the scenario archive.
//
//go:embed *.sql
var FS embed.FS
