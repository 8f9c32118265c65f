package migrations

import "embed"

// FS contains embedded SQLite migrations for boardflow storage.
//
//go:embed *.sql
var FS embed.FS
