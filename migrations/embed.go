// Package migrations embeds the Postgres schema migrations for goose.
// The API server applies them on boot; repo tests apply them in TestMain.
package migrations

import "embed"

// FS holds all *.sql migration files. Pass it to goose.NewProvider.
//
//go:embed *.sql
var FS embed.FS
