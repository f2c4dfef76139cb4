// Package migrations embeds the goose SQL migrations for censusctl and integration tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
