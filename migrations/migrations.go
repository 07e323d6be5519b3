// Package migrations embeds the SQL schema of each service.
package migrations

import "embed"

// Timesheet holds the ordered up/down migrations of the timesheet service.
//
//go:embed timesheet/*.sql
var Timesheet embed.FS
