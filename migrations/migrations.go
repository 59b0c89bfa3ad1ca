// Package migrations embeds the schema for the local identity store, one
// directory per database driver.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
