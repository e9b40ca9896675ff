// Package db embeds the SQL migrations applied by tripctl db migrate.
package db

import "embed"

// Migrations holds the up and down migrations for the documents schema
//
//go:embed migrations/*.sql
var Migrations embed.FS
