// Package db ships the SQL schema migrations compiled into the binaries.
package db

import "embed"

// Migrations holds the golang-migrate up/down files under migrations/
//
//go:embed migrations/*.sql
var Migrations embed.FS
