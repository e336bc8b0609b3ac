// Package db ships the schema migrations with the binary.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
