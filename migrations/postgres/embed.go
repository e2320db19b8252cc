// Package migrations embebe los archivos SQL de migración.
package migrations

import "embed"

// FS contiene las migraciones versionadas del esquema.
// Formato de archivo: {version}_{name}.sql (ej: 0001_init.sql).
//
//go:embed *.sql
var FS embed.FS
