package migrations

import "embed"

// FS holds the SQL migration files applied in lexical order by Run.
//
//go:embed *.sql
var FS embed.FS
