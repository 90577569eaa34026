package migrations

import "embed"

// FS holds the versioned schema migrations compiled into the binary.
//
//go:embed *.sql
var FS embed.FS
