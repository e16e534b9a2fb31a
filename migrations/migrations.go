// README: SQL schema files, embedded for startup and tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
