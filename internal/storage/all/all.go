// Package all registers every storage backend. Import it for side effects.
package all

import (
	_ "elbimport/internal/storage/dryrun"
	_ "elbimport/internal/storage/mssql"
	_ "elbimport/internal/storage/mysql"
	_ "elbimport/internal/storage/postgres"
	_ "elbimport/internal/storage/sqlite"
)
