package database

// isPostgres reports whether the active connection speaks postgres; a few
// statements (RETURNING, ON CONFLICT upserts) differ between the drivers.
func isPostgres() bool {
	return DB.DriverName() == "postgres"
}
