package sqlserver

// SQL queries for SQL Server metadata introspection.
const (
	queryListTables = `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`

	queryDatabaseName = `SELECT DB_NAME()`
)
