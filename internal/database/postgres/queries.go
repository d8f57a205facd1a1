package postgres

// SQL queries for PostgreSQL metadata introspection.
const (
	queryListTables = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name`
)
