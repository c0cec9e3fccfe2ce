package store

import "fmt"

// Supported drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

func schemaFor(driver string) ([]string, error) {
	var id, ts string
	switch driver {
	case DriverSQLite:
		id, ts = "INTEGER PRIMARY KEY AUTOINCREMENT", "DATETIME"
	case DriverPostgres:
		id, ts = "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS conversations (
			id %s,
			session_id TEXT NOT NULL,
			message_type TEXT NOT NULL,
			message TEXT NOT NULL,
			response TEXT,
			matched_faq TEXT,
			created_at %s NOT NULL
		)`, id, ts),
		`CREATE INDEX IF NOT EXISTS idx_conversations_session ON conversations (session_id)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS analytics (
			id %s,
			session_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			event_data TEXT,
			created_at %s NOT NULL
		)`, id, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS feedback (
			id %s,
			session_id TEXT NOT NULL,
			message_id INTEGER,
			rating INTEGER NOT NULL,
			comment TEXT,
			created_at %s NOT NULL
		)`, id, ts),
	}, nil
}
