package database

import "fmt"

const searchLogsSchema = `
	CREATE TABLE IF NOT EXISTS search_logs (
		id               UUID PRIMARY KEY,
		from_input       TEXT NOT NULL,
		to_input         TEXT NOT NULL,
		found            BOOLEAN NOT NULL DEFAULT FALSE,
		stop_count       INTEGER NOT NULL DEFAULT 0,
		response_time_ms BIGINT NOT NULL DEFAULT 0,
		ip_address       TEXT,
		device_type      TEXT,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_search_logs_created_at ON search_logs (created_at);
`

// EnsureSchema creates the search_logs table and its index if missing
func EnsureSchema(db DB) error {
	if _, err := db.Exec(searchLogsSchema); err != nil {
		return fmt.Errorf("error creating search_logs schema: %w", err)
	}
	return nil
}
