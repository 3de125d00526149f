package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per interaction session
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL CHECK(mode IN ('pointer', 'gesture')),
			policy TEXT NOT NULL CHECK(policy IN ('zone', 'progress')),
			outcome TEXT NOT NULL CHECK(outcome IN ('active', 'completed', 'abandoned')),
			progress REAL NOT NULL DEFAULT 0,
			completed_body TEXT NOT NULL DEFAULT '',
			completed_zone TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Session labels table - the bodies and zones of each session, in order
		`CREATE TABLE IF NOT EXISTS session_labels (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			kind TEXT NOT NULL CHECK(kind IN ('body', 'zone')),
			position INTEGER NOT NULL,
			label TEXT NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_session_labels_session_id ON session_labels(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
