package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - archives one row per finished or abandoned session
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('learn', 'quiz', 'mcq', 'spelling', 'snake')),
			status TEXT NOT NULL CHECK(status IN ('completed', 'abandoned')),
			target TEXT NOT NULL DEFAULT '',
			attempts INTEGER NOT NULL DEFAULT 0,
			correct INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL DEFAULT 0,
			mean_confidence REAL NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			cause TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL
		)`,

		// High scores table - one row per user and mode, max score only
		`CREATE TABLE IF NOT EXISTS high_scores (
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			achieved_at DATETIME NOT NULL,
			PRIMARY KEY (user_id, kind)
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_ended ON sessions(user_id, ended_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_kind ON sessions(user_id, kind)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
