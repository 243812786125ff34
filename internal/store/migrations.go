package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Settings table - game parameters as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Battle log - rounds of the session in progress only; cleared on reset
		`CREATE TABLE IF NOT EXISTS battle_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			round INTEGER NOT NULL CHECK(round > 0),
			player_move TEXT NOT NULL CHECK(player_move IN ('Rock', 'Paper', 'Scissors')),
			ai_move TEXT NOT NULL CHECK(ai_move IN ('Rock', 'Paper', 'Scissors')),
			outcome TEXT NOT NULL CHECK(outcome IN ('player', 'ai', 'draw')),
			substituted INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_battle_log_session_id ON battle_log(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
