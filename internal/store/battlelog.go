package store

import (
	"database/sql"
	"time"
)

// BattleEntry is one resolved round of the current session.
type BattleEntry struct {
	ID          int64
	SessionID   string
	Round       int
	PlayerMove  string
	AIMove      string
	Outcome     string
	Substituted bool
	CreatedAt   time.Time
}

// BattleLogRepository provides access to the battle log.
type BattleLogRepository struct {
	db *sql.DB
}

// BattleLog returns the battle log repository for this store.
func (s *Store) BattleLog() *BattleLogRepository {
	return &BattleLogRepository{db: s.db}
}

// Append inserts an entry and sets its ID and CreatedAt.
func (r *BattleLogRepository) Append(e *BattleEntry) error {
	e.CreatedAt = time.Now()

	result, err := r.db.Exec(
		`INSERT INTO battle_log (session_id, round, player_move, ai_move, outcome, substituted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Round, e.PlayerMove, e.AIMove, e.Outcome, e.Substituted, e.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// List returns up to limit entries for a session, newest first.
// A limit of zero or less returns every entry.
func (r *BattleLogRepository) List(sessionID string, limit int) ([]*BattleEntry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, session_id, round, player_move, ai_move, outcome, substituted, created_at
		 FROM battle_log WHERE session_id = ? ORDER BY id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*BattleEntry
	for rows.Next() {
		e := &BattleEntry{}
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Round, &e.PlayerMove, &e.AIMove, &e.Outcome, &e.Substituted, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Clear deletes every entry. Only the running session is ever kept.
func (r *BattleLogRepository) Clear() error {
	_, err := r.db.Exec(`DELETE FROM battle_log`)
	return err
}

// Count returns the number of stored entries.
func (r *BattleLogRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM battle_log`).Scan(&n)
	return n, err
}
