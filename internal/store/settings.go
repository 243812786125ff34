package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Setting keys.
const (
	KeyMaxRounds     = "max_rounds"
	KeyCountdownFrom = "countdown_from"
	KeyPPerfect      = "p_perfect"
	KeyOpponent      = "opponent"
)

// Settings are the persisted game parameters.
type Settings struct {
	MaxRounds     int
	CountdownFrom int
	PPerfect      float64
	Opponent      string
}

// SettingsRepository reads and writes the settings table.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the raw value stored for key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value for key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}

// Load overlays stored values on top of defaults.
func (r *SettingsRepository) Load(defaults Settings) (Settings, error) {
	out := defaults

	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return out, err
		}

		switch key {
		case KeyMaxRounds:
			out.MaxRounds, err = strconv.Atoi(value)
		case KeyCountdownFrom:
			out.CountdownFrom, err = strconv.Atoi(value)
		case KeyPPerfect:
			out.PPerfect, err = strconv.ParseFloat(value, 64)
		case KeyOpponent:
			out.Opponent = value
		}
		if err != nil {
			return defaults, fmt.Errorf("setting %s=%q: %w", key, value, err)
		}
	}

	return out, rows.Err()
}

// Save writes every setting in one transaction.
func (r *SettingsRepository) Save(s Settings) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	values := map[string]string{
		KeyMaxRounds:     strconv.Itoa(s.MaxRounds),
		KeyCountdownFrom: strconv.Itoa(s.CountdownFrom),
		KeyPPerfect:      strconv.FormatFloat(s.PPerfect, 'f', -1, 64),
		KeyOpponent:      s.Opponent,
	}

	now := time.Now()
	for key, value := range values {
		_, err := tx.Exec(
			`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, now,
		)
		if err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return tx.Commit()
}
