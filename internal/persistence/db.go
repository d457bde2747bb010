// Package persistence archives finished levels in SQLite: one row per run
// plus the fear adaptation log recorded while it was played.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"fear-maze/internal/ai/fear"
	"fear-maze/internal/events"
)

// DB wraps a SQLite connection for the run archive.
type DB struct {
	conn *sqlx.DB
	now  func() time.Time
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		level_id TEXT NOT NULL,
		seed INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		elapsed REAL NOT NULL,
		keys_found INTEGER NOT NULL,
		keys_required INTEGER NOT NULL,
		health REAL NOT NULL,
		sanity REAL NOT NULL,
		stress REAL NOT NULL,
		jump_scares INTEGER NOT NULL,
		score INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS adaptations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		time REAL NOT NULL,
		tremor REAL NOT NULL,
		panic REAL NOT NULL,
		inactivity REAL NOT NULL,
		aggression REAL NOT NULL,
		stress REAL NOT NULL,
		amplifiers_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_adaptations_run ON adaptations(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Run is one archived level.
type Run struct {
	ID           string  `db:"id"`
	LevelID      string  `db:"level_id"`
	Seed         int64   `db:"seed"`
	Outcome      string  `db:"outcome"`
	Elapsed      float64 `db:"elapsed"`
	KeysFound    int     `db:"keys_found"`
	KeysRequired int     `db:"keys_required"`
	Health       float64 `db:"health"`
	Sanity       float64 `db:"sanity"`
	Stress       float64 `db:"stress"`
	JumpScares   int     `db:"jump_scares"`
	Score        int     `db:"score"`
	CreatedAt    int64   `db:"created_at"`
}

// Created returns the archive time.
func (r Run) Created() time.Time {
	return time.Unix(0, r.CreatedAt)
}

// Summary converts the row back into a level summary.
func (r Run) Summary() (events.Summary, error) {
	outcome, err := events.ParseOutcome(r.Outcome)
	if err != nil {
		return events.Summary{}, fmt.Errorf("run %s: %w", r.ID, err)
	}
	return events.Summary{
		LevelID:      r.LevelID,
		Seed:         r.Seed,
		Outcome:      outcome,
		Elapsed:      r.Elapsed,
		KeysFound:    r.KeysFound,
		KeysRequired: r.KeysRequired,
		Health:       r.Health,
		Sanity:       r.Sanity,
		Stress:       r.Stress,
		JumpScares:   r.JumpScares,
	}, nil
}

// SaveRun writes a summary and its adaptation log in one transaction and
// returns the new run id.
func (db *DB) SaveRun(s events.Summary, log []fear.Adaptation) (string, error) {
	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.Exec(`INSERT INTO runs
		(id, level_id, seed, outcome, elapsed, keys_found, keys_required,
		 health, sanity, stress, jump_scares, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.LevelID, s.Seed, s.Outcome.String(), s.Elapsed,
		s.KeysFound, s.KeysRequired, s.Health, s.Sanity, s.Stress,
		s.JumpScares, s.Score(), db.now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO adaptations
		(run_id, time, tremor, panic, inactivity, aggression, stress, amplifiers_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, a := range log {
		ampsJSON, err := json.Marshal(a.Amplifiers)
		if err != nil {
			return "", err
		}
		_, err = stmt.Exec(id, a.Time,
			a.Metrics.Tremor, a.Metrics.Panic, a.Metrics.Inactivity, a.Metrics.Aggression,
			a.Stress, string(ampsJSON),
		)
		if err != nil {
			return "", fmt.Errorf("insert adaptation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return runs, err
}

type adaptationRow struct {
	Time       float64 `db:"time"`
	Tremor     float64 `db:"tremor"`
	Panic      float64 `db:"panic"`
	Inactivity float64 `db:"inactivity"`
	Aggression float64 `db:"aggression"`
	Stress     float64 `db:"stress"`
	Amplifiers string  `db:"amplifiers_json"`
}

// Adaptations returns the adaptation log of a run, oldest first.
func (db *DB) Adaptations(runID string) ([]fear.Adaptation, error) {
	var rows []adaptationRow
	err := db.conn.Select(&rows,
		`SELECT time, tremor, panic, inactivity, aggression, stress, amplifiers_json
		 FROM adaptations WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, err
	}

	log := make([]fear.Adaptation, 0, len(rows))
	for _, r := range rows {
		a := fear.Adaptation{
			Time: r.Time,
			Metrics: fear.Metrics{
				Tremor:     r.Tremor,
				Panic:      r.Panic,
				Inactivity: r.Inactivity,
				Aggression: r.Aggression,
			},
			Stress: r.Stress,
		}
		if err := json.Unmarshal([]byte(r.Amplifiers), &a.Amplifiers); err != nil {
			return nil, fmt.Errorf("decode amplifiers: %w", err)
		}
		log = append(log, a)
	}
	return log, nil
}

// Stats aggregates the whole archive.
type Stats struct {
	Runs      int `db:"runs"`
	Victories int `db:"victories"`
	BestScore int `db:"best"`
}

// Stats returns archive totals.
func (db *DB) Stats() (Stats, error) {
	var s Stats
	err := db.conn.Get(&s, `SELECT
		COUNT(*) AS runs,
		COALESCE(SUM(CASE WHEN outcome = 'victory' THEN 1 ELSE 0 END), 0) AS victories,
		COALESCE(MAX(score), 0) AS best
		FROM runs`)
	return s, err
}
