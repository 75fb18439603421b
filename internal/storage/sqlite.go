package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meltforce/liftlog/internal/models"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
	id             INTEGER PRIMARY KEY CHECK (id = 1),
	schema_version INTEGER NOT NULL,
	last_saved     TEXT
);
CREATE TABLE IF NOT EXISTS exercises (
	id           TEXT PRIMARY KEY,
	position     INTEGER NOT NULL,
	name         TEXT NOT NULL,
	type         TEXT NOT NULL,
	muscle_group TEXT NOT NULL,
	equipment    TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL,
	updated_at   TEXT
);
CREATE TABLE IF NOT EXISTS workouts (
	id          TEXT PRIMARY KEY,
	position    INTEGER NOT NULL,
	date        TEXT NOT NULL,
	exercise_id TEXT NOT NULL,
	exercise    TEXT NOT NULL,
	sets        TEXT NOT NULL,
	notes       TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	updated_at  TEXT
);
CREATE INDEX IF NOT EXISTS workouts_exercise_idx ON workouts (exercise_id);
`

// SQLite stores the snapshot in an embedded database file, one row per
// exercise and workout.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Load(ctx context.Context) (*models.Snapshot, error) {
	var (
		snap      models.Snapshot
		lastSaved sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT schema_version, last_saved FROM meta WHERE id = 1`).
		Scan(&snap.SchemaVersion, &lastSaved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading meta: %w", err)
	}
	if lastSaved.Valid {
		t, err := parseTime(lastSaved.String)
		if err != nil {
			return nil, err
		}
		snap.LastSaved = &t
	}

	if snap.Exercises, err = s.loadExercises(ctx); err != nil {
		return nil, err
	}
	if snap.Workouts, err = s.loadWorkouts(ctx); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *SQLite) loadExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, muscle_group, equipment, created_at, updated_at
		 FROM exercises ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	out := []models.Exercise{}
	for rows.Next() {
		var (
			ex        models.Exercise
			created   string
			updatedAt sql.NullString
		)
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.Type, &ex.MuscleGroup, &ex.Equipment, &created, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		if ex.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if ex.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

func (s *SQLite) loadWorkouts(ctx context.Context) ([]models.Workout, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, exercise_id, exercise, sets, notes, created_at, updated_at
		 FROM workouts ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	out := []models.Workout{}
	for rows.Next() {
		var (
			w         models.Workout
			date      string
			sets      string
			created   string
			updatedAt sql.NullString
		)
		if err := rows.Scan(&w.ID, &date, &w.ExerciseID, &w.Exercise, &sets, &w.Notes, &created, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		if w.Date, err = models.ParseDate(date); err != nil {
			return nil, fmt.Errorf("workout %s: %w", w.ID, err)
		}
		if err := json.Unmarshal([]byte(sets), &w.Sets); err != nil {
			return nil, fmt.Errorf("workout %s sets: %w", w.ID, err)
		}
		if w.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if w.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Save replaces every row in one transaction.
func (s *SQLite) Save(ctx context.Context, snap models.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM workouts`, `DELETE FROM exercises`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing tables: %w", err)
		}
	}

	for i, ex := range snap.Exercises {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO exercises (id, position, name, type, muscle_group, equipment, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ex.ID, i, ex.Name, ex.Type, ex.MuscleGroup, ex.Equipment,
			formatTime(ex.CreatedAt), formatNullTime(ex.UpdatedAt))
		if err != nil {
			return fmt.Errorf("inserting exercise %s: %w", ex.ID, err)
		}
	}

	for i, w := range snap.Workouts {
		sets, err := json.Marshal(w.Sets)
		if err != nil {
			return fmt.Errorf("encoding sets: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO workouts (id, position, date, exercise_id, exercise, sets, notes, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			w.ID, i, w.Date.String(), w.ExerciseID, w.Exercise, string(sets), w.Notes,
			formatTime(w.CreatedAt), formatNullTime(w.UpdatedAt))
		if err != nil {
			return fmt.Errorf("inserting workout %s: %w", w.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta (id, schema_version, last_saved) VALUES (1, ?, ?)`,
		snap.SchemaVersion, formatNullTime(snap.LastSaved))
	if err != nil {
		return fmt.Errorf("writing meta: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
