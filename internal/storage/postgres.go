package storage

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meltforce/liftlog/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Postgres wraps a pgxpool.Pool and stores the snapshot as relational rows.
type Postgres struct {
	Pool *pgxpool.Pool
}

// OpenPostgres creates a connection pool and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Postgres{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	p.Pool.Close()
	return nil
}

// RunMigrations applies all pending migrations embedded in the binary.
func RunMigrations(dsn string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("opening embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context) (*models.Snapshot, error) {
	var snap models.Snapshot
	err := p.Pool.QueryRow(ctx, `SELECT schema_version, last_saved FROM liftlog_meta WHERE id = 1`).
		Scan(&snap.SchemaVersion, &snap.LastSaved)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading meta: %w", err)
	}

	rows, err := p.Pool.Query(ctx,
		`SELECT id, name, type, muscle_group, equipment, created_at, updated_at
		 FROM exercises ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	snap.Exercises, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Exercise, error) {
		var (
			ex                    models.Exercise
			typ, group, equipment string
		)
		err := row.Scan(&ex.ID, &ex.Name, &typ, &group, &equipment, &ex.CreatedAt, &ex.UpdatedAt)
		ex.Type = models.ExerciseType(typ)
		ex.MuscleGroup = models.MuscleGroup(group)
		ex.Equipment = models.Equipment(equipment)
		return ex, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning exercises: %w", err)
	}

	rows, err = p.Pool.Query(ctx,
		`SELECT id, date, exercise_id, exercise, sets, notes, created_at, updated_at
		 FROM workouts ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	snap.Workouts, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Workout, error) {
		var (
			w    models.Workout
			date time.Time
			sets []byte
		)
		if err := row.Scan(&w.ID, &date, &w.ExerciseID, &w.Exercise, &sets, &w.Notes, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return w, err
		}
		w.Date = models.NewDate(date)
		if err := json.Unmarshal(sets, &w.Sets); err != nil {
			return w, fmt.Errorf("workout %s sets: %w", w.ID, err)
		}
		return w, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning workouts: %w", err)
	}
	return &snap, nil
}

// Save replaces every row in one transaction, sending the inserts as a batch.
func (p *Postgres) Save(ctx context.Context, snap models.Snapshot) error {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM workouts`)
	batch.Queue(`DELETE FROM exercises`)
	for i, ex := range snap.Exercises {
		batch.Queue(
			`INSERT INTO exercises (id, position, name, type, muscle_group, equipment, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			ex.ID, i, ex.Name, string(ex.Type), string(ex.MuscleGroup), string(ex.Equipment),
			ex.CreatedAt, ex.UpdatedAt)
	}
	for i, w := range snap.Workouts {
		sets, err := json.Marshal(w.Sets)
		if err != nil {
			return fmt.Errorf("encoding sets: %w", err)
		}
		batch.Queue(
			`INSERT INTO workouts (id, position, date, exercise_id, exercise, sets, notes, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			w.ID, i, w.Date.Time, w.ExerciseID, w.Exercise, sets, w.Notes, w.CreatedAt, w.UpdatedAt)
	}
	batch.Queue(
		`INSERT INTO liftlog_meta (id, schema_version, last_saved) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET schema_version = EXCLUDED.schema_version, last_saved = EXCLUDED.last_saved`,
		snap.SchemaVersion, snap.LastSaved)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}
