// Package repository owns the exercise and workout collections and keeps the
// integrity rules between them. Every mutation persists a full snapshot
// through a Store.
package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// Store persists snapshots. Load returns (nil, nil) when nothing has been
// saved yet.
type Store interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snap models.Snapshot) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

// Local time: calendar dates are taken in the user's zone.
func (systemClock) Now() time.Time { return time.Now() }

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(r *Repository) { r.clock = c }
}

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(f func() string) Option {
	return func(r *Repository) { r.newID = f }
}

// Repository is the single owner of exercises and workouts for a session.
// All methods are safe for concurrent use; callers are serialized so the
// collections are never observed half-updated.
type Repository struct {
	mu        sync.RWMutex
	store     Store
	clock     Clock
	newID     func() string
	exercises []models.Exercise
	workouts  []models.Workout
	lastSaved *time.Time
}

// New creates an empty repository backed by store. Call Load before use.
func New(store Store, opts ...Option) *Repository {
	r := &Repository{
		store: store,
		clock: systemClock{},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadInfo describes what Load found in the store.
type LoadInfo struct {
	Seeded    bool
	Migrated  bool
	Exercises int
	Workouts  int
}

// Load reads the persisted snapshot once. An empty store is seeded with the
// default exercise catalog; an older snapshot is migrated and written back.
// A failed read leaves the repository empty and returns a PersistenceError.
func (r *Repository) Load(ctx context.Context) (LoadInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.store.Load(ctx)
	if err != nil {
		return LoadInfo{}, &PersistenceError{Op: "load", Err: err}
	}

	var info LoadInfo
	if snap == nil {
		r.exercises = defaultExercises(r.timestamp(), r.newID)
		r.workouts = nil
		info.Seeded = true
	} else {
		migrated, changed := MigrateSnapshot(*snap, r.timestamp, r.newID)
		r.exercises = migrated.Exercises
		r.workouts = migrated.Workouts
		r.lastSaved = migrated.LastSaved
		info.Migrated = changed
	}
	info.Exercises = len(r.exercises)
	info.Workouts = len(r.workouts)

	if info.Seeded || info.Migrated {
		return info, r.saveLocked(ctx)
	}
	return info, nil
}

// Reset discards every exercise and workout and reseeds the default catalog.
func (r *Repository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exercises = defaultExercises(r.timestamp(), r.newID)
	r.workouts = nil
	return r.saveLocked(ctx)
}

// saveLocked writes the current collections. Callers hold the write lock.
func (r *Repository) saveLocked(ctx context.Context) error {
	now := r.timestamp()
	snap := r.snapshotLocked()
	snap.LastSaved = &now
	if err := r.store.Save(ctx, snap); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	r.lastSaved = &now
	return nil
}

func (r *Repository) snapshotLocked() models.Snapshot {
	snap := models.Snapshot{
		SchemaVersion: models.SchemaVersion,
		Exercises:     append([]models.Exercise{}, r.exercises...),
		Workouts:      cloneWorkouts(r.workouts),
	}
	if r.lastSaved != nil {
		t := *r.lastSaved
		snap.LastSaved = &t
	}
	return snap
}

// Snapshot returns a deep copy of the current state.
func (r *Repository) Snapshot() models.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// LastSaved returns the time of the last successful save, if any.
func (r *Repository) LastSaved() *time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.lastSaved == nil {
		return nil
	}
	t := *r.lastSaved
	return &t
}

// Now exposes the repository clock so read-side collaborators share it.
func (r *Repository) Now() time.Time {
	return r.clock.Now()
}

// timestamp is the clock reading stored on records, normalized to UTC.
func (r *Repository) timestamp() time.Time {
	return r.clock.Now().UTC()
}

// Exercises returns all exercises in insertion order.
func (r *Repository) Exercises() []models.Exercise {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Exercise{}, r.exercises...)
}

// Workouts returns all workouts in insertion order.
func (r *Repository) Workouts() []models.Workout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneWorkouts(r.workouts)
}

// Collections returns exercises and workouts read under one lock, so the
// pair always comes from the same state.
func (r *Repository) Collections() ([]models.Exercise, []models.Workout) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Exercise{}, r.exercises...), cloneWorkouts(r.workouts)
}

// Exercise looks up an exercise by id.
func (r *Repository) Exercise(id string) (models.Exercise, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.exerciseIndexLocked(id); i >= 0 {
		return r.exercises[i], true
	}
	return models.Exercise{}, false
}

// ExerciseByName looks up an exercise by name, ignoring case.
func (r *Repository) ExerciseByName(name string) (models.Exercise, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.exerciseByNameLocked(name)
}

// Workout looks up a workout by id.
func (r *Repository) Workout(id string) (models.Workout, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.workoutIndexLocked(id); i >= 0 {
		return r.workouts[i].Clone(), true
	}
	return models.Workout{}, false
}

// WorkoutsFor returns the workouts logged against one exercise.
func (r *Repository) WorkoutsFor(exerciseID string) []models.Workout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Workout{}
	for _, w := range r.workouts {
		if w.ExerciseID == exerciseID {
			out = append(out, w.Clone())
		}
	}
	return out
}

func (r *Repository) exerciseIndexLocked(id string) int {
	for i, ex := range r.exercises {
		if ex.ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) exerciseByNameLocked(name string) (models.Exercise, bool) {
	name = strings.TrimSpace(name)
	for _, ex := range r.exercises {
		if ex.SameName(name) {
			return ex, true
		}
	}
	return models.Exercise{}, false
}

func (r *Repository) workoutIndexLocked(id string) int {
	for i, w := range r.workouts {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func cloneWorkouts(in []models.Workout) []models.Workout {
	out := make([]models.Workout, len(in))
	for i, w := range in {
		out[i] = w.Clone()
	}
	return out
}
