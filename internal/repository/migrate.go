package repository

import (
	"strings"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

// migrationStep upgrades a snapshot in place and reports whether it changed
// anything. Steps only fill in what is missing, so each is idempotent.
type migrationStep func(env migrationEnv, snap *models.Snapshot) bool

type migrationEnv struct {
	now   time.Time
	newID func() string
}

// migrations is ordered; migrations[i] brings a snapshot to version i+1.
var migrations = []migrationStep{
	fillMissingFields,
	linkWorkoutsByID,
}

// MigrateSnapshot brings snap up to models.SchemaVersion. Every step runs
// regardless of the recorded version because hand-edited or imported files
// may claim a version while still missing fields. It reports whether the
// result differs from the input; applying it twice yields no further change.
func MigrateSnapshot(snap models.Snapshot, now func() time.Time, newID func() string) (models.Snapshot, bool) {
	out := snap.Clone()
	env := migrationEnv{now: now(), newID: newID}

	changed := false
	for _, step := range migrations {
		if step(env, &out) {
			changed = true
		}
	}
	if out.SchemaVersion < models.SchemaVersion {
		out.SchemaVersion = models.SchemaVersion
		changed = true
	}
	if out.Exercises == nil {
		out.Exercises = []models.Exercise{}
	}
	if out.Workouts == nil {
		out.Workouts = []models.Workout{}
	}
	return out, changed
}

// fillMissingFields handles unversioned data: ids, timestamps and the
// classification defaults the first release did not record.
func fillMissingFields(env migrationEnv, snap *models.Snapshot) bool {
	changed := false
	for i := range snap.Exercises {
		ex := &snap.Exercises[i]
		if ex.ID == "" {
			ex.ID = env.newID()
			changed = true
		}
		if ex.CreatedAt.IsZero() {
			ex.CreatedAt = env.now
			changed = true
		}
		if ex.MuscleGroup == "" {
			ex.MuscleGroup = models.MuscleChest
			changed = true
		}
		if ex.Type == "" {
			ex.Type = models.TypeStrength
			changed = true
		}
		if trimmed := strings.TrimSpace(ex.Name); trimmed != ex.Name {
			ex.Name = trimmed
			changed = true
		}
	}
	for i := range snap.Workouts {
		w := &snap.Workouts[i]
		if w.ID == "" {
			w.ID = env.newID()
			changed = true
		}
		if w.CreatedAt.IsZero() {
			w.CreatedAt = env.now
			changed = true
		}
	}
	return changed
}

// linkWorkoutsByID assigns explicit equipment and moves workouts from the
// name reference to the id reference. A workout whose name matches no
// exercise adopts a new exercise of that name so the cascade invariant holds;
// a workout with neither id nor name is dropped.
func linkWorkoutsByID(env migrationEnv, snap *models.Snapshot) bool {
	changed := false
	for i := range snap.Exercises {
		if snap.Exercises[i].Equipment == "" {
			snap.Exercises[i].Equipment = models.EquipmentFromName(snap.Exercises[i].Name)
			changed = true
		}
	}

	byID := make(map[string]int, len(snap.Exercises))
	byName := make(map[string]int, len(snap.Exercises))
	for i, ex := range snap.Exercises {
		byID[ex.ID] = i
		key := strings.ToLower(ex.Name)
		if _, dup := byName[key]; !dup {
			byName[key] = i
		}
	}

	kept := snap.Workouts[:0]
	for _, w := range snap.Workouts {
		name := strings.TrimSpace(w.Exercise)
		idx, ok := byID[w.ExerciseID]
		if !ok || w.ExerciseID == "" {
			idx, ok = byName[strings.ToLower(name)]
		}
		if !ok || (name == "" && w.ExerciseID == "") {
			if name == "" {
				changed = true
				continue
			}
			id := w.ExerciseID
			if id == "" {
				id = env.newID()
			}
			snap.Exercises = append(snap.Exercises, models.Exercise{
				ID:          id,
				Name:        name,
				Type:        models.TypeStrength,
				MuscleGroup: models.MuscleChest,
				Equipment:   models.EquipmentFromName(name),
				CreatedAt:   env.now,
			})
			idx = len(snap.Exercises) - 1
			byID[id] = idx
			byName[strings.ToLower(name)] = idx
			changed = true
		}

		ex := snap.Exercises[idx]
		if w.ExerciseID != ex.ID {
			w.ExerciseID = ex.ID
			changed = true
		}
		if w.Exercise != ex.Name {
			w.Exercise = ex.Name
			changed = true
		}
		kept = append(kept, w)
	}
	snap.Workouts = kept
	return changed
}
