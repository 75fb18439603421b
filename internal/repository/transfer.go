package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/meltforce/liftlog/internal/models"
)

// Export returns the current state in the versioned backup format.
func (r *Repository) Export() models.ExportFile {
	snap := r.Snapshot()
	return models.ExportFile{
		App:           models.AppName,
		Version:       models.AppVersion,
		SchemaVersion: models.SchemaVersion,
		ExportedAt:    r.timestamp(),
		Exercises:     snap.Exercises,
		Workouts:      snap.Workouts,
	}
}

// WriteExport encodes Export as indented JSON.
func (r *Repository) WriteExport(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.Export()); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

// ImportInfo summarizes an accepted import.
type ImportInfo struct {
	Exercises int  `json:"exercises"`
	Workouts  int  `json:"workouts"`
	Migrated  bool `json:"migrated"`
}

// Import replaces all exercises and workouts with the contents of an export
// file. The payload must carry the LiftLog app signature and a schema version
// this build understands; otherwise ErrFormat is returned and the current
// state is left as it was. Accepted files are migrated before the swap and
// must then hold unique ids, unique exercise names and loaded sets.
func (r *Repository) Import(ctx context.Context, src io.Reader) (ImportInfo, error) {
	var f models.ExportFile
	if err := json.NewDecoder(src).Decode(&f); err != nil {
		return ImportInfo{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if f.App != models.AppName {
		return ImportInfo{}, fmt.Errorf("%w: app %q is not %s", ErrFormat, f.App, models.AppName)
	}
	if f.SchemaVersion > models.SchemaVersion {
		return ImportInfo{}, fmt.Errorf("%w: schema version %d is newer than supported %d",
			ErrFormat, f.SchemaVersion, models.SchemaVersion)
	}

	migrated, changed := MigrateSnapshot(models.Snapshot{
		SchemaVersion: f.SchemaVersion,
		Exercises:     f.Exercises,
		Workouts:      f.Workouts,
	}, r.timestamp, r.newID)
	if err := checkImported(migrated); err != nil {
		return ImportInfo{}, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.exercises = migrated.Exercises
	r.workouts = migrated.Workouts

	info := ImportInfo{
		Exercises: len(r.exercises),
		Workouts:  len(r.workouts),
		Migrated:  changed,
	}
	return info, r.saveLocked(ctx)
}

// checkImported reports every integrity problem in a migrated snapshot.
func checkImported(snap models.Snapshot) error {
	ve := &ValidationError{}
	exerciseIDs := make(map[string]bool, len(snap.Exercises))
	names := make(map[string]bool, len(snap.Exercises))
	for i, ex := range snap.Exercises {
		field := fmt.Sprintf("exercises[%d]", i)
		if exerciseIDs[ex.ID] {
			ve.add(field+".id", -1, "exercise id %q appears more than once", ex.ID)
		}
		exerciseIDs[ex.ID] = true
		key := strings.ToLower(ex.Name)
		if names[key] {
			ve.add(field+".name", -1, "exercise name %q appears more than once", ex.Name)
		}
		names[key] = true
	}

	workoutIDs := make(map[string]bool, len(snap.Workouts))
	for i, w := range snap.Workouts {
		field := fmt.Sprintf("workouts[%d]", i)
		if workoutIDs[w.ID] {
			ve.add(field+".id", -1, "workout id %q appears more than once", w.ID)
		}
		workoutIDs[w.ID] = true
		for j, set := range w.Sets {
			if set.Weight <= 0 || math.IsNaN(set.Weight) || math.IsInf(set.Weight, 0) {
				ve.add(field+".sets", j, "weight must be greater than 0")
			}
			if set.Reps <= 0 {
				ve.add(field+".sets", j, "reps must be greater than 0")
			}
		}
	}
	return ve.errOrNil()
}
