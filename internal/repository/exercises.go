package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/meltforce/liftlog/internal/models"
)

// ExerciseInput is the caller-supplied part of an exercise.
// Empty Type defaults to strength, empty MuscleGroup to chest, and empty
// Equipment is inferred from the name.
type ExerciseInput struct {
	Name        string              `json:"name"`
	Type        models.ExerciseType `json:"type"`
	MuscleGroup models.MuscleGroup  `json:"muscleGroup"`
	Equipment   models.Equipment    `json:"equipment"`
}

func (in ExerciseInput) normalize() (ExerciseInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Type == "" {
		in.Type = models.TypeStrength
	}
	if in.MuscleGroup == "" {
		in.MuscleGroup = models.MuscleChest
	}
	if in.Equipment == "" && in.Name != "" {
		in.Equipment = models.EquipmentFromName(in.Name)
	}

	ve := &ValidationError{}
	if in.Name == "" {
		ve.add("name", -1, "exercise name is required")
	}
	if err := in.Type.Validate(); err != nil {
		ve.add("type", -1, "%s", err)
	}
	if err := in.MuscleGroup.Validate(); err != nil {
		ve.add("muscleGroup", -1, "%s", err)
	}
	if in.Equipment != "" {
		if err := in.Equipment.Validate(); err != nil {
			ve.add("equipment", -1, "%s", err)
		}
	}
	return in, ve.errOrNil()
}

// AddExercise creates an exercise. Names are unique ignoring case.
func (r *Repository) AddExercise(ctx context.Context, in ExerciseInput) (models.Exercise, error) {
	in, err := in.normalize()
	if err != nil {
		return models.Exercise{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.exerciseByNameLocked(in.Name); taken {
		return models.Exercise{}, fmt.Errorf("%w: %q already exists", ErrDuplicate, in.Name)
	}

	ex := models.Exercise{
		ID:          r.newID(),
		Name:        in.Name,
		Type:        in.Type,
		MuscleGroup: in.MuscleGroup,
		Equipment:   in.Equipment,
		CreatedAt:   r.timestamp(),
	}
	r.exercises = append(r.exercises, ex)
	return ex, r.saveLocked(ctx)
}

// UpdateExercise renames or reclassifies an exercise. Workouts reference the
// exercise by id, so a rename only refreshes their display name.
func (r *Repository) UpdateExercise(ctx context.Context, id string, in ExerciseInput) (models.Exercise, error) {
	in, err := in.normalize()
	if err != nil {
		return models.Exercise{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.exerciseIndexLocked(id)
	if i < 0 {
		return models.Exercise{}, fmt.Errorf("exercise %s: %w", id, ErrNotFound)
	}
	if other, taken := r.exerciseByNameLocked(in.Name); taken && other.ID != id {
		return models.Exercise{}, fmt.Errorf("%w: %q already exists", ErrDuplicate, in.Name)
	}

	now := r.timestamp()
	ex := r.exercises[i]
	ex.Name = in.Name
	ex.Type = in.Type
	ex.MuscleGroup = in.MuscleGroup
	ex.Equipment = in.Equipment
	ex.UpdatedAt = &now
	r.exercises[i] = ex

	for j := range r.workouts {
		if r.workouts[j].ExerciseID == id {
			r.workouts[j].Exercise = ex.Name
		}
	}
	return ex, r.saveLocked(ctx)
}

// RemoveExercise deletes an exercise and every workout logged against it.
// It reports false without touching the store when id is unknown.
func (r *Repository) RemoveExercise(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.exerciseIndexLocked(id)
	if i < 0 {
		return false, nil
	}
	r.exercises = append(r.exercises[:i:i], r.exercises[i+1:]...)

	kept := make([]models.Workout, 0, len(r.workouts))
	for _, w := range r.workouts {
		if w.ExerciseID != id {
			kept = append(kept, w)
		}
	}
	r.workouts = kept
	return true, r.saveLocked(ctx)
}
