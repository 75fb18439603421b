package repository

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/meltforce/liftlog/internal/models"
)

// WorkoutInput is the caller-supplied part of a workout. The exercise may be
// given by id or by name; the id wins when both are set.
type WorkoutInput struct {
	Date       models.Date  `json:"date"`
	ExerciseID string       `json:"exerciseId"`
	Exercise   string       `json:"exercise"`
	Sets       []models.Set `json:"sets"`
	Notes      string       `json:"notes"`
}

// validateWorkoutLocked checks every rule and returns the resolved exercise.
// All violations are reported together.
func (r *Repository) validateWorkoutLocked(in WorkoutInput) (models.Exercise, error) {
	ve := &ValidationError{}

	if in.Date.IsZero() {
		ve.add("date", -1, "workout date is required")
	}

	var ex models.Exercise
	switch ref := strings.TrimSpace(in.Exercise); {
	case in.ExerciseID != "":
		i := r.exerciseIndexLocked(in.ExerciseID)
		if i < 0 {
			ve.add("exercise", -1, "exercise %s does not exist", in.ExerciseID)
		} else {
			ex = r.exercises[i]
		}
	case ref != "":
		found, ok := r.exerciseByNameLocked(ref)
		if !ok {
			ve.add("exercise", -1, "exercise %q does not exist", ref)
		}
		ex = found
	default:
		ve.add("exercise", -1, "exercise is required")
	}

	switch {
	case len(in.Sets) == 0:
		ve.add("sets", -1, "at least one set is required")
	case len(in.Sets) > models.MaxSets:
		ve.add("sets", -1, "at most %d sets are allowed", models.MaxSets)
	}
	for i, s := range in.Sets {
		if s.Weight <= 0 || math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) {
			ve.add("weight", i, "weight must be greater than zero")
		}
		if s.Reps <= 0 {
			ve.add("reps", i, "reps must be greater than zero")
		}
	}
	return ex, ve.errOrNil()
}

func (r *Repository) newWorkoutLocked(in WorkoutInput, ex models.Exercise) models.Workout {
	return models.Workout{
		ID:         r.newID(),
		Date:       in.Date,
		ExerciseID: ex.ID,
		Exercise:   ex.Name,
		Sets:       append([]models.Set(nil), in.Sets...),
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  r.timestamp(),
	}
}

// AddWorkout validates and logs a workout.
func (r *Repository) AddWorkout(ctx context.Context, in WorkoutInput) (models.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ex, err := r.validateWorkoutLocked(in)
	if err != nil {
		return models.Workout{}, err
	}
	w := r.newWorkoutLocked(in, ex)
	r.workouts = append(r.workouts, w)
	return w.Clone(), r.saveLocked(ctx)
}

// AddWorkouts logs a batch with a single save. Nothing is added unless every
// input is valid; problem fields are prefixed with the input position.
func (r *Repository) AddWorkouts(ctx context.Context, ins []WorkoutInput) ([]models.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := &ValidationError{}
	resolved := make([]models.Exercise, len(ins))
	for i, in := range ins {
		ex, err := r.validateWorkoutLocked(in)
		if ve, ok := err.(*ValidationError); ok {
			for _, p := range ve.Problems {
				p.Field = fmt.Sprintf("workouts[%d].%s", i, p.Field)
				all.Problems = append(all.Problems, p)
			}
			continue
		}
		resolved[i] = ex
	}
	if err := all.errOrNil(); err != nil {
		return nil, err
	}

	added := make([]models.Workout, 0, len(ins))
	for i, in := range ins {
		w := r.newWorkoutLocked(in, resolved[i])
		r.workouts = append(r.workouts, w)
		added = append(added, w.Clone())
	}
	if len(added) == 0 {
		return added, nil
	}
	return added, r.saveLocked(ctx)
}

// EditWorkout replaces a workout's fields, keeping its id and creation time.
func (r *Repository) EditWorkout(ctx context.Context, id string, in WorkoutInput) (models.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.workoutIndexLocked(id)
	if i < 0 {
		return models.Workout{}, fmt.Errorf("workout %s: %w", id, ErrNotFound)
	}
	ex, err := r.validateWorkoutLocked(in)
	if err != nil {
		return models.Workout{}, err
	}

	now := r.timestamp()
	w := models.Workout{
		ID:         r.workouts[i].ID,
		Date:       in.Date,
		ExerciseID: ex.ID,
		Exercise:   ex.Name,
		Sets:       append([]models.Set(nil), in.Sets...),
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  r.workouts[i].CreatedAt,
		UpdatedAt:  &now,
	}
	r.workouts[i] = w
	return w.Clone(), r.saveLocked(ctx)
}

// RemoveWorkout deletes a workout, reporting false when id is unknown.
func (r *Repository) RemoveWorkout(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.workoutIndexLocked(id)
	if i < 0 {
		return false, nil
	}
	r.workouts = append(r.workouts[:i:i], r.workouts[i+1:]...)
	return true, r.saveLocked(ctx)
}
