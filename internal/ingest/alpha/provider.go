package alpha

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/meltforce/liftlog/internal/ingest"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/repository"
)

// Provider maps Alpha Progression exports onto the repository. Each
// exercise in a session becomes one workout holding its working sets.
type Provider struct {
	repo *repository.Repository
	log  *slog.Logger
}

func NewProvider(repo *repository.Repository, log *slog.Logger) *Provider {
	return &Provider{repo: repo, log: log}
}

// Ingest parses a CSV export and logs its workouts. Exercises missing from
// the catalog are created. Entries for the same exercise on the same date
// are merged into one workout, and a workout already logged for that
// exercise and date is overwritten so re-imports reflect the latest export.
//
// When a save fails after the data was applied, the result is still
// returned together with the *repository.PersistenceError.
func (p *Provider) Ingest(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	res := &ingest.Result{SessionsReceived: len(sessions)}
	var persistErr error
	keep := func(err error) error {
		if repository.IsPersistence(err) {
			if persistErr == nil {
				persistErr = err
			}
			return nil
		}
		return err
	}

	// One workout per exercise and date: repeated entries in the same file
	// are merged in file order.
	var planned []repository.WorkoutInput
	pending := make(map[string]int)
	for _, s := range sessions {
		date := models.NewDate(s.Date)
		for _, ex := range s.Exercises {
			sets, skipped := workingSets(ex)
			res.SetsReceived += len(sets) + skipped
			res.SetsSkipped += skipped
			if len(sets) == 0 {
				continue
			}

			exercise, created, err := p.ensureExercise(ctx, ex, s.Name)
			if err := keep(err); err != nil {
				return nil, err
			}
			if created {
				res.ExercisesCreated = append(res.ExercisesCreated, exercise.Name)
			}

			key := exercise.ID + "|" + date.String()
			i, seen := pending[key]
			if !seen {
				pending[key] = len(planned)
				planned = append(planned, repository.WorkoutInput{
					Date:       date,
					ExerciseID: exercise.ID,
					Sets:       sets,
					Notes:      s.Name,
				})
				continue
			}
			in := &planned[i]
			room := models.MaxSets - len(in.Sets)
			if len(sets) > room {
				res.SetsSkipped += len(sets) - room
				sets = sets[:room]
			}
			in.Sets = append(in.Sets, sets...)
			if s.Name != "" && !strings.Contains(in.Notes, s.Name) {
				in.Notes = strings.TrimPrefix(in.Notes+" / "+s.Name, " / ")
			}
		}
	}

	var inserts []repository.WorkoutInput
	for _, in := range planned {
		res.SetsInserted += len(in.Sets)
		existing, ok := p.loggedOn(in.ExerciseID, in.Date)
		if !ok {
			inserts = append(inserts, in)
			continue
		}
		if _, err := p.repo.EditWorkout(ctx, existing.ID, in); keep(err) != nil {
			return nil, fmt.Errorf("updating %s on %s: %w", existing.Exercise, in.Date, err)
		}
		res.WorkoutsUpdated++
	}

	added, err := p.repo.AddWorkouts(ctx, inserts)
	if err := keep(err); err != nil {
		return nil, fmt.Errorf("logging workouts: %w", err)
	}
	res.WorkoutsInserted = len(added)

	p.log.Info("alpha import",
		"sessions", res.SessionsReceived,
		"workouts_inserted", res.WorkoutsInserted,
		"workouts_updated", res.WorkoutsUpdated,
		"exercises_created", len(res.ExercisesCreated),
		"sets_skipped", res.SetsSkipped,
	)
	if persistErr != nil {
		res.Warning = persistErr.Error()
		return res, persistErr
	}
	return res, nil
}

// workingSets converts the loaded working sets. Warmups are dropped without
// counting; unloaded sets (bodyweight only, zero reps) and sets past
// models.MaxSets are counted as skipped.
func workingSets(ex Exercise) ([]models.Set, int) {
	var (
		out     []models.Set
		skipped int
	)
	for _, s := range ex.WorkingSets() {
		if s.WeightKg <= 0 || s.Reps <= 0 || len(out) == models.MaxSets {
			skipped++
			continue
		}
		out = append(out, models.Set{Weight: s.WeightKg, Reps: s.Reps, Completed: true})
	}
	return out, skipped
}

func (p *Provider) ensureExercise(ctx context.Context, ex Exercise, session string) (models.Exercise, bool, error) {
	if found, ok := p.repo.ExerciseByName(ex.Name); ok {
		return found, false, nil
	}
	created, err := p.repo.AddExercise(ctx, repository.ExerciseInput{
		Name:        ex.Name,
		MuscleGroup: muscleGroupFor(session),
		Equipment:   equipmentFor(ex.Equipment),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		// created concurrently
		found, _ := p.repo.ExerciseByName(ex.Name)
		return found, false, nil
	}
	if err != nil && !repository.IsPersistence(err) {
		return models.Exercise{}, false, fmt.Errorf("creating exercise %q: %w", ex.Name, err)
	}
	return created, true, err
}

func (p *Provider) loggedOn(exerciseID string, date models.Date) (models.Workout, bool) {
	for _, w := range p.repo.WorkoutsFor(exerciseID) {
		if w.Date.Equal(date.Time) {
			return w, true
		}
	}
	return models.Workout{}, false
}

// equipmentFor maps the app's equipment labels. Unknown labels return ""
// so the repository infers equipment from the name.
func equipmentFor(label string) models.Equipment {
	switch strings.ToLower(label) {
	case "barbell", "ez bar", "trap bar":
		return models.EquipmentBarbell
	case "dumbbell", "dumbbells":
		return models.EquipmentDumbbell
	case "cable", "cables":
		return models.EquipmentCable
	case "machine", "smith machine":
		return models.EquipmentMachine
	case "bodyweight":
		return models.EquipmentBodyweight
	default:
		return ""
	}
}

// muscleGroupFor guesses the muscle group from the session's split name,
// e.g. "Legs · Day 2 · Week 4". Unrecognised splits return "".
func muscleGroupFor(session string) models.MuscleGroup {
	split, _, _ := strings.Cut(session, "·")
	switch strings.ToLower(strings.TrimSpace(split)) {
	case "legs", "lower":
		return models.MuscleLegs
	case "push", "chest":
		return models.MuscleChest
	case "pull", "back":
		return models.MuscleBack
	case "arms":
		return models.MuscleArms
	case "shoulders":
		return models.MuscleShoulders
	case "core", "abs":
		return models.MuscleCore
	default:
		return ""
	}
}
