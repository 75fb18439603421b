package analytics

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

var (
	ErrUnknownExercise = errors.New("unknown exercise")
	ErrUnknownMetric   = errors.New("unknown metric")
	ErrUnknownWindow   = errors.New("unknown window")
)

// Source is the read side of the repository the engine works from.
// Collections returns both collections from one consistent state; every
// engine call reads it exactly once.
type Source interface {
	Collections() ([]models.Exercise, []models.Workout)
	Now() time.Time
}

// Engine answers statistics queries against a Source. It keeps no derived
// state apart from the most recent chart series.
type Engine struct {
	src Source

	mu        sync.Mutex
	lastChart *Series
}

func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// BestLift names the exercise holding the heaviest single set.
type BestLift struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// GeneralStats is the dashboard summary across all exercises.
type GeneralStats struct {
	TotalWorkouts   int      `json:"totalWorkouts"`
	TotalExercises  int      `json:"totalExercises"`
	BestExercise    BestLift `json:"bestExercise"`
	AvgProgress     float64  `json:"avgProgress"`
	Recommendations int      `json:"recommendations"`
	TotalVolume     float64  `json:"totalVolume"`
	AvgVolume       float64  `json:"avgVolume"`
	WorkoutsPerWeek float64  `json:"workoutsPerWeek"`
	MonthProgress   float64  `json:"monthProgress"`
}

// ProgressStatus tags the direction of an exercise's long-run progress.
type ProgressStatus string

const (
	ProgressPositive     ProgressStatus = "positive"
	ProgressNegative     ProgressStatus = "negative"
	ProgressInsufficient ProgressStatus = "insufficient-data"
)

// ExerciseProgress is the first-to-last max-weight change of one exercise.
// Progress is clamped at zero for display; Change keeps the sign.
type ExerciseProgress struct {
	ExerciseID string         `json:"exerciseId"`
	Exercise   string         `json:"exercise"`
	Progress   float64        `json:"progress"`
	Change     float64        `json:"change"`
	Status     ProgressStatus `json:"status"`
}

// ExerciseStats is the detail panel for a single exercise.
type ExerciseStats struct {
	ExerciseID    string            `json:"exerciseId"`
	Exercise      string            `json:"exercise"`
	TotalWorkouts int               `json:"totalWorkouts"`
	MaxWeight     float64           `json:"maxWeight"`
	AvgVolume     float64           `json:"avgVolume"`
	MonthProgress float64           `json:"monthProgress"`
	BestOneRepMax float64           `json:"bestOneRepMax"`
	Progression   ProgressionResult `json:"progression"`
}

// RecentWorkout is a workout paired with a human-readable age.
type RecentWorkout struct {
	models.Workout
	When string `json:"when"`
}

const monthDays = 30

// today is the current calendar date according to the source clock.
func (e *Engine) today() models.Date {
	return models.NewDate(e.src.Now())
}

// GeneralStats aggregates every workout.
func (e *Engine) GeneralStats() GeneralStats {
	exercises, workouts := e.src.Collections()

	stats := GeneralStats{
		TotalWorkouts:  len(workouts),
		TotalExercises: len(exercises),
		BestExercise:   BestLift{Name: "-"},
	}

	for _, w := range workouts {
		if m := w.MaxWeight(); m > stats.BestExercise.Weight {
			stats.BestExercise = BestLift{Name: w.Exercise, Weight: m}
		}
		stats.TotalVolume += w.Volume()
	}
	if stats.TotalWorkouts > 0 {
		stats.AvgVolume = stats.TotalVolume / float64(stats.TotalWorkouts)
	}

	grouped := groupByExercise(workouts)
	var sum float64
	var defined int
	for _, ex := range exercises {
		ws := grouped[ex.ID]
		if p := progressFor(ex, ws); p.Status != ProgressInsufficient {
			sum += p.Progress
			defined++
		}
		if Progression(ex, ws).Status == StatusIncrease {
			stats.Recommendations++
		}
	}
	if defined > 0 {
		stats.AvgProgress = round1(sum / float64(defined))
	}

	stats.WorkoutsPerWeek = workoutsPerWeek(workouts)
	stats.MonthProgress = round1(trailingProgress(workouts, e.today()))
	return stats
}

// ExerciseProgress reports progress for every exercise in catalog order.
func (e *Engine) ExerciseProgress() []ExerciseProgress {
	exercises, workouts := e.src.Collections()
	grouped := groupByExercise(workouts)
	out := make([]ExerciseProgress, 0, len(exercises))
	for _, ex := range exercises {
		out = append(out, progressFor(ex, grouped[ex.ID]))
	}
	return out
}

// Progression runs the recommendation policy for one exercise.
func (e *Engine) Progression(exerciseID string) (ProgressionResult, error) {
	ex, ws, err := e.exerciseWorkouts(exerciseID)
	if err != nil {
		return ProgressionResult{}, err
	}
	return Progression(ex, ws), nil
}

// Progressions runs the policy for every exercise in catalog order.
func (e *Engine) Progressions() []ProgressionResult {
	exercises, workouts := e.src.Collections()
	grouped := groupByExercise(workouts)
	out := make([]ProgressionResult, 0, len(exercises))
	for _, ex := range exercises {
		out = append(out, Progression(ex, grouped[ex.ID]))
	}
	return out
}

// ExerciseStats summarizes one exercise's history.
func (e *Engine) ExerciseStats(exerciseID string) (ExerciseStats, error) {
	ex, ws, err := e.exerciseWorkouts(exerciseID)
	if err != nil {
		return ExerciseStats{}, err
	}
	st := ExerciseStats{
		ExerciseID:    ex.ID,
		Exercise:      ex.Name,
		TotalWorkouts: len(ws),
		Progression:   Progression(ex, ws),
	}
	var volume float64
	for _, w := range ws {
		st.MaxWeight = math.Max(st.MaxWeight, w.MaxWeight())
		st.BestOneRepMax = math.Max(st.BestOneRepMax, bestOneRepMax(w))
		volume += w.Volume()
	}
	if len(ws) > 0 {
		st.AvgVolume = round1(volume / float64(len(ws)))
	}
	st.BestOneRepMax = round1(st.BestOneRepMax)
	st.MonthProgress = round1(trailingProgress(ws, e.today()))
	return st, nil
}

// RecentWorkouts returns up to limit workouts, newest first, labelled with
// their age relative to today.
func (e *Engine) RecentWorkouts(limit int) []RecentWorkout {
	_, ws := e.src.Collections()
	slices.SortStableFunc(ws, func(a, b models.Workout) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(ws) > limit {
		ws = ws[:limit]
	}
	today := e.today()
	out := make([]RecentWorkout, len(ws))
	for i, w := range ws {
		out[i] = RecentWorkout{Workout: w, When: RelativeDay(w.Date, today)}
	}
	return out
}

// RelativeDay labels d relative to today: "today", "yesterday", "N days ago",
// "N weeks ago" under a month, then "N months ago". Future dates fall back to
// the plain date.
func RelativeDay(d, today models.Date) string {
	days := d.DaysUntil(today)
	switch {
	case days < 0:
		return d.String()
	case days == 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < monthDays:
		return plural(days/7, "week") + " ago"
	default:
		return plural(days/monthDays, "month") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func (e *Engine) exerciseWorkouts(exerciseID string) (models.Exercise, []models.Workout, error) {
	exercises, workouts := e.src.Collections()
	for _, ex := range exercises {
		if ex.ID != exerciseID {
			continue
		}
		var ws []models.Workout
		for _, w := range workouts {
			if w.ExerciseID == exerciseID {
				ws = append(ws, w)
			}
		}
		return ex, ws, nil
	}
	return models.Exercise{}, nil, fmt.Errorf("%w: %s", ErrUnknownExercise, exerciseID)
}

func groupByExercise(ws []models.Workout) map[string][]models.Workout {
	out := make(map[string][]models.Workout)
	for _, w := range ws {
		out[w.ExerciseID] = append(out[w.ExerciseID], w)
	}
	return out
}

func progressFor(ex models.Exercise, ws []models.Workout) ExerciseProgress {
	p := ExerciseProgress{ExerciseID: ex.ID, Exercise: ex.Name, Status: ProgressInsufficient}
	if len(ws) < 2 {
		return p
	}
	sorted := sortedByDate(ws)
	change := percentChange(sorted[0].MaxWeight(), sorted[len(sorted)-1].MaxWeight())
	p.Change = round1(change)
	p.Progress = round1(math.Max(0, change))
	if change > 0 {
		p.Status = ProgressPositive
	} else {
		p.Status = ProgressNegative
	}
	return p
}

// workoutsPerWeek divides the count by the whole weeks between the earliest
// and latest workout, never by less than one week.
func workoutsPerWeek(ws []models.Workout) float64 {
	if len(ws) == 0 {
		return 0
	}
	first, last := ws[0].Date, ws[0].Date
	for _, w := range ws[1:] {
		if w.Date.Before(first) {
			first = w.Date
		}
		if w.Date.After(last) {
			last = w.Date
		}
	}
	weeks := math.Ceil(float64(first.DaysUntil(last)) / 7)
	if weeks < 1 {
		weeks = 1
	}
	return round1(float64(len(ws)) / weeks)
}

// trailingProgress is the max-weight change between the first and last
// workout dated within the last 30 days.
func trailingProgress(ws []models.Workout, today models.Date) float64 {
	cutoff := models.NewDate(today.AddDate(0, 0, -monthDays))
	var recent []models.Workout
	for _, w := range ws {
		if !w.Date.Before(cutoff) {
			recent = append(recent, w)
		}
	}
	if len(recent) < 2 {
		return 0
	}
	recent = sortedByDate(recent)
	return percentChange(recent[0].MaxWeight(), recent[len(recent)-1].MaxWeight())
}

func bestOneRepMax(w models.Workout) float64 {
	var best float64
	for _, s := range w.Sets {
		best = math.Max(best, OneRepMax(s.Weight, s.Reps))
	}
	return best
}
