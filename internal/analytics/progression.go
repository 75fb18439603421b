// Package analytics derives training statistics from exercises and workouts:
// one-rep-max estimates, progression recommendations, dashboard aggregates
// and chart series. Everything is recomputed from the current collections on
// each call.
package analytics

import (
	"fmt"
	"math"
	"slices"

	"github.com/meltforce/liftlog/internal/models"
)

// OneRepMax estimates the single-repetition maximum with the Epley formula.
func OneRepMax(weight float64, reps int) float64 {
	return weight * (1 + float64(reps)/30)
}

// Status is the verdict of the progression policy.
type Status string

const (
	StatusIncrease         Status = "increase"
	StatusMaintain         Status = "maintain"
	StatusDecrease         Status = "decrease"
	StatusIncreaseVolume   Status = "increase-volume"
	StatusInsufficientData Status = "insufficient-data"
)

// Thresholds of the progression policy.
const (
	upperRepTarget   = 12.0
	lowerRepTarget   = 8.0
	minWorkingReps   = 6.0
	repsDropLimit    = -20.0
	volumeGainMarker = 10.0

	smallStep = 2.5
	largeStep = 5.0
)

// ProgressionResult is the recommendation for one exercise.
type ProgressionResult struct {
	ExerciseID       string   `json:"exerciseId"`
	Exercise         string   `json:"exercise"`
	Status           Status   `json:"status"`
	Message          string   `json:"message"`
	Recommendation   string   `json:"recommendation"`
	Icon             string   `json:"icon"`
	Sessions         int      `json:"sessions"`
	CurrentMaxWeight float64  `json:"currentMaxWeight"`
	SuggestedWeight  *float64 `json:"suggestedWeight,omitempty"`
	WeightDelta      float64  `json:"weightDelta"`
	RepsDelta        float64  `json:"repsDelta"`
	VolumeDelta      float64  `json:"volumeDelta"`
}

// LoadStep returns the weight increment used for ex: 2.5 kg for dumbbell and
// cable work, 5 kg otherwise.
func LoadStep(ex models.Exercise) float64 {
	if ex.EquipmentClass().SmallIncrements() {
		return smallStep
	}
	return largeStep
}

// Progression compares the two most recent sessions of ex and recommends how
// to change the working weight. Workouts belonging to other exercises must
// already be filtered out; order does not matter.
func Progression(ex models.Exercise, workouts []models.Workout) ProgressionResult {
	res := ProgressionResult{
		ExerciseID: ex.ID,
		Exercise:   ex.Name,
		Sessions:   len(workouts),
	}
	if len(workouts) < 2 {
		res.Status = StatusInsufficientData
		res.Message = "More sessions are needed for analysis"
		res.Recommendation = "Keep training at your current weight"
		res.Icon = "info"
		if len(workouts) == 1 {
			res.CurrentMaxWeight = workouts[0].MaxWeight()
		}
		return res
	}

	sorted := sortedByDate(workouts)
	last := sorted[len(sorted)-1]
	prev := sorted[len(sorted)-2]

	lastMax, prevMax := last.MaxWeight(), prev.MaxWeight()
	lastReps, prevReps := last.AvgReps(), prev.AvgReps()
	weightDelta := percentChange(prevMax, lastMax)
	repsDelta := percentChange(prevReps, lastReps)
	volumeDelta := percentChange(prev.Volume(), last.Volume())

	res.CurrentMaxWeight = lastMax
	res.WeightDelta = round1(weightDelta)
	res.RepsDelta = round1(repsDelta)
	res.VolumeDelta = round1(volumeDelta)

	step := LoadStep(ex)
	switch {
	case lastReps >= upperRepTarget && repsDelta >= 0:
		res.Status = StatusIncrease
		res.Message = "Great progress, you are ready for more weight"
		res.Recommendation = fmt.Sprintf("Add %s kg next session", formatKg(step))
		res.Icon = "arrow-up"
		res.SuggestedWeight = ptr(lastMax + step)
	case lastReps >= lowerRepTarget && lastReps < upperRepTarget:
		res.Status = StatusMaintain
		res.Message = "Good working range"
		res.Recommendation = "Stay at the current weight and work toward 12 reps"
		res.Icon = "check"
	case lastReps < minWorkingReps || repsDelta < repsDropLimit:
		res.Status = StatusDecrease
		res.Message = "The weight is too heavy for clean technique"
		res.Recommendation = fmt.Sprintf("Drop %s kg and focus on technique", formatKg(step))
		res.Icon = "arrow-down"
		res.SuggestedWeight = ptr(lastMax - step)
	case volumeDelta > volumeGainMarker:
		res.Status = StatusIncreaseVolume
		res.Message = "Volume is growing well"
		res.Recommendation = "Add sets or reps rather than load"
		res.Icon = "trend-up"
	default:
		res.Status = StatusMaintain
		res.Message = "Stable progress"
		res.Recommendation = "Continue with the current program"
		res.Icon = "check"
	}
	return res
}

// sortedByDate returns a copy ordered by ascending date; same-day workouts
// keep their logging order.
func sortedByDate(ws []models.Workout) []models.Workout {
	out := slices.Clone(ws)
	slices.SortStableFunc(out, func(a, b models.Workout) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// percentChange is (to-from)/from in percent; a zero base yields 0.
func percentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatKg(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func ptr(v float64) *float64 { return &v }
