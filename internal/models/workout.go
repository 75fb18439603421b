package models

import "time"

// MaxSets is the largest number of sets a single workout may hold.
const MaxSets = 10

// Set is one unit of work: a weight lifted for a number of repetitions.
type Set struct {
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Completed bool    `json:"completed"`
}

// Volume returns weight × reps.
func (s Set) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// Workout is one logged session of a single exercise.
//
// ExerciseID is the authoritative reference. Exercise carries the display
// name at the time of the last write and is kept in sync on rename so that
// exported files stay readable by name.
type Workout struct {
	ID         string     `json:"id"`
	Date       Date       `json:"date"`
	ExerciseID string     `json:"exerciseId,omitempty"`
	Exercise   string     `json:"exercise"`
	Sets       []Set      `json:"sets"`
	Notes      string     `json:"notes"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// MaxWeight returns the heaviest set weight, or 0 for a workout without sets.
func (w Workout) MaxWeight() float64 {
	var maxW float64
	for _, s := range w.Sets {
		if s.Weight > maxW {
			maxW = s.Weight
		}
	}
	return maxW
}

// MaxReps returns the highest rep count of any set.
func (w Workout) MaxReps() int {
	var maxR int
	for _, s := range w.Sets {
		if s.Reps > maxR {
			maxR = s.Reps
		}
	}
	return maxR
}

// AvgReps returns the mean reps per set.
func (w Workout) AvgReps() float64 {
	if len(w.Sets) == 0 {
		return 0
	}
	var total int
	for _, s := range w.Sets {
		total += s.Reps
	}
	return float64(total) / float64(len(w.Sets))
}

// Volume returns the summed weight × reps over all sets.
func (w Workout) Volume() float64 {
	var v float64
	for _, s := range w.Sets {
		v += s.Volume()
	}
	return v
}

// Clone returns a deep copy so callers cannot alias the owner's set slice.
func (w Workout) Clone() Workout {
	c := w
	c.Sets = append([]Set(nil), w.Sets...)
	if w.UpdatedAt != nil {
		t := *w.UpdatedAt
		c.UpdatedAt = &t
	}
	return c
}
