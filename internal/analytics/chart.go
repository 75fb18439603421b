package analytics

import (
	"fmt"

	"github.com/meltforce/liftlog/internal/models"
)

// Metric selects the per-workout value plotted in a chart.
type Metric string

const (
	MetricWeight    Metric = "weight"
	MetricVolume    Metric = "volume"
	MetricReps      Metric = "reps"
	MetricOneRepMax Metric = "one-rep-max"
)

func (m Metric) Validate() error {
	switch m {
	case MetricWeight, MetricVolume, MetricReps, MetricOneRepMax:
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnknownMetric, string(m))
	}
}

func (m Metric) value(w models.Workout) float64 {
	switch m {
	case MetricVolume:
		return w.Volume()
	case MetricReps:
		return float64(w.MaxReps())
	case MetricOneRepMax:
		return round1(bestOneRepMax(w))
	default:
		return w.MaxWeight()
	}
}

// Window limits a chart to a trailing period.
type Window string

const (
	WindowAll     Window = "all"
	WindowMonth   Window = "month"
	Window3Months Window = "3months"
	Window6Months Window = "6months"
)

func (w Window) Validate() error {
	switch w {
	case WindowAll, WindowMonth, Window3Months, Window6Months:
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnknownWindow, string(w))
	}
}

// cutoff returns the earliest date inside the window, or false for all.
func (w Window) cutoff(today models.Date) (models.Date, bool) {
	months := 0
	switch w {
	case WindowMonth:
		months = 1
	case Window3Months:
		months = 3
	case Window6Months:
		months = 6
	default:
		return models.Date{}, false
	}
	return models.NewDate(today.AddDate(0, -months, 0)), true
}

// Point is one plotted workout.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is a chart-ready time series for one exercise.
type Series struct {
	ExerciseID string  `json:"exerciseId"`
	Exercise   string  `json:"exercise"`
	Metric     Metric  `json:"metric"`
	Window     Window  `json:"window"`
	Points     []Point `json:"points"`
}

// Empty reports whether no workout fell inside the window.
func (s Series) Empty() bool { return len(s.Points) == 0 }

// Labels returns the x-axis labels.
func (s Series) Labels() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Label
	}
	return out
}

// Values returns the y-axis values.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// ChartSeries builds the series for one exercise, metric and window. A window
// without workouts yields an empty series and a nil error; errors are
// reserved for unknown exercises, metrics and windows.
func (e *Engine) ChartSeries(exerciseID string, metric Metric, window Window) (Series, error) {
	if err := metric.Validate(); err != nil {
		return Series{}, err
	}
	if err := window.Validate(); err != nil {
		return Series{}, err
	}
	ex, ws, err := e.exerciseWorkouts(exerciseID)
	if err != nil {
		return Series{}, err
	}

	cutoff, limited := window.cutoff(e.today())
	var inWindow []models.Workout
	for _, w := range ws {
		if limited && w.Date.Before(cutoff) {
			continue
		}
		inWindow = append(inWindow, w)
	}

	s := Series{
		ExerciseID: ex.ID,
		Exercise:   ex.Name,
		Metric:     metric,
		Window:     window,
		Points:     []Point{},
	}
	for _, w := range sortedByDate(inWindow) {
		s.Points = append(s.Points, Point{Label: w.Date.String(), Value: metric.value(w)})
	}

	e.mu.Lock()
	cached := s
	cached.Points = append([]Point(nil), s.Points...)
	e.lastChart = &cached
	e.mu.Unlock()
	return s, nil
}

// LastChart returns the most recently built series, if any.
func (e *Engine) LastChart() (Series, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastChart == nil {
		return Series{}, false
	}
	s := *e.lastChart
	s.Points = append([]Point(nil), e.lastChart.Points...)
	return s, true
}
