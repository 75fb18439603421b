package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/liftlog/internal/analytics"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/repository"
)

const maxBodyBytes = 10 << 20

// mutationResponse wraps the result of a write. Warning is set when the
// change was applied but could not be saved.
type mutationResponse struct {
	Data    any    `json:"data"`
	Warning string `json:"warning,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if t := s.repo.LastSaved(); t != nil {
		resp["last_saved"] = t
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Exercises ---

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.repo.Exercises())
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ex, ok := s.repo.Exercise(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var in repository.ExerciseInput
	if !decodeBody(w, r, &in) {
		return
	}
	ex, err := s.repo.AddExercise(r.Context(), in)
	s.respondMutation(w, http.StatusCreated, "add_exercise", ex, err)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	var in repository.ExerciseInput
	if !decodeBody(w, r, &in) {
		return
	}
	ex, err := s.repo.UpdateExercise(r.Context(), chi.URLParam(r, "id"), in)
	s.respondMutation(w, http.StatusOK, "update_exercise", ex, err)
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	removed, err := s.repo.RemoveExercise(r.Context(), chi.URLParam(r, "id"))
	if err == nil && !removed {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	s.respondMutation(w, http.StatusOK, "remove_exercise", map[string]bool{"removed": removed}, err)
}

func (s *Server) handleExerciseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.ExerciseStats(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Progression(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	metric := analytics.Metric(queryDefault(q.Get("metric"), string(analytics.MetricWeight)))
	window := analytics.Window(queryDefault(q.Get("window"), string(analytics.WindowAll)))

	series, err := s.engine.ChartSeries(chi.URLParam(r, "id"), metric, window)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// --- Workouts ---

// handleListWorkouts returns workouts newest first, optionally filtered by
// exercise (id or name) and an inclusive from/to date range.
func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := parseDateRange(q.Get("from"), q.Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var workouts []models.Workout
	if ref := strings.TrimSpace(q.Get("exercise")); ref != "" {
		ex, ok := s.repo.Exercise(ref)
		if !ok {
			ex, ok = s.repo.ExerciseByName(ref)
		}
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
			return
		}
		workouts = s.repo.WorkoutsFor(ex.ID)
	} else {
		workouts = s.repo.Workouts()
	}

	out := make([]models.Workout, 0, len(workouts))
	for _, wo := range workouts {
		if !from.IsZero() && wo.Date.Before(from) {
			continue
		}
		if !to.IsZero() && wo.Date.After(to) {
			continue
		}
		out = append(out, wo)
	}
	slices.SortStableFunc(out, func(a, b models.Workout) int { return b.Date.Compare(a.Date) })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRecentWorkouts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 5)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.engine.RecentWorkouts(limit))
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	wo, ok := s.repo.Workout(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

func (s *Server) handleAddWorkout(w http.ResponseWriter, r *http.Request) {
	var in repository.WorkoutInput
	if !decodeBody(w, r, &in) {
		return
	}
	wo, err := s.repo.AddWorkout(r.Context(), in)
	s.respondMutation(w, http.StatusCreated, "add_workout", wo, err)
}

func (s *Server) handleAddWorkouts(w http.ResponseWriter, r *http.Request) {
	var ins []repository.WorkoutInput
	if !decodeBody(w, r, &ins) {
		return
	}
	added, err := s.repo.AddWorkouts(r.Context(), ins)
	s.respondMutation(w, http.StatusCreated, "add_workouts", added, err)
}

func (s *Server) handleEditWorkout(w http.ResponseWriter, r *http.Request) {
	var in repository.WorkoutInput
	if !decodeBody(w, r, &in) {
		return
	}
	wo, err := s.repo.EditWorkout(r.Context(), chi.URLParam(r, "id"), in)
	s.respondMutation(w, http.StatusOK, "edit_workout", wo, err)
}

func (s *Server) handleRemoveWorkout(w http.ResponseWriter, r *http.Request) {
	removed, err := s.repo.RemoveWorkout(r.Context(), chi.URLParam(r, "id"))
	if err == nil && !removed {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	s.respondMutation(w, http.StatusOK, "remove_workout", map[string]bool{"removed": removed}, err)
}

// --- Analytics ---

func (s *Server) handleGeneralStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.GeneralStats())
}

func (s *Server) handleExerciseProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.ExerciseProgress())
}

func (s *Server) handleProgressions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Progressions())
}

func (s *Server) handleLastChart(w http.ResponseWriter, r *http.Request) {
	series, ok := s.engine.LastChart()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no chart computed yet"})
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleOneRepMax(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	weight, err := strconv.ParseFloat(q.Get("weight"), 64)
	if err != nil || weight <= 0 || math.IsInf(weight, 0) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight must be a positive number"})
		return
	}
	reps, err := strconv.Atoi(q.Get("reps"))
	if err != nil || reps <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reps must be a positive integer"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"weight":    weight,
		"reps":      reps,
		"oneRepMax": math.Round(analytics.OneRepMax(weight, reps)*10) / 10,
	})
}

// --- Helpers ---

// respondMutation writes the result of a repository write. A persistence
// failure still reports the applied change, with a warning.
func (s *Server) respondMutation(w http.ResponseWriter, status int, op string, v any, err error) {
	if err != nil && !repository.IsPersistence(err) {
		s.writeError(w, err)
		return
	}
	s.metrics.RecordMutation(op, err != nil)
	s.observeCollections()

	resp := mutationResponse{Data: v}
	if err != nil {
		s.log.Warn("change not persisted", "op", op, "error", err)
		resp.Warning = "saved in memory only: " + err.Error()
	}
	writeJSON(w, status, resp)
}

// writeError maps domain errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ve *repository.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":    ve.Error(),
			"problems": ve.Problems,
		})
	case errors.Is(err, repository.ErrDuplicate):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, analytics.ErrUnknownExercise):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrFormat),
		errors.Is(err, analytics.ErrUnknownMetric),
		errors.Is(err, analytics.ErrUnknownWindow):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func queryDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}

// parseDateRange parses optional YYYY-MM-DD bounds. Missing bounds are zero.
func parseDateRange(fromStr, toStr string) (from, to models.Date, err error) {
	if fromStr != "" {
		if from, err = models.ParseDate(fromStr); err != nil {
			return models.Date{}, models.Date{}, err
		}
	}
	if toStr != "" {
		if to, err = models.ParseDate(toStr); err != nil {
			return models.Date{}, models.Date{}, err
		}
	}
	return from, to, nil
}
