package server

import (
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/meltforce/liftlog/internal/repository"
)

// ImportLog records one import, restore or ingest call.
type ImportLog struct {
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	At         time.Time `json:"at"`
	DurationMs int64     `json:"duration_ms"`
	Exercises  int       `json:"exercises"`
	Workouts   int       `json:"workouts"`
	Error      string    `json:"error,omitempty"`
}

// importLog keeps the most recent entries in memory.
type importLog struct {
	mu      sync.Mutex
	max     int
	entries []ImportLog
}

func newImportLog(size int) *importLog {
	return &importLog{max: size}
}

func (l *importLog) add(e ImportLog) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
}

// recent returns up to limit entries, newest first.
func (l *importLog) recent(limit int) []ImportLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := slices.Clone(l.entries)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Server) logImport(source string, start time.Time, exercises, workouts int, err error) {
	e := ImportLog{
		Source:     source,
		Status:     "success",
		At:         start.UTC(),
		DurationMs: time.Since(start).Milliseconds(),
		Exercises:  exercises,
		Workouts:   workouts,
	}
	switch {
	case repository.IsPersistence(err):
		e.Status = "unsaved"
		e.Error = err.Error()
	case err != nil:
		e.Status = "error"
		e.Error = err.Error()
	}
	s.imports.add(e)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.imports.recent(limit))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := fmt.Sprintf("liftlog-export-%s.json", s.repo.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := s.repo.WriteExport(w); err != nil {
		s.log.Error("export failed", "error", err)
	}
}

// handleImport replaces all data with an uploaded export file.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	info, err := s.repo.Import(r.Context(), r.Body)
	s.logImport("backup", start, info.Exercises, info.Workouts, err)
	s.respondMutation(w, http.StatusOK, "import", info, err)
}

// handleReset clears all data and reseeds the default catalog.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	err := s.repo.Reset(r.Context())
	exercises, workouts := s.repo.Collections()
	s.respondMutation(w, http.StatusOK, "reset", map[string]int{
		"exercises": len(exercises),
		"workouts":  len(workouts),
	}, err)
}

// handleAlphaIngest imports an Alpha Progression CSV export.
func (s *Server) handleAlphaIngest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	result, err := s.alpha.Ingest(r.Context(), r.Body)
	if err != nil && !repository.IsPersistence(err) {
		s.logImport("alpha", start, 0, 0, err)
		s.log.Error("alpha ingest error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.logImport("alpha", start, len(result.ExercisesCreated), result.WorkoutsInserted+result.WorkoutsUpdated, err)
	s.metrics.CounterIngestedWorkouts.Add(float64(result.WorkoutsInserted))
	s.respondMutation(w, http.StatusOK, "ingest_alpha", result, err)
}
