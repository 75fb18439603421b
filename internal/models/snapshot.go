package models

import "time"

const (
	// AppName identifies LiftLog export files.
	AppName = "LiftLog"
	// AppVersion is written into export files.
	AppVersion = "2.0"
	// SchemaVersion is the snapshot schema this build reads and writes.
	SchemaVersion = 2
)

// Snapshot is the full persisted state: every exercise and workout.
// A zero SchemaVersion marks data written before versioning existed.
type Snapshot struct {
	SchemaVersion int        `json:"schemaVersion"`
	Exercises     []Exercise `json:"exercises"`
	Workouts      []Workout  `json:"workouts"`
	LastSaved     *time.Time `json:"lastSaved,omitempty"`
}

// ExportFile is the versioned backup format handed to users.
type ExportFile struct {
	App           string     `json:"app"`
	Version       string     `json:"version"`
	SchemaVersion int        `json:"schemaVersion"`
	ExportedAt    time.Time  `json:"exportedAt"`
	Exercises     []Exercise `json:"exercises"`
	Workouts      []Workout  `json:"workouts"`
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	c := Snapshot{
		SchemaVersion: s.SchemaVersion,
		Exercises:     append([]Exercise(nil), s.Exercises...),
		Workouts:      make([]Workout, len(s.Workouts)),
	}
	for i, w := range s.Workouts {
		c.Workouts[i] = w.Clone()
	}
	if s.LastSaved != nil {
		t := *s.LastSaved
		c.LastSaved = &t
	}
	return c
}
