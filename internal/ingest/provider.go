// Package ingest holds what every training-log importer reports back.
package ingest

// Result is the outcome of importing one file.
type Result struct {
	SessionsReceived int `json:"sessions_received"`

	ExercisesCreated []string `json:"exercises_created,omitempty"`

	WorkoutsInserted int `json:"workouts_inserted"`
	WorkoutsUpdated  int `json:"workouts_updated"`

	SetsReceived int `json:"sets_received"`
	SetsInserted int `json:"sets_inserted"`
	SetsSkipped  int `json:"sets_skipped"`

	// Warning is set when the data was applied in memory but not saved.
	Warning string `json:"warning,omitempty"`
	Message string `json:"message,omitempty"`
}
