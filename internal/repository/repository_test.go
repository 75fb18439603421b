package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

// testStore keeps the last saved snapshot in memory and can be told to fail.
type testStore struct {
	mu      sync.Mutex
	snap    *models.Snapshot
	saves   int
	failErr error
	loadErr error
}

func (s *testStore) Load(context.Context) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.snap == nil {
		return nil, nil
	}
	c := s.snap.Clone()
	return &c, nil
}

func (s *testStore) Save(_ context.Context, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	c := snap.Clone()
	s.snap = &c
	s.saves++
	return nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T, store *testStore) *Repository {
	t.Helper()
	r := New(store,
		WithClock(ClockFunc(func() time.Time { return fixedNow })),
		WithIDGenerator(sequentialIDs()),
	)
	if _, err := r.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return r
}

// emptyRepo returns a loaded repository with the seeded catalog removed.
func emptyRepo(t *testing.T) (*Repository, *testStore) {
	t.Helper()
	store := &testStore{snap: &models.Snapshot{SchemaVersion: models.SchemaVersion}}
	return newTestRepo(t, store), store
}

func mustAddExercise(t *testing.T, r *Repository, name string) models.Exercise {
	t.Helper()
	ex, err := r.AddExercise(context.Background(), ExerciseInput{Name: name})
	if err != nil {
		t.Fatalf("add exercise %q: %v", name, err)
	}
	return ex
}

func mustAddWorkout(t *testing.T, r *Repository, exerciseID, date string, sets ...models.Set) models.Workout {
	t.Helper()
	w, err := r.AddWorkout(context.Background(), WorkoutInput{
		Date:       models.MustParseDate(date),
		ExerciseID: exerciseID,
		Sets:       sets,
	})
	if err != nil {
		t.Fatalf("add workout: %v", err)
	}
	return w
}

// TestLoadSeedsEmptyStore verifies that first start writes the default catalog.
func TestLoadSeedsEmptyStore(t *testing.T) {
	store := &testStore{}
	r := New(store, WithIDGenerator(sequentialIDs()))
	info, err := r.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !info.Seeded {
		t.Error("expected Seeded")
	}
	if info.Exercises != len(defaultCatalog) {
		t.Errorf("exercises = %d, want %d", info.Exercises, len(defaultCatalog))
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
	if store.snap == nil || len(store.snap.Exercises) != len(defaultCatalog) {
		t.Error("seeded catalog was not persisted")
	}
	if r.LastSaved() == nil {
		t.Error("LastSaved should be set after seeding")
	}
}

// TestLoadFailureKeepsStoreIntact verifies that a read error neither seeds nor
// overwrites what the store holds.
func TestLoadFailureKeepsStoreIntact(t *testing.T) {
	store := &testStore{loadErr: errors.New("disk gone")}
	r := New(store)
	_, err := r.Load(context.Background())
	if !IsPersistence(err) {
		t.Fatalf("err = %v, want PersistenceError", err)
	}
	if store.saves != 0 {
		t.Errorf("saves = %d, want 0", store.saves)
	}
	if n := len(r.Exercises()); n != 0 {
		t.Errorf("exercises = %d, want 0", n)
	}
}

// TestAddExerciseDuplicate verifies case-insensitive name uniqueness.
func TestAddExerciseDuplicate(t *testing.T) {
	r, _ := emptyRepo(t)
	mustAddExercise(t, r, "Bench Press")

	_, err := r.AddExercise(context.Background(), ExerciseInput{Name: "  bench press "})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
	if n := len(r.Exercises()); n != 1 {
		t.Errorf("exercises = %d, want 1", n)
	}
}

// TestAddExerciseDefaults verifies defaults and equipment inference.
func TestAddExerciseDefaults(t *testing.T) {
	r, _ := emptyRepo(t)
	ex := mustAddExercise(t, r, "Dumbbell Fly")
	if ex.Type != models.TypeStrength {
		t.Errorf("type = %q, want strength", ex.Type)
	}
	if ex.MuscleGroup != models.MuscleChest {
		t.Errorf("muscle group = %q, want chest", ex.MuscleGroup)
	}
	if ex.Equipment != models.EquipmentDumbbell {
		t.Errorf("equipment = %q, want dumbbell", ex.Equipment)
	}
	if !ex.CreatedAt.Equal(fixedNow) {
		t.Errorf("createdAt = %v, want %v", ex.CreatedAt, fixedNow)
	}
}

// TestAddExerciseValidation verifies that every bad field is reported at once.
func TestAddExerciseValidation(t *testing.T) {
	r, store := emptyRepo(t)
	before := store.saves

	_, err := r.AddExercise(context.Background(), ExerciseInput{
		Name:        "   ",
		MuscleGroup: "neck",
		Equipment:   "kettlebell",
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	fields := map[string]bool{}
	for _, p := range ve.Problems {
		fields[p.Field] = true
	}
	for _, f := range []string{"name", "muscleGroup", "equipment"} {
		if !fields[f] {
			t.Errorf("missing problem for %s in %v", f, ve.Problems)
		}
	}
	if store.saves != before {
		t.Error("rejected input must not be persisted")
	}
}

// TestRemoveExerciseCascades verifies that deleting an exercise deletes its
// workouts and nothing else.
func TestRemoveExerciseCascades(t *testing.T) {
	r, _ := emptyRepo(t)
	bench := mustAddExercise(t, r, "Bench Press")
	squat := mustAddExercise(t, r, "Squat")
	mustAddWorkout(t, r, bench.ID, "2024-01-01", models.Set{Weight: 60, Reps: 10})
	mustAddWorkout(t, r, bench.ID, "2024-01-03", models.Set{Weight: 62.5, Reps: 10})
	keep := mustAddWorkout(t, r, squat.ID, "2024-01-02", models.Set{Weight: 100, Reps: 5})

	removed, err := r.RemoveExercise(context.Background(), bench.ID)
	if err != nil || !removed {
		t.Fatalf("remove = %v, %v", removed, err)
	}
	ws := r.Workouts()
	if len(ws) != 1 || ws[0].ID != keep.ID {
		t.Fatalf("workouts = %+v, want only %s", ws, keep.ID)
	}
	if _, ok := r.Exercise(bench.ID); ok {
		t.Error("exercise still present")
	}
}

// TestRemoveExerciseWithoutWorkouts verifies that an exercise with no history
// disappears without touching anything else.
func TestRemoveExerciseWithoutWorkouts(t *testing.T) {
	r, _ := emptyRepo(t)
	lonely := mustAddExercise(t, r, "Face Pull")
	other := mustAddExercise(t, r, "Row")
	w := mustAddWorkout(t, r, other.ID, "2024-01-01", models.Set{Weight: 50, Reps: 10})

	if _, err := r.RemoveExercise(context.Background(), lonely.ID); err != nil {
		t.Fatal(err)
	}
	exs := r.Exercises()
	if len(exs) != 1 || exs[0].ID != other.ID {
		t.Errorf("exercises = %+v", exs)
	}
	ws := r.Workouts()
	if len(ws) != 1 || !reflect.DeepEqual(ws[0], w) {
		t.Errorf("workouts changed: %+v", ws)
	}
}

// TestRemoveUnknownIsNoop verifies that unknown ids report false without a save.
func TestRemoveUnknownIsNoop(t *testing.T) {
	r, store := emptyRepo(t)
	before := store.saves
	if ok, err := r.RemoveExercise(context.Background(), "nope"); ok || err != nil {
		t.Errorf("RemoveExercise = %v, %v", ok, err)
	}
	if ok, err := r.RemoveWorkout(context.Background(), "nope"); ok || err != nil {
		t.Errorf("RemoveWorkout = %v, %v", ok, err)
	}
	if store.saves != before {
		t.Error("no-op removal must not save")
	}
}

// TestAddWorkoutValidation verifies the rules for workout input, including the
// reported set position and that all violations come back together.
func TestAddWorkoutValidation(t *testing.T) {
	r, _ := emptyRepo(t)
	ex := mustAddExercise(t, r, "Bench Press")

	tests := []struct {
		name   string
		in     WorkoutInput
		fields []string
		index  int
	}{
		{
			name:   "no sets",
			in:     WorkoutInput{Date: models.MustParseDate("2024-01-01"), ExerciseID: ex.ID},
			fields: []string{"sets"},
			index:  -1,
		},
		{
			name: "zero weight in second set",
			in: WorkoutInput{Date: models.MustParseDate("2024-01-01"), ExerciseID: ex.ID, Sets: []models.Set{
				{Weight: 60, Reps: 10}, {Weight: 0, Reps: 10},
			}},
			fields: []string{"weight"},
			index:  1,
		},
		{
			name:   "unknown exercise and missing date",
			in:     WorkoutInput{Exercise: "Curl", Sets: []models.Set{{Weight: 10, Reps: 10}}},
			fields: []string{"date", "exercise"},
			index:  -1,
		},
		{
			name: "too many sets",
			in: WorkoutInput{Date: models.MustParseDate("2024-01-01"), ExerciseID: ex.ID,
				Sets: make([]models.Set, models.MaxSets+1)},
			fields: []string{"sets", "weight", "reps"},
			index:  -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.AddWorkout(context.Background(), tt.in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			got := map[string]bool{}
			for _, p := range ve.Problems {
				got[p.Field] = true
			}
			for _, f := range tt.fields {
				if !got[f] {
					t.Errorf("missing %s problem in %v", f, ve.Problems)
				}
			}
			if tt.index >= 0 && ve.Problems[0].Index != tt.index {
				t.Errorf("index = %d, want %d", ve.Problems[0].Index, tt.index)
			}
		})
	}
	if n := len(r.Workouts()); n != 0 {
		t.Errorf("workouts = %d, want 0", n)
	}
}

// TestAddWorkoutByName verifies that a name reference resolves to the id.
func TestAddWorkoutByName(t *testing.T) {
	r, _ := emptyRepo(t)
	ex := mustAddExercise(t, r, "Bench Press")
	w, err := r.AddWorkout(context.Background(), WorkoutInput{
		Date:     models.MustParseDate("2024-01-01"),
		Exercise: "BENCH PRESS",
		Sets:     []models.Set{{Weight: 60, Reps: 10}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if w.ExerciseID != ex.ID || w.Exercise != "Bench Press" {
		t.Errorf("workout exercise = %s/%q", w.ExerciseID, w.Exercise)
	}
}

// TestAddWorkoutsAllOrNothing verifies that a batch with one bad entry adds nothing.
func TestAddWorkoutsAllOrNothing(t *testing.T) {
	r, store := emptyRepo(t)
	ex := mustAddExercise(t, r, "Bench Press")
	before := store.saves

	_, err := r.AddWorkouts(context.Background(), []WorkoutInput{
		{Date: models.MustParseDate("2024-01-01"), ExerciseID: ex.ID, Sets: []models.Set{{Weight: 60, Reps: 10}}},
		{Date: models.MustParseDate("2024-01-02"), ExerciseID: ex.ID},
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if ve.Problems[0].Field != "workouts[1].sets" {
		t.Errorf("field = %q, want workouts[1].sets", ve.Problems[0].Field)
	}
	if len(r.Workouts()) != 0 || store.saves != before {
		t.Error("failed batch must not change state")
	}

	added, err := r.AddWorkouts(context.Background(), []WorkoutInput{
		{Date: models.MustParseDate("2024-01-01"), ExerciseID: ex.ID, Sets: []models.Set{{Weight: 60, Reps: 10}}},
		{Date: models.MustParseDate("2024-01-02"), ExerciseID: ex.ID, Sets: []models.Set{{Weight: 60, Reps: 11}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 2 || store.saves != before+1 {
		t.Errorf("added = %d, saves = %d; want 2 added in one save", len(added), store.saves-before)
	}
}

// TestEditWorkoutPreservesIdentity verifies that edits keep id and createdAt.
func TestEditWorkoutPreservesIdentity(t *testing.T) {
	r, _ := emptyRepo(t)
	ex := mustAddExercise(t, r, "Bench Press")
	w := mustAddWorkout(t, r, ex.ID, "2024-01-01", models.Set{Weight: 60, Reps: 10})

	edited, err := r.EditWorkout(context.Background(), w.ID, WorkoutInput{
		Date:       models.MustParseDate("2024-01-02"),
		ExerciseID: ex.ID,
		Sets:       []models.Set{{Weight: 65, Reps: 8}},
		Notes:      " heavy ",
	})
	if err != nil {
		t.Fatal(err)
	}
	if edited.ID != w.ID || !edited.CreatedAt.Equal(w.CreatedAt) {
		t.Errorf("identity changed: %+v", edited)
	}
	if edited.UpdatedAt == nil {
		t.Error("updatedAt not set")
	}
	if edited.Notes != "heavy" || edited.Sets[0].Weight != 65 {
		t.Errorf("fields not replaced: %+v", edited)
	}
	if _, err := r.EditWorkout(context.Background(), "missing", WorkoutInput{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestUpdateExerciseRenamesWorkouts verifies that a rename keeps history
// linked and refreshes the display name.
func TestUpdateExerciseRenamesWorkouts(t *testing.T) {
	r, _ := emptyRepo(t)
	ex := mustAddExercise(t, r, "Bench")
	mustAddExercise(t, r, "Squat")
	mustAddWorkout(t, r, ex.ID, "2024-01-01", models.Set{Weight: 60, Reps: 10})

	updated, err := r.UpdateExercise(context.Background(), ex.ID, ExerciseInput{Name: "Bench Press"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Bench Press" || updated.UpdatedAt == nil {
		t.Errorf("updated = %+v", updated)
	}
	ws := r.WorkoutsFor(ex.ID)
	if len(ws) != 1 || ws[0].Exercise != "Bench Press" {
		t.Errorf("workouts = %+v", ws)
	}

	if _, err := r.UpdateExercise(context.Background(), ex.ID, ExerciseInput{Name: "squat"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}
	if _, err := r.UpdateExercise(context.Background(), "missing", ExerciseInput{Name: "X"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestSaveFailureKeepsMutation verifies that a failed write surfaces as a
// PersistenceError while the in-memory change stands.
func TestSaveFailureKeepsMutation(t *testing.T) {
	r, store := emptyRepo(t)
	store.failErr = errors.New("quota exceeded")

	ex, err := r.AddExercise(context.Background(), ExerciseInput{Name: "Deadlift"})
	if !IsPersistence(err) {
		t.Fatalf("err = %v, want PersistenceError", err)
	}
	if ex.ID == "" {
		t.Error("exercise should still be returned")
	}
	if _, ok := r.Exercise(ex.ID); !ok {
		t.Error("exercise should remain in memory")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error %q lost cause", err)
	}
}

// TestReadsReturnCopies verifies that callers cannot mutate repository state.
func TestReadsReturnCopies(t *testing.T) {
	r, _ := emptyRepo(t)
	ex := mustAddExercise(t, r, "Bench Press")
	mustAddWorkout(t, r, ex.ID, "2024-01-01", models.Set{Weight: 60, Reps: 10})

	ws := r.Workouts()
	ws[0].Sets[0].Weight = 999
	if got := r.Workouts()[0].Sets[0].Weight; got != 60 {
		t.Errorf("weight = %v, want 60", got)
	}
}

// TestConcurrentWrites verifies that parallel callers do not lose updates.
func TestConcurrentWrites(t *testing.T) {
	r, _ := emptyRepo(t)
	ex := mustAddExercise(t, r, "Bench Press")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.AddWorkout(context.Background(), WorkoutInput{
				Date:       models.MustParseDate("2024-01-01"),
				ExerciseID: ex.ID,
				Sets:       []models.Set{{Weight: 60, Reps: 10}},
			})
		}()
	}
	wg.Wait()
	if n := len(r.Workouts()); n != 20 {
		t.Errorf("workouts = %d, want 20", n)
	}
}

// TestClockZones verifies that the system clock reads local time while
// stored timestamps are kept in UTC.
func TestClockZones(t *testing.T) {
	if loc := (systemClock{}).Now().Location(); loc != time.Local {
		t.Errorf("system clock location = %v, want Local", loc)
	}

	pacific := time.FixedZone("PDT", -7*60*60)
	evening := time.Date(2024, 3, 10, 23, 0, 0, 0, pacific)
	r := New(&testStore{snap: &models.Snapshot{SchemaVersion: models.SchemaVersion}},
		WithClock(ClockFunc(func() time.Time { return evening })),
		WithIDGenerator(sequentialIDs()),
	)
	if _, err := r.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := models.NewDate(r.Now()).String(); got != "2024-03-10" {
		t.Errorf("today = %s, want 2024-03-10", got)
	}
	ex := mustAddExercise(t, r, "Bench Press")
	if ex.CreatedAt.Location() != time.UTC || !ex.CreatedAt.Equal(evening) {
		t.Errorf("createdAt = %s, want %s in UTC", ex.CreatedAt, evening)
	}
}

// TestMigrateSnapshotIdempotent verifies that migrating legacy data twice
// changes nothing the second time.
func TestMigrateSnapshotIdempotent(t *testing.T) {
	legacy := models.Snapshot{
		Exercises: []models.Exercise{
			{Name: "Жим гантелей"},
			{ID: "bench", Name: " Bench Press ", MuscleGroup: models.MuscleChest},
		},
		Workouts: []models.Workout{
			{Date: models.MustParseDate("2024-01-01"), Exercise: "bench press", Sets: []models.Set{{Weight: 60, Reps: 10}}},
			{Date: models.MustParseDate("2024-01-02"), Exercise: "Cable Row", Sets: []models.Set{{Weight: 40, Reps: 12}}},
			{Date: models.MustParseDate("2024-01-03"), Sets: []models.Set{{Weight: 1, Reps: 1}}},
		},
	}
	now := func() time.Time { return fixedNow }

	once, changed := MigrateSnapshot(legacy, now, sequentialIDs())
	if !changed {
		t.Fatal("expected first migration to change legacy data")
	}
	if once.SchemaVersion != models.SchemaVersion {
		t.Errorf("schema = %d, want %d", once.SchemaVersion, models.SchemaVersion)
	}
	if len(once.Workouts) != 2 {
		t.Fatalf("workouts = %d, want 2 (nameless one dropped)", len(once.Workouts))
	}
	if len(once.Exercises) != 3 {
		t.Fatalf("exercises = %d, want 3 (Cable Row adopted)", len(once.Exercises))
	}
	if once.Exercises[0].Equipment != models.EquipmentDumbbell {
		t.Errorf("equipment = %q, want dumbbell", once.Exercises[0].Equipment)
	}
	if once.Exercises[2].Equipment != models.EquipmentCable {
		t.Errorf("adopted equipment = %q, want cable", once.Exercises[2].Equipment)
	}
	if once.Workouts[0].ExerciseID != "bench" || once.Workouts[0].Exercise != "Bench Press" {
		t.Errorf("workout link = %s/%q", once.Workouts[0].ExerciseID, once.Workouts[0].Exercise)
	}

	twice, changed := MigrateSnapshot(once, now, sequentialIDs())
	if changed {
		t.Error("second migration reported a change")
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second migration altered data:\n%+v\n%+v", once, twice)
	}
	if legacy.Exercises[0].ID != "" {
		t.Error("input snapshot was mutated")
	}
}

// TestLoadMigratesAndSaves verifies that an old snapshot is upgraded on load.
func TestLoadMigratesAndSaves(t *testing.T) {
	store := &testStore{snap: &models.Snapshot{
		Exercises: []models.Exercise{{ID: "e1", Name: "Squat"}},
		Workouts:  []models.Workout{{ID: "w1", Date: models.MustParseDate("2024-01-01"), Exercise: "Squat", Sets: []models.Set{{Weight: 100, Reps: 5}}}},
	}}
	r := New(store, WithIDGenerator(sequentialIDs()))
	info, err := r.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !info.Migrated || info.Seeded {
		t.Errorf("info = %+v", info)
	}
	if store.saves != 1 || store.snap.SchemaVersion != models.SchemaVersion {
		t.Errorf("migrated snapshot not saved: saves=%d schema=%d", store.saves, store.snap.SchemaVersion)
	}
	if got := r.WorkoutsFor("e1"); len(got) != 1 {
		t.Errorf("workouts for e1 = %d, want 1", len(got))
	}
}

// TestExportImportRoundTrip verifies that an export restores the same state.
func TestExportImportRoundTrip(t *testing.T) {
	r, _ := emptyRepo(t)
	ex := mustAddExercise(t, r, "Bench Press")
	mustAddWorkout(t, r, ex.ID, "2024-01-01", models.Set{Weight: 60, Reps: 10})

	var buf bytes.Buffer
	if err := r.WriteExport(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"app": "LiftLog"`) {
		t.Errorf("export missing app signature: %s", buf.String())
	}

	other, _ := emptyRepo(t)
	info, err := other.Import(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if info.Exercises != 1 || info.Workouts != 1 || info.Migrated {
		t.Errorf("info = %+v", info)
	}
	if !reflect.DeepEqual(r.Workouts(), other.Workouts()) {
		t.Error("workouts differ after import")
	}
}

// TestImportRejectsForeignFiles verifies that non-LiftLog payloads leave the
// repository untouched.
func TestImportRejectsForeignFiles(t *testing.T) {
	r, store := emptyRepo(t)
	mustAddExercise(t, r, "Bench Press")
	before := r.Snapshot()
	saves := store.saves

	for name, payload := range map[string]string{
		"other app":     `{"app":"OtherApp","exercises":[],"workouts":[]}`,
		"not json":      `not json`,
		"future schema": `{"app":"LiftLog","schemaVersion":99,"exercises":[],"workouts":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := r.Import(context.Background(), strings.NewReader(payload))
			if !errors.Is(err, ErrFormat) {
				t.Fatalf("err = %v, want ErrFormat", err)
			}
		})
	}
	if !reflect.DeepEqual(before, r.Snapshot()) || store.saves != saves {
		t.Error("rejected import changed state")
	}
}

// TestImportRejectsInconsistentFiles verifies that duplicate ids, names
// differing only in case and unloaded sets are refused before the swap.
func TestImportRejectsInconsistentFiles(t *testing.T) {
	const head = `{"app":"LiftLog","schemaVersion":2,`
	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{
			"duplicate workout id",
			head + `"exercises":[{"id":"e1","name":"Squat"}],"workouts":[
				{"id":"w","exerciseId":"e1","date":"2024-01-01","sets":[{"weight":100,"reps":5}]},
				{"id":"w","exerciseId":"e1","date":"2024-01-02","sets":[{"weight":100,"reps":5}]}]}`,
			"workouts[1].id",
		},
		{
			"duplicate exercise id",
			head + `"exercises":[{"id":"e1","name":"Squat"},{"id":"e1","name":"Deadlift"}],"workouts":[]}`,
			"exercises[1].id",
		},
		{
			"names differ in case",
			head + `"exercises":[{"id":"e1","name":"Squat"},{"id":"e2","name":"squat"}],"workouts":[]}`,
			"exercises[1].name",
		},
		{
			"zero weight",
			head + `"exercises":[{"id":"e1","name":"Squat"}],"workouts":[
				{"id":"w","exerciseId":"e1","date":"2024-01-01","sets":[{"weight":100,"reps":5},{"weight":0,"reps":5}]}]}`,
			"workouts[0].sets",
		},
		{
			"negative reps",
			head + `"exercises":[{"id":"e1","name":"Squat"}],"workouts":[
				{"id":"w","exerciseId":"e1","date":"2024-01-01","sets":[{"weight":100,"reps":-1}]}]}`,
			"workouts[0].sets",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store := emptyRepo(t)
			mustAddExercise(t, r, "Bench Press")
			before := r.Snapshot()
			saves := store.saves

			_, err := r.Import(context.Background(), strings.NewReader(tt.payload))
			if !errors.Is(err, ErrFormat) {
				t.Fatalf("err = %v, want ErrFormat", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || len(ve.Problems) == 0 || ve.Problems[0].Field != tt.field {
				t.Errorf("problems = %+v, want first on %s", ve, tt.field)
			}
			if !reflect.DeepEqual(before, r.Snapshot()) || store.saves != saves {
				t.Error("rejected import changed state")
			}
		})
	}
}

// TestImportMigratesLegacyExport verifies that exports without ids are linked.
func TestImportMigratesLegacyExport(t *testing.T) {
	r, _ := emptyRepo(t)
	payload := `{"app":"LiftLog","version":"1.0","exercises":[{"id":"1","name":"Squat"}],
		"workouts":[{"id":"w","date":"2024-01-01T00:00:00.000Z","exercise":"Squat","sets":[{"weight":100,"reps":5}]}]}`
	info, err := r.Import(context.Background(), strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	if !info.Migrated {
		t.Error("expected migration")
	}
	ws := r.WorkoutsFor("1")
	if len(ws) != 1 || ws[0].Date.String() != "2024-01-01" {
		t.Errorf("workouts = %+v", ws)
	}
}
