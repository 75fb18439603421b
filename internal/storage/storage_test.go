package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/meltforce/liftlog/internal/config"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/repository"
)

func sampleSnapshot() models.Snapshot {
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	saved := time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
	return models.Snapshot{
		SchemaVersion: models.SchemaVersion,
		Exercises: []models.Exercise{
			{ID: "squat", Name: "Squat", Type: models.TypeStrength, MuscleGroup: models.MuscleLegs,
				Equipment: models.EquipmentBarbell, CreatedAt: created},
			{ID: "curl", Name: "Dumbbell Curl", Type: models.TypeAccessory, MuscleGroup: models.MuscleArms,
				Equipment: models.EquipmentDumbbell, CreatedAt: created, UpdatedAt: &updated},
		},
		Workouts: []models.Workout{
			{ID: "w1", Date: models.MustParseDate("2024-05-01"), ExerciseID: "squat", Exercise: "Squat",
				Sets: []models.Set{{Weight: 100, Reps: 5, Completed: true}, {Weight: 102.5, Reps: 3}},
				Notes: "felt strong", CreatedAt: created},
			{ID: "w2", Date: models.MustParseDate("2024-05-02"), ExerciseID: "curl", Exercise: "Dumbbell Curl",
				Sets: []models.Set{{Weight: 12.5, Reps: 12}}, CreatedAt: created, UpdatedAt: &updated},
		},
		LastSaved: &saved,
	}
}

func roundTrip(t *testing.T, store repository.Store) {
	t.Helper()
	ctx := context.Background()

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if got != nil {
		t.Fatalf("empty store returned %+v, want nil", got)
	}

	want := sampleSnapshot()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || !reflect.DeepEqual(*got, want) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}

	// A second save replaces rather than appends.
	want.Workouts = want.Workouts[:1]
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if len(got.Workouts) != 1 {
		t.Errorf("workouts = %d, want 1", len(got.Workouts))
	}
}

// TestMemoryRoundTrip verifies the in-memory store.
func TestMemoryRoundTrip(t *testing.T) {
	roundTrip(t, NewMemory())
}

// TestFileRoundTrip verifies the JSON file store and that no temp files are left behind.
func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenFile(filepath.Join(dir, "nested", "liftlog.json"))
	if err != nil {
		t.Fatal(err)
	}
	roundTrip(t, store)

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the snapshot", len(entries))
	}
}

// TestFileCorrupt verifies that an unreadable snapshot is reported, not treated as empty.
func TestFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liftlog.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

// TestSQLiteRoundTrip verifies the embedded database store, including reopen.
func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liftlog.db")
	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	roundTrip(t, store)
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	got, err := reopened.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got.Exercises) != 2 || got.Workouts[0].Sets[1].Weight != 102.5 {
		t.Errorf("reopened snapshot = %+v", got)
	}
}

type fakeObjects struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

// TestS3RoundTrip verifies the object store against a fake bucket.
func TestS3RoundTrip(t *testing.T) {
	fake := &fakeObjects{objects: map[string][]byte{}}
	roundTrip(t, newS3(fake, "backups", ""))
	if _, ok := fake.objects["backups/liftlog/snapshot.json"]; !ok {
		t.Errorf("object not written under default key: %v", fake.objects)
	}
}

// TestS3SaveError verifies that put failures surface to the caller.
func TestS3SaveError(t *testing.T) {
	fake := &fakeObjects{objects: map[string][]byte{}, putErr: errors.New("access denied")}
	err := newS3(fake, "backups", "k").Save(context.Background(), sampleSnapshot())
	if err == nil {
		t.Fatal("expected error")
	}
}

// TestOpen verifies driver selection for the local backends.
func TestOpen(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	tests := []struct {
		cfg  config.StorageConfig
		want any
	}{
		{config.StorageConfig{Driver: config.DriverMemory}, &Memory{}},
		{config.StorageConfig{Driver: config.DriverFile, Path: filepath.Join(dir, "a.json")}, &File{}},
		{config.StorageConfig{Driver: config.DriverSQLite, Path: filepath.Join(dir, "a.db")}, &SQLite{}},
	}
	for _, tt := range tests {
		b, err := Open(context.Background(), tt.cfg, logger)
		if err != nil {
			t.Fatalf("%s: %v", tt.cfg.Driver, err)
		}
		if reflect.TypeOf(b) != reflect.TypeOf(tt.want) {
			t.Errorf("%s: got %T", tt.cfg.Driver, b)
		}
		b.Close()
	}

	if _, err := Open(context.Background(), config.StorageConfig{Driver: "tape"}, logger); err == nil {
		t.Error("expected error for unknown driver")
	}
}

// TestRepositoryOverSQLite verifies that a repository persists across restarts.
func TestRepositoryOverSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liftlog.db")
	ctx := context.Background()

	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.New(store)
	if _, err := repo.Load(ctx); err != nil {
		t.Fatal(err)
	}
	ex, err := repo.AddExercise(ctx, repository.ExerciseInput{Name: "Front Squat"})
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	again := repository.New(store)
	info, err := again.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info.Seeded || info.Migrated {
		t.Errorf("info = %+v, want plain load", info)
	}
	if _, ok := again.Exercise(ex.ID); !ok {
		t.Error("exercise lost across restart")
	}
}
