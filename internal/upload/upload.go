// Package upload pushes a folder of training-app exports to a remote LiftLog
// server, remembering what was already sent.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/meltforce/liftlog/internal/ingest/alpha"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	SessionsSent     int
	WorkoutsInserted int
	WorkoutsUpdated  int
	SetsSkipped      int

	ExercisesCreated []string
	Warnings         []string
}

// Uploader walks a directory of Alpha Progression CSV exports and sends
// every new or changed file to the server.
type Uploader struct {
	client *Client
	state  *StateDB
	root   string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader.
func New(client *Client, state *StateDB, root string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		root:   root,
		dryRun: dryRun,
		log:    log,
	}
}

// Run executes the upload. Per-file problems are counted and logged; an
// unreachable server stops the run.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	if !u.dryRun {
		if err := u.client.Ping(ctx); err != nil {
			return &u.stats, err
		}
	}

	files, err := exportFiles(u.root)
	if err != nil {
		return &u.stats, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		if err := u.processFile(ctx, f); err != nil {
			return &u.stats, fmt.Errorf("pushing %s: %w", f, err)
		}
	}
	return &u.stats, nil
}

// exportFiles lists *.csv files below root in lexical order.
func exportFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

func (u *Uploader) processFile(ctx context.Context, path string) error {
	u.stats.FilesTotal++

	relPath, _ := filepath.Rel(u.root, path)
	data, err := os.ReadFile(path)
	if err != nil {
		u.log.Warn("read failed", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	hash, size := hashBytes(data), int64(len(data))

	pushed, err := u.state.IsPushed(u.client.Server(), relPath, size, hash)
	if err != nil {
		u.log.Warn("state check failed", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	if pushed {
		u.stats.FilesSkipped++
		return nil
	}

	// Parse locally first so a malformed file never reaches the server.
	sessions, err := alpha.Parse(bytes.NewReader(data))
	if err != nil {
		u.log.Warn("parse failed", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	if len(sessions) == 0 {
		u.stats.FilesSkipped++
		if !u.dryRun {
			_ = u.state.MarkPushed(u.client.Server(), relPath, size, hash)
		}
		return nil
	}

	if u.dryRun {
		u.log.Info("dry-run: would send", "file", relPath, "sessions", len(sessions))
		u.stats.SessionsSent += len(sessions)
		u.stats.FilesUploaded++
		return nil
	}

	res, err := u.client.PushAlpha(ctx, data)
	if errors.Is(err, ErrRejected) {
		u.log.Warn("server rejected file", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return nil
	}
	if err != nil {
		return err
	}

	if err := u.state.MarkPushed(u.client.Server(), relPath, size, hash); err != nil {
		u.log.Warn("recording push failed", "file", relPath, "error", err)
	}
	u.stats.FilesUploaded++
	u.stats.SessionsSent += res.SessionsReceived
	u.stats.WorkoutsInserted += res.WorkoutsInserted
	u.stats.WorkoutsUpdated += res.WorkoutsUpdated
	u.stats.SetsSkipped += res.SetsSkipped
	u.stats.ExercisesCreated = append(u.stats.ExercisesCreated, res.ExercisesCreated...)
	if res.Warning != "" {
		u.stats.Warnings = append(u.stats.Warnings, relPath+": "+res.Warning)
	}
	u.log.Info("pushed", "file", relPath, "workouts", res.WorkoutsInserted+res.WorkoutsUpdated)
	return nil
}
