// Package storage provides the snapshot stores behind the repository: a JSON
// file, SQLite, PostgreSQL, an S3 object, and process memory.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/meltforce/liftlog/internal/config"
	"github.com/meltforce/liftlog/internal/repository"
)

// Backend is a repository.Store that holds resources until closed.
type Backend interface {
	repository.Store
	io.Closer
}

var (
	_ Backend = (*Memory)(nil)
	_ Backend = (*File)(nil)
	_ Backend = (*SQLite)(nil)
	_ Backend = (*Postgres)(nil)
	_ Backend = (*S3)(nil)
)

// Open selects and opens the backend named by cfg.Driver. The postgres
// driver applies pending schema migrations first.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Backend, error) {
	b, err := open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Driver, err)
	}
	return b, nil
}

func open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Driver {
	case config.DriverFile:
		logger.Info("using file storage", "path", cfg.Path)
		f, err := OpenFile(cfg.Path)
		if err != nil {
			return nil, err
		}
		return f, nil
	case config.DriverSQLite:
		logger.Info("using sqlite storage", "path", cfg.Path)
		db, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverPostgres:
		dsn := cfg.Postgres.DSN()
		if err := RunMigrations(dsn); err != nil {
			return nil, err
		}
		logger.Info("database migrations complete")
		logger.Info("using postgres storage", "host", cfg.Postgres.Host, "db", cfg.Postgres.Name)
		pg, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.DriverS3:
		logger.Info("using s3 storage", "bucket", cfg.S3.Bucket, "key", cfg.S3.Key)
		obj, err := OpenS3(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return obj, nil
	case config.DriverMemory:
		logger.Warn("using in-memory storage, data will not survive a restart")
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
