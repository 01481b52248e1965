package storageutils

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage/inmemory"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage/postgres"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage/sqlite"
)

// Supported storage driver names.
const (
	Memory   = "memory"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

type NewDriverOpts struct {
	DriverType  string
	SQLitePath  string
	PostgresDSN string
	Logger      *zap.Logger
}

func NewDriver(ctx context.Context, o *NewDriverOpts) (storage.Driver, error) {
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch o.DriverType {
	case Memory, "":
		logger.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	case SQLite:
		if o.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite storage requires a database path")
		}
		d, err := sqlite.NewDriver(ctx, o.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		logger.Info("using SQLite storage", zap.String("path", o.SQLitePath))
		return d, nil

	case Postgres:
		if o.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage requires a DSN")
		}
		d, err := postgres.NewDriver(ctx, o.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		logger.Info("using PostgreSQL storage")
		return d, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", o.DriverType)
	}
}
