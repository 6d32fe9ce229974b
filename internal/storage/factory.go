package storage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/openfdm/flightsim/internal/config"
	gormstorage "github.com/openfdm/flightsim/internal/storage/gorm"
	"github.com/openfdm/flightsim/internal/storage/memory"
	"github.com/openfdm/flightsim/internal/storage/postgres"
	sqlitestorage "github.com/openfdm/flightsim/internal/storage/sqlite"
)

// NewBackend creates a storage backend based on configuration.
func NewBackend(cfg config.StorageConfig, log *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(gormstorage.Dependencies{Log: log}), nil
	case "sqlite":
		dumpInterval, err := time.ParseDuration(cfg.SQLite.DumpInterval)
		if err != nil {
			dumpInterval = 3 * time.Minute
		}
		return sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: dumpInterval,
			DumpPath:     cfg.SQLite.DumpPath,
		}, log)
	case "memory":
		return memory.New(memory.Config{
			OutputDir:      cfg.Memory.OutputDir,
			CompressOutput: cfg.Memory.CompressOutput,
		}), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
