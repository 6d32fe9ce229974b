// Package postgres implements the storage.Backend interface using
// GORM/PostgreSQL. It wraps the GORM backend via composition; the only
// Postgres-specific concern is establishing and validating the
// connection when none was injected.
package postgres

import (
	"fmt"

	"github.com/openfdm/flightsim/internal/database"
	gormstorage "github.com/openfdm/flightsim/internal/storage/gorm"
)

// Backend wraps the GORM backend for Postgres-specific behavior.
type Backend struct {
	*gormstorage.Backend
	deps gormstorage.Dependencies
}

// New creates a new Postgres storage backend. If deps.DB is nil, Init
// establishes its own connection from viper config.
func New(deps gormstorage.Dependencies) *Backend {
	return &Backend{deps: deps}
}

// Init connects to Postgres if needed, then initializes the embedded
// GORM backend.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.GetPostgresDBStandalone()
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
		b.deps.DB = db
	}

	b.Backend = gormstorage.New(b.deps)
	return b.Backend.Init()
}
