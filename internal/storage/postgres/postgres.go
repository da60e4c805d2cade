// Package postgres implements the storage.Backend interface using GORM/PostgreSQL.
package postgres

import (
	"fmt"
	"log/slog"

	"github.com/trackedit/trackedit/internal/database"
	gormstorage "github.com/trackedit/trackedit/internal/storage/gorm"
)

// Backend is the GORM backend bound to a Postgres connection.
type Backend struct {
	*gormstorage.Backend
	db  *database.Manager
	dsn string
	log *slog.Logger
}

// New creates a Postgres backend. The connection is opened by Init.
func New(db *database.Manager, dsn string, log *slog.Logger) *Backend {
	if log == nil {
		log = slog.Default()
	}
	return &Backend{db: db, dsn: dsn, log: log}
}

// Init connects, migrates the schema and starts the journal writer.
func (b *Backend) Init() error {
	if b.db.DB == nil {
		if err := b.db.OpenPostgres(b.dsn); err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}
	b.Backend = gormstorage.New(gormstorage.Dependencies{DB: b.db.DB, Logger: b.log})
	if err := b.Backend.Init(); err != nil {
		return err
	}
	b.log.Info("Postgres storage ready")
	return nil
}

// Close stops the journal writer and closes the connection.
func (b *Backend) Close() error {
	if b.Backend != nil {
		if err := b.Backend.Close(); err != nil {
			return err
		}
	}
	return b.db.Close()
}
