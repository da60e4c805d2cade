// Package sqlitestorage implements the storage.Backend interface using an in-memory
// SQLite database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend; the only SQLite-specific concerns are creating
// the in-memory DB, restoring it from the last dump and the dump loop.
package sqlitestorage

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/trackedit/trackedit/internal/database"
	gormstorage "github.com/trackedit/trackedit/internal/storage/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	DumpInterval time.Duration
	DumpPath     string // Path for periodic VACUUM INTO dumps
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *database.Manager
	cfg      Config
	log      *slog.Logger
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new SQLite storage backend. The in-memory database is
// seeded from DumpPath when that file exists.
func New(cfg Config, db *database.Manager, log *slog.Logger) (*Backend, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := db.OpenSqlite(""); err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}
	db.SqliteFilePath = cfg.DumpPath

	if cfg.DumpPath != "" {
		if err := restore(db, cfg.DumpPath); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{DB: db.DB, Logger: log}),
		db:      db,
		cfg:     cfg,
		log:     log,
	}, nil
}

// restore copies the tables of a previous dump into the in-memory DB.
func restore(db *database.Manager, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := db.Setup(); err != nil {
		return err
	}
	stmts := []string{
		"ATTACH DATABASE '" + strings.ReplaceAll(path, "'", "''") + "' AS dump",
		"INSERT INTO track_sessions SELECT * FROM dump.track_sessions",
		"INSERT INTO track_points SELECT * FROM dump.track_points",
		"INSERT INTO session_media SELECT * FROM dump.session_media",
		"INSERT INTO edit_journal SELECT * FROM dump.edit_journal",
		"DETACH DATABASE dump",
	}
	for _, stmt := range stmts {
		if err := db.DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to restore %s: %w", path, err)
		}
	}
	return nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.stopChan = make(chan struct{})
		b.done = make(chan struct{})
		go b.dumpLoop()
	}

	return nil
}

// Close stops the dump goroutine, writes a final dump and closes the DB.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		<-b.done
		b.stopChan = nil
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	var dumpErr error
	if b.cfg.DumpPath != "" && b.db.DB != nil {
		dumpErr = b.db.DumpMemoryToDisk()
	}
	return errors.Join(dumpErr, b.db.Close())
}

// Dump writes the in-memory database to DumpPath now.
func (b *Backend) Dump() error {
	b.Flush()
	return b.db.DumpMemoryToDisk()
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := b.Dump(); err != nil {
				b.log.Error("Error dumping to disk", "error", err)
			} else {
				b.log.Debug("Dumped to disk", "duration", time.Since(start))
			}
		}
	}
}
