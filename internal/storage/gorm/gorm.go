// Package gormstorage implements the storage.Backend interface on top of
// GORM. It is shared by the SQLite and Postgres backends. Edit journal
// entries are queued and written by a background goroutine.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/internal/model/convert"
	"github.com/trackedit/trackedit/internal/queue"
	"github.com/trackedit/trackedit/internal/storage"
	"github.com/trackedit/trackedit/internal/undo"
)

const (
	defaultFlushInterval = 2 * time.Second
	// journal rows kept while the database is unreachable
	maxJournalBacklog = 10000
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	Logger        *slog.Logger
	FlushInterval time.Duration
}

// Backend implements storage.Backend and storage.Journaled using GORM.
type Backend struct {
	deps    Dependencies
	journal *queue.Queue[model.EditRecord]

	stopChan chan struct{}
	done     chan struct{}
	flushMu  sync.Mutex
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	return &Backend{
		deps:    deps,
		journal: queue.New[model.EditRecord](maxJournalBacklog),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema and starts the journal writer.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("gorm backend has no database")
	}
	if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.journalWriter()
	return nil
}

// Close stops the journal writer after a final flush.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	close(b.stopChan)
	<-b.done
	b.stopChan = nil
	return nil
}

// Save replaces the named snapshot in one transaction.
func (b *Backend) Save(ctx context.Context, name string, s *model.Session) error {
	rec := convert.SessionToRecord(name, s)

	return b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old model.SessionRecord
		err := tx.Unscoped().Where("name = ?", name).First(&old).Error
		switch {
		case err == nil:
			if err := tx.Where("session_id = ?", old.ID).Delete(&model.PointRecord{}).Error; err != nil {
				return fmt.Errorf("failed to delete old points: %w", err)
			}
			if err := tx.Where("session_id = ?", old.ID).Delete(&model.MediaRecord{}).Error; err != nil {
				return fmt.Errorf("failed to delete old media: %w", err)
			}
			if err := tx.Unscoped().Delete(&old).Error; err != nil {
				return fmt.Errorf("failed to delete old session: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return fmt.Errorf("failed to look up session %s: %w", name, err)
		}

		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to insert session %s: %w", name, err)
		}
		b.deps.Logger.Debug("Saved session", "session", name, "points", len(rec.Points), "media", len(rec.Media))
		return nil
	})
}

// Load reads the named snapshot with its points and media.
func (b *Backend) Load(ctx context.Context, name string) (*model.Session, error) {
	var rec model.SessionRecord
	err := b.deps.DB.WithContext(ctx).
		Preload("Points", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		Where("name = ?", name).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", storage.ErrSessionNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", name, err)
	}
	return convert.RecordToSession(rec)
}

// List returns all session names in order.
func (b *Backend) List(ctx context.Context) ([]string, error) {
	var names []string
	err := b.deps.DB.WithContext(ctx).
		Model(&model.SessionRecord{}).
		Order("name").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Record queues a journal entry. It never blocks on the database.
func (b *Backend) Record(e undo.Entry) {
	b.journal.Push(storage.EditRecordFromEntry(e))
}

// History returns the newest journal entries for a session, newest first.
// Queued entries are flushed first.
func (b *Backend) History(ctx context.Context, session string, limit int) ([]model.EditRecord, error) {
	b.Flush()

	q := b.deps.DB.WithContext(ctx).
		Where("session = ?", session).
		Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []model.EditRecord
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to read edit journal: %w", err)
	}
	return out, nil
}

// Flush writes queued journal entries now.
func (b *Backend) Flush() {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()
	writeQueue(b.deps.DB, b.journal, "edit journal", b.deps.Logger)
}

// journalWriter periodically drains the journal queue into the DB.
func (b *Backend) journalWriter() {
	defer close(b.done)
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			b.Flush()
			return
		case <-ticker.C:
			b.Flush()
		}
	}
}

// writeQueue writes all items from a queue to the database in a transaction.
// Items are put back on failure.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger) {
	items := q.Drain()
	if len(items) == 0 {
		return
	}
	tx := db.Begin()
	if err := tx.Create(&items).Error; err != nil {
		log.Error("Error writing queue", "queue", name, "count", len(items), "error", err)
		tx.Rollback()
		q.Requeue(items)
		return
	}
	if err := tx.Commit().Error; err != nil {
		log.Error("Error committing queue", "queue", name, "error", err)
		q.Requeue(items)
	}
}
