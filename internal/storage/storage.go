// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/internal/undo"
)

// ErrSessionNotFound is returned by Load when no session has the given name.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnsupported is returned by backends that cannot serve an operation.
var ErrUnsupported = errors.New("operation not supported by storage backend")

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session snapshots, keyed by name. Save replaces an existing snapshot.
	Save(ctx context.Context, name string, s *model.Session) error
	Load(ctx context.Context, name string) (*model.Session, error)
	List(ctx context.Context) ([]string, error)
}

// Journaled is an optional interface for backends that persist the edit
// journal next to the snapshots.
type Journaled interface {
	undo.Journal
	History(ctx context.Context, session string, limit int) ([]model.EditRecord, error)
}

// EditRecordFromEntry converts a journal entry to its table row.
func EditRecordFromEntry(e undo.Entry) model.EditRecord {
	return model.EditRecord{
		Session:     e.Session,
		Action:      e.Action,
		Description: e.Description,
		Flags:       uint32(e.Flags),
		NumPoints:   e.NumPoints,
		CreatedAt:   e.Time,
	}
}
