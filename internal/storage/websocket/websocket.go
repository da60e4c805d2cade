package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/internal/model/convert"
	"github.com/trackedit/trackedit/internal/storage"
	"github.com/trackedit/trackedit/internal/undo"
	"github.com/trackedit/trackedit/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend keeps session snapshots in a remote session store reached over
// WebSocket. Every request waits for the server's ack. Journal entries
// are sent fire-and-forget.
type Backend struct {
	conn    *connection
	cfg     Config
	timeout time.Duration
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn:    newConnection(logger),
		cfg:     cfg,
		timeout: ackTimeout,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// call sends a request and decodes the ack payload into out when non-nil.
func (b *Backend) call(ctx context.Context, msgType string, payload, out any) error {
	timeout := b.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}

	ack, err := b.conn.request(msgType, payload, timeout)
	if err != nil {
		return err
	}
	switch ack.Error {
	case "":
	case streaming.ErrCodeNotFound:
		return storage.ErrSessionNotFound
	default:
		return fmt.Errorf("%s rejected: %s", msgType, ack.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(ack.Payload, out); err != nil {
		return fmt.Errorf("decode %s reply: %w", msgType, err)
	}
	return nil
}

// Save sends the snapshot and waits for the server ack.
func (b *Backend) Save(ctx context.Context, name string, s *model.Session) error {
	return b.call(ctx, streaming.TypeSaveSession, streaming.SaveSessionPayload{
		Name:    name,
		Session: convert.SessionToRecord(name, s),
	}, nil)
}

// Load requests the named snapshot.
func (b *Backend) Load(ctx context.Context, name string) (*model.Session, error) {
	var rec model.SessionRecord
	err := b.call(ctx, streaming.TypeLoadSession, streaming.LoadSessionPayload{Name: name}, &rec)
	if err != nil {
		if err == storage.ErrSessionNotFound {
			return nil, fmt.Errorf("%w: %s", storage.ErrSessionNotFound, name)
		}
		return nil, err
	}
	return convert.RecordToSession(rec)
}

// List requests the names of all stored sessions.
func (b *Backend) List(ctx context.Context) ([]string, error) {
	var reply streaming.ListSessionsReply
	if err := b.call(ctx, streaming.TypeListSessions, struct{}{}, &reply); err != nil {
		return nil, err
	}
	if reply.Names == nil {
		reply.Names = []string{}
	}
	return reply.Names, nil
}

// Record sends a journal entry without waiting.
func (b *Backend) Record(e undo.Entry) {
	data, err := marshalEnvelope(streaming.TypeEditJournal, "", storage.EditRecordFromEntry(e))
	if err != nil {
		b.conn.logger.Warn("Dropping journal entry", "error", err)
		return
	}
	b.conn.send(data)
}

// History requests the newest journal entries of a session.
func (b *Backend) History(ctx context.Context, session string, limit int) ([]model.EditRecord, error) {
	var out []model.EditRecord
	err := b.call(ctx, streaming.TypeEditHistory, streaming.EditHistoryPayload{Session: session, Limit: limit}, &out)
	return out, err
}
