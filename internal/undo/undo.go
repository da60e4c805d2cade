// Package undo keeps the undo and redo stacks of one session and runs every
// command, undo and redo through them.
package undo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/trackedit/trackedit/internal/command"
	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/pkg/core"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrCommandFailed = errors.New("command failed")
)

// Actions recorded in the journal.
const (
	ActionDo   = "do"
	ActionUndo = "undo"
	ActionRedo = "redo"
)

// Publisher receives the update flags of every successful change.
type Publisher interface {
	Publish(flags core.UpdateFlags)
}

// Entry is one journal line.
type Entry struct {
	Session     string
	Action      string
	Description string
	Flags       core.UpdateFlags
	NumPoints   int
	Time        time.Time
}

// Journal records executed commands. Record must not block.
type Journal interface {
	Record(e Entry)
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxDepth bounds the undo stack; the oldest entries are dropped. Zero
// means unbounded.
func WithMaxDepth(n int) Option {
	return func(m *Manager) {
		m.maxDepth = n
	}
}

// WithLinkCheck verifies point/media link symmetry after every change and
// logs any breakage.
func WithLinkCheck() Option {
	return func(m *Manager) {
		m.checkLinks = true
	}
}

// WithLogger sets the logger; slog.Default is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithPublisher forwards update flags to p.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) {
		m.publisher = p
	}
}

// WithJournal records every change to j.
func WithJournal(j Journal) Option {
	return func(m *Manager) {
		m.journal = j
	}
}

// Manager owns a session's undo history. Like the session, it is not safe
// for concurrent use.
type Manager struct {
	name    string
	session *model.Session
	undo    []command.Command
	redo    []command.Command

	maxDepth   int
	checkLinks bool
	logger     *slog.Logger
	publisher  Publisher
	journal    Journal

	executed metric.Int64Counter
	failed   metric.Int64Counter
}

// New creates a manager for the session called name.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(name string, s *model.Session, opts ...Option) (*Manager, error) {
	m := &Manager{name: name, session: s, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}

	var err error
	m.executed, err = meter().Int64Counter(
		"undo.commands.executed",
		metric.WithDescription("Commands executed, undone or redone"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating executed counter: %w", err)
	}
	m.failed, err = meter().Int64Counter(
		"undo.commands.failed",
		metric.WithDescription("Commands that did not apply"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}
	return m, nil
}

// Name returns the session name.
func (m *Manager) Name() string {
	return m.name
}

// Session returns the managed session.
func (m *Manager) Session() *model.Session {
	return m.session
}

// Do executes cmd and pushes it onto the undo stack. The redo stack is
// cleared. A command that does not apply is not recorded.
func (m *Manager) Do(cmd command.Command) error {
	if cmd == nil {
		return fmt.Errorf("%w: nil command", ErrCommandFailed)
	}
	if !cmd.Execute(m.session) {
		m.fail(ActionDo, cmd)
		return fmt.Errorf("%w: %s", ErrCommandFailed, describe(cmd))
	}
	m.undo = append(m.undo, cmd)
	if m.maxDepth > 0 && len(m.undo) > m.maxDepth {
		drop := len(m.undo) - m.maxDepth
		clear(m.undo[:drop])
		m.undo = m.undo[drop:]
	}
	clear(m.redo)
	m.redo = m.redo[:0]
	m.done(ActionDo, cmd)
	return nil
}

// Undo runs the inverse of the most recent command.
func (m *Manager) Undo() (command.Command, error) {
	if len(m.undo) == 0 {
		return nil, ErrNothingToUndo
	}
	cmd := m.undo[len(m.undo)-1]
	inv := cmd.Inverse()
	if inv == nil || !inv.Execute(m.session) {
		m.fail(ActionUndo, cmd)
		return nil, fmt.Errorf("%w: undo %s", ErrCommandFailed, describe(cmd))
	}
	m.undo[len(m.undo)-1] = nil
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, cmd)
	m.done(ActionUndo, inv)
	return cmd, nil
}

// Redo executes the most recently undone command again.
func (m *Manager) Redo() (command.Command, error) {
	if len(m.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	cmd := m.redo[len(m.redo)-1]
	if !cmd.Execute(m.session) {
		m.fail(ActionRedo, cmd)
		return nil, fmt.Errorf("%w: redo %s", ErrCommandFailed, describe(cmd))
	}
	m.redo[len(m.redo)-1] = nil
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, cmd)
	m.done(ActionRedo, cmd)
	return cmd, nil
}

// CanUndo reports whether there is a command to undo.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether there is a command to redo.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// UndoDepth returns the number of commands that can be undone.
func (m *Manager) UndoDepth() int { return len(m.undo) }

// RedoDepth returns the number of commands that can be redone.
func (m *Manager) RedoDepth() int { return len(m.redo) }

// UndoDescriptions lists the undo stack, most recent first.
func (m *Manager) UndoDescriptions() []string {
	out := make([]string, 0, len(m.undo))
	for i := len(m.undo) - 1; i >= 0; i-- {
		out = append(out, describe(m.undo[i]))
	}
	return out
}

// Clear drops both stacks, e.g. after the session was replaced.
func (m *Manager) Clear() {
	m.undo = nil
	m.redo = nil
}

func (m *Manager) done(action string, cmd command.Command) {
	flags := cmd.UpdateFlags()
	m.executed.Add(context.Background(), 1, metric.WithAttributes(attribute.String("action", action)))
	m.logger.Debug("command applied",
		"session", m.name,
		"action", action,
		"command", describe(cmd),
		"flags", flags.String(),
		"points", m.session.Track.NumPoints())

	if m.checkLinks {
		if err := m.session.CheckLinks(); err != nil {
			m.logger.Error("link check failed", "session", m.name, "action", action, "error", err)
		}
	}
	if m.publisher != nil {
		m.publisher.Publish(flags)
	}
	if m.journal != nil {
		m.journal.Record(Entry{
			Session:     m.name,
			Action:      action,
			Description: describe(cmd),
			Flags:       flags,
			NumPoints:   m.session.Track.NumPoints(),
			Time:        time.Now(),
		})
	}
}

func (m *Manager) fail(action string, cmd command.Command) {
	m.failed.Add(context.Background(), 1, metric.WithAttributes(attribute.String("action", action)))
	m.logger.Debug("command did not apply", "session", m.name, "action", action, "command", describe(cmd))
}

// describe returns the command's description, or its type name.
func describe(cmd command.Command) string {
	if d := cmd.Description(); d != "" {
		return d
	}
	return fmt.Sprintf("%T", cmd)
}
