// Package handlers keeps the open editing sessions and exposes every edit
// operation as a dispatcher handler.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/trackedit/trackedit/internal/broker"
	"github.com/trackedit/trackedit/internal/command"
	"github.com/trackedit/trackedit/internal/dispatcher"
	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/internal/parser"
	"github.com/trackedit/trackedit/internal/storage"
	"github.com/trackedit/trackedit/internal/undo"
	"github.com/trackedit/trackedit/pkg/core"
)

var (
	ErrNoSession     = errors.New("session is not open")
	ErrSessionOpen   = errors.New("session is already open")
	ErrNoSessionName = errors.New("no session name given")
	ErrNothingToDo   = errors.New("nothing to do")
	ErrNoStorage     = errors.New("no storage backend configured")
)

const defaultTimeout = 30 * time.Second

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Backend  storage.Backend
	Parser   *parser.Parser
	Broker   *broker.Broker
	Journals []undo.Journal
	Logger   *slog.Logger

	MaxDepth   int
	CheckLinks bool
	// Timeout bounds every storage call.
	Timeout time.Duration
}

// Service provides the handler methods and owns the open sessions. Session
// handlers are registered as Serial, so the sessions themselves are only
// touched on the dispatcher's mutation goroutine; mu guards the registry
// for readers such as the log context.
type Service struct {
	deps Dependencies

	mu       sync.RWMutex
	sessions map[string]*undo.Manager
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Parser == nil {
		deps.Parser = parser.NewParser(deps.Logger, core.Metres)
	}
	if deps.Timeout <= 0 {
		deps.Timeout = defaultTimeout
	}
	return &Service{
		deps:     deps,
		sessions: make(map[string]*undo.Manager),
	}
}

// ContextAttrs reports the number of open sessions. It is meant for
// logging.SlogManager.SetContextProvider.
func (s *Service) ContextAttrs() []slog.Attr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return []slog.Attr{slog.Int("openSessions", len(s.sessions))}
}

// Sessions returns the names of the open sessions, sorted.
func (s *Service) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.sessions))
	for name := range s.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Manager returns the undo manager of an open session.
func (s *Service) Manager(name string) (*undo.Manager, error) {
	if name == "" {
		return nil, ErrNoSessionName
	}
	s.mu.RLock()
	m, ok := s.sessions[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, name)
	}
	return m, nil
}

// open registers sess under name, replacing any open session of that name.
func (s *Service) open(name string, sess *model.Session) (*undo.Manager, error) {
	opts := []undo.Option{
		undo.WithMaxDepth(s.deps.MaxDepth),
		undo.WithLogger(s.deps.Logger),
	}
	if s.deps.CheckLinks {
		opts = append(opts, undo.WithLinkCheck())
	}
	if s.deps.Broker != nil {
		opts = append(opts, undo.WithPublisher(s.deps.Broker.ForSession(name)))
	}
	switch len(s.deps.Journals) {
	case 0:
	case 1:
		opts = append(opts, undo.WithJournal(s.deps.Journals[0]))
	default:
		opts = append(opts, undo.WithJournal(multiJournal(s.deps.Journals)))
	}

	m, err := undo.New(name, sess, opts...)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions[name] = m
	s.mu.Unlock()
	return m, nil
}

func (s *Service) close(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[name]; !ok {
		return false
	}
	delete(s.sessions, name)
	return true
}

func (s *Service) publish(name string, flags core.UpdateFlags) {
	if s.deps.Broker != nil {
		s.deps.Broker.Publish(broker.Update{Session: name, Flags: flags})
	}
}

func (s *Service) storageContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.deps.Timeout)
}

// multiJournal records every entry to all journals.
type multiJournal []undo.Journal

func (j multiJournal) Record(e undo.Entry) {
	for _, journal := range j {
		journal.Record(e)
	}
}

// EditResult describes the session after a successful edit, undo or redo.
type EditResult struct {
	Session     string `json:"session"`
	Description string `json:"description"`
	Changes     string `json:"changes"`
	NumPoints   int    `json:"numPoints"`
	UndoDepth   int    `json:"undoDepth"`
	RedoDepth   int    `json:"redoDepth"`
}

func newEditResult(m *undo.Manager, cmd command.Command) EditResult {
	return EditResult{
		Session:     m.Name(),
		Description: cmd.Description(),
		Changes:     cmd.UpdateFlags().String(),
		NumPoints:   m.Session().Track.NumPoints(),
		UndoDepth:   m.UndoDepth(),
		RedoDepth:   m.RedoDepth(),
	}
}

// editFunc builds the command for an event against the open session. A nil
// command means the request has no effect.
type editFunc func(e dispatcher.Event, sess *model.Session) (command.Command, error)

// edit wraps build into a handler that runs the command through the
// session's undo manager.
func (s *Service) edit(description string, build editFunc) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		m, err := s.Manager(e.Session)
		if err != nil {
			return nil, err
		}
		cmd, err := build(e, m.Session())
		if err != nil {
			return nil, err
		}
		if cmd == nil {
			return nil, fmt.Errorf("%w: %s", ErrNothingToDo, description)
		}
		if cmd.Description() == "" {
			command.Describe(cmd, description, "")
		}
		if err := m.Do(cmd); err != nil {
			return nil, err
		}
		return newEditResult(m, cmd), nil
	}
}

// compound returns c as a Command, mapping a nil builder result to nil.
func compound(c *command.Compound) command.Command {
	if c == nil {
		return nil
	}
	return c
}
