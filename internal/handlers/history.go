package handlers

import (
	"github.com/trackedit/trackedit/internal/dispatcher"
)

// History lists what can be undone, most recent first.
type History struct {
	Session   string   `json:"session"`
	Undo      []string `json:"undo"`
	RedoDepth int      `json:"redoDepth"`
}

func (s *Service) handleUndo(e dispatcher.Event) (any, error) {
	m, err := s.Manager(e.Session)
	if err != nil {
		return nil, err
	}
	cmd, err := m.Undo()
	if err != nil {
		return nil, err
	}
	return newEditResult(m, cmd), nil
}

func (s *Service) handleRedo(e dispatcher.Event) (any, error) {
	m, err := s.Manager(e.Session)
	if err != nil {
		return nil, err
	}
	cmd, err := m.Redo()
	if err != nil {
		return nil, err
	}
	return newEditResult(m, cmd), nil
}

func (s *Service) handleHistory(e dispatcher.Event) (any, error) {
	m, err := s.Manager(e.Session)
	if err != nil {
		return nil, err
	}
	return History{
		Session:   m.Name(),
		Undo:      m.UndoDescriptions(),
		RedoDepth: m.RedoDepth(),
	}, nil
}
