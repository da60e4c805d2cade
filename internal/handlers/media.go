package handlers

import (
	"fmt"
	"time"

	"github.com/trackedit/trackedit/internal/command"
	"github.com/trackedit/trackedit/internal/dispatcher"
	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/internal/parser"
	"github.com/trackedit/trackedit/internal/util"
	"github.com/trackedit/trackedit/pkg/core"
)

func selectorOf(kind core.MediaKind) core.MediaSelector {
	if kind == core.Audio {
		return core.AudioOnly
	}
	return core.PhotosOnly
}

// newMedia parses "kind name [timestamp]".
func (s *Service) newMedia(args []string) (*model.Media, error) {
	if err := parser.Require(args, 2, "kind name [timestamp]"); err != nil {
		return nil, err
	}
	kind, err := s.deps.Parser.ParseMediaKind(args[0])
	if err != nil {
		return nil, err
	}
	name := util.Clean(args[1])
	if name == "" {
		return nil, fmt.Errorf("%w: media name", parser.ErrMissingArgs)
	}
	m := model.NewMedia(kind, name)
	if len(args) > 2 {
		ts, err := time.Parse(time.RFC3339, util.Clean(args[2]))
		if err != nil {
			return nil, fmt.Errorf("invalid media timestamp %q: %w", args[2], err)
		}
		m.SetTimestamp(ts)
	}
	return m, nil
}

// mediaArg parses "kind index" at args[i:] into an existing media object.
func (s *Service) mediaArg(args []string, i int, sess *model.Session) (*model.Media, error) {
	if err := parser.Require(args, i+2, "kind index"); err != nil {
		return nil, err
	}
	kind, err := s.deps.Parser.ParseMediaKind(args[i])
	if err != nil {
		return nil, err
	}
	list := sess.Media(kind)
	index, err := s.deps.Parser.ParseIndex(args[i+1], list.Len())
	if err != nil {
		return nil, err
	}
	return list.At(index), nil
}

// buildAddMedia: kind name [timestamp]
func (s *Service) buildAddMedia(e dispatcher.Event, _ *model.Session) (command.Command, error) {
	m, err := s.newMedia(e.Args)
	if err != nil {
		return nil, err
	}
	return command.NewAppendMedia(m), nil
}

// buildImportMedia: kind name lat,lon [altitude]. Appends a new point
// carrying the media in one step.
func (s *Service) buildImportMedia(e dispatcher.Event, _ *model.Session) (command.Command, error) {
	if err := parser.Require(e.Args, 3, "kind name lat,lon [altitude]"); err != nil {
		return nil, err
	}
	m, err := s.newMedia(e.Args[:2])
	if err != nil {
		return nil, err
	}
	p, err := s.deps.Parser.ParsePoint(e.Args[2:min(len(e.Args), 4)])
	if err != nil {
		return nil, err
	}
	return compound(command.NewLoadMediaWithPoints([]*model.DataPoint{p}, []*model.Media{m})), nil
}

// buildRemoveMedia: kind index
func (s *Service) buildRemoveMedia(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	m, err := s.mediaArg(e.Args, 0, sess)
	if err != nil {
		return nil, err
	}
	return command.NewRemoveMedia(m), nil
}

// buildConnectMedia: pointIndex kind mediaIndex
func (s *Service) buildConnectMedia(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	if err := parser.Require(e.Args, 3, "pointIndex kind mediaIndex"); err != nil {
		return nil, err
	}
	p, err := s.pointArg(e.Args, 0, sess)
	if err != nil {
		return nil, err
	}
	m, err := s.mediaArg(e.Args, 1, sess)
	if err != nil {
		return nil, err
	}
	var photo, audio *model.Media
	if m.Kind() == core.Audio {
		audio = m
	} else {
		photo = m
	}
	return command.NewConnectMedia(p.ID(), photo, audio, selectorOf(m.Kind())), nil
}

// buildDisconnectMedia: [pointIndex] [photo|audio|both]
func (s *Service) buildDisconnectMedia(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	p, err := s.pointArg(e.Args, 0, sess)
	if err != nil {
		return nil, err
	}
	selector := core.BothMedia
	if len(e.Args) > 1 {
		if selector, err = s.deps.Parser.ParseMediaSelector(e.Args[1]); err != nil {
			return nil, err
		}
	}
	return command.NewDisconnectMedia(p.ID(), selector), nil
}

// buildCorrelateMedia: kind mediaIndex pointIndex
func (s *Service) buildCorrelateMedia(e dispatcher.Event, sess *model.Session) (command.Command, error) {
	if err := parser.Require(e.Args, 3, "kind mediaIndex pointIndex"); err != nil {
		return nil, err
	}
	m, err := s.mediaArg(e.Args, 0, sess)
	if err != nil {
		return nil, err
	}
	p, err := s.pointArg(e.Args, 2, sess)
	if err != nil {
		return nil, err
	}
	return compound(command.NewCorrelateMedia([]command.Correlation{
		{Media: m, Point: p, InsertAt: -1},
	})), nil
}

// buildRemoveCorrelated: [photo|audio|both]
func (s *Service) buildRemoveCorrelated(e dispatcher.Event, _ *model.Session) (command.Command, error) {
	selector := core.BothMedia
	if len(e.Args) > 0 {
		var err error
		if selector, err = s.deps.Parser.ParseMediaSelector(e.Args[0]); err != nil {
			return nil, err
		}
	}
	return command.NewRemoveCorrelatedMedia(selector), nil
}
