package handlers

import (
	"errors"
	"fmt"

	"github.com/trackedit/trackedit/internal/dispatcher"
	"github.com/trackedit/trackedit/internal/geo"
	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/internal/parser"
	"github.com/trackedit/trackedit/internal/storage"
	"github.com/trackedit/trackedit/internal/util"
	"github.com/trackedit/trackedit/pkg/core"
)

// SessionList is the result of session:list.
type SessionList struct {
	Open   []string `json:"open"`
	Stored []string `json:"stored"`
}

// TrackInfo summarizes an open session.
type TrackInfo struct {
	Session      string   `json:"session"`
	NumPoints    int      `json:"numPoints"`
	Waypoints    int      `json:"waypoints"`
	Segments     int      `json:"segments"`
	LengthMetres float64  `json:"lengthMetres"`
	Photos       int      `json:"photos"`
	AudioClips   int      `json:"audioClips"`
	Fields       []string `json:"fields"`
	// Extent is the web mercator bounding box [minX, minY, maxX, maxY],
	// empty for a track without points.
	Extent       []float64 `json:"extent,omitempty"`
	CurrentPoint int       `json:"currentPoint"`
	UndoDepth    int       `json:"undoDepth"`
	RedoDepth    int       `json:"redoDepth"`
}

func (s *Service) handleSessionNew(e dispatcher.Event) (any, error) {
	if e.Session == "" {
		return nil, ErrNoSessionName
	}
	if _, err := s.Manager(e.Session); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionOpen, e.Session)
	}
	if _, err := s.open(e.Session, model.NewSession(nil)); err != nil {
		return nil, err
	}
	s.deps.Logger.Info("session created", "session", e.Session)
	return s.Sessions(), nil
}

// handleSessionLoad reads the stored session, replacing an open session of
// the same name together with its history.
func (s *Service) handleSessionLoad(e dispatcher.Event) (any, error) {
	if e.Session == "" {
		return nil, ErrNoSessionName
	}
	if s.deps.Backend == nil {
		return nil, ErrNoStorage
	}
	ctx, cancel := s.storageContext()
	defer cancel()
	sess, err := s.deps.Backend.Load(ctx, e.Session)
	if err != nil {
		return nil, err
	}
	m, err := s.open(e.Session, sess)
	if err != nil {
		return nil, err
	}
	sess.Track.RequestRescale()
	s.publish(e.Session, core.AllFlags)
	s.deps.Logger.Info("session loaded", "session", e.Session, "points", sess.Track.NumPoints())
	return s.info(m.Name()), nil
}

// handleSessionSave stores the session, under the name given as the first
// argument when there is one.
func (s *Service) handleSessionSave(e dispatcher.Event) (any, error) {
	m, err := s.Manager(e.Session)
	if err != nil {
		return nil, err
	}
	if s.deps.Backend == nil {
		return nil, ErrNoStorage
	}
	name := e.Session
	if len(e.Args) > 0 && util.Clean(e.Args[0]) != "" {
		name = util.Clean(e.Args[0])
	}
	ctx, cancel := s.storageContext()
	defer cancel()
	if err := s.deps.Backend.Save(ctx, name, m.Session()); err != nil {
		return nil, fmt.Errorf("error saving session %s: %w", name, err)
	}
	s.deps.Logger.Info("session saved", "session", e.Session, "as", name)
	return name, nil
}

func (s *Service) handleSessionClose(e dispatcher.Event) (any, error) {
	if !s.close(e.Session) {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, e.Session)
	}
	s.deps.Logger.Info("session closed", "session", e.Session)
	return s.Sessions(), nil
}

func (s *Service) handleSessionList(e dispatcher.Event) (any, error) {
	out := SessionList{Open: s.Sessions(), Stored: []string{}}
	if s.deps.Backend == nil {
		return out, nil
	}
	ctx, cancel := s.storageContext()
	defer cancel()
	stored, err := s.deps.Backend.List(ctx)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		out.Stored = stored
	}
	return out, nil
}

func (s *Service) handleTrackInfo(e dispatcher.Event) (any, error) {
	if _, err := s.Manager(e.Session); err != nil {
		return nil, err
	}
	return s.info(e.Session), nil
}

func (s *Service) info(name string) TrackInfo {
	m, err := s.Manager(name)
	if err != nil {
		return TrackInfo{Session: name}
	}
	sess := m.Session()
	track := sess.Track

	info := TrackInfo{
		Session:      name,
		NumPoints:    track.NumPoints(),
		Photos:       sess.Photos.Len(),
		AudioClips:   sess.Audio.Len(),
		CurrentPoint: sess.Selection.CurrentPoint(),
		UndoDepth:    m.UndoDepth(),
		RedoDepth:    m.RedoDepth(),
	}
	for _, p := range track.Points() {
		if p.IsWaypoint() {
			info.Waypoints++
		}
	}
	segments := track.Segments()
	info.Segments = len(segments)
	info.LengthMetres = geo.PathLength(segments)
	for _, f := range track.Fields() {
		info.Fields = append(info.Fields, string(f))
	}
	if min, max, ok := track.Extent().MinMaxXYs(); ok {
		info.Extent = []float64{min.X, min.Y, max.X, max.Y}
	}
	return info
}

func (s *Service) handleSelectPoint(e dispatcher.Event) (any, error) {
	m, err := s.Manager(e.Session)
	if err != nil {
		return nil, err
	}
	if err := parser.Require(e.Args, 1, "index"); err != nil {
		return nil, err
	}
	sess := m.Session()
	index, err := s.deps.Parser.ParseIndex(e.Args[0], sess.Track.NumPoints())
	if err != nil {
		return nil, err
	}
	sess.Selection.SelectPoint(index)
	s.publish(e.Session, core.SelectionChanged)
	return index, nil
}

func (s *Service) handleSelectRange(e dispatcher.Event) (any, error) {
	m, err := s.Manager(e.Session)
	if err != nil {
		return nil, err
	}
	if err := parser.Require(e.Args, 1, "start-end"); err != nil {
		return nil, err
	}
	sess := m.Session()
	start, end, err := s.deps.Parser.ParseRange(e.Args[0], sess.Track.NumPoints())
	if err != nil {
		return nil, err
	}
	sess.Selection.SelectRange(start, end)
	s.publish(e.Session, core.SelectionChanged)
	return []int{start, end}, nil
}

func (s *Service) handleSelectClear(e dispatcher.Event) (any, error) {
	m, err := s.Manager(e.Session)
	if err != nil {
		return nil, err
	}
	m.Session().Selection.Clear()
	s.publish(e.Session, core.SelectionChanged)
	return nil, nil
}

// handleJournal returns the stored edit journal of a session, newest first.
func (s *Service) handleJournal(e dispatcher.Event) (any, error) {
	if e.Session == "" {
		return nil, ErrNoSessionName
	}
	journaled, ok := s.deps.Backend.(storage.Journaled)
	if !ok {
		return nil, storage.ErrUnsupported
	}
	limit := 0
	if len(e.Args) > 0 {
		n, err := s.deps.Parser.ParseCount(e.Args[0])
		if err != nil {
			return nil, err
		}
		limit = n
	}
	ctx, cancel := s.storageContext()
	defer cancel()
	records, err := journaled.History(ctx, e.Session, limit)
	if err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		return nil, err
	}
	return records, nil
}
