package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/trackedit/trackedit/pkg/core"
)

// ErrBrokenLink is returned by CheckLinks when a point and a media object
// disagree about their link.
var ErrBrokenLink = errors.New("asymmetric point/media link")

// Session is the aggregate every command operates on. It is not safe for
// concurrent use; all commands run on a single mutation goroutine.
type Session struct {
	Track     *Track
	Selection *Selection
	Photos    *MediaList
	Audio     *MediaList
}

// NewSession creates a session around track. A nil track starts empty.
func NewSession(track *Track) *Session {
	if track == nil {
		track = NewTrack()
	}
	return &Session{
		Track:     track,
		Selection: NewSelection(),
		Photos:    NewMediaList(core.Photo),
		Audio:     NewMediaList(core.Audio),
	}
}

// Media returns the list holding kind.
func (s *Session) Media(kind core.MediaKind) *MediaList {
	if kind == core.Audio {
		return s.Audio
	}
	return s.Photos
}

// MediaOf returns the media of kind linked to p, nil if none.
func (s *Session) MediaOf(p *DataPoint, kind core.MediaKind) *Media {
	if p == nil {
		return nil
	}
	return s.Media(kind).Resolve(p.MediaID(kind))
}

// PointOf returns the point m is linked to, nil if none. The point may no
// longer be part of the track.
func (s *Session) PointOf(m *Media) *DataPoint {
	if m == nil || !m.IsConnected() {
		return nil
	}
	return s.Track.Resolve(m.pointID)
}

// Link connects p and m on both sides, first detaching whatever either of
// them was linked to.
func (s *Session) Link(p *DataPoint, m *Media) {
	if p == nil || m == nil {
		return
	}
	if p.MediaID(m.kind) == m.id && m.pointID == p.id {
		return
	}
	s.Unlink(p, m.kind)
	if prev := s.PointOf(m); prev != nil {
		s.Unlink(prev, m.kind)
	}
	m.pointID = p.id
	p.setMediaID(m.kind, m.id)
}

// Unlink detaches the media of kind from p on both sides.
func (s *Session) Unlink(p *DataPoint, kind core.MediaKind) {
	if p == nil {
		return
	}
	if m := s.MediaOf(p, kind); m != nil && m.pointID == p.id {
		m.pointID = uuid.Nil
	}
	p.setMediaID(kind, uuid.Nil)
}

// CheckLinks verifies that every link held by a track point or a listed
// media object is mirrored on the other side.
func (s *Session) CheckLinks() error {
	var errs []error
	for i, p := range s.Track.points {
		for _, kind := range []core.MediaKind{core.Photo, core.Audio} {
			id := p.MediaID(kind)
			if id == uuid.Nil {
				continue
			}
			m := s.Media(kind).Resolve(id)
			if m == nil || m.pointID != p.id {
				errs = append(errs, fmt.Errorf("%w: point %d has %s %s", ErrBrokenLink, i, kind, id))
			}
		}
	}
	for _, list := range []*MediaList{s.Photos, s.Audio} {
		for i, m := range list.items {
			if !m.IsConnected() {
				continue
			}
			p := s.Track.Resolve(m.pointID)
			if p == nil || p.MediaID(list.kind) != m.id {
				errs = append(errs, fmt.Errorf("%w: %s %d points at %s", ErrBrokenLink, list.kind, i, m.pointID))
			}
		}
	}
	return errors.Join(errs...)
}
