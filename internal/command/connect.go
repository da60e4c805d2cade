package command

import (
	"github.com/google/uuid"

	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/pkg/core"
)

// MediaLink is the desired photo and audio clip of one point. A nil media
// disconnects that slot.
type MediaLink struct {
	Point model.PointID
	Photo *model.Media
	Audio *model.Media
}

func (l MediaLink) media(kind core.MediaKind) *model.Media {
	if kind == core.Audio {
		return l.Audio
	}
	return l.Photo
}

var mediaKinds = []core.MediaKind{core.Photo, core.Audio}

// ConnectMedia sets the photo and audio links of a batch of points. Only the
// kinds covered by the selector are touched. A slot that already holds the
// requested media is left alone; the command fails if no slot changes, or
// if a requested media is not in the list for its slot.
type ConnectMedia struct {
	base
	links    []MediaLink
	selector core.MediaSelector
}

// NewConnectMedia creates a command linking one point to photo and audio.
func NewConnectMedia(point model.PointID, photo, audio *model.Media, selector core.MediaSelector) *ConnectMedia {
	return NewConnectMultipleMedia([]MediaLink{{Point: point, Photo: photo, Audio: audio}}, selector)
}

// NewDisconnectMedia creates a command unlinking the selected kinds from one point.
func NewDisconnectMedia(point model.PointID, selector core.MediaSelector) *ConnectMedia {
	return NewConnectMedia(point, nil, nil, selector)
}

// NewConnectMultipleMedia creates a command applying links in order.
func NewConnectMultipleMedia(links []MediaLink, selector core.MediaSelector) *ConnectMedia {
	return &ConnectMedia{
		base:     newBase(core.MediaModified, SnapshotBefore),
		links:    append([]MediaLink(nil), links...),
		selector: selector,
	}
}

func (c *ConnectMedia) Execute(s *model.Session) bool { return run(c, s) }

func (c *ConnectMedia) apply(s *model.Session) bool {
	if len(c.links) == 0 {
		return false
	}
	for _, l := range c.links {
		if s.Track.Resolve(l.Point) == nil {
			return false
		}
		for _, kind := range mediaKinds {
			if !c.selector.Includes(kind) {
				continue
			}
			// only listed media of the slot's kind can be linked both ways
			if want := l.media(kind); want != nil && (want.Kind() != kind || !s.Media(kind).Contains(want)) {
				return false
			}
		}
	}
	changed := false
	for _, l := range c.links {
		p := s.Track.Resolve(l.Point)
		for _, kind := range mediaKinds {
			if !c.selector.Includes(kind) {
				continue
			}
			want := l.media(kind)
			if sameMedia(s.MediaOf(p, kind), want) && (want == nil || want.PointID() == p.ID()) {
				continue
			}
			if want == nil {
				s.Unlink(p, kind)
			} else {
				s.Link(p, want)
			}
			changed = true
		}
	}
	return changed
}

// makeInverse records, for every point the batch can touch, whatever is
// linked to it right now. That includes the points the requested media are
// currently attached to, since linking steals them.
func (c *ConnectMedia) makeInverse(s *model.Session) Command {
	var order []model.PointID
	restore := make(map[model.PointID]*MediaLink)
	note := func(p *model.DataPoint) {
		if _, ok := restore[p.ID()]; ok {
			return
		}
		restore[p.ID()] = &MediaLink{Point: p.ID(), Photo: s.MediaOf(p, core.Photo), Audio: s.MediaOf(p, core.Audio)}
		order = append(order, p.ID())
	}
	for _, l := range c.links {
		p := s.Track.Resolve(l.Point)
		if p == nil {
			return nil
		}
		for _, kind := range mediaKinds {
			if !c.selector.Includes(kind) {
				continue
			}
			note(p)
			if owner := s.PointOf(l.media(kind)); owner != nil {
				note(owner)
			}
		}
	}
	if len(order) == 0 {
		return nil
	}
	links := make([]MediaLink, 0, len(order))
	for _, id := range order {
		links = append(links, *restore[id])
	}
	return NewConnectMultipleMedia(links, c.selector)
}

func sameMedia(a, b *model.Media) bool {
	idA, idB := uuid.Nil, uuid.Nil
	if a != nil {
		idA = a.ID()
	}
	if b != nil {
		idB = b.ID()
	}
	return idA == idB
}

// RemoveCorrelatedMedia disconnects every linked media object of the selected
// kinds and takes it out of its list. The objects survive in the inverse.
type RemoveCorrelatedMedia struct {
	base
	selector core.MediaSelector
}

// NewRemoveCorrelatedMedia creates the bulk disconnect-and-remove command.
func NewRemoveCorrelatedMedia(selector core.MediaSelector) *RemoveCorrelatedMedia {
	return &RemoveCorrelatedMedia{
		base:     newBase(core.MediaModified|core.DataEdited, SnapshotBefore),
		selector: selector,
	}
}

func (c *RemoveCorrelatedMedia) Execute(s *model.Session) bool { return run(c, s) }

func (c *RemoveCorrelatedMedia) correlated(s *model.Session) []restoredMedia {
	var found []restoredMedia
	for _, kind := range mediaKinds {
		if !c.selector.Includes(kind) {
			continue
		}
		for i, m := range s.Media(kind).All() {
			if p := s.PointOf(m); p != nil {
				found = append(found, restoredMedia{media: m, index: i, point: p.ID()})
			}
		}
	}
	return found
}

func (c *RemoveCorrelatedMedia) apply(s *model.Session) bool {
	found := c.correlated(s)
	if len(found) == 0 {
		return false
	}
	for i := len(found) - 1; i >= 0; i-- {
		m := found[i].media
		s.Unlink(s.Track.Resolve(found[i].point), m.Kind())
		s.Media(m.Kind()).DeleteMedia(m)
	}
	return true
}

func (c *RemoveCorrelatedMedia) makeInverse(s *model.Session) Command {
	found := c.correlated(s)
	if len(found) == 0 {
		return nil
	}
	return &restoreMedia{
		base:    newBase(c.flags, SnapshotBefore),
		entries: found,
	}
}

type restoredMedia struct {
	media *model.Media
	index int
	point model.PointID
}

// restoreMedia puts media objects back at their list indices and relinks
// them. It only ever exists as the undo of RemoveCorrelatedMedia.
type restoreMedia struct {
	base
	entries []restoredMedia
}

func (c *restoreMedia) Execute(s *model.Session) bool { return run(c, s) }

func (c *restoreMedia) apply(s *model.Session) bool {
	if len(c.entries) == 0 {
		return false
	}
	for _, e := range c.entries {
		s.Media(e.media.Kind()).AddAt(e.media, e.index)
		if p := s.Track.Resolve(e.point); p != nil {
			s.Link(p, e.media)
		}
	}
	return true
}

func (c *restoreMedia) makeInverse(*model.Session) Command {
	panic(ErrInverseOnly)
}
