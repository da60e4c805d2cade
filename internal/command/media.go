package command

import (
	"github.com/google/uuid"

	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/pkg/core"
)

// InsertMedia adds a photo or audio clip to its list, at an index or appended
// when the index is negative.
type InsertMedia struct {
	base
	media *model.Media
	index int

	// point to relink to, set when undoing a RemoveMedia
	relink model.PointID
}

// NewAppendMedia creates a command appending m to the list of its kind.
func NewAppendMedia(m *model.Media) *InsertMedia {
	return NewInsertMedia(m, -1)
}

// NewInsertMedia creates a command inserting m at index.
func NewInsertMedia(m *model.Media, index int) *InsertMedia {
	return &InsertMedia{
		base:  newBase(core.MediaModified, SnapshotBefore),
		media: m,
		index: index,
	}
}

func (c *InsertMedia) Execute(s *model.Session) bool { return run(c, s) }

func (c *InsertMedia) resolve(s *model.Session) int {
	if c.index < 0 && c.media != nil {
		return s.Media(c.media.Kind()).Len()
	}
	return c.index
}

func (c *InsertMedia) apply(s *model.Session) bool {
	if c.media == nil {
		return false
	}
	if c.relink != uuid.Nil && s.Track.Resolve(c.relink) == nil {
		return false
	}
	if !s.Media(c.media.Kind()).AddAt(c.media, c.resolve(s)) {
		return false
	}
	if c.relink != uuid.Nil {
		s.Link(s.Track.Resolve(c.relink), c.media)
	}
	return true
}

func (c *InsertMedia) makeInverse(s *model.Session) Command {
	if c.media == nil {
		return nil
	}
	return NewRemoveMediaAt(c.media.Kind(), c.resolve(s))
}

// RemoveMedia takes a photo or audio clip out of its list, by index or by
// identity. A linked object is disconnected from its point; the media object
// itself is kept by the inverse.
type RemoveMedia struct {
	base
	kind  core.MediaKind
	index int
	media *model.Media
}

// NewRemoveMediaAt creates a command removing the item at index from the list of kind.
func NewRemoveMediaAt(kind core.MediaKind, index int) *RemoveMedia {
	return &RemoveMedia{
		base:  newBase(core.MediaModified, SnapshotBefore),
		kind:  kind,
		index: index,
	}
}

// NewRemoveMedia creates a command removing m by identity.
func NewRemoveMedia(m *model.Media) *RemoveMedia {
	c := NewRemoveMediaAt(core.Photo, -1)
	if m != nil {
		c.kind = m.Kind()
	}
	c.media = m
	return c
}

func (c *RemoveMedia) Execute(s *model.Session) bool { return run(c, s) }

func (c *RemoveMedia) resolve(s *model.Session) int {
	if c.media != nil {
		return s.Media(c.kind).IndexOf(c.media)
	}
	return c.index
}

func (c *RemoveMedia) apply(s *model.Session) bool {
	list := s.Media(c.kind)
	m := list.At(c.resolve(s))
	if m == nil {
		return false
	}
	if p := s.PointOf(m); p != nil {
		s.Unlink(p, c.kind)
	}
	return list.DeleteMedia(m)
}

func (c *RemoveMedia) makeInverse(s *model.Session) Command {
	index := c.resolve(s)
	m := s.Media(c.kind).At(index)
	if m == nil {
		return nil
	}
	inv := NewInsertMedia(m, index)
	if p := s.PointOf(m); p != nil && p.MediaID(c.kind) == m.ID() {
		inv.relink = p.ID()
	}
	return inv
}
