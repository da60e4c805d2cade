package command

import (
	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/pkg/core"
)

// SetSegments sets the segment-start flag of individual points, addressed by
// handle. Points removed from the track may still be addressed.
type SetSegments struct {
	base
	flags map[model.PointID]bool
}

// NewSetSegments creates a command applying flags. The map is copied.
func NewSetSegments(flags map[model.PointID]bool) *SetSegments {
	c := &SetSegments{
		base:  newBase(core.DataEdited, SnapshotBefore),
		flags: make(map[model.PointID]bool, len(flags)),
	}
	for id, on := range flags {
		c.flags[id] = on
	}
	return c
}

func (c *SetSegments) Execute(s *model.Session) bool { return run(c, s) }

func (c *SetSegments) apply(s *model.Session) bool {
	if len(c.flags) == 0 {
		return false
	}
	for id := range c.flags {
		if s.Track.Resolve(id) == nil {
			return false
		}
	}
	for id, on := range c.flags {
		s.Track.Resolve(id).SetSegmentStart(on)
	}
	return true
}

func (c *SetSegments) makeInverse(s *model.Session) Command {
	prev := make(map[model.PointID]bool, len(c.flags))
	for id := range c.flags {
		p := s.Track.Resolve(id)
		if p == nil {
			return nil
		}
		prev[id] = p.SegmentStart()
	}
	if len(prev) == 0 {
		return nil
	}
	return NewSetSegments(prev)
}
