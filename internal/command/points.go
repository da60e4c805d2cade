package command

import (
	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/pkg/core"
)

// AppendRange appends existing point objects to the end of the track.
type AppendRange struct {
	base
	points []*model.DataPoint
}

// NewAppendRange creates a command appending points in order.
func NewAppendRange(points []*model.DataPoint) *AppendRange {
	return &AppendRange{
		base:   newBase(core.DataAddedOrRemoved, SnapshotBefore),
		points: append([]*model.DataPoint(nil), points...),
	}
}

func (c *AppendRange) Execute(s *model.Session) bool { return run(c, s) }

func (c *AppendRange) apply(s *model.Session) bool {
	return s.Track.AppendPoints(c.points)
}

func (c *AppendRange) makeInverse(_ *model.Session) Command {
	if len(c.points) == 0 {
		return nil
	}
	return NewDeleteFinalRange(len(c.points))
}

// DeleteFinalRange crops the last count points from the track.
type DeleteFinalRange struct {
	base
	count int
}

// NewDeleteFinalRange creates a command removing the final count points.
func NewDeleteFinalRange(count int) *DeleteFinalRange {
	return &DeleteFinalRange{
		base:  newBase(core.DataAddedOrRemoved|core.SelectionChanged, SnapshotBefore),
		count: count,
	}
}

func (c *DeleteFinalRange) Execute(s *model.Session) bool { return run(c, s) }

func (c *DeleteFinalRange) apply(s *model.Session) bool {
	n := s.Track.NumPoints()
	if c.count <= 0 || c.count > n {
		return false
	}
	if !s.Track.CropTo(n - c.count) {
		return false
	}
	s.Selection.Clear()
	return true
}

// makeInverse keeps the trailing point objects themselves, so their values
// and flags come back unchanged.
func (c *DeleteFinalRange) makeInverse(s *model.Session) Command {
	n := s.Track.NumPoints()
	if c.count <= 0 || c.count > n {
		return nil
	}
	return NewAppendRange(s.Track.Points()[n-c.count:])
}

// InsertPoint inserts one point at an index, or appends it when the index is
// negative.
type InsertPoint struct {
	base
	point *model.DataPoint
	index int

	// set when undoing a DeletePoint: the segment flag the following track
	// point had before the deletion
	nextSegmentStart *bool
}

// NewInsertPoint creates a command inserting point at index.
func NewInsertPoint(point *model.DataPoint, index int) *InsertPoint {
	return &InsertPoint{
		base:  newBase(core.DataAddedOrRemoved|core.SelectionChanged, SnapshotBefore),
		point: point,
		index: index,
	}
}

func (c *InsertPoint) Execute(s *model.Session) bool { return run(c, s) }

func (c *InsertPoint) resolve(s *model.Session) int {
	if c.index < 0 {
		return s.Track.NumPoints()
	}
	return c.index
}

func (c *InsertPoint) apply(s *model.Session) bool {
	index := c.resolve(s)
	if !s.Track.InsertPoint(c.point, index) {
		return false
	}
	s.Selection.PointInserted(index)
	if c.nextSegmentStart != nil && !c.point.IsWaypoint() {
		if next := s.Track.NextTrackPoint(index + 1); next >= 0 {
			s.Track.Point(next).SetSegmentStart(*c.nextSegmentStart)
		}
	}
	return true
}

// makeInverse records the flag of the track point that will follow the
// inserted one, so the delete puts it back instead of handing the inserted
// point's segment start on.
func (c *InsertPoint) makeInverse(s *model.Session) Command {
	if c.point == nil {
		return nil
	}
	index := c.resolve(s)
	inv := NewDeletePoint(index)
	if next := s.Track.NextTrackPoint(index); next >= 0 {
		wasStart := s.Track.Point(next).SegmentStart()
		inv.nextSegmentStart = &wasStart
	}
	return inv
}

// DeletePoint removes the point at an index, or the last point when the
// index is negative. Deleting a segment start moves the flag to the next
// track point.
type DeletePoint struct {
	base
	index int
	// set when undoing an InsertPoint: the segment flag the following track
	// point had before the insertion
	nextSegmentStart *bool
}

// NewDeletePoint creates a command deleting the point at index.
func NewDeletePoint(index int) *DeletePoint {
	return &DeletePoint{
		base:  newBase(core.DataAddedOrRemoved|core.SelectionChanged, SnapshotBefore),
		index: index,
	}
}

func (c *DeletePoint) Execute(s *model.Session) bool { return run(c, s) }

func (c *DeletePoint) resolve(s *model.Session) int {
	if c.index < 0 {
		return s.Track.NumPoints() - 1
	}
	return c.index
}

func (c *DeletePoint) apply(s *model.Session) bool {
	index := c.resolve(s)
	point := s.Track.Point(index)
	if point == nil {
		return false
	}
	next := s.Track.NextTrackPoint(index + 1)
	if !s.Track.DeletePoint(index) {
		return false
	}
	s.Selection.PointDeleted(index)
	if next < 0 {
		return true
	}
	switch {
	case c.nextSegmentStart != nil:
		s.Track.Point(next - 1).SetSegmentStart(*c.nextSegmentStart)
	case point.SegmentStart() && !point.IsWaypoint():
		s.Track.Point(next - 1).SetSegmentStart(true)
	}
	return true
}

// makeInverse holds on to the removed point and the neighbour's segment flag.
func (c *DeletePoint) makeInverse(s *model.Session) Command {
	index := c.resolve(s)
	point := s.Track.Point(index)
	if point == nil {
		return nil
	}
	inv := NewInsertPoint(point, index)
	if next := s.Track.NextTrackPoint(index + 1); next >= 0 {
		wasStart := s.Track.Point(next).SegmentStart()
		inv.nextSegmentStart = &wasStart
	}
	return inv
}

// DeleteAllPoints empties the track and clears the selection.
type DeleteAllPoints struct {
	base
}

// NewDeleteAllPoints creates a command removing every point.
func NewDeleteAllPoints() *DeleteAllPoints {
	return &DeleteAllPoints{
		base: newBase(core.DataAddedOrRemoved|core.SelectionChanged|core.WaypointsModified, SnapshotBefore),
	}
}

func (c *DeleteAllPoints) Execute(s *model.Session) bool { return run(c, s) }

func (c *DeleteAllPoints) apply(s *model.Session) bool {
	if s.Track.NumPoints() == 0 {
		return false
	}
	s.Track.Clear()
	s.Selection.Clear()
	return true
}

func (c *DeleteAllPoints) makeInverse(s *model.Session) Command {
	if s.Track.NumPoints() == 0 {
		return nil
	}
	return NewAppendRange(s.Track.Points())
}
