package command

import (
	"sort"

	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/pkg/core"
)

// The builders below turn a decision made elsewhere (which points to drop,
// which range to reverse, ...) into a compound command against the session as
// it is now. They only read the session. A nil result means there is nothing
// to do.

// NewShuffleAndCrop moves the points to delete to the end with perm, applies
// the segment corrections, and crops numToDelete points.
func NewShuffleAndCrop(perm []int, numToDelete int, segments map[model.PointID]bool) *Compound {
	if numToDelete <= 0 {
		return nil
	}
	c := NewCompound()
	if len(segments) > 0 {
		c.Add(NewSetSegments(segments))
	}
	c.Add(NewRearrangePoints(perm))
	c.Add(NewDeleteFinalRange(numToDelete))
	return c
}

// NewDeleteMarkedPoints deletes the points at the given indices in one step,
// as a compression pass does. A deleted segment start hands its flag on to
// the next surviving track point.
func NewDeleteMarkedPoints(s *model.Session, marked []int) *Compound {
	n := s.Track.NumPoints()
	drop := make([]bool, n)
	count := 0
	for _, i := range marked {
		if i < 0 || i >= n {
			return nil
		}
		if !drop[i] {
			drop[i] = true
			count++
		}
	}
	if count == 0 {
		return nil
	}

	perm := make([]int, 0, n)
	var dropped []int
	segments := make(map[model.PointID]bool)
	pending := false
	for i := 0; i < n; i++ {
		p := s.Track.Point(i)
		if drop[i] {
			dropped = append(dropped, i)
			if p.SegmentStart() && !p.IsWaypoint() {
				pending = true
			}
			continue
		}
		perm = append(perm, i)
		if pending && !p.IsWaypoint() {
			if !p.SegmentStart() {
				segments[p.ID()] = true
			}
			pending = false
		}
	}
	perm = append(perm, dropped...)
	return NewShuffleAndCrop(perm, count, segments)
}

// NewReverseRange reverses the points start..end inclusive. Segment breaks
// inside the range are mirrored so that the drawn lines stay the same.
func NewReverseRange(s *model.Session, start, end int) *Compound {
	n := s.Track.NumPoints()
	if start < 0 || end >= n || start >= end {
		return nil
	}
	perm := identity(n)
	for i := start; i <= end; i++ {
		perm[i] = start + end - i
	}

	var trackPoints []*model.DataPoint
	for i := start; i <= end; i++ {
		if p := s.Track.Point(i); !p.IsWaypoint() {
			trackPoints = append(trackPoints, p)
		}
	}
	segments := make(map[model.PointID]bool)
	last := len(trackPoints) - 1
	for j, p := range trackPoints {
		var want bool
		if j == last {
			want = trackPoints[0].SegmentStart()
		} else {
			want = trackPoints[j+1].SegmentStart()
		}
		if want != p.SegmentStart() {
			segments[p.ID()] = want
		}
	}

	c := NewCompound(NewRearrangePoints(perm))
	if len(segments) > 0 {
		c.Add(NewSetSegments(segments))
	}
	return c
}

// NewSewSegments puts whole segments in the given order and joins them into
// one. order[i] is the current number of the segment to place i-th. Points
// before the first segment start (leading waypoints) count as part of
// segment 0.
func NewSewSegments(s *model.Session, order []int) *Compound {
	bounds := segmentBounds(s.Track)
	if len(bounds) < 2 || !model.IsPermutation(order, len(bounds)) {
		return nil
	}
	perm := make([]int, 0, s.Track.NumPoints())
	segments := make(map[model.PointID]bool)
	for pos, seg := range order {
		b := bounds[seg]
		for i := b[0]; i < b[1]; i++ {
			perm = append(perm, i)
		}
		first := s.Track.NextTrackPoint(b[0])
		if first < 0 || first >= b[1] {
			continue
		}
		p := s.Track.Point(first)
		if want := pos == 0; p.SegmentStart() != want {
			segments[p.ID()] = want
		}
	}

	c := NewCompound()
	if !isIdentity(perm) {
		c.Add(NewRearrangePoints(perm))
	}
	if len(segments) > 0 {
		c.Add(NewSetSegments(segments))
	}
	if c.Len() == 0 {
		return nil
	}
	return c
}

// NewCutAndMove moves the points start..end inclusive so that they come
// directly before the point currently at dest, or to the end when dest is
// NumPoints. The moved block becomes its own segment.
func NewCutAndMove(s *model.Session, start, end, dest int) *Compound {
	n := s.Track.NumPoints()
	if start < 0 || end < start || end >= n || dest < 0 || dest > n {
		return nil
	}
	if dest >= start && dest <= end+1 {
		return nil
	}

	perm := make([]int, 0, n)
	block := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		block = append(block, i)
	}
	for i := 0; i <= n; i++ {
		if i == dest {
			perm = append(perm, block...)
		}
		if i < n && (i < start || i > end) {
			perm = append(perm, i)
		}
	}

	segments := make(map[model.PointID]bool)
	want := func(index int, on bool) {
		if index < 0 {
			return
		}
		p := s.Track.Point(index)
		if p.SegmentStart() == on {
			delete(segments, p.ID())
		} else {
			segments[p.ID()] = on
		}
	}
	blockFirst := s.Track.NextTrackPoint(start)
	if blockFirst > end {
		blockFirst = -1
	}
	if after := s.Track.NextTrackPoint(end + 1); after >= 0 && blockFirst >= 0 {
		want(after, s.Track.Point(blockFirst).SegmentStart() || s.Track.Point(after).SegmentStart())
	}
	if blockFirst >= 0 {
		want(blockFirst, true)
		if dest < n {
			want(s.Track.NextTrackPoint(dest), true)
		}
	}

	c := NewCompound(NewRearrangePoints(perm))
	if len(segments) > 0 {
		c.Add(NewSetSegments(segments))
	}
	return c
}

// NewLoadMediaWithPoints appends new points together with their media in one
// undoable step. media[i] belongs to points[i] and may be nil.
func NewLoadMediaWithPoints(points []*model.DataPoint, media []*model.Media) *Compound {
	if len(points) == 0 || len(points) != len(media) {
		return nil
	}
	c := NewCompound(NewAppendRange(points))
	links := make([]MediaLink, 0, len(media))
	var selector core.MediaSelector
	for i, m := range media {
		if m == nil {
			continue
		}
		c.Add(NewAppendMedia(m))
		l := MediaLink{Point: points[i].ID()}
		if m.Kind() == core.Audio {
			l.Audio = m
			selector |= core.AudioOnly
		} else {
			l.Photo = m
			selector |= core.PhotosOnly
		}
		links = append(links, l)
	}
	if len(links) > 0 {
		c.Add(NewConnectMultipleMedia(links, selector))
	}
	return c
}

// Correlation pairs a media object with the point it should be attached to.
// When InsertAt is zero or more, Point is a new point (interpolated or cloned)
// to insert at that index; otherwise Point is already in the track.
type Correlation struct {
	Media    *model.Media
	Point    *model.DataPoint
	InsertAt int
}

// NewCorrelateMedia inserts any new points, in ascending index order, and
// links every media object to its point. Media must already be listed.
func NewCorrelateMedia(items []Correlation) *Compound {
	if len(items) == 0 {
		return nil
	}
	inserts := make([]Correlation, 0, len(items))
	for _, it := range items {
		if it.Media == nil || it.Point == nil {
			return nil
		}
		if it.InsertAt >= 0 {
			inserts = append(inserts, it)
		}
	}
	sort.SliceStable(inserts, func(i, j int) bool { return inserts[i].InsertAt < inserts[j].InsertAt })

	c := NewCompound()
	for _, it := range inserts {
		c.Add(NewInsertPoint(it.Point, it.InsertAt))
	}
	var selector core.MediaSelector
	links := make([]MediaLink, 0, len(items))
	for _, it := range items {
		l := MediaLink{Point: it.Point.ID()}
		if it.Media.Kind() == core.Audio {
			l.Audio = it.Media
			selector |= core.AudioOnly
		} else {
			l.Photo = it.Media
			selector |= core.PhotosOnly
		}
		links = append(links, l)
	}
	c.Add(NewConnectMultipleMedia(links, selector))
	return c
}

// SegmentCount returns the number of segments NewSewSegments reorders. A
// track with points but no track points counts as one segment.
func SegmentCount(t *model.Track) int {
	return len(segmentBounds(t))
}

// segmentBounds returns [first, end) index pairs, one per segment.
func segmentBounds(t *model.Track) [][2]int {
	var bounds [][2]int
	start := 0
	seenTrackPoint := false
	for i := 0; i < t.NumPoints(); i++ {
		p := t.Point(i)
		if p.IsWaypoint() {
			continue
		}
		if p.SegmentStart() && seenTrackPoint {
			bounds = append(bounds, [2]int{start, i})
			start = i
		}
		seenTrackPoint = true
	}
	if t.NumPoints() > 0 {
		bounds = append(bounds, [2]int{start, t.NumPoints()})
	}
	return bounds
}

func identity(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}

func isIdentity(perm []int) bool {
	for i, v := range perm {
		if i != v {
			return false
		}
	}
	return true
}
