package model

import (
	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/trackedit/trackedit/internal/geo"
	"github.com/trackedit/trackedit/pkg/core"
)

// Track is the ordered list of points. A point's index is its position in
// the list; every insert or removal shifts the indices after it.
//
// known is add-only: points removed from the list stay resolvable by id so
// that media links held by removed points can still be checked and restored.
type Track struct {
	points []*DataPoint
	index  map[PointID]int
	known  map[PointID]*DataPoint
	fields []core.Field

	rescale bool
	extent  geom.Envelope
}

// NewTrack creates a track holding points in order.
func NewTrack(points ...*DataPoint) *Track {
	t := &Track{
		index:  make(map[PointID]int),
		known:  make(map[PointID]*DataPoint),
		fields: append([]core.Field(nil), core.BuiltinFields...),
	}
	t.points = append(t.points, points...)
	t.reindex()
	return t
}

// reindex rebuilds the id to index map after a structural change.
func (t *Track) reindex() {
	clear(t.index)
	for i, p := range t.points {
		t.index[p.id] = i
		t.known[p.id] = p
	}
	t.rescale = true
}

// NumPoints returns the number of points.
func (t *Track) NumPoints() int {
	return len(t.points)
}

// Point returns the point at index, nil when out of range.
func (t *Track) Point(index int) *DataPoint {
	if index < 0 || index >= len(t.points) {
		return nil
	}
	return t.points[index]
}

// Points returns a copy of the point list.
func (t *Track) Points() []*DataPoint {
	return append([]*DataPoint(nil), t.points...)
}

// IndexOf returns the current index of the point with id, -1 if it is not in the track.
func (t *Track) IndexOf(id PointID) int {
	if i, ok := t.index[id]; ok {
		return i
	}
	return -1
}

// Resolve returns any point that has ever been part of this track.
func (t *Track) Resolve(id PointID) *DataPoint {
	return t.known[id]
}

// InsertPoint inserts p at index, or appends when index is negative.
func (t *Track) InsertPoint(p *DataPoint, index int) bool {
	if p == nil || index > len(t.points) {
		return false
	}
	if _, dup := t.index[p.id]; dup {
		return false
	}
	if index < 0 {
		index = len(t.points)
	}
	t.points = append(t.points, nil)
	copy(t.points[index+1:], t.points[index:])
	t.points[index] = p
	t.reindex()
	return true
}

// AppendPoints appends points in order. It fails on empty input or when a
// point is already in the track.
func (t *Track) AppendPoints(points []*DataPoint) bool {
	if len(points) == 0 {
		return false
	}
	seen := make(map[PointID]bool, len(points))
	for _, p := range points {
		if p == nil || seen[p.id] {
			return false
		}
		if _, dup := t.index[p.id]; dup {
			return false
		}
		seen[p.id] = true
	}
	t.points = append(t.points, points...)
	t.reindex()
	return true
}

// CropTo truncates the track to length points. It fails unless
// 0 <= length < NumPoints.
func (t *Track) CropTo(length int) bool {
	if length < 0 || length >= len(t.points) {
		return false
	}
	for i := length; i < len(t.points); i++ {
		t.points[i] = nil
	}
	t.points = t.points[:length]
	t.reindex()
	return true
}

// DeletePoint removes the point at index.
func (t *Track) DeletePoint(index int) bool {
	if index < 0 || index >= len(t.points) {
		return false
	}
	copy(t.points[index:], t.points[index+1:])
	t.points[len(t.points)-1] = nil
	t.points = t.points[:len(t.points)-1]
	t.reindex()
	return true
}

// Clear removes every point.
func (t *Track) Clear() {
	t.points = nil
	t.reindex()
}

// RearrangePoints reorders the track so that the point at new index i is the
// point previously at perm[i]. It fails without change unless perm is a
// permutation of 0..NumPoints-1.
func (t *Track) RearrangePoints(perm []int) bool {
	if !IsPermutation(perm, len(t.points)) {
		return false
	}
	reordered := make([]*DataPoint, len(perm))
	for i, from := range perm {
		reordered[i] = t.points[from]
	}
	t.points = reordered
	t.reindex()
	return true
}

// IsPermutation reports whether perm holds each of 0..n-1 exactly once.
func IsPermutation(perm []int, n int) bool {
	if len(perm) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range perm {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// NextTrackPoint returns the index of the first non-waypoint at or after
// from, -1 if there is none.
func (t *Track) NextTrackPoint(from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(t.points); i++ {
		if !t.points[i].waypoint {
			return i
		}
	}
	return -1
}

// PreviousTrackPoint returns the index of the last non-waypoint at or before
// from, -1 if there is none.
func (t *Track) PreviousTrackPoint(from int) int {
	if from >= len(t.points) {
		from = len(t.points) - 1
	}
	for i := from; i >= 0; i-- {
		if !t.points[i].waypoint {
			return i
		}
	}
	return -1
}

// Fields returns the recognized field list.
func (t *Track) Fields() []core.Field {
	return append([]core.Field(nil), t.fields...)
}

// ExtendFields adds f to the recognized field list if it is missing.
func (t *Track) ExtendFields(f core.Field) bool {
	for _, existing := range t.fields {
		if existing == f {
			return false
		}
	}
	t.fields = append(t.fields, f)
	return true
}

// RequestRescale marks the cached extent stale.
func (t *Track) RequestRescale() {
	t.rescale = true
}

// RescaleRequested reports whether the extent will be recomputed on next use.
func (t *Track) RescaleRequested() bool {
	return t.rescale
}

// Extent returns the web mercator envelope of all points.
func (t *Track) Extent() geom.Envelope {
	if t.rescale {
		positions := make([]geo.LatLon, len(t.points))
		for i, p := range t.points {
			positions[i] = geo.LatLon{Lat: p.latitude, Lon: p.longitude}
		}
		t.extent = geo.Extent(positions)
		t.rescale = false
	}
	return t.extent
}

// Segments splits the track points, skipping waypoints, at every segment
// start. The first track point always opens a segment.
func (t *Track) Segments() [][]geo.LatLon {
	var segments [][]geo.LatLon
	for _, p := range t.points {
		if p.waypoint {
			continue
		}
		if p.segmentStart || len(segments) == 0 {
			segments = append(segments, nil)
		}
		last := len(segments) - 1
		segments[last] = append(segments[last], geo.LatLon{Lat: p.latitude, Lon: p.longitude})
	}
	return segments
}

// SegmentStarts returns the segment flag of every point, in order.
func (t *Track) SegmentStarts() []bool {
	flags := make([]bool, len(t.points))
	for i, p := range t.points {
		flags[i] = p.segmentStart
	}
	return flags
}
