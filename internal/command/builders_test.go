package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/pkg/core"
)

func TestDeleteMarkedPoints(t *testing.T) {
	s := newTestSession(t, 6)
	setSegmentPattern(t, s, "S--S--")

	cmd := NewDeleteMarkedPoints(s, []int{4, 3, 4})
	require.NotNil(t, cmd)
	assertRoundTrip(t, s, cmd)

	assert.Equal(t, []string{"Point0", "Point1", "Point2", "Point5"}, names(s))
	assert.Equal(t, "S--S", segmentPattern(s))
}

func TestDeleteMarkedPoints_Invalid(t *testing.T) {
	s := newTestSession(t, 3)

	assert.Nil(t, NewDeleteMarkedPoints(s, nil))
	assert.Nil(t, NewDeleteMarkedPoints(s, []int{3}))
	assert.Nil(t, NewDeleteMarkedPoints(s, []int{-1}))
}

func TestShuffleAndCrop(t *testing.T) {
	s := newTestSession(t, 4)

	cmd := NewShuffleAndCrop([]int{0, 2, 1, 3}, 2, nil)
	require.NotNil(t, cmd)
	assert.Equal(t, 2, cmd.Len())
	assertRoundTrip(t, s, cmd)
	assert.Equal(t, []string{"Point0", "Point2"}, names(s))

	assert.Nil(t, NewShuffleAndCrop([]int{0, 1}, 0, nil))
}

func TestReverseRange(t *testing.T) {
	s := newTestSession(t, 6)
	setSegmentPattern(t, s, "S--S--")

	cmd := NewReverseRange(s, 1, 4)
	require.NotNil(t, cmd)
	assertRoundTrip(t, s, cmd)

	assert.Equal(t, []string{"Point0", "Point4", "Point3", "Point2", "Point1", "Point5"}, names(s))
	assert.Equal(t, "S--S--", segmentPattern(s))
	assert.True(t, s.Track.Point(3).SegmentStart(), "break now sits before Point2")
}

func TestReverseRange_Invalid(t *testing.T) {
	s := newTestSession(t, 4)

	assert.Nil(t, NewReverseRange(s, 2, 2))
	assert.Nil(t, NewReverseRange(s, 3, 1))
	assert.Nil(t, NewReverseRange(s, 0, 4))
	assert.Nil(t, NewReverseRange(s, -1, 2))
}

func TestSewSegments_Reorder(t *testing.T) {
	s := newTestSession(t, 6)
	setSegmentPattern(t, s, "S--S--")

	cmd := NewSewSegments(s, []int{1, 0})
	require.NotNil(t, cmd)
	assertRoundTrip(t, s, cmd)

	assert.Equal(t, []string{"Point3", "Point4", "Point5", "Point0", "Point1", "Point2"}, names(s))
	assert.Equal(t, "S-----", segmentPattern(s))
}

func TestSewSegments_InPlace(t *testing.T) {
	s := newTestSession(t, 6)
	setSegmentPattern(t, s, "S--S--")

	cmd := NewSewSegments(s, []int{0, 1})
	require.NotNil(t, cmd)
	assert.Equal(t, 1, cmd.Len())
	assertRoundTrip(t, s, cmd)

	assert.Equal(t, "S-----", segmentPattern(s))
}

func TestSewSegments_Invalid(t *testing.T) {
	s := newTestSession(t, 4)

	assert.Nil(t, NewSewSegments(s, []int{0}), "single segment")
	setSegmentPattern(t, s, "S-S-")
	assert.Nil(t, NewSewSegments(s, []int{0, 0}))
	assert.Nil(t, NewSewSegments(s, []int{0}))
}

func TestSegmentCount(t *testing.T) {
	s := newTestSession(t, 4)
	assert.Equal(t, 1, SegmentCount(s.Track))

	setSegmentPattern(t, s, "S-S-")
	assert.Equal(t, 2, SegmentCount(s.Track))

	for _, p := range s.Track.Points() {
		p.SetWaypoint(true)
	}
	assert.Equal(t, 1, SegmentCount(s.Track), "waypoints only")
	assert.Empty(t, s.Track.Segments())
	assert.Nil(t, NewSewSegments(s, []int{0}))

	assert.Zero(t, SegmentCount(model.NewTrack()))
}

func TestCutAndMove(t *testing.T) {
	s := newTestSession(t, 6)
	setSegmentPattern(t, s, "S-----")

	cmd := NewCutAndMove(s, 1, 2, 5)
	require.NotNil(t, cmd)
	assertRoundTrip(t, s, cmd)

	assert.Equal(t, []string{"Point0", "Point3", "Point4", "Point1", "Point2", "Point5"}, names(s))
	assert.Equal(t, "S--S-S", segmentPattern(s))
}

func TestCutAndMove_ToEnd(t *testing.T) {
	s := newTestSession(t, 5)
	setSegmentPattern(t, s, "S----")

	cmd := NewCutAndMove(s, 0, 1, 5)
	require.NotNil(t, cmd)
	assertRoundTrip(t, s, cmd)

	assert.Equal(t, []string{"Point2", "Point3", "Point4", "Point0", "Point1"}, names(s))
	assert.Equal(t, "S--S-", segmentPattern(s))
}

func TestCutAndMove_Invalid(t *testing.T) {
	s := newTestSession(t, 5)

	assert.Nil(t, NewCutAndMove(s, 1, 2, 2), "destination inside block")
	assert.Nil(t, NewCutAndMove(s, 1, 2, 3), "destination right after block")
	assert.Nil(t, NewCutAndMove(s, 2, 1, 4))
	assert.Nil(t, NewCutAndMove(s, 0, 5, 0))
	assert.Nil(t, NewCutAndMove(s, 0, 1, 6))
}

func TestLoadMediaWithPoints(t *testing.T) {
	s := newTestSession(t, 1)
	points := []*model.DataPoint{
		model.NewDataPoint(46.0, 7.0, core.NoAltitude),
		model.NewDataPoint(46.1, 7.1, core.NoAltitude),
		model.NewDataPoint(46.2, 7.2, core.NoAltitude),
	}
	photo := model.NewPhoto("p.jpg")
	clip := model.NewAudioClip("c.wav")

	cmd := NewLoadMediaWithPoints(points, []*model.Media{photo, nil, clip})
	require.NotNil(t, cmd)
	assertRoundTrip(t, s, cmd)

	assert.Equal(t, 4, s.Track.NumPoints())
	assert.Same(t, photo, s.MediaOf(points[0], core.Photo))
	assert.Same(t, clip, s.MediaOf(points[2], core.Audio))
	assert.Nil(t, s.MediaOf(points[1], core.Photo))
}

func TestLoadMediaWithPoints_Invalid(t *testing.T) {
	assert.Nil(t, NewLoadMediaWithPoints(nil, nil))
	assert.Nil(t, NewLoadMediaWithPoints([]*model.DataPoint{model.NewDataPoint(0, 0, core.NoAltitude)}, nil))
}

func TestCorrelateMedia(t *testing.T) {
	s := newTestSession(t, 4)
	photo := model.NewPhoto("existing-point.jpg")
	clip := model.NewAudioClip("new-point.wav")
	require.True(t, s.Photos.Add(photo))
	require.True(t, s.Audio.Add(clip))
	existing := s.Track.Point(1)
	interpolated := model.NewDataPoint(47.025, 8.025, core.NoAltitude)

	cmd := NewCorrelateMedia([]Correlation{
		{Media: photo, Point: existing, InsertAt: -1},
		{Media: clip, Point: interpolated, InsertAt: 3},
	})
	require.NotNil(t, cmd)
	assertRoundTrip(t, s, cmd)

	assert.Equal(t, 5, s.Track.NumPoints())
	assert.Same(t, interpolated, s.Track.Point(3))
	assert.Same(t, existing, s.PointOf(photo))
	assert.Same(t, interpolated, s.PointOf(clip))
}

func TestCorrelateMedia_ClonedSegmentStarts(t *testing.T) {
	s := newTestSession(t, 6)
	setSegmentPattern(t, s, "S--S--")
	first := model.NewPhoto("first.jpg")
	second := model.NewPhoto("second.jpg")
	require.True(t, s.Photos.Add(first))
	require.True(t, s.Photos.Add(second))

	cmd := NewCorrelateMedia([]Correlation{
		{Media: first, Point: s.Track.Point(0).Clone(), InsertAt: 1},
		{Media: second, Point: s.Track.Point(3).Clone(), InsertAt: 4},
	})
	require.NotNil(t, cmd)
	assertRoundTrip(t, s, cmd)
}

func TestCorrelateMedia_Invalid(t *testing.T) {
	assert.Nil(t, NewCorrelateMedia(nil))
	assert.Nil(t, NewCorrelateMedia([]Correlation{{Media: model.NewPhoto("p.jpg"), InsertAt: -1}}))
}
