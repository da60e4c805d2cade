package command

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/pkg/core"
)

// newTestSession builds a track of n points named Point0..Point{n-1} with
// the first point starting a segment.
func newTestSession(t *testing.T, n int) *model.Session {
	t.Helper()
	points := make([]*model.DataPoint, n)
	for i := range points {
		p := model.NewDataPoint(47.0+float64(i)*0.01, 8.0+float64(i)*0.01, core.NewAltitude(float64(400+i), core.Metres))
		require.NoError(t, p.SetFieldValue(core.FieldWaypointName, fmt.Sprintf("Point%d", i), core.Metres))
		points[i] = p
	}
	if n > 0 {
		points[0].SetSegmentStart(true)
	}
	return model.NewSession(model.NewTrack(points...))
}

func names(s *model.Session) []string {
	out := make([]string, s.Track.NumPoints())
	for i := range out {
		out[i] = s.Track.Point(i).WaypointName()
	}
	return out
}

// segmentPattern renders the segment flags as "S--S-".
func segmentPattern(s *model.Session) string {
	b := make([]byte, s.Track.NumPoints())
	for i := range b {
		b[i] = '-'
		if s.Track.Point(i).SegmentStart() {
			b[i] = 'S'
		}
	}
	return string(b)
}

func setSegmentPattern(t *testing.T, s *model.Session, pattern string) {
	t.Helper()
	require.Equal(t, len(pattern), s.Track.NumPoints())
	for i, c := range pattern {
		s.Track.Point(i).SetSegmentStart(c == 'S')
	}
}

type pointState struct {
	ID       model.PointID
	Fields   map[core.Field]string
	AltUnit  core.Unit
	Segment  bool
	Waypoint bool
	Photo    model.MediaID
	Audio    model.MediaID
}

type mediaState struct {
	ID     model.MediaID
	Point  model.PointID
	Status core.MediaStatus
}

type sessionState struct {
	Points    []pointState
	Photos    []mediaState
	Audio     []mediaState
	Current   int
	Start     int
	End       int
	FieldList []core.Field
}

func snapshot(s *model.Session) sessionState {
	st := sessionState{Current: s.Selection.CurrentPoint()}
	st.Start, st.End = s.Selection.Range()
	st.FieldList = s.Track.Fields()
	for _, p := range s.Track.Points() {
		ps := pointState{
			ID:       p.ID(),
			Fields:   make(map[core.Field]string),
			AltUnit:  p.Altitude().Unit(),
			Segment:  p.SegmentStart(),
			Waypoint: p.IsWaypoint(),
			Photo:    p.PhotoID(),
			Audio:    p.AudioID(),
		}
		for _, f := range s.Track.Fields() {
			ps.Fields[f] = p.FieldValue(f)
		}
		st.Points = append(st.Points, ps)
	}
	for _, m := range s.Photos.All() {
		st.Photos = append(st.Photos, mediaState{ID: m.ID(), Point: m.PointID(), Status: m.Status()})
	}
	for _, m := range s.Audio.All() {
		st.Audio = append(st.Audio, mediaState{ID: m.ID(), Point: m.PointID(), Status: m.Status()})
	}
	return st
}

// assertRoundTrip executes cmd, undoes it, checks the session is back where
// it started, then redoes it and checks the edited state comes back too.
func assertRoundTrip(t *testing.T, s *model.Session, cmd Command) {
	t.Helper()
	before := snapshot(s)

	require.True(t, cmd.Execute(s), "execute")
	require.NoError(t, s.CheckLinks())
	after := snapshot(s)

	inv := cmd.Inverse()
	require.NotNil(t, inv, "inverse")
	assert.True(t, inv.IsUndo())
	assert.False(t, cmd.IsUndo())
	assert.Same(t, cmd, inv.Inverse(), "inverse pair")

	require.True(t, inv.Execute(s), "undo")
	require.NoError(t, s.CheckLinks())
	assert.Equal(t, before, snapshot(s), "state after undo")

	require.True(t, inv.Inverse().Execute(s), "redo")
	require.NoError(t, s.CheckLinks())
	assert.Equal(t, after, snapshot(s), "state after redo")
	assert.Same(t, inv, cmd.Inverse(), "inverse is fixed")
}

func attachPhoto(t *testing.T, s *model.Session, index int, name string) *model.Media {
	t.Helper()
	m := model.NewPhoto(name)
	require.True(t, s.Photos.Add(m))
	s.Link(s.Track.Point(index), m)
	return m
}

func attachAudio(t *testing.T, s *model.Session, index int, name string) *model.Media {
	t.Helper()
	m := model.NewAudioClip(name)
	require.True(t, s.Audio.Add(m))
	s.Link(s.Track.Point(index), m)
	return m
}
