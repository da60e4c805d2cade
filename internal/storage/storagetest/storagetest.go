// Package storagetest holds a conformance suite shared by the storage
// backends' tests.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/internal/storage"
	"github.com/trackedit/trackedit/pkg/core"
)

// SampleSession builds a three point session with a linked photo, an
// unlinked photo and a linked audio clip.
func SampleSession(t *testing.T) *model.Session {
	t.Helper()
	a := model.NewDataPoint(47.1, 8.2, core.NewAltitude(3155, core.Feet))
	a.SetSegmentStart(true)
	a.SetTimestamp(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, a.SetFieldValue(core.FieldComment, "start", core.Metres))
	b := model.NewWaypoint(47.2, 8.3, core.NoAltitude, "Hut")
	c := model.NewDataPoint(47.3, 8.4, core.NewAltitude(900, core.Metres))

	s := model.NewSession(model.NewTrack(a, b, c))
	photo := model.NewPhoto("summit.jpg")
	photo.SetStatus(core.Connected)
	clip := model.NewAudioClip("note.wav")
	require.True(t, s.Photos.Add(model.NewPhoto("loose.jpg")))
	require.True(t, s.Photos.Add(photo))
	require.True(t, s.Audio.Add(clip))
	s.Link(c, photo)
	s.Link(a, clip)
	return s
}

// RequireSameSession asserts that got holds the same points, media and
// links as want.
func RequireSameSession(t *testing.T, want, got *model.Session) {
	t.Helper()
	require.Equal(t, want.Track.NumPoints(), got.Track.NumPoints())
	for i, wp := range want.Track.Points() {
		gp := got.Track.Point(i)
		assert.Equal(t, wp.ID(), gp.ID(), "point %d id", i)
		assert.InDelta(t, wp.Latitude(), gp.Latitude(), 1e-9, "point %d latitude", i)
		assert.InDelta(t, wp.Longitude(), gp.Longitude(), 1e-9, "point %d longitude", i)
		assert.Equal(t, wp.Altitude(), gp.Altitude(), "point %d altitude", i)
		wt, wok := wp.Timestamp()
		gt, gok := gp.Timestamp()
		assert.Equal(t, wok, gok, "point %d has timestamp", i)
		assert.True(t, wt.Equal(gt), "point %d timestamp", i)
		assert.Equal(t, wp.SegmentStart(), gp.SegmentStart(), "point %d segment start", i)
		assert.Equal(t, wp.IsWaypoint(), gp.IsWaypoint(), "point %d waypoint", i)
		assert.Equal(t, wp.TextFields(), gp.TextFields(), "point %d fields", i)
	}
	for _, kind := range []core.MediaKind{core.Photo, core.Audio} {
		wl, gl := want.Media(kind), got.Media(kind)
		require.Equal(t, wl.Len(), gl.Len(), "%s count", kind)
		for i := 0; i < wl.Len(); i++ {
			wm, gm := wl.At(i), gl.At(i)
			assert.Equal(t, wm.ID(), gm.ID())
			assert.Equal(t, wm.Name(), gm.Name())
			assert.Equal(t, wm.Status(), gm.Status())
			assert.Equal(t, wm.PointID(), gm.PointID())
		}
	}
	assert.NoError(t, got.CheckLinks())
}

// RunBackendSuite exercises the Backend contract against fresh backends
// returned by newBackend. The backend is initialised and closed here.
func RunBackendSuite(t *testing.T, newBackend func(t *testing.T) storage.Backend) {
	ctx := context.Background()

	open := func(t *testing.T) storage.Backend {
		b := newBackend(t)
		require.NoError(t, b.Init())
		t.Cleanup(func() { _ = b.Close() })
		return b
	}

	t.Run("save and load", func(t *testing.T) {
		b := open(t)
		want := SampleSession(t)
		require.NoError(t, b.Save(ctx, "alps", want))

		got, err := b.Load(ctx, "alps")
		require.NoError(t, err)
		RequireSameSession(t, want, got)
	})

	t.Run("load missing", func(t *testing.T) {
		b := open(t)
		_, err := b.Load(ctx, "nowhere")
		assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	})

	t.Run("save replaces", func(t *testing.T) {
		b := open(t)
		s := SampleSession(t)
		require.NoError(t, b.Save(ctx, "alps", s))
		require.True(t, s.Track.DeletePoint(1))
		require.NoError(t, b.Save(ctx, "alps", s))

		got, err := b.Load(ctx, "alps")
		require.NoError(t, err)
		RequireSameSession(t, s, got)
	})

	t.Run("loaded sessions are independent", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Save(ctx, "alps", SampleSession(t)))

		first, err := b.Load(ctx, "alps")
		require.NoError(t, err)
		first.Track.Clear()

		second, err := b.Load(ctx, "alps")
		require.NoError(t, err)
		assert.Equal(t, 3, second.Track.NumPoints())
	})

	t.Run("list", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Save(ctx, "jura", SampleSession(t)))
		require.NoError(t, b.Save(ctx, "alps", SampleSession(t)))

		names, err := b.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alps", "jura"}, names)
	})
}
