package undo

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackedit/trackedit/internal/command"
	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/pkg/core"
)

type recordingPublisher struct {
	flags []core.UpdateFlags
}

func (p *recordingPublisher) Publish(flags core.UpdateFlags) {
	p.flags = append(p.flags, flags)
}

type memoryJournal struct {
	entries []Entry
}

func (j *memoryJournal) Record(e Entry) {
	j.entries = append(j.entries, e)
}

func newSession(n int) *model.Session {
	points := make([]*model.DataPoint, n)
	for i := range points {
		points[i] = model.NewWaypoint(46+float64(i)*0.1, 7, core.NoAltitude, fmt.Sprintf("P%d", i))
	}
	return model.NewSession(model.NewTrack(points...))
}

func newManager(t *testing.T, s *model.Session, opts ...Option) *Manager {
	t.Helper()
	m, err := New("test", s, opts...)
	require.NoError(t, err)
	return m
}

func TestManager_DoUndoRedo(t *testing.T) {
	s := newSession(3)
	m := newManager(t, s)

	require.NoError(t, m.Do(command.NewDeletePoint(0)))
	assert.Equal(t, 2, s.Track.NumPoints())
	assert.True(t, m.CanUndo())
	assert.False(t, m.CanRedo())

	undone, err := m.Undo()
	require.NoError(t, err)
	assert.IsType(t, &command.DeletePoint{}, undone)
	assert.Equal(t, 3, s.Track.NumPoints())
	assert.Equal(t, "P0", s.Track.Point(0).WaypointName())
	assert.True(t, m.CanRedo())

	_, err = m.Redo()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Track.NumPoints())
	assert.Equal(t, 1, m.UndoDepth())
	assert.Equal(t, 0, m.RedoDepth())
}

func TestManager_EmptyStacks(t *testing.T) {
	m := newManager(t, newSession(1))

	_, err := m.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
	_, err = m.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestManager_FailedCommandIsNotRecorded(t *testing.T) {
	s := newSession(2)
	pub := &recordingPublisher{}
	m := newManager(t, s, WithPublisher(pub))

	err := m.Do(command.NewRearrangePoints([]int{0, 0}))
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.ErrorIs(t, m.Do(nil), ErrCommandFailed)

	assert.False(t, m.CanUndo())
	assert.Empty(t, pub.flags)
}

func TestManager_DoClearsRedo(t *testing.T) {
	s := newSession(4)
	m := newManager(t, s)

	require.NoError(t, m.Do(command.NewDeletePoint(0)))
	_, err := m.Undo()
	require.NoError(t, err)
	require.NoError(t, m.Do(command.NewDeletePoint(3)))

	assert.False(t, m.CanRedo())
}

func TestManager_MaxDepthDropsOldest(t *testing.T) {
	s := newSession(5)
	m := newManager(t, s, WithMaxDepth(2))

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Do(command.Describe(command.NewDeletePoint(-1), fmt.Sprintf("delete %d", i), "")))
	}

	assert.Equal(t, 2, m.UndoDepth())
	assert.Equal(t, []string{"delete 2", "delete 1"}, m.UndoDescriptions())
}

func TestManager_PublishesAndJournals(t *testing.T) {
	s := newSession(3)
	pub := &recordingPublisher{}
	journal := &memoryJournal{}
	m := newManager(t, s, WithPublisher(pub), WithJournal(journal))

	require.NoError(t, m.Do(command.Describe(command.NewDeleteAllPoints(), "clear track", "")))
	_, err := m.Undo()
	require.NoError(t, err)

	require.Len(t, pub.flags, 2)
	assert.True(t, pub.flags[0].Has(core.DataAddedOrRemoved))
	require.Len(t, journal.entries, 2)
	assert.Equal(t, ActionDo, journal.entries[0].Action)
	assert.Equal(t, "clear track", journal.entries[0].Description)
	assert.Equal(t, 0, journal.entries[0].NumPoints)
	assert.Equal(t, ActionUndo, journal.entries[1].Action)
	assert.Equal(t, 3, journal.entries[1].NumPoints)
	assert.Equal(t, "test", journal.entries[1].Session)
}

func TestManager_LinkCheckLogs(t *testing.T) {
	s := newSession(2)
	photo := model.NewPhoto("p.jpg")
	require.True(t, s.Photos.Add(photo))
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := newManager(t, s, WithLinkCheck(), WithLogger(logger))

	require.NoError(t, m.Do(command.NewConnectMedia(s.Track.Point(0).ID(), photo, nil, core.PhotosOnly)))

	assert.Contains(t, buf.String(), "command applied")
	assert.NotContains(t, buf.String(), "link check failed")
}

func TestManager_Clear(t *testing.T) {
	m := newManager(t, newSession(2))
	require.NoError(t, m.Do(command.NewDeletePoint(0)))

	m.Clear()

	assert.False(t, m.CanUndo())
	assert.Equal(t, "test", m.Name())
}
