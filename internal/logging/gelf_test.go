package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureGelf struct {
	messages []*gelf.Message
	err      error
}

func (c *captureGelf) WriteMessage(m *gelf.Message) error {
	c.messages = append(c.messages, m)
	return c.err
}

func TestGelfHandler_WritesMessage(t *testing.T) {
	w := &captureGelf{}
	logger := slog.New(NewGelfHandler(w, "info"))

	logger.Warn("link dropped", "point", "p-1", "count", 3, "ok", true)

	require.Len(t, w.messages, 1)
	m := w.messages[0]
	assert.Equal(t, "1.1", m.Version)
	assert.Equal(t, "link dropped", m.Short)
	assert.Equal(t, gelfWarn, m.Level)
	assert.Equal(t, "p-1", m.Extra["_point"])
	assert.Equal(t, int64(3), m.Extra["_count"])
	assert.Equal(t, true, m.Extra["_ok"])
	assert.NotZero(t, m.TimeUnix)
}

func TestGelfHandler_FiltersBelowLevel(t *testing.T) {
	w := &captureGelf{}
	logger := slog.New(NewGelfHandler(w, "warn"))

	logger.Info("quiet")
	logger.Error("loud")

	require.Len(t, w.messages, 1)
	assert.Equal(t, "loud", w.messages[0].Short)
	assert.Equal(t, gelfError, w.messages[0].Level)
}

func TestGelfHandler_AttrsAndGroups(t *testing.T) {
	w := &captureGelf{}
	logger := slog.New(NewGelfHandler(w, "debug")).
		With("session", "alps").
		WithGroup("cmd")

	logger.Debug("done", "name", "Reverse", slog.Group("range", "first", 2, "last", 5))

	require.Len(t, w.messages, 1)
	extra := w.messages[0].Extra
	assert.Equal(t, "alps", extra["_session"])
	assert.Equal(t, "Reverse", extra["_cmd.name"])
	assert.Equal(t, int64(2), extra["_cmd.range.first"])
	assert.Equal(t, int64(5), extra["_cmd.range.last"])
	assert.Equal(t, gelfDebug, w.messages[0].Level)
}

func TestGelfHandler_WithAttrsDoesNotLeak(t *testing.T) {
	w := &captureGelf{}
	base := slog.New(NewGelfHandler(w, "info"))
	base.With("a", 1).Info("first")
	base.Info("second")

	require.Len(t, w.messages, 2)
	assert.Contains(t, w.messages[0].Extra, "_a")
	assert.NotContains(t, w.messages[1].Extra, "_a")
}

func TestGelfHandler_ReturnsWriteError(t *testing.T) {
	w := &captureGelf{err: errors.New("unreachable")}
	h := NewGelfHandler(w, "info")

	err := h.Handle(context.Background(), slog.Record{Message: "x", Level: slog.LevelInfo})
	assert.EqualError(t, err, "unreachable")
}

func TestGelfLevel(t *testing.T) {
	assert.Equal(t, gelfDebug, gelfLevel(slog.LevelDebug))
	assert.Equal(t, gelfInfo, gelfLevel(slog.LevelInfo))
	assert.Equal(t, gelfWarn, gelfLevel(slog.LevelWarn))
	assert.Equal(t, gelfError, gelfLevel(slog.LevelError+4))
}
