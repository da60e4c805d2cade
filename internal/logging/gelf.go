package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Graylog2/go-gelf/gelf"
)

// syslog severities used by GELF
const (
	gelfError int32 = 3
	gelfWarn  int32 = 4
	gelfInfo  int32 = 6
	gelfDebug int32 = 7
)

// GelfWriter is the part of *gelf.Writer the handler needs.
type GelfWriter interface {
	WriteMessage(m *gelf.Message) error
}

// NewGraylogWriter dials a Graylog GELF UDP input.
func NewGraylogWriter(address string) (*gelf.Writer, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, fmt.Errorf("failed to create graylog writer: %w", err)
	}
	w.Facility = "trackedit"
	return w, nil
}

// GelfHandler is a slog.Handler that ships records to Graylog.
type GelfHandler struct {
	w      GelfWriter
	level  slog.Leveler
	host   string
	prefix string
	attrs  map[string]any
}

// NewGelfHandler creates a handler writing records at or above level to w.
func NewGelfHandler(w GelfWriter, level string) *GelfHandler {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return &GelfHandler{
		w:     w,
		level: parseLevel(level),
		host:  host,
		attrs: map[string]any{},
	}
}

func (h *GelfHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *GelfHandler) Handle(_ context.Context, r slog.Record) error {
	extra := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for k, v := range h.attrs {
		extra[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		addGelfAttr(extra, h.prefix, a)
		return true
	})

	return h.w.WriteMessage(&gelf.Message{
		Version:  "1.1",
		Host:     h.host,
		Short:    r.Message,
		TimeUnix: float64(r.Time.UnixNano()) / 1e9,
		Level:    gelfLevel(r.Level),
		Extra:    extra,
	})
}

func (h *GelfHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		addGelfAttr(next.attrs, h.prefix, a)
	}
	return next
}

func (h *GelfHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.prefix = h.prefix + name + "."
	return next
}

func (h *GelfHandler) clone() *GelfHandler {
	attrs := make(map[string]any, len(h.attrs))
	for k, v := range h.attrs {
		attrs[k] = v
	}
	return &GelfHandler{w: h.w, level: h.level, host: h.host, prefix: h.prefix, attrs: attrs}
}

// addGelfAttr flattens a into GELF additional fields, which carry a leading underscore.
func addGelfAttr(dst map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			addGelfAttr(dst, p, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	switch v.Kind() {
	case slog.KindString:
		dst["_"+prefix+a.Key] = v.String()
	case slog.KindInt64:
		dst["_"+prefix+a.Key] = v.Int64()
	case slog.KindUint64:
		dst["_"+prefix+a.Key] = v.Uint64()
	case slog.KindFloat64:
		dst["_"+prefix+a.Key] = v.Float64()
	case slog.KindBool:
		dst["_"+prefix+a.Key] = v.Bool()
	default:
		dst["_"+prefix+a.Key] = fmt.Sprint(v.Any())
	}
}

func gelfLevel(l slog.Level) int32 {
	switch {
	case l >= slog.LevelError:
		return gelfError
	case l >= slog.LevelWarn:
		return gelfWarn
	case l >= slog.LevelInfo:
		return gelfInfo
	default:
		return gelfDebug
	}
}
