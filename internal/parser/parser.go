// Package parser turns textual command arguments into the typed values the
// edit handlers work with. It does not touch sessions.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/trackedit/trackedit/internal/command"
	"github.com/trackedit/trackedit/internal/geo"
	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/internal/util"
	"github.com/trackedit/trackedit/pkg/core"
)

var (
	ErrMissingArgs = errors.New("missing arguments")
	ErrOutOfRange  = errors.New("index out of range")
)

// Parser provides pure string -> value conversion. Altitudes without an
// explicit unit are read in the parser's default unit.
type Parser struct {
	logger *slog.Logger
	unit   core.Unit
}

// NewParser creates a parser reading bare altitudes in unit.
func NewParser(logger *slog.Logger, unit core.Unit) *Parser {
	return &Parser{logger: logger, unit: unit}
}

// Unit returns the default altitude unit.
func (p *Parser) Unit() core.Unit {
	return p.unit
}

// Require checks that args holds at least n values.
func Require(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("%w: got %d, need %d (%s)", ErrMissingArgs, len(args), n, usage)
	}
	return nil
}

// ParseIndex parses a point index in [0, n).
func (p *Parser) ParseIndex(s string, n int) (int, error) {
	s = util.Clean(s)
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: %w", s, err)
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, n)
	}
	return i, nil
}

// ParseCount parses a positive number of items.
func (p *Parser) ParseCount(s string) (int, error) {
	s = util.Clean(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: count %d must be positive", ErrOutOfRange, n)
	}
	return n, nil
}

// ParseBool parses on/off style flags.
func (p *Parser) ParseBool(s string) (bool, error) {
	switch strings.ToLower(util.Clean(s)) {
	case "1", "on", "true", "yes":
		return true, nil
	case "0", "off", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid flag %q, want on or off", s)
	}
}

// ParseRange parses "a-b" (inclusive) or a single index "a" into a range of
// points in [0, n).
func (p *Parser) ParseRange(s string, n int) (start, end int, err error) {
	s = util.Clean(s)
	lo, hi, found := strings.Cut(s, "-")
	if start, err = p.ParseIndex(lo, n); err != nil {
		return 0, 0, err
	}
	if !found {
		return start, start, nil
	}
	if end, err = p.ParseIndex(hi, n); err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, fmt.Errorf("invalid range %q: end before start", s)
	}
	return start, end, nil
}

// ParseIndexList parses comma separated indices and ranges ("1,4-6") into
// sorted unique indices in [0, n).
func (p *Parser) ParseIndexList(s string, n int) ([]int, error) {
	seen := make(map[int]bool)
	for _, part := range strings.Split(util.Clean(s), ",") {
		start, end, err := p.ParseRange(part, n)
		if err != nil {
			return nil, err
		}
		for i := start; i <= end; i++ {
			seen[i] = true
		}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out, nil
}

// ParsePermutation parses "2,0,1" and checks it is a permutation of n points.
func (p *Parser) ParsePermutation(s string, n int) ([]int, error) {
	parts := strings.Split(util.Clean(s), ",")
	perm := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid permutation entry %q: %w", part, err)
		}
		perm[i] = v
	}
	if !model.IsPermutation(perm, n) {
		return nil, fmt.Errorf("%q is not a permutation of %d points", s, n)
	}
	return perm, nil
}

// ParseAltitude parses "120", "120m" or "394ft". An empty value is no altitude.
func (p *Parser) ParseAltitude(s string) (core.Altitude, error) {
	value, unit := p.splitUnit(util.Clean(s))
	return core.ParseAltitude(value, unit)
}

func (p *Parser) splitUnit(s string) (string, core.Unit) {
	lower := strings.ToLower(s)
	for _, suffix := range []string{"feet", "ft", "metres", "meters", "m"} {
		if strings.HasSuffix(lower, suffix) {
			if u, err := core.ParseUnit(suffix); err == nil {
				return strings.TrimSpace(s[:len(s)-len(suffix)]), u
			}
		}
	}
	return s, p.unit
}

// ParseFieldEdit parses "field=value". Altitude values may carry a unit.
func (p *Parser) ParseFieldEdit(s string) (command.FieldEdit, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.ToLower(util.Clean(key))
	if !ok || key == "" {
		return command.FieldEdit{}, fmt.Errorf("invalid field edit %q, want field=value", s)
	}
	edit := command.FieldEdit{Field: core.Field(key), Value: util.Clean(value), Unit: p.unit}
	if edit.Field == core.FieldAltitude {
		edit.Value, edit.Unit = p.splitUnit(edit.Value)
	}
	if err := model.ValidateFieldValue(edit.Field, edit.Value); err != nil {
		return command.FieldEdit{}, err
	}
	return edit, nil
}

// ParseFieldEdits parses every argument with ParseFieldEdit.
func (p *Parser) ParseFieldEdits(args []string) ([]command.FieldEdit, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: no field edits", ErrMissingArgs)
	}
	edits := make([]command.FieldEdit, 0, len(args))
	for _, a := range args {
		e, err := p.ParseFieldEdit(a)
		if err != nil {
			return nil, err
		}
		edits = append(edits, e)
	}
	return edits, nil
}

// ParseMediaKind parses "photo" or "audio".
func (p *Parser) ParseMediaKind(s string) (core.MediaKind, error) {
	switch strings.ToLower(util.Clean(s)) {
	case "photo", "photos":
		return core.Photo, nil
	case "audio", "audios", "clip", "clips":
		return core.Audio, nil
	default:
		return core.Photo, fmt.Errorf("unknown media kind %q", s)
	}
}

// ParseMediaSelector parses "photo", "audio" or "both". An empty value
// selects both kinds.
func (p *Parser) ParseMediaSelector(s string) (core.MediaSelector, error) {
	switch strings.ToLower(util.Clean(s)) {
	case "", "both", "all":
		return core.BothMedia, nil
	case "photo", "photos":
		return core.PhotosOnly, nil
	case "audio", "audios", "clips":
		return core.AudioOnly, nil
	default:
		return 0, fmt.Errorf("unknown media selector %q", s)
	}
}

// ParsePoint builds a new point from ["lat,lon", altitude?, name?]. A name
// makes the point a waypoint.
func (p *Parser) ParsePoint(args []string) (*model.DataPoint, error) {
	if err := Require(args, 1, "lat,lon [altitude] [name]"); err != nil {
		return nil, err
	}
	pos, err := geo.ParseLatLon(util.Clean(args[0]))
	if err != nil {
		return nil, fmt.Errorf("error parsing position %q: %w", args[0], err)
	}
	alt := core.NoAltitude
	if len(args) > 1 {
		if alt, err = p.ParseAltitude(args[1]); err != nil {
			return nil, err
		}
	}
	if len(args) > 2 {
		if name := util.Clean(strings.Join(args[2:], " ")); name != "" {
			return model.NewWaypoint(pos.Lat, pos.Lon, alt, name), nil
		}
	}
	return model.NewDataPoint(pos.Lat, pos.Lon, alt), nil
}
