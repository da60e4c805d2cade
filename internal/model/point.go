package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trackedit/trackedit/pkg/core"
)

// PointID is a stable handle for a track point. It survives reordering and
// removal, unlike the point's index.
type PointID = uuid.UUID

// ErrInvalidFieldValue is returned when a field value cannot be parsed.
var ErrInvalidFieldValue = errors.New("invalid field value")

// DataPoint is a single track point or waypoint.
type DataPoint struct {
	id           PointID
	latitude     float64
	longitude    float64
	altitude     core.Altitude
	timestamp    time.Time
	fields       map[core.Field]string
	segmentStart bool
	waypoint     bool
	photoID      MediaID
	audioID      MediaID
}

// NewDataPoint creates a track point with a fresh id.
func NewDataPoint(latitude, longitude float64, altitude core.Altitude) *DataPoint {
	return &DataPoint{
		id:        uuid.New(),
		latitude:  latitude,
		longitude: longitude,
		altitude:  altitude,
		fields:    make(map[core.Field]string),
	}
}

// NewWaypoint creates a named waypoint with a fresh id.
func NewWaypoint(latitude, longitude float64, altitude core.Altitude, name string) *DataPoint {
	p := NewDataPoint(latitude, longitude, altitude)
	p.waypoint = true
	p.fields[core.FieldWaypointName] = name
	return p
}

func (p *DataPoint) ID() PointID { return p.id }
func (p *DataPoint) Latitude() float64 { return p.latitude }
func (p *DataPoint) Longitude() float64 { return p.longitude }
func (p *DataPoint) Altitude() core.Altitude { return p.altitude }
func (p *DataPoint) SegmentStart() bool { return p.segmentStart }
func (p *DataPoint) IsWaypoint() bool { return p.waypoint }
func (p *DataPoint) PhotoID() MediaID { return p.photoID }
func (p *DataPoint) AudioID() MediaID { return p.audioID }
func (p *DataPoint) SetSegmentStart(on bool) { p.segmentStart = on }
func (p *DataPoint) SetWaypoint(on bool) { p.waypoint = on }
func (p *DataPoint) SetAltitude(a core.Altitude) { p.altitude = a }

// Timestamp returns the point time and whether it has one.
func (p *DataPoint) Timestamp() (time.Time, bool) {
	return p.timestamp, !p.timestamp.IsZero()
}

// SetTimestamp sets the point time; the zero time clears it.
func (p *DataPoint) SetTimestamp(t time.Time) {
	p.timestamp = t
}

// WaypointName returns the name field.
func (p *DataPoint) WaypointName() string {
	return p.fields[core.FieldWaypointName]
}

// MediaID returns the id of the linked media of the given kind, uuid.Nil if none.
func (p *DataPoint) MediaID(kind core.MediaKind) MediaID {
	if kind == core.Audio {
		return p.audioID
	}
	return p.photoID
}

func (p *DataPoint) setMediaID(kind core.MediaKind, id MediaID) {
	if kind == core.Audio {
		p.audioID = id
	} else {
		p.photoID = id
	}
}

// FieldValue returns the textual value of f. Numeric values are formatted so
// that parsing them back gives the identical number.
func (p *DataPoint) FieldValue(f core.Field) string {
	switch f {
	case core.FieldLatitude:
		return strconv.FormatFloat(p.latitude, 'f', -1, 64)
	case core.FieldLongitude:
		return strconv.FormatFloat(p.longitude, 'f', -1, 64)
	case core.FieldAltitude:
		return p.altitude.String()
	case core.FieldTimestamp:
		if p.timestamp.IsZero() {
			return ""
		}
		return p.timestamp.Format(time.RFC3339Nano)
	default:
		return p.fields[f]
	}
}

// SetFieldValue parses value into f. unit is only consulted for altitude.
// The point is left unchanged when the value does not parse.
func (p *DataPoint) SetFieldValue(f core.Field, value string, unit core.Unit) error {
	if err := ValidateFieldValue(f, value); err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	switch f {
	case core.FieldLatitude:
		p.latitude, _ = strconv.ParseFloat(value, 64)
	case core.FieldLongitude:
		p.longitude, _ = strconv.ParseFloat(value, 64)
	case core.FieldAltitude:
		p.altitude, _ = core.ParseAltitude(value, unit)
	case core.FieldTimestamp:
		if value == "" {
			p.timestamp = time.Time{}
		} else {
			p.timestamp, _ = time.Parse(time.RFC3339Nano, value)
		}
	default:
		if value == "" {
			delete(p.fields, f)
		} else {
			p.fields[f] = value
		}
	}
	return nil
}

// ValidateFieldValue checks that value would be accepted by SetFieldValue.
func ValidateFieldValue(f core.Field, value string) error {
	value = strings.TrimSpace(value)
	switch f {
	case core.FieldLatitude, core.FieldLongitude:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s %q", ErrInvalidFieldValue, f, value)
		}
		limit := 180.0
		if f == core.FieldLatitude {
			limit = 90.0
		}
		if v < -limit || v > limit {
			return fmt.Errorf("%w: %s %v out of range", ErrInvalidFieldValue, f, v)
		}
	case core.FieldAltitude:
		if _, err := core.ParseAltitude(value, core.Metres); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFieldValue, err)
		}
	case core.FieldTimestamp:
		if value == "" {
			return nil
		}
		if _, err := time.Parse(time.RFC3339Nano, value); err != nil {
			return fmt.Errorf("%w: %s %q", ErrInvalidFieldValue, f, value)
		}
	}
	return nil
}

// Clone copies the point's values under a fresh id, without media links.
func (p *DataPoint) Clone() *DataPoint {
	c := *p
	c.id = uuid.New()
	c.photoID = uuid.Nil
	c.audioID = uuid.Nil
	c.fields = make(map[core.Field]string, len(p.fields))
	for k, v := range p.fields {
		c.fields[k] = v
	}
	return &c
}

// CustomFields returns the non-builtin fields set on the point.
func (p *DataPoint) CustomFields() map[core.Field]string {
	out := make(map[core.Field]string)
	for k, v := range p.fields {
		if !k.IsBuiltin() {
			out[k] = v
		}
	}
	return out
}

// TextFields returns every free-form field set on the point, builtin or not.
func (p *DataPoint) TextFields() map[core.Field]string {
	out := make(map[core.Field]string, len(p.fields))
	for k, v := range p.fields {
		out[k] = v
	}
	return out
}

// Restore rebuilds a point with a known id, used when loading a stored session.
func Restore(id PointID, latitude, longitude float64, altitude core.Altitude, timestamp time.Time,
	fields map[core.Field]string, segmentStart, waypoint bool) *DataPoint {
	p := &DataPoint{
		id:           id,
		latitude:     latitude,
		longitude:    longitude,
		altitude:     altitude,
		timestamp:    timestamp,
		fields:       make(map[core.Field]string, len(fields)),
		segmentStart: segmentStart,
		waypoint:     waypoint,
	}
	for k, v := range fields {
		p.fields[k] = v
	}
	return p
}
