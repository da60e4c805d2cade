package command

import (
	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/pkg/core"
)

// FieldEdit is one new value for one field. Unit applies to altitude only.
type FieldEdit struct {
	Field core.Field
	Value string
	Unit  core.Unit
}

// EditPoint applies several field edits to one point.
type EditPoint struct {
	base
	point model.PointID
	edits []FieldEdit

	// photo status to put back, set on inverses
	photoStatus *core.MediaStatus
}

// NewEditPoint creates a command applying edits to the point with id.
func NewEditPoint(id model.PointID, edits []FieldEdit) *EditPoint {
	return &EditPoint{
		base:  newBase(core.DataEdited, SnapshotBefore),
		point: id,
		edits: append([]FieldEdit(nil), edits...),
	}
}

func (c *EditPoint) Execute(s *model.Session) bool { return run(c, s) }

func (c *EditPoint) target(s *model.Session) *model.DataPoint {
	if s.Track.IndexOf(c.point) < 0 {
		return nil
	}
	return s.Track.Resolve(c.point)
}

func (c *EditPoint) apply(s *model.Session) bool {
	p := c.target(s)
	if p == nil || len(c.edits) == 0 {
		return false
	}
	for _, e := range c.edits {
		if model.ValidateFieldValue(e.Field, e.Value) != nil {
			return false
		}
	}
	moved := false
	for _, e := range c.edits {
		before := p.FieldValue(e.Field)
		beforeAlt := p.Altitude()
		_ = p.SetFieldValue(e.Field, e.Value, e.Unit)
		if e.Field.IsPosition() && (p.FieldValue(e.Field) != before || !p.Altitude().Equal(beforeAlt)) {
			moved = true
		}
	}
	if photo := s.MediaOf(p, core.Photo); photo != nil {
		switch {
		case c.photoStatus != nil:
			photo.SetStatus(*c.photoStatus)
		case moved:
			photo.SetStatus(core.NeedsReconnect)
		}
	}
	s.Track.RequestRescale()
	return true
}

// makeInverse records every edited field's current value, in the unit the
// point currently stores altitude in.
func (c *EditPoint) makeInverse(s *model.Session) Command {
	p := c.target(s)
	if p == nil {
		return nil
	}
	undo := make([]FieldEdit, 0, len(c.edits))
	for i := len(c.edits) - 1; i >= 0; i-- {
		f := c.edits[i].Field
		undo = append(undo, FieldEdit{Field: f, Value: p.FieldValue(f), Unit: p.Altitude().Unit()})
	}
	inv := NewEditPoint(c.point, undo)
	if photo := s.MediaOf(p, core.Photo); photo != nil {
		status := photo.Status()
		inv.photoStatus = &status
	}
	return inv
}

// PointValue is a new value of one field on one point.
type PointValue struct {
	Point model.PointID
	Value string
	Unit  core.Unit
}

// EditSingleField sets one field across many points.
type EditSingleField struct {
	base
	field  core.Field
	values []PointValue
}

// NewEditSingleField creates a bulk edit of field.
func NewEditSingleField(field core.Field, values []PointValue) *EditSingleField {
	return &EditSingleField{
		base:   newBase(core.DataEdited, SnapshotBefore),
		field:  field,
		values: append([]PointValue(nil), values...),
	}
}

func (c *EditSingleField) Execute(s *model.Session) bool { return run(c, s) }

func (c *EditSingleField) apply(s *model.Session) bool {
	if len(c.values) == 0 || c.field == "" {
		return false
	}
	for _, v := range c.values {
		if s.Track.IndexOf(v.Point) < 0 || model.ValidateFieldValue(c.field, v.Value) != nil {
			return false
		}
	}
	s.Track.ExtendFields(c.field)
	for _, v := range c.values {
		_ = s.Track.Resolve(v.Point).SetFieldValue(c.field, v.Value, v.Unit)
	}
	if c.field.IsPosition() {
		s.Track.RequestRescale()
	}
	return true
}

func (c *EditSingleField) makeInverse(s *model.Session) Command {
	prev := make([]PointValue, 0, len(c.values))
	for i := len(c.values) - 1; i >= 0; i-- {
		p := s.Track.Resolve(c.values[i].Point)
		if p == nil {
			return nil
		}
		prev = append(prev, PointValue{Point: p.ID(), Value: p.FieldValue(c.field), Unit: p.Altitude().Unit()})
	}
	return NewEditSingleField(c.field, prev)
}

// AltitudeEdit is a new altitude for one point.
type AltitudeEdit struct {
	Point    model.PointID
	Altitude core.Altitude
}

// EditAltitude sets altitudes with explicit units. The inverse restores the
// exact previous value in its previous unit.
type EditAltitude struct {
	base
	edits []AltitudeEdit
}

// NewEditAltitude creates an altitude edit of several points.
func NewEditAltitude(edits []AltitudeEdit) *EditAltitude {
	return &EditAltitude{
		base:  newBase(core.DataEdited, SnapshotBefore),
		edits: append([]AltitudeEdit(nil), edits...),
	}
}

// NewSetAltitude creates an altitude edit of a single point.
func NewSetAltitude(id model.PointID, value float64, unit core.Unit) *EditAltitude {
	return NewEditAltitude([]AltitudeEdit{{Point: id, Altitude: core.NewAltitude(value, unit)}})
}

func (c *EditAltitude) Execute(s *model.Session) bool { return run(c, s) }

func (c *EditAltitude) apply(s *model.Session) bool {
	if len(c.edits) == 0 {
		return false
	}
	for _, e := range c.edits {
		if s.Track.IndexOf(e.Point) < 0 {
			return false
		}
	}
	for _, e := range c.edits {
		s.Track.Resolve(e.Point).SetAltitude(e.Altitude)
	}
	s.Track.RequestRescale()
	return true
}

func (c *EditAltitude) makeInverse(s *model.Session) Command {
	prev := make([]AltitudeEdit, 0, len(c.edits))
	for i := len(c.edits) - 1; i >= 0; i-- {
		p := s.Track.Resolve(c.edits[i].Point)
		if p == nil {
			return nil
		}
		prev = append(prev, AltitudeEdit{Point: p.ID(), Altitude: p.Altitude()})
	}
	return NewEditAltitude(prev)
}
