// Package convert provides functions to convert between GORM records and track sessions
package convert

import (
	"database/sql"
	"encoding/json"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"

	"github.com/trackedit/trackedit/internal/geo"
	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/pkg/core"
)

// latLonToPoint projects a WGS84 position to a web mercator geom.Point
func latLonToPoint(lat, lon float64) geom.Point {
	xy := geo.Project(geo.LatLon{Lat: lat, Lon: lon})
	return geom.NewPoint(geom.Coordinates{XY: xy})
}

// fieldsToJSON converts a field list to datatypes.JSON for DB storage.
func fieldsToJSON(fields []core.Field) datatypes.JSON {
	if len(fields) == 0 {
		return datatypes.JSON("[]")
	}
	data, _ := json.Marshal(fields)
	return datatypes.JSON(data)
}

// textFieldsToJSON converts free-form point values to datatypes.JSON.
func textFieldsToJSON(fields map[core.Field]string) datatypes.JSON {
	if len(fields) == 0 {
		return datatypes.JSON("{}")
	}
	data, _ := json.Marshal(fields)
	return datatypes.JSON(data)
}

func uidString(id model.PointID) string {
	if id == (model.PointID{}) {
		return ""
	}
	return id.String()
}

// PointToRecord converts a track point at position seq to a GORM record.
func PointToRecord(p *model.DataPoint, seq int) model.PointRecord {
	rec := model.PointRecord{
		Seq:          seq,
		UID:          p.ID().String(),
		Latitude:     p.Latitude(),
		Longitude:    p.Longitude(),
		Position:     latLonToPoint(p.Latitude(), p.Longitude()),
		HasAltitude:  p.Altitude().Valid(),
		Altitude:     p.Altitude().Raw(),
		AltitudeUnit: uint8(p.Altitude().Unit()),
		Fields:       textFieldsToJSON(p.TextFields()),
		SegmentStart: p.SegmentStart(),
		Waypoint:     p.IsWaypoint(),
		PhotoUID:     uidString(p.PhotoID()),
		AudioUID:     uidString(p.AudioID()),
	}
	if ts, ok := p.Timestamp(); ok {
		rec.Time = sql.NullTime{Time: ts, Valid: true}
	}
	return rec
}

// MediaToRecord converts a media object at list position seq to a GORM record.
func MediaToRecord(m *model.Media, seq int) model.MediaRecord {
	rec := model.MediaRecord{
		Seq:      seq,
		UID:      m.ID().String(),
		Kind:     uint8(m.Kind()),
		Name:     m.Name(),
		Status:   uint8(m.Status()),
		PointUID: uidString(m.PointID()),
	}
	if !m.Timestamp().IsZero() {
		rec.Time = sql.NullTime{Time: m.Timestamp(), Valid: true}
	}
	return rec
}

// SessionToRecord converts a session to a GORM record holding all its points
// and media. The selection is not stored.
func SessionToRecord(name string, s *model.Session) model.SessionRecord {
	rec := model.SessionRecord{
		Name:      name,
		Fields:    fieldsToJSON(s.Track.Fields()),
		NumPoints: s.Track.NumPoints(),
		Points:    make([]model.PointRecord, 0, s.Track.NumPoints()),
	}
	for i, p := range s.Track.Points() {
		rec.Points = append(rec.Points, PointToRecord(p, i))
	}
	for _, list := range []*model.MediaList{s.Photos, s.Audio} {
		for i, m := range list.All() {
			rec.Media = append(rec.Media, MediaToRecord(m, i))
		}
	}
	return rec
}
