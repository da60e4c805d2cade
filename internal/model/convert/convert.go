package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trackedit/trackedit/internal/model"
	"github.com/trackedit/trackedit/pkg/core"
)

// ErrCorruptRecord is returned when a stored session cannot be rebuilt.
var ErrCorruptRecord = errors.New("corrupt session record")

// RecordToPoint converts a GORM point record to a track point.
func RecordToPoint(rec model.PointRecord) (*model.DataPoint, error) {
	id, err := uuid.Parse(rec.UID)
	if err != nil {
		return nil, fmt.Errorf("%w: point %d uid %q", ErrCorruptRecord, rec.Seq, rec.UID)
	}
	alt := core.NoAltitude
	if rec.HasAltitude {
		alt = core.NewAltitude(rec.Altitude, core.Unit(rec.AltitudeUnit))
	}
	var fields map[core.Field]string
	if len(rec.Fields) > 0 {
		if err := json.Unmarshal(rec.Fields, &fields); err != nil {
			return nil, fmt.Errorf("%w: point %d fields: %v", ErrCorruptRecord, rec.Seq, err)
		}
	}
	var ts time.Time
	if rec.Time.Valid {
		ts = rec.Time.Time
	}
	return model.Restore(id, rec.Latitude, rec.Longitude, alt, ts, fields, rec.SegmentStart, rec.Waypoint), nil
}

// RecordToMedia converts a GORM media record to an unlinked media object.
func RecordToMedia(rec model.MediaRecord) (*model.Media, error) {
	id, err := uuid.Parse(rec.UID)
	if err != nil {
		return nil, fmt.Errorf("%w: media %d uid %q", ErrCorruptRecord, rec.Seq, rec.UID)
	}
	kind := core.MediaKind(rec.Kind)
	if kind != core.Photo && kind != core.Audio {
		return nil, fmt.Errorf("%w: media %d kind %d", ErrCorruptRecord, rec.Seq, rec.Kind)
	}
	return model.RestoreMedia(id, kind, rec.Name, rec.Time.Time, core.MediaStatus(rec.Status)), nil
}

// RecordToSession rebuilds a session from a GORM record. Media links are
// restored from the media side; a link to a point that is not stored is
// dropped.
func RecordToSession(rec model.SessionRecord) (*model.Session, error) {
	points := append([]model.PointRecord(nil), rec.Points...)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Seq < points[j].Seq })
	media := append([]model.MediaRecord(nil), rec.Media...)
	sort.SliceStable(media, func(i, j int) bool { return media[i].Seq < media[j].Seq })

	track := model.NewTrack()
	restored := make([]*model.DataPoint, 0, len(points))
	for _, pr := range points {
		p, err := RecordToPoint(pr)
		if err != nil {
			return nil, err
		}
		restored = append(restored, p)
	}
	if len(restored) > 0 && !track.AppendPoints(restored) {
		return nil, fmt.Errorf("%w: duplicate point in %q", ErrCorruptRecord, rec.Name)
	}

	if len(rec.Fields) > 0 {
		var fields []core.Field
		if err := json.Unmarshal(rec.Fields, &fields); err != nil {
			return nil, fmt.Errorf("%w: field list: %v", ErrCorruptRecord, err)
		}
		for _, f := range fields {
			track.ExtendFields(f)
		}
	}

	s := model.NewSession(track)
	for _, mr := range media {
		m, err := RecordToMedia(mr)
		if err != nil {
			return nil, err
		}
		if !s.Media(m.Kind()).Add(m) {
			return nil, fmt.Errorf("%w: duplicate media %s", ErrCorruptRecord, mr.UID)
		}
		if mr.PointUID == "" {
			continue
		}
		pid, err := uuid.Parse(mr.PointUID)
		if err != nil {
			return nil, fmt.Errorf("%w: media %s point %q", ErrCorruptRecord, mr.UID, mr.PointUID)
		}
		if p := track.Resolve(pid); p != nil {
			s.Link(p, m)
		}
	}
	return s, nil
}
