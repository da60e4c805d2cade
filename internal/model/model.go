package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&SessionRecord{},
	&PointRecord{},
	&MediaRecord{},
	&EditRecord{},
}

// SessionRecord is a saved track session. Points and media are stored in
// their list order through Seq.
type SessionRecord struct {
	gorm.Model
	Name      string         `json:"name" gorm:"size:255;uniqueIndex"`
	Fields    datatypes.JSON `json:"fields"`
	NumPoints int            `json:"numPoints"`
	Points    []PointRecord  `json:"points" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
	Media     []MediaRecord  `json:"media" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

func (*SessionRecord) TableName() string {
	return "track_sessions"
}

// PointRecord is one track point of a saved session.
type PointRecord struct {
	ID           uint           `json:"-" gorm:"primarykey"`
	SessionID    uint           `json:"-" gorm:"index"`
	Seq          int            `json:"seq"`
	UID          string         `json:"uid" gorm:"size:36"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	Position     geom.Point     `json:"position"`
	HasAltitude  bool           `json:"hasAltitude"`
	Altitude     float64        `json:"altitude"`
	AltitudeUnit uint8          `json:"altitudeUnit"`
	Time         sql.NullTime   `json:"time"`
	Fields       datatypes.JSON `json:"fields"`
	SegmentStart bool           `json:"segmentStart"`
	Waypoint     bool           `json:"waypoint"`
	PhotoUID     string         `json:"photoUid,omitempty" gorm:"size:36"`
	AudioUID     string         `json:"audioUid,omitempty" gorm:"size:36"`
}

func (*PointRecord) TableName() string {
	return "track_points"
}

// MediaRecord is a photo or audio clip of a saved session.
type MediaRecord struct {
	ID        uint         `json:"-" gorm:"primarykey"`
	SessionID uint         `json:"-" gorm:"index"`
	Seq       int          `json:"seq"`
	UID       string       `json:"uid" gorm:"size:36"`
	Kind      uint8        `json:"kind"`
	Name      string       `json:"name" gorm:"size:255"`
	Time      sql.NullTime `json:"time"`
	Status    uint8        `json:"status"`
	PointUID  string       `json:"pointUid,omitempty" gorm:"size:36"`
}

func (*MediaRecord) TableName() string {
	return "session_media"
}

// EditRecord is one entry of the edit journal: a command executed, undone
// or redone against a session.
type EditRecord struct {
	ID          uint      `json:"-" gorm:"primarykey"`
	Session     string    `json:"session" gorm:"size:255;index"`
	Action      string    `json:"action" gorm:"size:16"`
	Description string    `json:"description" gorm:"size:255"`
	Flags       uint32    `json:"flags"`
	NumPoints   int       `json:"numPoints"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (*EditRecord) TableName() string {
	return "edit_journal"
}
