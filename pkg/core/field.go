// pkg/core/field.go
package core

// Field names a value held by a track point. Built-in fields are parsed into
// typed attributes; any other name is kept as free-form text.
type Field string

const (
	FieldLatitude     Field = "latitude"
	FieldLongitude    Field = "longitude"
	FieldAltitude     Field = "altitude"
	FieldTimestamp    Field = "timestamp"
	FieldWaypointName Field = "name"
	FieldWaypointType Field = "type"
	FieldDescription  Field = "description"
	FieldComment      Field = "comment"
)

// BuiltinFields lists the fields every track recognizes, in display order.
var BuiltinFields = []Field{
	FieldLatitude,
	FieldLongitude,
	FieldAltitude,
	FieldTimestamp,
	FieldWaypointName,
	FieldWaypointType,
	FieldDescription,
	FieldComment,
}

// IsBuiltin reports whether f is one of BuiltinFields.
func (f Field) IsBuiltin() bool {
	for _, b := range BuiltinFields {
		if b == f {
			return true
		}
	}
	return false
}

// IsPosition reports whether editing f moves the point.
func (f Field) IsPosition() bool {
	return f == FieldLatitude || f == FieldLongitude || f == FieldAltitude
}
