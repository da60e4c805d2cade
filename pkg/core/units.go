// pkg/core/units.go
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit is an altitude unit. The zero value is metres.
type Unit uint8

const (
	Metres Unit = iota
	Feet
)

const metresPerFoot = 0.3048

// String returns the short unit label.
func (u Unit) String() string {
	switch u {
	case Feet:
		return "ft"
	default:
		return "m"
	}
}

// ParseUnit accepts "m", "metres", "meters", "ft", "feet" (case-insensitive).
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "metre", "metres", "meter", "meters":
		return Metres, nil
	case "ft", "foot", "feet":
		return Feet, nil
	default:
		return Metres, fmt.Errorf("unknown altitude unit %q", s)
	}
}

// toMetres converts a value in u to metres.
func (u Unit) toMetres(v float64) float64 {
	if u == Feet {
		return v * metresPerFoot
	}
	return v
}

// fromMetres converts a value in metres to u.
func (u Unit) fromMetres(v float64) float64 {
	if u == Feet {
		return v / metresPerFoot
	}
	return v
}

// Altitude is a height above sea level, kept in the unit it was last set in
// so that switching units and back is lossless.
type Altitude struct {
	value float64
	unit  Unit
	valid bool
}

// NewAltitude creates a valid altitude of value in unit.
func NewAltitude(value float64, unit Unit) Altitude {
	return Altitude{value: value, unit: unit, valid: true}
}

// NoAltitude is the zero Altitude: no value.
var NoAltitude = Altitude{}

// Valid reports whether the altitude has a value.
func (a Altitude) Valid() bool {
	return a.valid
}

// Unit returns the unit the altitude is stored in.
func (a Altitude) Unit() Unit {
	return a.unit
}

// Raw returns the stored value in its own unit.
func (a Altitude) Raw() float64 {
	return a.value
}

// Value returns the altitude converted to unit.
func (a Altitude) Value(unit Unit) float64 {
	if !a.valid {
		return 0
	}
	if unit == a.unit {
		return a.value
	}
	return unit.fromMetres(a.unit.toMetres(a.value))
}

// Rounded returns the altitude in unit rounded to the nearest whole number.
func (a Altitude) Rounded(unit Unit) int {
	return int(math.Round(a.Value(unit)))
}

// Equal reports whether both altitudes hold the same stored value and unit.
func (a Altitude) Equal(b Altitude) bool {
	if !a.valid || !b.valid {
		return a.valid == b.valid
	}
	return a.value == b.value && a.unit == b.unit
}

// String formats the stored value, empty when invalid.
func (a Altitude) String() string {
	if !a.valid {
		return ""
	}
	return strconv.FormatFloat(a.value, 'f', -1, 64)
}

// ParseAltitude parses value in unit. An empty string yields NoAltitude.
func ParseAltitude(value string, unit Unit) (Altitude, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return NoAltitude, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return NoAltitude, fmt.Errorf("invalid altitude %q: %w", value, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NoAltitude, fmt.Errorf("invalid altitude %q: not a finite number", value)
	}
	return NewAltitude(v, unit), nil
}
