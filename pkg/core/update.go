// pkg/core/update.go
package core

import "strings"

// UpdateFlags describes what a command changed, for observers.
type UpdateFlags uint32

const (
	DataAddedOrRemoved UpdateFlags = 1 << iota
	DataEdited
	SelectionChanged
	WaypointsModified
	MediaModified
	UnitsChanged

	NoChange UpdateFlags = 0
	AllFlags             = DataAddedOrRemoved | DataEdited | SelectionChanged |
		WaypointsModified | MediaModified | UnitsChanged
)

var flagNames = []struct {
	flag UpdateFlags
	name string
}{
	{DataAddedOrRemoved, "added_or_removed"},
	{DataEdited, "edited"},
	{SelectionChanged, "selection"},
	{WaypointsModified, "waypoints"},
	{MediaModified, "media"},
	{UnitsChanged, "units"},
}

// Has reports whether any bit of mask is set in f.
func (f UpdateFlags) Has(mask UpdateFlags) bool {
	return f&mask != 0
}

// String lists the set flags separated by "|".
func (f UpdateFlags) String() string {
	if f == NoChange {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}
