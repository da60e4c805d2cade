package geo

import (
	"errors"
	"math"
	"testing"
)

func TestProject_Origin(t *testing.T) {
	xy := Project(LatLon{Lat: 0, Lon: 0})

	if math.Abs(xy.X) > 1e-6 || math.Abs(xy.Y) > 1e-6 {
		t.Errorf("expected origin to project to 0,0, got %f,%f", xy.X, xy.Y)
	}
}

func TestProject_EastIsPositive(t *testing.T) {
	xy := Project(LatLon{Lat: 47.5, Lon: 8.5})

	if xy.X <= 0 {
		t.Errorf("expected positive easting, got %f", xy.X)
	}
	if xy.Y <= 0 {
		t.Errorf("expected positive northing, got %f", xy.Y)
	}
	// 8.5 degrees of longitude at the equator scale
	if math.Abs(xy.X-946206.6) > 10 {
		t.Errorf("unexpected easting %f", xy.X)
	}
}

func TestExtent_Empty(t *testing.T) {
	env := Extent(nil)

	if !env.IsEmpty() {
		t.Error("expected empty envelope for no positions")
	}
}

func TestExtent_CoversAllPositions(t *testing.T) {
	positions := []LatLon{
		{Lat: 46.0, Lon: 7.0},
		{Lat: 47.0, Lon: 9.0},
		{Lat: 46.5, Lon: 8.0},
	}

	env := Extent(positions)

	min, max, ok := env.MinMaxXYs()
	if !ok {
		t.Fatal("expected non-empty envelope")
	}
	lo := Project(positions[0])
	hi := Project(positions[1])
	if math.Abs(min.X-lo.X) > 1e-6 || math.Abs(min.Y-lo.Y) > 1e-6 {
		t.Errorf("unexpected min %v, want %v", min, lo)
	}
	if math.Abs(max.X-hi.X) > 1e-6 || math.Abs(max.Y-hi.Y) > 1e-6 {
		t.Errorf("unexpected max %v, want %v", max, hi)
	}
}

func TestSegmentLines_SkipsShortSegments(t *testing.T) {
	segments := [][]LatLon{
		{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}},
		{{Lat: 1, Lon: 1}},
		{{Lat: 2, Lon: 2}, {Lat: 2, Lon: 3}, {Lat: 3, Lon: 3}},
	}

	mls := SegmentLines(segments)

	if mls.NumLineStrings() != 2 {
		t.Fatalf("expected 2 line strings, got %d", mls.NumLineStrings())
	}
	if n := mls.LineStringN(1).Coordinates().Length(); n != 3 {
		t.Errorf("expected 3 coordinates in second line, got %d", n)
	}
}

func TestDistance_OneDegreeLatitude(t *testing.T) {
	d := Distance(LatLon{Lat: 0, Lon: 0}, LatLon{Lat: 1, Lon: 0})

	if math.Abs(d-111195) > 10 {
		t.Errorf("expected about 111195m, got %f", d)
	}
}

func TestPathLength_DoesNotJoinSegments(t *testing.T) {
	segments := [][]LatLon{
		{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 0}},
		{{Lat: 10, Lon: 0}, {Lat: 11, Lon: 0}},
	}

	total := PathLength(segments)
	single := Distance(LatLon{Lat: 0, Lon: 0}, LatLon{Lat: 1, Lon: 0})

	if math.Abs(total-2*single) > 1 {
		t.Errorf("expected %f, got %f", 2*single, total)
	}
}

func TestParseLatLon_Valid(t *testing.T) {
	p, err := ParseLatLon("47.25, 8.5")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Lat != 47.25 || p.Lon != 8.5 {
		t.Errorf("unexpected position %v", p)
	}
}

func TestParseLatLon_Invalid(t *testing.T) {
	for _, input := range []string{"", "47.25", "abc,8.5", "47.25,xyz", "91,0", "0,181", "1,2,3"} {
		_, err := ParseLatLon(input)
		if !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("%q: expected ErrInvalidCoordinates, got %v", input, err)
		}
	}
}
