package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Track geometry is kept in WGS84 degrees on the points themselves and
// projected to web mercator (EPSG:3857) whenever the track needs rescaling.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

const earthRadiusMetres = 6371000.0

// LatLon is a WGS84 position in degrees.
type LatLon struct {
	Lat float64
	Lon float64
}

var toMercator = wgs84.EPSG().Transform(4326, 3857)

// Project converts a WGS84 position to web mercator metres.
func Project(p LatLon) geom.XY {
	x, y, _ := toMercator(p.Lon, p.Lat, 0)
	return geom.XY{X: x, Y: y}
}

// Extent returns the projected envelope of the given positions. The envelope
// is empty when there are no positions.
func Extent(positions []LatLon) geom.Envelope {
	var env geom.Envelope
	for _, p := range positions {
		env = env.ExpandToIncludeXY(Project(p))
	}
	return env
}

// SegmentLines builds one line string per segment in lon/lat order.
// Segments with fewer than two positions are skipped.
func SegmentLines(segments [][]LatLon) geom.MultiLineString {
	lines := make([]geom.LineString, 0, len(segments))
	for _, seg := range segments {
		if len(seg) < 2 {
			continue
		}
		flat := make([]float64, 0, len(seg)*2)
		for _, p := range seg {
			flat = append(flat, p.Lon, p.Lat)
		}
		lines = append(lines, geom.NewLineString(geom.NewSequence(flat, geom.DimXY)))
	}
	return geom.NewMultiLineString(lines)
}

// Distance calculates the great-circle distance in metres between two positions.
func Distance(a, b LatLon) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMetres * c
}

// PathLength sums the distances along each segment, without joining segments.
func PathLength(segments [][]LatLon) float64 {
	var total float64
	for _, seg := range segments {
		for i := 1; i < len(seg); i++ {
			total += Distance(seg[i-1], seg[i])
		}
	}
	return total
}

// ParseLatLon parses a "lat,lon" string.
func ParseLatLon(coords string) (LatLon, error) {
	parts := strings.Split(coords, ",")
	if len(parts) != 2 {
		return LatLon{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return LatLon{}, ErrInvalidCoordinates
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lon < -180 || lon > 180 {
		return LatLon{}, ErrInvalidCoordinates
	}
	return LatLon{Lat: lat, Lon: lon}, nil
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
