// Package geo holds the planar and spherical helpers used to lay out the
// station map and to move a walker along it.
//
// Geographic coordinates are orb.Points in [lng, lat] order, the same
// order GeoJSON uses.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	earthRadiusMeters = 6371000

	// metersPerDegreeLat is the length of one degree of latitude on the
	// local projection. Longitude degrees shrink by cos(lat).
	metersPerDegreeLat = 111320
)

// Offset is a planar position in meters from the map origin. X grows east,
// Y grows north.
type Offset struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Distance returns the Euclidean distance between two planar offsets.
func Distance(p1, p2 Offset) float64 {
	return math.Hypot(p2.X-p1.X, p2.Y-p1.Y)
}

// Project converts a planar offset into a geographic coordinate using an
// equirectangular projection centred on origin. Good enough for the few
// hundred meters a station spans.
func Project(origin orb.Point, off Offset) orb.Point {
	lat0 := origin.Lat()
	lat := lat0 + off.Y/metersPerDegreeLat
	lng := origin.Lon() + off.X/(metersPerDegreeLat*math.Cos(lat0*math.Pi/180))
	return orb.Point{lng, lat}
}

// Unproject is the inverse of Project.
func Unproject(origin orb.Point, p orb.Point) Offset {
	lat0 := origin.Lat()
	return Offset{
		X: (p.Lon() - origin.Lon()) * metersPerDegreeLat * math.Cos(lat0*math.Pi/180),
		Y: (p.Lat() - lat0) * metersPerDegreeLat,
	}
}

// Interpolate linearly interpolates between two points.
// fraction is not clamped; callers pass [0, 1] for a point on the segment.
func Interpolate(start, end orb.Point, fraction float64) orb.Point {
	return orb.Point{
		start[0] + (end[0]-start[0])*fraction,
		start[1] + (end[1]-start[1])*fraction,
	}
}

// Bearing calculates the bearing from point 1 to point 2 in degrees (0-360)
func Bearing(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaLambda := (lng2 - lng1) * math.Pi / 180

	x := math.Sin(deltaLambda) * math.Cos(phi2)
	y := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)

	bearing := math.Atan2(x, y) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}

// BearingBetween is Bearing for two orb points.
func BearingBetween(from, to orb.Point) float64 {
	return Bearing(from.Lat(), from.Lon(), to.Lat(), to.Lon())
}

// Haversine calculates the distance between two points in meters
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaPhi := (lat2 - lat1) * math.Pi / 180
	deltaLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Clamp constrains a value between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// DistanceToLine returns the great-circle distance in meters from p to the
// closest point of line. ok is false for an empty line.
func DistanceToLine(p orb.Point, line orb.LineString) (meters float64, ok bool) {
	if len(line) == 0 {
		return 0, false
	}
	if len(line) == 1 {
		return Haversine(p.Lat(), p.Lon(), line[0].Lat(), line[0].Lon()), true
	}

	// locate the foot of the perpendicular in a local planar frame
	kx := math.Cos(p.Lat() * math.Pi / 180)
	best := math.Inf(1)
	for i := 0; i < len(line)-1; i++ {
		a, b := line[i], line[i+1]
		dx, dy := (b.Lon()-a.Lon())*kx, b.Lat()-a.Lat()
		fraction := 0.0
		if seg := dx*dx + dy*dy; seg > 0 {
			fraction = Clamp((((p.Lon()-a.Lon())*kx)*dx+(p.Lat()-a.Lat())*dy)/seg, 0, 1)
		}
		q := Interpolate(a, b, fraction)
		best = math.Min(best, Haversine(p.Lat(), p.Lon(), q.Lat(), q.Lon()))
	}
	return best, true
}
