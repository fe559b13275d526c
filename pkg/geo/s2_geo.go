package geo

import (
	"github.com/golang/geo/s2"
	"github.com/lintang-b-s/isomatch/pkg/datastructure"
)

func toS2Point(c datastructure.Coordinate) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
}

// ProjectPointToLineCoord returns the point on the great circle segment a-b closest to snap.
func ProjectPointToLineCoord(a, b, snap datastructure.Coordinate) datastructure.Coordinate {
	if a == b {
		return a
	}
	projection := s2.Project(toS2Point(snap), toS2Point(a), toS2Point(b))
	projectLatLng := s2.LatLngFromPoint(projection)
	return datastructure.NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees())
}

// PointLinePerpendicularDistance returns the distance in meters between p and segment a-b.
func PointLinePerpendicularDistance(a, b, p datastructure.Coordinate) float64 {
	projection := ProjectPointToLineCoord(a, b, p)
	return HaversineDistanceMeters(p.Lat, p.Lon, projection.Lat, projection.Lon)
}
