package geo

import (
	"errors"
	"math"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
)

var (
	ErrEmptyLine = errors.New("line has no coordinates")
)

// LinePosition is the projection of a point on a polyline.
type LinePosition struct {
	Point         datastructure.Coordinate
	SegmentIndex  int
	Fraction      float64 // of the total line length, 0 when the line has no length
	DistanceAlong float64 // meters from the line start to Point
	Distance      float64 // meters from the projected point to Point
	LineLength    float64 // meters
}

func segmentLength(a, b datastructure.Coordinate) float64 {
	return HaversineDistanceMeters(a.Lat, a.Lon, b.Lat, b.Lon)
}

// LineLength returns the geodetic length of line in meters.
func LineLength(line []datastructure.Coordinate) float64 {
	length := 0.0
	for i := 0; i < len(line)-1; i++ {
		length += segmentLength(line[i], line[i+1])
	}
	return length
}

// ProjectOnLine snaps point to the closest point of line. Ties keep the earliest segment.
func ProjectOnLine(line []datastructure.Coordinate, point datastructure.Coordinate) (LinePosition, error) {
	if len(line) == 0 {
		return LinePosition{}, ErrEmptyLine
	}
	if len(line) == 1 {
		return LinePosition{
			Point:    line[0],
			Distance: segmentLength(line[0], point),
		}, nil
	}

	best := LinePosition{Distance: math.Inf(1)}
	along := 0.0
	for i := 0; i < len(line)-1; i++ {
		a, b := line[i], line[i+1]
		projection := ProjectPointToLineCoord(a, b, point)
		dist := segmentLength(projection, point)
		if dist < best.Distance {
			best = LinePosition{
				Point:         projection,
				SegmentIndex:  i,
				DistanceAlong: along + segmentLength(a, projection),
				Distance:      dist,
			}
		}
		along += segmentLength(a, b)
	}

	best.LineLength = along
	if along > 0 {
		best.DistanceAlong = math.Min(best.DistanceAlong, along)
		best.Fraction = best.DistanceAlong / along
	} else {
		best.DistanceAlong = 0
	}
	return best, nil
}

// FractionAndDistance projects point on line and returns the fraction of the line length before the
// projection, the along-line distance to it and the distance between point and projection (meters).
func FractionAndDistance(line []datastructure.Coordinate, point datastructure.Coordinate) (float64, float64, float64, error) {
	pos, err := ProjectOnLine(line, point)
	if err != nil {
		return 0, 0, 0, err
	}
	return pos.Fraction, pos.DistanceAlong, pos.Distance, nil
}

// PointAtFraction returns the point located at fraction of the line length.
func PointAtFraction(line []datastructure.Coordinate, fraction float64) datastructure.Coordinate {
	if len(line) == 0 {
		return datastructure.Coordinate{}
	}
	fraction = math.Max(0, math.Min(1, fraction))
	target := LineLength(line) * fraction
	along := 0.0
	for i := 0; i < len(line)-1; i++ {
		a, b := line[i], line[i+1]
		length := segmentLength(a, b)
		if length > 0 && along+length >= target {
			t := (target - along) / length
			return datastructure.NewCoordinate(a.Lat+(b.Lat-a.Lat)*t, a.Lon+(b.Lon-a.Lon)*t)
		}
		along += length
	}
	return line[len(line)-1]
}

// SubLine returns the part of line between the two fractions (from <= to), endpoints interpolated.
func SubLine(line []datastructure.Coordinate, from, to float64) []datastructure.Coordinate {
	if len(line) < 2 {
		return line
	}
	from = math.Max(0, math.Min(1, from))
	to = math.Max(from, math.Min(1, to))

	total := LineLength(line)
	startDist, endDist := total*from, total*to

	sub := []datastructure.Coordinate{PointAtFraction(line, from)}
	along := 0.0
	for i := 1; i < len(line)-1; i++ {
		along += segmentLength(line[i-1], line[i])
		if along > startDist && along < endDist {
			sub = append(sub, line[i])
		}
	}
	return append(sub, PointAtFraction(line, to))
}
