package geo

import (
	"github.com/lintang-b-s/isomatch/pkg/datastructure"
)

const (
	DefaultSimplifyTolerance = 7.0 // meters
)

// RamesDouglasPeucker drops the vertices of coords that lie closer than tolerance meters to the
// simplified line. The endpoints are always kept. A tolerance <= 0 uses DefaultSimplifyTolerance.
// https://cartography-playground.gitlab.io/playgrounds/douglas-peucker-algorithm/
func RamesDouglasPeucker(coords []datastructure.Coordinate, tolerance float64) []datastructure.Coordinate {
	size := len(coords)
	if size < 3 {
		return coords
	}
	if tolerance <= 0 {
		tolerance = DefaultSimplifyTolerance
	}

	kept := make([]bool, size)
	kept[0] = true
	kept[size-1] = true

	ranges := [][2]int{{0, size - 1}}
	for len(ranges) > 0 {
		r := ranges[len(ranges)-1]
		ranges = ranges[:len(ranges)-1]
		left, right := r[0], r[1]

		farthest, maxDist := -1, tolerance
		for i := left + 1; i < right; i++ {
			if dist := PointLinePerpendicularDistance(coords[left], coords[right], coords[i]); dist > maxDist {
				farthest, maxDist = i, dist
			}
		}
		if farthest < 0 {
			continue
		}
		kept[farthest] = true
		ranges = append(ranges, [2]int{left, farthest}, [2]int{farthest, right})
	}

	simplified := make([]datastructure.Coordinate, 0, size)
	for i, keep := range kept {
		if keep {
			simplified = append(simplified, coords[i])
		}
	}
	return simplified
}
