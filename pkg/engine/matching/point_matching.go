package matching

import (
	"fmt"
	"math"
	"sort"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/lintang-b-s/isomatch/pkg/geo"
	"github.com/lintang-b-s/isomatch/pkg/util"
)

// MatchedQueryResult is one candidate edge found near an input point.
type MatchedQueryResult struct {
	EdgeID     int32
	InputPoint datastructure.Coordinate
	// CutoffGeometry is the part of the edge geometry inside the search radius, stored direction.
	CutoffGeometry []datastructure.Coordinate
	// OriginalGeometry is the full edge geometry, stored direction.
	OriginalGeometry []datastructure.Coordinate
	TravelDirection  datastructure.TravelDirection
	BearingFilter    *geo.BearingFilter
	CutoffDistance   float64 // meters
}

type MatchedPoint struct {
	EdgeID       int32                    `json:"edge_id"`
	Reversed     bool                     `json:"reversed"`
	SnappedPoint datastructure.Coordinate `json:"snapped_point"`
	Fraction     float64                  `json:"fraction"`
	Distance     float64                  `json:"distance"`
	Bearing      float64                  `json:"bearing"`
	Reliability  float64                  `json:"reliability"`
}

// StoredFraction returns the fraction of the match measured along the stored edge geometry.
func (m MatchedPoint) StoredFraction() float64 {
	if m.Reversed {
		return 1 - m.Fraction
	}
	return m.Fraction
}

// CalculateMatches snaps the input point of q on every part of the candidate edge whose bearing passes
// the bearing filter, once per allowed travel direction. Reversed matches report fractions measured
// from the end of the stored geometry. An empty result is not an error.
func CalculateMatches(q MatchedQueryResult) ([]MatchedPoint, error) {
	matches := make([]MatchedPoint, 0)
	if len(q.OriginalGeometry) == 0 {
		return matches, fmt.Errorf("edge %d: %w", q.EdgeID, geo.ErrEmptyLine)
	}

	if q.TravelDirection.HasForward() {
		forward, err := matchDirection(q, q.CutoffGeometry, false)
		if err != nil {
			return matches, err
		}
		matches = append(matches, forward...)
	}
	if q.TravelDirection.HasBackward() {
		backward, err := matchDirection(q, util.ReverseG(q.CutoffGeometry), true)
		if err != nil {
			return matches, err
		}
		matches = append(matches, backward...)
	}
	return matches, nil
}

func matchDirection(q MatchedQueryResult, geometry []datastructure.Coordinate, reversed bool) ([]MatchedPoint, error) {
	matches := make([]MatchedPoint, 0)
	for _, run := range splitByBearing(geometry, q.BearingFilter) {
		pos, err := geo.ProjectOnLine(run, q.InputPoint)
		if err != nil {
			return matches, err
		}
		fraction, _, _, err := geo.FractionAndDistance(q.OriginalGeometry, pos.Point)
		if err != nil {
			return matches, err
		}
		if reversed {
			fraction = 1 - fraction
		}

		bearing := geo.Bearing(run[pos.SegmentIndex], run[pos.SegmentIndex+1])
		matches = append(matches, MatchedPoint{
			EdgeID:       q.EdgeID,
			Reversed:     reversed,
			SnappedPoint: pos.Point,
			Fraction:     fraction,
			Distance:     pos.Distance,
			Bearing:      bearing,
			Reliability:  Reliability(pos.Distance, q.CutoffDistance, bearing, q.BearingFilter),
		})
	}
	return matches, nil
}

// splitByBearing cuts geometry into maximal runs of consecutive segments whose bearing passes
// filter. Runs without a segment are dropped.
func splitByBearing(geometry []datastructure.Coordinate, filter *geo.BearingFilter) [][]datastructure.Coordinate {
	runs := make([][]datastructure.Coordinate, 0)
	if len(geometry) < 2 {
		return runs
	}
	if filter == nil {
		return append(runs, geometry)
	}

	var run []datastructure.Coordinate
	for i := 0; i < len(geometry)-1; i++ {
		a, b := geometry[i], geometry[i+1]
		if geo.BearingInRange(geo.Bearing(a, b), filter) {
			if len(run) == 0 {
				run = append(run, a)
			}
			run = append(run, b)
			continue
		}
		if len(run) >= 2 {
			runs = append(runs, run)
		}
		run = nil
	}
	if len(run) >= 2 {
		runs = append(runs, run)
	}
	return runs
}

// Reliability scores a match in [0,100]: 100 for a perfect snap, minus the share of the cutoff
// distance and of the bearing margin used up.
func Reliability(distance, cutoffDistance, bearing float64, filter *geo.BearingFilter) float64 {
	distancePenalty := 0.0
	if cutoffDistance > 0 {
		distancePenalty = distance / cutoffDistance
	}

	bearingPenalty := 0.0
	if filter != nil {
		diff := geo.BearingDifference(bearing, filter.Target)
		switch {
		case filter.CutoffMargin > 0:
			bearingPenalty = diff / filter.CutoffMargin
		case diff > 0:
			bearingPenalty = 1
		}
	}

	return math.Max(0, 100*(1-distancePenalty-bearingPenalty))
}

// SortByReliability orders matches best first, ties broken by snap distance.
func SortByReliability(matches []MatchedPoint) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Reliability != matches[j].Reliability {
			return matches[i].Reliability > matches[j].Reliability
		}
		return matches[i].Distance < matches[j].Distance
	})
}
