package matching

import (
	"testing"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/lintang-b-s/isomatch/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coord(lat, lon float64) datastructure.Coordinate {
	return datastructure.NewCoordinate(lat, lon)
}

func straightQuery(direction datastructure.TravelDirection, point datastructure.Coordinate) MatchedQueryResult {
	geometry := []datastructure.Coordinate{coord(0, 0), coord(0, 2)}
	return MatchedQueryResult{
		EdgeID:           3,
		InputPoint:       point,
		CutoffGeometry:   geometry,
		OriginalGeometry: geometry,
		TravelDirection:  direction,
		CutoffDistance:   20,
	}
}

func TestCalculateMatchesForwardOnly(t *testing.T) {
	matches, err := CalculateMatches(straightQuery(datastructure.TravelForward, coord(0, 1)))
	require.Nil(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, int32(3), m.EdgeID)
	assert.False(t, m.Reversed)
	assert.InDelta(t, 0.5, m.Fraction, 1e-6)
	assert.InDelta(t, 90.0, m.Bearing, 1e-6)
	assert.InDelta(t, 0.0, m.Distance, 1e-3)
	assert.InDelta(t, 100.0, m.Reliability, 1e-3)
}

func TestCalculateMatchesReversedFractionComplement(t *testing.T) {
	matches, err := CalculateMatches(straightQuery(datastructure.TravelBoth, coord(0, 0.5)))
	require.Nil(t, err)
	require.Len(t, matches, 2)

	forward, backward := matches[0], matches[1]
	assert.False(t, forward.Reversed)
	assert.True(t, backward.Reversed)
	assert.InDelta(t, 0.25, forward.Fraction, 1e-6)
	assert.InDelta(t, 1-forward.Fraction, backward.Fraction, 1e-9)
	assert.InDelta(t, forward.StoredFraction(), backward.StoredFraction(), 1e-9)
	assert.InDelta(t, 270.0, backward.Bearing, 1e-6)
}

func TestCalculateMatchesBackwardOnly(t *testing.T) {
	matches, err := CalculateMatches(straightQuery(datastructure.TravelBackward, coord(0, 0.5)))
	require.Nil(t, err)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Reversed)
	assert.InDelta(t, 0.75, matches[0].Fraction, 1e-6)
}

func TestCalculateMatchesBearingFilter(t *testing.T) {
	q := straightQuery(datastructure.TravelBoth, coord(0, 1))

	q.BearingFilter = geo.NewBearingFilter(95, 10)
	matches, err := CalculateMatches(q)
	require.Nil(t, err)
	require.Len(t, matches, 1)
	assert.False(t, matches[0].Reversed)
	assert.InDelta(t, 50.0, matches[0].Reliability, 1e-3)

	q.BearingFilter = geo.NewBearingFilter(270, 10)
	matches, err = CalculateMatches(q)
	require.Nil(t, err)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Reversed)

	q.BearingFilter = geo.NewBearingFilter(0, 10)
	matches, err = CalculateMatches(q)
	assert.Nil(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

/*
	        (1,1)
	          |
	(0,0) --- (0,1)

east then north. With an eastbound filter only the first segment is a run; the fraction is still
measured on the whole geometry.
*/
func TestCalculateMatchesRunsUseOriginalFraction(t *testing.T) {
	geometry := []datastructure.Coordinate{coord(0, 0), coord(0, 1), coord(1, 1)}
	q := MatchedQueryResult{
		EdgeID:           1,
		InputPoint:       coord(0.001, 0.5),
		CutoffGeometry:   geometry,
		OriginalGeometry: geometry,
		TravelDirection:  datastructure.TravelForward,
		BearingFilter:    geo.NewBearingFilter(90, 10),
		CutoffDistance:   1000,
	}

	matches, err := CalculateMatches(q)
	require.Nil(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 0.25, matches[0].Fraction, 1e-3)
	assert.InDelta(t, 0.0, matches[0].SnappedPoint.Lat, 1e-6)
}

func TestCalculateMatchesCroppedGeometry(t *testing.T) {
	original := []datastructure.Coordinate{coord(0, 0), coord(0, 1), coord(0, 2), coord(0, 4)}
	q := MatchedQueryResult{
		EdgeID:           1,
		InputPoint:       coord(0, 1.5),
		CutoffGeometry:   original[1:3],
		OriginalGeometry: original,
		TravelDirection:  datastructure.TravelForward,
		CutoffDistance:   10,
	}

	matches, err := CalculateMatches(q)
	require.Nil(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1.5/4, matches[0].Fraction, 1e-6)
}

func TestSplitByBearing(t *testing.T) {
	// east, north, east
	geometry := []datastructure.Coordinate{coord(0, 0), coord(0, 1), coord(1, 1), coord(1, 2)}

	runs := splitByBearing(geometry, geo.NewBearingFilter(90, 10))
	require.Len(t, runs, 2)
	assert.Equal(t, geometry[0:2], runs[0])
	assert.Equal(t, geometry[2:4], runs[1])

	assert.Len(t, splitByBearing(geometry, nil), 1)
	assert.Empty(t, splitByBearing(geometry[:1], nil), "a single coordinate is not a run")
	assert.Empty(t, splitByBearing(geometry, geo.NewBearingFilter(180, 10)))
}

func TestCalculateMatchesSingleCoordinateGeometry(t *testing.T) {
	q := straightQuery(datastructure.TravelBoth, coord(0, 1))
	q.CutoffGeometry = q.CutoffGeometry[:1]

	matches, err := CalculateMatches(q)
	assert.Nil(t, err)
	assert.Empty(t, matches)
}

func TestCalculateMatchesEmptyOriginalGeometry(t *testing.T) {
	q := straightQuery(datastructure.TravelBoth, coord(0, 1))
	q.OriginalGeometry = nil

	_, err := CalculateMatches(q)
	assert.ErrorIs(t, err, geo.ErrEmptyLine)
}

func TestReliability(t *testing.T) {
	assert.InDelta(t, 25.0, Reliability(10, 20, 95, geo.NewBearingFilter(90, 20)), 1e-9)
	assert.InDelta(t, 100.0, Reliability(0, 20, 0, nil), 1e-9)
	assert.Equal(t, 0.0, Reliability(30, 20, 0, nil))
	assert.Equal(t, 0.0, Reliability(0, 20, 10, geo.NewBearingFilter(0, 0)))
	assert.InDelta(t, 100.0, Reliability(0, 20, 0, geo.NewBearingFilter(0, 0)), 1e-9)
}

func TestReliabilityMonotonic(t *testing.T) {
	filter := geo.NewBearingFilter(90, 45)

	prev := Reliability(0, 50, 90, filter)
	for dist := 1.0; dist <= 60; dist++ {
		r := Reliability(dist, 50, 90, filter)
		if prev > 0 {
			assert.Less(t, r, prev)
		} else {
			assert.Equal(t, 0.0, r)
		}
		prev = r
	}

	prev = Reliability(5, 50, 90, filter)
	for deviation := 1.0; deviation <= 60; deviation++ {
		r := Reliability(5, 50, 90+deviation, filter)
		if prev > 0 {
			assert.Less(t, r, prev)
		} else {
			assert.Equal(t, 0.0, r)
		}
		prev = r
	}
}

func TestSortByReliability(t *testing.T) {
	matches := []MatchedPoint{
		{EdgeID: 1, Reliability: 10, Distance: 5},
		{EdgeID: 2, Reliability: 80, Distance: 5},
		{EdgeID: 3, Reliability: 80, Distance: 1},
	}
	SortByReliability(matches)
	assert.Equal(t, int32(3), matches[0].EdgeID)
	assert.Equal(t, int32(2), matches[1].EdgeID)
	assert.Equal(t, int32(1), matches[2].EdgeID)
}
