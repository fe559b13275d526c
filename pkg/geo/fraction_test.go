package geo

import (
	"testing"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/stretchr/testify/assert"
)

func TestFractionAndDistance(t *testing.T) {
	// (0,0) ---- (0,2) on the equator
	line := []datastructure.Coordinate{
		datastructure.NewCoordinate(0, 0),
		datastructure.NewCoordinate(0, 2),
	}
	oneDegree := CalculateHaversineDistance(0, 0, 0, 1) * 1000

	fraction, along, dist, err := FractionAndDistance(line, datastructure.NewCoordinate(0, 1))
	assert.Nil(t, err)
	assert.InDelta(t, 0.5, fraction, 1e-6)
	assert.InDelta(t, oneDegree, along, 1)
	assert.InDelta(t, 0.0, dist, 1e-3)

	fraction, _, dist, err = FractionAndDistance(line, datastructure.NewCoordinate(0.01, 1))
	assert.Nil(t, err)
	assert.InDelta(t, 0.5, fraction, 1e-6)
	assert.InDelta(t, CalculateHaversineDistance(0, 1, 0.01, 1)*1000, dist, 1)

	// beyond the end snaps to the last point
	fraction, _, _, err = FractionAndDistance(line, datastructure.NewCoordinate(0, 3))
	assert.Nil(t, err)
	assert.InDelta(t, 1.0, fraction, 1e-9)
}

func TestFractionAndDistanceMultiSegment(t *testing.T) {
	line := []datastructure.Coordinate{
		datastructure.NewCoordinate(0, 0),
		datastructure.NewCoordinate(0, 1),
		datastructure.NewCoordinate(0, 3),
	}

	pos, err := ProjectOnLine(line, datastructure.NewCoordinate(0, 2))
	assert.Nil(t, err)
	assert.Equal(t, 1, pos.SegmentIndex)
	assert.InDelta(t, 2.0/3.0, pos.Fraction, 1e-6)
}

func TestFractionAndDistanceDegenerate(t *testing.T) {
	zeroLength := []datastructure.Coordinate{
		datastructure.NewCoordinate(1, 1),
		datastructure.NewCoordinate(1, 1),
	}
	fraction, along, _, err := FractionAndDistance(zeroLength, datastructure.NewCoordinate(1, 2))
	assert.Nil(t, err)
	assert.Equal(t, 0.0, fraction)
	assert.Equal(t, 0.0, along)

	single := []datastructure.Coordinate{datastructure.NewCoordinate(1, 1)}
	fraction, _, _, err = FractionAndDistance(single, datastructure.NewCoordinate(1, 2))
	assert.Nil(t, err)
	assert.Equal(t, 0.0, fraction)

	_, _, _, err = FractionAndDistance(nil, datastructure.NewCoordinate(1, 2))
	assert.ErrorIs(t, err, ErrEmptyLine)
}

func TestSubLine(t *testing.T) {
	line := []datastructure.Coordinate{
		datastructure.NewCoordinate(0, 0),
		datastructure.NewCoordinate(0, 1),
		datastructure.NewCoordinate(0, 2),
		datastructure.NewCoordinate(0, 4),
	}

	sub := SubLine(line, 0.125, 0.625)
	assert.Len(t, sub, 4)
	assert.InDelta(t, 0.5, sub[0].Lon, 1e-6)
	assert.InDelta(t, 1.0, sub[1].Lon, 1e-9)
	assert.InDelta(t, 2.0, sub[2].Lon, 1e-9)
	assert.InDelta(t, 2.5, sub[3].Lon, 1e-6)
}
