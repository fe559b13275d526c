package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	cases := []struct {
		latOne, longOne, latTwo, longTwo float64
		expectedDist                     float64
	}{
		{
			latOne:       -7.557155997491524,
			longOne:      110.77170252731288,
			latTwo:       -7.550209300671982,
			longTwo:      110.78942094938256,
			expectedDist: 2.1,
		},
		{
			latOne:       -7.759889166547908,
			longOne:      110.36689459108496,
			latTwo:       -7.760335932763678,
			longTwo:      110.37671195413539,
			expectedDist: 1.08,
		},
		{
			latOne:       -7.700002453207869,
			longOne:      110.37712514761436,
			latTwo:       -7.760335932763678,
			longTwo:      110.37671195413539,
			expectedDist: 6.7,
		},
	}

	t.Run("success haversine distance", func(t *testing.T) {
		for _, c := range cases {
			dist := CalculateHaversineDistance(c.latOne, c.longOne, c.latTwo, c.longTwo)
			assert.InDelta(t, c.expectedDist, dist, 0.1)
			assert.InDelta(t, c.expectedDist*1000, HaversineDistanceMeters(c.latOne, c.longOne, c.latTwo, c.longTwo), 100)
		}
	})

	t.Run("same point", func(t *testing.T) {
		assert.Equal(t, 0.0, CalculateHaversineDistance(-7.7, 110.3, -7.7, 110.3))
	})
}

func TestGetDestinationPoint(t *testing.T) {
	lat, lon := GetDestinationPoint(0, 0, 90, 1)
	assert.InDelta(t, 0, lat, 1e-6)
	assert.InDelta(t, 1, HaversineDistanceMeters(0, 0, lat, lon)/1000, 5e-3)
	assert.Greater(t, lon, 0.0)
}
