package geo

import (
	"math"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	orbgeo "github.com/paulmach/orb/geo"
)

// Bearing returns the initial compass bearing from a to b in degrees, in [0,360).
func Bearing(a, b datastructure.Coordinate) float64 {
	bearing := math.Mod(orbgeo.Bearing(a.Point(), b.Point())+360, 360)
	if bearing >= 360 {
		return 0
	}
	return bearing
}

// BearingFilter accepts bearings within CutoffMargin degrees of Target.
type BearingFilter struct {
	Target       float64 `json:"target"`
	CutoffMargin float64 `json:"cutoff_margin"`
}

func NewBearingFilter(target, cutoffMargin float64) *BearingFilter {
	return &BearingFilter{Target: target, CutoffMargin: cutoffMargin}
}

// BearingDifference is the circular difference between two bearings, in [0,180].
func BearingDifference(a, b float64) float64 {
	delta := math.Abs(math.Mod(a-b, 360))
	return math.Min(delta, 360-delta)
}

// BearingInRange reports whether bearing passes filter. A nil filter accepts everything.
func BearingInRange(bearing float64, filter *BearingFilter) bool {
	if filter == nil {
		return true
	}
	return BearingDifference(bearing, filter.Target) <= filter.CutoffMargin
}
