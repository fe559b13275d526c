package isochrone

import (
	"fmt"
	"math"
	"strings"

	"github.com/lintang-b-s/isomatch/pkg/engine/spt"
)

type Unit string

const (
	Meters     Unit = "meters"
	Kilometers Unit = "kilometers"
	Seconds    Unit = "seconds"
	Minutes    Unit = "minutes"
)

func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(s))); u {
	case Meters, Kilometers, Seconds, Minutes:
		return u, nil
	}
	return "", fmt.Errorf("unit %q: %w", s, ErrUnknownUnit)
}

func (u Unit) IsTime() bool {
	return u == Seconds || u == Minutes
}

func (u Unit) IsDistance() bool {
	return u == Meters || u == Kilometers
}

// Limit is the reach of an isochrone, a distance or a travel time.
type Limit struct {
	Value float64
	Unit  Unit
}

func NewLimit(value float64, unit Unit) Limit {
	return Limit{Value: value, Unit: unit}
}

// explore converts the limit to the criterion and unit used by the search: meters for distances,
// milliseconds for times.
func (l Limit) explore() (spt.ExploreType, float64, error) {
	if math.IsNaN(l.Value) || l.Value < 0 {
		return 0, 0, fmt.Errorf("limit %v: %w", l.Value, ErrInvalidLimit)
	}
	switch l.Unit {
	case Meters:
		return spt.ExploreDistance, l.Value, nil
	case Kilometers:
		return spt.ExploreDistance, l.Value * 1000, nil
	case Seconds:
		return spt.ExploreTime, l.Value * 1000, nil
	case Minutes:
		return spt.ExploreTime, l.Value * 60 * 1000, nil
	}
	return 0, 0, fmt.Errorf("unit %q: %w", l.Unit, ErrUnknownUnit)
}

type Direction int

const (
	Downstream Direction = iota
	Upstream
)

func (d Direction) String() string {
	if d == Upstream {
		return "upstream"
	}
	return "downstream"
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "upstream":
		return Upstream, nil
	case "downstream":
		return Downstream, nil
	}
	return 0, fmt.Errorf("direction %q: %w", s, ErrUnknownDirection)
}
