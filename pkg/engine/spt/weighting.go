package spt

import (
	"math"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
)

// edgeMillis returns the travel time in ms of edge, +Inf when it is closed in that direction.
func edgeMillis(edge datastructure.Edge, reverse bool) float64 {
	speed := edge.Speed(reverse)
	if !edge.IsAccessible(reverse) || speed <= 0 {
		return math.Inf(1)
	}
	return edge.Dist / (speed / 3.6) * 1000
}

// FastestWeighting weights edges by travel time in seconds.
type FastestWeighting struct{}

func NewFastestWeighting() FastestWeighting {
	return FastestWeighting{}
}

func (FastestWeighting) CalcEdgeWeight(edge datastructure.Edge, reverse bool) float64 {
	return edgeMillis(edge, reverse) / 1000
}

func (FastestWeighting) CalcEdgeMillis(edge datastructure.Edge, reverse bool) float64 {
	return edgeMillis(edge, reverse)
}

// ShortestWeighting weights edges by their length in meters.
type ShortestWeighting struct{}

func NewShortestWeighting() ShortestWeighting {
	return ShortestWeighting{}
}

func (ShortestWeighting) CalcEdgeWeight(edge datastructure.Edge, reverse bool) float64 {
	if !edge.IsAccessible(reverse) {
		return math.Inf(1)
	}
	return edge.Dist
}

func (ShortestWeighting) CalcEdgeMillis(edge datastructure.Edge, reverse bool) float64 {
	return edgeMillis(edge, reverse)
}
