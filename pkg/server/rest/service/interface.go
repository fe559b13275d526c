package service

import (
	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/lintang-b-s/isomatch/pkg/engine/isochrone"
	"github.com/lintang-b-s/isomatch/pkg/engine/matching"
	"github.com/lintang-b-s/isomatch/pkg/geo"
)

type Graph interface {
	GetNode(nodeID int32) datastructure.Node
	GetEdge(edgeID int32) datastructure.Edge
	GetNodeFirstOutEdges(nodeID int32) []int32
	GetNodeFirstInEdges(nodeID int32) []int32
	GetEdgeGeometry(edgeID int32) []datastructure.Coordinate
	NumberOfNodes() int
	NumberOfEdges() int
}

type SpatialIndex interface {
	Candidates(p datastructure.Coordinate, radius float64, filter *geo.BearingFilter) ([]matching.MatchedQueryResult, error)
}

// CellIndex looks edges up by H3 cell rings.
type CellIndex interface {
	GetNearestEdgeIDs(lat, lon, radiusMeters float64) ([]int32, error)
}

type IsochroneCalculator interface {
	Calculate(point matching.MatchedPoint, limit isochrone.Limit, direction isochrone.Direction) ([]isochrone.IsochroneMatch, error)
}
