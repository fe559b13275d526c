package spt

import "github.com/lintang-b-s/isomatch/pkg/datastructure"

type Graph interface {
	GetNode(nodeID int32) datastructure.Node
	GetEdge(edgeID int32) datastructure.Edge
	GetNodeFirstOutEdges(nodeID int32) []int32
	GetNodeFirstInEdges(nodeID int32) []int32
}

type Weighting interface {
	CalcEdgeWeight(edge datastructure.Edge, reverse bool) float64
	CalcEdgeMillis(edge datastructure.Edge, reverse bool) float64
}
