package querygraph

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/lintang-b-s/isomatch/pkg/geo"
)

var (
	ErrEdgeAlreadySplit = errors.New("edge is already split in this query graph")
	ErrEdgeNotFound     = errors.New("edge not found")
)

const (
	fractionEpsilon = 1e-9
)

// virtualEdge is one half of a split edge. StartFraction/EndFraction locate it on the original
// edge geometry (stored direction).
type virtualEdge struct {
	edge           datastructure.Edge
	geometry       []datastructure.Coordinate
	originalEdgeID int32
	startFraction  float64
	endFraction    float64
}

// QueryGraph overlays virtual nodes and edges on an immutable base graph. A split edge is hidden
// and replaced by two virtual edges meeting at a virtual node. Create one per query.
type QueryGraph struct {
	base Graph

	virtualNodes []datastructure.Node
	virtualEdges []virtualEdge

	hiddenEdges map[int32]struct{}
	extraOut    map[int32][]int32
	extraIn     map[int32][]int32
}

func NewQueryGraph(base Graph) *QueryGraph {
	return &QueryGraph{
		base:         base,
		virtualNodes: make([]datastructure.Node, 0),
		virtualEdges: make([]virtualEdge, 0),
		hiddenEdges:  make(map[int32]struct{}),
		extraOut:     make(map[int32][]int32),
		extraIn:      make(map[int32][]int32),
	}
}

// Split returns the node at fraction (stored direction) of edgeID. Fractions at either end return
// the existing endpoint, anything in between creates a virtual node.
func (q *QueryGraph) Split(edgeID int32, fraction float64) (int32, error) {
	if edgeID < 0 || int(edgeID) >= q.base.NumberOfEdges() {
		return -1, fmt.Errorf("edge %d: %w", edgeID, ErrEdgeNotFound)
	}
	edge := q.base.GetEdge(edgeID)
	if fraction <= fractionEpsilon {
		return edge.FromNodeID, nil
	}
	if fraction >= 1-fractionEpsilon {
		return edge.ToNodeID, nil
	}
	if _, ok := q.hiddenEdges[edgeID]; ok {
		return -1, fmt.Errorf("edge %d: %w", edgeID, ErrEdgeAlreadySplit)
	}

	geometry := q.base.GetEdgeGeometry(edgeID)
	splitPoint := geo.PointAtFraction(geometry, fraction)

	virtualNodeID := int32(q.base.NumberOfNodes() + len(q.virtualNodes))
	q.virtualNodes = append(q.virtualNodes, datastructure.NewNode(virtualNodeID, splitPoint.Lat, splitPoint.Lon))

	first := edge
	first.ToNodeID = virtualNodeID
	first.Dist = edge.Dist * fraction
	firstID := q.addVirtualEdge(virtualEdge{
		edge:           first,
		geometry:       geo.SubLine(geometry, 0, fraction),
		originalEdgeID: edgeID,
		startFraction:  0,
		endFraction:    fraction,
	})

	second := edge
	second.FromNodeID = virtualNodeID
	second.Dist = edge.Dist * (1 - fraction)
	secondID := q.addVirtualEdge(virtualEdge{
		edge:           second,
		geometry:       geo.SubLine(geometry, fraction, 1),
		originalEdgeID: edgeID,
		startFraction:  fraction,
		endFraction:    1,
	})

	q.hiddenEdges[edgeID] = struct{}{}
	q.extraOut[edge.FromNodeID] = append(q.extraOut[edge.FromNodeID], firstID)
	q.extraIn[virtualNodeID] = append(q.extraIn[virtualNodeID], firstID)
	q.extraOut[virtualNodeID] = append(q.extraOut[virtualNodeID], secondID)
	q.extraIn[edge.ToNodeID] = append(q.extraIn[edge.ToNodeID], secondID)
	return virtualNodeID, nil
}

func (q *QueryGraph) addVirtualEdge(ve virtualEdge) int32 {
	id := int32(q.base.NumberOfEdges() + len(q.virtualEdges))
	ve.edge.EdgeID = id
	q.virtualEdges = append(q.virtualEdges, ve)
	return id
}

func (q *QueryGraph) IsVirtualNode(nodeID int32) bool {
	return int(nodeID) >= q.base.NumberOfNodes()
}

func (q *QueryGraph) IsVirtualEdge(edgeID int32) bool {
	return int(edgeID) >= q.base.NumberOfEdges()
}

func (q *QueryGraph) getVirtualEdge(edgeID int32) virtualEdge {
	return q.virtualEdges[int(edgeID)-q.base.NumberOfEdges()]
}

func (q *QueryGraph) GetNode(nodeID int32) datastructure.Node {
	if q.IsVirtualNode(nodeID) {
		return q.virtualNodes[int(nodeID)-q.base.NumberOfNodes()]
	}
	return q.base.GetNode(nodeID)
}

func (q *QueryGraph) GetEdge(edgeID int32) datastructure.Edge {
	if q.IsVirtualEdge(edgeID) {
		return q.getVirtualEdge(edgeID).edge
	}
	return q.base.GetEdge(edgeID)
}

func (q *QueryGraph) GetEdgeGeometry(edgeID int32) []datastructure.Coordinate {
	if q.IsVirtualEdge(edgeID) {
		return q.getVirtualEdge(edgeID).geometry
	}
	return q.base.GetEdgeGeometry(edgeID)
}

// GetOriginalEdge maps edgeID to the base edge it belongs to and the fraction range it covers.
func (q *QueryGraph) GetOriginalEdge(edgeID int32) (int32, float64, float64) {
	if q.IsVirtualEdge(edgeID) {
		ve := q.getVirtualEdge(edgeID)
		return ve.originalEdgeID, ve.startFraction, ve.endFraction
	}
	return edgeID, 0, 1
}

func (q *QueryGraph) GetNodeFirstOutEdges(nodeID int32) []int32 {
	if q.IsVirtualNode(nodeID) {
		return q.extraOut[nodeID]
	}
	return q.withoutHidden(q.base.GetNodeFirstOutEdges(nodeID), q.extraOut[nodeID])
}

func (q *QueryGraph) GetNodeFirstInEdges(nodeID int32) []int32 {
	if q.IsVirtualNode(nodeID) {
		return q.extraIn[nodeID]
	}
	return q.withoutHidden(q.base.GetNodeFirstInEdges(nodeID), q.extraIn[nodeID])
}

func (q *QueryGraph) withoutHidden(baseEdges, extra []int32) []int32 {
	if len(extra) == 0 {
		return baseEdges
	}
	edges := make([]int32, 0, len(baseEdges)+len(extra))
	for _, edgeID := range baseEdges {
		if _, hidden := q.hiddenEdges[edgeID]; !hidden {
			edges = append(edges, edgeID)
		}
	}
	return append(edges, extra...)
}

func (q *QueryGraph) NumberOfNodes() int {
	return q.base.NumberOfNodes() + len(q.virtualNodes)
}

func (q *QueryGraph) NumberOfEdges() int {
	return q.base.NumberOfEdges() + len(q.virtualEdges)
}
