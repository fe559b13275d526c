package datastructure

import (
	"github.com/paulmach/orb"
)

type Node struct {
	ID  int32   `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewNode(id int32, lat, lon float64) Node {
	return Node{
		ID:  id,
		Lat: lat,
		Lon: lon,
	}
}

// Edge is a directed arc between two graph nodes. Forward/Backward tell whether the edge can be
// travelled along (from -> to) or against (to -> from) its stored geometry.
type Edge struct {
	EdgeID        int32   `json:"edge_id"`
	FromNodeID    int32   `json:"from_node_id"`
	ToNodeID      int32   `json:"to_node_id"`
	LinkID        int64   `json:"link_id"`
	Dist          float64 `json:"dist"` // meters
	Forward       bool    `json:"forward"`
	Backward      bool    `json:"backward"`
	ForwardSpeed  float64 `json:"forward_speed"`  // km/h
	BackwardSpeed float64 `json:"backward_speed"` // km/h
}

func (e Edge) Direction() TravelDirection {
	switch {
	case e.Forward && e.Backward:
		return TravelBoth
	case e.Forward:
		return TravelForward
	case e.Backward:
		return TravelBackward
	}
	return 0
}

// Speed returns the speed of the edge when travelled against its geometry (reverse=true) or along it.
func (e Edge) Speed(reverse bool) float64 {
	if reverse {
		return e.BackwardSpeed
	}
	return e.ForwardSpeed
}

func (e Edge) IsAccessible(reverse bool) bool {
	if reverse {
		return e.Backward
	}
	return e.Forward
}

// NodeIDMap maps external node ids to dense internal indices. An index, once assigned, never changes.
type NodeIDMap struct {
	internal map[int64]int32
	external []int64
}

func NewNodeIDMap() *NodeIDMap {
	return &NodeIDMap{
		internal: make(map[int64]int32),
		external: make([]int64, 0),
	}
}

// GetOrAssign returns the internal index of externalID, assigning the next free index on first sight.
func (m *NodeIDMap) GetOrAssign(externalID int64) (int32, bool) {
	if id, ok := m.internal[externalID]; ok {
		return id, false
	}
	id := int32(len(m.external))
	m.internal[externalID] = id
	m.external = append(m.external, externalID)
	return id, true
}

func (m *NodeIDMap) Get(externalID int64) (int32, bool) {
	id, ok := m.internal[externalID]
	return id, ok
}

func (m *NodeIDMap) GetExternalID(id int32) int64 {
	return m.external[id]
}

func (m *NodeIDMap) GetExternalIDs() []int64 {
	return m.external
}

func (m *NodeIDMap) Len() int {
	return len(m.external)
}

// Graph is the in-memory road graph. Nodes and edges are append-only; after building it is
// shared read-only between queries.
type Graph struct {
	nodes           []Node
	edges           []Edge
	pointsInBetween [][]Coordinate
	payloads        [][]byte

	firstOutEdges [][]int32
	firstInEdges  [][]int32

	nodeIDMap *NodeIDMap
	bound     orb.Bound
	hasBound  bool
}

func NewGraph() *Graph {
	return &Graph{
		nodes:           make([]Node, 0),
		edges:           make([]Edge, 0),
		pointsInBetween: make([][]Coordinate, 0),
		payloads:        make([][]byte, 0),
		firstOutEdges:   make([][]int32, 0),
		firstInEdges:    make([][]int32, 0),
		nodeIDMap:       NewNodeIDMap(),
	}
}

// NewGraphFromStorage rebuilds a graph (adjacency lists included) from persisted tables.
func NewGraphFromStorage(nodes []Node, edges []Edge, pointsInBetween [][]Coordinate, payloads [][]byte,
	externalNodeIDs []int64, bound orb.Bound) *Graph {
	g := NewGraph()
	for i, node := range nodes {
		g.nodeIDMap.GetOrAssign(externalNodeIDs[i])
		g.addNode(node.Lat, node.Lon)
	}
	for i, edge := range edges {
		var payload []byte
		if i < len(payloads) {
			payload = payloads[i]
		}
		g.AddEdge(edge, pointsInBetween[i], payload)
	}
	if !bound.IsZero() {
		g.bound = bound
		g.hasBound = true
	}
	return g
}

// ResolveNode returns the internal index of the external node id, creating the node at coord the
// first time the id is seen. The second return value reports whether the node was created.
func (g *Graph) ResolveNode(externalID int64, coord Coordinate) (int32, bool) {
	id, created := g.nodeIDMap.GetOrAssign(externalID)
	if created {
		g.addNode(coord.Lat, coord.Lon)
	}
	return id, created
}

func (g *Graph) addNode(lat, lon float64) int32 {
	id := int32(len(g.nodes))
	g.nodes = append(g.nodes, NewNode(id, lat, lon))
	g.firstOutEdges = append(g.firstOutEdges, make([]int32, 0))
	g.firstInEdges = append(g.firstInEdges, make([]int32, 0))
	return id
}

// AddEdge appends edge and returns its id. edge.EdgeID is overwritten.
func (g *Graph) AddEdge(edge Edge, pointsInBetween []Coordinate, payload []byte) int32 {
	edgeID := int32(len(g.edges))
	edge.EdgeID = edgeID
	if pointsInBetween == nil {
		pointsInBetween = make([]Coordinate, 0)
	}
	g.edges = append(g.edges, edge)
	g.pointsInBetween = append(g.pointsInBetween, pointsInBetween)
	g.payloads = append(g.payloads, payload)

	g.firstOutEdges[edge.FromNodeID] = append(g.firstOutEdges[edge.FromNodeID], edgeID)
	g.firstInEdges[edge.ToNodeID] = append(g.firstInEdges[edge.ToNodeID], edgeID)
	return edgeID
}

// ExtendBound grows the graph bounding box to include p padded by eps degrees on both axes.
func (g *Graph) ExtendBound(p orb.Point, eps float64) {
	padded := orb.Bound{
		Min: orb.Point{p.Lon() - eps, p.Lat() - eps},
		Max: orb.Point{p.Lon() + eps, p.Lat() + eps},
	}
	if !g.hasBound {
		g.bound = padded
		g.hasBound = true
		return
	}
	g.bound = g.bound.Union(padded)
}

func (g *Graph) GetBound() (orb.Bound, bool) {
	return g.bound, g.hasBound
}

func (g *Graph) GetNode(nodeID int32) Node {
	return g.nodes[nodeID]
}

func (g *Graph) GetNodes() []Node {
	return g.nodes
}

func (g *Graph) GetEdge(edgeID int32) Edge {
	return g.edges[edgeID]
}

func (g *Graph) GetEdges() []Edge {
	return g.edges
}

func (g *Graph) NumberOfNodes() int {
	return len(g.nodes)
}

func (g *Graph) NumberOfEdges() int {
	return len(g.edges)
}

func (g *Graph) GetNodeFirstOutEdges(nodeID int32) []int32 {
	return g.firstOutEdges[nodeID]
}

func (g *Graph) GetNodeFirstInEdges(nodeID int32) []int32 {
	return g.firstInEdges[nodeID]
}

func (g *Graph) GetEdgePointsInBetween(edgeID int32) []Coordinate {
	return g.pointsInBetween[edgeID]
}

func (g *Graph) GetAllPointsInBetween() [][]Coordinate {
	return g.pointsInBetween
}

func (g *Graph) GetEdgePayload(edgeID int32) []byte {
	return g.payloads[edgeID]
}

func (g *Graph) GetPayloads() [][]byte {
	return g.payloads
}

// GetEdgeGeometry returns the full geometry of the edge in stored direction: from node,
// interior points, to node.
func (g *Graph) GetEdgeGeometry(edgeID int32) []Coordinate {
	edge := g.edges[edgeID]
	interior := g.pointsInBetween[edgeID]
	from := g.nodes[edge.FromNodeID]
	to := g.nodes[edge.ToNodeID]

	geometry := make([]Coordinate, 0, len(interior)+2)
	geometry = append(geometry, NewCoordinate(from.Lat, from.Lon))
	geometry = append(geometry, interior...)
	geometry = append(geometry, NewCoordinate(to.Lat, to.Lon))
	return geometry
}

func (g *Graph) GetNodeIDMap() *NodeIDMap {
	return g.nodeIDMap
}
