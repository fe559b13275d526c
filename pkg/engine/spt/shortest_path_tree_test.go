package spt

import (
	"testing"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEdge struct {
	from, to      int64
	dist          float64
	forward, back float64
}

func buildGraph(nodes int, edges []testEdge) *datastructure.Graph {
	g := datastructure.NewGraph()
	for i := 0; i < nodes; i++ {
		g.ResolveNode(int64(i), datastructure.NewCoordinate(0, float64(i)*0.001))
	}
	for i, e := range edges {
		g.AddEdge(datastructure.Edge{
			FromNodeID:    int32(e.from),
			ToNodeID:      int32(e.to),
			LinkID:        int64(i),
			Dist:          e.dist,
			Forward:       e.forward > 0,
			Backward:      e.back > 0,
			ForwardSpeed:  e.forward,
			BackwardSpeed: e.back,
		}, nil, nil)
	}
	return g
}

func labelByNode(labels []Label) map[int32]Label {
	m := make(map[int32]Label)
	for _, l := range labels {
		m[l.NodeID] = l
	}
	return m
}

/*
0 --100m--> 1, limit 50m: the far endpoint crosses the limit halfway.
*/
func TestShortestPathTreeBoundaryExactness(t *testing.T) {
	g := buildGraph(2, []testEdge{{0, 1, 100, 36, 0}})

	s := NewShortestPathTree(g, NewShortestWeighting(), false)
	s.SetDistanceLimit(50)
	tree := s.SearchTree(0)

	boundary := tree.Boundary()
	require.Len(t, boundary, 1)
	label := boundary[0]
	assert.Equal(t, int32(1), label.NodeID)

	parent, err := tree.GetParent(label)
	require.Nil(t, err)
	assert.True(t, parent.IsRoot())

	parentValue, value := tree.ExploreValue(parent), tree.ExploreValue(label)
	cut := (s.GetLimit() - parentValue) / (value - parentValue)
	assert.InDelta(t, 0.5, cut, 1e-9)
}

/*
	0 --100--> 1 --100--> 2 --100--> 3

limit 150: node 2 crosses the limit and is kept, node 3 is never reached.
*/
func TestShortestPathTreeLimit(t *testing.T) {
	g := buildGraph(4, []testEdge{
		{0, 1, 100, 36, 36},
		{1, 2, 100, 36, 36},
		{2, 3, 100, 36, 36},
	})

	s := NewShortestPathTree(g, NewShortestWeighting(), false)
	s.SetDistanceLimit(150)
	tree := s.SearchTree(0)

	byNode := labelByNode(tree.Labels())
	assert.Len(t, byNode, 3)
	assert.NotContains(t, byNode, int32(3))

	boundary := tree.Boundary()
	require.Len(t, boundary, 1)
	assert.Equal(t, int32(2), boundary[0].NodeID)
	assert.Equal(t, 200.0, boundary[0].Distance)
	assert.False(t, s.IsBoundary(byNode[1]))
}

/*
	0 --10--> 1
	|         ^
	1         1
	v         |
	2 --------+

node 1 is first labelled with weight 10, then replaced by the cheaper label through 2.
*/
func TestShortestPathTreeLazyDeletion(t *testing.T) {
	g := buildGraph(3, []testEdge{
		{0, 1, 10, 36, 0},
		{0, 2, 1, 36, 0},
		{2, 1, 1, 36, 0},
	})

	s := NewShortestPathTree(g, NewShortestWeighting(), false)
	tree := s.SearchTree(0)

	labels := tree.Labels()
	assert.Len(t, labels, 3)
	byNode := labelByNode(labels)
	assert.Equal(t, 2.0, byNode[1].Weight)
	assert.Equal(t, int32(2), byNode[1].EdgeID)

	parent, err := tree.GetParent(byNode[1])
	require.Nil(t, err)
	assert.Equal(t, int32(2), parent.NodeID)

	// the superseded label is still in the arena
	stale, err := s.GetLabel(1)
	require.Nil(t, err)
	assert.Equal(t, int32(1), stale.NodeID)
	assert.Equal(t, 10.0, stale.Weight)
}

func TestShortestPathTreeParallelEdges(t *testing.T) {
	g := buildGraph(2, []testEdge{
		{0, 1, 100, 36, 0},
		{0, 1, 50, 36, 0},
	})

	s := NewShortestPathTree(g, NewShortestWeighting(), false)
	byNode := labelByNode(s.SearchTree(0).Labels())
	assert.Equal(t, int32(1), byNode[1].EdgeID)
	assert.Equal(t, 50.0, byNode[1].Distance)
}

/*
	0 ---> 1  (one way)
*/
func TestShortestPathTreeOneWay(t *testing.T) {
	g := buildGraph(2, []testEdge{{0, 1, 100, 36, 0}})

	forward := NewShortestPathTree(g, NewShortestWeighting(), false)
	assert.Len(t, forward.SearchTree(1).Labels(), 1, "1 can't reach 0")

	upstream := NewShortestPathTree(g, NewShortestWeighting(), true)
	labels := upstream.SearchTree(1).Labels()
	require.Len(t, labels, 2, "0 can reach 1")
	assert.Equal(t, int32(0), labels[1].NodeID)
	assert.False(t, labels[1].AlongGeometry)
	assert.False(t, labels[1].Reversed)

	assert.Len(t, upstream.SearchTree(0).Labels(), 1)
}

/*
	0 <--- 1  (stored 0 -> 1, only passable against its geometry)
*/
func TestShortestPathTreeBackwardOnly(t *testing.T) {
	g := buildGraph(2, []testEdge{{0, 1, 100, 0, 36}})

	s := NewShortestPathTree(g, NewShortestWeighting(), false)
	labels := s.SearchTree(1).Labels()
	require.Len(t, labels, 2)
	assert.Equal(t, int32(0), labels[1].NodeID)
	assert.True(t, labels[1].Reversed)
	assert.False(t, labels[1].AlongGeometry)

	assert.Len(t, s.SearchTree(0).Labels(), 1)
}

func TestShortestPathTreeTime(t *testing.T) {
	// 36 km/h = 10 m/s
	g := buildGraph(3, []testEdge{
		{0, 1, 100, 36, 36},
		{1, 2, 100, 72, 72},
	})

	s := NewShortestPathTree(g, NewFastestWeighting(), false)
	s.SetTimeLimit(12000)
	byNode := labelByNode(s.SearchTree(0).Labels())

	assert.InDelta(t, 10000.0, byNode[1].Time, 1e-9)
	assert.InDelta(t, 15000.0, byNode[2].Time, 1e-9)
	assert.InDelta(t, 15.0, byNode[2].Weight, 1e-9)
	assert.Equal(t, 200.0, byNode[2].Distance)
	assert.Equal(t, ExploreTime, s.GetExploreType())
}

func TestShortestPathTreeConsumerStops(t *testing.T) {
	g := buildGraph(4, []testEdge{
		{0, 1, 1, 36, 36},
		{1, 2, 1, 36, 36},
		{2, 3, 1, 36, 36},
	})

	s := NewShortestPathTree(g, NewShortestWeighting(), false)
	visited := []int32{}
	s.Search(0, func(label Label) bool {
		visited = append(visited, label.NodeID)
		return len(visited) < 2
	})
	assert.Equal(t, []int32{0, 1}, visited)
}

func TestShortestPathTreeUnreachable(t *testing.T) {
	g := buildGraph(3, []testEdge{{0, 1, 1, 36, 36}})

	s := NewShortestPathTree(g, NewShortestWeighting(), false)
	byNode := labelByNode(s.SearchTree(0).Labels())
	assert.NotContains(t, byNode, int32(2))

	_, err := s.GetLabel(42)
	assert.ErrorIs(t, err, ErrLabelNotFound)
	_, err = s.GetParent(byNode[0])
	assert.ErrorIs(t, err, ErrLabelNotFound)
}

/*
	  e0(10)     e1(10)
	0 ------ 1 ------ 2
	 \_______________/
	       e2(100)

e0 is blocked at the origin, node 1 is reached around the loop.
*/
func TestShortestPathTreeRootEdgeFilter(t *testing.T) {
	g := buildGraph(3, []testEdge{
		{0, 1, 10, 36, 36},
		{1, 2, 10, 36, 36},
		{0, 2, 100, 36, 36},
	})

	calls := 0
	s := NewShortestPathTree(g, NewShortestWeighting(), false)
	s.SetRootEdgeFilter(func(edgeID int32, along bool) bool {
		calls++
		return edgeID != 0
	})
	labels := labelByNode(s.SearchTree(0).Labels())

	require.Contains(t, labels, int32(1))
	assert.Equal(t, int32(1), labels[1].EdgeID)
	assert.False(t, labels[1].AlongGeometry)
	assert.InDelta(t, 110.0, labels[1].Distance, 1e-9)
	assert.Equal(t, 2, calls, "only the hops leaving the origin are filtered")
}
