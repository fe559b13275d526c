package graphbuilder

import (
	"testing"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/lintang-b-s/isomatch/pkg/linksource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coord(lat, lon float64) datastructure.Coordinate {
	return datastructure.NewCoordinate(lat, lon)
}

/*
	(10) ---A--- (20) ---B--- (30)
	               |
	               C
	               |
	             (40)
*/
func testLinks() []datastructure.Link {
	return []datastructure.Link{
		datastructure.NewLink(1, 10, 20, []datastructure.Coordinate{coord(0, 0), coord(0, 1)}, 50, 50, 0),
		datastructure.NewLink(2, 20, 30, []datastructure.Coordinate{coord(0, 1), coord(0, 2)}, 50, 0, 0),
		datastructure.NewLink(3, 20, 40, []datastructure.Coordinate{coord(0, 1), coord(-1, 1)}, 0, 30, 0),
	}
}

func TestBuildNodeIDsFirstOccurrence(t *testing.T) {
	links := testLinks()
	g, err := Build(linksource.NewSliceScanner(links))
	require.Nil(t, err)

	m := g.GetNodeIDMap()
	assert.Equal(t, 4, m.Len())
	for ext, want := range map[int64]int32{10: 0, 20: 1, 30: 2, 40: 3} {
		got, ok := m.Get(ext)
		assert.True(t, ok)
		assert.Equal(t, want, got)
		assert.Equal(t, ext, m.GetExternalID(got))
	}
}

func TestBuildNodeIDsOrderIndependentForSharedEndpoint(t *testing.T) {
	links := testLinks()
	reordered := []datastructure.Link{links[0], links[2], links[1]}

	g1, err := Build(linksource.NewSliceScanner(links))
	require.Nil(t, err)
	g2, err := Build(linksource.NewSliceScanner(reordered))
	require.Nil(t, err)

	// 10 and 20 are first seen on link 1 in both orders
	for _, ext := range []int64{10, 20} {
		id1, _ := g1.GetNodeIDMap().Get(ext)
		id2, _ := g2.GetNodeIDMap().Get(ext)
		assert.Equal(t, id1, id2)
	}
}

func TestBuildEdgeGeometryRoundTrip(t *testing.T) {
	p0, p1, p2, p3 := coord(0, 0), coord(0.001, 0.001), coord(0.002, 0.001), coord(0.003, 0.002)
	link := datastructure.NewLink(7, 1, 2, []datastructure.Coordinate{p0, p1, p2, p3}, 40, 0, 500)

	g, err := Build(linksource.NewSliceScanner([]datastructure.Link{link}))
	require.Nil(t, err)
	require.Equal(t, 1, g.NumberOfEdges())

	edge := g.GetEdge(0)
	assert.Equal(t, []datastructure.Coordinate{p1, p2}, g.GetEdgePointsInBetween(0))
	from, to := g.GetNode(edge.FromNodeID), g.GetNode(edge.ToNodeID)
	assert.Equal(t, p0, coord(from.Lat, from.Lon))
	assert.Equal(t, p3, coord(to.Lat, to.Lon))
	assert.Equal(t, []datastructure.Coordinate{p0, p1, p2, p3}, g.GetEdgeGeometry(0))
	assert.Equal(t, int64(7), edge.LinkID)
	assert.Equal(t, 500.0, edge.Dist)
}

func TestBuildTwoPointLinkHasNoInteriorGeometry(t *testing.T) {
	g, err := Build(linksource.NewSliceScanner(testLinks()))
	require.Nil(t, err)
	assert.Empty(t, g.GetEdgePointsInBetween(0))
	assert.Greater(t, g.GetEdge(0).Dist, 0.0, "missing distance is computed from geometry")
}

func TestBuildDirectionalAccess(t *testing.T) {
	g, err := Build(linksource.NewSliceScanner(testLinks()))
	require.Nil(t, err)

	assert.Equal(t, datastructure.TravelBoth, g.GetEdge(0).Direction())
	assert.Equal(t, datastructure.TravelForward, g.GetEdge(1).Direction())
	assert.Equal(t, datastructure.TravelBackward, g.GetEdge(2).Direction())
	assert.Equal(t, 30.0, g.GetEdge(2).BackwardSpeed)

	node20, _ := g.GetNodeIDMap().Get(20)
	assert.ElementsMatch(t, []int32{1, 2}, g.GetNodeFirstOutEdges(node20))
	assert.ElementsMatch(t, []int32{0}, g.GetNodeFirstInEdges(node20))
}

func TestBuildInvalidGeometryAborts(t *testing.T) {
	links := append(testLinks(), datastructure.NewLink(99, 1, 2, []datastructure.Coordinate{coord(0, 0)}, 10, 10, 1))

	g, err := Build(linksource.NewSliceScanner(links))
	assert.Nil(t, g)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
	assert.Contains(t, err.Error(), "link 99")
}

func TestBuildEndpointMismatch(t *testing.T) {
	links := []datastructure.Link{
		datastructure.NewLink(1, 10, 20, []datastructure.Coordinate{coord(0, 0), coord(0, 1)}, 50, 50, 0),
		datastructure.NewLink(2, 20, 30, []datastructure.Coordinate{coord(0.5, 1), coord(0, 2)}, 50, 50, 0),
	}

	_, err := Build(linksource.NewSliceScanner(links))
	assert.ErrorIs(t, err, ErrEndpointMismatch)

	_, err = Build(linksource.NewSliceScanner(links), WithEndpointTolerance(-1))
	assert.Nil(t, err)
}

func TestBuildBoundingBox(t *testing.T) {
	link := datastructure.NewLink(1, 1, 2, []datastructure.Coordinate{coord(0, 0), coord(3, -2), coord(1, 1)}, 10, 0, 0)

	g, err := Build(linksource.NewSliceScanner([]datastructure.Link{link}), WithBoundEpsilon(0.5))
	require.Nil(t, err)

	bound, ok := g.GetBound()
	require.True(t, ok)
	assert.InDelta(t, -2.5, bound.Min.Lon(), 1e-9)
	assert.InDelta(t, -0.5, bound.Min.Lat(), 1e-9)
	assert.InDelta(t, 1.5, bound.Max.Lon(), 1e-9)
	assert.InDelta(t, 3.5, bound.Max.Lat(), 1e-9)

	g, err = Build(linksource.NewSliceScanner([]datastructure.Link{link}), WithBoundingBox(false))
	require.Nil(t, err)
	_, ok = g.GetBound()
	assert.False(t, ok)
}
