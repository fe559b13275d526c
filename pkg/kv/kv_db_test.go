package kv

import (
	"context"
	"testing"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/lintang-b-s/isomatch/pkg/graphbuilder"
	"github.com/lintang-b-s/isomatch/pkg/linksource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coord(lat, lon float64) datastructure.Coordinate {
	return datastructure.NewCoordinate(lat, lon)
}

func testGraph(t *testing.T) *datastructure.Graph {
	links := []datastructure.Link{
		datastructure.NewLink(11, 100, 200, []datastructure.Coordinate{
			coord(-7.5658, 110.8315), coord(-7.5660, 110.8323), coord(-7.5664, 110.8332),
		}, 40, 40, 0),
		datastructure.NewLink(12, 200, 300, []datastructure.Coordinate{
			coord(-7.5664, 110.8332), coord(-7.5700, 110.8400),
		}, 60, 0, 0),
	}
	links[0].Properties = []byte("primary")
	g, err := graphbuilder.Build(linksource.NewSliceScanner(links), graphbuilder.WithBoundingBox(true))
	require.Nil(t, err)
	return g
}

func openTestDB(t *testing.T) *KVDB {
	db, err := Open("")
	require.Nil(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveLoadGraph(t *testing.T) {
	g := testGraph(t)
	db := openTestDB(t)
	ctx := context.Background()

	require.Nil(t, db.SaveGraph(ctx, g))
	loaded, err := db.LoadGraph(ctx)
	require.Nil(t, err)

	assert.Equal(t, g.NumberOfNodes(), loaded.NumberOfNodes())
	assert.Equal(t, g.NumberOfEdges(), loaded.NumberOfEdges())
	assert.Equal(t, g.GetNodes(), loaded.GetNodes())
	assert.Equal(t, g.GetEdges(), loaded.GetEdges())
	for edgeID := int32(0); edgeID < int32(g.NumberOfEdges()); edgeID++ {
		assert.Equal(t, g.GetEdgeGeometry(edgeID), loaded.GetEdgeGeometry(edgeID))
		assert.Equal(t, g.GetNodeFirstOutEdges(edgeID), loaded.GetNodeFirstOutEdges(edgeID))
	}
	assert.Equal(t, []byte("primary"), loaded.GetEdgePayload(0))

	for _, ext := range []int64{100, 200, 300} {
		want, _ := g.GetNodeIDMap().Get(ext)
		got, ok := loaded.GetNodeIDMap().Get(ext)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	wantBound, _ := g.GetBound()
	gotBound, ok := loaded.GetBound()
	assert.True(t, ok)
	assert.Equal(t, wantBound, gotBound)
}

func TestLoadGraphNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.LoadGraph(context.Background())
	assert.ErrorIs(t, err, ErrGraphNotFound)
}

func TestSaveGraphCancelled(t *testing.T) {
	db := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, db.SaveGraph(ctx, testGraph(t)))
}

func TestH3IndexedEdges(t *testing.T) {
	g := testGraph(t)
	db := openTestDB(t)
	require.Nil(t, db.BuildH3IndexedEdges(context.Background(), g))

	// on the first vertex of edge 0
	edgeIDs, err := db.GetNearestEdgeIDs(-7.5658, 110.8315, 50)
	require.Nil(t, err)
	assert.Contains(t, edgeIDs, int32(0))

	// halfway along the long second edge, no vertex there
	edgeIDs, err = db.GetNearestEdgeIDs(-7.5682, 110.8366, 50)
	require.Nil(t, err)
	assert.Contains(t, edgeIDs, int32(1))

	// far away, rings run out
	_, err = db.GetNearestEdgeIDs(10, 10, 50)
	assert.ErrorIs(t, err, ErrEdgesNotFound)
}

func TestStoredEdgeFlags(t *testing.T) {
	for _, tc := range []struct{ forward, backward bool }{
		{true, true}, {true, false}, {false, true},
	} {
		edge := datastructure.Edge{FromNodeID: 1, ToNodeID: 2, Forward: tc.forward, Backward: tc.backward}
		got := newStoredEdge(edge, nil, nil).toEdge(0)
		assert.Equal(t, tc.forward, got.Forward)
		assert.Equal(t, tc.backward, got.Backward)
	}
}

func TestDensify(t *testing.T) {
	line := []datastructure.Coordinate{coord(0, 0), coord(0, 0.01)} // ~1.1 km
	points := densify(line)
	assert.Equal(t, line[0], points[0])
	assert.Equal(t, line[1], points[len(points)-1])
	assert.Len(t, points, 13)
}
