package snap

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/lintang-b-s/isomatch/pkg/engine/matching"
	"github.com/lintang-b-s/isomatch/pkg/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
)

type Graph interface {
	GetEdge(edgeID int32) datastructure.Edge
	GetEdgeGeometry(edgeID int32) []datastructure.Coordinate
	NumberOfEdges() int
}

const (
	rtreeDimension   = 2
	rtreeMinChildren = 25
	rtreeMaxChildren = 50

	// keeps degenerate (single point, axis aligned) edge boxes non empty
	boundPadding = 1e-7
)

type edgeEntry struct {
	edgeID int32
	bounds rtreego.Rect
}

func (e *edgeEntry) Bounds() rtreego.Rect {
	return e.bounds
}

// EdgeIndex is an in-memory R-tree over the bounding boxes of the graph edges.
type EdgeIndex struct {
	graph Graph
	rtree *rtreego.Rtree
}

func NewEdgeIndex(graph Graph) (*EdgeIndex, error) {
	entries := make([]rtreego.Spatial, 0, graph.NumberOfEdges())
	for edgeID := 0; edgeID < graph.NumberOfEdges(); edgeID++ {
		geometry := graph.GetEdgeGeometry(int32(edgeID))
		rect, err := toRect(datastructure.LineString(geometry).Bound())
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", edgeID, err)
		}
		entries = append(entries, &edgeEntry{edgeID: int32(edgeID), bounds: rect})

		if (edgeID+1)%100000 == 0 {
			log.Printf("indexing edges: %d...", edgeID+1)
		}
	}
	return &EdgeIndex{
		graph: graph,
		rtree: rtreego.NewTree(rtreeDimension, rtreeMinChildren, rtreeMaxChildren, entries...),
	}, nil
}

func toRect(bound orb.Bound) (rtreego.Rect, error) {
	return rtreego.NewRectFromPoints(
		rtreego.Point{bound.Min.Lon() - boundPadding, bound.Min.Lat() - boundPadding},
		rtreego.Point{bound.Max.Lon() + boundPadding, bound.Max.Lat() + boundPadding},
	)
}

// radiusBound returns the box around p reaching radius meters in every direction.
func radiusBound(p datastructure.Coordinate, radius float64) orb.Bound {
	diagonalKm := radius * math.Sqrt2 / 1000
	upperLat, upperLon := geo.GetDestinationPoint(p.Lat, p.Lon, 45, diagonalKm)
	lowerLat, lowerLon := geo.GetDestinationPoint(p.Lat, p.Lon, 225, diagonalKm)
	return orb.Bound{
		Min: orb.Point{lowerLon, lowerLat},
		Max: orb.Point{upperLon, upperLat},
	}
}

// Candidates returns every edge passing within radius meters of p, closest first. The cutoff
// geometry of a candidate is the piece of the edge inside the search box nearest to p.
func (ix *EdgeIndex) Candidates(p datastructure.Coordinate, radius float64,
	filter *geo.BearingFilter) ([]matching.MatchedQueryResult, error) {
	bound := radiusBound(p, radius)
	rect, err := toRect(bound)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		result   matching.MatchedQueryResult
		distance float64
	}
	candidates := make([]candidate, 0)
	for _, item := range ix.rtree.SearchIntersect(rect) {
		edgeID := item.(*edgeEntry).edgeID
		geometry := ix.graph.GetEdgeGeometry(edgeID)

		pos, err := geo.ProjectOnLine(geometry, p)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", edgeID, err)
		}
		if pos.Distance > radius {
			continue
		}

		candidates = append(candidates, candidate{
			result: matching.MatchedQueryResult{
				EdgeID:           edgeID,
				InputPoint:       p,
				CutoffGeometry:   crop(geometry, bound, p),
				OriginalGeometry: geometry,
				TravelDirection:  ix.graph.GetEdge(edgeID).Direction(),
				BearingFilter:    filter,
				CutoffDistance:   radius,
			},
			distance: pos.Distance,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].result.EdgeID < candidates[j].result.EdgeID
	})
	results := make([]matching.MatchedQueryResult, len(candidates))
	for i, c := range candidates {
		results[i] = c.result
	}
	return results, nil
}

func (ix *EdgeIndex) Size() int {
	return ix.rtree.Size()
}

// crop clips geometry to bound and keeps the piece closest to p. The full geometry is returned when
// clipping leaves no segment.
func crop(geometry []datastructure.Coordinate, bound orb.Bound, p datastructure.Coordinate) []datastructure.Coordinate {
	pieces := clip.LineString(bound, datastructure.LineString(geometry))

	var best []datastructure.Coordinate
	bestDistance := math.Inf(1)
	for _, piece := range pieces {
		if len(piece) < 2 {
			continue
		}
		coords := datastructure.CoordinatesFromLineString(piece)
		pos, err := geo.ProjectOnLine(coords, p)
		if err != nil {
			continue
		}
		if pos.Distance < bestDistance {
			best, bestDistance = coords, pos.Distance
		}
	}
	if best == nil {
		return geometry
	}
	return best
}
