package isochrone

import (
	"errors"
	"fmt"
	"math"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/lintang-b-s/isomatch/pkg/engine/matching"
	"github.com/lintang-b-s/isomatch/pkg/engine/querygraph"
	"github.com/lintang-b-s/isomatch/pkg/engine/spt"
	"github.com/lintang-b-s/isomatch/pkg/geo"
)

var (
	ErrUnknownUnit        = errors.New("unknown isochrone unit, expected meters, kilometers, seconds or minutes")
	ErrUnknownDirection   = errors.New("unknown isochrone direction, expected upstream or downstream")
	ErrInvalidLimit       = errors.New("isochrone limit must be a non negative number")
	ErrInvariantViolation = errors.New("isochrone invariant violation")
)

// IsochroneMatch is the part of a graph edge covered by an isochrone. Fractions are measured along
// the stored edge geometry.
//
// Direction is the side the search walked the edge on: TravelForward from its from node, TravelBackward
// from its to node. For downstream isochrones that is the travel direction. Upstream searches walk
// against traffic, so a match travelled along the geometry (Reversed false) reports TravelBackward.
type IsochroneMatch struct {
	EdgeID        int32                         `json:"edge_id"`
	LinkID        int64                         `json:"link_id"`
	Reversed      bool                          `json:"reversed"`
	StartFraction float64                       `json:"start_fraction"`
	EndFraction   float64                       `json:"end_fraction"`
	Direction     datastructure.TravelDirection `json:"direction"`
}

type Calculator struct {
	graph querygraph.Graph
}

// NewCalculator returns an isochrone calculator over the shared read-only graph. It is safe for
// concurrent use, every call builds its own query graph and search.
func NewCalculator(graph querygraph.Graph) *Calculator {
	return &Calculator{graph: graph}
}

// Upstream returns the edges from which the matched point can be reached within limit.
func (c *Calculator) Upstream(point matching.MatchedPoint, limit Limit) ([]IsochroneMatch, error) {
	return c.Calculate(point, limit, Upstream)
}

// Downstream returns the edges reachable from the matched point within limit.
func (c *Calculator) Downstream(point matching.MatchedPoint, limit Limit) ([]IsochroneMatch, error) {
	return c.Calculate(point, limit, Downstream)
}

func (c *Calculator) Calculate(point matching.MatchedPoint, limit Limit, direction Direction) ([]IsochroneMatch, error) {
	exploreType, limitValue, err := limit.explore()
	if err != nil {
		return nil, err
	}

	qg := querygraph.NewQueryGraph(c.graph)
	origin, err := qg.Split(point.EdgeID, point.StoredFraction())
	if err != nil {
		return nil, fmt.Errorf("splitting matched edge %d: %w", point.EdgeID, err)
	}

	// the side of the matched edge the search leaves from: travel direction of the point XOR
	// requested direction
	againstGeometry := (direction == Upstream) != point.Reversed

	var weighting spt.Weighting = spt.NewFastestWeighting()
	if exploreType == spt.ExploreDistance {
		weighting = spt.NewShortestWeighting()
	}
	search := spt.NewShortestPathTree(qg, weighting, direction == Upstream)
	if exploreType == spt.ExploreDistance {
		search.SetDistanceLimit(limitValue)
	} else {
		search.SetTimeLimit(limitValue)
	}
	wantAlong := !againstGeometry
	if startEdge := qg.GetEdge(point.EdgeID); startEdge.Forward && startEdge.Backward {
		// leave the origin only on the requested side of the matched edge, otherwise the other side
		// can settle nodes first through a loop and the requested side is never expanded
		search.SetRootEdgeFilter(func(edgeID int32, along bool) bool {
			originalEdgeID, _, _ := qg.GetOriginalEdge(edgeID)
			return originalEdgeID != point.EdgeID || along == wantAlong
		})
	}
	tree := search.SearchTree(origin)

	filter := newDirectionFilter(tree, qg, point.EdgeID, wantAlong)
	matches := make([]IsochroneMatch, 0)
	for _, label := range tree.Labels() {
		if label.IsRoot() {
			continue
		}
		accepted, err := filter.accept(label)
		if err != nil {
			return nil, err
		}
		if !accepted {
			continue
		}
		match, err := c.toMatch(qg, tree, label, limitValue)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// toMatch maps label to the covered range of its original edge. The part of the edge before the
// limit is covered, starting at the side of the parent label.
func (c *Calculator) toMatch(qg *querygraph.QueryGraph, tree *spt.Tree, label spt.Label,
	limit float64) (IsochroneMatch, error) {
	parent, err := tree.GetParent(label)
	if err != nil {
		return IsochroneMatch{}, fmt.Errorf("label %d: %v: %w", label.ID, err, ErrInvariantViolation)
	}

	cut := CutFraction(tree.ExploreValue(parent), tree.ExploreValue(label), limit)
	localStart, localEnd := 0.0, cut
	if !label.AlongGeometry {
		localStart, localEnd = 1-cut, 1.0
	}

	originalEdgeID, startFraction, endFraction := qg.GetOriginalEdge(label.EdgeID)
	span := endFraction - startFraction

	direction := datastructure.TravelForward
	if !label.AlongGeometry {
		direction = datastructure.TravelBackward
	}
	return IsochroneMatch{
		EdgeID:        originalEdgeID,
		LinkID:        c.graph.GetEdge(originalEdgeID).LinkID,
		Reversed:      label.Reversed,
		StartFraction: startFraction + localStart*span,
		EndFraction:   startFraction + localEnd*span,
		Direction:     direction,
	}, nil
}

// CutFraction is the share of an edge travelled before the limit, going from parentValue to value.
func CutFraction(parentValue, value, limit float64) float64 {
	if value <= parentValue {
		return 1
	}
	cut := (limit - parentValue) / (value - parentValue)
	return math.Max(0, math.Min(1, cut))
}

// Geometry returns the covered part of the edge of match, in stored direction.
func Geometry(graph querygraph.Graph, match IsochroneMatch) []datastructure.Coordinate {
	return geo.SubLine(graph.GetEdgeGeometry(match.EdgeID), match.StartFraction, match.EndFraction)
}
