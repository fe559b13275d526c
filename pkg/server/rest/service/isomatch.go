package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"

	"github.com/lintang-b-s/isomatch/pkg/concurrent"
	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/lintang-b-s/isomatch/pkg/engine/isochrone"
	"github.com/lintang-b-s/isomatch/pkg/engine/matching"
	"github.com/lintang-b-s/isomatch/pkg/geo"
	"github.com/lintang-b-s/isomatch/pkg/kv"
	"github.com/lintang-b-s/isomatch/pkg/server"
)

const (
	NotCoveredMessage = "sorry!! the location you entered is not covered on my map :(, please use a different road network"
)

type MatchingService struct {
	graph      Graph
	index      SpatialIndex
	cellIndex  CellIndex
	iso        IsochroneCalculator
	numWorkers int
	radius     float64
}

type Option func(*MatchingService)

// WithCellIndex makes NearestEdges look edges up in the H3 cell index instead of the R-tree.
func WithCellIndex(cellIndex CellIndex) Option {
	return func(s *MatchingService) {
		s.cellIndex = cellIndex
	}
}

func WithNumWorkers(n int) Option {
	return func(s *MatchingService) {
		if n > 0 {
			s.numWorkers = n
		}
	}
}

// WithSearchRadius sets the radius (meters) used when a request does not carry one.
func WithSearchRadius(meters float64) Option {
	return func(s *MatchingService) {
		if meters > 0 {
			s.radius = meters
		}
	}
}

func NewMatchingService(graph Graph, index SpatialIndex, iso IsochroneCalculator, opts ...Option) *MatchingService {
	s := &MatchingService{
		graph:      graph,
		index:      index,
		iso:        iso,
		numWorkers: runtime.NumCPU(),
		radius:     matching.DefaultSearchRadius,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MatchPoint snaps p on every edge within radius meters, best reliability first, at most maxMatches
// (0 keeps all). No candidate is not an error, the result is then empty.
func (uc *MatchingService) MatchPoint(ctx context.Context, p datastructure.Coordinate, radius float64,
	filter *geo.BearingFilter, maxMatches int) ([]matching.MatchedPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, "request cancelled")
	}
	if radius <= 0 {
		radius = uc.radius
	}

	candidates, err := uc.index.Candidates(p, radius, filter)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}

	matches := make([]matching.MatchedPoint, 0)
	for _, candidate := range candidates {
		candidateMatches, err := matching.CalculateMatches(candidate)
		if err != nil {
			return nil, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
		}
		matches = append(matches, candidateMatches...)
	}

	matching.SortByReliability(matches)
	if maxMatches > 0 && len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches, nil
}

type MatchPointParam struct {
	Point         datastructure.Coordinate
	Radius        float64
	BearingFilter *geo.BearingFilter
	MaxMatches    int
}

type batchMatchResult struct {
	index   int
	matches []matching.MatchedPoint
	err     error
}

// MatchPoints matches every point concurrently. The i-th result belongs to the i-th point.
func (uc *MatchingService) MatchPoints(ctx context.Context, params []MatchPointParam) ([][]matching.MatchedPoint, error) {
	if len(params) == 0 {
		return nil, server.NewErrorf(server.ErrBadParamInput, "points cannot be empty!")
	}

	maxMatches := make([]int, len(params))
	workers := concurrent.NewWorkerPool[concurrent.MatchPointJobItem, batchMatchResult](uc.numWorkers, len(params))
	for i, param := range params {
		maxMatches[i] = param.MaxMatches
		workers.AddJob(concurrent.NewMatchPointJobItem(i, param.Point, param.Radius, param.BearingFilter))
	}
	workers.Close()
	workers.Start(func(job concurrent.MatchPointJobItem) batchMatchResult {
		matches, err := uc.MatchPoint(ctx, job.Point, job.Radius, job.BearingFilter, maxMatches[job.Index])
		return batchMatchResult{index: job.Index, matches: matches, err: err}
	})
	workers.Wait()

	results := make([][]matching.MatchedPoint, len(params))
	var firstErr error
	for res := range workers.CollectResults() {
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
		results[res.index] = res.matches
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

type IsochroneParam struct {
	Point         datastructure.Coordinate
	Radius        float64
	BearingFilter *geo.BearingFilter
	Direction     string
	Limit         float64
	Unit          string
	Simplify      bool

	SimplifyTolerance float64 // Douglas Peucker tolerance in meters, 0 = default
}

// IsochroneResult is empty with Matched false when the point is on no road.
type IsochroneResult struct {
	Matched      bool
	MatchedPoint matching.MatchedPoint
	Matches      []isochrone.IsochroneMatch
	Geometries   [][]datastructure.Coordinate
}

// Isochrone matches the point, keeps the most reliable match and computes the isochrone from it.
func (uc *MatchingService) Isochrone(ctx context.Context, param IsochroneParam) (IsochroneResult, error) {
	direction, err := isochrone.ParseDirection(param.Direction)
	if err != nil {
		return IsochroneResult{}, server.WrapErrorf(err, server.ErrBadParamInput, "invalid direction %q", param.Direction)
	}
	unit, err := isochrone.ParseUnit(param.Unit)
	if err != nil {
		return IsochroneResult{}, server.WrapErrorf(err, server.ErrBadParamInput, "invalid unit %q", param.Unit)
	}

	matches, err := uc.MatchPoint(ctx, param.Point, param.Radius, param.BearingFilter, 1)
	if err != nil {
		return IsochroneResult{}, err
	}
	if len(matches) == 0 {
		return IsochroneResult{
			Matches:    make([]isochrone.IsochroneMatch, 0),
			Geometries: make([][]datastructure.Coordinate, 0),
		}, nil
	}
	start := matches[0]

	isoMatches, err := uc.iso.Calculate(start, isochrone.NewLimit(param.Limit, unit), direction)
	switch {
	case errors.Is(err, isochrone.ErrUnknownUnit), errors.Is(err, isochrone.ErrInvalidLimit):
		return IsochroneResult{}, server.WrapErrorf(err, server.ErrBadParamInput, "invalid limit")
	case err != nil:
		return IsochroneResult{}, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}

	geometries := make([][]datastructure.Coordinate, len(isoMatches))
	for i, m := range isoMatches {
		geometry := isochrone.Geometry(uc.graph, m)
		if param.Simplify {
			geometry = geo.RamesDouglasPeucker(geometry, param.SimplifyTolerance)
		}
		geometries[i] = geometry
	}

	return IsochroneResult{
		Matched:      true,
		MatchedPoint: start,
		Matches:      isoMatches,
		Geometries:   geometries,
	}, nil
}

type NearestEdge struct {
	Edge         datastructure.Edge
	SnappedPoint datastructure.Coordinate
	Distance     float64 // meters
}

// NearestEdges returns up to k edges within radius meters of p, closest first.
func (uc *MatchingService) NearestEdges(ctx context.Context, p datastructure.Coordinate, radius float64,
	k int) ([]NearestEdge, error) {
	if k <= 0 {
		return nil, server.NewErrorf(server.ErrBadParamInput, "k must be positive")
	}
	if radius <= 0 {
		radius = uc.radius
	}

	var edgeIDs []int32
	if uc.cellIndex != nil {
		ids, err := uc.cellIndex.GetNearestEdgeIDs(p.Lat, p.Lon, radius)
		if errors.Is(err, kv.ErrEdgesNotFound) {
			return nil, server.WrapErrorf(err, server.ErrNotFound, NotCoveredMessage)
		}
		if err != nil {
			return nil, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
		}
		edgeIDs = ids
	} else {
		candidates, err := uc.index.Candidates(p, radius, nil)
		if err != nil {
			return nil, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
		}
		for _, c := range candidates {
			edgeIDs = append(edgeIDs, c.EdgeID)
		}
	}

	nearest := make([]NearestEdge, 0, len(edgeIDs))
	for _, edgeID := range edgeIDs {
		pos, err := geo.ProjectOnLine(uc.graph.GetEdgeGeometry(edgeID), p)
		if err != nil {
			return nil, server.WrapErrorf(fmt.Errorf("edge %d: %w", edgeID, err), server.ErrInternalServerError,
				"internal server error")
		}
		if pos.Distance > radius {
			continue
		}
		nearest = append(nearest, NearestEdge{
			Edge:         uc.graph.GetEdge(edgeID),
			SnappedPoint: pos.Point,
			Distance:     pos.Distance,
		})
	}

	sort.SliceStable(nearest, func(i, j int) bool {
		return nearest[i].Distance < nearest[j].Distance
	})
	if len(nearest) > k {
		nearest = nearest[:k]
	}
	return nearest, nil
}
