package graphbuilder

import (
	"errors"
	"fmt"
	"log"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/lintang-b-s/isomatch/pkg/geo"
)

var (
	ErrInvalidGeometry  = errors.New("link geometry must have at least 2 coordinates")
	ErrEndpointMismatch = errors.New("link geometry does not start/end at its endpoint nodes")
)

const (
	defaultBoundEpsilon      = 0.000001 // degrees
	defaultEndpointTolerance = 1.0      // meters
	logEveryLinks            = 50000
)

type GraphBuilder struct {
	graph             *datastructure.Graph
	expandBound       bool
	boundEpsilon      float64
	endpointTolerance float64
	linkCount         int
}

type Option func(*GraphBuilder)

// WithBoundingBox toggles the bounding box pass run at the end of Build.
func WithBoundingBox(enabled bool) Option {
	return func(b *GraphBuilder) {
		b.expandBound = enabled
	}
}

func WithBoundEpsilon(eps float64) Option {
	return func(b *GraphBuilder) {
		b.boundEpsilon = eps
	}
}

// WithEndpointTolerance sets how far (meters) a link endpoint may lie from an already known node
// with the same external id. A negative value disables the check.
func WithEndpointTolerance(meters float64) Option {
	return func(b *GraphBuilder) {
		b.endpointTolerance = meters
	}
}

func NewGraphBuilder(opts ...Option) *GraphBuilder {
	b := &GraphBuilder{
		graph:             datastructure.NewGraph(),
		expandBound:       true,
		boundEpsilon:      defaultBoundEpsilon,
		endpointTolerance: defaultEndpointTolerance,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build consumes every link of scanner and returns the graph. The first invalid link aborts the build.
func Build(scanner LinkScanner, opts ...Option) (*datastructure.Graph, error) {
	return NewGraphBuilder(opts...).Build(scanner)
}

func (b *GraphBuilder) Build(scanner LinkScanner) (*datastructure.Graph, error) {
	for scanner.Scan() {
		link := scanner.Link()
		if _, err := b.AddLink(link); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading links: %w", err)
	}

	if b.expandBound {
		b.ExpandBoundingBox()
	}
	log.Printf("graph built: %d nodes, %d edges", b.graph.NumberOfNodes(), b.graph.NumberOfEdges())
	return b.graph, nil
}

// AddLink appends one directed edge for link, creating its endpoint nodes on first sight.
func (b *GraphBuilder) AddLink(link datastructure.Link) (int32, error) {
	if len(link.Geometry) < 2 {
		return -1, fmt.Errorf("link %d has %d coordinates: %w", link.ID, len(link.Geometry), ErrInvalidGeometry)
	}
	first := link.Geometry[0]
	last := link.Geometry[len(link.Geometry)-1]

	fromNodeID, err := b.resolveEndpoint(link.ID, link.FromNodeID, first)
	if err != nil {
		return -1, err
	}
	toNodeID, err := b.resolveEndpoint(link.ID, link.ToNodeID, last)
	if err != nil {
		return -1, err
	}

	dist := link.Distance
	if dist == 0 {
		dist = geo.LineLength(link.Geometry)
	}

	pointsInBetween := make([]datastructure.Coordinate, len(link.Geometry)-2)
	copy(pointsInBetween, link.Geometry[1:len(link.Geometry)-1])

	edgeID := b.graph.AddEdge(datastructure.Edge{
		FromNodeID:    fromNodeID,
		ToNodeID:      toNodeID,
		LinkID:        link.ID,
		Dist:          dist,
		Forward:       link.ForwardSpeed > 0,
		Backward:      link.ReverseSpeed > 0,
		ForwardSpeed:  link.ForwardSpeed,
		BackwardSpeed: link.ReverseSpeed,
	}, pointsInBetween, link.Properties)

	b.linkCount++
	if b.linkCount%logEveryLinks == 0 {
		log.Printf("processing links: %d...", b.linkCount)
	}
	return edgeID, nil
}

func (b *GraphBuilder) resolveEndpoint(linkID, externalNodeID int64, coord datastructure.Coordinate) (int32, error) {
	nodeID, created := b.graph.ResolveNode(externalNodeID, coord)
	if created || b.endpointTolerance < 0 {
		return nodeID, nil
	}
	node := b.graph.GetNode(nodeID)
	if geo.HaversineDistanceMeters(node.Lat, node.Lon, coord.Lat, coord.Lon) > b.endpointTolerance {
		return -1, fmt.Errorf("link %d endpoint %d at (%f, %f), node at (%f, %f): %w", linkID, externalNodeID,
			coord.Lat, coord.Lon, node.Lat, node.Lon, ErrEndpointMismatch)
	}
	return nodeID, nil
}

// ExpandBoundingBox grows the graph bounding box over every node and interior edge vertex, padding
// each by the configured epsilon.
func (b *GraphBuilder) ExpandBoundingBox() {
	for _, node := range b.graph.GetNodes() {
		b.graph.ExtendBound(datastructure.NewCoordinate(node.Lat, node.Lon).Point(), b.boundEpsilon)
	}
	for _, points := range b.graph.GetAllPointsInBetween() {
		for _, p := range points {
			b.graph.ExtendBound(p.Point(), b.boundEpsilon)
		}
	}
}

func (b *GraphBuilder) Graph() *datastructure.Graph {
	return b.graph
}
