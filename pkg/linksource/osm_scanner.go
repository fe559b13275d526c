package linksource

import (
	"context"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/lintang-b-s/isomatch/pkg/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/pkg/errors"
)

const (
	defaultSpeed    = 30.0 // km/h
	linksPerWay     = 1000
	logEveryOsmWays = 50000
)

var roadTypeMaxSpeed = map[string]float64{
	"motorway":       100,
	"trunk":          80,
	"primary":        60,
	"secondary":      50,
	"tertiary":       40,
	"unclassified":   30,
	"residential":    30,
	"road":           30,
	"living_street":  10,
	"service":        20,
	"motorway_link":  60,
	"trunk_link":     50,
	"primary_link":   40,
	"secondary_link": 40,
	"tertiary_link":  30,
}

// OSMScanner turns the highway ways of an OSM PBF file into links split at junction nodes.
// The file is read twice: once to count node usage, once to emit links.
type OSMScanner struct {
	ctx context.Context
	r   io.ReadSeeker

	wayNodeCount map[osm.NodeID]int
	nodeCoords   map[osm.NodeID]datastructure.Coordinate

	scanner *osmpbf.Scanner
	pending []datastructure.Link
	current datastructure.Link
	ways    int
	err     error
}

func NewOSMScanner(ctx context.Context, r io.ReadSeeker) *OSMScanner {
	return &OSMScanner{
		ctx:          ctx,
		r:            r,
		wayNodeCount: make(map[osm.NodeID]int),
		nodeCoords:   make(map[osm.NodeID]datastructure.Coordinate),
	}
}

func (s *OSMScanner) countWayNodes() error {
	scanner := osmpbf.New(s.ctx, s.r, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	defer scanner.Close()

	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || !acceptOsmWay(way) {
			continue
		}
		for i, node := range way.Nodes {
			s.wayNodeCount[node.ID]++
			if i == 0 || i == len(way.Nodes)-1 {
				// way endpoints always split
				s.wayNodeCount[node.ID]++
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "can't count way nodes")
	}
	if _, err := s.r.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "can't rewind osm file")
	}
	return nil
}

func (s *OSMScanner) Scan() bool {
	if s.err != nil {
		return false
	}
	if s.scanner == nil {
		if err := s.countWayNodes(); err != nil {
			s.err = err
			return false
		}
		s.scanner = osmpbf.New(s.ctx, s.r, 1)
		s.scanner.SkipRelations = true
	}

	for len(s.pending) == 0 {
		if !s.scanner.Scan() {
			s.err = s.scanner.Err()
			s.scanner.Close()
			return false
		}
		switch o := s.scanner.Object().(type) {
		case *osm.Node:
			if _, ok := s.wayNodeCount[o.ID]; ok {
				s.nodeCoords[o.ID] = datastructure.NewCoordinate(o.Lat, o.Lon)
			}
		case *osm.Way:
			if !acceptOsmWay(o) {
				continue
			}
			s.ways++
			if s.ways%logEveryOsmWays == 0 {
				log.Printf("processing openstreetmap ways: %d...", s.ways)
			}
			s.pending = s.processWay(o)
		}
	}

	s.current = s.pending[0]
	s.pending = s.pending[1:]
	return true
}

func (s *OSMScanner) Link() datastructure.Link {
	return s.current
}

func (s *OSMScanner) Err() error {
	return s.err
}

// processWay splits way at every junction node into links. Ways referencing nodes outside the
// extract are dropped.
func (s *OSMScanner) processWay(way *osm.Way) []datastructure.Link {
	coords := make([]datastructure.Coordinate, len(way.Nodes))
	for i, node := range way.Nodes {
		c, ok := s.nodeCoords[node.ID]
		if !ok {
			return nil
		}
		coords[i] = c
	}

	speed := waySpeed(way)
	forwardSpeed, reverseSpeed := speed, speed
	switch wayDirection(way) {
	case datastructure.TravelForward:
		reverseSpeed = 0
	case datastructure.TravelBackward:
		forwardSpeed = 0
	}

	links := make([]datastructure.Link, 0)
	start := 0
	for i := 1; i < len(way.Nodes); i++ {
		if i != len(way.Nodes)-1 && s.wayNodeCount[way.Nodes[i].ID] < 2 {
			continue
		}
		geometry := make([]datastructure.Coordinate, i-start+1)
		copy(geometry, coords[start:i+1])
		links = append(links, datastructure.NewLink(
			int64(way.ID)*linksPerWay+int64(len(links)),
			int64(way.Nodes[start].ID),
			int64(way.Nodes[i].ID),
			geometry,
			forwardSpeed,
			reverseSpeed,
			geo.LineLength(geometry),
		))
		start = i
	}
	return links
}

func acceptOsmWay(way *osm.Way) bool {
	if len(way.Nodes) < 2 {
		return false
	}
	_, ok := roadTypeMaxSpeed[way.Tags.Find("highway")]
	return ok && way.Tags.Find("area") != "yes"
}

func wayDirection(way *osm.Way) datastructure.TravelDirection {
	switch way.Tags.Find("oneway") {
	case "yes", "true", "1":
		return datastructure.TravelForward
	case "-1", "reverse":
		return datastructure.TravelBackward
	case "no", "false", "0":
		return datastructure.TravelBoth
	}
	if way.Tags.Find("junction") == "roundabout" || way.Tags.Find("highway") == "motorway" {
		return datastructure.TravelForward
	}
	return datastructure.TravelBoth
}

// waySpeed returns maxspeed in km/h, falling back to the highway type default.
func waySpeed(way *osm.Way) float64 {
	if speed, ok := parseMaxSpeed(way.Tags.Find("maxspeed")); ok {
		return speed
	}
	if speed, ok := roadTypeMaxSpeed[way.Tags.Find("highway")]; ok {
		return speed
	}
	return defaultSpeed
}

func parseMaxSpeed(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	factor := 1.0
	switch {
	case strings.HasSuffix(value, "mph"):
		factor = 1.60934
		value = strings.TrimSuffix(value, "mph")
	case strings.HasSuffix(value, "knots"):
		factor = 1.852
		value = strings.TrimSuffix(value, "knots")
	case strings.HasSuffix(value, "km/h"):
		value = strings.TrimSuffix(value, "km/h")
	}
	speed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || speed <= 0 {
		return 0, false
	}
	return speed * factor, true
}
