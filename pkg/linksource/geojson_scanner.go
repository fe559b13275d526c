package linksource

import (
	"io"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

const (
	propID           = "id"
	propFromNode     = "from_node"
	propToNode       = "to_node"
	propForwardSpeed = "forward_speed"
	propReverseSpeed = "reverse_speed"
	propDistance     = "distance"
)

// GeoJSONScanner reads links from a FeatureCollection of LineString features. Coordinates are
// [lon, lat]. Required properties: id, from_node, to_node, forward_speed, reverse_speed. distance
// (meters) is optional.
type GeoJSONScanner struct {
	features []*geojson.Feature
	pos      int
	current  datastructure.Link
	err      error
}

func NewGeoJSONScanner(r io.Reader) (*GeoJSONScanner, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "can't read geojson")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "can't unmarshal feature collection")
	}
	return &GeoJSONScanner{features: fc.Features}, nil
}

func (s *GeoJSONScanner) Scan() bool {
	if s.err != nil || s.pos >= len(s.features) {
		return false
	}
	link, err := decodeFeature(s.features[s.pos])
	if err != nil {
		s.err = errors.Wrapf(err, "feature %d", s.pos)
		return false
	}
	s.current = link
	s.pos++
	return true
}

func (s *GeoJSONScanner) Link() datastructure.Link {
	return s.current
}

func (s *GeoJSONScanner) Err() error {
	return s.err
}

func decodeFeature(f *geojson.Feature) (datastructure.Link, error) {
	if f.Geometry == nil || f.Geometry.Type != geojson.GeometryLineString {
		return datastructure.Link{}, errors.New("geometry is not a LineString")
	}

	values := make(map[string]float64, 5)
	for _, key := range []string{propID, propFromNode, propToNode, propForwardSpeed, propReverseSpeed} {
		v, err := f.PropertyFloat64(key)
		if err != nil {
			return datastructure.Link{}, errors.Wrapf(err, "property %s", key)
		}
		values[key] = v
	}
	distance := f.PropertyMustFloat64(propDistance, 0)

	geometry := make([]datastructure.Coordinate, 0, len(f.Geometry.LineString))
	for _, c := range f.Geometry.LineString {
		if len(c) < 2 {
			return datastructure.Link{}, errors.New("coordinate needs lon and lat")
		}
		geometry = append(geometry, datastructure.NewCoordinate(c[1], c[0]))
	}

	return datastructure.NewLink(int64(values[propID]), int64(values[propFromNode]), int64(values[propToNode]),
		geometry, values[propForwardSpeed], values[propReverseSpeed], distance), nil
}
