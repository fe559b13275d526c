package datastructure

import (
	"github.com/twpayne/go-polyline"
)

// CreatePolyline encodes path as a google polyline (precision 5).
func CreatePolyline(path []Coordinate) string {
	coords := make([][]float64, 0, len(path))
	for _, c := range path {
		coords = append(coords, []float64{c.Lat, c.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline is the inverse of CreatePolyline.
func DecodePolyline(encoded string) ([]Coordinate, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	path := make([]Coordinate, 0, len(coords))
	for _, c := range coords {
		path = append(path, NewCoordinate(c[0], c[1]))
	}
	return path, nil
}
