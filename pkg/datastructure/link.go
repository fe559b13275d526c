package datastructure

// Link is a directed road segment as delivered by a link source.
// Geometry runs from the FromNodeID endpoint to the ToNodeID endpoint.
type Link struct {
	ID           int64
	FromNodeID   int64
	ToNodeID     int64
	Geometry     []Coordinate
	ForwardSpeed float64 // km/h, 0 = not passable from -> to
	ReverseSpeed float64 // km/h, 0 = not passable to -> from
	Distance     float64 // meters
	Properties   []byte
}

func NewLink(id, fromNodeID, toNodeID int64, geometry []Coordinate, forwardSpeed, reverseSpeed,
	distance float64) Link {
	return Link{
		ID:           id,
		FromNodeID:   fromNodeID,
		ToNodeID:     toNodeID,
		Geometry:     geometry,
		ForwardSpeed: forwardSpeed,
		ReverseSpeed: reverseSpeed,
		Distance:     distance,
	}
}

type TravelDirection uint8

const (
	TravelForward TravelDirection = iota + 1
	TravelBackward
	TravelBoth
)

func (d TravelDirection) String() string {
	switch d {
	case TravelForward:
		return "forward"
	case TravelBackward:
		return "backward"
	case TravelBoth:
		return "both"
	}
	return "none"
}

func (d TravelDirection) HasForward() bool {
	return d == TravelForward || d == TravelBoth
}

func (d TravelDirection) HasBackward() bool {
	return d == TravelBackward || d == TravelBoth
}
