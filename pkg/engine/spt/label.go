package spt

const (
	NoEdge   int32 = -1
	NoParent int32 = -1
)

type ExploreType int

const (
	ExploreWeight ExploreType = iota
	ExploreTime
	ExploreDistance
)

func (e ExploreType) String() string {
	switch e {
	case ExploreTime:
		return "time"
	case ExploreDistance:
		return "distance"
	}
	return "weight"
}

// Label is one entry of the search tree. Labels live in an arena owned by the search and point
// to their parent by id.
type Label struct {
	ID     int32
	NodeID int32
	EdgeID int32 // NoEdge for the root

	// AlongGeometry is true when EdgeID was explored from its from node towards its to node.
	AlongGeometry bool
	// Reversed is true when EdgeID is travelled against its stored geometry.
	Reversed bool

	Weight   float64
	Time     float64 // ms
	Distance float64 // meters
	ParentID int32   // NoParent for the root
}

func (l Label) IsRoot() bool {
	return l.ParentID == NoParent
}

func (l Label) exploreValue(exploreType ExploreType) float64 {
	switch exploreType {
	case ExploreTime:
		return l.Time
	case ExploreDistance:
		return l.Distance
	}
	return l.Weight
}
