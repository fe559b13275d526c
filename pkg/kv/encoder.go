package kv

import (
	"github.com/kelindar/binary"
	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/lintang-b-s/isomatch/pkg/util"
)

const (
	forwardFlagBit  = 1
	backwardFlagBit = 2
)

type graphMeta struct {
	NumNodes      int
	NumEdges      int
	NumNodeChunks int
	NumEdgeChunks int
	Bound         []float64 // minLon, minLat, maxLon, maxLat
	HasBound      bool
}

type storedNode struct {
	Lat        float64
	Lon        float64
	ExternalID int64
}

type storedEdge struct {
	FromNodeID      int32
	ToNodeID        int32
	LinkID          int64
	Dist            float64
	Flags           int32
	ForwardSpeed    float64
	BackwardSpeed   float64
	PointsInBetween []datastructure.Coordinate
	Payload         []byte
}

func newStoredEdge(edge datastructure.Edge, pointsInBetween []datastructure.Coordinate, payload []byte) storedEdge {
	flags := util.BitPackIntBool(0, edge.Forward, forwardFlagBit)
	flags = util.BitPackIntBool(flags, edge.Backward, backwardFlagBit)
	return storedEdge{
		FromNodeID:      edge.FromNodeID,
		ToNodeID:        edge.ToNodeID,
		LinkID:          edge.LinkID,
		Dist:            edge.Dist,
		Flags:           flags,
		ForwardSpeed:    edge.ForwardSpeed,
		BackwardSpeed:   edge.BackwardSpeed,
		PointsInBetween: pointsInBetween,
		Payload:         payload,
	}
}

func (s storedEdge) toEdge(edgeID int32) datastructure.Edge {
	_, forward := util.BitUnpackIntBool(s.Flags, forwardFlagBit)
	_, backward := util.BitUnpackIntBool(s.Flags, backwardFlagBit)
	return datastructure.Edge{
		EdgeID:        edgeID,
		FromNodeID:    s.FromNodeID,
		ToNodeID:      s.ToNodeID,
		LinkID:        s.LinkID,
		Dist:          s.Dist,
		Forward:       forward,
		Backward:      backward,
		ForwardSpeed:  s.ForwardSpeed,
		BackwardSpeed: s.BackwardSpeed,
	}
}

func encode[T any](v T) ([]byte, error) {
	return binary.Marshal(v)
}

func decode[T any](bb []byte) (T, error) {
	var v T
	err := binary.Unmarshal(bb, &v)
	return v, err
}

func encodeEdgeIDs(edgeIDs []int32) ([]byte, error) {
	return encode(edgeIDs)
}

func loadEdgeIDs(bb []byte) ([]int32, error) {
	if len(bb) == 0 {
		return []int32{}, nil
	}
	return decode[[]int32](bb)
}
