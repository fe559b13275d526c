package concurrent

import (
	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/lintang-b-s/isomatch/pkg/geo"
)

// CompressJobItem is one encoded value waiting to be compressed and stored under Key.
type CompressJobItem struct {
	Key   []byte
	Value []byte
}

func NewCompressJobItem(key, value []byte) CompressJobItem {
	return CompressJobItem{
		Key:   key,
		Value: value,
	}
}

// MatchPointJobItem is one point of a batch match request. Index is its position in the request.
type MatchPointJobItem struct {
	Index         int
	Point         datastructure.Coordinate
	Radius        float64
	BearingFilter *geo.BearingFilter
}

func NewMatchPointJobItem(index int, point datastructure.Coordinate, radius float64,
	bearingFilter *geo.BearingFilter) MatchPointJobItem {
	return MatchPointJobItem{
		Index:         index,
		Point:         point,
		Radius:        radius,
		BearingFilter: bearingFilter,
	}
}

type JobI interface {
	CompressJobItem | MatchPointJobItem
}

type Job[T JobI] struct {
	ID      int
	JobItem T
}
type JobFunc[T JobI, G any] func(job T) G
