package kv

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/dgraph-io/badger/v4"
	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/lintang-b-s/isomatch/pkg/geo"
	"github.com/uber/h3-go/v4"
)

var (
	ErrEdgesNotFound = errors.New("edges not found")
	ErrGraphNotFound = errors.New("graph not found in key-value db")
)

const (
	h3Resolution  = 9
	h3KeyPrefix   = "h3:"
	maxRingLevel  = 10
	batchSize     = 1000
	densifyMeters = 100.0
)

type KVDB struct {
	db *badger.DB
}

func NewKVDB(db *badger.DB) *KVDB {
	return &KVDB{db}
}

// Open opens the badger database at path. An empty path opens an in-memory database.
func Open(path string) (*KVDB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger db %q: %w", path, err)
	}
	return NewKVDB(db), nil
}

func (k *KVDB) Close() error {
	return k.db.Close()
}

func h3Key(cell h3.Cell) []byte {
	return []byte(h3KeyPrefix + cell.String())
}

// BuildH3IndexedEdges stores, for every H3 cell touched by an edge geometry, the ids of those edges.
// Long segments are densified so that every cell they cross gets a vertex.
func (k *KVDB) BuildH3IndexedEdges(ctx context.Context, graph *datastructure.Graph) error {
	log.Printf("creating & saving h3 indexed edges to key-value db...")

	index := make(map[h3.Cell][]int32)
	for edgeID := 0; edgeID < graph.NumberOfEdges(); edgeID++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		seen := make(map[h3.Cell]struct{})
		for _, p := range densify(graph.GetEdgeGeometry(int32(edgeID))) {
			cell := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lon), h3Resolution)
			if _, ok := seen[cell]; ok {
				continue
			}
			seen[cell] = struct{}{}
			index[cell] = append(index[cell], int32(edgeID))
		}
	}

	batches := make([]batchData, 0, batchSize)
	for cell, edgeIDs := range index {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		value, err := encodeEdgeIDs(edgeIDs)
		if err != nil {
			return err
		}
		batches = append(batches, batchData{key: h3Key(cell), value: value})
		if len(batches) == batchSize {
			if err := k.saveBatch(ctx, batches); err != nil {
				return err
			}
			batches = make([]batchData, 0, batchSize)
		}
	}
	if len(batches) > 0 {
		if err := k.saveBatch(ctx, batches); err != nil {
			return err
		}
	}

	log.Printf("creating & saving h3 indexed edges to key-value db done, %d cells", len(index))
	return nil
}

// densify returns the vertices of line plus interpolated points so that no gap exceeds densifyMeters.
func densify(line []datastructure.Coordinate) []datastructure.Coordinate {
	if len(line) < 2 {
		return line
	}
	points := make([]datastructure.Coordinate, 0, len(line))
	for i := 0; i < len(line)-1; i++ {
		a, b := line[i], line[i+1]
		points = append(points, a)
		length := geo.HaversineDistanceMeters(a.Lat, a.Lon, b.Lat, b.Lon)
		steps := int(math.Ceil(length / densifyMeters))
		for s := 1; s < steps; s++ {
			t := float64(s) / float64(steps)
			points = append(points, datastructure.NewCoordinate(a.Lat+(b.Lat-a.Lat)*t, a.Lon+(b.Lon-a.Lon)*t))
		}
	}
	return append(points, line[len(line)-1])
}

type batchData struct {
	key   []byte
	value []byte
}

func (k *KVDB) saveBatch(ctx context.Context, batchData []batchData) error {
	batch := k.db.NewWriteBatch()
	defer batch.Cancel()

	for _, data := range batchData {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if err := batch.Set(data.key, data.value); err != nil {
			return err
		}
	}

	if err := batch.Flush(); err != nil {
		log.Printf("error saving batch: %v", err)
		return err
	}
	return nil
}

func (k *KVDB) get(key []byte) ([]byte, error) {
	var val []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		val, err = item.ValueCopy(nil)
		return err
	})
	return val, err
}

func (k *KVDB) getCellEdges(cell h3.Cell) ([]int32, error) {
	val, err := k.get(h3Key(cell))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return []int32{}, nil
	}
	if err != nil {
		return nil, err
	}
	return loadEdgeIDs(val)
}

// GetNearestEdgeIDs returns the ids of the edges indexed in the cells covering a disk of
// radiusMeters around (lat, lon). When that disk is empty the ring grows until an edge is found or
// maxRingLevel is reached.
func (k *KVDB) GetNearestEdgeIDs(lat, lon, radiusMeters float64) ([]int32, error) {
	origin := h3.LatLngToCell(h3.NewLatLng(lat, lon), h3Resolution)

	seen := make(map[int32]struct{})
	edgeIDs := make([]int32, 0)
	collect := func(cells []h3.Cell) error {
		for _, cell := range cells {
			cellEdges, err := k.getCellEdges(cell)
			if err != nil {
				return err
			}
			for _, edgeID := range cellEdges {
				if _, ok := seen[edgeID]; ok {
					continue
				}
				seen[edgeID] = struct{}{}
				edgeIDs = append(edgeIDs, edgeID)
			}
		}
		return nil
	}

	cells := kRingIndexesArea(lat, lon, radiusMeters/1000)
	if err := collect(cells); err != nil {
		return nil, err
	}

	for lev := ringRadius(cells) + 1; lev <= maxRingLevel && len(edgeIDs) == 0; lev++ {
		if err := collect(h3.GridDisk(origin, lev)); err != nil {
			return nil, err
		}
	}

	if len(edgeIDs) == 0 {
		return nil, ErrEdgesNotFound
	}
	return edgeIDs, nil
}

// ringRadius inverts the hexagonal disk size 3k(k+1)+1.
func ringRadius(cells []h3.Cell) int {
	radius := 0
	for 3*radius*(radius+1)+1 < len(cells) {
		radius++
	}
	return radius
}

func kRingIndexesArea(lat, lon, searchRadiusKm float64) []h3.Cell {
	home := h3.NewLatLng(lat, lon)
	origin := h3.LatLngToCell(home, h3Resolution)
	originArea := h3.CellAreaKm2(origin)
	searchArea := math.Pi * searchRadiusKm * searchRadiusKm

	radius := 0
	diskArea := originArea

	for diskArea < searchArea {
		radius++
		cellCount := float64(3*radius*(radius+1) + 1)
		diskArea = cellCount * originArea
	}

	return h3.GridDisk(origin, radius)
}
