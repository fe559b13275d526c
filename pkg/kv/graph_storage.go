package kv

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"

	"github.com/dgraph-io/badger/v4"
	"github.com/lintang-b-s/isomatch/pkg/concurrent"
	"github.com/lintang-b-s/isomatch/pkg/datastructure"
	"github.com/paulmach/orb"
)

const (
	graphMetaKey    = "graph:meta"
	graphNodePrefix = "graph:nodes:"
	graphEdgePrefix = "graph:edges:"
	chunkSize       = 10000
)

func chunkKey(prefix string, chunk int) []byte {
	return []byte(fmt.Sprintf("%s%d", prefix, chunk))
}

func numChunks(n int) int {
	return (n + chunkSize - 1) / chunkSize
}

// SaveGraph persists the graph tables and the node id map. Chunks are kelindar/binary encoded and
// zstd compressed by a worker pool.
func (k *KVDB) SaveGraph(ctx context.Context, graph *datastructure.Graph) error {
	log.Printf("saving graph to key-value db: %d nodes, %d edges...", graph.NumberOfNodes(), graph.NumberOfEdges())

	nodes := graph.GetNodes()
	edges := graph.GetEdges()
	nodeIDMap := graph.GetNodeIDMap()

	meta := graphMeta{
		NumNodes:      len(nodes),
		NumEdges:      len(edges),
		NumNodeChunks: numChunks(len(nodes)),
		NumEdgeChunks: numChunks(len(edges)),
	}
	if bound, ok := graph.GetBound(); ok {
		meta.Bound = []float64{bound.Min.Lon(), bound.Min.Lat(), bound.Max.Lon(), bound.Max.Lat()}
		meta.HasBound = true
	}

	jobs := make([]concurrent.CompressJobItem, 0, meta.NumNodeChunks+meta.NumEdgeChunks+1)
	for chunk := 0; chunk < meta.NumNodeChunks; chunk++ {
		start, end := chunk*chunkSize, min((chunk+1)*chunkSize, len(nodes))
		stored := make([]storedNode, 0, end-start)
		for i := start; i < end; i++ {
			stored = append(stored, storedNode{
				Lat:        nodes[i].Lat,
				Lon:        nodes[i].Lon,
				ExternalID: nodeIDMap.GetExternalID(int32(i)),
			})
		}
		value, err := encode(stored)
		if err != nil {
			return fmt.Errorf("encoding node chunk %d: %w", chunk, err)
		}
		jobs = append(jobs, concurrent.NewCompressJobItem(chunkKey(graphNodePrefix, chunk), value))
	}

	for chunk := 0; chunk < meta.NumEdgeChunks; chunk++ {
		start, end := chunk*chunkSize, min((chunk+1)*chunkSize, len(edges))
		stored := make([]storedEdge, 0, end-start)
		for i := start; i < end; i++ {
			stored = append(stored, newStoredEdge(edges[i], graph.GetEdgePointsInBetween(int32(i)),
				graph.GetEdgePayload(int32(i))))
		}
		value, err := encode(stored)
		if err != nil {
			return fmt.Errorf("encoding edge chunk %d: %w", chunk, err)
		}
		jobs = append(jobs, concurrent.NewCompressJobItem(chunkKey(graphEdgePrefix, chunk), value))
	}

	metaValue, err := encode(meta)
	if err != nil {
		return fmt.Errorf("encoding graph meta: %w", err)
	}
	jobs = append(jobs, concurrent.NewCompressJobItem([]byte(graphMetaKey), metaValue))

	workers := concurrent.NewWorkerPool[concurrent.CompressJobItem, compressResult](runtime.NumCPU(), len(jobs))
	for _, job := range jobs {
		workers.AddJob(job)
	}
	workers.Close()
	workers.Start(compressJob)
	workers.Wait()

	batches := make([]batchData, 0, len(jobs))
	for res := range workers.CollectResults() {
		if res.err != nil {
			return fmt.Errorf("compressing %s: %w", res.key, res.err)
		}
		batches = append(batches, batchData{key: res.key, value: res.value})
	}
	if err := k.saveBatch(ctx, batches); err != nil {
		return err
	}

	log.Printf("saving graph to key-value db done")
	return nil
}

func getDecoded[T any](k *KVDB, key []byte) (T, error) {
	var zero T
	val, err := k.get(key)
	if err != nil {
		return zero, err
	}
	bb, err := decompress(val)
	if err != nil {
		return zero, fmt.Errorf("decompressing %s: %w", key, err)
	}
	return decode[T](bb)
}

// LoadGraph reads back a graph stored by SaveGraph and rebuilds its adjacency lists.
func (k *KVDB) LoadGraph(ctx context.Context) (*datastructure.Graph, error) {
	meta, err := getDecoded[graphMeta](k, []byte(graphMetaKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrGraphNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading graph meta: %w", err)
	}

	nodes := make([]datastructure.Node, 0, meta.NumNodes)
	externalIDs := make([]int64, 0, meta.NumNodes)
	for chunk := 0; chunk < meta.NumNodeChunks; chunk++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled: %w", err)
		}
		stored, err := getDecoded[[]storedNode](k, chunkKey(graphNodePrefix, chunk))
		if err != nil {
			return nil, fmt.Errorf("loading node chunk %d: %w", chunk, err)
		}
		for _, n := range stored {
			nodes = append(nodes, datastructure.NewNode(int32(len(nodes)), n.Lat, n.Lon))
			externalIDs = append(externalIDs, n.ExternalID)
		}
	}

	edges := make([]datastructure.Edge, 0, meta.NumEdges)
	pointsInBetween := make([][]datastructure.Coordinate, 0, meta.NumEdges)
	payloads := make([][]byte, 0, meta.NumEdges)
	for chunk := 0; chunk < meta.NumEdgeChunks; chunk++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled: %w", err)
		}
		stored, err := getDecoded[[]storedEdge](k, chunkKey(graphEdgePrefix, chunk))
		if err != nil {
			return nil, fmt.Errorf("loading edge chunk %d: %w", chunk, err)
		}
		for _, e := range stored {
			edges = append(edges, e.toEdge(int32(len(edges))))
			pointsInBetween = append(pointsInBetween, e.PointsInBetween)
			payloads = append(payloads, e.Payload)
		}
	}

	var bound orb.Bound
	if meta.HasBound && len(meta.Bound) == 4 {
		bound = orb.Bound{
			Min: orb.Point{meta.Bound[0], meta.Bound[1]},
			Max: orb.Point{meta.Bound[2], meta.Bound[3]},
		}
	}

	log.Printf("loaded graph from key-value db: %d nodes, %d edges", len(nodes), len(edges))
	return datastructure.NewGraphFromStorage(nodes, edges, pointsInBetween, payloads, externalIDs, bound), nil
}
