package spt

import (
	"errors"
	"fmt"
	"math"

	"github.com/lintang-b-s/isomatch/pkg/datastructure"
)

var (
	ErrLabelNotFound = errors.New("label not found in search tree")
)

// ShortestPathTree is a one-to-many label setting search. Improved labels are appended to the arena
// and pushed again; stale queue entries are dropped when popped (lazy deletion).
// A ShortestPathTree is not safe for concurrent use, create one per query.
type ShortestPathTree struct {
	graph       Graph
	weighting   Weighting
	reverseFlow bool

	exploreType ExploreType
	limit       float64

	rootEdgeFilter func(edgeID int32, along bool) bool

	labels       []Label
	bestLabel    map[int32]int32
	finalized    map[int32]struct{}
	pq           *datastructure.MinHeap[int32]
	visitedNodes int
}

// NewShortestPathTree creates a search over graph. With reverseFlow the search follows edges
// backwards and answers "who can reach the origin" instead of "where can the origin go".
func NewShortestPathTree(graph Graph, weighting Weighting, reverseFlow bool) *ShortestPathTree {
	return &ShortestPathTree{
		graph:       graph,
		weighting:   weighting,
		reverseFlow: reverseFlow,
		exploreType: ExploreWeight,
		limit:       math.Inf(1),
	}
}

func (t *ShortestPathTree) SetTimeLimit(millis float64) {
	t.exploreType = ExploreTime
	t.limit = millis
}

func (t *ShortestPathTree) SetDistanceLimit(meters float64) {
	t.exploreType = ExploreDistance
	t.limit = meters
}

func (t *ShortestPathTree) SetWeightLimit(weight float64) {
	t.exploreType = ExploreWeight
	t.limit = weight
}

// SetRootEdgeFilter restricts the edges leaving the origin. filter is asked once per first hop
// with the edge and whether it is entered at its from node; false skips the hop.
func (t *ShortestPathTree) SetRootEdgeFilter(filter func(edgeID int32, along bool) bool) {
	t.rootEdgeFilter = filter
}

func (t *ShortestPathTree) GetLimit() float64 {
	return t.limit
}

func (t *ShortestPathTree) GetExploreType() ExploreType {
	return t.exploreType
}

func (t *ShortestPathTree) IsReverseFlow() bool {
	return t.reverseFlow
}

func (t *ShortestPathTree) GetVisitedNodes() int {
	return t.visitedNodes
}

// ExploreValue returns the cumulative value of label in the unit of the configured limit.
func (t *ShortestPathTree) ExploreValue(label Label) float64 {
	return label.exploreValue(t.exploreType)
}

func (t *ShortestPathTree) GetLabel(labelID int32) (Label, error) {
	if labelID < 0 || int(labelID) >= len(t.labels) {
		return Label{}, fmt.Errorf("label %d: %w", labelID, ErrLabelNotFound)
	}
	return t.labels[labelID], nil
}

func (t *ShortestPathTree) GetParent(label Label) (Label, error) {
	if label.IsRoot() {
		return Label{}, fmt.Errorf("root label %d has no parent: %w", label.ID, ErrLabelNotFound)
	}
	return t.GetLabel(label.ParentID)
}

// IsBoundary reports whether label crosses the limit: its own value exceeds it while its
// parent's does not.
func (t *ShortestPathTree) IsBoundary(label Label) bool {
	if label.IsRoot() {
		return false
	}
	parent := t.labels[label.ParentID]
	return t.ExploreValue(label) > t.limit && t.ExploreValue(parent) <= t.limit
}

func (t *ShortestPathTree) init() {
	t.labels = make([]Label, 0)
	t.bestLabel = make(map[int32]int32)
	t.finalized = make(map[int32]struct{})
	t.pq = datastructure.NewMinHeap[int32]()
	t.visitedNodes = 0
}

func (t *ShortestPathTree) newLabel(label Label) int32 {
	label.ID = int32(len(t.labels))
	t.labels = append(t.labels, label)
	t.bestLabel[label.NodeID] = label.ID
	t.pq.Insert(datastructure.PriorityQueueNode[int32]{Rank: label.Weight, Item: label.ID})
	return label.ID
}

// Search runs from the origin node and hands every finalized label to consumer, the root
// first. Labels beyond the limit are handed over but not expanded. The search stops when the
// queue is empty or consumer returns false.
func (t *ShortestPathTree) Search(from int32, consumer func(label Label) bool) {
	t.init()
	t.newLabel(Label{
		NodeID:   from,
		EdgeID:   NoEdge,
		ParentID: NoParent,
	})

	for t.pq.Size() > 0 {
		item, _ := t.pq.ExtractMin()
		current := t.labels[item.Item]

		if t.bestLabel[current.NodeID] != current.ID {
			// superseded by a cheaper label
			continue
		}
		if _, ok := t.finalized[current.NodeID]; ok {
			continue
		}
		t.finalized[current.NodeID] = struct{}{}
		t.visitedNodes++

		if !consumer(current) {
			return
		}
		if t.ExploreValue(current) > t.limit {
			continue
		}

		for _, edgeID := range t.graph.GetNodeFirstOutEdges(current.NodeID) {
			t.relax(current, edgeID, true)
		}
		for _, edgeID := range t.graph.GetNodeFirstInEdges(current.NodeID) {
			t.relax(current, edgeID, false)
		}
	}
}

// relax explores edgeID from the node of current. along is true when the edge is entered at its
// from node.
func (t *ShortestPathTree) relax(current Label, edgeID int32, along bool) {
	if edgeID == current.EdgeID {
		// don't go straight back over the edge we came from
		return
	}
	if current.IsRoot() && t.rootEdgeFilter != nil && !t.rootEdgeFilter(edgeID, along) {
		return
	}
	edge := t.graph.GetEdge(edgeID)
	reversed := along == t.reverseFlow
	if !edge.IsAccessible(reversed) {
		return
	}

	adjNode := edge.ToNodeID
	if !along {
		adjNode = edge.FromNodeID
	}
	if _, ok := t.finalized[adjNode]; ok {
		return
	}

	weight := t.weighting.CalcEdgeWeight(edge, reversed)
	if math.IsInf(weight, 1) {
		return
	}
	newWeight := current.Weight + weight

	if labelID, ok := t.bestLabel[adjNode]; ok && t.labels[labelID].Weight <= newWeight {
		return
	}

	t.newLabel(Label{
		NodeID:        adjNode,
		EdgeID:        edgeID,
		AlongGeometry: along,
		Reversed:      reversed,
		Weight:        newWeight,
		Time:          current.Time + t.weighting.CalcEdgeMillis(edge, reversed),
		Distance:      current.Distance + edge.Dist,
		ParentID:      current.ID,
	})
}

// Tree is the materialized result of a limited search.
type Tree struct {
	spt    *ShortestPathTree
	labels []Label
}

// SearchTree runs Search to completion and keeps every finalized label: the root, the labels
// within the limit and the labels crossing it.
func (t *ShortestPathTree) SearchTree(from int32) *Tree {
	tree := &Tree{spt: t, labels: make([]Label, 0)}
	t.Search(from, func(label Label) bool {
		tree.labels = append(tree.labels, label)
		return true
	})
	return tree
}

// Labels returns the finalized labels in settle order, root first.
func (tr *Tree) Labels() []Label {
	return tr.labels
}

// Boundary returns the labels crossing the limit.
func (tr *Tree) Boundary() []Label {
	boundary := make([]Label, 0)
	for _, label := range tr.labels {
		if tr.spt.IsBoundary(label) {
			boundary = append(boundary, label)
		}
	}
	return boundary
}

func (tr *Tree) GetParent(label Label) (Label, error) {
	return tr.spt.GetParent(label)
}

func (tr *Tree) ExploreValue(label Label) float64 {
	return tr.spt.ExploreValue(label)
}
