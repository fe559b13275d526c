package isochrone

import (
	"fmt"

	"github.com/lintang-b-s/isomatch/pkg/engine/querygraph"
	"github.com/lintang-b-s/isomatch/pkg/engine/spt"
)

// directionFilter drops the branches of the search tree that leave a bidirectional start edge on
// the wrong side. A branch is decided by its first hop; every descendant shares the decision.
// The search already skips those hops at the origin, so this only rechecks the finished tree.
type directionFilter struct {
	tree          *spt.Tree
	qg            *querygraph.QueryGraph
	startEdgeID   int32
	bidirectional bool
	wantAlong     bool
	memo          map[int32]bool
}

func newDirectionFilter(tree *spt.Tree, qg *querygraph.QueryGraph, startEdgeID int32, wantAlong bool) *directionFilter {
	edge := qg.GetEdge(startEdgeID)
	return &directionFilter{
		tree:          tree,
		qg:            qg,
		startEdgeID:   startEdgeID,
		bidirectional: edge.Forward && edge.Backward,
		wantAlong:     wantAlong,
		memo:          make(map[int32]bool),
	}
}

func (f *directionFilter) accept(label spt.Label) (bool, error) {
	if label.IsRoot() {
		return true, nil
	}
	if accepted, ok := f.memo[label.ID]; ok {
		return accepted, nil
	}

	parent, err := f.tree.GetParent(label)
	if err != nil {
		return false, fmt.Errorf("label %d: %v: %w", label.ID, err, ErrInvariantViolation)
	}

	var accepted bool
	if parent.IsRoot() {
		accepted = f.acceptFirstHop(label)
	} else {
		accepted, err = f.accept(parent)
		if err != nil {
			return false, err
		}
	}
	f.memo[label.ID] = accepted
	return accepted, nil
}

// acceptFirstHop decides a branch at the origin. Only hops over the matched edge itself carry a
// direction, one way start edges are already restricted by the search.
func (f *directionFilter) acceptFirstHop(label spt.Label) bool {
	if !f.bidirectional {
		return true
	}
	originalEdgeID, _, _ := f.qg.GetOriginalEdge(label.EdgeID)
	if originalEdgeID != f.startEdgeID {
		return true
	}
	return label.AlongGeometry == f.wantAlong
}
