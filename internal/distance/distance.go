// Package distance answers hop-count queries over the face adjacency graph.
package distance

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/Faultbox/geosphere/internal/adjacency"
)

// Unreachable is returned when no path joins two faces, or either id is
// not part of the graph. Callers treat it as maximally far.
const Unreachable = -1

// Distance returns the number of adjacency hops from one face to another:
// 0 for the same face, 1 for a direct neighbor.
func Distance(from, to int, idx *adjacency.Index) int {
	if idx == nil || !idx.Has(from) || !idx.Has(to) {
		return Unreachable
	}
	if from == to {
		return 0
	}

	hops := Unreachable
	var bf traverse.BreadthFirst
	bf.Walk(faceGraph{idx}, simple.Node(from), func(n graph.Node, d int) bool {
		if n.ID() == int64(to) {
			hops = d
			return true
		}
		return false
	})
	return hops
}

// From runs one breadth-first search and returns the distance from the
// source to every face, indexed by face id. Slot 0 and faces that cannot be
// reached hold Unreachable. Returns nil for an unknown source.
func From(from int, idx *adjacency.Index) []int {
	if idx == nil || !idx.Has(from) {
		return nil
	}

	depth := make([]int, idx.Len()+1)
	for i := range depth {
		depth[i] = Unreachable
	}

	var bf traverse.BreadthFirst
	bf.Walk(faceGraph{idx}, simple.Node(from), func(n graph.Node, d int) bool {
		depth[n.ID()] = d
		return false
	})
	return depth
}

// faceGraph presents an adjacency index as a gonum graph. Node ids are face
// ids, neighbors are yielded in ascending order.
type faceGraph struct {
	idx *adjacency.Index
}

func (g faceGraph) From(id int64) graph.Nodes {
	ids := g.idx.Neighbors(int(id))
	if len(ids) == 0 {
		return graph.Empty
	}
	nodes := make([]graph.Node, len(ids))
	for i, n := range ids {
		nodes[i] = simple.Node(n)
	}
	return iterator.NewOrderedNodes(nodes)
}

func (g faceGraph) Edge(uid, vid int64) graph.Edge {
	if !g.idx.Adjacent(int(uid), int(vid)) {
		return nil
	}
	return simple.Edge{F: simple.Node(uid), T: simple.Node(vid)}
}
