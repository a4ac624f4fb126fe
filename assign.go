package blasflow

import "fmt"

// StreamAssignment maps every node of a task graph to a stream index in
// [0, poolSize) together with the topological order the capture driver
// will issue nodes in. Assignment is deterministic for a given graph:
// rebuilding an unchanged graph reproduces the identical mapping.
type StreamAssignment struct {
	streams map[int]int
	order   []*OperationNode
}

// StreamOf returns the stream index assigned to the node id.
func (sa *StreamAssignment) StreamOf(id int) int {
	return sa.streams[id]
}

// Order returns the dependency-respecting issuance order.
func (sa *StreamAssignment) Order() []*OperationNode {
	return sa.order
}

// assign computes a stream-per-node mapping by Kahn traversal.
//
// Placement policy (deterministic, documented here rather than left to
// chance): a node extends its first predecessor's stream when that
// predecessor is the most recent node placed there, which keeps a
// dependency chain on one stream with no barrier. Otherwise the node
// takes the least-recently-used stream so independent work spreads
// across the pool, with ties broken by stream index. The ready queue is
// drained in node insertion order.
//
// A cycle is detected before any capture begins and fails the build
// with a GraphCycle error, leaving the graph unmodified.
func assign(g *TaskGraph, poolSize int) (*StreamAssignment, error) {
	nodes := g.Nodes()
	sa := &StreamAssignment{
		streams: make(map[int]int, len(nodes)),
		order:   make([]*OperationNode, 0, len(nodes)),
	}

	inDegree := make(map[int]int, len(nodes))
	for _, n := range nodes {
		inDegree[n.id] = len(n.preds)
	}

	// Ready list kept in insertion-id order for stable tie-breaks.
	var ready []*OperationNode
	for _, n := range nodes {
		if inDegree[n.id] == 0 {
			ready = append(ready, n)
		}
	}

	lastOnStream := make([]int, poolSize) // id of newest node per stream
	lastUse := make([]int, poolSize)      // step of newest node per stream
	for s := range lastOnStream {
		lastOnStream[s] = -1
		lastUse[s] = s - poolSize // round-robin before any use
	}

	step := 0
	for len(ready) > 0 {
		// Smallest insertion id first.
		pick := 0
		for i := 1; i < len(ready); i++ {
			if ready[i].id < ready[pick].id {
				pick = i
			}
		}
		n := ready[pick]
		ready = append(ready[:pick], ready[pick+1:]...)

		stream := -1
		for _, p := range n.preds {
			s := sa.streams[p.id]
			if lastOnStream[s] == p.id {
				stream = s
				break
			}
		}
		if stream < 0 {
			stream = 0
			for s := 1; s < poolSize; s++ {
				if lastUse[s] < lastUse[stream] {
					stream = s
				}
			}
		}

		sa.streams[n.id] = stream
		sa.order = append(sa.order, n)
		lastOnStream[stream] = n.id
		lastUse[stream] = step
		step++

		for _, succ := range n.succs {
			inDegree[succ.id]--
			if inDegree[succ.id] == 0 {
				ready = append(ready, succ)
			}
		}
	}

	if len(sa.order) != len(nodes) {
		return nil, NewGraphCycleError("assign",
			fmt.Sprintf("dependency cycle: %d of %d nodes unreachable by topological traversal",
				len(nodes)-len(sa.order), len(nodes)))
	}
	return sa, nil
}
