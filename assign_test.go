package blasflow

import (
	"testing"
)

// buildChain adds n dependent scal nodes x = 2*x.
func buildChain(t *testing.T, cap *Capturer, n int) []*OperationNode {
	t.Helper()
	x := DeviceVector32(t, []float32{1})
	two := DeviceScalar32(t, 2)

	nodes := make([]*OperationNode, n)
	for i := range nodes {
		nodes[i] = NodeOrFail(t)(cap.Scal(Float32, 1, two, x, 1))
		if i > 0 {
			nodes[i-1].Precede(nodes[i])
		}
	}
	return nodes
}

// buildIndependent adds n scal nodes with no edges, each on its own data.
func buildIndependent(t *testing.T, cap *Capturer, n int) []*OperationNode {
	t.Helper()
	two := DeviceScalar32(t, 2)

	nodes := make([]*OperationNode, n)
	for i := range nodes {
		x := DeviceVector32(t, []float32{1})
		nodes[i] = NodeOrFail(t)(cap.Scal(Float32, 1, two, x, 1))
	}
	return nodes
}

func TestAssignChainStaysOnOneStream(t *testing.T) {
	cap := NewCapturer(NewHandle())
	defer cap.Close()

	nodes := buildChain(t, cap, 6)
	sa, err := assign(cap.Graph(), cap.pool.Size())
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	first := sa.StreamOf(nodes[0].ID())
	for _, n := range nodes {
		if sa.StreamOf(n.ID()) != first {
			t.Errorf("chain node %d left stream %d for %d", n.ID(), first, sa.StreamOf(n.ID()))
		}
	}
}

func TestAssignSpreadsIndependentNodes(t *testing.T) {
	cap := NewCapturer(NewHandle(), WithStreams(4))
	defer cap.Close()

	nodes := buildIndependent(t, cap, 4)
	sa, err := assign(cap.Graph(), cap.pool.Size())
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	seen := make(map[int]bool)
	for _, n := range nodes {
		s := sa.StreamOf(n.ID())
		if s < 0 || s >= 4 {
			t.Fatalf("stream index %d out of range", s)
		}
		if seen[s] {
			t.Errorf("independent node %d shares stream %d", n.ID(), s)
		}
		seen[s] = true
	}
}

func TestAssignRoundRobinBeyondPool(t *testing.T) {
	cap := NewCapturer(NewHandle(), WithStreams(2))
	defer cap.Close()

	nodes := buildIndependent(t, cap, 6)
	sa, err := assign(cap.Graph(), cap.pool.Size())
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	for i, n := range nodes {
		if got, want := sa.StreamOf(n.ID()), i%2; got != want {
			t.Errorf("node %d: stream %d, want round-robin %d", n.ID(), got, want)
		}
	}
}

func TestAssignDeterministic(t *testing.T) {
	cap := NewCapturer(NewHandle())
	defer cap.Close()

	// Diamond plus stragglers.
	nodes := buildIndependent(t, cap, 6)
	nodes[0].Precede(nodes[1], nodes[2])
	nodes[3].Succeed(nodes[1], nodes[2])

	sa1, err := assign(cap.Graph(), cap.pool.Size())
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	sa2, err := assign(cap.Graph(), cap.pool.Size())
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	for _, n := range nodes {
		if sa1.StreamOf(n.ID()) != sa2.StreamOf(n.ID()) {
			t.Errorf("node %d: assignment differs between runs (%d vs %d)",
				n.ID(), sa1.StreamOf(n.ID()), sa2.StreamOf(n.ID()))
		}
	}
	for i := range sa1.Order() {
		if sa1.Order()[i].ID() != sa2.Order()[i].ID() {
			t.Fatalf("issuance order differs at position %d", i)
		}
	}
}

func TestAssignOrderRespectsDependencies(t *testing.T) {
	cap := NewCapturer(NewHandle())
	defer cap.Close()

	nodes := buildIndependent(t, cap, 5)
	nodes[4].Precede(nodes[0])
	nodes[0].Precede(nodes[2])

	sa, err := assign(cap.Graph(), cap.pool.Size())
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	pos := make(map[int]int)
	for i, n := range sa.Order() {
		pos[n.ID()] = i
	}
	if pos[nodes[4].ID()] > pos[nodes[0].ID()] || pos[nodes[0].ID()] > pos[nodes[2].ID()] {
		t.Error("topological order violates declared edges")
	}
}

func TestAssignRejectsCycle(t *testing.T) {
	cap := NewCapturer(NewHandle())
	defer cap.Close()

	nodes := buildIndependent(t, cap, 3)
	nodes[0].Precede(nodes[1])
	nodes[1].Precede(nodes[2])
	nodes[2].Precede(nodes[0]) // back-edge

	_, err := assign(cap.Graph(), cap.pool.Size())
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !IsGraphCycleError(err) {
		t.Errorf("want GraphCycle error, got %v", err)
	}

	// The same cycle must fail Capture before any recording happens.
	_, err = cap.Capture()
	if !IsGraphCycleError(err) {
		t.Errorf("Capture: want GraphCycle error, got %v", err)
	}
	for i := 0; i < cap.pool.Size(); i++ {
		if cap.pool.Stream(i).capturing() {
			t.Errorf("stream %d left in record mode after failed capture", i)
		}
	}
}

func TestAssignSingleStreamPool(t *testing.T) {
	cap := NewCapturer(NewHandle(), WithStreams(1))
	defer cap.Close()

	nodes := buildIndependent(t, cap, 5)
	sa, err := assign(cap.Graph(), cap.pool.Size())
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	for _, n := range nodes {
		if sa.StreamOf(n.ID()) != 0 {
			t.Errorf("node %d not on stream 0", n.ID())
		}
	}
}
