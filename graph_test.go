package blasflow

import (
	"testing"
)

func TestEdgeSymmetry(t *testing.T) {
	cap := NewCapturer(NewHandle())
	defer cap.Close()

	nodes := buildIndependent(t, cap, 3)
	nodes[0].Precede(nodes[1])
	nodes[2].Succeed(nodes[1])

	if len(nodes[0].Successors()) != 1 || nodes[0].Successors()[0] != nodes[1] {
		t.Error("Precede did not add successor")
	}
	if len(nodes[1].Predecessors()) != 1 || nodes[1].Predecessors()[0] != nodes[0] {
		t.Error("Precede did not mirror predecessor")
	}
	if len(nodes[1].Successors()) != 1 || nodes[1].Successors()[0] != nodes[2] {
		t.Error("Succeed did not mirror successor")
	}
	if len(nodes[2].Predecessors()) != 1 || nodes[2].Predecessors()[0] != nodes[1] {
		t.Error("Succeed did not add predecessor")
	}
}

func TestDuplicateAndSelfEdgesIgnored(t *testing.T) {
	cap := NewCapturer(NewHandle())
	defer cap.Close()

	nodes := buildIndependent(t, cap, 2)
	nodes[0].Precede(nodes[1])
	nodes[0].Precede(nodes[1])
	nodes[1].Succeed(nodes[0])
	nodes[0].Precede(nodes[0])

	if got := len(nodes[0].Successors()); got != 1 {
		t.Errorf("duplicate edges recorded: %d successors", got)
	}
	if got := len(nodes[1].Predecessors()); got != 1 {
		t.Errorf("duplicate edges mirrored: %d predecessors", got)
	}
	if len(nodes[0].Predecessors()) != 0 {
		t.Error("self edge recorded")
	}
}

func TestNodeIdentityAndKinds(t *testing.T) {
	cap := NewCapturer(NewHandle())
	defer cap.Close()

	x := DeviceVector32(t, []float32{1, 2, 3})
	r := MallocOrFail(t, 4)
	two := DeviceScalar32(t, 2)

	n0 := NodeOrFail(t)(cap.Nrm2(Float32, 3, x, 1, r))
	n1 := NodeOrFail(t)(cap.Scal(Float32, 3, two, x, 1))

	if n0.ID() != 0 || n1.ID() != 1 {
		t.Errorf("ids not insertion-ordered: %d, %d", n0.ID(), n1.ID())
	}
	if n0.Kind() != OpNrm2 || n0.Kind().String() != "nrm2" {
		t.Errorf("kind wrong: %v", n0.Kind())
	}
	if n1.Kind().String() != "scal" {
		t.Errorf("kind name wrong: %q", n1.Kind().String())
	}
	if n0.ElemType() != Float32 {
		t.Errorf("elem type wrong: %v", n0.ElemType())
	}
	if n0.RowMajor() {
		t.Error("level-1 node flagged row-major")
	}

	n2 := NodeOrFail(t)(cap.Custom(func(h *Handle, s *Stream) error { return nil }))
	if n2.Kind() != OpCustom {
		t.Errorf("kind wrong: %v", n2.Kind())
	}
	if n2.ElemType() != DTypeNone || n2.ElemType().String() != "none" {
		t.Errorf("custom node elem type = %v, want none", n2.ElemType())
	}

	if cap.Graph().Len() != 3 {
		t.Errorf("graph length %d, want 3", cap.Graph().Len())
	}
}

func TestFailedConstructionAddsNoNode(t *testing.T) {
	cap := NewCapturer(NewHandle())
	defer cap.Close()

	x := DeviceVector32(t, []float32{1, 2, 3})
	r := MallocOrFail(t, 4)

	_, err := cap.Nrm2(Float32, 3, x, 0, r) // zero increment
	if !IsConstructionError(err) {
		t.Fatalf("want Construction error, got %v", err)
	}
	_, err = cap.Nrm2(DType(99), 3, x, 1, r)
	if !IsUnsupportedTypeError(err) {
		t.Fatalf("want UnsupportedType error, got %v", err)
	}
	if cap.Graph().Len() != 0 {
		t.Errorf("failed calls added nodes: graph length %d", cap.Graph().Len())
	}
}

func TestRowMajorFlagOnTwins(t *testing.T) {
	cap := NewCapturer(NewHandle())
	defer cap.Close()

	a := DeviceVector32(t, make([]float32, 6))
	b := DeviceVector32(t, make([]float32, 6))
	c := DeviceVector32(t, make([]float32, 4))
	one := DeviceScalar32(t, 1)

	col := NodeOrFail(t)(cap.Gemm(Float32, NoTrans, NoTrans, 2, 2, 3, one, a, 2, b, 3, one, c, 2))
	row := NodeOrFail(t)(cap.CGemm(Float32, NoTrans, NoTrans, 2, 2, 3, one, a, 3, b, 2, one, c, 2))

	if col.RowMajor() {
		t.Error("column-major node flagged row-major")
	}
	if !row.RowMajor() {
		t.Error("row-major node not flagged")
	}
	if col.Kind() != OpGemm || row.Kind() != OpGemm {
		t.Error("twins must share the operation kind")
	}
}
