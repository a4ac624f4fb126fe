package blasflow

// OpKind identifies the operation a graph node issues.
type OpKind int

const (
	OpAmax OpKind = iota
	OpAmin
	OpAsum
	OpAxpy
	OpCopy
	OpDot
	OpNrm2
	OpScal
	OpSwap
	OpGemv
	OpGeam
	OpGemm
	OpGemmBatched
	OpGemmStridedBatched
	OpCustom
)

var opKindNames = [...]string{
	"amax", "amin", "asum", "axpy", "copy", "dot", "nrm2", "scal",
	"swap", "gemv", "geam", "gemm", "gemm_batched", "gemm_sbatched",
	"custom",
}

// String returns the BLAS-style name of the operation kind.
func (k OpKind) String() string {
	if k < 0 || int(k) >= len(opKindNames) {
		return "unknown"
	}
	return opKindNames[k]
}

// OperationNode is one recorded linear-algebra call in the dependency
// graph. Nodes are created by Capturer facade methods and are immutable
// apart from their edge sets, which grow through Precede and Succeed.
//
// The issue closure holds the fully adapted (column-major) native call;
// row-major facade methods bake the layout rewrite in at construction
// time so capture never special-cases layout.
type OperationNode struct {
	id       int
	kind     OpKind
	dtype    DType
	rowMajor bool

	issue func(*Handle, *Stream) error

	preds []*OperationNode
	succs []*OperationNode

	predSet map[int]struct{}
	succSet map[int]struct{}
}

// ID returns the node's unique id (its insertion index).
func (n *OperationNode) ID() int {
	return n.id
}

// Kind returns the operation kind.
func (n *OperationNode) Kind() OpKind {
	return n.kind
}

// ElemType returns the element type of the node's operands.
func (n *OperationNode) ElemType() DType {
	return n.dtype
}

// RowMajor reports whether the node was constructed through a
// C-prefixed (row-major) facade method.
func (n *OperationNode) RowMajor() bool {
	return n.rowMajor
}

// Precede declares that n must complete before each of succs begins.
// Edge bookkeeping is symmetric: each successor's predecessor set is
// updated in the same call. Duplicate edges are ignored.
func (n *OperationNode) Precede(succs ...*OperationNode) {
	for _, s := range succs {
		if s == nil || s == n {
			continue
		}
		if _, dup := n.succSet[s.id]; dup {
			continue
		}
		n.succSet[s.id] = struct{}{}
		n.succs = append(n.succs, s)

		s.predSet[n.id] = struct{}{}
		s.preds = append(s.preds, n)
	}
}

// Succeed declares that n begins only after each of preds completes.
func (n *OperationNode) Succeed(preds ...*OperationNode) {
	for _, p := range preds {
		if p != nil {
			p.Precede(n)
		}
	}
}

// Predecessors returns the node's predecessor list in declaration order.
func (n *OperationNode) Predecessors() []*OperationNode {
	return n.preds
}

// Successors returns the node's successor list in declaration order.
func (n *OperationNode) Successors() []*OperationNode {
	return n.succs
}

// TaskGraph is the append-only container of operation nodes. Node ids
// are insertion indices, which every deterministic policy downstream
// (assignment tie-breaks, capture order) keys on.
type TaskGraph struct {
	nodes []*OperationNode
}

// NewTaskGraph creates an empty task graph.
func NewTaskGraph() *TaskGraph {
	return &TaskGraph{}
}

// add creates a node for the given kind and issuance closure.
func (g *TaskGraph) add(kind OpKind, dtype DType, rowMajor bool, issue func(*Handle, *Stream) error) *OperationNode {
	n := &OperationNode{
		id:       len(g.nodes),
		kind:     kind,
		dtype:    dtype,
		rowMajor: rowMajor,
		issue:    issue,
		predSet:  make(map[int]struct{}),
		succSet:  make(map[int]struct{}),
	}
	g.nodes = append(g.nodes, n)
	return n
}

// Len returns the number of nodes.
func (g *TaskGraph) Len() int {
	return len(g.nodes)
}

// Nodes returns the nodes in insertion order.
func (g *TaskGraph) Nodes() []*OperationNode {
	return g.nodes
}
