package blasflow

// Capturer is the public surface of the capture engine. One facade
// method exists per supported operation; each validates its operands,
// appends an OperationNode to the dependency graph and returns the
// node so the caller can declare edges with Precede/Succeed. Capture
// then assigns nodes to the stream pool, records every issuance and
// merges the per-stream fragments into one CapturedGraph.
//
// Column-major methods (Gemv, Geam, Gemm, ...) assume the native
// library's layout. Their C-prefixed twins (CGemv, CGeam, CGemm, ...)
// accept row-major operands and route through the layout adapter once,
// at node construction. Level-1 methods are layout-agnostic and have
// no twins.
//
// A Capturer owns its stream pool exclusively and is not safe for
// concurrent use; graph construction and capture happen on one
// controller thread by contract.
type Capturer struct {
	handle *Handle
	pool   *StreamPool
	graph  *TaskGraph
}

// CapturerOption configures a Capturer at construction.
type CapturerOption func(*capturerConfig)

type capturerConfig struct {
	streams int
}

// WithStreams caps the concurrency of the captured graph by fixing the
// stream pool size. Values outside [1, MaxStreamPoolSize] are clamped.
func WithStreams(n int) CapturerOption {
	return func(cfg *capturerConfig) {
		cfg.streams = n
	}
}

// NewCapturer creates a capture engine around the given native library
// handle. The handle's lifetime is the Capturer's lifetime; the stream
// pool defaults to DefaultStreamPoolSize streams.
func NewCapturer(h *Handle, opts ...CapturerOption) *Capturer {
	cfg := capturerConfig{streams: DefaultStreamPoolSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.streams < 1 {
		cfg.streams = 1
	}
	if cfg.streams > MaxStreamPoolSize {
		cfg.streams = MaxStreamPoolSize
	}
	return &Capturer{
		handle: h,
		pool:   newStreamPool(cfg.streams),
		graph:  NewTaskGraph(),
	}
}

// Handle returns the shared native library context.
func (c *Capturer) Handle() *Handle {
	return c.handle
}

// Graph returns the dependency graph under construction.
func (c *Capturer) Graph() *TaskGraph {
	return c.graph
}

// Reset discards the current dependency graph and starts an empty one.
// Previously captured graphs stay launchable; they replay their own
// recorded fragments.
func (c *Capturer) Reset() {
	c.graph = NewTaskGraph()
}

// Close waits for in-flight work and shuts down the stream pool.
// Captured graphs from this Capturer must not be launched afterwards.
func (c *Capturer) Close() {
	c.pool.close()
}

// construction converts the first failed operand check into a
// Construction error, passing UnsupportedType through unchanged. The
// operation is not added to the graph on failure.
func construction(checks ...error) error {
	for _, err := range checks {
		if err == nil {
			continue
		}
		if fe, ok := err.(*FlowError); ok {
			if fe.Type == ErrTypeUnsupportedType {
				return err
			}
			return NewConstructionError(fe.Op, fe.Message)
		}
		return err
	}
	return nil
}

// Level-1 facade (layout-agnostic)

// Amax adds a node writing the 0-based index of max|x| to result.
func (c *Capturer) Amax(t DType, n int, x DevicePtr, incX int, result DevicePtr) (*OperationNode, error) {
	const op = "Amax"
	if err := construction(checkDType(op, t), checkVector(op, "x", n, x, incX), checkScalar(op, "result", result)); err != nil {
		return nil, err
	}
	return c.graph.add(OpAmax, t, false, func(h *Handle, s *Stream) error {
		h.SetStream(s)
		return h.Amax(t, n, x, incX, result)
	}), nil
}

// Amin adds a node writing the 0-based index of min|x| to result.
func (c *Capturer) Amin(t DType, n int, x DevicePtr, incX int, result DevicePtr) (*OperationNode, error) {
	const op = "Amin"
	if err := construction(checkDType(op, t), checkVector(op, "x", n, x, incX), checkScalar(op, "result", result)); err != nil {
		return nil, err
	}
	return c.graph.add(OpAmin, t, false, func(h *Handle, s *Stream) error {
		h.SetStream(s)
		return h.Amin(t, n, x, incX, result)
	}), nil
}

// Asum adds a node writing sum(|x[i]|) to result.
func (c *Capturer) Asum(t DType, n int, x DevicePtr, incX int, result DevicePtr) (*OperationNode, error) {
	const op = "Asum"
	if err := construction(checkDType(op, t), checkVector(op, "x", n, x, incX), checkScalar(op, "result", result)); err != nil {
		return nil, err
	}
	return c.graph.add(OpAsum, t, false, func(h *Handle, s *Stream) error {
		h.SetStream(s)
		return h.Asum(t, n, x, incX, result)
	}), nil
}

// Axpy adds a node computing y = alpha*x + y.
func (c *Capturer) Axpy(t DType, n int, alpha, x DevicePtr, incX int, y DevicePtr, incY int) (*OperationNode, error) {
	const op = "Axpy"
	if err := construction(checkDType(op, t), checkScalar(op, "alpha", alpha),
		checkVector(op, "x", n, x, incX), checkVector(op, "y", n, y, incY)); err != nil {
		return nil, err
	}
	return c.graph.add(OpAxpy, t, false, func(h *Handle, s *Stream) error {
		h.SetStream(s)
		return h.Axpy(t, n, alpha, x, incX, y, incY)
	}), nil
}

// Copy adds a node copying x into y.
func (c *Capturer) Copy(t DType, n int, x DevicePtr, incX int, y DevicePtr, incY int) (*OperationNode, error) {
	const op = "Copy"
	if err := construction(checkDType(op, t), checkVector(op, "x", n, x, incX), checkVector(op, "y", n, y, incY)); err != nil {
		return nil, err
	}
	return c.graph.add(OpCopy, t, false, func(h *Handle, s *Stream) error {
		h.SetStream(s)
		return h.Copy(t, n, x, incX, y, incY)
	}), nil
}

// Dot adds a node writing the inner product of x and y to result.
func (c *Capturer) Dot(t DType, n int, x DevicePtr, incX int, y DevicePtr, incY int, result DevicePtr) (*OperationNode, error) {
	const op = "Dot"
	if err := construction(checkDType(op, t), checkVector(op, "x", n, x, incX),
		checkVector(op, "y", n, y, incY), checkScalar(op, "result", result)); err != nil {
		return nil, err
	}
	return c.graph.add(OpDot, t, false, func(h *Handle, s *Stream) error {
		h.SetStream(s)
		return h.Dot(t, n, x, incX, y, incY, result)
	}), nil
}

// Nrm2 adds a node writing the Euclidean norm of x to result.
func (c *Capturer) Nrm2(t DType, n int, x DevicePtr, incX int, result DevicePtr) (*OperationNode, error) {
	const op = "Nrm2"
	if err := construction(checkDType(op, t), checkVector(op, "x", n, x, incX), checkScalar(op, "result", result)); err != nil {
		return nil, err
	}
	return c.graph.add(OpNrm2, t, false, func(h *Handle, s *Stream) error {
		h.SetStream(s)
		return h.Nrm2(t, n, x, incX, result)
	}), nil
}

// Scal adds a node computing x = alpha*x.
func (c *Capturer) Scal(t DType, n int, alpha, x DevicePtr, incX int) (*OperationNode, error) {
	const op = "Scal"
	if err := construction(checkDType(op, t), checkScalar(op, "alpha", alpha), checkVector(op, "x", n, x, incX)); err != nil {
		return nil, err
	}
	return c.graph.add(OpScal, t, false, func(h *Handle, s *Stream) error {
		h.SetStream(s)
		return h.Scal(t, n, alpha, x, incX)
	}), nil
}

// Swap adds a node exchanging the contents of x and y.
func (c *Capturer) Swap(t DType, n int, x DevicePtr, incX int, y DevicePtr, incY int) (*OperationNode, error) {
	const op = "Swap"
	if err := construction(checkDType(op, t), checkVector(op, "x", n, x, incX), checkVector(op, "y", n, y, incY)); err != nil {
		return nil, err
	}
	return c.graph.add(OpSwap, t, false, func(h *Handle, s *Stream) error {
		h.SetStream(s)
		return h.Swap(t, n, x, incX, y, incY)
	}), nil
}

// Level-2 facade

// Gemv adds y = alpha*op(A)*x + beta*y with A column-major m×n.
func (c *Capturer) Gemv(t DType, trans Transpose, m, n int, alpha, a DevicePtr, lda int, x DevicePtr, incX int, beta, y DevicePtr, incY int) (*OperationNode, error) {
	return c.gemvNode(t, gemvDesc{
		trans: trans, m: m, n: n,
		alpha: alpha, a: a, lda: lda,
		x: x, incX: incX, beta: beta, y: y, incY: incY,
	}, false)
}

// CGemv is the row-major twin of Gemv: A is m×n row-major.
func (c *Capturer) CGemv(t DType, trans Transpose, m, n int, alpha, a DevicePtr, lda int, x DevicePtr, incX int, beta, y DevicePtr, incY int) (*OperationNode, error) {
	return c.gemvNode(t, adaptGemv(gemvDesc{
		trans: trans, m: m, n: n,
		alpha: alpha, a: a, lda: lda,
		x: x, incX: incX, beta: beta, y: y, incY: incY,
	}), true)
}

func (c *Capturer) gemvNode(t DType, d gemvDesc, rowMajor bool) (*OperationNode, error) {
	const op = "Gemv"
	xLen, yLen := d.n, d.m
	if d.trans == Trans {
		xLen, yLen = d.m, d.n
	}
	if err := construction(checkDType(op, t), checkMatrix(op, "A", d.m, d.n, d.lda, d.a),
		checkVector(op, "x", xLen, d.x, d.incX), checkVector(op, "y", yLen, d.y, d.incY),
		checkScalar(op, "alpha", d.alpha), checkScalar(op, "beta", d.beta)); err != nil {
		return nil, err
	}
	return c.graph.add(OpGemv, t, rowMajor, func(h *Handle, s *Stream) error {
		h.SetStream(s)
		return h.Gemv(t, d.trans, d.m, d.n, d.alpha, d.a, d.lda, d.x, d.incX, d.beta, d.y, d.incY)
	}), nil
}

// Level-3 facade

// Geam adds C = alpha*op(A) + beta*op(B) with C column-major m×n.
func (c *Capturer) Geam(t DType, transA, transB Transpose, m, n int, alpha, a DevicePtr, lda int, beta, b DevicePtr, ldb int, cm DevicePtr, ldc int) (*OperationNode, error) {
	return c.geamNode(t, geamDesc{
		transA: transA, transB: transB, m: m, n: n,
		alpha: alpha, a: a, lda: lda,
		beta: beta, b: b, ldb: ldb,
		c: cm, ldc: ldc,
	}, false)
}

// CGeam is the row-major twin of Geam.
func (c *Capturer) CGeam(t DType, transA, transB Transpose, m, n int, alpha, a DevicePtr, lda int, beta, b DevicePtr, ldb int, cm DevicePtr, ldc int) (*OperationNode, error) {
	return c.geamNode(t, adaptGeam(geamDesc{
		transA: transA, transB: transB, m: m, n: n,
		alpha: alpha, a: a, lda: lda,
		beta: beta, b: b, ldb: ldb,
		c: cm, ldc: ldc,
	}), true)
}

func (c *Capturer) geamNode(t DType, d geamDesc, rowMajor bool) (*OperationNode, error) {
	const op = "Geam"
	ar, ac := opDims(d.transA, d.m, d.n)
	br, bc := opDims(d.transB, d.m, d.n)
	if err := construction(checkDType(op, t),
		checkMatrix(op, "A", ar, ac, d.lda, d.a), checkMatrix(op, "B", br, bc, d.ldb, d.b),
		checkMatrix(op, "C", d.m, d.n, d.ldc, d.c),
		checkScalar(op, "alpha", d.alpha), checkScalar(op, "beta", d.beta)); err != nil {
		return nil, err
	}
	return c.graph.add(OpGeam, t, rowMajor, func(h *Handle, s *Stream) error {
		h.SetStream(s)
		return h.Geam(t, d.transA, d.transB, d.m, d.n, d.alpha, d.a, d.lda, d.beta, d.b, d.ldb, d.c, d.ldc)
	}), nil
}

// Gemm adds C = alpha*op(A)*op(B) + beta*C with C column-major m×n.
func (c *Capturer) Gemm(t DType, transA, transB Transpose, m, n, k int, alpha, a DevicePtr, lda int, b DevicePtr, ldb int, beta, cm DevicePtr, ldc int) (*OperationNode, error) {
	return c.gemmNode(t, gemmDesc{
		transA: transA, transB: transB, m: m, n: n, k: k,
		alpha: alpha, a: a, lda: lda, b: b, ldb: ldb,
		beta: beta, c: cm, ldc: ldc,
	}, false)
}

// CGemm is the row-major twin of Gemm: all three matrices are
// row-major, and the rewritten call computes the same product.
func (c *Capturer) CGemm(t DType, transA, transB Transpose, m, n, k int, alpha, a DevicePtr, lda int, b DevicePtr, ldb int, beta, cm DevicePtr, ldc int) (*OperationNode, error) {
	return c.gemmNode(t, adaptGemm(gemmDesc{
		transA: transA, transB: transB, m: m, n: n, k: k,
		alpha: alpha, a: a, lda: lda, b: b, ldb: ldb,
		beta: beta, c: cm, ldc: ldc,
	}), true)
}

func (c *Capturer) gemmNode(t DType, d gemmDesc, rowMajor bool) (*OperationNode, error) {
	const op = "Gemm"
	if err := c.checkGemmDesc(op, t, d); err != nil {
		return nil, err
	}
	return c.graph.add(OpGemm, t, rowMajor, func(h *Handle, s *Stream) error {
		h.SetStream(s)
		return h.Gemm(t, d.transA, d.transB, d.m, d.n, d.k, d.alpha, d.a, d.lda, d.b, d.ldb, d.beta, d.c, d.ldc)
	}), nil
}

func (c *Capturer) checkGemmDesc(op string, t DType, d gemmDesc) error {
	ar, ac := opDims(d.transA, d.m, d.k)
	br, bc := opDims(d.transB, d.k, d.n)
	return construction(checkDType(op, t),
		checkMatrix(op, "A", ar, ac, d.lda, d.a), checkMatrix(op, "B", br, bc, d.ldb, d.b),
		checkMatrix(op, "C", d.m, d.n, d.ldc, d.c),
		checkScalar(op, "alpha", d.alpha), checkScalar(op, "beta", d.beta))
}

// GemmBatched adds one gemm per batch element, addressed by pointer
// arrays of equal length.
func (c *Capturer) GemmBatched(t DType, transA, transB Transpose, m, n, k int, alpha DevicePtr, a []DevicePtr, lda int, b []DevicePtr, ldb int, beta DevicePtr, cm []DevicePtr, ldc int) (*OperationNode, error) {
	return c.gemmBatchedNode(t, gemmBatchedDesc{
		transA: transA, transB: transB, m: m, n: n, k: k,
		alpha: alpha, a: a, lda: lda, b: b, ldb: ldb,
		beta: beta, c: cm, ldc: ldc,
	}, false)
}

// CGemmBatched is the row-major twin of GemmBatched.
func (c *Capturer) CGemmBatched(t DType, transA, transB Transpose, m, n, k int, alpha DevicePtr, a []DevicePtr, lda int, b []DevicePtr, ldb int, beta DevicePtr, cm []DevicePtr, ldc int) (*OperationNode, error) {
	return c.gemmBatchedNode(t, adaptGemmBatched(gemmBatchedDesc{
		transA: transA, transB: transB, m: m, n: n, k: k,
		alpha: alpha, a: a, lda: lda, b: b, ldb: ldb,
		beta: beta, c: cm, ldc: ldc,
	}), true)
}

func (c *Capturer) gemmBatchedNode(t DType, d gemmBatchedDesc, rowMajor bool) (*OperationNode, error) {
	const op = "GemmBatched"
	batch := len(d.c)
	if batch < 1 {
		return nil, NewConstructionError(op, "batch count must be >= 1")
	}
	if len(d.a) != batch || len(d.b) != batch {
		return nil, NewConstructionError(op, "operand pointer arrays differ in length")
	}
	for i := 0; i < batch; i++ {
		if err := c.checkGemmDesc(op, t, gemmDesc{
			transA: d.transA, transB: d.transB, m: d.m, n: d.n, k: d.k,
			alpha: d.alpha, a: d.a[i], lda: d.lda, b: d.b[i], ldb: d.ldb,
			beta: d.beta, c: d.c[i], ldc: d.ldc,
		}); err != nil {
			return nil, err
		}
	}
	// The issue closure captures copies of the pointer arrays so later
	// caller mutation cannot change a recorded node.
	as := append([]DevicePtr(nil), d.a...)
	bs := append([]DevicePtr(nil), d.b...)
	cs := append([]DevicePtr(nil), d.c...)
	return c.graph.add(OpGemmBatched, t, rowMajor, func(h *Handle, s *Stream) error {
		h.SetStream(s)
		return h.GemmBatched(t, d.transA, d.transB, d.m, d.n, d.k, d.alpha, as, d.lda, bs, d.ldb, d.beta, cs, d.ldc, batch)
	}), nil
}

// GemmStridedBatched adds one gemm per batch element over contiguous
// memory, element i offsetting each base pointer by i times the
// operand's stride (in elements).
func (c *Capturer) GemmStridedBatched(t DType, transA, transB Transpose, m, n, k int, alpha, a DevicePtr, lda, strideA int, b DevicePtr, ldb, strideB int, beta, cm DevicePtr, ldc, strideC int, batch int) (*OperationNode, error) {
	return c.gemmStridedNode(t, gemmStridedDesc{
		transA: transA, transB: transB, m: m, n: n, k: k,
		alpha: alpha, a: a, lda: lda, strideA: strideA,
		b: b, ldb: ldb, strideB: strideB,
		beta: beta, c: cm, ldc: ldc, strideC: strideC, batch: batch,
	}, false)
}

// CGemmStridedBatched is the row-major twin of GemmStridedBatched.
func (c *Capturer) CGemmStridedBatched(t DType, transA, transB Transpose, m, n, k int, alpha, a DevicePtr, lda, strideA int, b DevicePtr, ldb, strideB int, beta, cm DevicePtr, ldc, strideC int, batch int) (*OperationNode, error) {
	return c.gemmStridedNode(t, adaptGemmStridedBatched(gemmStridedDesc{
		transA: transA, transB: transB, m: m, n: n, k: k,
		alpha: alpha, a: a, lda: lda, strideA: strideA,
		b: b, ldb: ldb, strideB: strideB,
		beta: beta, c: cm, ldc: ldc, strideC: strideC, batch: batch,
	}), true)
}

func (c *Capturer) gemmStridedNode(t DType, d gemmStridedDesc, rowMajor bool) (*OperationNode, error) {
	const op = "GemmStridedBatched"
	if d.batch < 1 {
		return nil, NewConstructionError(op, "batch count must be >= 1")
	}
	if d.strideA < 0 || d.strideB < 0 || d.strideC < 0 {
		return nil, NewConstructionError(op, "negative batch stride")
	}
	if err := c.checkGemmDesc(op, t, gemmDesc{
		transA: d.transA, transB: d.transB, m: d.m, n: d.n, k: d.k,
		alpha: d.alpha, a: d.a, lda: d.lda, b: d.b, ldb: d.ldb,
		beta: d.beta, c: d.c, ldc: d.ldc,
	}); err != nil {
		return nil, err
	}
	return c.graph.add(OpGemmStridedBatched, t, rowMajor, func(h *Handle, s *Stream) error {
		h.SetStream(s)
		return h.GemmStridedBatched(t, d.transA, d.transB, d.m, d.n, d.k, d.alpha,
			d.a, d.lda, d.strideA, d.b, d.ldb, d.strideB, d.beta, d.c, d.ldc, d.strideC, d.batch)
	}), nil
}

// Escape hatch

// Custom adds a node whose issuance is an arbitrary closure over the
// shared native context and the node's assigned stream. During capture
// the handle arrives bound to that stream in record mode, so anything
// the closure issues through it (built-in entry points or Exec) is
// recorded at the node's position in stream order, with the same
// scheduling and merge treatment as built-in kinds. The node reports
// DTypeNone as its element type.
func (c *Capturer) Custom(fn func(h *Handle, s *Stream) error) (*OperationNode, error) {
	if fn == nil {
		return nil, NewConstructionError("Custom", "nil native-call closure")
	}
	return c.graph.add(OpCustom, DTypeNone, false, func(h *Handle, s *Stream) error {
		h.SetStream(s)
		return fn(h, s)
	}), nil
}

// Capture driver

// Capture assigns every node to a stream, records each node's native
// issuance on its stream in dependency order, lowers cross-stream edges
// to event record/wait pairs and merges the per-stream fragments into
// one CapturedGraph.
//
// Capture fails atomically: a cycle is reported before anything is
// recorded, and a native issuance failure aborts the whole capture,
// releases all partially recorded stream state and surfaces a Capture
// error identifying the offending node. The Capturer stays reusable
// either way.
func (c *Capturer) Capture() (*CapturedGraph, error) {
	sa, err := assign(c.graph, c.pool.Size())
	if err != nil {
		return nil, err
	}

	// Streams must be idle before they flip into record mode.
	c.pool.Synchronize()
	for i := 0; i < c.pool.Size(); i++ {
		c.pool.Stream(i).beginCapture()
	}

	numEvents := 0
	eventOf := make(map[int]int) // producer node id -> event slot

	for _, n := range sa.Order() {
		s := c.pool.Stream(sa.StreamOf(n.id))
		s.setCaptureNode(n.id)

		// Wait on every predecessor captured on a different stream.
		// Predecessors already ran through this loop (topological
		// order), so their event slots exist.
		for _, p := range n.preds {
			if sa.StreamOf(p.id) != s.ID() {
				s.recordEvent(itemWaitEvent, eventOf[p.id])
			}
		}

		if err := n.issue(c.handle, s); err != nil {
			for i := 0; i < c.pool.Size(); i++ {
				c.pool.Stream(i).abortCapture()
			}
			return nil, NewCaptureError(n.kind.String(), n.id, err)
		}

		// Publish a completion event if any successor lands elsewhere.
		for _, q := range n.succs {
			if sa.StreamOf(q.id) != s.ID() {
				eventOf[n.id] = numEvents
				s.recordEvent(itemRecordEvent, numEvents)
				numEvents++
				break
			}
		}
	}

	frags := make([]*fragment, c.pool.Size())
	for i := range frags {
		frags[i] = c.pool.Stream(i).endCapture()
	}
	return &CapturedGraph{
		pool:       c.pool,
		frags:      frags,
		numEvents:  numEvents,
		assignment: sa,
		nodes:      c.graph.Len(),
	}, nil
}
