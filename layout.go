package blasflow

// Layout adaptation rewrites a row-major-intended operation as the
// column-major equivalent the native library expects. A row-major
// matrix occupies memory identically to its transpose viewed
// column-major, so for multiply-like operations
//
//	C = op(A) × op(B)   (row-major)
//
// is computed as
//
//	Cᵀ = op(B)ᵀ × op(A)ᵀ   (column-major)
//
// which swaps the operand order and the m/n dimensions while every
// leading dimension keeps its value. For element-wise matrix operations
// only the dimensions swap, and for matrix-vector operations the
// transpose flag toggles. The adapters below are pure: they produce a
// rewritten descriptor and touch no device state. Level-1 operations
// are layout-agnostic and never come through here.

// Transpose selects op(X) for a matrix operand.
type Transpose int

const (
	NoTrans Transpose = iota
	Trans
)

// String returns the BLAS-style flag name.
func (t Transpose) String() string {
	if t == Trans {
		return "T"
	}
	return "N"
}

// toggle flips NoTrans and Trans.
func (t Transpose) toggle() Transpose {
	if t == Trans {
		return NoTrans
	}
	return Trans
}

// gemvDesc describes y = alpha*op(A)*x + beta*y with A m×n as stored.
type gemvDesc struct {
	trans      Transpose
	m, n       int
	alpha      DevicePtr
	a          DevicePtr
	lda        int
	x          DevicePtr
	incX       int
	beta       DevicePtr
	y          DevicePtr
	incY       int
}

// geamDesc describes C = alpha*op(A) + beta*op(B) with C m×n.
type geamDesc struct {
	transA, transB Transpose
	m, n           int
	alpha          DevicePtr
	a              DevicePtr
	lda            int
	beta           DevicePtr
	b              DevicePtr
	ldb            int
	c              DevicePtr
	ldc            int
}

// gemmDesc describes C = alpha*op(A)*op(B) + beta*C with C m×n and
// inner dimension k.
type gemmDesc struct {
	transA, transB Transpose
	m, n, k        int
	alpha          DevicePtr
	a              DevicePtr
	lda            int
	b              DevicePtr
	ldb            int
	beta           DevicePtr
	c              DevicePtr
	ldc            int
}

// gemmBatchedDesc describes a pointer-array batch of gemmDesc-shaped
// multiplies sharing flags, dimensions and coefficients.
type gemmBatchedDesc struct {
	transA, transB Transpose
	m, n, k        int
	alpha          DevicePtr
	a              []DevicePtr
	lda            int
	b              []DevicePtr
	ldb            int
	beta           DevicePtr
	c              []DevicePtr
	ldc            int
}

// gemmStridedDesc describes a strided batch: element i uses base
// pointers offset by i times the per-operand stride (in elements).
type gemmStridedDesc struct {
	transA, transB Transpose
	m, n, k        int
	alpha          DevicePtr
	a              DevicePtr
	lda            int
	strideA        int
	b              DevicePtr
	ldb            int
	strideB        int
	beta           DevicePtr
	c              DevicePtr
	ldc            int
	strideC        int
	batch          int
}

// adaptGemv rewrites a row-major matrix-vector multiply. The row-major
// A (m×n, lda) is the column-major Aᵀ (n×m, lda), so the transpose flag
// toggles and the stored dimensions swap. Vectors are layout-agnostic.
func adaptGemv(d gemvDesc) gemvDesc {
	out := d
	out.trans = d.trans.toggle()
	out.m, out.n = d.n, d.m
	return out
}

// adaptGeam rewrites a row-major matrix addition/transposition. The
// computation becomes Cᵀ = alpha*op(A)ᵀ + beta*op(B)ᵀ: element-wise, so
// operand order and transpose flags survive and only the result
// dimensions swap.
func adaptGeam(d geamDesc) geamDesc {
	out := d
	out.m, out.n = d.n, d.m
	return out
}

// adaptGemm rewrites a row-major matrix multiply as
// Cᵀ = op(B)ᵀ × op(A)ᵀ: operands swap together with their leading
// dimensions, transpose flags swap with them, and m/n swap. k and
// every leading dimension value are unchanged.
func adaptGemm(d gemmDesc) gemmDesc {
	out := d
	out.transA, out.transB = d.transB, d.transA
	out.m, out.n = d.n, d.m
	out.a, out.b = d.b, d.a
	out.lda, out.ldb = d.ldb, d.lda
	return out
}

// adaptGemmBatched applies the gemm rewrite uniformly to every batch
// element by swapping the operand pointer arrays.
func adaptGemmBatched(d gemmBatchedDesc) gemmBatchedDesc {
	out := d
	out.transA, out.transB = d.transB, d.transA
	out.m, out.n = d.n, d.m
	out.a, out.b = d.b, d.a
	out.lda, out.ldb = d.ldb, d.lda
	return out
}

// adaptGemmStridedBatched applies the gemm rewrite to the base pointers
// and carries the batch strides along with their operands.
func adaptGemmStridedBatched(d gemmStridedDesc) gemmStridedDesc {
	out := d
	out.transA, out.transB = d.transB, d.transA
	out.m, out.n = d.n, d.m
	out.a, out.b = d.b, d.a
	out.lda, out.ldb = d.ldb, d.lda
	out.strideA, out.strideB = d.strideB, d.strideA
	return out
}
