package blasflow

// Level-3 entry points of the native library, column-major throughout.
// The GEMM kernels walk C one column at a time so the inner loops run
// down contiguous memory; the no-transpose path additionally tiles the
// inner dimension by gemmBlock (sized by CPU feature detection).

// Geam computes C = alpha*op(A) + beta*op(B) with C m×n column-major.
func (h *Handle) Geam(t DType, transA, transB Transpose, m, n int, alpha, a DevicePtr, lda int, beta, b DevicePtr, ldb int, c DevicePtr, ldc int) error {
	const op = "Geam"
	if err := checkDType(op, t); err != nil {
		return err
	}
	ar, ac := opDims(transA, m, n)
	br, bc := opDims(transB, m, n)
	if err := checkMatrix(op, "A", ar, ac, lda, a); err != nil {
		return err
	}
	if err := checkMatrix(op, "B", br, bc, ldb, b); err != nil {
		return err
	}
	if err := checkMatrix(op, "C", m, n, ldc, c); err != nil {
		return err
	}
	if err := checkScalar(op, "alpha", alpha); err != nil {
		return err
	}
	if err := checkScalar(op, "beta", beta); err != nil {
		return err
	}
	switch t {
	case Float64:
		as, bs, cs := a.Float64(), b.Float64(), c.Float64()
		return h.dispatch(func() error {
			dgeam(transA, transB, m, n, alpha.Float64()[0], as, lda, beta.Float64()[0], bs, ldb, cs, ldc)
			return nil
		})
	default:
		as, bs, cs := a.Float32(), b.Float32(), c.Float32()
		return h.dispatch(func() error {
			sgeam(transA, transB, m, n, alpha.Float32()[0], as, lda, beta.Float32()[0], bs, ldb, cs, ldc)
			return nil
		})
	}
}

// Gemm computes C = alpha*op(A)*op(B) + beta*C with C m×n column-major
// and inner dimension k.
func (h *Handle) Gemm(t DType, transA, transB Transpose, m, n, k int, alpha, a DevicePtr, lda int, b DevicePtr, ldb int, beta, c DevicePtr, ldc int) error {
	if err := h.checkGemm("Gemm", t, transA, transB, m, n, k, alpha, a, lda, b, ldb, beta, c, ldc); err != nil {
		return err
	}
	switch t {
	case Float64:
		as, bs, cs := a.Float64(), b.Float64(), c.Float64()
		return h.dispatch(func() error {
			dgemm(transA, transB, m, n, k, alpha.Float64()[0], as, lda, bs, ldb, beta.Float64()[0], cs, ldc)
			return nil
		})
	default:
		as, bs, cs := a.Float32(), b.Float32(), c.Float32()
		return h.dispatch(func() error {
			sgemm(transA, transB, m, n, k, alpha.Float32()[0], as, lda, bs, ldb, beta.Float32()[0], cs, ldc)
			return nil
		})
	}
}

// GemmBatched applies one gemm per batch element, addressed by pointer
// arrays. Flags, dimensions and coefficients are shared by the batch.
func (h *Handle) GemmBatched(t DType, transA, transB Transpose, m, n, k int, alpha DevicePtr, a []DevicePtr, lda int, b []DevicePtr, ldb int, beta DevicePtr, c []DevicePtr, ldc int, batch int) error {
	const op = "GemmBatched"
	if batch < 1 {
		return NewInvalidArgError(op, "batch count must be >= 1")
	}
	if len(a) != batch || len(b) != batch || len(c) != batch {
		return NewInvalidArgError(op, "pointer array length does not match batch count")
	}
	for i := 0; i < batch; i++ {
		if err := h.checkGemm(op, t, transA, transB, m, n, k, alpha, a[i], lda, b[i], ldb, beta, c[i], ldc); err != nil {
			return err
		}
	}
	switch t {
	case Float64:
		as, bs, cs := float64Views(a), float64Views(b), float64Views(c)
		return h.dispatch(func() error {
			al, be := alpha.Float64()[0], beta.Float64()[0]
			for i := 0; i < batch; i++ {
				dgemm(transA, transB, m, n, k, al, as[i], lda, bs[i], ldb, be, cs[i], ldc)
			}
			return nil
		})
	default:
		as, bs, cs := float32Views(a), float32Views(b), float32Views(c)
		return h.dispatch(func() error {
			al, be := alpha.Float32()[0], beta.Float32()[0]
			for i := 0; i < batch; i++ {
				sgemm(transA, transB, m, n, k, al, as[i], lda, bs[i], ldb, be, cs[i], ldc)
			}
			return nil
		})
	}
}

// GemmStridedBatched applies one gemm per batch element, where element
// i uses each base pointer offset by i times the operand's stride (in
// elements).
func (h *Handle) GemmStridedBatched(t DType, transA, transB Transpose, m, n, k int, alpha, a DevicePtr, lda, strideA int, b DevicePtr, ldb, strideB int, beta, c DevicePtr, ldc, strideC int, batch int) error {
	const op = "GemmStridedBatched"
	if batch < 1 {
		return NewInvalidArgError(op, "batch count must be >= 1")
	}
	if strideA < 0 || strideB < 0 || strideC < 0 {
		return NewInvalidArgError(op, "negative batch stride")
	}
	if err := h.checkGemm(op, t, transA, transB, m, n, k, alpha, a, lda, b, ldb, beta, c, ldc); err != nil {
		return err
	}
	elem := t.Size()
	switch t {
	case Float64:
		return h.dispatch(func() error {
			al, be := alpha.Float64()[0], beta.Float64()[0]
			for i := 0; i < batch; i++ {
				dgemm(transA, transB, m, n, k, al,
					a.Offset(i*strideA*elem).Float64(), lda,
					b.Offset(i*strideB*elem).Float64(), ldb,
					be, c.Offset(i*strideC*elem).Float64(), ldc)
			}
			return nil
		})
	default:
		return h.dispatch(func() error {
			al, be := alpha.Float32()[0], beta.Float32()[0]
			for i := 0; i < batch; i++ {
				sgemm(transA, transB, m, n, k, al,
					a.Offset(i*strideA*elem).Float32(), lda,
					b.Offset(i*strideB*elem).Float32(), ldb,
					be, c.Offset(i*strideC*elem).Float32(), ldc)
			}
			return nil
		})
	}
}

func (h *Handle) checkGemm(op string, t DType, transA, transB Transpose, m, n, k int, alpha, a DevicePtr, lda int, b DevicePtr, ldb int, beta, c DevicePtr, ldc int) error {
	if err := checkDType(op, t); err != nil {
		return err
	}
	ar, ac := opDims(transA, m, k)
	br, bc := opDims(transB, k, n)
	if err := checkMatrix(op, "A", ar, ac, lda, a); err != nil {
		return err
	}
	if err := checkMatrix(op, "B", br, bc, ldb, b); err != nil {
		return err
	}
	if err := checkMatrix(op, "C", m, n, ldc, c); err != nil {
		return err
	}
	if err := checkScalar(op, "alpha", alpha); err != nil {
		return err
	}
	return checkScalar(op, "beta", beta)
}

func float32Views(ps []DevicePtr) [][]float32 {
	out := make([][]float32, len(ps))
	for i, p := range ps {
		out[i] = p.Float32()
	}
	return out
}

func float64Views(ps []DevicePtr) [][]float64 {
	out := make([][]float64, len(ps))
	for i, p := range ps {
		out[i] = p.Float64()
	}
	return out
}

// Kernels

func sgeam(transA, transB Transpose, m, n int, alpha float32, a []float32, lda int, beta float32, b []float32, ldb int, c []float32, ldc int) {
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			var av, bv float32
			if transA == NoTrans {
				av = a[i+j*lda]
			} else {
				av = a[j+i*lda]
			}
			if transB == NoTrans {
				bv = b[i+j*ldb]
			} else {
				bv = b[j+i*ldb]
			}
			c[i+j*ldc] = alpha*av + beta*bv
		}
	}
}

func dgeam(transA, transB Transpose, m, n int, alpha float64, a []float64, lda int, beta float64, b []float64, ldb int, c []float64, ldc int) {
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			var av, bv float64
			if transA == NoTrans {
				av = a[i+j*lda]
			} else {
				av = a[j+i*lda]
			}
			if transB == NoTrans {
				bv = b[i+j*ldb]
			} else {
				bv = b[j+i*ldb]
			}
			c[i+j*ldc] = alpha*av + beta*bv
		}
	}
}

func sgemm(transA, transB Transpose, m, n, k int, alpha float32, a []float32, lda int, b []float32, ldb int, beta float32, c []float32, ldc int) {
	// beta*C
	for j := 0; j < n; j++ {
		col := c[j*ldc:]
		if beta == 0 {
			for i := 0; i < m; i++ {
				col[i] = 0
			}
		} else if beta != 1 {
			for i := 0; i < m; i++ {
				col[i] *= beta
			}
		}
	}
	if alpha == 0 || k == 0 {
		return
	}

	if transA == NoTrans && transB == NoTrans {
		// Column-of-C update: C(:,j) += alpha*B(l,j) * A(:,l), tiled
		// over l to keep the active slice of A hot.
		for lb := 0; lb < k; lb += gemmBlock {
			lEnd := lb + gemmBlock
			if lEnd > k {
				lEnd = k
			}
			for j := 0; j < n; j++ {
				col := c[j*ldc:]
				for l := lb; l < lEnd; l++ {
					blj := alpha * b[l+j*ldb]
					if blj == 0 {
						continue
					}
					acol := a[l*lda:]
					for i := 0; i < m; i++ {
						col[i] += blj * acol[i]
					}
				}
			}
		}
		return
	}

	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			sum := float32(0)
			for l := 0; l < k; l++ {
				var av, bv float32
				if transA == NoTrans {
					av = a[i+l*lda]
				} else {
					av = a[l+i*lda]
				}
				if transB == NoTrans {
					bv = b[l+j*ldb]
				} else {
					bv = b[j+l*ldb]
				}
				sum += av * bv
			}
			c[i+j*ldc] += alpha * sum
		}
	}
}

func dgemm(transA, transB Transpose, m, n, k int, alpha float64, a []float64, lda int, b []float64, ldb int, beta float64, c []float64, ldc int) {
	for j := 0; j < n; j++ {
		col := c[j*ldc:]
		if beta == 0 {
			for i := 0; i < m; i++ {
				col[i] = 0
			}
		} else if beta != 1 {
			for i := 0; i < m; i++ {
				col[i] *= beta
			}
		}
	}
	if alpha == 0 || k == 0 {
		return
	}

	if transA == NoTrans && transB == NoTrans {
		for lb := 0; lb < k; lb += gemmBlock {
			lEnd := lb + gemmBlock
			if lEnd > k {
				lEnd = k
			}
			for j := 0; j < n; j++ {
				col := c[j*ldc:]
				for l := lb; l < lEnd; l++ {
					blj := alpha * b[l+j*ldb]
					if blj == 0 {
						continue
					}
					acol := a[l*lda:]
					for i := 0; i < m; i++ {
						col[i] += blj * acol[i]
					}
				}
			}
		}
		return
	}

	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			sum := 0.0
			for l := 0; l < k; l++ {
				var av, bv float64
				if transA == NoTrans {
					av = a[i+l*lda]
				} else {
					av = a[l+i*lda]
				}
				if transB == NoTrans {
					bv = b[l+j*ldb]
				} else {
					bv = b[j+l*ldb]
				}
				sum += av * bv
			}
			c[i+j*ldc] += alpha * sum
		}
	}
}
