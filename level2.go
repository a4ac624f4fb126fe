package blasflow

// Gemv computes y = alpha*op(A)*x + beta*y with A stored column-major
// m×n. alpha and beta are device pointers.
func (h *Handle) Gemv(t DType, trans Transpose, m, n int, alpha, a DevicePtr, lda int, x DevicePtr, incX int, beta, y DevicePtr, incY int) error {
	const op = "Gemv"
	if err := checkDType(op, t); err != nil {
		return err
	}
	if err := checkMatrix(op, "A", m, n, lda, a); err != nil {
		return err
	}
	xLen, yLen := n, m
	if trans == Trans {
		xLen, yLen = m, n
	}
	if err := checkVector(op, "x", xLen, x, incX); err != nil {
		return err
	}
	if err := checkVector(op, "y", yLen, y, incY); err != nil {
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
		as, xs, ys := a.Float64(), x.Float64(), y.Float64()
		return h.dispatch(func() error {
			dgemv(trans, m, n, alpha.Float64()[0], as, lda, xs, incX, beta.Float64()[0], ys, incY)
			return nil
		})
	default:
		as, xs, ys := a.Float32(), x.Float32(), y.Float32()
		return h.dispatch(func() error {
			sgemv(trans, m, n, alpha.Float32()[0], as, lda, xs, incX, beta.Float32()[0], ys, incY)
			return nil
		})
	}
}

func sgemv(trans Transpose, m, n int, alpha float32, a []float32, lda int, x []float32, incX int, beta float32, y []float32, incY int) {
	if trans == NoTrans {
		// y = alpha*A*x + beta*y, y has m elements
		for i := 0; i < m; i++ {
			sum := float32(0)
			for j := 0; j < n; j++ {
				sum += a[i+j*lda] * x[j*incX]
			}
			y[i*incY] = alpha*sum + beta*y[i*incY]
		}
		return
	}
	// y = alpha*A^T*x + beta*y, y has n elements
	for j := 0; j < n; j++ {
		sum := float32(0)
		for i := 0; i < m; i++ {
			sum += a[i+j*lda] * x[i*incX]
		}
		y[j*incY] = alpha*sum + beta*y[j*incY]
	}
}

func dgemv(trans Transpose, m, n int, alpha float64, a []float64, lda int, x []float64, incX int, beta float64, y []float64, incY int) {
	if trans == NoTrans {
		for i := 0; i < m; i++ {
			sum := 0.0
			for j := 0; j < n; j++ {
				sum += a[i+j*lda] * x[j*incX]
			}
			y[i*incY] = alpha*sum + beta*y[i*incY]
		}
		return
	}
	for j := 0; j < n; j++ {
		sum := 0.0
		for i := 0; i < m; i++ {
			sum += a[i+j*lda] * x[i*incX]
		}
		y[j*incY] = alpha*sum + beta*y[j*incY]
	}
}
