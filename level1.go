package blasflow

import "math"

// Level-1 entry points of the native library. All of them are
// layout-agnostic: a vector is a base pointer and an increment whatever
// convention produced it. Reduction results (asum, dot, nrm2, amax,
// amin) are written to device pointers when the operation executes.

// Amax writes the 0-based index of the first element with the largest
// absolute value to result (int32).
func (h *Handle) Amax(t DType, n int, x DevicePtr, incX int, result DevicePtr) error {
	return h.argReduce("Amax", t, n, x, incX, result, false)
}

// Amin writes the 0-based index of the first element with the smallest
// absolute value to result (int32).
func (h *Handle) Amin(t DType, n int, x DevicePtr, incX int, result DevicePtr) error {
	return h.argReduce("Amin", t, n, x, incX, result, true)
}

func (h *Handle) argReduce(op string, t DType, n int, x DevicePtr, incX int, result DevicePtr, minimize bool) error {
	if err := checkDType(op, t); err != nil {
		return err
	}
	if err := checkVector(op, "x", n, x, incX); err != nil {
		return err
	}
	if err := checkScalar(op, "result", result); err != nil {
		return err
	}
	switch t {
	case Float64:
		xs := x.Float64()
		return h.dispatch(func() error {
			result.Int32()[0] = int32(idamaxmin(n, xs, incX, minimize))
			return nil
		})
	default:
		xs := x.Float32()
		return h.dispatch(func() error {
			result.Int32()[0] = int32(isamaxmin(n, xs, incX, minimize))
			return nil
		})
	}
}

// Asum writes sum(|x[i]|) to result.
func (h *Handle) Asum(t DType, n int, x DevicePtr, incX int, result DevicePtr) error {
	const op = "Asum"
	if err := checkDType(op, t); err != nil {
		return err
	}
	if err := checkVector(op, "x", n, x, incX); err != nil {
		return err
	}
	if err := checkScalar(op, "result", result); err != nil {
		return err
	}
	switch t {
	case Float64:
		xs := x.Float64()
		return h.dispatch(func() error {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += math.Abs(xs[i*incX])
			}
			result.Float64()[0] = sum
			return nil
		})
	default:
		xs := x.Float32()
		return h.dispatch(func() error {
			sum := float64(0)
			for i := 0; i < n; i++ {
				sum += math.Abs(float64(xs[i*incX]))
			}
			result.Float32()[0] = float32(sum)
			return nil
		})
	}
}

// Axpy computes y = alpha*x + y. alpha is a device pointer.
func (h *Handle) Axpy(t DType, n int, alpha, x DevicePtr, incX int, y DevicePtr, incY int) error {
	const op = "Axpy"
	if err := checkDType(op, t); err != nil {
		return err
	}
	if err := checkVector(op, "x", n, x, incX); err != nil {
		return err
	}
	if err := checkVector(op, "y", n, y, incY); err != nil {
		return err
	}
	if err := checkScalar(op, "alpha", alpha); err != nil {
		return err
	}
	switch t {
	case Float64:
		xs, ys := x.Float64(), y.Float64()
		return h.dispatch(func() error {
			a := alpha.Float64()[0]
			for i := 0; i < n; i++ {
				ys[i*incY] += a * xs[i*incX]
			}
			return nil
		})
	default:
		xs, ys := x.Float32(), y.Float32()
		return h.dispatch(func() error {
			a := alpha.Float32()[0]
			for i := 0; i < n; i++ {
				ys[i*incY] += a * xs[i*incX]
			}
			return nil
		})
	}
}

// Copy copies x into y.
func (h *Handle) Copy(t DType, n int, x DevicePtr, incX int, y DevicePtr, incY int) error {
	const op = "Copy"
	if err := checkDType(op, t); err != nil {
		return err
	}
	if err := checkVector(op, "x", n, x, incX); err != nil {
		return err
	}
	if err := checkVector(op, "y", n, y, incY); err != nil {
		return err
	}
	switch t {
	case Float64:
		xs, ys := x.Float64(), y.Float64()
		return h.dispatch(func() error {
			for i := 0; i < n; i++ {
				ys[i*incY] = xs[i*incX]
			}
			return nil
		})
	default:
		xs, ys := x.Float32(), y.Float32()
		return h.dispatch(func() error {
			for i := 0; i < n; i++ {
				ys[i*incY] = xs[i*incX]
			}
			return nil
		})
	}
}

// Dot writes the inner product of x and y to result.
func (h *Handle) Dot(t DType, n int, x DevicePtr, incX int, y DevicePtr, incY int, result DevicePtr) error {
	const op = "Dot"
	if err := checkDType(op, t); err != nil {
		return err
	}
	if err := checkVector(op, "x", n, x, incX); err != nil {
		return err
	}
	if err := checkVector(op, "y", n, y, incY); err != nil {
		return err
	}
	if err := checkScalar(op, "result", result); err != nil {
		return err
	}
	switch t {
	case Float64:
		xs, ys := x.Float64(), y.Float64()
		return h.dispatch(func() error {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += xs[i*incX] * ys[i*incY]
			}
			result.Float64()[0] = sum
			return nil
		})
	default:
		xs, ys := x.Float32(), y.Float32()
		return h.dispatch(func() error {
			sum := float64(0)
			for i := 0; i < n; i++ {
				sum += float64(xs[i*incX]) * float64(ys[i*incY])
			}
			result.Float32()[0] = float32(sum)
			return nil
		})
	}
}

// Nrm2 writes the Euclidean norm of x to result.
func (h *Handle) Nrm2(t DType, n int, x DevicePtr, incX int, result DevicePtr) error {
	const op = "Nrm2"
	if err := checkDType(op, t); err != nil {
		return err
	}
	if err := checkVector(op, "x", n, x, incX); err != nil {
		return err
	}
	if err := checkScalar(op, "result", result); err != nil {
		return err
	}
	switch t {
	case Float64:
		xs := x.Float64()
		return h.dispatch(func() error {
			sum := 0.0
			for i := 0; i < n; i++ {
				v := xs[i*incX]
				sum += v * v
			}
			result.Float64()[0] = math.Sqrt(sum)
			return nil
		})
	default:
		xs := x.Float32()
		return h.dispatch(func() error {
			sum := float64(0)
			for i := 0; i < n; i++ {
				v := float64(xs[i*incX])
				sum += v * v
			}
			result.Float32()[0] = float32(math.Sqrt(sum))
			return nil
		})
	}
}

// Scal computes x = alpha*x. alpha is a device pointer.
func (h *Handle) Scal(t DType, n int, alpha, x DevicePtr, incX int) error {
	const op = "Scal"
	if err := checkDType(op, t); err != nil {
		return err
	}
	if err := checkVector(op, "x", n, x, incX); err != nil {
		return err
	}
	if err := checkScalar(op, "alpha", alpha); err != nil {
		return err
	}
	switch t {
	case Float64:
		xs := x.Float64()
		return h.dispatch(func() error {
			a := alpha.Float64()[0]
			for i := 0; i < n; i++ {
				xs[i*incX] *= a
			}
			return nil
		})
	default:
		xs := x.Float32()
		return h.dispatch(func() error {
			a := alpha.Float32()[0]
			for i := 0; i < n; i++ {
				xs[i*incX] *= a
			}
			return nil
		})
	}
}

// Swap exchanges the contents of x and y.
func (h *Handle) Swap(t DType, n int, x DevicePtr, incX int, y DevicePtr, incY int) error {
	const op = "Swap"
	if err := checkDType(op, t); err != nil {
		return err
	}
	if err := checkVector(op, "x", n, x, incX); err != nil {
		return err
	}
	if err := checkVector(op, "y", n, y, incY); err != nil {
		return err
	}
	switch t {
	case Float64:
		xs, ys := x.Float64(), y.Float64()
		return h.dispatch(func() error {
			for i := 0; i < n; i++ {
				xs[i*incX], ys[i*incY] = ys[i*incY], xs[i*incX]
			}
			return nil
		})
	default:
		xs, ys := x.Float32(), y.Float32()
		return h.dispatch(func() error {
			for i := 0; i < n; i++ {
				xs[i*incX], ys[i*incY] = ys[i*incY], xs[i*incX]
			}
			return nil
		})
	}
}

// isamaxmin returns the index of the extreme |x[i]|, first occurrence.
func isamaxmin(n int, x []float32, inc int, minimize bool) int {
	if n < 1 {
		return 0
	}
	best, idx := math.Abs(float64(x[0])), 0
	for i := 1; i < n; i++ {
		v := math.Abs(float64(x[i*inc]))
		if (minimize && v < best) || (!minimize && v > best) {
			best, idx = v, i
		}
	}
	return idx
}

func idamaxmin(n int, x []float64, inc int, minimize bool) int {
	if n < 1 {
		return 0
	}
	best, idx := math.Abs(x[0]), 0
	for i := 1; i < n; i++ {
		v := math.Abs(x[i*inc])
		if (minimize && v < best) || (!minimize && v > best) {
			best, idx = v, i
		}
	}
	return idx
}
