package blasflow

// Handle is the native numeric library context: one entry point per
// operation, column-major storage, pointer mode fixed to device. Scalar
// coefficients and reduction results are always device pointers, read
// and written when the operation executes, never when it is issued.
// That is what makes an issued call safe to record and replay.
//
// A handle issues onto the stream bound with SetStream. When that
// stream is in record mode the call is appended to the stream's capture
// fragment; otherwise it is submitted for asynchronous execution and
// Stream.Synchronize observes its completion. A handle is owned by the
// Capturer that created it (or by the caller, for the escape hatch) and
// holds no state beyond the stream binding.
type Handle struct {
	stream *Stream
}

// NewHandle creates a native library context with no stream bound.
func NewHandle() *Handle {
	return &Handle{}
}

// SetStream binds subsequent issuance to s.
func (h *Handle) SetStream(s *Stream) {
	h.stream = s
}

// Stream returns the currently bound stream.
func (h *Handle) Stream() *Stream {
	return h.stream
}

// Exec issues an arbitrary closure on the bound stream, participating
// in record mode exactly like the built-in operations. It is the entry
// point the Custom escape hatch funnels through.
func (h *Handle) Exec(fn func() error) error {
	if fn == nil {
		return NewInvalidArgError("Exec", "nil closure")
	}
	return h.dispatch(fn)
}

// dispatch records or submits a bound operation.
func (h *Handle) dispatch(run func() error) error {
	s := h.stream
	if s == nil {
		return NewInvalidArgError("dispatch", "no stream bound to handle")
	}
	if s.capturing() {
		s.recordOp(run)
		return nil
	}
	s.Submit(func() { _ = run() })
	return nil
}

// checkVector validates a strided vector operand.
func checkVector(op string, name string, n int, x DevicePtr, inc int) error {
	if n < 0 {
		return NewInvalidArgError(op, "negative element count")
	}
	if inc < 1 {
		return NewInvalidArgError(op, name+" increment must be >= 1")
	}
	if n > 0 && x.IsNil() {
		return NewInvalidArgError(op, "nil "+name+" pointer")
	}
	return nil
}

// checkScalar validates a device-resident scalar or result pointer.
func checkScalar(op string, name string, p DevicePtr) error {
	if p.IsNil() {
		return NewInvalidArgError(op, "nil "+name+" pointer (pointer mode is device)")
	}
	return nil
}

// checkMatrix validates a column-major matrix operand: ld must cover
// the stored row count.
func checkMatrix(op string, name string, rows, cols, ld int, p DevicePtr) error {
	if rows < 0 || cols < 0 {
		return NewInvalidArgError(op, "negative "+name+" dimension")
	}
	if ld < max(1, rows) {
		return NewInvalidArgError(op, name+" leading dimension too small")
	}
	if rows > 0 && cols > 0 && p.IsNil() {
		return NewInvalidArgError(op, "nil "+name+" pointer")
	}
	return nil
}

// opDims returns the stored dimensions of op(X) given its operational
// rows and cols.
func opDims(trans Transpose, rows, cols int) (int, int) {
	if trans == Trans {
		return cols, rows
	}
	return rows, cols
}
