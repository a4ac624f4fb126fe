package blasflow

import (
	"math"
	"testing"
)

// directHandle returns a handle bound to a private stream, exercising
// the uncaptured execution path.
func directHandle(t *testing.T) (*Handle, *Stream) {
	t.Helper()
	s := newStream(0)
	t.Cleanup(s.close)
	h := NewHandle()
	h.SetStream(s)
	return h, s
}

func TestAmaxAmin(t *testing.T) {
	h, s := directHandle(t)

	dX := DeviceVector32(t, []float32{0.5, -4, 2, -4, 1})
	dMax := MallocOrFail(t, 4)
	dMin := MallocOrFail(t, 4)

	if err := h.Amax(Float32, 5, dX, 1, dMax); err != nil {
		t.Fatalf("Amax: %v", err)
	}
	if err := h.Amin(Float32, 5, dX, 1, dMin); err != nil {
		t.Fatalf("Amin: %v", err)
	}
	s.Synchronize()

	// First occurrence wins for ties.
	if got := dMax.Int32()[0]; got != 1 {
		t.Errorf("amax index = %d, want 1", got)
	}
	if got := dMin.Int32()[0]; got != 0 {
		t.Errorf("amin index = %d, want 0", got)
	}
}

func TestAsumDotNrm2(t *testing.T) {
	h, s := directHandle(t)

	dX := DeviceVector32(t, []float32{3, -4, 0})
	dY := DeviceVector32(t, []float32{1, 2, 3})
	dAsum := MallocOrFail(t, 4)
	dDot := MallocOrFail(t, 4)
	dNrm := MallocOrFail(t, 4)

	if err := h.Asum(Float32, 3, dX, 1, dAsum); err != nil {
		t.Fatalf("Asum: %v", err)
	}
	if err := h.Dot(Float32, 3, dX, 1, dY, 1, dDot); err != nil {
		t.Fatalf("Dot: %v", err)
	}
	if err := h.Nrm2(Float32, 3, dX, 1, dNrm); err != nil {
		t.Fatalf("Nrm2: %v", err)
	}
	s.Synchronize()

	if got := dAsum.Float32()[0]; got != 7 {
		t.Errorf("asum = %v, want 7", got)
	}
	if got := dDot.Float32()[0]; got != -5 {
		t.Errorf("dot = %v, want -5", got)
	}
	if got := dNrm.Float32()[0]; got != 5 {
		t.Errorf("nrm2 = %v, want 5", got)
	}
}

func TestAxpyScalCopySwap(t *testing.T) {
	h, s := directHandle(t)

	dX := DeviceVector32(t, []float32{1, 2, 3})
	dY := DeviceVector32(t, []float32{10, 20, 30})
	two := DeviceScalar32(t, 2)

	if err := h.Axpy(Float32, 3, two, dX, 1, dY, 1); err != nil {
		t.Fatalf("Axpy: %v", err)
	}
	if err := h.Scal(Float32, 3, two, dX, 1); err != nil {
		t.Fatalf("Scal: %v", err)
	}
	s.Synchronize()

	wantY := []float32{12, 24, 36}
	wantX := []float32{2, 4, 6}
	for i := 0; i < 3; i++ {
		if dY.Float32()[i] != wantY[i] {
			t.Errorf("axpy y[%d] = %v, want %v", i, dY.Float32()[i], wantY[i])
		}
		if dX.Float32()[i] != wantX[i] {
			t.Errorf("scal x[%d] = %v, want %v", i, dX.Float32()[i], wantX[i])
		}
	}

	dA := DeviceVector32(t, []float32{1, 2})
	dB := DeviceVector32(t, []float32{9, 8})
	if err := h.Swap(Float32, 2, dA, 1, dB, 1); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if err := h.Copy(Float32, 2, dA, 1, dB, 1); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	s.Synchronize()

	if dA.Float32()[0] != 9 || dB.Float32()[0] != 9 {
		t.Errorf("swap+copy: a=%v b=%v, want both {9,8}", dA.Float32()[:2], dB.Float32()[:2])
	}
}

func TestLevel1Strided(t *testing.T) {
	h, s := directHandle(t)

	// Interleaved storage, stride 2: logical x = {1, 3, 5}.
	dX := DeviceVector32(t, []float32{1, -100, 3, -100, 5})
	dR := MallocOrFail(t, 4)

	if err := h.Asum(Float32, 3, dX, 2, dR); err != nil {
		t.Fatalf("Asum: %v", err)
	}
	s.Synchronize()
	if got := dR.Float32()[0]; got != 9 {
		t.Errorf("strided asum = %v, want 9", got)
	}
}

func TestLevel1Float64(t *testing.T) {
	h, s := directHandle(t)

	dX := DeviceVector64(t, []float64{3, -4})
	dR := MallocOrFail(t, 8)

	if err := h.Nrm2(Float64, 2, dX, 1, dR); err != nil {
		t.Fatalf("Nrm2: %v", err)
	}
	s.Synchronize()
	if got := dR.Float64()[0]; math.Abs(got-5) > 1e-15 {
		t.Errorf("nrm2 = %v, want 5", got)
	}
}

func TestLevel1Validation(t *testing.T) {
	h, _ := directHandle(t)

	dX := DeviceVector32(t, []float32{1})
	dR := MallocOrFail(t, 4)

	if err := h.Nrm2(Float32, 1, dX, 0, dR); !IsInvalidArgError(err) {
		t.Errorf("zero increment: want InvalidArgument, got %v", err)
	}
	if err := h.Nrm2(Float32, 1, DevicePtr{}, 1, dR); !IsInvalidArgError(err) {
		t.Errorf("nil x: want InvalidArgument, got %v", err)
	}
	if err := h.Nrm2(Float32, 1, dX, 1, DevicePtr{}); !IsInvalidArgError(err) {
		t.Errorf("nil result: want InvalidArgument, got %v", err)
	}
	if err := h.Nrm2(DType(7), 1, dX, 1, dR); !IsUnsupportedTypeError(err) {
		t.Errorf("bad dtype: want UnsupportedType, got %v", err)
	}

	unbound := NewHandle()
	if err := unbound.Nrm2(Float32, 1, dX, 1, dR); !IsInvalidArgError(err) {
		t.Errorf("unbound handle: want InvalidArgument, got %v", err)
	}
}
