package blasflow

import (
	"testing"
)

// MallocOrFail allocates device memory and fails the test if unsuccessful
func MallocOrFail(t testing.TB, size int) DevicePtr {
	t.Helper()
	ptr, err := Malloc(size)
	if err != nil {
		t.Fatalf("Failed to allocate %d bytes: %v", size, err)
	}
	return ptr
}

// MemcpyOrFail copies data and fails the test if unsuccessful
func MemcpyOrFail(t testing.TB, dst, src interface{}, size int, kind MemcpyKind) {
	t.Helper()
	err := Memcpy(dst, src, size, kind)
	if err != nil {
		t.Fatalf("Memcpy failed: %v", err)
	}
}

// NodeOrFail returns an unwrapper that fails the test when a facade
// call errors. Currying keeps the facade call's two results as the
// sole argument set, so they can be passed through directly:
//
//	node := NodeOrFail(t)(c.Axpy(...))
func NodeOrFail(t testing.TB) func(*OperationNode, error) *OperationNode {
	return func(n *OperationNode, err error) *OperationNode {
		t.Helper()
		if err != nil {
			t.Fatalf("Facade call failed: %v", err)
		}
		return n
	}
}

// CaptureOrFail captures the graph and fails the test if unsuccessful
func CaptureOrFail(t testing.TB, c *Capturer) *CapturedGraph {
	t.Helper()
	g, err := c.Capture()
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	return g
}

// RunOrFail launches a captured graph, waits for it and fails the test
// if either step errors
func RunOrFail(t testing.TB, g *CapturedGraph) {
	t.Helper()
	if err := g.Launch(); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
}

// DeviceScalar32 allocates a device float32 initialized to v
func DeviceScalar32(t testing.TB, v float32) DevicePtr {
	t.Helper()
	p := MallocOrFail(t, 4)
	p.Float32()[0] = v
	return p
}

// DeviceScalar64 allocates a device float64 initialized to v
func DeviceScalar64(t testing.TB, v float64) DevicePtr {
	t.Helper()
	p := MallocOrFail(t, 8)
	p.Float64()[0] = v
	return p
}

// DeviceVector32 allocates device memory holding a copy of data
func DeviceVector32(t testing.TB, data []float32) DevicePtr {
	t.Helper()
	p := MallocOrFail(t, len(data)*4)
	copy(p.Float32(), data)
	return p
}

// DeviceVector64 allocates device memory holding a copy of data
func DeviceVector64(t testing.TB, data []float64) DevicePtr {
	t.Helper()
	p := MallocOrFail(t, len(data)*8)
	copy(p.Float64(), data)
	return p
}
