package blasflow

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"
)

// MemcpyKind specifies the direction of memory transfer. The pool is
// host-backed, so every kind is a plain copy; the parameter keeps call
// sites explicit about intent.
type MemcpyKind int

const (
	MemcpyHostToHost     MemcpyKind = iota // Host to host transfer
	MemcpyHostToDevice                     // Host to device transfer
	MemcpyDeviceToHost                     // Device to host transfer
	MemcpyDeviceToDevice                   // Device to device transfer
)

// DevicePtr represents a pointer to device memory. Operands, scalar
// coefficients and reduction results passed to the Capturer all live
// behind DevicePtrs; the engine never allocates or frees them on the
// caller's behalf during capture or replay.
type DevicePtr struct {
	ptr    unsafe.Pointer
	size   int
	offset int
}

// MemoryPool manages device memory allocation with efficient reuse.
// It maintains a free list of previously allocated blocks to reduce
// allocation overhead and memory fragmentation.
type MemoryPool struct {
	mu         sync.Mutex
	allocated  map[uintptr]*allocation
	freeList   []*allocation
	totalAlloc int64
	peakAlloc  int64
}

type allocation struct {
	ptr  unsafe.Pointer
	buf  []byte
	size int
	used bool
}

// NewMemoryPool creates a new memory pool.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		allocated: make(map[uintptr]*allocation),
	}
}

var defaultPool = NewMemoryPool()

// Malloc allocates device memory of the specified size in bytes from
// the default pool. The memory is cache-line aligned.
//
// Example:
//
//	d_data, err := blasflow.Malloc(1024 * 4) // 1024 float32s
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer blasflow.Free(d_data)
func Malloc(size int) (DevicePtr, error) {
	return defaultPool.Allocate(size)
}

// Free releases device memory allocated by Malloc.
func Free(ptr DevicePtr) error {
	return defaultPool.Free(ptr)
}

// Memcpy copies memory between host and device. Supports DevicePtr and
// the slice types the two precisions need, plus int32 for index
// results.
//
// Example:
//
//	h_data := make([]float32, 1024)
//	d_data, _ := blasflow.Malloc(1024 * 4)
//	blasflow.Memcpy(d_data, h_data, 1024*4, blasflow.MemcpyHostToDevice)
func Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	_ = kind // all memory is host-backed

	dstPtr, err := rawPointer("Memcpy", dst, "dst")
	if err != nil {
		return err
	}
	srcPtr, err := rawPointer("Memcpy", src, "src")
	if err != nil {
		return err
	}

	if dstPtr != nil && srcPtr != nil && size > 0 {
		copy((*[1 << 30]byte)(dstPtr)[:size:size], (*[1 << 30]byte)(srcPtr)[:size:size])
	}
	return nil
}

func rawPointer(op string, v interface{}, role string) (unsafe.Pointer, error) {
	switch s := v.(type) {
	case DevicePtr:
		return s.ptr, nil
	case unsafe.Pointer:
		return s, nil
	case []byte:
		if len(s) > 0 {
			return unsafe.Pointer(&s[0]), nil
		}
	case []float32:
		if len(s) > 0 {
			return unsafe.Pointer(&s[0]), nil
		}
	case []float64:
		if len(s) > 0 {
			return unsafe.Pointer(&s[0]), nil
		}
	case []int32:
		if len(s) > 0 {
			return unsafe.Pointer(&s[0]), nil
		}
	default:
		return nil, NewInvalidArgError(op, fmt.Sprintf("unsupported %s type: %T", role, v))
	}
	return nil, nil
}

// MemoryPool methods

// Allocate allocates memory from the pool
func (mp *MemoryPool) Allocate(size int) (DevicePtr, error) {
	if size <= 0 {
		return DevicePtr{}, ErrInvalidSize
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	alignedSize := size
	if alignedSize < MinAllocationSize {
		alignedSize = MinAllocationSize
	}
	alignedSize = (alignedSize + MemoryAlignment - 1) &^ (MemoryAlignment - 1)

	// Try to reuse from free list
	for i, alloc := range mp.freeList {
		if alloc.size >= alignedSize {
			mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
			alloc.used = true

			mp.totalAlloc += int64(alloc.size)
			if mp.totalAlloc > mp.peakAlloc {
				mp.peakAlloc = mp.totalAlloc
			}

			return DevicePtr{ptr: alloc.ptr, size: size}, nil
		}
	}

	buf := make([]byte, alignedSize)
	ptr := unsafe.Pointer(&buf[0])
	runtime.KeepAlive(buf)

	alloc := &allocation{
		ptr:  ptr,
		buf:  buf, // retains the backing array while the pool lives
		size: alignedSize,
		used: true,
	}
	mp.allocated[uintptr(ptr)] = alloc

	mp.totalAlloc += int64(alignedSize)
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}

	return DevicePtr{ptr: ptr, size: size}, nil
}

// Free returns memory to the pool
func (mp *MemoryPool) Free(ptr DevicePtr) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	alloc, ok := mp.allocated[uintptr(ptr.ptr)]
	if !ok {
		return NewMemoryError("Free", "pointer not found in allocation pool", nil)
	}
	if !alloc.used {
		return ErrDoubleFree
	}

	alloc.used = false
	mp.freeList = append(mp.freeList, alloc)
	mp.totalAlloc -= int64(alloc.size)
	return nil
}

// GetStats returns memory pool statistics
func (mp *MemoryPool) GetStats() (allocated, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.totalAlloc, mp.peakAlloc
}

// DevicePtr methods for convenience

// IsNil reports whether the pointer refers to no memory.
func (d DevicePtr) IsNil() bool {
	return d.ptr == nil
}

// Float32 returns a float32 slice view of the device memory.
//
// Example:
//
//	d_data, _ := blasflow.Malloc(1024 * 4)
//	data := d_data.Float32()
//	data[0] = 3.14 // Direct access
func (d DevicePtr) Float32() []float32 {
	if d.ptr == nil {
		return nil
	}
	return (*[1 << 28]float32)(d.ptr)[: d.size/4 : d.size/4]
}

// Float64 returns a float64 slice view of the device memory.
func (d DevicePtr) Float64() []float64 {
	if d.ptr == nil {
		return nil
	}
	return (*[1 << 27]float64)(d.ptr)[: d.size/8 : d.size/8]
}

// Int32 returns an int32 slice view of the device memory. Used for the
// index results of amax and amin.
func (d DevicePtr) Int32() []int32 {
	if d.ptr == nil {
		return nil
	}
	return (*[1 << 28]int32)(d.ptr)[: d.size/4 : d.size/4]
}

// Byte returns a byte slice view of the entire memory region.
func (d DevicePtr) Byte() []byte {
	if d.ptr == nil {
		return nil
	}
	return (*[1 << 30]byte)(d.ptr)[:d.size:d.size]
}

// Offset returns a new DevicePtr offset by the given number of bytes.
// The returned DevicePtr shares the same underlying memory.
//
// Example:
//
//	d_array, _ := blasflow.Malloc(1024 * 4)
//	d_half := d_array.Offset(512 * 4)
func (d DevicePtr) Offset(bytes int) DevicePtr {
	return DevicePtr{
		ptr:    unsafe.Pointer(uintptr(d.ptr) + uintptr(bytes)),
		size:   d.size - bytes,
		offset: d.offset + bytes,
	}
}

// Size returns the size in bytes of the memory region
func (d DevicePtr) Size() int {
	return d.size
}
