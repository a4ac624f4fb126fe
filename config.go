// Package blasflow configuration constants
package blasflow

// Stream pool parameters
const (
	// DefaultStreamPoolSize is the number of capture streams a Capturer
	// owns unless overridden with WithStreams.
	DefaultStreamPoolSize = 4

	// MaxStreamPoolSize bounds WithStreams; more streams than this buys
	// nothing on current hardware and bloats the merged graph.
	MaxStreamPoolSize = 32

	// StreamQueueDepth is the task channel capacity per stream.
	StreamQueueDepth = 1024
)

// Memory pool parameters
const (
	// Memory alignment for allocations (cache line)
	MemoryAlignment = 64

	// Minimum allocation size to prevent fragmentation
	MinAllocationSize = 64
)

// Kernel tuning parameters
const (
	// Default GEMM blocking (columns per tile); cpu_features.go may
	// widen this when wide vector units are present.
	DefaultGemmBlock = 64

	// Dimension below which blocked GEMM falls back to plain loops
	GemmBlockThreshold = 32
)
