// Package blasflow structured error types for better error handling
package blasflow

import (
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Malformed operands detected at facade-call time
	ErrTypeConstruction ErrorType = iota
	// Dependency graph contains a cycle
	ErrTypeGraphCycle
	// Element type outside the two supported precisions
	ErrTypeUnsupportedType
	// A native operation failed while being recorded
	ErrTypeCapture
	// A replay of a captured graph failed
	ErrTypeLaunch
	// Memory errors
	ErrTypeMemory
	// Invalid argument errors
	ErrTypeInvalidArg
)

// FlowError represents a structured error with context
type FlowError struct {
	Type    ErrorType
	Op      string      // Operation that failed
	Message string      // Human-readable message
	Err     error       // Underlying error if any
	NodeID  int         // Offending graph node, -1 when not node-specific
	Context interface{} // Additional context
}

// Error implements the error interface
func (e *FlowError) Error() string {
	if e.NodeID >= 0 {
		if e.Err != nil {
			return fmt.Sprintf("blasflow %s error in %s (node %d): %s (caused by: %v)",
				e.Type.String(), e.Op, e.NodeID, e.Message, e.Err)
		}
		return fmt.Sprintf("blasflow %s error in %s (node %d): %s",
			e.Type.String(), e.Op, e.NodeID, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("blasflow %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("blasflow %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *FlowError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConstruction:
		return "Construction"
	case ErrTypeGraphCycle:
		return "GraphCycle"
	case ErrTypeUnsupportedType:
		return "UnsupportedType"
	case ErrTypeCapture:
		return "Capture"
	case ErrTypeLaunch:
		return "Launch"
	case ErrTypeMemory:
		return "Memory"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewConstructionError reports malformed dimensions, strides or
// pointers at facade-call time. The operation is not added to the graph.
func NewConstructionError(op string, message string) error {
	return &FlowError{
		Type:    ErrTypeConstruction,
		Op:      op,
		Message: message,
		NodeID:  -1,
	}
}

// NewGraphCycleError reports a cycle found before any capture began.
func NewGraphCycleError(op string, message string) error {
	return &FlowError{
		Type:    ErrTypeGraphCycle,
		Op:      op,
		Message: message,
		NodeID:  -1,
	}
}

// NewUnsupportedTypeError reports an element type outside the two
// supported precisions.
func NewUnsupportedTypeError(op string, t DType) error {
	return &FlowError{
		Type:    ErrTypeUnsupportedType,
		Op:      op,
		Message: fmt.Sprintf("unsupported element type %s", t),
		NodeID:  -1,
		Context: t,
	}
}

// NewCaptureError reports a native issuance failure during capture,
// identifying the offending node. The whole capture is aborted.
func NewCaptureError(op string, nodeID int, err error) error {
	return &FlowError{
		Type:    ErrTypeCapture,
		Op:      op,
		Message: "native operation failed during capture",
		Err:     err,
		NodeID:  nodeID,
	}
}

// NewLaunchError reports a replay failure of a captured graph.
func NewLaunchError(op string, nodeID int, err error) error {
	return &FlowError{
		Type:    ErrTypeLaunch,
		Op:      op,
		Message: "captured graph replay failed",
		Err:     err,
		NodeID:  nodeID,
	}
}

// NewMemoryError creates a memory-related error
func NewMemoryError(op string, message string, err error) error {
	return &FlowError{
		Type:    ErrTypeMemory,
		Op:      op,
		Message: message,
		Err:     err,
		NodeID:  -1,
	}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &FlowError{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: message,
		NodeID:  -1,
	}
}

// Common pre-defined errors

var (
	// ErrOutOfMemory indicates memory allocation failure
	ErrOutOfMemory = NewMemoryError("Malloc", "out of memory", nil)

	// ErrInvalidSize indicates invalid size parameter
	ErrInvalidSize = NewInvalidArgError("Malloc", "size must be positive")

	// ErrNullPointer indicates null pointer access
	ErrNullPointer = NewInvalidArgError("Memory", "null pointer")

	// ErrDoubleFree indicates double free attempt
	ErrDoubleFree = NewMemoryError("Free", "double free detected", nil)
)

func errType(err error) (ErrorType, bool) {
	if e, ok := err.(*FlowError); ok {
		return e.Type, true
	}
	return 0, false
}

// IsConstructionError checks if an error was raised at facade-call time
func IsConstructionError(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeConstruction
}

// IsGraphCycleError checks if an error reports a dependency cycle
func IsGraphCycleError(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeGraphCycle
}

// IsUnsupportedTypeError checks if an error reports a rejected dtype
func IsUnsupportedTypeError(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeUnsupportedType
}

// IsCaptureError checks if an error aborted a capture
func IsCaptureError(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeCapture
}

// IsLaunchError checks if an error was raised replaying a captured graph
func IsLaunchError(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeLaunch
}

// IsMemoryError checks if an error is a memory error
func IsMemoryError(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeMemory
}

// IsInvalidArgError checks if an error is an invalid argument error
func IsInvalidArgError(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeInvalidArg
}
